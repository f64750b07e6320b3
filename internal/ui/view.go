package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskboard/internal/todo"
)

// Palette holds the row background colours, applied by position.
var Palette = []lipgloss.Color{
	"#EAD1DC",
	"#C6E2E9",
	"#D1E8D1",
	"#FFFACD",
	"#D1D1E8",
	"#FFD1DC",
	"#BFD8D2",
}

// RowColor returns the background for the row at pos.
func RowColor(pos int) lipgloss.Color {
	n := len(Palette)
	return Palette[((pos%n)+n)%n]
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	counterStyle = lipgloss.NewStyle().Faint(true)
	rowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")).Padding(0, 1)
	doneStyle    = rowStyle.Strikethrough(true)
)

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	b.WriteString(m.input.View())
	b.WriteString("\n")
	writeCounters(&b, m.board.Total(), m.board.CompletedCount())

	if !m.board.Loaded() {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.focus)
		return b.String()
	}

	tasks := m.board.Tasks()
	if len(tasks) == 0 {
		b.WriteString("  No tasks yet.\n")
	}
	for i, task := range tasks {
		selected := m.focus == focusList && i == m.cursor
		b.WriteString(m.renderRow(i, task, selected))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	writeFooter(&b, m.focus)
	return b.String()
}

func (m *tuiModel) renderRow(pos int, task todo.Task, selected bool) string {
	marker := " "
	if selected {
		marker = ">"
	}
	check := "[ ]"
	style := rowStyle
	if task.Completed {
		check = "[x]"
		style = doneStyle
	}
	line := fmt.Sprintf("%s %s %s", marker, check, task.Text)
	return style.Background(RowColor(pos)).Width(m.width).Render(line)
}

func writeTitle(b *strings.Builder) {
	title := "TaskBoard"
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeCounters(b *strings.Builder, total, completed int) {
	b.WriteString(counterStyle.Render(fmt.Sprintf("Total: %d  Completed: %d", total, completed)))
	b.WriteString("\n\n")
}

func writeFooter(b *strings.Builder, f focus) {
	if f == focusList {
		b.WriteString("space toggle | d delete | j/k move | tab input | q quit\n")
		return
	}
	b.WriteString("enter add | tab list | esc quit\n")
}
