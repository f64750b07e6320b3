package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskboard/internal/board"
	"github.com/nibzard/taskboard/internal/todo"
)

type focus int

const (
	focusInput focus = iota
	focusList
)

const defaultWidth = 60

type tuiModel struct {
	ctx    context.Context
	board  *board.Board
	store  Store
	input  textinput.Model
	focus  focus
	cursor int
	width  int
}

// loadedMsg carries the startup read back to the update loop.
type loadedMsg struct {
	tasks todo.List
	ok    bool
}

func newTUIModel(ctx context.Context, b *board.Board, store Store) *tuiModel {
	ti := textinput.New()
	ti.Placeholder = "Add a task"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = defaultWidth - len(ti.Prompt)
	ti.SetValue(b.Draft())
	ti.Focus()

	return &tuiModel{
		ctx:   ctx,
		board: b,
		store: store,
		input: ti,
		width: defaultWidth,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadCmd(m.ctx, m.store))
}

func loadCmd(ctx context.Context, store Store) tea.Cmd {
	return func() tea.Msg {
		tasks, ok := store.Load(ctx)
		return loadedMsg{tasks: tasks, ok: ok}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.board.Restore(msg.tasks, msg.ok)
		m.clampCursor()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - len(m.input.Prompt) - 1; w > 0 {
			m.input.Width = w
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.focus == focusList {
			return m.updateList(msg)
		}
		return m.updateInput(msg)
	}
	return m, nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if !m.board.Loaded() {
			return m, nil
		}
		if m.board.Submit() {
			m.input.SetValue("")
			m.cursor = m.board.Total() - 1
		}
		return m, nil
	case "tab", "down":
		m.focusList()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.board.SetDraft(m.input.Value())
	return m, cmd
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "i":
		return m, m.focusInput()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.board.Total()-1 {
			m.cursor++
		}
	case " ", "space", "x", "enter":
		if task, ok := m.board.Task(m.cursor); ok {
			m.board.ToggleCompleted(task.ID)
		}
	case "d", "delete":
		if task, ok := m.board.Task(m.cursor); ok {
			m.board.DeleteTask(task.ID)
			m.clampCursor()
		}
	}
	return m, nil
}

func (m *tuiModel) focusList() {
	if !m.board.Loaded() {
		return
	}
	m.focus = focusList
	m.input.Blur()
	m.clampCursor()
}

func (m *tuiModel) focusInput() tea.Cmd {
	m.focus = focusInput
	return m.input.Focus()
}

func (m *tuiModel) clampCursor() {
	switch n := m.board.Total(); {
	case n == 0:
		m.cursor = 0
	case m.cursor >= n:
		m.cursor = n - 1
	case m.cursor < 0:
		m.cursor = 0
	}
}
