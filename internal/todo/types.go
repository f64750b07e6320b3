package todo

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskboard/internal/utils"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "tasks.schema.json"

// Task is a single to-do item.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// List is an insertion-ordered sequence of tasks.
type List []Task

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InvalidListError reports every problem found in a stored list.
type InvalidListError struct {
	Errors []error
}

func (e *InvalidListError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid task list: " + e.Errors[0].Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("invalid task list (%d errors): %s", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap returns the individual validation errors.
func (e *InvalidListError) Unwrap() []error {
	return e.Errors
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Encode serializes the list as a JSON array. A nil list encodes as "[]".
func Encode(l List) (string, error) {
	if l == nil {
		l = List{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("marshal task list: %w", err)
	}
	return string(data), nil
}

// Decode parses and validates a stored task list.
func Decode(data string) (List, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("parse task list: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile task list schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, &InvalidListError{Errors: schemaErrors(err)}
	}

	var l List
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	if errs := l.duplicateIDs(); len(errs) > 0 {
		return nil, &InvalidListError{Errors: errs}
	}
	if l == nil {
		l = List{}
	}
	return l, nil
}

func (l List) duplicateIDs() []error {
	var errs []error
	seen := make(map[string]int, len(l))
	for i, t := range l {
		if first, ok := seen[t.ID]; ok {
			errs = append(errs, &ValidationError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q (first at [%d])", t.ID, first),
			})
			continue
		}
		seen[t.ID] = i
	}
	return errs
}

func schemaErrors(err error) []error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{err}
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errs
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// Index returns the position of the task with id, or -1.
func (l List) Index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a copy of the task with id.
func (l List) Find(id string) (Task, bool) {
	if i := l.Index(id); i >= 0 {
		return l[i], true
	}
	return Task{}, false
}

// CompletedCount returns how many tasks are completed.
func (l List) CompletedCount() int {
	n := 0
	for _, t := range l {
		if t.Completed {
			n++
		}
	}
	return n
}

// Clone returns a copy with its own backing array.
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// WithAppended returns a new list with t at the end.
func (l List) WithAppended(t Task) List {
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	return append(out, t)
}

// WithToggled returns a new list with the completed flag of id flipped.
// The second result is false, and the receiver is returned, when id is absent.
func (l List) WithToggled(id string) (List, bool) {
	i := l.Index(id)
	if i < 0 {
		return l, false
	}
	out := l.Clone()
	out[i].Completed = !out[i].Completed
	return out, true
}

// WithoutID returns a new list without the task id.
// The second result is false, and the receiver is returned, when id is absent.
func (l List) WithoutID(id string) (List, bool) {
	i := l.Index(id)
	if i < 0 {
		return l, false
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), true
}
