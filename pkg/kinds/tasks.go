package kinds

import (
	"fmt"
	"time"

	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/typed"
)

// Task field names.
const (
	FieldTask      = "task"
	FieldPriority  = "priority"
	FieldDueDate   = "dueDate"
	FieldCompleted = "completed"
)

// Priorities is the ordered priority scale of tasks.
var Priorities = []string{"low", "medium", "high"}

// DefaultPriority is the middle of the scale.
var DefaultPriority = Priorities[len(Priorities)/2]

// Task is the typed form of a task item.
type Task struct {
	Task      string `json:"task"`
	Priority  string `json:"priority"`
	DueDate   string `json:"dueDate"` // YYYY-MM-DD or empty
	Completed bool   `json:"completed"`
}

// Tasks is the task-tracker variant (e.g. a todo list).
type Tasks struct {
	Name core.ContainerType
}

func (t Tasks) Type() core.ContainerType { return t.Name }

func (Tasks) DefaultTitle() string { return "New task" }

func (Tasks) Config() core.Config {
	return core.Config{Fields: []core.FieldSpec{
		{Name: FieldTask, Label: "Task", Kind: core.FieldText, Required: true},
		{Name: FieldPriority, Label: "Priority", Kind: core.FieldEnum, Options: append([]string(nil), Priorities...)},
		{Name: FieldDueDate, Label: "Due date", Kind: core.FieldDate},
		{Name: FieldCompleted, Label: "Done", Kind: core.FieldBool},
	}}
}

func (Tasks) NewItem(time.Time) (string, core.Data) {
	return "", core.Data{
		FieldTask:      "",
		FieldPriority:  DefaultPriority,
		FieldDueDate:   "",
		FieldCompleted: false,
	}
}

// Preview renders a completion marker, the bracketed priority and the task text.
func (Tasks) Preview(it core.Item) string {
	task, err := typed.Decode[Task](it.Data)
	if err != nil {
		task.Task = core.AsString(it.Data[FieldTask])
		task.Priority = core.AsString(it.Data[FieldPriority])
		task.Completed = core.AsBool(it.Data[FieldCompleted])
	}
	if task.Priority == "" {
		task.Priority = DefaultPriority
	}
	marker := "⬜"
	if task.Completed {
		marker = "✅"
	}
	return fmt.Sprintf("%s [%s] %s", marker, task.Priority, task.Task)
}

var _ core.Titled = Tasks{}
