// Package core holds the folio domain: containers, items, the selection state
// machine and the editor session. It knows nothing about storage formats.
package core

import (
	"fmt"
	"time"
)

// ContainerType names the item variant a container holds.
// The empty type behaves as free-form.
type ContainerType string

const (
	TypeMemo     ContainerType = "memo"
	TypeShopping ContainerType = "shopping"
	TypeTodo     ContainerType = "todo"
)

// Data maps structured field names to their values.
type Data map[string]any

// Container is a named, ordered grouping of items (a folder or a typed stream).
type Container struct {
	ID        int           `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Type      ContainerType `json:"type,omitempty" yaml:"type,omitempty"`
	Items     []Item        `json:"items" yaml:"items"`
	Expanded  bool          `json:"expanded" yaml:"expanded"`
	Config    Config        `json:"config" yaml:"config"`
	CreatedAt time.Time     `json:"createdAt" yaml:"createdAt"`

	// Legacy field (migrated to Items on load).
	LegacyMemos []Item `json:"memos,omitempty" yaml:"memos,omitempty"`
}

// Item is a single entry owned by exactly one container.
// Free-form items use Content, structured items use Data.
type Item struct {
	ID          int       `json:"id" yaml:"id"`
	ContainerID int       `json:"containerId" yaml:"containerId"`
	Title       string    `json:"title" yaml:"title"`
	Content     string    `json:"content" yaml:"content"`
	Data        Data      `json:"data,omitempty" yaml:"data,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`

	// Legacy field (migrated to ContainerID on load).
	LegacyFolderID int `json:"folderId,omitempty" yaml:"folderId,omitempty"`
}

// Patch describes an item update. Nil fields are left untouched.
type Patch struct {
	Title   *string
	Content *string
	Data    Data
}

// Clone returns a deep copy of the container, safe to hand to renderers.
func (c Container) Clone() Container {
	out := c
	out.Items = make([]Item, len(c.Items))
	for i, it := range c.Items {
		out.Items[i] = it.Clone()
	}
	out.Config = c.Config.Clone()
	out.LegacyMemos = nil
	return out
}

// Clone returns a copy of the item with its own Data map.
func (it Item) Clone() Item {
	out := it
	if it.Data != nil {
		out.Data = make(Data, len(it.Data))
		for k, v := range it.Data {
			out.Data[k] = v
		}
	}
	return out
}

// EventType represents the type of change observed on a store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event reports a change to a persisted collection made outside this process.
type Event struct {
	Type      EventType
	ID        string // slot name
	Timestamp int64  // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
