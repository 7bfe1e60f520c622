package core

// SelectionState is the state of the item selection machine.
type SelectionState int

const (
	// StateEmpty means no item is active.
	StateEmpty SelectionState = iota
	// StateEditing means ActiveItem names an existing item.
	StateEditing
)

func (s SelectionState) String() string {
	if s == StateEditing {
		return "editing"
	}
	return "empty"
}

// ItemLookup is the part of Repository the selection needs.
type ItemLookup interface {
	Item(id int) (Item, bool)
	Container(id int) (Container, bool)
	FirstItem() (Item, bool)
}

// Selection tracks the active item and, orthogonally, the active container view.
// It is not safe for concurrent use; Service serializes access.
type Selection struct {
	repo            ItemLookup
	activeItem      int
	activeContainer int
}

// NewSelection returns a selection in the Empty state.
func NewSelection(repo ItemLookup) *Selection {
	return &Selection{repo: repo}
}

// State reports Empty or Editing.
func (s *Selection) State() SelectionState {
	if s.activeItem == 0 {
		return StateEmpty
	}
	return StateEditing
}

// ActiveItem returns the active item id, or 0.
func (s *Selection) ActiveItem() int { return s.activeItem }

// ActiveContainer returns the container shown in container view, or 0.
func (s *Selection) ActiveContainer() int { return s.activeContainer }

// Select makes id the active item. Unknown ids leave the state unchanged.
func (s *Selection) Select(id int) (Item, bool) {
	it, ok := s.repo.Item(id)
	if !ok {
		return Item{}, false
	}
	s.activeItem = id
	return it, true
}

// SelectContainer enters container view. It does not touch the active item.
func (s *Selection) SelectContainer(id int) (Container, bool) {
	c, ok := s.repo.Container(id)
	if !ok {
		return Container{}, false
	}
	s.activeContainer = id
	return c, true
}

// LeaveContainer exits container view.
func (s *Selection) LeaveContainer() {
	s.activeContainer = 0
}

// Clear returns to Empty.
func (s *Selection) Clear() {
	s.activeItem = 0
}

// Fallback selects the first remaining item across all containers, or clears the selection.
func (s *Selection) Fallback() (Item, bool) {
	it, ok := s.repo.FirstItem()
	if !ok {
		s.activeItem = 0
		return Item{}, false
	}
	s.activeItem = it.ID
	return it, true
}

// Reconcile repairs the selection after a mutation: an active item that no longer
// exists is replaced by the fallback, a vanished container view is left.
// It reports whether the active item changed.
func (s *Selection) Reconcile() bool {
	if s.activeContainer != 0 {
		if _, ok := s.repo.Container(s.activeContainer); !ok {
			s.activeContainer = 0
		}
	}
	if s.activeItem == 0 {
		return false
	}
	if _, ok := s.repo.Item(s.activeItem); ok {
		return false
	}
	s.Fallback()
	return true
}
