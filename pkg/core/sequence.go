package core

// Kind selects one of the id counters.
type Kind int

const (
	KindContainer Kind = iota
	KindItem
)

// Sequence allocates monotonic ids for containers and items.
// Seed must run before the first Next.
type Sequence struct {
	next [2]int
}

// NewSequence returns a sequence whose counters both start at 1.
func NewSequence() *Sequence {
	return &Sequence{next: [2]int{1, 1}}
}

// Next returns the current counter for kind and advances it.
func (s *Sequence) Next(kind Kind) int {
	if s.next[kind] < 1 {
		s.next[kind] = 1
	}
	id := s.next[kind]
	s.next[kind]++
	return id
}

// Peek returns the id the next call to Next(kind) would hand out.
func (s *Sequence) Peek(kind Kind) int {
	if s.next[kind] < 1 {
		return 1
	}
	return s.next[kind]
}

// Seed sets each counter to max(existing id)+1, or 1 for an empty collection.
func (s *Sequence) Seed(containers []Container) {
	maxContainer, maxItem := 0, 0
	for _, c := range containers {
		maxContainer = max(maxContainer, c.ID)
		for _, it := range c.Items {
			maxItem = max(maxItem, it.ID)
		}
	}
	s.next[KindContainer] = maxContainer + 1
	s.next[KindItem] = maxItem + 1
}

// Advance raises each counter to at least max(existing id)+1 and never lowers it.
// Reloads use it so ids handed out earlier in the process are not reused.
func (s *Sequence) Advance(containers []Container) {
	prev := s.next
	s.Seed(containers)
	s.next[KindContainer] = max(s.next[KindContainer], prev[KindContainer])
	s.next[KindItem] = max(s.next[KindItem], prev[KindItem])
}
