package course

// NextID returns max(ids)+1, or 1 when ids is empty. Using the maximum instead
// of the last element keeps allocation correct after deletions or reordering.
func NextID(ids []int) int {
	highest := 0
	for _, id := range ids {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

// Allocator hands out consecutive ids above the highest id seen so far. It is
// used when one operation appends several records to the same collection.
type Allocator struct {
	next int
}

// NewAllocator seeds an allocator from the ids already present in a collection.
func NewAllocator(ids []int) *Allocator {
	return &Allocator{next: NextID(ids)}
}

// Next returns the next free id.
func (a *Allocator) Next() int {
	id := a.next
	a.next++
	return id
}

// CourseIDs, ModuleIDs and LessonIDs project a collection onto its ids.
func CourseIDs(in []Course) []int {
	out := make([]int, len(in))
	for i, c := range in {
		out[i] = c.ID
	}
	return out
}

func ModuleIDs(in []Module) []int {
	out := make([]int, len(in))
	for i, m := range in {
		out[i] = m.ID
	}
	return out
}

func LessonIDs(in []Lesson) []int {
	out := make([]int, len(in))
	for i, l := range in {
		out[i] = l.ID
	}
	return out
}
