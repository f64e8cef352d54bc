package domain

import "sort"

// CompareIntPtr orders two nullable ints ascending with nil sorting last.
// Returns a negative value when a sorts before b, positive when after,
// zero when tied.
func CompareIntPtr(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// SortSections orders sections by sortOrder ascending, nulls last.
// The sort is stable so insertion order decides ties.
func SortSections(sections []PlanSection) {
	sort.SliceStable(sections, func(i, j int) bool {
		return CompareIntPtr(sections[i].SortOrder, sections[j].SortOrder) < 0
	})
}

// SortTopics orders topics by sortOrder ascending, nulls last.
func SortTopics(topics []PlanTopic) {
	sort.SliceStable(topics, func(i, j int) bool {
		return CompareIntPtr(topics[i].SortOrder, topics[j].SortOrder) < 0
	})
}

// SortTodos orders todos by (dayIndex, sortOrder) ascending, nulls last on
// both keys. This is the flatten order the assignment engine materializes
// tasks in, and the leaf order of the template tree.
func SortTodos(todos []PlanTodo) {
	sort.SliceStable(todos, func(i, j int) bool {
		if c := CompareIntPtr(todos[i].DayIndex, todos[j].DayIndex); c != 0 {
			return c < 0
		}
		return CompareIntPtr(todos[i].SortOrder, todos[j].SortOrder) < 0
	})
}
