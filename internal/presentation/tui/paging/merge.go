// Package paging drives incremental page loading for list views.
//
// A List owns the pagination state of one view. All state changes happen on the
// bubbletea event loop: Load hands the fetch to the runtime as a tea.Cmd and the
// result comes back as a message consumed by Update. Because Load refuses to start
// while a fetch is in flight, results are applied in the order requests were issued.
package paging

// Keyed is implemented by list items with a stable identity.
type Keyed interface {
	Key() string
}

// Merge returns prev followed by the items of next whose key is not already
// present, in next's order. The result never aliases prev.
func Merge[T Keyed](prev, next []T) []T {
	out := make([]T, len(prev), len(prev)+len(next))
	copy(out, prev)
	if len(next) == 0 {
		return out
	}

	seen := make(map[string]struct{}, len(prev)+len(next))
	for _, item := range prev {
		seen[item.Key()] = struct{}{}
	}
	for _, item := range next {
		key := item.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
