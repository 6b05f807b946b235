package paging

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/tesso57/pubdesk/internal/logging"
)

const (
	DefaultPageSize = 10
	DefaultMargin   = 3
)

// FetchFunc loads one page. Pages are numbered from 1.
type FetchFunc[T Keyed] func(ctx context.Context, page, pageSize int) ([]T, error)

// Options configure a List.
type Options[T Keyed] struct {
	Fetch    FetchFunc[T]
	PageSize int

	// Margin is how many rows before the end of the list the load-more
	// sentinel counts as visible.
	Margin int

	// PreserveOnReset keeps the current items on screen after a reset until
	// the next page 1 replaces them.
	PreserveOnReset bool

	// Describe turns a fetch error into a message for the user.
	Describe func(error) string
}

// State is a snapshot of a List.
type State[T Keyed] struct {
	Items   []T
	Page    int
	HasMore bool
	Loading bool
	Err     string
}

var lastID atomic.Int64

type pageMsg[T Keyed] struct {
	list  int64
	gen   int
	page  int
	items []T
	err   error
}

type reloadMsg struct {
	list int64
	gen  int
}

// List is an incrementally loaded list bound to one view.
type List[T Keyed] struct {
	id   int64
	gen  int
	opts Options[T]

	items   []T
	page    int
	hasMore bool
	loading bool
	err     string

	deps    []any
	hasDeps bool
	cancel  context.CancelFunc
	log     zerolog.Logger
}

// New creates an empty list. Nothing is fetched until SetDeps, Load or Reached.
func New[T Keyed](opts Options[T]) *List[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	if opts.Describe == nil {
		opts.Describe = func(err error) string { return err.Error() }
	}
	id := lastID.Add(1)
	return &List[T]{
		id:      id,
		opts:    opts,
		hasMore: true,
		log:     logging.NewLogger("paging").With().Int64("list", id).Logger(),
	}
}

// Items returns the loaded items. Callers must not modify the slice.
func (l *List[T]) Items() []T { return l.items }

// Page returns the last successfully loaded page, 0 before the first load.
func (l *List[T]) Page() int { return l.page }

// HasMore reports whether another page may exist.
func (l *List[T]) HasMore() bool { return l.hasMore }

// Loading reports whether a fetch is in flight.
func (l *List[T]) Loading() bool { return l.loading }

// Err returns the message of the last failed fetch.
func (l *List[T]) Err() string { return l.err }

// PageSize returns the configured page size.
func (l *List[T]) PageSize() int { return l.opts.PageSize }

// State returns a snapshot with its own copy of the items.
func (l *List[T]) State() State[T] {
	return State[T]{
		Items:   append([]T(nil), l.items...),
		Page:    l.page,
		HasMore: l.hasMore,
		Loading: l.loading,
		Err:     l.err,
	}
}

// Load requests target, or the page after the current one when target is 0.
// It returns nil while a fetch is in flight or once the list is exhausted.
func (l *List[T]) Load(target int) tea.Cmd {
	if l.loading || !l.hasMore {
		return nil
	}
	page := target
	if page <= 0 {
		page = l.nextPage()
	}

	l.loading = true
	l.err = ""
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	fetch, size, id, gen := l.opts.Fetch, l.opts.PageSize, l.id, l.gen
	l.log.Debug().Int("page", page).Int("gen", gen).Msg("fetching page")

	return func() (msg tea.Msg) {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				msg = pageMsg[T]{list: id, gen: gen, page: page, err: fmt.Errorf("fetch page %d: %v", page, r)}
			}
		}()
		if fetch == nil {
			return pageMsg[T]{list: id, gen: gen, page: page, err: fmt.Errorf("fetch page %d: no fetch function", page)}
		}
		items, err := fetch(ctx, page, size)
		return pageMsg[T]{list: id, gen: gen, page: page, items: items, err: err}
	}
}

// Reset discards pagination progress. A fetch still in flight is cancelled and
// its result will be ignored. The cancelled fetch may still be running when
// Reset returns, so a Load right after it can overlap with the old request.
func (l *List[T]) Reset() {
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.loading = false
	l.page = 0
	l.hasMore = true
	l.err = ""
	if !l.opts.PreserveOnReset {
		l.items = nil
	}
}

// Clear resets the list, drops its items and forgets its dependencies, so the
// next SetDeps reloads even with the same values.
func (l *List[T]) Clear() {
	l.Reset()
	l.items = nil
	l.deps = nil
	l.hasDeps = false
}

// TryAgain clears the error and re-requests the page that failed.
func (l *List[T]) TryAgain() tea.Cmd {
	l.err = ""
	l.hasMore = true
	return l.Load(l.nextPage())
}

// SetDeps records the filter context of the list. When it differs by value from
// the previous call (the first call always does), the list resets and page 1 is
// reloaded once the returned command's message comes back through Update.
func (l *List[T]) SetDeps(deps ...any) tea.Cmd {
	if l.hasDeps && cmp.Equal(l.deps, deps, cmpopts.EquateEmpty()) {
		return nil
	}
	l.deps = append([]any(nil), deps...)
	l.hasDeps = true
	l.Reset()

	id, gen := l.id, l.gen
	return func() tea.Msg {
		return reloadMsg{list: id, gen: gen}
	}
}

// Reached is the load-more trigger. It is safe to call repeatedly.
func (l *List[T]) Reached() tea.Cmd {
	if !l.hasMore || l.loading {
		return nil
	}
	return l.Load(l.page + 1)
}

// NearEnd reports whether a cursor at index in a list of total rows is within
// the sentinel margin of the end.
func (l *List[T]) NearEnd(index, total int) bool {
	return index >= total-1-l.opts.Margin
}

// Update applies messages that belong to this list. It reports false for any
// other message.
func (l *List[T]) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case pageMsg[T]:
		if msg.list != l.id {
			return nil, false
		}
		l.apply(msg)
		return nil, true
	case reloadMsg:
		if msg.list != l.id {
			return nil, false
		}
		// Page 1 may already have come in through the sentinel.
		if msg.gen != l.gen || l.page != 0 {
			return nil, true
		}
		return l.Load(1), true
	}
	return nil, false
}

// Prepend puts item first, dropping any older entry with the same key.
func (l *List[T]) Prepend(item T) {
	items := make([]T, 0, len(l.items)+1)
	items = append(items, item)
	for _, existing := range l.items {
		if existing.Key() != item.Key() {
			items = append(items, existing)
		}
	}
	l.items = items
}

// Replace swaps the entry with item's key in place. It reports whether one was found.
func (l *List[T]) Replace(item T) bool {
	for i, existing := range l.items {
		if existing.Key() != item.Key() {
			continue
		}
		items := append([]T(nil), l.items...)
		items[i] = item
		l.items = items
		return true
	}
	return false
}

// Remove drops every entry whose key is listed and returns how many were removed.
func (l *List[T]) Remove(keys ...string) int {
	if len(keys) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		drop[key] = struct{}{}
	}
	items := make([]T, 0, len(l.items))
	for _, existing := range l.items {
		if _, ok := drop[existing.Key()]; !ok {
			items = append(items, existing)
		}
	}
	removed := len(l.items) - len(items)
	l.items = items
	return removed
}

func (l *List[T]) apply(msg pageMsg[T]) {
	if msg.gen != l.gen {
		l.log.Debug().Int("page", msg.page).Int("gen", msg.gen).Msg("dropping stale page")
		return
	}
	l.loading = false
	l.cancel = nil

	if msg.err != nil {
		l.err = l.opts.Describe(msg.err)
		if l.err == "" {
			l.err = msg.err.Error()
		}
		l.hasMore = false
		l.log.Warn().Err(msg.err).Int("page", msg.page).Msg("page fetch failed")
		return
	}

	if msg.page == 1 {
		l.items = Merge(nil, msg.items)
	} else {
		l.items = Merge(l.items, msg.items)
	}
	l.hasMore = len(msg.items) == l.opts.PageSize
	l.page = msg.page
}

func (l *List[T]) nextPage() int {
	if l.page == 0 {
		return 1
	}
	return l.page + 1
}
