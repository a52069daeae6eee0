// Package feed owns the client-side list state for a prompt view: the
// current filter, loaded items, pagination cursor, and in-flight request
// identity. Responses may arrive out of order; correctness comes from
// discarding any response whose launch-time filter identity no longer
// matches the current one, never from arrival order.
package feed

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/promptstashapp/promptstash-server/internal/normalize"
	"github.com/promptstashapp/promptstash-server/pkg/client"
)

// State is the controller's lifecycle state.
type State int

const (
	// StateIdle means no fetch is in flight.
	StateIdle State = iota
	// StateFetchingFresh means the filter changed and the whole list is
	// being replaced.
	StateFetchingFresh
	// StateFetchingMore means a further page is being appended.
	StateFetchingMore
	// StateError means the last fetch failed.
	StateError
	// StateAuthRequired means the server rejected the credentials. Items
	// are cleared; re-authentication must trigger a new fetch.
	StateAuthRequired
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetchingFresh:
		return "fetching_fresh"
	case StateFetchingMore:
		return "fetching_more"
	case StateError:
		return "error"
	case StateAuthRequired:
		return "auth_required"
	default:
		return "unknown"
	}
}

const (
	defaultDebounce = 400 * time.Millisecond
	defaultPageSize = 30
)

// Fetcher fetches one page of prompts. *client.Client satisfies it.
type Fetcher interface {
	ListPrompts(ctx context.Context, opts client.ListPromptsOptions) (*client.PromptPage, error)
}

// Options configures a Controller.
type Options struct {
	Fetcher  Fetcher
	Debounce time.Duration // filter-change quiet window, default 400ms
	PageSize int           // page size for fetches, default 30
	OnChange func()        // called after every visible-state change
}

// Controller is a thread-safe state machine for one logical list view.
type Controller struct {
	fetcher  Fetcher
	debounce time.Duration
	pageSize int
	onChange func()

	mu    sync.Mutex
	timer *time.Timer

	state      State
	items      []client.Prompt
	hasMore    bool
	nextOffset int
	lastErr    error

	// filterID is the identity of the most recent SetFilter, whether or
	// not a fetch for it has launched yet. appliedID is the identity that
	// produced the current items. inflightID is non-empty while a fetch
	// is running.
	filterID   string
	appliedID  string
	inflightID string

	query string
	tags  []string
}

// NewController creates a controller. It starts Idle with an empty filter;
// call Refresh or SetFilter to load data.
func NewController(opts Options) *Controller {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Controller{
		fetcher:  opts.Fetcher,
		debounce: debounce,
		pageSize: pageSize,
		onChange: opts.OnChange,
		filterID: FilterIdentity("", nil),
	}
}

// FilterIdentity returns the canonical identity of a filter: trimmed query
// and sorted deduplicated normalized tag names. Two filters with the same
// identity produce the same result set.
func FilterIdentity(query string, tags []string) string {
	names := normalize.TagNames(tags)
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return normalize.Query(query) + "::" + strings.Join(sorted, ",")
}

// SetFilter records a new filter and schedules a fresh fetch after the
// quiet window. Rapid successive calls coalesce into one fetch.
func (c *Controller) SetFilter(query string, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := FilterIdentity(query, tags)
	if id == c.filterID {
		return
	}

	c.query = query
	c.tags = append([]string(nil), tags...)
	c.filterID = id

	if c.timer == nil {
		c.timer = time.AfterFunc(c.debounce, c.onDebounce)
		return
	}
	c.timer.Reset(c.debounce)
}

// Refresh launches an immediate fresh fetch under the current filter. Call
// it after a successful mutation; result sets reorder on every update, so
// refetching beats patching the list in place.
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.launchFreshLocked()
	c.mu.Unlock()
	c.notify()
}

// LoadMore fetches the next page. It is a no-op while any fetch is in
// flight, when no further pages exist, and in Error or AuthRequired.
func (c *Controller) LoadMore() {
	c.mu.Lock()
	// filterID != appliedID means a filter change is waiting on the
	// debounce timer; its fresh fetch owns the next transition.
	if c.state != StateIdle || !c.hasMore || c.filterID != c.appliedID {
		c.mu.Unlock()
		return
	}

	id := c.filterID
	query, tags := c.query, append([]string(nil), c.tags...)
	offset := c.nextOffset
	c.state = StateFetchingMore
	c.inflightID = id
	c.mu.Unlock()
	c.notify()

	go c.fetch(id, query, tags, offset, false)
}

// onDebounce fires when the quiet window elapses.
func (c *Controller) onDebounce() {
	c.mu.Lock()
	c.launchFreshLocked()
	c.mu.Unlock()
	c.notify()
}

// launchFreshLocked starts a fresh fetch for the current filter. The
// caller holds c.mu.
func (c *Controller) launchFreshLocked() {
	id := c.filterID
	query, tags := c.query, append([]string(nil), c.tags...)
	c.state = StateFetchingFresh
	c.inflightID = id

	go c.fetch(id, query, tags, 0, true)
}

// fetch runs one page request and applies the result under the
// supersession rule: the response counts only if id still equals the
// controller's current filter identity when it arrives.
func (c *Controller) fetch(id, query string, tags []string, offset int, fresh bool) {
	page, err := c.fetcher.ListPrompts(context.Background(), client.ListPromptsOptions{
		Query:  query,
		Tags:   tags,
		Offset: offset,
		Limit:  c.pageSize,
	})

	c.mu.Lock()
	if id != c.filterID {
		// A newer filter took over while this request was in flight.
		// Its own fetch (pending or running) owns the state now.
		if c.inflightID == id {
			c.inflightID = ""
		}
		c.mu.Unlock()
		return
	}
	c.inflightID = ""

	if err != nil {
		if client.IsUnauthorized(err) {
			c.state = StateAuthRequired
			c.items = nil
			c.hasMore = false
			c.nextOffset = 0
		} else {
			c.state = StateError
		}
		c.lastErr = err
		c.mu.Unlock()
		c.notify()
		return
	}

	if fresh {
		c.items = page.Items
	} else {
		c.items = append(c.items, page.Items...)
	}
	c.hasMore = page.HasMore
	if page.NextOffset != nil {
		c.nextOffset = *page.NextOffset
	} else {
		c.nextOffset = 0
	}
	c.appliedID = id
	c.state = StateIdle
	c.lastErr = nil
	c.mu.Unlock()
	c.notify()
}

// Snapshot is a consistent copy of the visible state.
type Snapshot struct {
	State      State
	Items      []client.Prompt
	HasMore    bool
	NextOffset int
	Err        error
	// FilterID identifies the filter that produced Items.
	FilterID string
}

// Snapshot returns a copy of the visible state for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]client.Prompt, len(c.items))
	copy(items, c.items)

	return Snapshot{
		State:      c.state,
		Items:      items,
		HasMore:    c.hasMore,
		NextOffset: c.nextOffset,
		Err:        c.lastErr,
		FilterID:   c.appliedID,
	}
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
