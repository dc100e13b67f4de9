package mixer

import (
	"cmp"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// RegionEntry pairs a region with the source drawn into it.
type RegionEntry struct {
	SourceID SourceID `json:"source_id"`
	Region
}

// RegionTable is an immutable, published set of regions. Entries are kept
// in draw order: ascending ZOrder, ties broken by SourceID.
type RegionTable struct {
	byID    map[SourceID]Region
	ordered []RegionEntry
}

func newRegionTable(regions map[SourceID]Region) *RegionTable {
	t := &RegionTable{
		byID:    maps.Clone(regions),
		ordered: make([]RegionEntry, 0, len(regions)),
	}
	if t.byID == nil {
		t.byID = map[SourceID]Region{}
	}
	for id, r := range regions {
		t.ordered = append(t.ordered, RegionEntry{SourceID: id, Region: r})
	}
	slices.SortFunc(t.ordered, func(a, b RegionEntry) int {
		if c := cmp.Compare(a.ZOrder, b.ZOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.SourceID, b.SourceID)
	})
	return t
}

// Len returns the number of regions.
func (t *RegionTable) Len() int { return len(t.ordered) }

// Get returns the region for id.
func (t *RegionTable) Get(id SourceID) (Region, bool) {
	r, ok := t.byID[id]
	return r, ok
}

// Has reports whether id has a region.
func (t *RegionTable) Has(id SourceID) bool {
	_, ok := t.byID[id]
	return ok
}

// Entries returns a copy of the regions in draw order.
func (t *RegionTable) Entries() []RegionEntry {
	return slices.Clone(t.ordered)
}

// layout double-buffers the region table. Control calls edit the pending
// map under mu; apply publishes a fresh immutable table with one atomic
// store, so a tick that loaded the previous table keeps drawing it
// consistently until it finishes.
type layout struct {
	mu      sync.Mutex
	pending map[SourceID]Region
	dirty   bool

	active atomic.Pointer[RegionTable]
}

func newLayout() *layout {
	l := &layout{pending: make(map[SourceID]Region)}
	l.active.Store(newRegionTable(nil))
	return l
}

// clear empties the pending table. The active table is untouched.
func (l *layout) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.pending)
	l.dirty = true
}

// set inserts, replaces or (with r == nil) removes a pending entry.
func (l *layout) set(id SourceID, r *Region) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r == nil {
		delete(l.pending, id)
	} else {
		l.pending[id] = *r
	}
	l.dirty = true
}

// apply publishes the pending table and returns the table it replaced. The
// pending map keeps its contents so later edits are incremental.
func (l *layout) apply() (prev, next *RegionTable) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next = newRegionTable(l.pending)
	prev = l.active.Swap(next)
	l.dirty = false
	return prev, next
}

// snapshot returns the table the current tick should draw.
func (l *layout) snapshot() *RegionTable {
	return l.active.Load()
}

func (l *layout) state() LayoutState {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dirty {
		return LayoutPending
	}
	return LayoutEmpty
}

// pendingEntries returns the unpublished table in draw order.
func (l *layout) pendingEntries() []RegionEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return newRegionTable(l.pending).ordered
}
