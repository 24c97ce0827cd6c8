package effect

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"
)

// A merge function combines the state an overwrite displaced back into the
// freshly written value. The registry stores them type-erased: snapshot
// copies the old value off an entry before the overwrite, combine feeds it
// to the typed function afterwards.
type mergeEntry struct {
	snapshot func(*donburi.Entry) (any, bool)
	combine  func(*donburi.Entry, any)
}

// MergeRegistry maps component kinds to their merge functions. Construct
// one per Engine (or share one across engines with the same rules); there
// is no global registry.
type MergeRegistry struct {
	entries map[component.IComponentType]mergeEntry
}

// NewMergeRegistry returns a registry preloaded with the merge functions
// for Lifetime, Delay and Stacks. Re-register any of them to override.
func NewMergeRegistry() *MergeRegistry {
	r := &MergeRegistry{entries: make(map[component.IComponentType]mergeEntry)}
	RegisterMerge(r, LifetimeComponent, func(surviving *Lifetime, outgoing Lifetime) {
		surviving.Merge(outgoing)
	})
	RegisterMerge(r, DelayComponent, func(surviving *Delay, outgoing Delay) {
		surviving.Merge(outgoing)
	})
	RegisterMerge(r, StacksComponent, func(surviving *Stacks, outgoing Stacks) {
		surviving.Merge(outgoing)
	})
	return r
}

// RegisterMerge installs fn as the merge function for ctype. During a
// Merge-mode application, surviving points at the value the incoming
// bundle just wrote and outgoing holds a copy of the value it displaced.
// The last registration for a kind wins.
func RegisterMerge[T any](r *MergeRegistry, ctype *donburi.ComponentType[T], fn func(surviving *T, outgoing T)) {
	r.entries[ctype] = mergeEntry{
		snapshot: func(e *donburi.Entry) (any, bool) {
			if !e.HasComponent(ctype) {
				return nil, false
			}
			return *ctype.Get(e), true
		},
		combine: func(e *donburi.Entry, outgoing any) {
			fn(ctype.Get(e), outgoing.(T))
		},
	}
}

// Len returns the number of registered component kinds.
func (r *MergeRegistry) Len() int {
	return len(r.entries)
}

func (r *MergeRegistry) lookup(ct component.IComponentType) (mergeEntry, bool) {
	e, ok := r.entries[ct]
	return e, ok
}
