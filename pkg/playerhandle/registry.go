// Package playerhandle implements the non-owning back-reference a
// backend player uses to reach the high-level AudioPlayer that owns it,
// without holding a Go pointer (and thus without a retain cycle between
// pkg/audioplayer and pkg/backend).
//
// Mirrors weakref.proxy(player) in
// original_source/pyglet/media/drivers/base.py's
// AbstractAudioPlayer.__init__, expressed as an explicit handle/registry
// pair since Go has no weak-reference primitive.
package playerhandle

import "sync"

// Handle is an opaque, non-owning reference to a registered owner.
type Handle uint64

var (
	mu      sync.Mutex
	next    Handle = 1
	entries        = map[Handle]any{}
)

// Register allocates a new handle for owner and returns it. The caller
// must call Unregister when owner is torn down.
func Register(owner any) Handle {
	mu.Lock()
	defer mu.Unlock()
	h := next
	next++
	entries[h] = owner
	return h
}

// Unregister drops the handle. Safe to call more than once.
func Unregister(h Handle) {
	mu.Lock()
	defer mu.Unlock()
	delete(entries, h)
}

// Lookup resolves h to its owner, or nil if it has been unregistered.
// Callers must type-assert the result and must not retain it beyond the
// current call.
func Lookup(h Handle) any {
	mu.Lock()
	defer mu.Unlock()
	return entries[h]
}
