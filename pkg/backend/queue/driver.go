package queue

import (
	"sync"

	"github.com/drgolem/audiostream/pkg/backend"
	"github.com/drgolem/audiostream/pkg/playerhandle"
	"github.com/drgolem/audiostream/pkg/source"
)

// Driver owns every Player opened against one device config, so a
// device-level event (disconnect, format change) can be told to every
// live player at once. Grounded on drivers/base.py's Driver class,
// whose on_driver_reset/on_driver_destroy hooks the distillation
// dropped (see SPEC_FULL.md §12).
type Driver struct {
	cfg Config

	mu      sync.Mutex
	players map[*Player]struct{}
	deleted bool
}

// NewDriver returns a Driver that opens queue.Players against cfg.
func NewDriver(cfg Config) *Driver {
	return &Driver{cfg: cfg, players: map[*Player]struct{}{}}
}

// CreatePlayer implements backend.Driver, opening a Player under this
// driver's config and tracking it for future Reset/Delete calls.
func (d *Driver) CreatePlayer(owner playerhandle.Handle, group *source.Group) (backend.Player, error) {
	d.mu.Lock()
	if d.deleted {
		d.mu.Unlock()
		return nil, errDriverDeleted
	}
	d.mu.Unlock()

	p, err := New(owner, group, d.cfg)
	if err != nil {
		return nil, err
	}
	p.driver = d

	d.mu.Lock()
	d.players[p] = struct{}{}
	d.mu.Unlock()
	return p, nil
}

// forget removes a player the caller has already deleted.
func (d *Driver) forget(p *Player) {
	d.mu.Lock()
	delete(d.players, p)
	d.mu.Unlock()
}

// Reset notifies every live player that the underlying device
// reconnected, matching AbstractAudioPlayer.on_driver_reset: each
// player gets a chance to re-synchronize before its next Work() tick.
func (d *Driver) Reset() error {
	d.mu.Lock()
	players := make([]*Player, 0, len(d.players))
	for p := range d.players {
		players = append(players, p)
	}
	d.mu.Unlock()

	for _, p := range players {
		p.OnDriverReset()
	}
	return nil
}

// Delete tears every tracked player down and marks the driver unusable
// for further CreatePlayer calls, matching on_driver_destroy's
// propagation to every live player.
func (d *Driver) Delete() {
	d.mu.Lock()
	players := make([]*Player, 0, len(d.players))
	for p := range d.players {
		players = append(players, p)
	}
	d.players = map[*Player]struct{}{}
	d.deleted = true
	d.mu.Unlock()

	for _, p := range players {
		p.OnDriverDestroy()
		p.Delete()
	}
}

var errDriverDeleted = driverDeletedError{}

type driverDeletedError struct{}

func (driverDeletedError) Error() string { return "queue: driver deleted" }
