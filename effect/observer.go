package effect

import "github.com/yohamta/donburi"

// Observer receives engine notifications. Calls happen inside Flush and
// Update on the game loop goroutine, so implementations must return
// quickly and must not queue further engine commands.
type Observer interface {
	// Applied fires when a fresh instance spawns.
	Applied(Instance)
	// Merged fires when an existing instance absorbs a Merge-mode
	// application, including the degraded no-registry overwrite.
	Merged(Instance)
	// Replaced fires when a Replace-mode application overwrites an
	// existing instance.
	Replaced(Instance)
	// Expired fires when a lifetime runs out; the entity is already gone.
	Expired(Instance)
	// Removed fires on Remove and ClearTarget; the entity is already gone.
	Removed(Instance)
}

func (e *Engine) notifyApplied(instance donburi.Entity) {
	if e.obs == nil {
		return
	}
	e.obs.Applied(e.instanceInfo(e.world.Entry(instance)))
}

func (e *Engine) notifyMerged(instance donburi.Entity) {
	if e.obs == nil {
		return
	}
	e.obs.Merged(e.instanceInfo(e.world.Entry(instance)))
}

func (e *Engine) notifyReplaced(instance donburi.Entity) {
	if e.obs == nil {
		return
	}
	e.obs.Replaced(e.instanceInfo(e.world.Entry(instance)))
}

func (e *Engine) notifyExpired(info Instance) {
	if e.obs != nil {
		e.obs.Expired(info)
	}
}

func (e *Engine) notifyRemoved(info Instance) {
	if e.obs != nil {
		e.obs.Removed(info)
	}
}
