package effect

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"
)

var (
	lifetimeQuery = query.NewQuery(filter.Contains(LifetimeComponent, TargetComponent))
	delayQuery    = query.NewQuery(filter.Contains(DelayComponent, TargetComponent))
)

// Engine owns every effect instance in a world. Applications and removals
// are queued and resolved by Flush; Update ticks the timers and despawns
// instances whose lifetime ran out.
//
// Drive it from the game loop, once per frame:
//
//	engine.Flush()
//	engine.Update(dt)
//	// gameplay systems read effects here
//
// The Engine is not safe for concurrent use.
type Engine struct {
	world    donburi.World
	registry *MergeRegistry
	log      *slog.Logger
	obs      Observer

	queue    []func()
	byTarget map[donburi.Entity][]donburi.Entity

	degradeOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger replaces the engine's logger, slog.Default otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithObserver installs an observer for engine notifications.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.obs = o }
}

// NewEngine returns an engine over world. A nil registry is allowed:
// Merge-mode applications then degrade to plain overwrites, with a
// one-time warning.
func NewEngine(world donburi.World, registry *MergeRegistry, opts ...Option) *Engine {
	e := &Engine{
		world:    world,
		registry: registry,
		log:      slog.Default(),
		byTarget: make(map[donburi.Entity][]donburi.Entity),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply queues an application of b against target. It resolves on the
// next Flush.
func (e *Engine) Apply(target donburi.Entity, b Bundle) {
	e.queue = append(e.queue, func() { e.applyNow(target, b) })
}

// Remove queues despawn of a single effect instance.
func (e *Engine) Remove(instance donburi.Entity) {
	e.queue = append(e.queue, func() { e.despawn(instance, false) })
}

// ClearTarget queues despawn of every effect currently on target, in
// application order.
func (e *Engine) ClearTarget(target donburi.Entity) {
	e.queue = append(e.queue, func() {
		for _, instance := range slices.Clone(e.byTarget[target]) {
			e.despawn(instance, false)
		}
	})
}

// Flush drains the command queue in order. Commands queued while flushing
// run in the same drain.
func (e *Engine) Flush() {
	for i := 0; i < len(e.queue); i++ {
		e.queue[i]()
	}
	e.queue = e.queue[:0]
}

// Update advances every effect timer by dt. Lifetimes tick first and
// finished instances despawn before delays tick, so an expired effect
// never reports a delay completion from the same frame. Call once per
// frame, after Flush.
func (e *Engine) Update(dt time.Duration) {
	var expired []donburi.Entity
	lifetimeQuery.Each(e.world, func(entry *donburi.Entry) {
		lt := LifetimeComponent.Get(entry)
		lt.Timer.Tick(dt)
		if lt.Timer.Finished() {
			expired = append(expired, entry.Entity())
		}
	})
	for _, instance := range expired {
		e.despawn(instance, true)
	}

	delayQuery.Each(e.world, func(entry *donburi.Entry) {
		DelayComponent.Get(entry).Timer.Tick(dt)
	})
}

func (e *Engine) applyNow(target donburi.Entity, b Bundle) {
	if !e.world.Valid(target) {
		e.log.Warn("effect application dropped, target gone",
			"effect", b.Name, "mode", b.Mode)
		return
	}
	if b.Mode == ModeStack {
		e.spawn(target, b)
		return
	}

	match, ok := e.findMatch(target, b.Name, b.Mode)
	if !ok {
		e.spawn(target, b)
		return
	}
	entry := e.world.Entry(match)

	switch b.Mode {
	case ModeReplace:
		b.writeTo(entry, target)
		e.log.Debug("effect replaced",
			"effect", b.Name, "target", target, "instance", match)
		e.notifyReplaced(match)
	case ModeMerge:
		e.mergeInto(entry, target, b)
		e.log.Debug("effect merged",
			"effect", b.Name, "target", target, "instance", match)
		e.notifyMerged(match)
	}
}

// findMatch returns the instance on target with the given name and mode.
// Two such instances mean the one-instance-per-identity invariant was
// broken, which only the engine could have done.
func (e *Engine) findMatch(target donburi.Entity, name string, mode Mode) (donburi.Entity, bool) {
	var found donburi.Entity
	var ok bool
	for _, instance := range e.byTarget[target] {
		entry := e.world.Entry(instance)
		if string(*NameComponent.Get(entry)) != name || *ModeComponent.Get(entry) != mode {
			continue
		}
		if ok {
			panic(fmt.Sprintf("effect: duplicate %s-mode instance of %q on target %v", mode, name, target))
		}
		found, ok = instance, true
	}
	return found, ok
}

func (e *Engine) spawn(target donburi.Entity, b Bundle) {
	instance := e.world.Create(b.componentTypes()...)
	entry := e.world.Entry(instance)
	b.writeTo(entry, target)
	e.byTarget[target] = append(e.byTarget[target], instance)
	e.log.Debug("effect applied",
		"effect", b.Name, "mode", b.Mode, "target", target, "instance", instance)
	e.notifyApplied(instance)
}

// mergeInto resolves a Merge-mode application against an existing
// instance: snapshot the displaced values, overwrite, then hand each
// snapshot to its merge function. Only kinds the incoming bundle actually
// carries merge; everything else on the instance survives untouched.
func (e *Engine) mergeInto(entry *donburi.Entry, target donburi.Entity, b Bundle) {
	if e.registry == nil {
		e.degradeOnce.Do(func() {
			e.log.Warn("no merge registry configured, merge applications degrade to overwrite")
		})
		b.writeTo(entry, target)
		return
	}

	type displaced struct {
		combine func(*donburi.Entry, any)
		old     any
	}
	var snaps []displaced
	collect := func(ct component.IComponentType) {
		me, ok := e.registry.lookup(ct)
		if !ok {
			return
		}
		old, ok := me.snapshot(entry)
		if !ok {
			return
		}
		snaps = append(snaps, displaced{combine: me.combine, old: old})
	}
	if b.Lifetime != nil {
		collect(LifetimeComponent)
	}
	if b.Delay != nil {
		collect(DelayComponent)
	}
	for _, c := range b.Payload {
		collect(c.Type())
	}

	b.writeTo(entry, target)

	for _, s := range snaps {
		s.combine(entry, s.old)
	}
}

// despawn removes an instance from the world and the relation index.
// Non-effect entities are ignored with a warning.
func (e *Engine) despawn(instance donburi.Entity, expired bool) {
	if !e.world.Valid(instance) {
		return
	}
	entry := e.world.Entry(instance)
	if !entry.HasComponent(TargetComponent) {
		e.log.Warn("remove of non-effect entity ignored", "entity", instance)
		return
	}

	info := e.instanceInfo(entry)
	target := info.Target

	effects := e.byTarget[target]
	for i, ent := range effects {
		if ent == instance {
			e.byTarget[target] = append(effects[:i], effects[i+1:]...)
			break
		}
	}
	if len(e.byTarget[target]) == 0 {
		delete(e.byTarget, target)
	}
	e.world.Remove(instance)

	if expired {
		e.log.Debug("effect expired", "effect", info.Name, "target", target, "instance", instance)
		e.notifyExpired(info)
		return
	}
	e.log.Debug("effect removed", "effect", info.Name, "target", target, "instance", instance)
	e.notifyRemoved(info)
}
