package effect

import "github.com/yohamta/donburi"

// Instance is a read-only snapshot of one live effect, for HUDs, logs and
// tests. Timer fields are copies; mutating them changes nothing.
type Instance struct {
	Entity   donburi.Entity
	Target   donburi.Entity
	Name     string
	Mode     Mode
	Lifetime *Lifetime
	Delay    *Delay
	Stacks   int32
}

func (e *Engine) instanceInfo(entry *donburi.Entry) Instance {
	info := Instance{
		Entity: entry.Entity(),
		Target: TargetComponent.Get(entry).Entity,
		Name:   string(*NameComponent.Get(entry)),
		Mode:   *ModeComponent.Get(entry),
		Stacks: 1,
	}
	if entry.HasComponent(LifetimeComponent) {
		lt := *LifetimeComponent.Get(entry)
		info.Lifetime = &lt
	}
	if entry.HasComponent(DelayComponent) {
		d := *DelayComponent.Get(entry)
		info.Delay = &d
	}
	if entry.HasComponent(StacksComponent) {
		info.Stacks = StacksComponent.Get(entry).Count
	}
	return info
}

// EffectsOn returns snapshots of every effect on target, in application
// order. The result is nil when the target carries none.
func (e *Engine) EffectsOn(target donburi.Entity) []Instance {
	instances := e.byTarget[target]
	if len(instances) == 0 {
		return nil
	}
	out := make([]Instance, 0, len(instances))
	for _, instance := range instances {
		out = append(out, e.instanceInfo(e.world.Entry(instance)))
	}
	return out
}

// HasEffect reports whether target carries an effect with this name and
// mode.
func (e *Engine) HasEffect(target donburi.Entity, name string, mode Mode) bool {
	for _, instance := range e.byTarget[target] {
		entry := e.world.Entry(instance)
		if string(*NameComponent.Get(entry)) == name && *ModeComponent.Get(entry) == mode {
			return true
		}
	}
	return false
}

// Count returns the number of live effect instances across all targets.
func (e *Engine) Count() int {
	n := 0
	for _, instances := range e.byTarget {
		n += len(instances)
	}
	return n
}
