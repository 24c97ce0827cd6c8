// Package effect manages status effects on top of a donburi world.
//
// Every active effect is its own entity: the gameplay payload components
// plus metadata describing the effect's name, how a re-application
// resolves, the optional lifetime and delay timers, and a back-reference
// to the target entity. The Engine owns application, merging, expiry and
// removal; gameplay reads the public components through ordinary donburi
// queries or the Engine's snapshot helpers.
package effect

import (
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"
)

// Mode decides what an application does when the target already has an
// effect with the same name and mode.
type Mode int

const (
	// ModeStack spawns a fresh instance alongside any existing ones.
	ModeStack Mode = iota
	// ModeReplace overwrites the existing instance in place.
	ModeReplace
	// ModeMerge overwrites in place, then combines the previous state
	// back in through the registered merge functions.
	ModeMerge
)

func (m Mode) String() string {
	switch m {
	case ModeStack:
		return "stack"
	case ModeReplace:
		return "replace"
	case ModeMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// ParseMode maps the config spelling of a mode to its value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "stack":
		return ModeStack, nil
	case "replace":
		return ModeReplace, nil
	case "merge":
		return ModeMerge, nil
	default:
		return 0, fmt.Errorf("unknown effect mode %q", s)
	}
}

// Name identifies an effect kind. Instances sharing a name but applied
// under different modes are distinct effects.
type Name string

// Target points an effect instance back at the entity it acts upon.
type Target struct {
	Entity donburi.Entity
}

var (
	NameComponent     = donburi.NewComponentType[Name]()
	ModeComponent     = donburi.NewComponentType[Mode]()
	TargetComponent   = donburi.NewComponentType[Target]()
	LifetimeComponent = donburi.NewComponentType[Lifetime]()
	DelayComponent    = donburi.NewComponentType[Delay]()
	StacksComponent   = donburi.NewComponentType[Stacks]()
)

// Component is a typed component value carried by a Bundle payload.
type Component interface {
	// Type returns the donburi component the value belongs to.
	Type() component.IComponentType

	write(*donburi.Entry)
}

type data[T any] struct {
	ctype *donburi.ComponentType[T]
	value T
}

// Data wraps a concrete value for inclusion in a Bundle payload.
func Data[T any](ctype *donburi.ComponentType[T], value T) Component {
	return data[T]{ctype: ctype, value: value}
}

func (d data[T]) Type() component.IComponentType { return d.ctype }

func (d data[T]) write(e *donburi.Entry) {
	if e.HasComponent(d.ctype) {
		d.ctype.SetValue(e, d.value)
		return
	}
	donburi.Add(e, d.ctype, &d.value)
}

// Bundle describes a single application of an effect: its identity, the
// resolution mode, the optional timers and the gameplay payload.
// Components the bundle does not carry are never touched on the instance
// it lands on.
type Bundle struct {
	Name     string
	Mode     Mode
	Lifetime *Lifetime
	Delay    *Delay
	Payload  []Component
}

func (b Bundle) componentTypes() []component.IComponentType {
	types := make([]component.IComponentType, 0, len(b.Payload)+5)
	types = append(types, NameComponent, ModeComponent, TargetComponent)
	if b.Lifetime != nil {
		types = append(types, LifetimeComponent)
	}
	if b.Delay != nil {
		types = append(types, DelayComponent)
	}
	for _, c := range b.Payload {
		types = append(types, c.Type())
	}
	return types
}

func (b Bundle) writeTo(entry *donburi.Entry, target donburi.Entity) {
	NameComponent.SetValue(entry, Name(b.Name))
	ModeComponent.SetValue(entry, b.Mode)
	TargetComponent.SetValue(entry, Target{Entity: target})
	if b.Lifetime != nil {
		Data(LifetimeComponent, *b.Lifetime).write(entry)
	}
	if b.Delay != nil {
		Data(DelayComponent, *b.Delay).write(entry)
	}
	for _, c := range b.Payload {
		c.write(entry)
	}
}
