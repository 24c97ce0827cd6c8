// Package sim wires a donburi world, the effect engine and a small combat
// scenario shared by the interactive simulator and the demo programs: a
// single practice target that poisons hurt and hastes speed up.
package sim

import (
	"log/slog"
	"time"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"github.com/yohamta/donburi/query"

	"github.com/udisondev/alchemy/catalog"
	"github.com/udisondev/alchemy/effect"
)

// Health is the practice target's hit point pool.
type Health struct {
	Current int32
	Maximum int32
}

// Poison deals damage every completed delay cycle, scaled by the stack
// counter with a falloff.
type Poison struct {
	Damage int32
}

// Haste raises movement speed while its lifetime lasts, decaying back
// toward normal as the lifetime runs out.
type Haste struct {
	Multiplier float64
}

var (
	HealthComponent = donburi.NewComponentType[Health]()
	PoisonComponent = donburi.NewComponentType[Poison]()
	HasteComponent  = donburi.NewComponentType[Haste]()
)

var (
	poisonQuery = query.NewQuery(filter.Contains(
		PoisonComponent, effect.TargetComponent, effect.DelayComponent))
	hasteQuery = query.NewQuery(filter.Contains(
		HasteComponent, effect.TargetComponent))
)

// World owns the scenario: the ECS world, the effect engine over it and
// the practice target.
type World struct {
	ECS    donburi.World
	Engine *effect.Engine
	Target donburi.Entity
}

// New builds a world with a practice target at the given health. Poison
// payloads merge by keeping the strongest dose.
func New(health int32, engineOpts ...effect.Option) *World {
	w := donburi.NewWorld()

	reg := effect.NewMergeRegistry()
	effect.RegisterMerge(reg, PoisonComponent, func(surviving *Poison, outgoing Poison) {
		if outgoing.Damage > surviving.Damage {
			surviving.Damage = outgoing.Damage
		}
	})

	eng := effect.NewEngine(w, reg, engineOpts...)

	target := w.Create(HealthComponent)
	HealthComponent.SetValue(w.Entry(target), Health{Current: health, Maximum: health})

	return &World{ECS: w, Engine: eng, Target: target}
}

// Step advances one frame: queued effect commands resolve, timers tick,
// then the scenario systems run.
func (w *World) Step(dt time.Duration) {
	w.Engine.Flush()
	w.Engine.Update(dt)
	w.tickPoison()
}

func (w *World) tickPoison() {
	poisonQuery.Each(w.ECS, func(entry *donburi.Entry) {
		ticks := effect.DelayComponent.Get(entry).Timer.TimesFinishedThisTick()
		if ticks == 0 {
			return
		}
		target := effect.TargetComponent.Get(entry).Entity
		if !w.ECS.Valid(target) {
			return
		}
		targetEntry := w.ECS.Entry(target)
		if !targetEntry.HasComponent(HealthComponent) {
			return
		}

		stacks := int32(1)
		if entry.HasComponent(effect.StacksComponent) {
			stacks = effect.StacksComponent.Get(entry).Count
		}
		damage := PoisonDamage(PoisonComponent.Get(entry).Damage, stacks) * int32(ticks)

		hp := HealthComponent.Get(targetEntry)
		hp.Current -= damage
		if hp.Current < 0 {
			hp.Current = 0
		}
		slog.Debug("poison tick",
			"target", target, "stacks", stacks, "damage", damage, "hp", hp.Current)
	})
}

// PoisonDamage returns the damage of one poison cycle. The first stack
// contributes the full base, every further stack one point less, and
// stacks past the base count are clamped off since they would contribute
// nothing.
func PoisonDamage(base, stacks int32) int32 {
	if base < 0 {
		base = 0
	}
	if stacks < 1 {
		stacks = 1
	}
	if stacks > base {
		stacks = base
	}
	return base*stacks - stacks*(stacks-1)/2
}

// Health returns the target's current hit points.
func (w *World) Health() Health {
	return *HealthComponent.Get(w.ECS.Entry(w.Target))
}

// Speed returns the target's speed multiplier. Hastes decay toward 1.0
// as their lifetimes run out and multiply together when several are
// active.
func (w *World) Speed() float64 {
	speed := 1.0
	hasteQuery.Each(w.ECS, func(entry *donburi.Entry) {
		if effect.TargetComponent.Get(entry).Entity != w.Target {
			return
		}
		h := HasteComponent.Get(entry)
		fraction := 1.0
		if entry.HasComponent(effect.LifetimeComponent) {
			fraction = effect.LifetimeComponent.Get(entry).Timer.FractionRemaining()
		}
		speed *= 1 + (h.Multiplier-1)*fraction
	})
	return speed
}

// RegisterPayloads installs the scenario payload factories into a
// catalog: "poison" reads the damage param, "haste" the multiplier.
func RegisterPayloads(c *catalog.Catalog) {
	c.RegisterPayload("poison", func(params map[string]float64) []effect.Component {
		base := int32(params["damage"])
		if base <= 0 {
			base = 5
		}
		return []effect.Component{effect.Data(PoisonComponent, Poison{Damage: base})}
	})
	c.RegisterPayload("haste", func(params map[string]float64) []effect.Component {
		mult := params["multiplier"]
		if mult <= 0 {
			mult = 1.5
		}
		return []effect.Component{effect.Data(HasteComponent, Haste{Multiplier: mult})}
	})
}
