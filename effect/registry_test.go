package effect

import (
	"testing"

	"github.com/yohamta/donburi"
)

func TestNewMergeRegistryPreloadsBuiltins(t *testing.T) {
	reg := NewMergeRegistry()

	if reg.Len() != 3 {
		t.Fatalf("expected 3 built-in registrations, got %d", reg.Len())
	}
	if _, ok := reg.lookup(LifetimeComponent); !ok {
		t.Error("lifetime merge not registered")
	}
	if _, ok := reg.lookup(DelayComponent); !ok {
		t.Error("delay merge not registered")
	}
	if _, ok := reg.lookup(StacksComponent); !ok {
		t.Error("stacks merge not registered")
	}
}

func TestRegisterMerge_LastRegistrationWins(t *testing.T) {
	w := donburi.NewWorld()
	reg := NewMergeRegistry()

	RegisterMerge(reg, venomComponent, func(surviving *venom, outgoing venom) {
		surviving.Damage += outgoing.Damage
	})
	// Override: keep the stronger dose instead of adding.
	RegisterMerge(reg, venomComponent, func(surviving *venom, outgoing venom) {
		if outgoing.Damage > surviving.Damage {
			surviving.Damage = outgoing.Damage
		}
	})
	if reg.Len() != 4 {
		t.Fatalf("expected 4 registrations, got %d", reg.Len())
	}

	eng := NewEngine(w, reg)
	target := w.Create(dummyComponent)
	applyNow(eng, target, venomBundle(ModeMerge, 9))
	applyNow(eng, target, venomBundle(ModeMerge, 5))

	got := venomComponent.Get(w.Entry(eng.EffectsOn(target)[0].Entity)).Damage
	if got != 9 {
		t.Fatalf("expected the override to keep damage 9, got %d", got)
	}
}

func TestRegisterMerge_BuiltinOverride(t *testing.T) {
	w := donburi.NewWorld()
	reg := NewMergeRegistry()

	// A game that wants hard stack resets can override the built-in.
	RegisterMerge(reg, StacksComponent, func(surviving *Stacks, outgoing Stacks) {
		surviving.Count = 1
	})

	eng := NewEngine(w, reg)
	target := w.Create(dummyComponent)

	b := venomBundle(ModeMerge, 5)
	b.Payload = append(b.Payload, Data(StacksComponent, NewStacks(1)))
	applyNow(eng, target, b)
	applyNow(eng, target, b)

	if got := eng.EffectsOn(target)[0].Stacks; got != 1 {
		t.Fatalf("expected overridden merge to pin stacks at 1, got %d", got)
	}
}
