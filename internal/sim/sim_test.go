package sim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/alchemy/catalog"
	"github.com/udisondev/alchemy/effect"
)

func poisonBundle(damage int32) effect.Bundle {
	delay := effect.NewDelay(time.Second)
	return effect.Bundle{
		Name:  "poison",
		Mode:  effect.ModeMerge,
		Delay: &delay,
		Payload: []effect.Component{
			effect.Data(PoisonComponent, Poison{Damage: damage}),
			effect.Data(effect.StacksComponent, effect.NewStacks(1)),
		},
	}
}

func hasteBundle(mult float64, lifetime time.Duration) effect.Bundle {
	lt := effect.NewLifetime(lifetime)
	return effect.Bundle{
		Name:     "haste",
		Mode:     effect.ModeReplace,
		Lifetime: &lt,
		Payload: []effect.Component{
			effect.Data(HasteComponent, Haste{Multiplier: mult}),
		},
	}
}

func TestPoisonDamageFalloff(t *testing.T) {
	tests := []struct {
		name   string
		base   int32
		stacks int32
		want   int32
	}{
		{"single stack", 5, 1, 5},
		{"two stacks", 5, 2, 9},
		{"three stacks", 5, 3, 12},
		{"four stacks", 5, 4, 14},
		{"five stacks", 5, 5, 15},
		{"stacks clamp to base", 5, 9, 15},
		{"zero base", 0, 3, 0},
		{"stacks floor at one", 3, -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PoisonDamage(tt.base, tt.stacks))
		})
	}
}

func TestPoisonStacksHurtWithFalloff(t *testing.T) {
	w := New(100)

	for i := 0; i < 3; i++ {
		w.Engine.Apply(w.Target, poisonBundle(5))
	}
	w.Step(time.Second)

	require.Equal(t, 1, w.Engine.Count())
	effects := w.Engine.EffectsOn(w.Target)
	require.Len(t, effects, 1)
	assert.Equal(t, int32(3), effects[0].Stacks)

	// One completed cycle at three stacks: 5+4+3 damage.
	assert.Equal(t, int32(88), w.Health().Current)
}

func TestPoisonKeepsStrongestDose(t *testing.T) {
	w := New(100)

	w.Engine.Apply(w.Target, poisonBundle(5))
	w.Engine.Apply(w.Target, poisonBundle(3))
	w.Step(time.Second)

	// Two stacks of the stronger dose: 5+4.
	assert.Equal(t, int32(91), w.Health().Current)
}

func TestPoisonDoesNotTickMidCycle(t *testing.T) {
	w := New(100)

	w.Engine.Apply(w.Target, poisonBundle(5))
	w.Step(400 * time.Millisecond)
	assert.Equal(t, int32(100), w.Health().Current)

	w.Step(600 * time.Millisecond)
	assert.Equal(t, int32(95), w.Health().Current)
}

func TestHealthFloorsAtZero(t *testing.T) {
	w := New(3)

	w.Engine.Apply(w.Target, poisonBundle(5))
	w.Step(time.Second)

	assert.Equal(t, int32(0), w.Health().Current)
}

func TestHasteDecaysWithLifetime(t *testing.T) {
	w := New(100)

	w.Engine.Apply(w.Target, hasteBundle(2.0, 2*time.Second))
	w.Step(0)
	assert.InDelta(t, 2.0, w.Speed(), 1e-9)

	w.Step(time.Second)
	assert.InDelta(t, 1.5, w.Speed(), 1e-9)
}

func TestHasteExpiresAtFrameBoundary(t *testing.T) {
	w := New(100)

	w.Engine.Apply(w.Target, hasteBundle(2.0, 2*time.Second))
	w.Step(0)

	const frame = time.Second / 60
	for i := 0; i < 120; i++ {
		w.Step(frame)
	}
	require.Equal(t, 1, w.Engine.Count(), "haste expired one frame early")

	w.Step(frame)
	assert.Equal(t, 0, w.Engine.Count())
	assert.InDelta(t, 1.0, w.Speed(), 1e-9)
}

func TestCatalogDrivesTheScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
effects:
  - name: poison
    mode: merge
    lifetime:
      seconds: 4
    delay:
      seconds: 1
    stacks:
      count: 1
      max: 5
    payload: poison
    params:
      damage: 5
  - name: haste
    mode: replace
    lifetime:
      seconds: 2
    payload: haste
    params:
      multiplier: 2
`), 0o644))

	cat := catalog.New()
	RegisterPayloads(cat)
	require.NoError(t, cat.LoadFile(path))

	w := New(100)
	for i := 0; i < 2; i++ {
		b, err := cat.Bundle("poison")
		require.NoError(t, err)
		w.Engine.Apply(w.Target, b)
	}
	b, err := cat.Bundle("haste")
	require.NoError(t, err)
	w.Engine.Apply(w.Target, b)

	w.Step(time.Second)

	// Two poison stacks completed a cycle: 5+4 damage.
	assert.Equal(t, int32(91), w.Health().Current)
	assert.InDelta(t, 1.5, w.Speed(), 1e-9)
	assert.True(t, w.Engine.HasEffect(w.Target, "poison", effect.ModeMerge))
	assert.True(t, w.Engine.HasEffect(w.Target, "haste", effect.ModeReplace))
}
