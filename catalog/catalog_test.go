package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/udisondev/alchemy/effect"
)

type dose struct {
	Amount float64
}

var doseComponent = donburi.NewComponentType[dose]()

func writeDefs(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "effects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newTestCatalog() *Catalog {
	c := New()
	c.RegisterPayload("dose", func(params map[string]float64) []effect.Component {
		return []effect.Component{effect.Data(doseComponent, dose{Amount: params["amount"]})}
	})
	return c
}

const validDefs = `
effects:
  - name: venom
    mode: merge
    lifetime:
      seconds: 4
    delay:
      seconds: 1
    stacks:
      count: 1
      max: 5
    payload: dose
    params:
      amount: 5
  - name: stun
    mode: replace
    lifetime:
      seconds: 0.5
      policy: replace
`

func TestLoadFileCompilesDefinitions(t *testing.T) {
	c := newTestCatalog()
	require.NoError(t, c.LoadFile(writeDefs(t, validDefs)))

	assert.Equal(t, []string{"venom", "stun"}, c.Names())

	b, err := c.Bundle("venom")
	require.NoError(t, err)
	assert.Equal(t, "venom", b.Name)
	assert.Equal(t, effect.ModeMerge, b.Mode)
	require.NotNil(t, b.Lifetime)
	assert.Equal(t, 4*time.Second, b.Lifetime.Timer.Duration())
	assert.Equal(t, effect.MergeMax, b.Lifetime.Policy)
	require.NotNil(t, b.Delay)
	assert.Equal(t, time.Second, b.Delay.Timer.Duration())
	assert.Equal(t, effect.MergeFraction, b.Delay.Policy)
	// dose payload plus the stack counter
	require.Len(t, b.Payload, 2)

	stun, err := c.Bundle("stun")
	require.NoError(t, err)
	assert.Equal(t, effect.ModeReplace, stun.Mode)
	assert.Equal(t, effect.MergeReplace, stun.Lifetime.Policy)
	assert.Equal(t, 500*time.Millisecond, stun.Lifetime.Timer.Duration())
	assert.Nil(t, stun.Delay)
	assert.Empty(t, stun.Payload)
}

func TestBundleReturnsFreshTimers(t *testing.T) {
	c := newTestCatalog()
	require.NoError(t, c.LoadFile(writeDefs(t, validDefs)))

	first, err := c.Bundle("venom")
	require.NoError(t, err)
	first.Lifetime.Timer.Tick(3 * time.Second)

	second, err := c.Bundle("venom")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), second.Lifetime.Timer.Elapsed())
}

func TestBundleUnknownEffect(t *testing.T) {
	c := newTestCatalog()
	_, err := c.Bundle("missing")
	assert.ErrorIs(t, err, ErrUnknownEffect)
}

func TestLoadFileUnknownMode(t *testing.T) {
	c := newTestCatalog()
	err := c.LoadFile(writeDefs(t, `
effects:
  - name: broken
    mode: accumulate
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLoadFileUnknownPolicy(t *testing.T) {
	c := newTestCatalog()
	err := c.LoadFile(writeDefs(t, `
effects:
  - name: broken
    mode: merge
    lifetime:
      seconds: 1
      policy: average
`))
	assert.Error(t, err)
}

func TestLoadFileUnknownPayload(t *testing.T) {
	c := New()
	err := c.LoadFile(writeDefs(t, `
effects:
  - name: venom
    mode: merge
    payload: dose
`))
	assert.ErrorIs(t, err, ErrUnknownPayload)
}

func TestLoadFileDuplicateName(t *testing.T) {
	c := newTestCatalog()
	err := c.LoadFile(writeDefs(t, `
effects:
  - name: venom
    mode: merge
  - name: venom
    mode: merge
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadFileMissingName(t *testing.T) {
	c := newTestCatalog()
	err := c.LoadFile(writeDefs(t, `
effects:
  - mode: merge
`))
	assert.Error(t, err)
}

func TestLoadFileMissingFile(t *testing.T) {
	c := newTestCatalog()
	err := c.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
