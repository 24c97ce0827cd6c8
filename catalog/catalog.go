// Package catalog loads designer-authored effect definitions and compiles
// them into ready-to-apply bundles. Gameplay payloads are produced by
// factories the game registers by name before loading.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/alchemy/effect"
)

var (
	// ErrUnknownEffect is returned by Bundle for names the catalog
	// never loaded.
	ErrUnknownEffect = errors.New("unknown effect")
	// ErrUnknownPayload is returned by LoadFile when a definition
	// references a payload factory nobody registered.
	ErrUnknownPayload = errors.New("unknown payload factory")
)

// Definition is one designer-authored effect entry.
type Definition struct {
	Name     string             `yaml:"name" json:"name" jsonschema:"title=Effect name,description=Unique effect identity within its mode.,minLength=1,required"`
	Mode     string             `yaml:"mode" json:"mode" jsonschema:"title=Application mode,description=How a re-application against the same target resolves.,enum=stack,enum=replace,enum=merge,required"`
	Lifetime *TimerDef          `yaml:"lifetime,omitempty" json:"lifetime,omitempty" jsonschema:"title=Lifetime,description=Despawns the effect once elapsed. Omit for effects that last until removed."`
	Delay    *TimerDef          `yaml:"delay,omitempty" json:"delay,omitempty" jsonschema:"title=Delay,description=Period of the effect's repeating work."`
	Stacks   *StacksDef         `yaml:"stacks,omitempty" json:"stacks,omitempty" jsonschema:"title=Stacks,description=Seed for the stack counter on merge-mode effects."`
	Payload  string             `yaml:"payload,omitempty" json:"payload,omitempty" jsonschema:"title=Payload factory,description=Registered factory producing the gameplay components."`
	Params   map[string]float64 `yaml:"params,omitempty" json:"params,omitempty" jsonschema:"title=Parameters,description=Designer tunables forwarded to the payload factory."`
}

// TimerDef configures a lifetime or delay timer.
type TimerDef struct {
	Seconds float64 `yaml:"seconds" json:"seconds" jsonschema:"title=Seconds,minimum=0,required"`
	Policy  string  `yaml:"policy,omitempty" json:"policy,omitempty" jsonschema:"title=Merge policy,description=How the timer combines on merge. Defaults to max for lifetimes and fraction for delays.,enum=replace,enum=keep,enum=fraction,enum=max,enum=sum"`
}

// StacksDef seeds the stack counter.
type StacksDef struct {
	Count int32 `yaml:"count,omitempty" json:"count,omitempty" jsonschema:"title=Initial count,minimum=0"`
	Max   int32 `yaml:"max,omitempty" json:"max,omitempty" jsonschema:"title=Cap,description=Upper bound for merged stacks. Zero means uncapped.,minimum=0"`
}

// File is the on-disk shape of a definitions file.
type File struct {
	Effects []Definition `yaml:"effects" json:"effects" jsonschema:"title=Effects,required"`
}

// PayloadFunc builds the gameplay components for one application.
// Implementations must return fresh values every call.
type PayloadFunc func(params map[string]float64) []effect.Component

type compiled struct {
	mode     effect.Mode
	lifetime *effect.Lifetime
	delay    *effect.Delay
	stacks   *effect.Stacks
	payload  PayloadFunc
	params   map[string]float64
}

// Catalog maps effect names to compiled definitions. Register payload
// factories first, then load definition files; loading validates every
// reference eagerly.
type Catalog struct {
	factories map[string]PayloadFunc
	defs      map[string]compiled
	order     []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		factories: make(map[string]PayloadFunc),
		defs:      make(map[string]compiled),
	}
}

// RegisterPayload installs fn as the factory behind the given payload
// name. The last registration wins.
func (c *Catalog) RegisterPayload(name string, fn PayloadFunc) {
	c.factories[name] = fn
}

// LoadFile reads a YAML definitions file and compiles every entry.
// Loading stops at the first invalid definition.
func (c *Catalog) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read effect definitions: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse effect definitions %s: %w", path, err)
	}

	for _, def := range file.Effects {
		cd, err := c.compile(def)
		if err != nil {
			return fmt.Errorf("effect %q: %w", def.Name, err)
		}
		if _, dup := c.defs[def.Name]; dup {
			return fmt.Errorf("effect %q: duplicate definition", def.Name)
		}
		c.defs[def.Name] = cd
		c.order = append(c.order, def.Name)
	}
	return nil
}

func (c *Catalog) compile(def Definition) (compiled, error) {
	if def.Name == "" {
		return compiled{}, errors.New("missing name")
	}

	mode, err := effect.ParseMode(def.Mode)
	if err != nil {
		return compiled{}, err
	}
	cd := compiled{mode: mode, params: def.Params}

	if def.Lifetime != nil {
		lt := effect.NewLifetime(seconds(def.Lifetime.Seconds))
		if def.Lifetime.Policy != "" {
			p, err := effect.ParseMergePolicy(def.Lifetime.Policy)
			if err != nil {
				return compiled{}, fmt.Errorf("lifetime: %w", err)
			}
			lt = lt.WithPolicy(p)
		}
		cd.lifetime = &lt
	}
	if def.Delay != nil {
		d := effect.NewDelay(seconds(def.Delay.Seconds))
		if def.Delay.Policy != "" {
			p, err := effect.ParseMergePolicy(def.Delay.Policy)
			if err != nil {
				return compiled{}, fmt.Errorf("delay: %w", err)
			}
			d = d.WithPolicy(p)
		}
		cd.delay = &d
	}
	if def.Stacks != nil {
		s := effect.NewStacks(def.Stacks.Count).WithMax(def.Stacks.Max)
		cd.stacks = &s
	}
	if def.Payload != "" {
		fn, ok := c.factories[def.Payload]
		if !ok {
			return compiled{}, fmt.Errorf("%w: %q", ErrUnknownPayload, def.Payload)
		}
		cd.payload = fn
	}
	return cd, nil
}

func seconds(s float64) time.Duration {
	if s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

// Bundle assembles a fresh application bundle for the named effect.
// Timers start at zero elapsed on every call.
func (c *Catalog) Bundle(name string) (effect.Bundle, error) {
	cd, ok := c.defs[name]
	if !ok {
		return effect.Bundle{}, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}

	b := effect.Bundle{Name: name, Mode: cd.mode}
	if cd.lifetime != nil {
		lt := *cd.lifetime
		b.Lifetime = &lt
	}
	if cd.delay != nil {
		d := *cd.delay
		b.Delay = &d
	}
	if cd.payload != nil {
		b.Payload = cd.payload(cd.params)
	}
	if cd.stacks != nil {
		b.Payload = append(b.Payload, effect.Data(effect.StacksComponent, *cd.stacks))
	}
	return b, nil
}

// Names lists the loaded effect names in file order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
