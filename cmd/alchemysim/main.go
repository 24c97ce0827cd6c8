package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/alchemy/catalog"
	"github.com/udisondev/alchemy/internal/config"
	"github.com/udisondev/alchemy/internal/sim"
)

const ConfigPath = "configs/alchemysim.yaml"

// errQuit signals a user-requested exit from the frame loop.
var errQuit = errors.New("quit")

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("ALCHEMYSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSim(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The screen owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile("alchemysim.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("alchemysim starting",
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate,
		"defs", cfg.Defs)

	cat := catalog.New()
	sim.RegisterPayloads(cat)
	if err := cat.LoadFile(cfg.Defs); err != nil {
		return fmt.Errorf("loading effect definitions: %w", err)
	}
	slog.Info("effect definitions loaded", "count", len(cat.Names()))

	w := sim.New(cfg.Scenario.Health)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	screen.HideCursor()

	g, gctx := errgroup.WithContext(ctx)

	eventCh := make(chan tcell.Event, 32)
	g.Go(func() error {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case eventCh <- ev:
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		// Fini unblocks PollEvent so the event goroutine can exit.
		defer screen.Fini()
		return frameLoop(gctx, screen, eventCh, w, cat, cfg.TickRate)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("simulator: %w", err)
	}

	slog.Info("alchemysim stopped")
	return nil
}

// frameLoop runs the fixed-step simulation and redraws the HUD every
// tick. Digits apply catalog effects to the target, 'c' clears it,
// 'q' or Escape quits.
func frameLoop(ctx context.Context, screen tcell.Screen, events <-chan tcell.Event, w *sim.World, cat *catalog.Catalog, tickRate int) error {
	frame := time.Second / time.Duration(tickRate)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	names := cat.Names()
	render(screen, w, names)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Step(frame)
			render(screen, w, names)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return errQuit
				case tcell.KeyRune:
					switch r := ev.Rune(); {
					case r == 'q':
						return errQuit
					case r == 'c':
						w.Engine.ClearTarget(w.Target)
					case r >= '1' && r <= '9':
						idx := int(r - '1')
						if idx < len(names) {
							b, err := cat.Bundle(names[idx])
							if err != nil {
								return fmt.Errorf("building %q: %w", names[idx], err)
							}
							w.Engine.Apply(w.Target, b)
						}
					}
				}
			}
		}
	}
}

func render(screen tcell.Screen, w *sim.World, names []string) {
	screen.Clear()

	normal := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	accent := tcell.StyleDefault.Foreground(tcell.ColorGreen)

	hp := w.Health()
	drawText(screen, 0, 0, fmt.Sprintf("HP %4d/%d %s", hp.Current, hp.Maximum, healthBar(hp, 20)), normal)
	drawText(screen, 0, 1, fmt.Sprintf("Speed x%.2f", w.Speed()), normal)

	effects := w.Engine.EffectsOn(w.Target)
	drawText(screen, 0, 3, fmt.Sprintf("Active effects (%d)", len(effects)), accent)
	y := 4
	for _, in := range effects {
		line := fmt.Sprintf("%-12s %-8s x%d", in.Name, in.Mode, in.Stacks)
		if in.Lifetime != nil {
			line += fmt.Sprintf("  %4.1fs left (%3.0f%%)",
				in.Lifetime.Timer.Remaining().Seconds(),
				in.Lifetime.Timer.FractionRemaining()*100)
		}
		if in.Delay != nil {
			line += fmt.Sprintf("  next tick %3.0f%%", in.Delay.Timer.Fraction()*100)
		}
		drawText(screen, 2, y, line, normal)
		y++
	}

	y++
	drawText(screen, 0, y, "Apply", accent)
	y++
	for i, name := range names {
		if i >= 9 {
			break
		}
		drawText(screen, 2, y, fmt.Sprintf("[%d] %s", i+1, name), normal)
		y++
	}
	y++
	drawText(screen, 0, y, "[c] clear target   [q] quit", dim)

	screen.Show()
}

func healthBar(h sim.Health, width int) string {
	filled := 0
	if h.Maximum > 0 {
		filled = int(float64(h.Current) / float64(h.Maximum) * float64(width))
	}
	if filled > width {
		filled = width
	}
	bar := make([]rune, 0, width+2)
	bar = append(bar, '[')
	for i := 0; i < width; i++ {
		if i < filled {
			bar = append(bar, '#')
		} else {
			bar = append(bar, '-')
		}
	}
	bar = append(bar, ']')
	return string(bar)
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}
