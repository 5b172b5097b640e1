// Package controller drives the multi-strip hooks from a single goroutine
// and serialises the calls that arrive from HTTP handlers and file reloads.
package controller

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/metrics"
	"github.com/smazurov/multistrip/internal/multistrip"
	"github.com/smazurov/multistrip/internal/store"
)

// DefaultTick is the host scheduler granularity. The module paces its own
// sampling on top of it.
const DefaultTick = 20 * time.Millisecond

// Module is the hook surface plus a status view.
type Module interface {
	multistrip.Usermod
	Status() multistrip.Status
}

// Snapshotter exposes the live bus table.
type Snapshotter interface {
	Snapshot() []busses.Config
}

// Store persists the bus table and the module section.
type Store interface {
	Section() *multistrip.Section
	SetSection(*multistrip.Section)
	Busses() []busses.Config
	SetBusses([]busses.Config)
	Save() error
}

// Options configures a Controller.
type Options struct {
	Module     Module
	Busses     Snapshotter
	Store      Store
	Tick       time.Duration
	SaveOnStop bool
	Logger     *slog.Logger
}

// Controller owns the module. All hook calls go through its mutex.
type Controller struct {
	mod        Module
	busses     Snapshotter
	store      Store
	tick       time.Duration
	saveOnStop bool
	logger     *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a controller. Nothing runs until Start.
func New(opts Options) *Controller {
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Controller{
		mod:        opts.Module,
		busses:     opts.Busses,
		store:      opts.Store,
		tick:       tick,
		saveOnStop: opts.SaveOnStop,
		logger:     opts.Logger,
	}
}

// Start loads the stored section, initializes the module and begins
// polling every tick. It reports whether initialization succeeded; polling
// runs either way so a later pin change can recover.
func (c *Controller) Start(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return c.mod.Status().Initialized
	}

	if !c.mod.DeserializeConfig(c.store.Section()) {
		c.logger.Info("Strips file has no multi-strip section, using defaults")
	}
	ok := c.mod.Initialize()
	metrics.SetInitialized(ok)
	if !ok {
		c.logger.Warn("Multi-strip did not initialize; channel lines unavailable")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.started = true
	c.wg.Add(1)
	go c.run(runCtx)

	c.logger.Info("Controller started", "tick", c.tick, "initialized", ok)
	return ok
}

func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Poll()
		}
	}
}

// Poll runs one periodic hook.
func (c *Controller) Poll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mod.PeriodicPoll()
}

// Reload applies an edited strips file. Only the module section takes
// effect; bus definitions belong to the running table and are reported if
// they drifted.
func (c *Controller) Reload(doc store.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !busDefinitionsEqual(doc.Busses, c.busses.Snapshot()) {
		c.logger.Info("Bus definitions on disk differ from the running table; restart to apply them")
	}
	if doc.MultiStrip == nil {
		c.logger.Info("Reloaded strips file has no multi-strip section, keeping current settings")
		return
	}
	c.mod.DeserializeConfig(doc.MultiStrip)
	metrics.SetInitialized(c.mod.Status().Initialized)
}

// busDefinitionsEqual compares the fields an operator edits. Start offsets
// and strip types move at runtime and are ignored.
func busDefinitionsEqual(a, b []busses.Config) bool {
	return slices.EqualFunc(a, b, func(x, y busses.Config) bool {
		return slices.Equal(x.Pins, y.Pins) && x.Reversed == y.Reversed && x.Skip == y.Skip
	})
}

// Save writes the module section and the live bus table to the store.
func (c *Controller) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Controller) saveLocked() error {
	c.store.SetSection(c.mod.SerializeConfig())
	c.store.SetBusses(c.busses.Snapshot())
	if err := c.store.Save(); err != nil {
		return err
	}
	c.logger.Info("Strips file saved")
	return nil
}

// Status returns the module's status.
func (c *Controller) Status() multistrip.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mod.Status()
}

// Busses returns the live bus table.
func (c *Controller) Busses() []busses.Config {
	return c.busses.Snapshot()
}

// Stop ends polling, runs the shutdown hook and saves if configured.
func (c *Controller) Stop() error {
	c.mu.Lock()
	started := c.started
	cancel := c.cancel
	c.mu.Unlock()
	if !started {
		return nil
	}

	cancel()
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = false
	c.mod.Shutdown()
	metrics.SetInitialized(false)
	if c.saveOnStop {
		return c.saveLocked()
	}
	return nil
}
