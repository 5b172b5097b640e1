package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/multistrip/cmd"
	"github.com/smazurov/multistrip/internal/api"
	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/config"
	"github.com/smazurov/multistrip/internal/controller"
	"github.com/smazurov/multistrip/internal/events"
	"github.com/smazurov/multistrip/internal/led"
	"github.com/smazurov/multistrip/internal/logging"
	"github.com/smazurov/multistrip/internal/metrics/collectors"
	"github.com/smazurov/multistrip/internal/metrics/exporters"
	"github.com/smazurov/multistrip/internal/multistrip"
	"github.com/smazurov/multistrip/internal/pins"
	"github.com/smazurov/multistrip/internal/store"
	"github.com/smazurov/multistrip/internal/systemd"
	"github.com/smazurov/multistrip/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8091" toml:"server.port" env:"SERVER_PORT"`

	// Strips settings
	StripsFile           string `help:"Bus table and multi-strip settings file" default:"strips.toml" toml:"strips.file" env:"STRIPS_FILE"`
	StripsSaveOnShutdown bool   `help:"Write the live bus table back on shutdown" default:"true" toml:"strips.save_on_shutdown" env:"STRIPS_SAVE_ON_SHUTDOWN"`
	StripsChannels       int    `help:"Number of active channels (1-3)" default:"3" toml:"strips.channels" env:"STRIPS_CHANNELS"`

	// GPIO settings
	GpioBackend string `help:"Line driver (gpiocdev, sim)" default:"gpiocdev" toml:"gpio.backend" env:"GPIO_BACKEND"`
	GpioChip    string `help:"GPIO character device" default:"gpiochip0" toml:"gpio.chip" env:"GPIO_CHIP"`

	// Scheduler settings
	SchedulerTickMs int `help:"Host loop period in milliseconds" default:"20" toml:"scheduler.tick_ms" env:"SCHEDULER_TICK_MS"`

	// Metrics settings
	MetricsEnabled bool `help:"Serve Prometheus metrics at /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Features settings
	FeaturesStatusLed bool `help:"Show the multi-strip state on the board status LED" default:"false" toml:"features.status_led" env:"FEATURES_STATUS_LED"`

	// Auth settings
	AuthUsername string `help:"Basic auth username, empty disables auth" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel      string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat     string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingMultistrip string `help:"Channel switching logging level" default:"info" toml:"logging.multistrip" env:"LOGGING_MULTISTRIP"`
	LoggingPins       string `help:"GPIO line ownership logging level" default:"info" toml:"logging.pins" env:"LOGGING_PINS"`
	LoggingBusses     string `help:"Bus table logging level" default:"info" toml:"logging.busses" env:"LOGGING_BUSSES"`
	LoggingController string `help:"Controller logging level" default:"info" toml:"logging.controller" env:"LOGGING_CONTROLLER"`
	LoggingAPI        string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func openDriver(backend, chip string, logger *slog.Logger) (pins.Driver, int) {
	if backend == "sim" {
		logger.Info("Using simulated GPIO lines")
		return pins.NewSim(), 0
	}
	driver, lines, err := pins.NewChipDriver(chip)
	if err != nil {
		logger.Warn("GPIO chip unavailable, falling back to simulated lines", "chip", chip, "error", err)
		return pins.NewSim(), 0
	}
	logger.Info("GPIO chip opened", "chip", chip, "lines", lines)
	return driver, lines - 1
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"multistrip": opts.LoggingMultistrip,
				"pins":       opts.LoggingPins,
				"busses":     opts.LoggingBusses,
				"controller": opts.LoggingController,
				"api":        opts.LoggingAPI,
			},
		})
		logger := logging.GetLogger("main")

		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(api.LogEvent(entry))
		})

		var (
			ctl       *controller.Controller
			gateway   *pins.Manager
			watcher   *config.Watcher[store.Document]
			collector *collectors.EventCollector
			leds      *led.Manager
			server    *api.Server
		)
		notifier := systemd.NewNotifier(logger)

		// GPIO lines are claimed here rather than above so subcommands never touch the chip.
		hooks.OnStart(func() {
			logger.Info("Starting multistrip", "version", version.String())

			file, err := store.Open(opts.StripsFile)
			if err != nil {
				logger.Error("Failed to load strips file", "file", opts.StripsFile, "error", err)
				os.Exit(1)
			}
			table, err := busses.NewTable(logging.GetLogger("busses"), file.Busses()...)
			if err != nil {
				logger.Error("Invalid bus table", "file", opts.StripsFile, "error", err)
				os.Exit(1)
			}

			driver, maxPin := openDriver(opts.GpioBackend, opts.GpioChip, logger)
			gateway = pins.NewManager(driver, maxPin, logging.GetLogger("pins"))

			mod := multistrip.NewManager(multistrip.Options{
				Busses:   table,
				Pins:     gateway,
				Lines:    gateway,
				Events:   eventBus,
				Logger:   logging.GetLogger("multistrip"),
				Channels: opts.StripsChannels,
			})

			if opts.MetricsEnabled {
				collector = collectors.NewEventCollector(eventBus, logging.GetLogger("metrics"))
				collector.Start()
			}

			ctl = controller.New(controller.Options{
				Module:     mod,
				Busses:     table,
				Store:      file,
				Tick:       time.Duration(opts.SchedulerTickMs) * time.Millisecond,
				SaveOnStop: opts.StripsSaveOnShutdown,
				Logger:     logging.GetLogger("controller"),
			})
			initialized := ctl.Start(context.Background())

			if opts.FeaturesStatusLed {
				leds = led.NewManager(led.New(logging.GetLogger("led")), eventBus, logging.GetLogger("led"))
				leds.Start(initialized)
			}

			watcher = config.NewConfigWatcher(opts.StripsFile, func(path string) (store.Document, error) {
				f, err := store.Open(path)
				if err != nil {
					return store.Document{}, err
				}
				return f.Document(), nil
			}, logging.GetLogger("config"))
			watcher.OnReload(ctl.Reload)
			if err := watcher.Start(); err != nil {
				logger.Warn("Strips file edits will not be picked up", "error", err)
			}

			apiOpts := &api.Options{
				AuthUsername: opts.AuthUsername,
				AuthPassword: opts.AuthPassword,
				Controller:   ctl,
				EventBus:     eventBus,
			}
			if opts.MetricsEnabled {
				apiOpts.PrometheusHandler = exporters.HTTPHandler()
			}
			server = api.NewServer(apiOpts)

			notifier.Ready(context.Background())
			notifier.Status(fmt.Sprintf("%d busses, channels initialized: %t", len(table.Snapshot()), initialized))

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			notifier.Stopping()
			if server != nil {
				if stopErr := server.Stop(); stopErr != nil {
					logger.Error("Error stopping HTTP server", "error", stopErr)
				}
			}
			// Stop watching first so our own save does not trigger a reload.
			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping strips file watcher", "error", stopErr)
				}
			}
			if ctl != nil {
				if stopErr := ctl.Stop(); stopErr != nil {
					logger.Error("Failed to save strips file", "error", stopErr)
				}
			}
			if leds != nil {
				leds.Stop()
			}
			if collector != nil {
				collector.Stop()
			}
			if gateway != nil {
				if closeErr := gateway.Close(); closeErr != nil {
					logger.Warn("Error releasing GPIO lines", "error", closeErr)
				}
			}
		})
	})

	cli.Root().Use = "multistrip"
	cli.Root().Version = version.String()
	cli.Root().AddCommand(cmd.CreateCheckCmd())
	cli.Root().AddCommand(cmd.CreateSimulateCmd())

	cli.Run()
}
