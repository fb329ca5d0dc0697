// cmd/ddcpacer/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/ddcpacer/internal/config"
	"github.com/tamzrod/ddcpacer/internal/feedback"
	"github.com/tamzrod/ddcpacer/internal/i2c"
	"github.com/tamzrod/ddcpacer/internal/poller"
	"github.com/tamzrod/ddcpacer/internal/stats"
	"github.com/tamzrod/ddcpacer/internal/status"
	"github.com/tamzrod/ddcpacer/internal/timing"
	"github.com/tamzrod/ddcpacer/internal/writer"
)

func main() {
	var (
		sleepMultiplier = flag.Float64("sleep-multiplier", 0, "static sleep multiplier (overrides timing.sleep_multiplier)")
		deferredSleep   = flag.Bool("deferred-sleep", false, "defer post-command delays until the next bus operation")
		dynamicSleep    = flag.Bool("dynamic-sleep", false, "adjust delays from observed error rates")
		ioStrategy      = flag.String("io-strategy", "", "i2c io strategy: ioctl or fileio")
		debug           = flag.Bool("debug", false, "debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ddcpacer [flags] <config.yaml>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(flag.Arg(0))
	if err != nil {
		fatal("config load failed", err)
	}

	// command line wins over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sleep-multiplier":
			cfg.Timing.SleepMultiplier = *sleepMultiplier
		case "deferred-sleep":
			cfg.Timing.DeferredSleep = *deferredSleep
		case "dynamic-sleep":
			cfg.Timing.DynamicSleep = *dynamicSleep
		case "io-strategy":
			cfg.I2C.IOStrategy = *ioStrategy
		case "debug":
			if *debug {
				cfg.Log.Level = "debug"
			}
		}
	})

	if err := config.Validate(cfg); err != nil {
		fatal("config validation failed", err)
	}
	config.Normalize(cfg)

	log := newLogger(cfg.Log.Level)
	slog.SetDefault(log)

	// --------------------
	// Shared timing + bus layer
	// --------------------

	dispatcher := i2c.NewDispatcher(i2c.WithLogger(log))
	strategy, _ := i2c.ParseStrategy(cfg.I2C.IOStrategy) // validated above
	if _, err := dispatcher.SetStrategy(strategy); err != nil {
		fatal("io strategy", err)
	}

	recorder := stats.NewRecorder()
	controller := feedback.New(feedback.Config{
		Window:        cfg.Feedback.Window,
		MinSamples:    cfg.Feedback.MinSamples,
		CheckInterval: cfg.Feedback.CheckInterval,
	}, log)

	sleeper := timing.NewSleeper(timing.Options{
		Feedback:      controller,
		Recorder:      recorder,
		Logger:        log,
		DeferredSleep: cfg.Timing.DeferredSleep,
	})

	deps := poller.Deps{
		Bus:      dispatcher,
		Timer:    sleeper,
		Outcomes: controller,
		Logger:   log,
		Session: timing.SessionConfig{
			MultiplierFactor: cfg.Timing.SleepMultiplier,
			Dynamic:          cfg.Timing.DynamicSleep,
		},
		ReadBytewise: cfg.I2C.ReadBytewise,
	}

	log.Info("ddcpacer: starting",
		"displays", len(cfg.Displays),
		"io_strategy", dispatcher.Strategy(),
		"sleep_multiplier", cfg.Timing.SleepMultiplier,
		"deferred_sleep", sleeper.IsDeferredSleepEnabled(),
		"dynamic_sleep", cfg.Timing.DynamicSleep,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// --------------------
	// Build per-display pipelines
	// --------------------

	for _, d := range cfg.Displays {

		// ---- poller ----
		p, _, closePoller, err := poller.Build(d, deps)
		if err != nil {
			fatal("poller build failed", err, "display", d.ID)
		}
		defer closePoller()

		// ---- writer plan ----
		plan, err := writer.BuildPlan(d, cfg.StatusMemory)
		if err != nil {
			fatal("writer plan failed", err, "display", d.ID)
		}

		// ---- writer clients (DATA + STATUS) ----
		clients, closeWriters, err := writer.BuildEndpointClients(d, cfg.StatusMemory)
		if err != nil {
			fatal("writer clients failed", err, "display", d.ID)
		}
		defer closeWriters()

		dataWriter := writer.New(plan, clients)
		statusWriter, statusEnabled := writer.NewDeviceStatusWriter(plan, clients)

		// ---- channel between poller and orchestrator ----
		out := make(chan poller.PollResult)

		o := &orchestrator{
			displayID: d.ID,
			data:      dataWriter,
			log:       log.With("display", d.ID),
		}
		if statusEnabled {
			o.status = statusWriter
		}

		g.Go(func() error {
			p.Run(gctx, out)
			return nil
		})
		g.Go(func() error {
			return o.run(gctx, out)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("ddcpacer: stopped with error", "err", err)
	}

	log.Info("ddcpacer: stopped", "sleep_events", recorder.Snapshot(), "total", recorder.Total())
}

// orchestrator owns one display's status state.
// Runner-owned state + 1Hz seconds ticker.
type orchestrator struct {
	displayID string
	data      writer.Writer
	status    writer.StatusWriter // nil => disabled
	tracker   status.Tracker
	log       *slog.Logger
}

func (o *orchestrator) run(ctx context.Context, in <-chan poller.PollResult) error {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert).
	o.writeStatus(o.tracker.Current())

	for {
		select {
		case <-ctx.Done():
			return nil

		case res := <-in:
			if res.Err != nil {
				o.log.Debug("ddcpacer: poll failed", "err", res.Err, "status", res.LastStatus)
			}

			// --- data delivery ---
			if err := o.data.Write(res); err != nil {
				o.log.Warn("ddcpacer: writer error", "err", err)
			}

			// --- status update (display-level truth) ---
			o.writeStatus(o.tracker.Observe(res))

		case now := <-secTicker.C:
			o.writeStatus(o.tracker.Tick(now))
		}
	}
}

func (o *orchestrator) writeStatus(s status.Snapshot) {
	if o.status == nil {
		return
	}
	if err := o.status.WriteStatus(s); err != nil {
		o.log.Warn("ddcpacer: status write failed", "err", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	switch level {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

func fatal(msg string, err error, args ...any) {
	slog.Error("ddcpacer: "+msg, append([]any{"err", err}, args...)...)
	os.Exit(1)
}
