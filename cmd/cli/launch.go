package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"perfi.com/internal/application/usecase"
	"perfi.com/internal/domain/port"
	"perfi.com/internal/infrastructure/logger"
	"perfi.com/internal/infrastructure/portfinder"
	"perfi.com/internal/infrastructure/preference"
	"perfi.com/internal/infrastructure/process"
	"perfi.com/internal/infrastructure/readiness"
	"perfi.com/internal/infrastructure/window"
)

var flagHeadless bool //nolint:gochecknoglobals

var launchCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "launch",
	Short: "Start the backend and open the application.",
	RunE: func(_ *cobra.Command, _ []string) error {
		appLogger := logger.NewLogger()

		cfg, err := loadConfig()
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to load config", err)
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLogger.LogInfo(context.TODO(), "Configuration loaded",
			"root_dir", cfg.Shell.RootDir,
			"base_port", cfg.Shell.BasePort,
			"readiness_attempts", cfg.Readiness.Attempts,
			"readiness_interval", cfg.Readiness.Interval.String())

		prefs, err := preference.Open(cfg.Preferences.Path)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to open preferences", err)
			return err
		}

		// Initialize infrastructure adapters
		finder := portfinder.NewFinder(cfg.Shell.BasePort, cfg.Shell.MaxPort)
		spawner := process.NewSpawner(process.Layout{
			RootDir:     cfg.Shell.RootDir,
			DistDir:     cfg.Backend.DistDir,
			Binary:      cfg.Backend.Binary,
			Interpreter: cfg.Backend.Interpreter,
			Script:      cfg.Backend.Script,
		}, appLogger.WithComponent("backend"))
		poller := readiness.NewPoller(readiness.Policy{
			MaxAttempts: cfg.Readiness.Attempts,
			Interval:    cfg.Readiness.Interval,
			Backoff:     cfg.Readiness.Backoff,
			MaxInterval: cfg.Readiness.MaxInterval,
		}, readiness.NewHTTPProber(5*time.Second), readiness.RealClock(), appLogger.WithComponent("readiness"))

		var windows port.WindowFactory
		if flagHeadless {
			windows = window.NewHeadlessFactory(appLogger)
		} else {
			windows = window.NewBrowserFactory(appLogger)
		}

		launcher := usecase.NewLauncher(finder, spawner, poller, windows, appLogger,
			usecase.WithPreferences(prefs))

		// Channel to capture termination signals
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
		defer signal.Stop(signalChan)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-signalChan:
				// Signals during startup abort the readiness wait.
				cancel()
				launcher.RequestQuit()
			case <-ctx.Done():
			}
		}()

		if err := launcher.Start(ctx); err != nil {
			stopErr := launcher.Stop(context.TODO())
			if errors.Is(err, context.Canceled) {
				appLogger.LogInfo(context.TODO(), "Launch interrupted")
				return stopErr
			}
			appLogger.LogError(context.TODO(), "Failed to launch", err)
			return err
		}

		<-launcher.Quit()
		appLogger.LogInfo(context.TODO(), "Quitting application")

		return launcher.Stop(context.TODO())
	},
}

func init() { //nolint:gochecknoinits
	launchCmd.Flags().BoolVar(&flagHeadless, "headless", false, "do not open a browser, only log the application URL")
	rootCmd.AddCommand(launchCmd)
}
