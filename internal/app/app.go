package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/glmeal/internal/cli"
	"github.com/agbru/glmeal/internal/client"
	"github.com/agbru/glmeal/internal/config"
	apperrors "github.com/agbru/glmeal/internal/errors"
	"github.com/agbru/glmeal/internal/logging"
	"github.com/agbru/glmeal/internal/metrics"
	"github.com/agbru/glmeal/internal/orchestration"
	"github.com/agbru/glmeal/internal/tui"
	"github.com/agbru/glmeal/internal/ui"
)

// Application represents the glmeal application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	logger    logging.Logger
	logCloser io.Closer
	metrics   *metrics.Metrics
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "glmeal"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, ErrWriter: errWriter}, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)

	if err := a.setupLogger(); err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}
	defer a.closeLog()

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	if a.Config.MetricsAddr != "" {
		a.metrics = metrics.NewMetrics()
		go func() {
			if err := a.metrics.Serve(ctx, a.Config.MetricsAddr, a.logger); err != nil {
				a.logger.Error("metrics server stopped", err, logging.String("addr", a.Config.MetricsAddr))
			}
		}()
	}

	svc, err := a.newClient()
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}

	a.logger.Debug("starting",
		logging.String("mode", string(a.Config.Mode())),
		logging.String("url", a.Config.BaseURL),
		logging.String("version", Version))

	switch a.Config.Mode() {
	case config.ModeHealth:
		return a.runHealth(ctx, svc, out)
	case config.ModeFoods:
		return a.runFoods(ctx, svc, out)
	case config.ModeInteractive:
		return a.runTUI(ctx, svc)
	default:
		return a.runOneShot(ctx, svc, out)
	}
}

// setupLogger builds the structured logger. Logs go to -log-file when set.
// Otherwise they go to the error writer, except in interactive mode where
// they would corrupt the screen and are discarded.
func (a *Application) setupLogger() error {
	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		return apperrors.NewConfigError("invalid -log-level: %v", err)
	}

	var w io.Writer = a.ErrWriter
	switch {
	case a.Config.LogFile != "":
		f, err := os.OpenFile(a.Config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return apperrors.NewConfigError("cannot open -log-file: %v", err)
		}
		w = f
		a.logCloser = f
	case a.Config.Mode() == config.ModeInteractive:
		w = io.Discard
	}
	a.logger = logging.NewLeveledLogger(w, "glmeal", level)
	return nil
}

func (a *Application) closeLog() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func (a *Application) newClient() (*client.Client, error) {
	opts := []client.Option{
		client.WithTimeout(a.Config.Timeout),
		client.WithLogger(a.logger),
	}
	if a.Config.Token != "" {
		opts = append(opts, client.WithToken(a.Config.Token))
	}
	if a.metrics != nil {
		opts = append(opts, client.WithRecorder(a.metrics))
	}
	return client.New(a.Config.BaseURL, opts...)
}

// newController creates the flow controller and wires the flow metrics.
func (a *Application) newController(svc orchestration.Service) *orchestration.Controller {
	ctrl := orchestration.NewController(svc, orchestration.WithLogger(a.logger))
	if a.metrics != nil {
		ctrl.Subscribe(a.metrics.NewFlowRecorder().Observe)
	}
	return ctrl
}

func (a *Application) runOneShot(ctx context.Context, svc *client.Client, out io.Writer) int {
	runner := &cli.Runner{
		Controller: a.newController(svc),
		Service:    svc,
		Config:     a.Config,
		Logger:     a.logger,
	}
	if err := runner.Run(ctx, out); err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}
	return apperrors.ExitSuccess
}

func (a *Application) runTUI(ctx context.Context, svc *client.Client) int {
	return tui.Run(ctx, a.newController(svc), svc, tui.Options{
		Smart:       a.Config.Smart,
		Meal:        a.Config.Meal,
		Concurrency: a.Config.Concurrency,
		Logger:      a.logger,
		Version:     Version,
	})
}

func (a *Application) runHealth(ctx context.Context, svc *client.Client, out io.Writer) int {
	h, err := svc.Health(ctx)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}
	if a.Config.JSON {
		if err := cli.WriteJSON(out, h); err != nil {
			return apperrors.HandleError(err, a.ErrWriter)
		}
	} else {
		cli.DisplayHealth(out, svc.BaseURL(), h)
	}
	if !h.Healthy() {
		fmt.Fprintf(a.ErrWriter, "Error: service at %s is not healthy\n", svc.BaseURL())
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runFoods(ctx context.Context, svc *client.Client, out io.Writer) int {
	foods, err := svc.Foods(ctx)
	if err != nil {
		return apperrors.HandleError(err, a.ErrWriter)
	}
	if a.Config.JSON {
		if err := cli.WriteJSON(out, foods); err != nil {
			return apperrors.HandleError(err, a.ErrWriter)
		}
		return apperrors.ExitSuccess
	}
	cli.DisplayFoods(out, foods)
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
