package probe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"heroprobe/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

// Application drives one scripted session against a Hero server.
type Application struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	// Human readable transcript.
	out io.Writer

	conn    *websocket.Conn
	results []StepResult
}

func NewApplication(cfg *config.AppConfig, logger *zap.Logger, out io.Writer) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &Application{
		cfg:    cfg,
		logger: logger.With(zap.String("run", uuid.NewString())),
		out:    out,
	}
	return app, nil
}

// Results returns the recorded step results, the initial receive included.
func (app *Application) Results() []StepResult {
	return append([]StepResult(nil), app.results...)
}

// Run connects, performs the scripted sequence and listens for broadcasts.
// It returns nil when the server closes the connection or the idle timeout
// elapses in the listen loop, ErrInterrupted when ctx is cancelled, and
// ErrConnectionRefused when nothing listens at the endpoint.
func (app *Application) Run(ctx context.Context) error {
	fmt.Fprintf(app.out, "Connecting to %s...\n", app.cfg.URL)
	if err := app.connect(ctx); err != nil {
		return err
	}
	defer app.close()
	fmt.Fprintln(app.out, "Connected to server")
	app.logger.Info("connected", zap.String("url", app.cfg.URL), zap.String("scenario", app.cfg.Scenario))

	if err := app.runSequence(ctx); err != nil {
		return err
	}

	app.printSummary()
	if s := Summarize(app.results); s.Failed > 0 {
		app.logger.Warn("expectations failed", zap.Int("failed", s.Failed), zap.Int("passed", s.Passed))
		if app.cfg.Strict {
			return ErrExpectationsFailed
		}
	}

	return app.listen(ctx)
}

// listen prints pushed frames until the server closes, the idle timeout elapses or ctx is done.
func (app *Application) listen(ctx context.Context) error {
	fmt.Fprintln(app.out, "\nAll tests completed. Listening for broadcasts (press Ctrl+C to stop)...")
	for {
		resp, err := app.receive(ctx, app.cfg.IdleTimeout)
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) {
				fmt.Fprintln(app.out, "Connection closed by server")
				return nil
			}
			if errors.Is(err, ErrIdleTimeout) {
				fmt.Fprintf(app.out, "No broadcast for %s, stopping\n", app.cfg.IdleTimeout)
				app.logger.Info("idle timeout", zap.Duration("idle_timeout", app.cfg.IdleTimeout))
				return nil
			}
			return err
		}
		fmt.Fprintln(app.out, "\nReceived broadcast:", resp.String())
	}
}
