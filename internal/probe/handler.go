package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heroprobe/heroproto"
	"heroprobe/internal/config"

	"go.uber.org/zap"
)

// step is one send and its reply.
type step struct {
	name   string
	title  string
	delay  time.Duration
	frame  any
	expect Expectation
}

func chatSteps(cfg *config.AppConfig) []step {
	return []step{
		{
			name:   "first message",
			title:  "Sending first chat message...",
			frame:  heroproto.NewChatMessage(cfg.Username, "Hello, this is a test message!"),
			expect: ExpectAccepted(cfg.Username, "Hello, this is a test message!"),
		},
		{
			name:   "immediate second message",
			title:  "Testing rate limit - sending second message immediately...",
			frame:  heroproto.NewChatMessage(cfg.Username, "This should be rate limited"),
			expect: ExpectRateLimited(),
		},
		{
			name:   "message after window",
			title:  fmt.Sprintf("Waiting %s to test rate limit expiry...", cfg.RateLimitDelay),
			delay:  cfg.RateLimitDelay,
			frame:  heroproto.NewChatMessage(cfg.Username, "This should work after waiting"),
			expect: ExpectAccepted(cfg.Username, "This should work after waiting"),
		},
		{
			name:   "anonymous message",
			title:  "Testing anonymous message...",
			delay:  cfg.RateLimitDelay,
			frame:  heroproto.NewChatMessage("", "Anonymous message test"),
			expect: ExpectAnonymous("Anonymous message test"),
		},
	}
}

// Each report kind has its own window, so these need no delay after the chat steps.
func reportSteps() []step {
	at := heroproto.Coordinate{Latitude: 32.7157, Longitude: -117.1611}

	obstacle := &heroproto.ReportObstacleRequest{
		Type:         heroproto.MSG_REPORT_OBSTACLE,
		ObstacleType: "Construction",
		Coordinate:   at,
		Description:  "Probe obstacle",
		MarkerColor:  "orange",
	}
	ride := &heroproto.RideRequestRequest{
		Type:        heroproto.MSG_RIDE_REQUEST,
		Coordinate:  at,
		Description: "Probe ride request",
		Passengers:  1,
	}
	aid := &heroproto.FirstAidRequestRequest{
		Type: heroproto.MSG_FIRST_AID_REQUEST,
		Request: heroproto.FirstAidDetails{
			Coordinate:  at,
			Description: "Probe first aid request",
			InjuryType:  "Minor",
		},
	}

	return []step{
		{name: "obstacle report", title: "Reporting an obstacle...", frame: obstacle, expect: ExpectBroadcast(heroproto.MSG_NEW_OBSTACLE)},
		{name: "immediate second obstacle", title: "Testing obstacle rate limit...", frame: obstacle, expect: ExpectRateLimited()},
		{name: "ride request", title: "Submitting a ride request...", frame: ride, expect: ExpectBroadcast(heroproto.MSG_NEW_RIDE_REQUEST)},
		{name: "immediate second ride request", title: "Testing ride request rate limit...", frame: ride, expect: ExpectRateLimited()},
		{name: "first aid request", title: "Submitting a first aid request...", frame: aid, expect: ExpectBroadcast(heroproto.MSG_NEW_FIRST_AID_REQUEST)},
		{name: "immediate second first aid request", title: "Testing first aid request rate limit...", frame: aid, expect: ExpectRateLimited()},
	}
}

func (app *Application) steps() []step {
	steps := chatSteps(app.cfg)
	if app.cfg.Scenario == config.ScenarioFull {
		steps = append(steps, reportSteps()...)
	}
	return steps
}

func (app *Application) runSequence(ctx context.Context) error {
	// The server pushes its snapshot right after the handshake.
	start := time.Now()
	resp, err := app.receive(ctx, 0)
	if err != nil {
		return sequenceError("initial data", err)
	}
	fmt.Fprintln(app.out, "Received initial data:", resp.String())
	app.record(StepResult{
		Name:    "initial data",
		Reply:   resp,
		Latency: time.Since(start),
		Expect:  ExpectInit().Name,
	}, ExpectInit())

	for i, s := range app.steps() {
		fmt.Fprintf(app.out, "\nTest %d: %s\n", i+1, s.title)
		if err := sleep(ctx, s.delay); err != nil {
			return err
		}
		if err := app.runStep(ctx, s); err != nil {
			return sequenceError(s.name, err)
		}
	}
	return nil
}

func (app *Application) runStep(ctx context.Context, s step) error {
	start := time.Now()
	sent, err := app.send(s.frame)
	if err != nil {
		return err
	}
	resp, err := app.receive(ctx, 0)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Response:", resp.String())

	app.record(StepResult{
		Name:    s.name,
		Sent:    sent,
		Reply:   resp,
		Latency: time.Since(start),
		Expect:  s.expect.Name,
	}, s.expect)
	app.checkWaitHint(resp)
	return nil
}

func (app *Application) record(r StepResult, expect Expectation) {
	r.Mismatch = expect.Check(r.Reply)
	if r.Mismatch != nil {
		app.logger.Warn("unexpected reply",
			zap.String("step", r.Name),
			zap.String("expect", r.Expect),
			zap.Error(r.Mismatch),
			zap.Stringer("reply", r.Reply))
	} else {
		app.logger.Debug("step passed", zap.String("step", r.Name), zap.Duration("latency", r.Latency))
	}
	app.results = append(app.results, r)
}

// checkWaitHint compares the window advertised in a rate limit reply with the configured delay.
func (app *Application) checkWaitHint(resp *heroproto.ServerResponse) {
	if resp.Type != heroproto.MSG_ERROR {
		return
	}
	msg, err := heroproto.ParseMessage[heroproto.ErrorMessage](resp.Raw)
	if err != nil {
		return
	}
	seconds, err := heroproto.ParseWaitSeconds(msg.Message)
	if err != nil {
		return
	}
	advertised := time.Duration(seconds) * time.Second
	if advertised > app.cfg.RateLimitDelay {
		app.logger.Warn("rate limit delay is shorter than the server asks for",
			zap.Duration("advertised", advertised),
			zap.Duration("rate_limit_delay", app.cfg.RateLimitDelay))
	}
}

// sequenceError keeps interrupts recognizable and names the step for everything else.
func sequenceError(step string, err error) error {
	if errors.Is(err, ErrInterrupted) {
		return err
	}
	return fmt.Errorf("%s: %w", step, err)
}
