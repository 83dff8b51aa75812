package probe_test

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"heroprobe/heroproto"
	"heroprobe/internal/config"
	"heroprobe/internal/herotest"
	"heroprobe/internal/probe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testWindow = 50 * time.Millisecond
	testDelay  = 80 * time.Millisecond
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(url string) *config.AppConfig {
	return &config.AppConfig{
		URL:            url,
		Origin:         "http://localhost/",
		Username:       "TestUser",
		RateLimitDelay: testDelay,
		DialTimeout:    time.Second,
		Scenario:       config.ScenarioChat,
	}
}

func newApp(t *testing.T, cfg *config.AppConfig, logger *zap.Logger) (*probe.Application, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	app, err := probe.NewApplication(cfg, logger, out)
	require.NoError(t, err)
	return app, out
}

func runAsync(ctx context.Context, app *probe.Application) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()
	return done
}

func waitErr(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("run did not finish")
		return nil
	}
}

func TestRunChatSequenceUntilServerCloses(t *testing.T) {
	srv := herotest.NewServer(herotest.Options{Window: testWindow})
	defer srv.Close()

	app, out := newApp(t, testConfig(srv.URL()), nil)
	done := runAsync(context.Background(), app)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Listening for broadcasts")
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, srv.Broadcast(&heroproto.MessageRemovedMessage{
		Type:      heroproto.MSG_MESSAGE_REMOVED,
		MessageID: "42",
	}))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `Received broadcast: {"type":"message_removed","messageId":"42"}`)
	}, 5*time.Second, 5*time.Millisecond)

	srv.CloseAll()
	require.NoError(t, waitErr(t, done))
	assert.Contains(t, out.String(), "Connection closed by server")

	results := app.Results()
	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Passed(), "%s: %v", r.Name, r.Mismatch)
	}

	assert.Equal(t, `{"type":"chat_message","username":"TestUser","message":"Hello, this is a test message!"}`, string(results[1].Sent))
	assert.Equal(t, `{"type":"chat_message","username":"TestUser","message":"This should be rate limited"}`, string(results[2].Sent))
	assert.Equal(t, `{"type":"chat_message","username":"TestUser","message":"This should work after waiting"}`, string(results[3].Sent))
	assert.Equal(t, `{"type":"chat_message","message":"Anonymous message test"}`, string(results[4].Sent))

	assert.Equal(t, heroproto.MSG_NEW_CHAT, results[1].Reply.Type)
	assert.Equal(t, heroproto.MSG_ERROR, results[2].Reply.Type)
	assert.Equal(t, heroproto.MSG_NEW_CHAT, results[3].Reply.Type)
	assert.Equal(t, heroproto.MSG_NEW_CHAT, results[4].Reply.Type)

	stored := srv.ChatMessages()
	require.Len(t, stored, 3)
	assert.Equal(t, heroproto.AnonymousUsername, stored[2].Username)
}

func TestRunStopsOnIdleTimeout(t *testing.T) {
	srv := herotest.NewServer(herotest.Options{Window: testWindow})
	defer srv.Close()

	cfg := testConfig(srv.URL())
	cfg.IdleTimeout = 100 * time.Millisecond
	app, out := newApp(t, cfg, nil)

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "No broadcast for 100ms")
	assert.Contains(t, out.String(), "Summary: 5 passed, 0 failed")
}

func TestRunConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	app, _ := newApp(t, testConfig("ws://"+addr), nil)
	err = app.Run(context.Background())
	assert.ErrorIs(t, err, probe.ErrConnectionRefused)
}

func TestRunInterruptedDuringDelay(t *testing.T) {
	srv := herotest.NewServer(herotest.Options{Window: testWindow})
	defer srv.Close()

	cfg := testConfig(srv.URL())
	cfg.RateLimitDelay = time.Hour
	app, _ := newApp(t, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := app.Run(ctx)
	assert.ErrorIs(t, err, probe.ErrInterrupted)
	// Initial data and the two undelayed messages.
	assert.Len(t, app.Results(), 3)
}

func TestRunFailsWhenServerClosesMidSequence(t *testing.T) {
	srv := herotest.NewServer(herotest.Options{Window: testWindow})
	defer srv.Close()

	cfg := testConfig(srv.URL())
	cfg.RateLimitDelay = 500 * time.Millisecond
	app, out := newApp(t, cfg, nil)
	done := runAsync(context.Background(), app)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Test 3:")
	}, 5*time.Second, 5*time.Millisecond)
	srv.CloseAll()

	err := waitErr(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message after window")
	assert.NotErrorIs(t, err, probe.ErrInterrupted)
	assert.NotErrorIs(t, err, probe.ErrConnectionRefused)
	assert.NotContains(t, out.String(), "Listening for broadcasts")
	assert.NotContains(t, out.String(), "Connection closed by server")
	assert.Len(t, app.Results(), 3)
}

func TestRunInterruptedWhileListening(t *testing.T) {
	srv := herotest.NewServer(herotest.Options{Window: testWindow})
	defer srv.Close()

	app, out := newApp(t, testConfig(srv.URL()), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, app)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Listening for broadcasts")
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	assert.ErrorIs(t, waitErr(t, done), probe.ErrInterrupted)
}

func TestRunMalformedInitialFrame(t *testing.T) {
	srv := herotest.NewServer(herotest.Options{InitFrame: []byte("not json")})
	defer srv.Close()

	app, _ := newApp(t, testConfig(srv.URL()), nil)
	err := app.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, heroproto.ErrorMalformedFrame)
	assert.NotErrorIs(t, err, probe.ErrConnectionRefused)
	assert.NotErrorIs(t, err, probe.ErrInterrupted)
}

func TestRunFullScenario(t *testing.T) {
	srv := herotest.NewServer(herotest.Options{Window: testWindow})
	defer srv.Close()

	cfg := testConfig(srv.URL())
	cfg.Scenario = config.ScenarioFull
	cfg.IdleTimeout = 100 * time.Millisecond
	app, _ := newApp(t, cfg, nil)

	require.NoError(t, app.Run(context.Background()))

	results := app.Results()
	require.Len(t, results, 11)
	for _, r := range results {
		assert.True(t, r.Passed(), "%s: %v", r.Name, r.Mismatch)
	}
	assert.Len(t, srv.Obstacles(), 1)
}

func TestRunStrictModeFailsOnMismatch(t *testing.T) {
	// A server without a real limit lets the second message through.
	srv := herotest.NewServer(herotest.Options{Window: time.Nanosecond})
	defer srv.Close()

	cfg := testConfig(srv.URL())
	cfg.Strict = true
	app, out := newApp(t, cfg, nil)

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, probe.ErrExpectationsFailed)
	assert.Contains(t, out.String(), "FAIL immediate second message")
	assert.NotContains(t, out.String(), "Listening for broadcasts")

	s := probe.Summarize(app.Results())
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 4, s.Passed)
}

func TestRunWarnsWhenDelayIsShorterThanWindow(t *testing.T) {
	srv := herotest.NewServer(herotest.Options{Window: 10 * time.Second})
	defer srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := testConfig(srv.URL())
	cfg.RateLimitDelay = 10 * time.Millisecond
	cfg.IdleTimeout = 50 * time.Millisecond
	app, _ := newApp(t, cfg, zap.New(core))

	require.NoError(t, app.Run(context.Background()))

	assert.NotZero(t, logs.FilterMessage("rate limit delay is shorter than the server asks for").Len())
	assert.NotZero(t, logs.FilterMessage("unexpected reply").Len())
	assert.Equal(t, 2, probe.Summarize(app.Results()).Failed)
}
