package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"heroprobe/common/async"
	"heroprobe/heroproto"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

func (app *Application) connect(ctx context.Context) error {
	wsCfg, err := websocket.NewConfig(app.cfg.URL, app.cfg.Origin)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", app.cfg.URL, err)
	}
	wsCfg.Dialer = &net.Dialer{Timeout: app.cfg.DialTimeout}

	conn, err := wsCfg.DialContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		if isConnectionRefused(err) {
			return fmt.Errorf("%w: %s", ErrConnectionRefused, app.cfg.URL)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}
	app.conn = conn
	return nil
}

func (app *Application) close() {
	if app.conn == nil {
		return
	}
	if err := app.conn.Close(); err != nil {
		app.logger.Debug("close connection", zap.Error(err))
	}
}

// send writes one json text frame.
func (app *Application) send(v any) ([]byte, error) {
	data, err := heroproto.NewMessage(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	if err := websocket.Message.Send(app.conn, string(data)); err != nil {
		return nil, fmt.Errorf("failed to send frame: %w", err)
	}
	app.logger.Debug("sent", zap.ByteString("frame", data))
	return data, nil
}

// receive blocks for one frame. A zero timeout waits forever.
func (app *Application) receive(ctx context.Context, timeout time.Duration) (*heroproto.ServerResponse, error) {
	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := app.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	// The read goroutine is released by the connection close once ctx is done.
	data, err := async.RunAsync(func() ([]byte, error) {
		var msg []byte
		err := websocket.Message.Receive(app.conn, &msg)
		return msg, err
	}).Wait(ctx)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ErrInterrupted
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrConnectionClosed
		case isTimeout(err):
			return nil, ErrIdleTimeout
		}
		return nil, fmt.Errorf("failed to receive frame: %w", err)
	}
	app.logger.Debug("received", zap.ByteString("frame", data))

	resp, err := heroproto.ParseServerResponse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %q: %w", data, err)
	}
	return resp, nil
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ErrInterrupted
	case <-t.C:
		return nil
	}
}

func isConnectionRefused(err error) bool {
	var dialErr *websocket.DialError
	if errors.As(err, &dialErr) {
		err = dialErr.Err
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
