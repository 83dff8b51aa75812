package probe

import "errors"

var (
	ErrConnectionRefused  = errors.New("connection refused")
	ErrConnectionClosed   = errors.New("connection closed by server")
	ErrIdleTimeout        = errors.New("no frame within idle timeout")
	ErrInterrupted        = errors.New("interrupted")
	ErrExpectationsFailed = errors.New("some replies did not match their expectation")
)
