package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// ErrClosed is returned by ReadLine after the transport has been closed.
var ErrClosed = errors.New("terminal transport closed")

// Transport is a line-oriented link to the payment terminal. ReadLine honors
// the context deadline, so handshake waits are bounded timeouts instead of
// polling sleeps, and close cancels any wait in progress.
type Transport interface {
	ReadLine(ctx context.Context) (string, error)
	WriteLine(s string) error
	Close() error
}

type serialTransport struct {
	port  serial.Port
	lines chan string
	errs  chan error
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// Open connects to the payment terminal's serial device and starts the
// reader. Lines are buffered so a message arriving between handshakes is not
// lost.
func Open(device string, baud int) (Transport, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open terminal port %s: %w", device, err)
	}

	t := &serialTransport{
		port:  port,
		lines: make(chan string, 16),
		errs:  make(chan error, 1),
		done:  make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

func (t *serialTransport) readLoop() {
	reader := bufio.NewReader(t.port)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if closed {
				return
			}
			select {
			case t.errs <- fmt.Errorf("terminal read: %w", err):
			case <-t.done:
			}
			return
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		select {
		case t.lines <- line:
		case <-t.done:
			return
		}
	}
}

func (t *serialTransport) ReadLine(ctx context.Context) (string, error) {
	select {
	case line := <-t.lines:
		return line, nil
	case err := <-t.errs:
		return "", err
	case <-t.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *serialTransport) WriteLine(s string) error {
	_, err := t.port.Write([]byte(s + "\r\n"))
	return err
}

func (t *serialTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	// Unblocks any ReadLine in progress and a reader parked on a full buffer.
	close(t.done)
	return t.port.Close()
}

// AwaitReady blocks until the terminal announces readiness. The device prints
// READY alone on its line, so only an exact match counts; chatter such as
// "NOT READY" is skipped like any other noise.
func AwaitReady(ctx context.Context, t Transport, timeout time.Duration) error {
	return awaitLine(ctx, t, timeout, func(line string) bool {
		return line == MarkerReady
	})
}

// AwaitDone blocks until the terminal confirms the deduction. Confirmation
// may share its line with other output, so a substring match is enough.
func AwaitDone(ctx context.Context, t Transport, timeout time.Duration) error {
	return awaitLine(ctx, t, timeout, func(line string) bool {
		return strings.Contains(line, MarkerDone)
	})
}

func awaitLine(ctx context.Context, t Transport, timeout time.Duration, match func(string) bool) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		line, err := t.ReadLine(ctx)
		if err != nil {
			return err
		}
		if match(line) {
			return nil
		}
	}
}
