// Package socketio forwards resource transitions to a socket.io server.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/internal/loader"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the event name used when Settings.Event is empty.
const DefaultEvent = "spfrm:resource"

// DefaultConnectTimeout bounds the initial connection.
const DefaultConnectTimeout = 15 * time.Second

// Settings configures the notifier connection.
type Settings struct {
	URL                string
	Namespace          string
	Event              string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// Notifier is a loader.Observer that emits every transition as one
// socket.io event.
type Notifier struct {
	logger  *slog.Logger
	event   string
	emit    func(event string, payload any)
	close   func()
	sent    atomic.Int64
	stopped atomic.Bool
}

// Connect dials the server and waits for the connection to be established.
func Connect(ctx context.Context, settings Settings) (*Notifier, error) {
	logger := ctxlog.FromContext(ctx).With("notifier", "socketio", "url", settings.URL)

	parsedURL, err := url.Parse(settings.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socket.io URL '%s' must be absolute", settings.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if settings.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	namespace := settings.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Notifier connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	timeout := settings.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	n := newNotifier(logger, settings.Event, func(event string, payload any) {
		io.Emit(event, payload)
	})
	n.close = func() { io.Disconnect() }
	return n, nil
}

// NewWithEmitter builds a Notifier around an arbitrary emit function.
func NewWithEmitter(logger *slog.Logger, event string, emit func(event string, payload any)) *Notifier {
	return newNotifier(logger, event, emit)
}

func newNotifier(logger *slog.Logger, event string, emit func(string, any)) *Notifier {
	if event == "" {
		event = DefaultEvent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger, event: event, emit: emit}
}

// Payload converts an event into the message body sent to the server.
func Payload(ev loader.Event) map[string]any {
	payload := map[string]any{
		"key":        ev.Key,
		"address":    ev.Address,
		"name":       ev.Name,
		"state":      ev.State.String(),
		"elapsed_ms": ev.Elapsed.Milliseconds(),
		"at":         ev.At.UTC().Format(time.RFC3339Nano),
	}
	if ev.Error != "" {
		payload["error"] = ev.Error
	}
	return payload
}

// Observe implements loader.Observer.
func (n *Notifier) Observe(ev loader.Event) {
	if n.stopped.Load() {
		return
	}
	n.emit(n.event, Payload(ev))
	n.sent.Add(1)
	n.logger.Debug("Emitted resource event", "event", n.event, "key", ev.Key, "state", ev.State)
}

// Sent returns the number of emitted events.
func (n *Notifier) Sent() int64 {
	return n.sent.Load()
}

// Close stops emitting and disconnects.
func (n *Notifier) Close() {
	if n.stopped.Swap(true) {
		return
	}
	if n.close != nil {
		n.logger.Info("Disconnecting notifier")
		n.close()
	}
}
