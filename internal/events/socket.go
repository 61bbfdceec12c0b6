package events

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/monox/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultConnectTimeout bounds the initial handshake.
const DefaultConnectTimeout = 10 * time.Second

// DialOptions configures Dial.
type DialOptions struct {
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Conn is a connected Socket.IO client.
type Conn struct {
	sock *socket.Socket
}

// Dial connects to the Socket.IO server at rawURL over websocket and waits
// for the handshake to finish.
func Dial(ctx context.Context, rawURL string, opts DialOptions) (*Conn, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse events url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("events url %q must be absolute", rawURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	sopts := socket.DefaultOptions()
	if parsed.Path != "" && parsed.Path != "/" {
		sopts.SetPath(parsed.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))
	sopts.SetReconnection(false)

	connected := make(chan error, 1)
	manager := socket.NewManager(fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host), sopts)
	io := manager.Socket(opts.Namespace, sopts)

	report := func(err error) {
		select {
		case connected <- err:
		default:
		}
	}
	io.Once(types.EventName("connect"), func(...any) { report(nil) })
	io.Once(types.EventName("connect_error"), func(errs ...any) { report(firstError(errs)) })

	logger.Debug("Connecting to event sink.")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Connected to event sink.", "sid", io.Id())
		return &Conn{sock: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("connecting to event sink: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Emit sends one event. It fails when the socket is no longer connected.
func (c *Conn) Emit(event string, args ...any) error {
	if !c.sock.Connected() {
		return fmt.Errorf("socket %s is not connected", c.sock.Id())
	}
	return c.sock.Emit(event, args...)
}

// Close disconnects the socket.
func (c *Conn) Close() error {
	c.sock.Disconnect()
	return nil
}

func firstError(args []any) error {
	if len(args) == 0 || args[0] == nil {
		return errors.New("connection refused")
	}
	if err, ok := args[0].(error); ok {
		return err
	}
	return fmt.Errorf("%v", args[0])
}
