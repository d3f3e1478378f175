// Package feed maintains the websocket connection to the generator and turns
// frames into dashboard events.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yaron8/netwatch/auth"
	"github.com/yaron8/netwatch/logi"
	"github.com/yaron8/netwatch/telemetrics"
)

type Kind int

const (
	Connect Kind = iota
	Disconnect
	Update
)

func (k Kind) String() string {
	switch k {
	case Connect:
		return "connect"
	case Disconnect:
		return "disconnect"
	case Update:
		return telemetrics.EventNetworkUpdate
	default:
		return "unknown"
	}
}

// Event is delivered to the session in arrival order.
type Event struct {
	Kind     Kind
	Snapshot telemetrics.Snapshot // set for Update
	Err      error                // set for Disconnect when the connection failed
}

type Options struct {
	// URL is the generator base URL (http, https, ws or wss).
	URL            string
	ReconnectDelay time.Duration
	// JWTSecret, when set, signs a short-lived bearer token for every dial.
	JWTSecret string
	ClientID  string
}

// Client dials the generator socket and redials after every disconnect.
type Client struct {
	endpoint string
	opts     Options
	dialer   *websocket.Dialer
	logger   *slog.Logger
}

func NewClient(opts Options) (*Client, error) {
	endpoint, err := socketURL(opts.URL)
	if err != nil {
		return nil, err
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 5 * time.Second
	}
	if opts.ClientID == "" {
		opts.ClientID = "dashboard"
	}
	return &Client{
		endpoint: endpoint,
		opts:     opts,
		dialer:   websocket.DefaultDialer,
		logger:   logi.GetLogger(),
	}, nil
}

// Run streams events into out until ctx is done, then closes out.
func (c *Client) Run(ctx context.Context, out chan<- Event) {
	defer close(out)
	for {
		err := c.session(ctx, out)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.Warn("feed session ended", "url", c.endpoint, "error", err, "retry_in", c.opts.ReconnectDelay)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.opts.ReconnectDelay):
		}
	}
}

// session runs one connection. Connect is sent only after a successful dial and
// every Connect is followed by exactly one Disconnect.
func (c *Client) session(ctx context.Context, out chan<- Event) error {
	header, err := c.header()
	if err != nil {
		return err
	}

	conn, resp, err := c.dialer.DialContext(ctx, c.endpoint, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return fmt.Errorf("dial failed (status=%d): %w", status, err)
	}
	c.logger.Info("feed connected", "url", c.endpoint)

	// unblock ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	if !send(ctx, out, Event{Kind: Connect}) {
		return nil
	}

	readErr := c.readLoop(ctx, conn, out)
	send(ctx, out, Event{Kind: Disconnect, Err: readErr})
	return readErr
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- Event) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}

		var env telemetrics.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Error("malformed frame", "error", err)
			continue
		}

		switch env.Event {
		case telemetrics.EventNetworkUpdate:
			var snap telemetrics.Snapshot
			if err := json.Unmarshal(env.Data, &snap); err != nil {
				c.logger.Error("malformed network_update payload", "error", err)
				continue
			}
			if !send(ctx, out, Event{Kind: Update, Snapshot: snap}) {
				return nil
			}
		default:
			c.logger.Debug("ignoring event", "event", env.Event)
		}
	}
}

func (c *Client) header() (http.Header, error) {
	header := http.Header{}
	if c.opts.JWTSecret == "" {
		return header, nil
	}
	token, err := auth.Generate([]byte(c.opts.JWTSecret), c.opts.ClientID, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	header.Set("Authorization", "Bearer "+token)
	return header, nil
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// socketURL maps a generator base URL to its /socket endpoint.
func socketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported feed url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/socket"
	return u.String(), nil
}
