package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tessro/showcase/internal/core"
	apperr "github.com/tessro/showcase/internal/errors"
)

// Client talks to a running remote server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

// NewClient returns a client for addr, which may be host:port or a full
// http URL.
func NewClient(addr string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
}

// Snapshot fetches the current state of kind.
func (c *Client) Snapshot(ctx context.Context, kind core.Kind) (Snapshot, error) {
	return c.do(ctx, http.MethodGet, c.playerURL(kind, "", nil), nil)
}

// Command sends one of toggle, play, pause, stop or mute.
func (c *Client) Command(ctx context.Context, kind core.Kind, command string) (Snapshot, error) {
	return c.do(ctx, http.MethodPost, c.playerURL(kind, command, nil), nil)
}

// Seek moves kind's playback to pos.
func (c *Client) Seek(ctx context.Context, kind core.Kind, pos time.Duration) (Snapshot, error) {
	q := url.Values{"t": {strconv.FormatFloat(pos.Seconds(), 'f', 3, 64)}}
	return c.do(ctx, http.MethodPost, c.playerURL(kind, "seek", q), nil)
}

// SetVolume sets kind's volume (0-1).
func (c *Client) SetVolume(ctx context.Context, kind core.Kind, v float64) (Snapshot, error) {
	q := url.Values{"v": {strconv.FormatFloat(v, 'f', -1, 64)}}
	return c.do(ctx, http.MethodPost, c.playerURL(kind, "volume", q), nil)
}

// Load loads the catalog item id into kind's coordinator.
func (c *Client) Load(ctx context.Context, kind core.Kind, id string, autoplay bool) (Snapshot, error) {
	body, err := json.Marshal(loadRequest{ID: id, Autoplay: &autoplay})
	if err != nil {
		return Snapshot{}, err
	}
	return c.do(ctx, http.MethodPost, c.playerURL(kind, "load", nil), body)
}

func (c *Client) playerURL(kind core.Kind, action string, q url.Values) string {
	u := c.baseURL + "/player/" + url.PathEscape(string(kind))
	if action != "" {
		u += "/" + action
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) (Snapshot, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, apperr.WithSuggestion(
			fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err),
			"Start the remote server with 'showcase serve'")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return Snapshot{}, statusError(resp.StatusCode, e.Error)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode response: %w", err)
	}
	return snap, nil
}

// statusError maps a server error back onto the sentinel it came from.
func statusError(status int, msg string) error {
	switch status {
	case http.StatusNotFound:
		if strings.Contains(msg, "kind") || strings.Contains(msg, "command") {
			return fmt.Errorf("remote: %s", msg)
		}
		return fmt.Errorf("remote: %s: %w", msg, apperr.ErrTrackNotFound)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("remote: %s: %w", msg, apperr.ErrNoSource)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("remote: %s: %w", msg, apperr.ErrEngineClosed)
	case http.StatusBadGateway:
		return fmt.Errorf("remote: %s: %w", msg, apperr.ErrBackendUnavailable)
	default:
		return fmt.Errorf("remote: %s (HTTP %d)", msg, status)
	}
}

// Stream is a live feed of one coordinator's snapshots.
type Stream struct {
	conn *websocket.Conn
}

// Dial opens a snapshot stream for kind.
func (c *Client) Dial(ctx context.Context, kind core.Kind) (*Stream, error) {
	u := "ws" + strings.TrimPrefix(c.playerURL(kind, "ws", nil), "http")
	conn, _, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, apperr.WithSuggestion(
			fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err),
			"Start the remote server with 'showcase serve'")
	}
	return &Stream{conn: conn}, nil
}

// Watch delivers snapshots until ctx is done or the server goes away. It
// makes a Stream usable wherever a coordinator's Watch is.
func (s *Stream) Watch(ctx context.Context) <-chan core.Snapshot {
	ch := make(chan core.Snapshot)
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()
	go func() {
		defer close(ch)
		for {
			var snap Snapshot
			if err := s.conn.ReadJSON(&snap); err != nil {
				return
			}
			select {
			case ch <- snap.Core():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Close closes the connection.
func (s *Stream) Close() error {
	return s.conn.Close()
}
