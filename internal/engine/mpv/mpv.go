// Package mpv drives an external mpv process through its JSON IPC socket.
//
// Each Load is tagged with the coordinator's generation. mpv reports a
// start-file event when it actually switches files, and only then do
// file properties start carrying the new generation, so updates still in
// flight for the previous file arrive stale. Pause belongs to the player
// rather than the file and always carries the latest load's generation.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tessro/showcase/internal/core"
	apperr "github.com/tessro/showcase/internal/errors"
)

const (
	defaultPath    = "mpv"
	requestTimeout = 5 * time.Second
	dialInterval   = 50 * time.Millisecond
)

// Observed property ids.
const (
	propTimePos = iota + 1
	propDuration
	propPause
	propEOF
)

var observed = map[int]string{
	propTimePos:  "time-pos",
	propDuration: "duration",
	propPause:    "pause",
	propEOF:      "eof-reached",
}

// Engine is a core.Engine backed by mpv.
type Engine struct {
	path   string
	video  bool
	socket string
	log    logrus.FieldLogger

	cmd  *exec.Cmd
	conn net.Conn

	writeMu sync.Mutex

	mu        sync.Mutex
	sink      core.EventSink
	nextID    int64
	pending   map[int64]chan response
	loadGen   uint64
	activeGen uint64
	loaded    bool
	metaSent  bool
	ended     bool
	closed    bool
	done      chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithPath sets the mpv executable.
func WithPath(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.path = path
		}
	}
}

// WithVideo opens a window for video output. Without it mpv runs audio only.
func WithVideo(video bool) Option {
	return func(e *Engine) {
		e.video = video
	}
}

// WithSocket sets the IPC socket path. By default a unique path in the
// temp directory is used.
func WithSocket(path string) Option {
	return func(e *Engine) {
		e.socket = path
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an engine. Call Start before use.
func New(opts ...Option) *Engine {
	e := &Engine{
		path:    defaultPath,
		log:     logrus.StandardLogger(),
		pending: make(map[int64]chan response),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.socket == "" {
		e.socket = filepath.Join(os.TempDir(), "showcase-mpv-"+uuid.NewString()+".sock")
	}
	e.log = e.log.WithField("component", "mpv")
	return e
}

// Start launches mpv and connects to its IPC socket.
func (e *Engine) Start(ctx context.Context) error {
	bin, err := exec.LookPath(e.path)
	if err != nil {
		return apperr.WithSuggestion(
			fmt.Errorf("%w: %v", apperr.ErrEngineUnavailable, err),
			"Install mpv or set player.engine = \"sim\" in ~/.showcaserc",
		)
	}

	args := []string{
		"--idle=yes",
		"--no-terminal",
		"--keep-open=yes",
		"--input-ipc-server=" + e.socket,
	}
	if e.video {
		args = append(args, "--force-window=immediate")
	} else {
		args = append(args, "--vid=no", "--force-window=no")
	}

	e.cmd = exec.Command(bin, args...)
	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrEngineUnavailable, err)
	}
	e.log.WithField("socket", e.socket).Debug("started mpv")

	conn, err := dialRetry(ctx, e.socket)
	if err != nil {
		e.cmd.Process.Kill()
		e.cmd.Wait()
		return fmt.Errorf("%w: connect to mpv: %v", apperr.ErrEngineUnavailable, err)
	}
	return e.connect(ctx, conn)
}

func dialRetry(ctx context.Context, socket string) (net.Conn, error) {
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(dialInterval):
		}
	}
}

// connect starts reading from conn and subscribes to the properties the
// engine reports as events.
func (e *Engine) connect(ctx context.Context, conn net.Conn) error {
	e.conn = conn
	go e.readLoop()

	for id, name := range observed {
		if _, err := e.command(ctx, "observe_property", id, name); err != nil {
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}
	return nil
}

// Attach implements core.Engine.
func (e *Engine) Attach(sink core.EventSink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// Load implements core.Engine. The file is loaded paused.
func (e *Engine) Load(gen uint64, src string) error {
	e.mu.Lock()
	e.loadGen = gen
	e.loaded = true
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if _, err := e.command(ctx, "set_property", "pause", true); err != nil {
		return err
	}
	_, err := e.command(ctx, "loadfile", src, "replace")
	return err
}

// Unload implements core.Engine.
func (e *Engine) Unload() error {
	e.mu.Lock()
	e.loaded = false
	e.mu.Unlock()
	return e.run("stop")
}

// Play implements core.Engine.
func (e *Engine) Play() error {
	e.mu.Lock()
	loaded := e.loaded
	e.mu.Unlock()
	if !loaded {
		return apperr.ErrNoTrackLoaded
	}
	return e.run("set_property", "pause", false)
}

// Pause implements core.Engine.
func (e *Engine) Pause() error {
	return e.run("set_property", "pause", true)
}

// SetPosition implements core.Engine.
func (e *Engine) SetPosition(pos time.Duration) error {
	return e.run("seek", pos.Seconds(), "absolute")
}

// SetVolume implements core.Engine. mpv volumes run from 0 to 100.
func (e *Engine) SetVolume(v float64) error {
	return e.run("set_property", "volume", v*100)
}

// SetMuted implements core.Engine.
func (e *Engine) SetMuted(muted bool) error {
	return e.run("set_property", "mute", muted)
}

// Close implements core.Engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	if e.conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		e.command(ctx, "quit")
		cancel()
		e.conn.Close()
		<-e.done
	}
	if e.cmd != nil && e.cmd.Process != nil {
		waitCh := make(chan error, 1)
		go func() { waitCh <- e.cmd.Wait() }()
		select {
		case <-waitCh:
		case <-time.After(2 * time.Second):
			e.cmd.Process.Kill()
			<-waitCh
		}
	}
	os.Remove(e.socket)
	return nil
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type response struct {
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

// message is anything mpv writes to the socket: a reply (request_id set)
// or an event.
type message struct {
	RequestID *int64          `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Reason    string          `json:"reason"`
}

func (e *Engine) run(args ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	_, err := e.command(ctx, args...)
	return err
}

// command sends args and waits for mpv's reply.
func (e *Engine) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	e.mu.Lock()
	if e.conn == nil {
		e.mu.Unlock()
		return nil, apperr.ErrEngineUnavailable
	}
	select {
	case <-e.done:
		e.mu.Unlock()
		return nil, apperr.ErrEngineClosed
	default:
	}
	e.nextID++
	id := e.nextID
	ch := make(chan response, 1)
	e.pending[id] = ch
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
	}()

	data, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("encode mpv command: %w", err)
	}
	data = append(data, '\n')

	e.writeMu.Lock()
	_, err = e.conn.Write(data)
	e.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write mpv command: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], resp.Error)
		}
		return resp.Data, nil
	case <-e.done:
		return nil, apperr.ErrEngineClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("mpv %v: %w", args[0], ctx.Err())
	}
}

func (e *Engine) readLoop() {
	defer close(e.done)

	scanner := bufio.NewScanner(e.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			e.log.WithError(err).Warn("malformed mpv message")
			continue
		}
		e.dispatch(msg)
	}
	if err := scanner.Err(); err != nil {
		e.log.WithError(err).Debug("mpv connection closed")
	}
}

func (e *Engine) dispatch(msg message) {
	if msg.RequestID != nil {
		e.mu.Lock()
		ch, ok := e.pending[*msg.RequestID]
		e.mu.Unlock()
		if ok {
			ch <- response{Error: msg.Error, Data: msg.Data}
		}
		return
	}

	ev, ok := e.translate(msg)
	if !ok {
		return
	}

	e.mu.Lock()
	sink := e.sink
	e.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}

// translate turns an mpv event into an engine event stamped with the
// generation of the file mpv is playing.
func (e *Engine) translate(msg message) (core.Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch msg.Event {
	case "start-file":
		e.activeGen = e.loadGen
		e.metaSent = false
		e.ended = false
		return core.Event{}, false

	case "end-file":
		if msg.Reason != "eof" || e.ended {
			return core.Event{}, false
		}
		e.ended = true
		return core.Event{Type: core.EventEnded, Gen: e.activeGen}, true

	case "property-change":
		return e.propertyLocked(msg)
	}
	return core.Event{}, false
}

func (e *Engine) propertyLocked(msg message) (core.Event, bool) {
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return core.Event{}, false
	}
	ev := core.Event{Gen: e.activeGen}

	switch msg.Name {
	case "time-pos":
		var secs float64
		if err := json.Unmarshal(msg.Data, &secs); err != nil {
			return core.Event{}, false
		}
		ev.Type = core.EventTimeUpdate
		ev.Position = seconds(secs)

	case "duration":
		var secs float64
		if err := json.Unmarshal(msg.Data, &secs); err != nil || secs <= 0 {
			return core.Event{}, false
		}
		ev.Type = core.EventDurationChange
		if !e.metaSent {
			ev.Type = core.EventMetadataLoaded
			e.metaSent = true
		}
		ev.Duration = seconds(secs)

	case "pause":
		var paused bool
		if err := json.Unmarshal(msg.Data, &paused); err != nil {
			return core.Event{}, false
		}
		// A play issued right after loadfile can be confirmed before
		// start-file.
		ev.Gen = e.loadGen
		ev.Type = core.EventPlay
		if paused {
			ev.Type = core.EventPause
		}

	case "eof-reached":
		var eof bool
		if err := json.Unmarshal(msg.Data, &eof); err != nil {
			return core.Event{}, false
		}
		// With keep-open mpv stays on the last frame; seeking back clears
		// the flag so the file can end again.
		if !eof {
			e.ended = false
			return core.Event{}, false
		}
		if e.ended {
			return core.Event{}, false
		}
		e.ended = true
		ev.Type = core.EventEnded

	default:
		return core.Event{}, false
	}
	return ev, true
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

var _ core.Engine = (*Engine)(nil)
