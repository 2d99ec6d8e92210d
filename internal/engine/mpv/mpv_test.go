package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/tessro/showcase/internal/core"
)

// fakeMPV answers every command with success and lets tests push events.
type fakeMPV struct {
	conn net.Conn

	mu       sync.Mutex
	commands [][]any
}

func (f *fakeMPV) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		f.mu.Unlock()
		f.send(fmt.Sprintf(`{"request_id":%d,"error":"success"}`, req.RequestID))
	}
}

func (f *fakeMPV) send(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conn.Write([]byte(line + "\n"))
}

func (f *fakeMPV) last() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commands) == 0 {
		return nil
	}
	return f.commands[len(f.commands)-1]
}

type events struct {
	ch chan core.Event
}

func (e *events) sink(ev core.Event) { e.ch <- ev }

func (e *events) next(t *testing.T) core.Event {
	t.Helper()
	select {
	case ev := <-e.ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return core.Event{}
	}
}

func newConnected(t *testing.T) (*Engine, *fakeMPV, *events) {
	t.Helper()
	logger, _ := test.NewNullLogger()

	client, server := net.Pipe()
	fake := &fakeMPV{conn: server}
	go fake.serve()

	e := New(WithLogger(logger), WithSocket("/tmp/unused.sock"))
	evs := &events{ch: make(chan core.Event, 32)}
	e.Attach(evs.sink)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.connect(ctx, client); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		server.Close()
		e.Close()
	})
	return e, fake, evs
}

func TestConnectObservesProperties(t *testing.T) {
	_, fake, _ := newConnected(t)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	seen := map[string]bool{}
	for _, cmd := range fake.commands {
		if cmd[0] == "observe_property" {
			seen[cmd[2].(string)] = true
		}
	}
	for _, name := range []string{"time-pos", "duration", "pause", "eof-reached"} {
		if !seen[name] {
			t.Errorf("property %q not observed", name)
		}
	}
}

func TestLoadSendsLoadfile(t *testing.T) {
	e, fake, _ := newConnected(t)

	if err := e.Load(3, "https://media.example.edu/a.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cmd := fake.last()
	if len(cmd) != 3 || cmd[0] != "loadfile" || cmd[1] != "https://media.example.edu/a.mp3" {
		t.Errorf("last command = %v, want loadfile", cmd)
	}
}

func TestVolumeScaled(t *testing.T) {
	e, fake, _ := newConnected(t)

	if err := e.SetVolume(0.5); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	cmd := fake.last()
	if cmd[1] != "volume" || cmd[2].(float64) != 50 {
		t.Errorf("last command = %v, want volume 50", cmd)
	}
}

func TestPlayWithoutLoad(t *testing.T) {
	e, _, _ := newConnected(t)
	if err := e.Play(); err == nil {
		t.Error("Play without load = nil, want error")
	}
}

func TestEventsCarryGeneration(t *testing.T) {
	e, fake, evs := newConnected(t)

	if err := e.Load(1, "a.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fake.send(`{"event":"start-file"}`)
	fake.send(`{"event":"property-change","id":2,"name":"duration","data":120.5}`)
	fake.send(`{"event":"property-change","id":1,"name":"time-pos","data":2.5}`)

	ev := evs.next(t)
	if ev.Type != core.EventMetadataLoaded || ev.Gen != 1 || ev.Duration != 120500*time.Millisecond {
		t.Errorf("event = %+v, want loadedmetadata gen 1 120.5s", ev)
	}
	ev = evs.next(t)
	if ev.Type != core.EventTimeUpdate || ev.Position != 2500*time.Millisecond {
		t.Errorf("event = %+v, want timeupdate 2.5s", ev)
	}

	// A second file: updates still in flight for the first stay on gen 1.
	if err := e.Load(2, "b.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fake.send(`{"event":"property-change","id":1,"name":"time-pos","data":3.0}`)
	if ev := evs.next(t); ev.Gen != 1 {
		t.Errorf("in-flight event Gen = %d, want 1", ev.Gen)
	}

	fake.send(`{"event":"start-file"}`)
	fake.send(`{"event":"property-change","id":2,"name":"duration","data":60}`)
	ev = evs.next(t)
	if ev.Type != core.EventMetadataLoaded || ev.Gen != 2 {
		t.Errorf("event = %+v, want loadedmetadata gen 2", ev)
	}

	fake.send(`{"event":"property-change","id":2,"name":"duration","data":61}`)
	if ev := evs.next(t); ev.Type != core.EventDurationChange {
		t.Errorf("event = %v, want durationchange", ev.Type)
	}
}

func TestPauseAndEnd(t *testing.T) {
	e, fake, evs := newConnected(t)

	e.Load(4, "a.mp3")
	fake.send(`{"event":"start-file"}`)
	fake.send(`{"event":"property-change","id":3,"name":"pause","data":false}`)
	fake.send(`{"event":"property-change","id":3,"name":"pause","data":true}`)
	fake.send(`{"event":"property-change","id":1,"name":"time-pos","data":null}`)
	fake.send(`{"event":"end-file","reason":"eof"}`)
	fake.send(`{"event":"property-change","id":4,"name":"eof-reached","data":true}`)
	fake.send(`{"event":"end-file","reason":"stop"}`)

	want := []core.EventType{core.EventPlay, core.EventPause, core.EventEnded}
	for _, w := range want {
		if ev := evs.next(t); ev.Type != w || ev.Gen != 4 {
			t.Errorf("event = %s gen %d, want %s gen 4", ev.Type, ev.Gen, w)
		}
	}
	select {
	case ev := <-evs.ch:
		t.Errorf("unexpected event %s", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPlayConfirmedBeforeStartFile(t *testing.T) {
	e, fake, evs := newConnected(t)

	if err := e.Load(1, "a.mp3"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	fake.send(`{"event":"property-change","id":3,"name":"pause","data":false}`)
	fake.send(`{"event":"start-file"}`)
	fake.send(`{"event":"property-change","id":2,"name":"duration","data":30}`)

	ev := evs.next(t)
	if ev.Type != core.EventPlay || ev.Gen != 1 {
		t.Errorf("event = %s gen %d, want play gen 1", ev.Type, ev.Gen)
	}
	ev = evs.next(t)
	if ev.Type != core.EventMetadataLoaded || ev.Gen != 1 {
		t.Errorf("event = %s gen %d, want loadedmetadata gen 1", ev.Type, ev.Gen)
	}
}

func TestEndedAgainAfterSeekBack(t *testing.T) {
	e, fake, evs := newConnected(t)

	e.Load(5, "a.mp3")
	fake.send(`{"event":"start-file"}`)
	fake.send(`{"event":"property-change","id":4,"name":"eof-reached","data":true}`)
	fake.send(`{"event":"property-change","id":4,"name":"eof-reached","data":false}`)
	fake.send(`{"event":"property-change","id":4,"name":"eof-reached","data":true}`)

	for i := 0; i < 2; i++ {
		if ev := evs.next(t); ev.Type != core.EventEnded || ev.Gen != 5 {
			t.Errorf("event %d = %s gen %d, want ended gen 5", i, ev.Type, ev.Gen)
		}
	}
}

func TestStartMissingBinary(t *testing.T) {
	e := New(WithPath("/nonexistent/mpv-binary"))
	err := e.Start(context.Background())
	if err == nil {
		t.Fatal("Start = nil, want error")
	}
}
