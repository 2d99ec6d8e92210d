// Package session builds the long-lived playback context of the app: one
// coordinator per media kind plus the catalog they load from. A Session is
// created once at startup and closed once at shutdown; nothing else holds
// the coordinators.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tessro/showcase/internal/catalog"
	"github.com/tessro/showcase/internal/config"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/engine/mpv"
	"github.com/tessro/showcase/internal/engine/sim"
	"github.com/tessro/showcase/internal/player"
)

// simDefaultDuration is what the simulated engine reports for tracks the
// catalog gave no length for.
const simDefaultDuration = 3 * time.Minute

// EngineFactory creates the engine for one media kind.
type EngineFactory func(ctx context.Context, kind core.Kind) (core.Engine, error)

// Session is the application's playback context.
type Session struct {
	Audio   *player.Coordinator
	Video   *player.VideoCoordinator
	Catalog *catalog.Catalog

	log    logrus.FieldLogger
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// durations are catalog length hints keyed by source URL, used by
	// simulated engines.
	durations sync.Map

	closeOnce sync.Once
	closeErr  error
}

type options struct {
	factory  EngineFactory
	log      logrus.FieldLogger
	fallback player.Surface
	catalog  *catalog.Catalog
}

// Option configures New.
type Option func(*options)

// WithEngineFactory overrides how engines are created.
func WithEngineFactory(f EngineFactory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithVideoFallback sets the surface that hosts the video while no page
// shows it.
func WithVideoFallback(s player.Surface) Option {
	return func(o *options) {
		o.fallback = s
	}
}

// WithCatalog replaces the catalog built from cfg.Backend.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// New builds the session described by cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	o := options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		log:    o.log.WithField("component", "session"),
		cancel: cancel,
	}

	s.Catalog = o.catalog
	if s.Catalog == nil {
		client := catalog.NewClient(cfg.Backend.APIURL, time.Duration(cfg.Backend.Timeout)*time.Second, o.log)
		s.Catalog = catalog.New(client, cfg.Backend.MediaURL, time.Duration(cfg.Backend.CacheTTL)*time.Second)
	}

	factory := o.factory
	if factory == nil {
		factory = s.defaultFactory(cfg.Player, o.log)
	}

	audioEngine, err := factory(ctx, core.KindAudio)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("audio engine: %w", err)
	}
	videoEngine, err := factory(ctx, core.KindVideo)
	if err != nil {
		audioEngine.Close()
		cancel()
		return nil, fmt.Errorf("video engine: %w", err)
	}

	s.Audio = player.New(core.KindAudio, audioEngine,
		player.WithVolume(float64(cfg.Player.AudioVolume)/100),
		player.WithLogger(o.log),
	)
	s.Video = player.NewVideo(videoEngine, o.fallback,
		player.WithVolume(float64(cfg.Player.VideoVolume)/100),
		player.WithLogger(o.log),
	)

	s.log.WithField("engine", cfg.Player.Engine).Debug("session started")
	return s, nil
}

func (s *Session) defaultFactory(cfg config.PlayerConfig, log logrus.FieldLogger) EngineFactory {
	return func(ctx context.Context, kind core.Kind) (core.Engine, error) {
		if cfg.Engine == "sim" {
			e := sim.New(sim.WithDurationResolver(s.duration))
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				e.Run(ctx, 250*time.Millisecond)
			}()
			return e, nil
		}

		e := mpv.New(
			mpv.WithPath(cfg.MPVPath),
			mpv.WithVideo(kind == core.KindVideo),
			mpv.WithLogger(log.WithField("kind", string(kind))),
		)
		startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := e.Start(startCtx); err != nil {
			return nil, err
		}
		return e, nil
	}
}

func (s *Session) duration(src string) time.Duration {
	if d, ok := s.durations.Load(src); ok {
		return d.(time.Duration)
	}
	return simDefaultDuration
}

// Coordinator returns the coordinator for kind, or nil for an unknown kind.
func (s *Session) Coordinator(kind core.Kind) *player.Coordinator {
	switch kind {
	case core.KindAudio:
		return s.Audio
	case core.KindVideo:
		return s.Video.Coordinator
	default:
		return nil
	}
}

// Play looks id up in the catalog and loads it into the coordinator for
// kind.
func (s *Session) Play(ctx context.Context, kind core.Kind, id string, autoplay bool) (core.Track, error) {
	c := s.Coordinator(kind)
	if c == nil {
		return core.Track{}, fmt.Errorf("unknown media kind %q", kind)
	}

	item, err := s.Catalog.Lookup(ctx, kind, id)
	if err != nil {
		return core.Track{}, err
	}
	track := item.Track
	if track.Duration > 0 && track.SourceURL != "" {
		s.durations.Store(track.SourceURL, track.Duration)
	}

	if err := c.LoadTrack(track, autoplay); err != nil {
		return track, err
	}
	return track, nil
}

// Close tears down both coordinators and their engines.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.Audio != nil {
			errs = append(errs, s.Audio.Close())
		}
		if s.Video != nil {
			errs = append(errs, s.Video.Close())
		}
		s.cancel()
		s.wg.Wait()
		s.closeErr = errors.Join(errs...)
		s.log.Debug("session closed")
	})
	return s.closeErr
}
