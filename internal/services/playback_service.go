// internal/services/playback_service.go
package services

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/blobstore"
	"github.com/javajoker/beatmarket/internal/config"
)

type PlayerStatus string

const (
	PlayerIdle    PlayerStatus = "idle"
	PlayerPaused  PlayerStatus = "paused"
	PlayerPlaying PlayerStatus = "playing"

	// Previous rewinds the current beat once playback is past this point.
	rewindThreshold = 3.0
)

// PlaybackState is a snapshot of the player.
type PlaybackState struct {
	Status   PlayerStatus `json:"status"`
	BeatID   string       `json:"beatId,omitempty"`
	Source   string       `json:"source,omitempty"`
	Position float64      `json:"position"`
	Duration float64      `json:"duration"`
	Volume   float64      `json:"volume"`
	Queue    []string     `json:"queue"`
	Counted  bool         `json:"counted"`
}

// PlaybackService is the transient player. It is never persisted.
type PlaybackService struct {
	catalog  *CatalogService
	identity *IdentityService
	cfg      *config.Config
	log      logrus.FieldLogger

	status   PlayerStatus
	beatID   string
	source   string
	position float64
	duration float64
	volume   float64
	queue    []string
	counted  bool
}

func NewPlaybackService(catalog *CatalogService, identity *IdentityService, cfg *config.Config, log logrus.FieldLogger) *PlaybackService {
	return &PlaybackService{
		catalog:  catalog,
		identity: identity,
		cfg:      cfg,
		log:      log.WithField("component", "playback"),
		status:   PlayerIdle,
		volume:   clamp(cfg.Market.DefaultVolume, 0, 1),
	}
}

// StreamURL is where blob-backed audio of a beat is served.
func StreamURL(beatID string) string {
	return fmt.Sprintf("/v1/beats/%s/audio", beatID)
}

// Play starts beatID, loading it first when it is not the current beat.
func (s *PlaybackService) Play(ctx context.Context, beatID string) (PlaybackState, error) {
	if s.identity.CurrentUser() == nil {
		return s.State(), ErrNoSession
	}
	if beatID == "" || beatID == s.beatID {
		if s.status == PlayerIdle {
			return s.State(), fmt.Errorf("%w: nothing loaded", ErrValidation)
		}
		s.status = PlayerPlaying
		return s.State(), nil
	}

	beat, err := s.catalog.GetBeat(beatID)
	if err != nil {
		return s.State(), err
	}

	s.beatID = beat.ID
	s.source = beat.AudioURL
	if _, _, ok := blobstore.ParseRef(beat.AudioURL); ok {
		s.source = StreamURL(beat.ID)
	}
	s.position = 0
	s.duration = 0
	s.counted = false
	s.status = PlayerPlaying

	s.log.WithField("beat_id", beat.ID).Debug("Beat loaded")
	return s.State(), nil
}

func (s *PlaybackService) Pause() PlaybackState {
	if s.status == PlayerPlaying {
		s.status = PlayerPaused
	}
	return s.State()
}

// Toggle flips between playing and paused; idle stays idle.
func (s *PlaybackService) Toggle() PlaybackState {
	switch s.status {
	case PlayerPlaying:
		s.status = PlayerPaused
	case PlayerPaused:
		s.status = PlayerPlaying
	}
	return s.State()
}

// Seek moves the position without changing the play state.
func (s *PlaybackService) Seek(t float64) PlaybackState {
	if s.status == PlayerIdle {
		return s.State()
	}
	s.position = s.boundPosition(t)
	return s.State()
}

func (s *PlaybackService) SetVolume(v float64) PlaybackState {
	s.volume = clamp(v, 0, 1)
	return s.State()
}

func (s *PlaybackService) SetDuration(d float64) PlaybackState {
	if s.status != PlayerIdle && d > 0 && !math.IsInf(d, 0) {
		s.duration = d
	}
	return s.State()
}

// UpdatePosition is the time-update callback. The play counter of the loaded
// beat is bumped once, when the position first reaches the threshold.
func (s *PlaybackService) UpdatePosition(ctx context.Context, t float64) PlaybackState {
	if s.status == PlayerIdle {
		return s.State()
	}
	s.position = s.boundPosition(t)
	if !s.counted && s.position >= s.cfg.Market.PlayThresholdSeconds {
		s.counted = true
		s.catalog.IncrementPlays(ctx, s.beatID)
	}
	return s.State()
}

// Ended handles natural end of track: the next queued beat starts, otherwise
// the player pauses at 0.
func (s *PlaybackService) Ended(ctx context.Context) PlaybackState {
	if s.status == PlayerIdle {
		return s.State()
	}
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if state, err := s.Play(ctx, next); err == nil {
			return state
		}
	}
	s.status = PlayerPaused
	s.position = 0
	return s.State()
}

// Next skips to the next queued beat. With an empty queue nothing changes.
func (s *PlaybackService) Next(ctx context.Context) PlaybackState {
	if len(s.queue) == 0 {
		return s.State()
	}
	return s.Ended(ctx)
}

func (s *PlaybackService) Previous() PlaybackState {
	if s.status != PlayerIdle && s.position > rewindThreshold {
		s.position = 0
	}
	return s.State()
}

func (s *PlaybackService) AddToQueue(beatID string) (PlaybackState, error) {
	if _, err := s.catalog.GetBeat(beatID); err != nil {
		return s.State(), err
	}
	s.queue = append(s.queue, beatID)
	return s.State(), nil
}

func (s *PlaybackService) ClearQueue() PlaybackState {
	s.queue = nil
	return s.State()
}

// Stop returns to idle with no source and an empty queue. Volume is kept.
func (s *PlaybackService) Stop() PlaybackState {
	s.status = PlayerIdle
	s.beatID = ""
	s.source = ""
	s.position = 0
	s.duration = 0
	s.queue = nil
	s.counted = false
	return s.State()
}

func (s *PlaybackService) State() PlaybackState {
	return PlaybackState{
		Status:   s.status,
		BeatID:   s.beatID,
		Source:   s.source,
		Position: s.position,
		Duration: s.duration,
		Volume:   s.volume,
		Queue:    append([]string{}, s.queue...),
		Counted:  s.counted,
	}
}

func (s *PlaybackService) boundPosition(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if s.duration > 0 && t > s.duration {
		return s.duration
	}
	return t
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
