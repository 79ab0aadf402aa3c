//go:build headless

package speaker

import (
	"sync"
	"time"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// Speaker waits out the playing time without producing sound.
type Speaker struct {
	mu      sync.Mutex
	rate    int
	started time.Time
	length  time.Duration
	running bool
}

// New creates a speaker at the given 0-100 volume.
func New(volume int) (*Speaker, error) {
	if _, err := checkVolume(volume); err != nil {
		return nil, err
	}
	return &Speaker{}, nil
}

// Init records the output rate.
func (s *Speaker) Init(sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rate != 0 && s.rate != sampleRate {
		return ErrRateChange
	}
	s.rate = sampleRate
	return nil
}

// StartPlayback implements the playback device.
func (s *Speaker) StartPlayback(samples []pcm.Sample, sampleRate int) error {
	if err := s.Init(sampleRate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = time.Now()
	s.length = time.Duration(len(samples)) * time.Second / time.Duration(sampleRate)
	s.running = true
	return nil
}

// PollPlayback implements the playback device.
func (s *Speaker) PollPlayback() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false, ErrNotStarted
	}
	return time.Since(s.started) >= s.length, nil
}

// StopPlayback implements the playback device.
func (s *Speaker) StopPlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}
