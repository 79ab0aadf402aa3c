package device

import (
	"sync"
	"time"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// NullSink is a playback device that discards audio. With Realtime set it
// reports done only after the recording's playing time.
type NullSink struct {
	Realtime bool

	mu      sync.Mutex
	started time.Time
	length  time.Duration
	plays   int
}

// StartPlayback implements the playback device.
func (s *NullSink) StartPlayback(samples []pcm.Sample, sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
	s.started = time.Now()
	s.length = (&Clip{Samples: samples, SampleRate: sampleRate}).Duration()
	return nil
}

// PollPlayback implements the playback device.
func (s *NullSink) PollPlayback() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.Realtime || time.Since(s.started) >= s.length, nil
}

// StopPlayback implements the playback device.
func (s *NullSink) StopPlayback() error { return nil }

// Plays returns how many recordings were handed to the sink.
func (s *NullSink) Plays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}
