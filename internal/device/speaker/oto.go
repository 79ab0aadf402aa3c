//go:build !headless

package speaker

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

const outputBuffer = 50 * time.Millisecond

// The oto context is process-wide and can be created once.
var (
	contextMu   sync.Mutex
	otoContext  *oto.Context
	contextRate int
)

func openContext(sampleRate int) (*oto.Context, error) {
	contextMu.Lock()
	defer contextMu.Unlock()

	if otoContext != nil {
		if contextRate != sampleRate {
			return nil, ErrRateChange
		}
		return otoContext, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   outputBuffer,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	otoContext = ctx
	contextRate = sampleRate
	return ctx, nil
}

// Speaker is a playback device backed by the system audio output.
type Speaker struct {
	gain float64

	mu     sync.Mutex
	player *oto.Player
}

// New creates a speaker at the given 0-100 volume.
func New(volume int) (*Speaker, error) {
	gain, err := checkVolume(volume)
	if err != nil {
		return nil, err
	}
	return &Speaker{gain: gain}, nil
}

// Init opens the audio output at sampleRate.
func (s *Speaker) Init(sampleRate int) error {
	_, err := openContext(sampleRate)
	return err
}

// StartPlayback implements the playback device.
func (s *Speaker) StartPlayback(samples []pcm.Sample, sampleRate int) error {
	ctx, err := openContext(sampleRate)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.closePlayer()

	player := ctx.NewPlayer(bytes.NewReader(pcm.EncodeInt16LE(samples)))
	player.SetVolume(s.gain)
	player.Play()
	s.player = player
	return nil
}

// PollPlayback implements the playback device.
func (s *Speaker) PollPlayback() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil {
		return false, ErrNotStarted
	}
	if err := s.player.Err(); err != nil {
		return false, err
	}
	return !s.player.IsPlaying(), nil
}

// StopPlayback implements the playback device.
func (s *Speaker) StopPlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closePlayer()
}

func (s *Speaker) closePlayer() error {
	if s.player == nil {
		return nil
	}
	s.player.Pause()
	err := s.player.Close()
	s.player = nil
	return err
}
