package device

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-audio-recfx/internal/capture"
	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// WAV format constants
const (
	wavBitDepth    = 16
	wavChannels    = 1
	wavFormatPCM   = 1
	bitsPerSample8 = 8
	unsigned8Bias  = 128
)

// Clip holds a decoded mono recording.
type Clip struct {
	Samples    []pcm.Sample
	SampleRate int
}

// Duration returns the playing time of the clip.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// ReadWAV decodes a PCM WAV stream. Multi-channel input keeps the first
// channel; 8, 24 and 32-bit samples are scaled to 16 bits.
func ReadWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", ErrFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV data: %w", err)
	}

	channels := int(decoder.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrFormat, channels)
	}

	bitDepth := int(decoder.BitDepth)
	convert, err := to16Bit(bitDepth)
	if err != nil {
		return nil, err
	}

	frames := len(buf.Data) / channels
	clip := &Clip{
		Samples:    make([]pcm.Sample, frames),
		SampleRate: int(decoder.SampleRate),
	}
	for i := range frames {
		clip.Samples[i] = pcm.FromSigned(convert(buf.Data[i*channels]))
	}
	return clip, nil
}

// to16Bit returns the conversion from a decoded integer sample of the given
// depth to a signed 16-bit amplitude.
func to16Bit(bitDepth int) (func(int) int32, error) {
	switch bitDepth {
	case bitsPerSample8:
		return func(v int) int32 { return int32(v-unsigned8Bias) << 8 }, nil
	case wavBitDepth:
		return func(v int) int32 { return int32(v) }, nil
	case 24, 32:
		shift := bitDepth - wavBitDepth
		return func(v int) int32 { return int32(v >> shift) }, nil
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrFormat, bitDepth)
	}
}

// OpenWAV reads a WAV file from disk.
func OpenWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	clip, err := ReadWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// WriteWAV encodes samples as 16-bit mono PCM.
func WriteWAV(w io.WriteSeeker, samples []pcm.Sample, sampleRate int) error {
	encoder := wav.NewEncoder(w, sampleRate, wavBitDepth, wavChannels, wavFormatPCM)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s.Int16())
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: wavChannels, SampleRate: sampleRate},
		SourceBitDepth: wavBitDepth,
	}

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

// CreateWAV writes samples to a new file at path.
func CreateWAV(path string, samples []pcm.Sample, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteWAV(f, samples, sampleRate); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WAVSource is a capture device that streams a decoded clip through the
// staging buffer. Once the clip is exhausted it delivers silence, the way an
// idle microphone would.
type WAVSource struct {
	// Loop restarts the clip instead of falling silent at its end.
	Loop bool

	// Realtime paces each half to its playing time.
	Realtime bool

	clip *Clip
	dma  dma
}

// NewWAVSource creates a source for clip.
func NewWAVSource(clip *Clip) *WAVSource {
	return &WAVSource{clip: clip}
}

// Init checks that the clip was recorded at the session rate. There is no
// resampling on the capture path.
func (w *WAVSource) Init(sampleRate int) error {
	if w.clip == nil || len(w.clip.Samples) == 0 {
		return fmt.Errorf("%w: empty clip", ErrFormat)
	}
	if w.clip.SampleRate != sampleRate {
		return fmt.Errorf("%w: clip is %d Hz, session is %d Hz", ErrFormat, w.clip.SampleRate, sampleRate)
	}
	return nil
}

// StartCapture implements capture.Device.
func (w *WAVSource) StartCapture(staging []pcm.Sample, n capture.Notifier) error {
	if err := w.Init(w.clipRate()); err != nil {
		return err
	}

	var pace time.Duration
	if w.Realtime {
		pace = halfDuration(len(staging), w.clip.SampleRate)
	}
	return w.dma.start(staging, n, pace, w.reader())
}

// StopCapture implements capture.Device.
func (w *WAVSource) StopCapture() error {
	w.dma.stop()
	return nil
}

func (w *WAVSource) clipRate() int {
	if w.clip == nil {
		return 0
	}
	return w.clip.SampleRate
}

// reader returns a fill function walking the clip from its start.
func (w *WAVSource) reader() fillFunc {
	src := w.clip.Samples
	pos := 0
	return func(dst []pcm.Sample) {
		for i := range dst {
			if pos >= len(src) {
				if !w.Loop {
					dst[i] = pcm.Silence
					continue
				}
				pos = 0
			}
			dst[i] = src[pos]
			pos++
		}
	}
}

// WAVSink is a playback device that renders the recording into a WAV file.
// Playback reports done once the file is written, or after the clip's playing
// time when Realtime is set.
type WAVSink struct {
	// Path is the output file.
	Path string

	// Realtime holds playback open for the clip's playing time.
	Realtime bool

	mu      sync.Mutex
	started time.Time
	length  time.Duration
	running bool
	writes  int
}

// StartPlayback implements the playback device.
func (s *WAVSink) StartPlayback(samples []pcm.Sample, sampleRate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBusy
	}

	if err := CreateWAV(s.Path, samples, sampleRate); err != nil {
		return err
	}
	s.writes++
	s.running = true
	s.started = time.Now()
	s.length = (&Clip{Samples: samples, SampleRate: sampleRate}).Duration()
	return nil
}

// PollPlayback implements the playback device.
func (s *WAVSink) PollPlayback() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return true, nil
	}
	return !s.Realtime || time.Since(s.started) >= s.length, nil
}

// StopPlayback implements the playback device.
func (s *WAVSink) StopPlayback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// Writes returns how many files the sink has written.
func (s *WAVSink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
