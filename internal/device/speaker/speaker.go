// Package speaker plays recordings through the system audio output.
//
// The oto backend is used by default; build with -tags headless for a
// drop-in stand-in that only waits out the playing time.
package speaker

import (
	"errors"
	"fmt"
)

const maxVolume = 100

// Speaker errors.
var (
	// ErrRateChange indicates playback at a rate other than the one the
	// output was opened with. The audio context can only be opened once per
	// process.
	ErrRateChange = errors.New("output sample rate cannot change")

	// ErrNotStarted indicates a poll without a preceding StartPlayback.
	ErrNotStarted = errors.New("playback not started")
)

// checkVolume validates a 0-100 volume and returns it as a gain.
func checkVolume(volume int) (float64, error) {
	if volume < 0 || volume > maxVolume {
		return 0, fmt.Errorf("volume must be in [0, %d]: %d", maxVolume, volume)
	}
	return float64(volume) / maxVolume, nil
}
