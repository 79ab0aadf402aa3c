package recfx

// Session defaults, as on the demo board.
const (
	DefaultSampleRate = RateVoIP
	DefaultBlockSize  = 0xFFFE // Staging buffer length in samples
	DefaultBlocks     = 4      // Staging blocks per recording
	DefaultVolume     = 80     // Playback volume in percent
)

// Configuration limits
const (
	minSampleRate   = 1000
	maxSampleRate   = 192000
	minBlockSize    = 2
	maxStoreSamples = 1 << 26 // 128 MiB at two bytes per sample
	maxVolume       = 100
)
