package effects

// Vibrato defaults
const (
	defaultVibratoFrequency = 8.0 // Modulation rate in Hz
	defaultVibratoDepth     = 1.5 // Peak offset in samples before truncation
)

// Distortion defaults
const (
	defaultDistortionThreshold = 10000 // Signed clip level
	maxDistortionThreshold     = 32767
)

// Reverb default tap layout: delays in seconds, gains linear.
var (
	defaultTapDelays = [...]float64{0.1, 0.2, 0.3, 0.4, 0.5}
	defaultTapGains  = [...]float64{0.7, 0.5, 0.3, 0.2, 0.1}
)

// Registered effect names.
const (
	NamePassthrough = "passthrough"
	NameVibrato     = "vibrato"
	NameNightcore   = "nightcore"
	NameReverb      = "reverb"
	NameDistortion  = "distortion"
)
