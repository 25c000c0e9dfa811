package stretch

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-stretch/internal/stretcher"
)

// ProcessMode selects offline (studied) or real-time operation.
type ProcessMode int

const (
	// ProcessOffline allows a study pass and picks onsets from the whole
	// input.
	ProcessOffline ProcessMode = iota
	// ProcessRealTime detects onsets as audio arrives. Study is refused.
	ProcessRealTime
)

// Transients controls phase handling at detected onsets.
type Transients int

const (
	// TransientsCrisp resets every phase at an onset.
	TransientsCrisp Transients = iota
	// TransientsMixed resets phases above 150 Hz only.
	TransientsMixed
	// TransientsSmooth never resets phases.
	TransientsSmooth
)

// Detector selects the onset detection function.
type Detector int

const (
	DetectorCompound Detector = iota
	DetectorPercussive
	DetectorSoft
)

// Phase selects how synthesis phases relate across bins.
type Phase int

const (
	// PhaseLaminar locks bins to their nearest spectral peak.
	PhaseLaminar Phase = iota
	// PhaseIndependent advances every bin on its own.
	PhaseIndependent
)

// Formant selects whether the spectral envelope follows the pitch shift.
type Formant int

const (
	FormantShifted Formant = iota
	FormantPreserved
)

// PitchMethod selects the resampler used for pitch shifting.
type PitchMethod int

const (
	// PitchHighSpeed interpolates linearly and bypasses at unity pitch.
	PitchHighSpeed PitchMethod = iota
	// PitchHighQuality uses a polyphase FIR resampler.
	PitchHighQuality
	// PitchHighConsistency interpolates cubically and stays engaged at unity
	// pitch so that pitch changes are seamless.
	PitchHighConsistency
)

// Window selects the analysis frame length relative to the default.
type Window int

const (
	WindowStandard Window = iota
	WindowShort
	WindowLong
)

// Channels selects whether stereo is processed as left/right or mid/side.
type Channels int

const (
	ChannelsApart Channels = iota
	ChannelsTogether
)

var (
	processNames    = []string{"offline", "realtime"}
	transientsNames = []string{"crisp", "mixed", "smooth"}
	detectorNames   = []string{"compound", "percussive", "soft"}
	phaseNames      = []string{"laminar", "independent"}
	formantNames    = []string{"shifted", "preserved"}
	pitchNames      = []string{"speed", "quality", "consistency"}
	windowNames     = []string{"standard", "short", "long"}
	channelsNames   = []string{"apart", "together"}
)

func (m ProcessMode) String() string { return enumName(m, processNames) }
func (t Transients) String() string  { return enumName(t, transientsNames) }
func (d Detector) String() string    { return enumName(d, detectorNames) }
func (p Phase) String() string       { return enumName(p, phaseNames) }
func (f Formant) String() string     { return enumName(f, formantNames) }
func (p PitchMethod) String() string { return enumName(p, pitchNames) }
func (w Window) String() string      { return enumName(w, windowNames) }
func (c Channels) String() string    { return enumName(c, channelsNames) }

// ParseProcessMode parses "offline" or "realtime".
func ParseProcessMode(s string) (ProcessMode, error) {
	return parseEnum[ProcessMode]("process", s, processNames)
}

// ParseTransients parses "crisp", "mixed" or "smooth".
func ParseTransients(s string) (Transients, error) {
	return parseEnum[Transients]("transients", s, transientsNames)
}

// ParseDetector parses "compound", "percussive" or "soft".
func ParseDetector(s string) (Detector, error) {
	return parseEnum[Detector]("detector", s, detectorNames)
}

// ParsePhase parses "laminar" or "independent".
func ParsePhase(s string) (Phase, error) {
	return parseEnum[Phase]("phase", s, phaseNames)
}

// ParseFormant parses "shifted" or "preserved".
func ParseFormant(s string) (Formant, error) {
	return parseEnum[Formant]("formant", s, formantNames)
}

// ParsePitchMethod parses "speed", "quality" or "consistency".
func ParsePitchMethod(s string) (PitchMethod, error) {
	return parseEnum[PitchMethod]("pitch method", s, pitchNames)
}

// ParseWindow parses "standard", "short" or "long".
func ParseWindow(s string) (Window, error) {
	return parseEnum[Window]("window", s, windowNames)
}

// ParseChannels parses "apart" or "together".
func ParseChannels(s string) (Channels, error) {
	return parseEnum[Channels]("channels", s, channelsNames)
}

func enumName[T ~int](v T, names []string) string {
	if v < 0 || int(v) >= len(names) {
		return fmt.Sprintf("%d", int(v))
	}

	return names[v]
}

func parseEnum[T ~int](name, s string, names []string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return T(i), nil
		}
	}

	return 0, &ParameterError{Name: name, Value: s}
}

func inRange[T ~int](v T, names []string) bool {
	return v >= 0 && int(v) < len(names)
}

// Options is the full option set of an Engine. The zero value selects the
// defaults of every family.
type Options struct {
	Process    ProcessMode
	Transients Transients
	Detector   Detector
	Phase      Phase
	Formant    Formant
	Pitch      PitchMethod
	Window     Window
	Channels   Channels
}

// Validate reports the first option outside its enumeration.
func (o Options) Validate() error {
	checks := []struct {
		name string
		ok   bool
		v    any
	}{
		{"process", inRange(o.Process, processNames), o.Process},
		{"transients", inRange(o.Transients, transientsNames), o.Transients},
		{"detector", inRange(o.Detector, detectorNames), o.Detector},
		{"phase", inRange(o.Phase, phaseNames), o.Phase},
		{"formant", inRange(o.Formant, formantNames), o.Formant},
		{"pitch method", inRange(o.Pitch, pitchNames), o.Pitch},
		{"window", inRange(o.Window, windowNames), o.Window},
		{"channels", inRange(o.Channels, channelsNames), o.Channels},
	}

	for _, c := range checks {
		if !c.ok {
			return &ParameterError{Name: c.name, Value: c.v}
		}
	}

	return nil
}

// flags packs o into the option word of the DSP core. o must be valid.
func (o Options) flags() stretcher.Flags {
	return processFlags[o.Process] |
		o.Transients.flags() |
		o.Detector.flags() |
		o.Phase.flags() |
		o.Formant.flags() |
		o.Pitch.flags() |
		windowFlags[o.Window] |
		channelsFlags[o.Channels]
}

var (
	processFlags    = []stretcher.Flags{stretcher.ProcessOffline, stretcher.ProcessRealTime}
	transientsFlags = []stretcher.Flags{stretcher.TransientsCrisp, stretcher.TransientsMixed, stretcher.TransientsSmooth}
	detectorFlags   = []stretcher.Flags{stretcher.DetectorCompound, stretcher.DetectorPercussive, stretcher.DetectorSoft}
	phaseFlags      = []stretcher.Flags{stretcher.PhaseLaminar, stretcher.PhaseIndependent}
	formantFlags    = []stretcher.Flags{stretcher.FormantShifted, stretcher.FormantPreserved}
	pitchFlags      = []stretcher.Flags{stretcher.PitchHighSpeed, stretcher.PitchHighQuality, stretcher.PitchHighConsistency}
	windowFlags     = []stretcher.Flags{stretcher.WindowStandard, stretcher.WindowShort, stretcher.WindowLong}
	channelsFlags   = []stretcher.Flags{stretcher.ChannelsApart, stretcher.ChannelsTogether}
)

func (t Transients) flags() stretcher.Flags  { return transientsFlags[t] }
func (d Detector) flags() stretcher.Flags    { return detectorFlags[d] }
func (p Phase) flags() stretcher.Flags       { return phaseFlags[p] }
func (f Formant) flags() stretcher.Flags     { return formantFlags[f] }
func (p PitchMethod) flags() stretcher.Flags { return pitchFlags[p] }
