package health

import "finpulse/internal/core"

// prefaces maps each tone to its fixed one-line narrative opener.
var prefaces = map[core.Tone]string{
	core.ToneCelebratory: "Your finances are in excellent shape this period.",
	core.ToneBalanced:    "Your finances are on a steady footing this period.",
	core.ToneCautious:    "Your finances need some attention this period.",
	core.ToneCritical:    "Your finances are under real pressure this period.",
}

// Classify maps the overall score to a qualitative tone.
func Classify(overall int) core.Tone {
	switch {
	case overall >= 85:
		return core.ToneCelebratory
	case overall >= 70:
		return core.ToneBalanced
	case overall >= 50:
		return core.ToneCautious
	default:
		return core.ToneCritical
	}
}

// Preface returns the fixed opener for a tone.
func Preface(tone core.Tone) string {
	return prefaces[tone]
}
