package sound

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Cue names a sound.
type Cue int

const (
	CueClick Cue = iota
	CueWordFound
	CueHint
	CueSuccess
)

func (c Cue) String() string {
	switch c {
	case CueClick:
		return "click"
	case CueWordFound:
		return "word-found"
	case CueHint:
		return "hint"
	case CueSuccess:
		return "success"
	}
	return "unknown"
}

// toneLength is how long every cue sounds; the gain ramp ends earlier.
const toneLength = 300 * time.Millisecond

// floorGain is where every exponential decay ends.
const floorGain = 0.01

// step holds a frequency from its start offset until the next step.
type step struct {
	at   time.Duration
	freq float64
}

type tone struct {
	steps []step
	gain  float64
	decay time.Duration
}

var tones = map[Cue]tone{
	CueClick:     {steps: []step{{0, 800}}, gain: 0.1, decay: 100 * time.Millisecond},
	CueSuccess:   {steps: []step{{0, 1200}}, gain: 0.2, decay: 300 * time.Millisecond},
	CueWordFound: {steps: []step{{0, 600}, {100 * time.Millisecond, 900}}, gain: 0.15, decay: 200 * time.Millisecond},
	CueHint:      {steps: []step{{0, 400}}, gain: 0.1, decay: 150 * time.Millisecond},
}

// voice renders one tone as a sine wave with an exponential gain decay.
type voice struct {
	t      tone
	rate   beep.SampleRate
	pos    int
	total  int
	phase  float64
	stepAt []int
}

func newVoice(t tone, rate beep.SampleRate) *voice {
	v := &voice{t: t, rate: rate, total: rate.N(toneLength)}
	for _, s := range t.steps {
		v.stepAt = append(v.stepAt, rate.N(s.at))
	}
	return v
}

func (v *voice) freq() float64 {
	f := v.t.steps[0].freq
	for i, at := range v.stepAt {
		if v.pos >= at {
			f = v.t.steps[i].freq
		}
	}
	return f
}

func (v *voice) gain() float64 {
	decay := v.rate.N(v.t.decay)
	if decay <= 0 || v.pos >= decay {
		return floorGain
	}
	frac := float64(v.pos) / float64(decay)
	return v.t.gain * math.Pow(floorGain/v.t.gain, frac)
}

func (v *voice) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if v.pos >= v.total {
			return i, i > 0
		}
		val := v.gain() * math.Sin(2*math.Pi*v.phase)
		samples[i][0] = val
		samples[i][1] = val

		v.phase += v.freq() / float64(v.rate)
		v.phase -= math.Floor(v.phase)
		v.pos++
	}
	return len(samples), true
}

func (v *voice) Err() error { return nil }

// Stream returns the finite streamer for c at the given sample rate and
// master volume (0 silences, 1 is unchanged).
func Stream(c Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	t, ok := tones[c]
	if !ok {
		t = tones[CueClick]
	}
	s := beep.Streamer(newVoice(t, rate))
	if volume <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(volume)}
}
