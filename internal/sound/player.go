// Package sound plays short synthesized cues for game events.
//
// Output goes through a sink function: the speaker in the terminal client,
// a recorder in tests. A Player without a sink is silent.
package sound

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/game"
)

// SampleRate is the output rate used with the speaker.
const SampleRate = beep.SampleRate(44100)

// Player turns cues and game events into sound.
type Player struct {
	mu      sync.Mutex
	enabled bool
	volume  float64
	rate    beep.SampleRate
	sink    func(beep.Streamer)
}

// New returns an enabled Player writing to sink.
func New(rate beep.SampleRate, sink func(beep.Streamer)) *Player {
	return &Player{enabled: true, volume: 1, rate: rate, sink: sink}
}

// OpenSpeaker initializes the audio device and returns a Player on it.
// On failure it logs and returns a silent Player, so callers never need
// to special-case missing audio.
func OpenSpeaker() *Player {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		log.Warn().Err(err).Msg("audio unavailable")
		return New(SampleRate, nil)
	}
	return New(SampleRate, func(s beep.Streamer) { speaker.Play(s) })
}

// Play sounds c unless the player is disabled.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	enabled, sink, vol := p.enabled, p.sink, p.volume
	p.mu.Unlock()
	if !enabled || sink == nil {
		return
	}
	sink(Stream(c, p.rate, vol))
}

// Toggle flips sound on or off and returns the new state.
func (p *Player) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = !p.enabled
	return p.enabled
}

// Enabled reports whether cues are played.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// SetVolume sets the master volume, 0 to 1.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = min(max(v, 0), 1)
	p.mu.Unlock()
}

// OnEvent maps game events to cues; pass it to game.Subscribe.
func (p *Player) OnEvent(ev game.Event) {
	switch ev.Kind {
	case game.EventWordFound:
		p.Play(CueWordFound)
	case game.EventHintShown:
		p.Play(CueHint)
	case game.EventSolved:
		p.Play(CueSuccess)
	}
}
