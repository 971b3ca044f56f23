package term

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"astarviz/internal/search"
)

const sampleRate = beep.SampleRate(44100)

// Sound plays a short tone when a run ends. A zero Sound is silent.
type Sound struct {
	enabled bool
}

// NewSound opens the speaker. On failure the returned Sound is silent and the
// error is reported so callers may log it.
func NewSound() (*Sound, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &Sound{}, err
	}
	return &Sound{enabled: true}, nil
}

// toneFor picks the pitch announcing state, or 0 for no tone.
func toneFor(state search.State) float64 {
	switch state {
	case search.StateSucceeded:
		return 880
	case search.StateFailed:
		return 220
	default:
		return 0
	}
}

func (s *Sound) Outcome(state search.State) {
	if s == nil || !s.enabled {
		return
	}
	freq := toneFor(state)
	if freq == 0 {
		return
	}
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(120*time.Millisecond), sine))
}

func (s *Sound) Close() {
	if s != nil && s.enabled {
		speaker.Close()
		s.enabled = false
	}
}
