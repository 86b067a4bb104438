package input

// qwerty keys laid out like a piano octave and a half: home row for
// naturals, top row for accidentals.
var qwertyKeys = []string{"a", "w", "s", "e", "d", "f", "t", "g", "y", "h", "u", "j", "k", "o", "l", "p", ";", "'"}

const (
	MinOctave     = 0
	MaxOctave     = 8
	DefaultOctave = 4
)

// Keyboard maps computer keys to MIDI pitches starting at C of Octave
type Keyboard struct {
	Octave   int
	Velocity float64
}

// NewKeyboard returns a keyboard whose "a" key plays middle C
func NewKeyboard() *Keyboard {
	return &Keyboard{Octave: DefaultOctave, Velocity: 0.8}
}

// Pitch returns the MIDI pitch bound to key
func (k *Keyboard) Pitch(key string) (int, bool) {
	for i, q := range qwertyKeys {
		if q == key {
			p := 12*(k.Octave+1) + i
			return p, p <= 127
		}
	}
	return 0, false
}

// Press sends a note-on for key to target. It reports whether the key is bound.
func (k *Keyboard) Press(key string, target Target) (bool, error) {
	p, ok := k.Pitch(key)
	if !ok {
		return false, nil
	}
	return true, target.OnNoteEvent(p, k.Velocity, true)
}

// Shift moves the keyboard by delta octaves, staying within range
func (k *Keyboard) Shift(delta int) {
	k.Octave = min(MaxOctave, max(MinOctave, k.Octave+delta))
}

// Bindings returns the bound keys in ascending pitch order
func (k *Keyboard) Bindings() []string {
	return append([]string(nil), qwertyKeys...)
}
