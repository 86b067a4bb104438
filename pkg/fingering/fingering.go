// Package fingering assigns finger numbers (1 = thumb, 5 = pinky) to one
// hand's notes using interval distances for single notes and fixed shapes
// for chords. The result is a best-effort suggestion, not an ergonomic
// optimum.
package fingering

import (
	"sort"

	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/steps"
)

// Interval thresholds in semitones
const (
	adjacentMax = 2
	skipMin     = 3
	skipMax     = 4
	shiftMin    = 5
	// Widest two-note chord fingered 1-3, a major third
	narrowChordSpan = 4

	fallbackFinger uint8 = 3
)

// cursor is the finger and pitch the next single note is measured from
type cursor struct {
	hand   model.Hand
	finger uint8
	pitch  uint8
	placed bool
}

// StartFinger is the finger a hand begins on: thumb for the right hand,
// pinky for the left.
func StartFinger(hand model.Hand) uint8 {
	if hand == model.Left {
		return model.Pinky
	}
	return model.Thumb
}

// Assign fingers every note of one hand in place. notes must be sorted by
// start time. Every note ends up with a finger in [1,5].
func Assign(hand model.Hand, notes []model.Note) {
	c := &cursor{hand: hand, finger: StartFinger(hand)}
	for _, span := range steps.Clusters(notes) {
		if span.Len() == 1 {
			n := &notes[span.Start]
			n.Finger = c.single(n.Pitch)
			continue
		}
		c.chord(notes[span.Start:span.End])
	}
}

// single returns the finger for the next single note and moves the cursor
func (c *cursor) single(pitch uint8) uint8 {
	interval := 0
	if c.placed {
		interval = int(pitch) - int(c.pitch)
	}

	finger := c.next(interval)
	c.finger, c.pitch, c.placed = finger, pitch, true
	return finger
}

func (c *cursor) next(interval int) uint8 {
	distance := interval
	if distance < 0 {
		distance = -distance
	}

	// Right hand fingers count up with pitch, left hand fingers count down
	direction := 1
	if interval < 0 {
		direction = -1
	}
	if c.hand == model.Left {
		direction = -direction
	}
	current := int(c.finger)

	switch {
	case distance == 0:
		return c.finger
	case distance <= adjacentMax:
		return clamp(current + direction)
	case distance >= skipMin && distance <= skipMax:
		if skipped := current + 2*direction; skipped >= int(model.Thumb) && skipped <= int(model.Pinky) {
			return uint8(skipped)
		}
		return c.shift(interval)
	case distance >= shiftMin:
		return c.shift(interval)
	}
	return fallbackFinger
}

// shift moves the hand to a new position in the direction of the jump
func (c *cursor) shift(interval int) uint8 {
	ascending := interval > 0
	switch {
	case c.hand == model.Right && ascending:
		return model.Thumb
	case c.hand == model.Right:
		return model.Pinky
	case ascending:
		return model.Pinky
	default:
		return model.Thumb
	}
}

// chord fingers a simultaneity cluster by template and leaves the cursor on
// the outer note: highest for the right hand, lowest for the left.
func (c *cursor) chord(cluster []model.Note) {
	order := make([]int, len(cluster))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return cluster[order[i]].Pitch < cluster[order[j]].Pitch
	})

	lowest := cluster[order[0]].Pitch
	highest := cluster[order[len(order)-1]].Pitch
	shape := Template(len(cluster), int(highest)-int(lowest), c.hand)
	for rank, idx := range order {
		cluster[idx].Finger = shape[rank]
	}

	if c.hand == model.Left {
		c.finger, c.pitch = shape[0], lowest
	} else {
		c.finger, c.pitch = shape[len(shape)-1], highest
	}
	c.placed = true
}

// Template returns the chord fingering for size notes sorted by ascending
// pitch. span is the interval between the outer notes in semitones.
func Template(size, span int, hand model.Hand) []uint8 {
	var shape []uint8
	switch {
	case size <= 0:
		return nil
	case size == 2 && span <= narrowChordSpan:
		shape = []uint8{1, 3}
	case size == 2:
		shape = []uint8{1, 5}
	case size == 3:
		shape = []uint8{1, 3, 5}
	case size == 4:
		shape = []uint8{1, 2, 3, 5}
	default:
		shape = make([]uint8, size)
		for i := range shape {
			shape[i] = clamp(i + 1)
		}
	}

	if hand == model.Left {
		for i, j := 0, len(shape)-1; i < j; i, j = i+1, j-1 {
			shape[i], shape[j] = shape[j], shape[i]
		}
	}
	return shape
}

func clamp(finger int) uint8 {
	if finger < int(model.Thumb) {
		return model.Thumb
	}
	if finger > int(model.Pinky) {
		return model.Pinky
	}
	return uint8(finger)
}
