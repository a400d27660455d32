package storyboard

import (
	"fmt"
)

// Storyboard is the ordered scene list that defines a render timeline.
// Order changes only through Append, Insert, Remove and Move.
type Storyboard struct {
	scenes []Scene
}

// New creates a storyboard from scenes, validating each one.
func New(scenes ...Scene) (*Storyboard, error) {
	sb := &Storyboard{}
	for _, s := range scenes {
		if err := sb.Append(s); err != nil {
			return nil, err
		}
	}
	return sb, nil
}

// Len returns the number of scenes.
func (sb *Storyboard) Len() int {
	return len(sb.scenes)
}

// Snapshot returns a copy of the scene sequence that later edits do not affect.
func (sb *Storyboard) Snapshot() []Scene {
	out := make([]Scene, len(sb.scenes))
	copy(out, sb.scenes)
	return out
}

// TotalDuration returns the sum of all scene durations in seconds.
func (sb *Storyboard) TotalDuration() float64 {
	var total float64
	for _, s := range sb.scenes {
		total += s.Duration
	}
	return total
}

// Find returns the scene with id and its index.
func (sb *Storyboard) Find(id string) (Scene, int, bool) {
	for i, s := range sb.scenes {
		if s.ID == id {
			return s, i, true
		}
	}
	return Scene{}, -1, false
}

// Append adds a scene at the end of the timeline.
func (sb *Storyboard) Append(s Scene) error {
	return sb.Insert(len(sb.scenes), s)
}

// Insert adds a scene at index.
func (sb *Storyboard) Insert(index int, s Scene) error {
	s.normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	if _, _, ok := sb.Find(s.ID); ok {
		return fmt.Errorf("storyboard: duplicate scene ID %s", s.ID)
	}
	if index < 0 || index > len(sb.scenes) {
		return fmt.Errorf("storyboard: insert index %d out of range [0,%d]", index, len(sb.scenes))
	}
	sb.scenes = append(sb.scenes, Scene{})
	copy(sb.scenes[index+1:], sb.scenes[index:])
	sb.scenes[index] = s
	return nil
}

// Remove deletes the scene with id.
func (sb *Storyboard) Remove(id string) error {
	_, i, ok := sb.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}
	sb.scenes = append(sb.scenes[:i], sb.scenes[i+1:]...)
	return nil
}

// Move relocates the scene with id to index, shifting the scenes in between.
func (sb *Storyboard) Move(id string, index int) error {
	s, from, ok := sb.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}
	if index < 0 || index >= len(sb.scenes) {
		return fmt.Errorf("storyboard: move index %d out of range [0,%d)", index, len(sb.scenes))
	}
	sb.scenes = append(sb.scenes[:from], sb.scenes[from+1:]...)
	sb.scenes = append(sb.scenes, Scene{})
	copy(sb.scenes[index+1:], sb.scenes[index:])
	sb.scenes[index] = s
	return nil
}

// Update applies fn to a copy of the scene with id and stores it if it still validates.
// On error the stored scene is left unchanged.
func (sb *Storyboard) Update(id string, fn func(*Scene) error) error {
	s, i, ok := sb.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}
	if err := fn(&s); err != nil {
		return err
	}
	if s.ID != id {
		return fmt.Errorf("storyboard: scene ID cannot change")
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	sb.scenes[i] = s
	return nil
}
