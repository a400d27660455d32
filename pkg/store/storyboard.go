package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/stages/load"
	"github.com/user/storyreel/pkg/storyboard"
)

// Storyboards persists the storyboard under StoryboardKey.
type Storyboards struct {
	kv ports.KeyValueStore
}

// NewStoryboards creates a storyboard store.
func NewStoryboards(kv ports.KeyValueStore) *Storyboards {
	return &Storyboards{kv: kv}
}

// Load reads the persisted storyboard. A missing key yields an empty one.
func (s *Storyboards) Load(ctx context.Context) (*storyboard.Storyboard, error) {
	raw, ok, err := s.kv.Get(ctx, StoryboardKey)
	if err != nil {
		return nil, fmt.Errorf("load storyboard: %w", err)
	}
	if !ok || raw == "" {
		return storyboard.New()
	}

	var scenes []storyboard.Scene
	if err := json.Unmarshal([]byte(raw), &scenes); err != nil {
		return nil, fmt.Errorf("parse storyboard: %w", err)
	}
	sb, err := storyboard.New(scenes...)
	if err != nil {
		return nil, fmt.Errorf("stored storyboard: %w", err)
	}
	return sb, nil
}

// Save persists sb. Session blob locators are written as expired.
func (s *Storyboards) Save(ctx context.Context, sb *storyboard.Storyboard) error {
	scenes := sb.Snapshot()
	for i := range scenes {
		if load.IsBlob(scenes[i].Media.Locator) {
			scenes[i].Media.Locator = storyboard.ExpiredLocator
		}
		if load.IsBlob(scenes[i].NarrationAudio) {
			scenes[i].NarrationAudio = ""
		}
	}
	data, err := json.Marshal(scenes)
	if err != nil {
		return fmt.Errorf("marshal storyboard: %w", err)
	}
	return s.kv.Set(ctx, StoryboardKey, string(data))
}
