// Package scene saves and restores editor scene state through the codec.
//
// A State is always passed in explicitly; there is no package-level entity
// list. The file layout is: camera, directional light, i32 point light count,
// point lights, i32 entity count, entity transforms.
package scene

import (
	"errors"
	"fmt"

	"nbr/internal/codec"
	"nbr/internal/records"
)

// Extension is the conventional file extension for saved scenes.
const Extension = ".nscn"

// maxCount guards against corrupt counts in scene files.
const maxCount = 1 << 20

// ErrCorruptScene reports counts that cannot belong to a valid scene file.
var ErrCorruptScene = errors.New("corrupt scene file")

// Entity is a named transform. Names are not persisted; loading assigns
// them by position when the receiving state already has entities.
type Entity struct {
	Name      string
	Transform records.Transform
}

// State is everything a scene file persists.
type State struct {
	Camera      records.Camera
	DirLight    records.DirectionalLight
	PointLights []records.PointLight
	Entities    []Entity
}

// Save writes the state to path, replacing any existing file.
func Save(path string, state *State) error {
	if state == nil {
		return errors.New("save scene: nil state")
	}
	stream, err := codec.Open(path, codec.WriteOnly)
	if err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	if err := Encode(stream, state); err != nil {
		_ = stream.Close()
		return fmt.Errorf("save scene %s: %w", path, err)
	}
	return stream.Close()
}

// Load reads path into state. Entities already present in state keep their
// names; entities beyond the existing count are appended unnamed.
func Load(path string, state *State) error {
	if state == nil {
		return errors.New("load scene: nil state")
	}
	stream, err := codec.Open(path, codec.ReadOnly)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	defer stream.Close()
	if err := Decode(stream, state); err != nil {
		return fmt.Errorf("load scene %s: %w", path, err)
	}
	return nil
}

// Encode writes state to an open stream.
func Encode(s *codec.Stream, state *State) error {
	if err := s.WriteRecord(&state.Camera); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if err := s.WriteRecord(&state.DirLight); err != nil {
		return fmt.Errorf("directional light: %w", err)
	}
	if err := s.WriteI32(int32(len(state.PointLights))); err != nil {
		return fmt.Errorf("point light count: %w", err)
	}
	for i := range state.PointLights {
		if err := s.WriteRecord(&state.PointLights[i]); err != nil {
			return fmt.Errorf("point light %d: %w", i, err)
		}
	}
	if err := s.WriteI32(int32(len(state.Entities))); err != nil {
		return fmt.Errorf("entity count: %w", err)
	}
	for i := range state.Entities {
		if err := s.WriteRecord(&state.Entities[i].Transform); err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
	}
	return nil
}

// Decode reads a scene from an open stream into state.
func Decode(s *codec.Stream, state *State) error {
	if err := s.ReadRecord(&state.Camera); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if err := s.ReadRecord(&state.DirLight); err != nil {
		return fmt.Errorf("directional light: %w", err)
	}

	lights, err := readCount(s, "point light")
	if err != nil {
		return err
	}
	state.PointLights = resize(state.PointLights, lights)
	for i := range state.PointLights {
		if err := s.ReadRecord(&state.PointLights[i]); err != nil {
			return fmt.Errorf("point light %d: %w", i, err)
		}
	}

	entities, err := readCount(s, "entity")
	if err != nil {
		return err
	}
	state.Entities = resize(state.Entities, entities)
	for i := range state.Entities {
		if err := s.ReadRecord(&state.Entities[i].Transform); err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
	}
	return nil
}

func readCount(s *codec.Stream, what string) (int, error) {
	n, err := s.ReadI32()
	if err != nil {
		return 0, fmt.Errorf("%s count: %w", what, err)
	}
	if n < 0 || n > maxCount {
		return 0, fmt.Errorf("%w: %s count %d", ErrCorruptScene, what, n)
	}
	return int(n), nil
}

func resize[T any](items []T, n int) []T {
	if n <= len(items) {
		return items[:n]
	}
	return append(items, make([]T, n-len(items))...)
}
