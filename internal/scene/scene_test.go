package scene

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"nbr/internal/codec"
	"nbr/internal/records"
)

func sampleState() *State {
	return &State{
		Camera: records.Camera{Yaw: -90, Zoom: 45, Near: 0.1, Far: 100, Sensitivity: 0.1, Exposure: 1, Position: records.Vec3{X: 10, Z: 10}},
		DirLight: records.DirectionalLight{
			Direction: records.Vec3{Y: -1},
			Color:     records.Vec3{X: 1, Y: 1, Z: 1},
		},
		PointLights: []records.PointLight{
			{Position: records.Vec3{X: 10, Z: 10}, Color: records.Vec3{X: 1}, Linear: 0.09, Quadratic: 0.032},
			{Position: records.Vec3{X: -4}, Color: records.Vec3{Y: 1}, Linear: 0.07, Quadratic: 0.017},
		},
		Entities: []Entity{
			{Name: "3D Model", Transform: records.NewTransform(records.Vec3{X: 10, Z: 10})},
			{Name: "Cube", Transform: records.Transform{Position: records.Vec3{Y: 2}, Scale: records.Vec3{X: 2, Y: 2, Z: 2}, Rotation: records.Quat{X: 0.5, W: 0.5}}},
			{Name: "Ground", Transform: records.NewTransform(records.Vec3{Y: -1})},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.nscn")
	in := sampleState()
	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := &State{Entities: []Entity{{Name: "3D Model"}, {Name: "Cube"}, {Name: "Ground"}}}
	if err := Load(path, out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestLoadGrowsAndShrinksSlices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.nscn")
	in := sampleState()
	if err := Save(path, in); err != nil {
		t.Fatal(err)
	}

	out := &State{PointLights: make([]records.PointLight, 5)}
	if err := Load(path, out); err != nil {
		t.Fatal(err)
	}
	if len(out.PointLights) != 2 {
		t.Fatalf("expected 2 point lights, got %d", len(out.PointLights))
	}
	if len(out.Entities) != 3 || out.Entities[0].Name != "" {
		t.Fatalf("unexpected entities %+v", out.Entities)
	}
}

func TestLoadRejectsCorruptCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nscn")
	s, err := codec.Open(path, codec.WriteOnly)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRecord(&records.Camera{}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRecord(&records.DirectionalLight{}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteI32(-3); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	err = Load(path, &State{})
	if !errors.Is(err, ErrCorruptScene) {
		t.Fatalf("expected ErrCorruptScene, got %v", err)
	}
}

func TestLoadTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.nscn")
	if err := os.WriteFile(path, make([]byte, 12), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Load(path, &State{}); !errors.Is(err, codec.ErrShortRead) {
		t.Fatalf("expected short read, got %v", err)
	}
}
