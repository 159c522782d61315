package records

import (
	"path/filepath"
	"reflect"
	"testing"

	"nbr/internal/codec"
)

func TestRecordSizes(t *testing.T) {
	cases := []struct {
		name string
		rec  codec.Record
		size int
	}{
		{"transform", &Transform{}, 10 * 4},
		{"camera", &Camera{}, 10 * 4},
		{"directional light", &DirectionalLight{}, 6 * 4},
		{"point light", &PointLight{}, 8 * 4},
		{"audio source", &AudioSource{}, 12 * 4},
		{"audio listener", &AudioListener{}, 7 * 4},
		{"physics body", &PhysicsBody{}, 7*4 + 2*2},
		{"collider", &Collider{}, 9*4 + 4},
	}
	for _, tc := range cases {
		if got := codec.SizeOf(tc.rec); got != tc.size {
			t.Fatalf("%s: size %d, want %d", tc.name, got, tc.size)
		}
	}
}

func TestTransformFieldOrder(t *testing.T) {
	schema := codec.SchemaOf(&Transform{})
	want := []string{
		"position.x", "position.y", "position.z",
		"scale.x", "scale.y", "scale.z",
		"rotation.x", "rotation.y", "rotation.z", "rotation.w",
	}
	for i, f := range schema.Fields {
		if f.Name != want[i] {
			t.Fatalf("field %d = %s, want %s", i, f.Name, want[i])
		}
	}
}

func TestRoundTripThroughStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.bin")
	inputs := []codec.Record{
		&Transform{Position: Vec3{1, 2, 3}, Scale: Vec3{4, 5, 6}, Rotation: Quat{0.1, 0.2, 0.3, 0.9}},
		&Camera{Yaw: -90, Pitch: 12.5, Zoom: 45, Near: 0.1, Far: 1000, Sensitivity: 0.2, Exposure: 1.5, Position: Vec3{10, 0, 10}},
		&DirectionalLight{Direction: Vec3{0, -1, 0}, Color: Vec3{1, 0.9, 0.8}},
		&PointLight{Position: Vec3{10, 0, 10}, Color: Vec3{1, 1, 1}, Linear: 0.09, Quadratic: 0.032},
		&AudioSource{Volume: 0.5, Pitch: 1, Position: Vec3{1, 1, 1}, Velocity: Vec3{0, 2, 0}, Direction: Vec3{0, 0, -1}, Looping: 1},
		&AudioListener{Volume: 0.8, Position: Vec3{3, 2, 1}, Velocity: Vec3{-1, 0, 0}},
		&PhysicsBody{Position: Vec3{0, 5, 0}, Rotation: IdentityQuat(), Type: uint16(BodyDynamic), Awake: 1},
		&Collider{Offset: Vec3{0, 0.5, 0}, Extents: Vec3{1, 1, 1}, Friction: 0.5, Restitution: 0.1, Density: 1, Sensor: 1},
	}

	w, err := codec.Open(path, codec.WriteOnly)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range inputs {
		if err := w.WriteRecord(rec); err != nil {
			t.Fatalf("write %T: %v", rec, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := codec.Open(path, codec.ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for _, want := range inputs {
		got := reflect.New(reflect.TypeOf(want).Elem()).Interface().(codec.Record)
		if err := r.ReadRecord(got); err != nil {
			t.Fatalf("read %T: %v", want, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch for %T: got %+v want %+v", want, got, want)
		}
	}
}

func TestAudioSourceLooping(t *testing.T) {
	src := AudioSource{Looping: 1}
	if !src.IsLooping() {
		t.Fatal("expected looping")
	}
}
