package records

import "nbr/internal/codec"

type Vec2 struct{ X, Y float32 }

type Vec3 struct{ X, Y, Z float32 }

type Vec4 struct{ X, Y, Z, W float32 }

// Quat is a rotation quaternion; W is the scalar part and is written last.
type Quat struct{ X, Y, Z, W float32 }

type Color struct{ R, G, B, A float32 }

func (v *Vec2) Fields() []codec.Field {
	return []codec.Field{codec.F("x", &v.X), codec.F("y", &v.Y)}
}

func (v *Vec3) Fields() []codec.Field {
	return []codec.Field{codec.F("x", &v.X), codec.F("y", &v.Y), codec.F("z", &v.Z)}
}

func (v *Vec4) Fields() []codec.Field {
	return []codec.Field{codec.F("x", &v.X), codec.F("y", &v.Y), codec.F("z", &v.Z), codec.F("w", &v.W)}
}

func (q *Quat) Fields() []codec.Field {
	return []codec.Field{codec.F("x", &q.X), codec.F("y", &q.Y), codec.F("z", &q.Z), codec.F("w", &q.W)}
}

func (c *Color) Fields() []codec.Field {
	return []codec.Field{codec.F("r", &c.R), codec.F("g", &c.G), codec.F("b", &c.B), codec.F("a", &c.A)}
}

// IdentityQuat is the rotation that leaves vectors unchanged.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// Transform is written as position, scale, rotation.
type Transform struct {
	Position Vec3
	Scale    Vec3
	Rotation Quat
}

// NewTransform returns a transform at pos with unit scale and no rotation.
func NewTransform(pos Vec3) Transform {
	return Transform{Position: pos, Scale: Vec3{1, 1, 1}, Rotation: IdentityQuat()}
}

func (t *Transform) Fields() []codec.Field {
	return join(
		prefixed("position", t.Position.Fields()),
		prefixed("scale", t.Scale.Fields()),
		prefixed("rotation", t.Rotation.Fields()),
	)
}

// Camera carries the persisted subset of an editor camera.
type Camera struct {
	Yaw         float32
	Pitch       float32
	Zoom        float32
	Near        float32
	Far         float32
	Sensitivity float32
	Exposure    float32
	Position    Vec3
}

func (c *Camera) Fields() []codec.Field {
	return join(
		[]codec.Field{
			codec.F("yaw", &c.Yaw),
			codec.F("pitch", &c.Pitch),
			codec.F("zoom", &c.Zoom),
			codec.F("near", &c.Near),
			codec.F("far", &c.Far),
			codec.F("sensitivity", &c.Sensitivity),
			codec.F("exposure", &c.Exposure),
		},
		prefixed("position", c.Position.Fields()),
	)
}

// DirectionalLight stores only the RGB channels of its color.
type DirectionalLight struct {
	Direction Vec3
	Color     Vec3
}

func (l *DirectionalLight) Fields() []codec.Field {
	return join(
		prefixed("direction", l.Direction.Fields()),
		prefixed("color", l.Color.Fields()),
	)
}

type PointLight struct {
	Position  Vec3
	Color     Vec3
	Linear    float32
	Quadratic float32
}

func (l *PointLight) Fields() []codec.Field {
	return join(
		prefixed("position", l.Position.Fields()),
		prefixed("color", l.Color.Fields()),
		[]codec.Field{codec.F("linear", &l.Linear), codec.F("quadratic", &l.Quadratic)},
	)
}

// AudioSource mirrors a playing source's description. Looping is stored as a
// float field (0 or 1) to keep the record a flat run of f32 values.
type AudioSource struct {
	Volume    float32
	Pitch     float32
	Position  Vec3
	Velocity  Vec3
	Direction Vec3
	Looping   float32
}

func (a *AudioSource) Fields() []codec.Field {
	return join(
		[]codec.Field{codec.F("volume", &a.Volume), codec.F("pitch", &a.Pitch)},
		prefixed("position", a.Position.Fields()),
		prefixed("velocity", a.Velocity.Fields()),
		prefixed("direction", a.Direction.Fields()),
		[]codec.Field{codec.F("looping", &a.Looping)},
	)
}

// IsLooping reports the decoded loop flag.
func (a *AudioSource) IsLooping() bool { return a.Looping != 0 }

type AudioListener struct {
	Volume   float32
	Position Vec3
	Velocity Vec3
}

func (a *AudioListener) Fields() []codec.Field {
	return join(
		[]codec.Field{codec.F("volume", &a.Volume)},
		prefixed("position", a.Position.Fields()),
		prefixed("velocity", a.Velocity.Fields()),
	)
}

// BodyType classifies a physics body.
type BodyType uint16

const (
	BodyStatic BodyType = iota
	BodyDynamic
	BodyKinematic
)

// PhysicsBody is written as seven f32 values followed by two u16 values.
type PhysicsBody struct {
	Position Vec3
	Rotation Quat
	Type     uint16
	Awake    uint16
}

func (b *PhysicsBody) Fields() []codec.Field {
	return join(
		prefixed("position", b.Position.Fields()),
		prefixed("rotation", b.Rotation.Fields()),
		[]codec.Field{codec.F("type", &b.Type), codec.F("awake", &b.Awake)},
	)
}

// Collider is written as nine f32 values followed by an i32 sensor flag.
type Collider struct {
	Offset      Vec3
	Extents     Vec3
	Friction    float32
	Restitution float32
	Density     float32
	Sensor      int32
}

func (c *Collider) Fields() []codec.Field {
	return join(
		prefixed("offset", c.Offset.Fields()),
		prefixed("extents", c.Extents.Fields()),
		[]codec.Field{
			codec.F("friction", &c.Friction),
			codec.F("restitution", &c.Restitution),
			codec.F("density", &c.Density),
			codec.F("sensor", &c.Sensor),
		},
	)
}

func prefixed(prefix string, fields []codec.Field) []codec.Field {
	for i := range fields {
		fields[i].Name = prefix + "." + fields[i].Name
	}
	return fields
}

func join(groups ...[]codec.Field) []codec.Field {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]codec.Field, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
