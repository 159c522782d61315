package resource

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Type identifies the kind of asset a list section converts.
type Type uint16

const (
	Texture Type = iota
	Cubemap
	Shader
	Model
	Font
	AudioBuffer

	// TypeCount is the number of valid types. Tables indexed by Type use it
	// as their length.
	TypeCount
)

var typeNames = [TypeCount]string{
	Texture:     "texture",
	Cubemap:     "cubemap",
	Shader:      "shader",
	Model:       "model",
	Font:        "font",
	AudioBuffer: "audio",
}

var typeExtensions = [TypeCount]string{
	Texture:     ".nbrtexture",
	Cubemap:     ".nbrcubemap",
	Shader:      ".nbrshader",
	Model:       ".nbrmodel",
	Font:        ".nbrfont",
	AudioBuffer: ".nbraudio",
}

var aliases = map[string]Type{
	"audio_buffer": AudioBuffer,
	"audiobuffer":  AudioBuffer,
	"sound":        AudioBuffer,
}

// All returns every valid type in declaration order.
func All() []Type {
	out := make([]Type, 0, TypeCount)
	for t := Type(0); t < TypeCount; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is a member of the closed enumeration.
func (t Type) Valid() bool {
	return t < TypeCount
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("type(%d)", uint16(t))
	}
	return typeNames[t]
}

// Label returns the human readable name used in tables and reports.
func (t Type) Label() string {
	if !t.Valid() {
		return t.String()
	}
	// Casers carry state, so one is built per call.
	return cases.Title(language.English).String(strings.ReplaceAll(typeNames[t], "_", " "))
}

// Extension returns the container envelope file extension, including the dot.
func (t Type) Extension() string {
	if !t.Valid() {
		return ".nbr"
	}
	return typeExtensions[t]
}

// Parse resolves a list-file identifier to a Type. Matching is case-insensitive.
func Parse(name string) (Type, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for t := Type(0); t < TypeCount; t++ {
		if typeNames[t] == key {
			return t, true
		}
	}
	if t, ok := aliases[key]; ok {
		return t, true
	}
	return 0, false
}

// FromExtension maps an envelope extension back to its Type.
func FromExtension(ext string) (Type, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for t := Type(0); t < TypeCount; t++ {
		if typeExtensions[t] == ext {
			return t, true
		}
	}
	return 0, false
}

// MarshalText renders the type using its list-file identifier.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid resource type %d", uint16(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText parses a list-file identifier.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("unknown resource type %q", string(text))
	}
	*t = parsed
	return nil
}
