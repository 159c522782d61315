package listfile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"nbr/internal/resource"
)

const bracedList = `
section texture {
    local "assets/textures"
    out   "res/textures"
    resources [
        "opengl.png"
        "paviment.jpg",
        "sub dir"
    ]
}

section AUDIO {
    out "res/audio"
    local "assets/audio"
    resources []
}
`

const bracketList = `
[shader]
local_dir = "assets/shaders"
out_dir = "res/shaders"
resources = [ "default3d.glsl", "cubemap.glsl", ]

[model]
local = "assets/models"
out = "res/models"
resources = [ "behelit.obj" ]
`

func TestCompileBracedSections(t *testing.T) {
	ctx, err := Compile(bracedList)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := []ListSection{
		{Type: resource.Texture, LocalDir: "assets/textures", OutDir: "res/textures", Resources: []string{"opengl.png", "paviment.jpg", "sub dir"}},
		{Type: resource.AudioBuffer, LocalDir: "assets/audio", OutDir: "res/audio", Resources: []string{}},
	}
	if !reflect.DeepEqual(ctx.Sections, want) {
		t.Fatalf("sections = %+v, want %+v", ctx.Sections, want)
	}
	if ctx.ResourceCount() != 3 {
		t.Fatalf("ResourceCount = %d", ctx.ResourceCount())
	}
}

func TestCompileBracketSections(t *testing.T) {
	ctx, err := Compile(bracketList)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(ctx.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(ctx.Sections))
	}
	if ctx.Sections[0].Type != resource.Shader || ctx.Sections[1].Type != resource.Model {
		t.Fatalf("unexpected types %v %v", ctx.Sections[0].Type, ctx.Sections[1].Type)
	}
	if got := ctx.Sections[0].Resources; !reflect.DeepEqual(got, []string{"default3d.glsl", "cubemap.glsl"}) {
		t.Fatalf("resources = %v", got)
	}
}

func TestCompileMixedForms(t *testing.T) {
	src := bracketList + bracedList
	ctx, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(ctx.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(ctx.Sections))
	}
}

func TestParseUnknownResourceType(t *testing.T) {
	src := strings.Replace(bracedList, "section AUDIO", "section hologram", 1)
	ctx, err := Compile(src)
	if ctx != nil {
		t.Fatal("expected no context on failure")
	}
	var typeErr *UnknownResourceTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnknownResourceTypeError, got %v", err)
	}
	if typeErr.Token.Text != "hologram" || typeErr.Token.Line != 12 {
		t.Fatalf("unexpected token %+v", typeErr.Token)
	}
	if !errors.Is(err, ErrFrontEnd) {
		t.Fatal("expected ErrFrontEnd match")
	}
}

func TestParseStructuralErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		msg  string
	}{
		{"empty file", "  # nothing here\n", "no sections"},
		{"missing local", `section font { out "o" resources [] }`, "missing its local clause"},
		{"missing out", `[font] local = "l" resources = []`, "missing its out clause"},
		{"missing resources", `section font { local "l" out "o" }`, "missing its resources clause"},
		{"duplicate clause", `section font { local "a" local "b" out "o" resources [] }`, "duplicate local"},
		{"unknown clause", `section font { local "a" input "b" }`, "unknown clause"},
		{"missing bracket", `section font { local "a" out "o" resources "x.ttf" }`, `expected "["`},
		{"bad list entry", `section font { local "a" out "o" resources [ "x.ttf" { ] }`, "malformed resource list"},
		{"premature eof", `section font { local "a" out "o" resources [ "x.ttf"`, "unexpected end of file"},
		{"eof in header", `section font`, "unexpected end of file"},
		{"unquoted dir", `section font { local fonts }`, "expected quoted path"},
		{"empty dir", `section font { local "" }`, "empty local path"},
		{"stray literal", `"a.png"`, "to open a section"},
		{"type literal", `section "texture" {}`, "expected resource type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, err := Compile(tc.src)
			if ctx != nil {
				t.Fatal("expected nil context")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("error %q does not mention %q", err, tc.msg)
			}
			if !errors.Is(err, ErrFrontEnd) {
				t.Fatal("expected ErrFrontEnd match")
			}
		})
	}
}

func TestParseIsAllOrNothing(t *testing.T) {
	src := bracedList + "\nsection shader { local \"s\" out \"o\" resources [ \"a.glsl\" \n"
	if ctx, err := Compile(src); err == nil || ctx != nil {
		t.Fatalf("expected failure without partial context, got ctx=%v err=%v", ctx, err)
	}
}

func TestParseWithoutEOFToken(t *testing.T) {
	tokens, err := Lex(`section font { local "l" out "o" resources [ "a.ttf" ] }`)
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := Parse(tokens[:len(tokens)-1])
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ctx.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(ctx.Sections))
	}
}

func TestLoadResolvesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.nbrlist")
	abs := filepath.Join(dir, "absolute")
	src := "\uFEFFsection texture {\n local \"assets\"\n out \"" + filepath.ToSlash(abs) + "\"\n resources [ \"a.png\" \"" + filepath.ToSlash(filepath.Join(abs, "b.png")) + "\" ]\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ctx.Path != path {
		t.Fatalf("Path = %q, want %q", ctx.Path, path)
	}
	section := ctx.Sections[0]
	if section.LocalDir != filepath.Join(dir, "assets") {
		t.Fatalf("LocalDir = %q", section.LocalDir)
	}
	if section.OutDir != abs {
		t.Fatalf("OutDir = %q, want %q", section.OutDir, abs)
	}
	paths := section.ResourcePaths()
	want := []string{filepath.Join(dir, "assets", "a.png"), filepath.Join(abs, "b.png")}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("ResourcePaths = %v, want %v", paths, want)
	}
}

func TestLoadWrapsFrontEndErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nbrlist")
	if err := os.WriteFile(path, []byte("section texture {"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrFrontEnd) || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected wrapped front-end error naming the file, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.nbrlist")); err == nil || errors.Is(err, ErrFrontEnd) {
		t.Fatalf("expected plain read error, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	ctx, err := Compile(bracketList + bracedList)
	if err != nil {
		t.Fatal(err)
	}
	if got := ctx.Select(nil); !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Fatalf("Select(nil) = %v", got)
	}
	texture := resource.Texture
	if got := ctx.Select(&texture); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("Select(texture) = %v", got)
	}
	font := resource.Font
	if got := ctx.Select(&font); len(got) != 0 {
		t.Fatalf("Select(font) = %v", got)
	}
}
