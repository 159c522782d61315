package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nbr/internal/listfile"
	"nbr/internal/testsupport"
)

func TestBuildCommandConvertsList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"build", env.listPath}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	requireContains(t, out, "Texture")
	requireContains(t, out, "Shader")
	requireContains(t, out, "completed_with_skips")
	requireContains(t, out, "2 converted, 1 skipped")
	requireContains(t, out, "broken.png")

	project := filepath.Dir(env.listPath)
	for _, path := range []string{
		filepath.Join(project, "res", "textures", "a.nbrtexture"),
		filepath.Join(project, "res", "shaders", "basic.nbrshader"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
}

func TestBuildCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"build", env.listPath, "--type", "shader", "--strategy", "section", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var result buildResultJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.Status != "completed" {
		t.Fatalf("status = %q", result.Status)
	}
	if result.Converted != 1 || result.Skipped != 0 {
		t.Fatalf("converted=%d skipped=%d", result.Converted, result.Skipped)
	}
	if len(result.Sections) != 1 || result.Sections[0].Type != "shader" || result.Sections[0].Position != 2 {
		t.Fatalf("unexpected sections: %+v", result.Sections)
	}
	if !result.Sections[0].OutCreated {
		t.Fatal("expected output directory to be reported as created")
	}
	if result.RunID == "" {
		t.Fatal("expected run id")
	}
}

func TestBuildCommandRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"build", env.listPath, "--type", "sprite"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	requireContains(t, err.Error(), "unknown resource type")

	_, _, err = runCLI(t, []string{"build", env.listPath, "--strategy", "fifo"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	requireContains(t, err.Error(), "unknown strategy")
}

func TestBuildCommandFailsOnSyntaxError(t *testing.T) {
	env := setupCLITestEnv(t)
	listPath := filepath.Join(env.baseDir, "bad.nbrlist")
	testsupport.WriteText(t, listPath, "section texture {\n  local \"a\"\n  out \"b\"\n  resources [ \"x.png\"\n")

	_, _, err := runCLI(t, []string{"build", listPath}, env.configPath)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !errors.Is(err, listfile.ErrFrontEnd) {
		t.Fatalf("expected front-end error, got %v", err)
	}
}

func TestBuildCommandRequiresListArgument(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"build"}, env.configPath); err == nil {
		t.Fatal("expected error without list file")
	}
}
