package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nbr/internal/testsupport"
)

const demoList = `
# demo project
section texture {
    local "assets/textures"
    out   "res/textures"
    resources [ "a.png" "broken.png" ]
}

section shader {
    local "assets/shaders"
    out   "res/shaders"
    resources [ "basic.glsl" ]
}
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	stateDir   string
	logDir     string
	listPath   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(homeDir, ".config", "nbr", "config.toml"),
		stateDir:   filepath.Join(base, "state"),
		logDir:     filepath.Join(base, "logs"),
	}
	writeTestConfig(t, env.configPath, env.stateDir, env.logDir)
	env.listPath = writeProject(t, filepath.Join(base, "project"))
	return env
}

func writeProject(t *testing.T, dir string) string {
	t.Helper()
	testsupport.WriteText(t, filepath.Join(dir, "game.nbrlist"), demoList)
	testsupport.WritePNG(t, filepath.Join(dir, "assets", "textures", "a.png"), 2, 2)
	testsupport.WriteBytes(t, filepath.Join(dir, "assets", "textures", "broken.png"), []byte("\x89PNG\r\n\x1a\nnope"))
	testsupport.WriteText(t, filepath.Join(dir, "assets", "shaders", "basic.glsl"),
		"#type vertex\nvoid main() {}\n#type fragment\nvoid main() {}\n")
	return filepath.Join(dir, "game.nbrlist")
}

func writeTestConfig(t *testing.T, path, stateDir, logDir string) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[build]\nworkers = 2\n\n[logging]\nlevel = \"error\"\n",
		stateDir,
		logDir,
	)
	testsupport.WriteText(t, path, content)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
