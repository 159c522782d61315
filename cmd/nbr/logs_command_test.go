package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestLogsCommandShowsLatestBuild(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"logs"}, env.configPath); err == nil {
		t.Fatal("expected error before any build")
	}

	out, _, err := runCLI(t, []string{"build", env.listPath, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var result buildResultJSON
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode build output: %v", err)
	}

	out, _, err = runCLI(t, []string{"logs", "-n", "1000"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "build started")
	requireContains(t, out, "build finished")
	requireContains(t, out, "run_id="+result.RunID)

	out, _, err = runCLI(t, []string{"logs", "-n", "1000", "--level", "warn"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --level: %v", err)
	}
	if strings.Contains(out, "build started") {
		t.Fatalf("info records should be filtered: %q", out)
	}
	requireContains(t, out, "broken.png")

	out, _, err = runCLI(t, []string{"logs", "-n", "1000", "--run", result.RunID, "--grep", "finished", "--raw"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --run: %v", err)
	}
	requireContains(t, out, `"msg":"build finished"`)
	if strings.Contains(out, "build started") {
		t.Fatalf("grep should drop other records: %q", out)
	}
}
