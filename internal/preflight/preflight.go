package preflight

import (
	"fmt"

	"nbr/internal/config"
	"nbr/internal/listfile"
	"nbr/internal/resource"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// SectionResult groups the checks for one list section.
type SectionResult struct {
	Position  int
	Type      resource.Type
	Local     Result
	Out       Result
	Resources int
	Missing   []string
}

// Passed reports whether the section can run. Missing resources do not
// block a section; they are skipped at conversion time.
func (s SectionResult) Passed() bool {
	return s.Local.Passed && s.Out.Passed
}

// RunAll checks the directories nbr itself writes to.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckCreatableDirectory("State directory", cfg.Paths.StateDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckCreatableDirectory("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// CheckList evaluates every section of list.
func CheckList(list *listfile.ListContext) []SectionResult {
	if list == nil {
		return nil
	}
	out := make([]SectionResult, 0, len(list.Sections))
	for i, section := range list.Sections {
		result := SectionResult{
			Position:  i + 1,
			Type:      section.Type,
			Local:     CheckReadableDirectory(fmt.Sprintf("Section %d local", i+1), section.LocalDir),
			Out:       CheckCreatableDirectory(fmt.Sprintf("Section %d out", i+1), section.OutDir),
			Resources: len(section.Resources),
		}
		if result.Local.Passed {
			result.Missing = MissingResources(section)
		}
		out = append(out, result)
	}
	return out
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
