package listfile

import (
	"path/filepath"

	"nbr/internal/resource"
)

// ListSection is one typed group of resources.
type ListSection struct {
	Type      resource.Type
	LocalDir  string
	OutDir    string
	Resources []string
}

// ResourcePaths returns the section's resources with relative entries
// resolved against LocalDir. Directories are not expanded.
func (s ListSection) ResourcePaths() []string {
	out := make([]string, 0, len(s.Resources))
	for _, entry := range s.Resources {
		out = append(out, s.resolve(entry))
	}
	return out
}

func (s ListSection) resolve(entry string) string {
	if filepath.IsAbs(entry) {
		return filepath.Clean(entry)
	}
	return filepath.Join(s.LocalDir, entry)
}

// ListContext is the compiled form of one list file. It is read-only once
// Parse returns.
type ListContext struct {
	Path     string
	Sections []ListSection
}

// Select returns the indices of the sections matching filter. A nil filter
// selects every section.
func (c *ListContext) Select(filter *resource.Type) []int {
	if c == nil {
		return nil
	}
	out := make([]int, 0, len(c.Sections))
	for i, section := range c.Sections {
		if filter == nil || section.Type == *filter {
			out = append(out, i)
		}
	}
	return out
}

// ResourceCount returns the number of resource entries across all sections.
func (c *ListContext) ResourceCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, section := range c.Sections {
		n += len(section.Resources)
	}
	return n
}
