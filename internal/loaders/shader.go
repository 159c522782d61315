package loaders

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stage is a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
	stageCount
)

var stageNames = map[string]Stage{
	"vertex":   StageVertex,
	"fragment": StageFragment,
	"pixel":    StageFragment,
	"compute":  StageCompute,
}

var singleStageExtensions = map[string]Stage{
	".vert": StageVertex,
	".vs":   StageVertex,
	".frag": StageFragment,
	".fs":   StageFragment,
	".comp": StageCompute,
}

// ShaderSource holds GLSL text per stage; missing stages are empty.
type ShaderSource struct {
	Stages [stageCount]string
}

func (s *ShaderSource) Vertex() string   { return s.Stages[StageVertex] }
func (s *ShaderSource) Fragment() string { return s.Stages[StageFragment] }
func (s *ShaderSource) Compute() string  { return s.Stages[StageCompute] }

func (s *ShaderSource) Release() {
	s.Stages = [stageCount]string{}
}

// LoadShader reads a combined source split by "#type <stage>" lines
// (.glsl, .shader) or a single stage named by its extension.
func LoadShader(path string) (*ShaderSource, error) {
	e := ext(path)
	if stage, ok := singleStageExtensions[e]; ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", ErrMalformed, filepath.Base(path))
		}
		src := &ShaderSource{}
		src.Stages[stage] = string(data)
		return src, nil
	}
	if e != ".glsl" && e != ".shader" {
		return nil, unsupported(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src, err := splitStages(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, filepath.Base(path), err)
	}
	return src, nil
}

func splitStages(data []byte) (*ShaderSource, error) {
	src := &ShaderSource{}
	var seen [stageCount]bool
	current := Stage(-1)
	var body strings.Builder
	flush := func() {
		if current >= 0 {
			src.Stages[current] = body.String()
		}
		body.Reset()
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		trimmed := strings.TrimSpace(text)
		if rest, ok := strings.CutPrefix(trimmed, "#type"); ok {
			name := strings.ToLower(strings.TrimSpace(rest))
			stage, known := stageNames[name]
			if !known {
				return nil, fmt.Errorf("line %d: unknown stage %q", line, name)
			}
			if seen[stage] {
				return nil, fmt.Errorf("line %d: stage %q declared twice", line, name)
			}
			flush()
			seen[stage] = true
			current = stage
			continue
		}
		if current < 0 {
			if trimmed != "" && !strings.HasPrefix(trimmed, "//") {
				return nil, fmt.Errorf("line %d: code before the first #type marker", line)
			}
			continue
		}
		body.WriteString(text)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current < 0 {
		return nil, errors.New("no #type markers")
	}
	flush()
	return src, nil
}
