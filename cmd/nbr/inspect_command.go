package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nbr/internal/envelope"
	"nbr/internal/scene"
)

type inspectJSON struct {
	Path        string `json:"path"`
	Kind        string `json:"kind"`
	Type        string `json:"type,omitempty"`
	Version     string `json:"version,omitempty"`
	Summary     string `json:"summary"`
	PointLights int    `json:"point_lights,omitempty"`
	Entities    int    `json:"entities,omitempty"`
}

func newInspectCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "inspect <file>",
		Short:       "Decode an envelope or scene file and summarize it",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var info inspectJSON
			var err error
			if strings.EqualFold(filepath.Ext(path), scene.Extension) {
				info, err = inspectScene(path)
			} else {
				info, err = inspectEnvelope(path)
			}
			if err != nil {
				return err
			}

			c := newConsole(cmd)
			if jsonOutput {
				return c.emit(info)
			}

			c.status("File", toneInfo, info.Path)
			if info.Type != "" {
				c.status("Type", toneInfo, info.Type)
			}
			if info.Version != "" {
				c.status("Version", toneInfo, info.Version)
			}
			c.status("Contents", toneGood, info.Summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func inspectEnvelope(path string) (inspectJSON, error) {
	header, payload, err := envelope.ReadFile(path)
	if err != nil {
		return inspectJSON{}, fmt.Errorf("inspect %s: %w", path, err)
	}
	return inspectJSON{
		Path:    path,
		Kind:    "envelope",
		Type:    header.ResourceType().String(),
		Version: fmt.Sprintf("%d.%d", header.Major, header.Minor),
		Summary: payload.Summary(),
	}, nil
}

func inspectScene(path string) (inspectJSON, error) {
	var state scene.State
	if err := scene.Load(path, &state); err != nil {
		return inspectJSON{}, fmt.Errorf("inspect %s: %w", path, err)
	}
	cam := state.Camera.Position
	return inspectJSON{
		Path:        path,
		Kind:        "scene",
		Summary:     fmt.Sprintf("camera at (%g, %g, %g), %d point lights, %d entities", cam.X, cam.Y, cam.Z, len(state.PointLights), len(state.Entities)),
		PointLights: len(state.PointLights),
		Entities:    len(state.Entities),
	}, nil
}
