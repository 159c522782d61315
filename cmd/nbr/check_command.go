package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"nbr/internal/listfile"
	"nbr/internal/preflight"
)

type checkSectionJSON struct {
	Position    int      `json:"position"`
	Type        string   `json:"type"`
	LocalDir    string   `json:"local_dir"`
	LocalOK     bool     `json:"local_ok"`
	LocalDetail string   `json:"local_detail"`
	OutDir      string   `json:"out_dir"`
	OutOK       bool     `json:"out_ok"`
	OutDetail   string   `json:"out_detail"`
	Resources   int      `json:"resources"`
	Missing     []string `json:"missing,omitempty"`
}

type checkResultJSON struct {
	ListFile string             `json:"list_file"`
	Passed   bool               `json:"passed"`
	Sections []checkSectionJSON `json:"sections"`
}

func newCheckCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "check <list-file>",
		Short:       "Parse a list file and check its section directories",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := listfile.Load(args[0])
			if err != nil {
				return err
			}
			results := preflight.CheckList(list)

			failed := 0
			for _, r := range results {
				if !r.Passed() {
					failed++
				}
			}

			c := newConsole(cmd)
			if jsonOutput {
				payload := checkResultJSON{ListFile: list.Path, Passed: failed == 0, Sections: make([]checkSectionJSON, 0, len(results))}
				for i, r := range results {
					section := list.Sections[i]
					payload.Sections = append(payload.Sections, checkSectionJSON{
						Position:    r.Position,
						Type:        r.Type.String(),
						LocalDir:    section.LocalDir,
						LocalOK:     r.Local.Passed,
						LocalDetail: r.Local.Detail,
						OutDir:      section.OutDir,
						OutOK:       r.Out.Passed,
						OutDetail:   r.Out.Detail,
						Resources:   r.Resources,
						Missing:     r.Missing,
					})
				}
				if err := c.emit(payload); err != nil {
					return err
				}
			} else {
				printCheckResults(c, list, results)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d sections cannot run", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printCheckResults(c *console, list *listfile.ListContext, results []preflight.SectionResult) {
	c.heading(list.Path)

	rows := make([][]string, 0, len(results))
	for i, r := range results {
		section := list.Sections[i]
		rows = append(rows, []string{
			strconv.Itoa(r.Position),
			r.Type.Label(),
			section.LocalDir,
			yesNo(r.Local.Passed),
			section.OutDir,
			yesNo(r.Out.Passed),
			strconv.Itoa(r.Resources),
			strconv.Itoa(len(r.Missing)),
		})
	}
	c.table([]column{
		{title: "#", numeric: true},
		{title: "Type"},
		{title: "Local"},
		{title: "OK"},
		{title: "Output"},
		{title: "OK"},
		{title: "Resources", numeric: true},
		{title: "Missing", numeric: true},
	}, rows)

	for _, r := range results {
		label := fmt.Sprintf("Section %d", r.Position)
		for _, check := range []preflight.Result{r.Local, r.Out} {
			if !check.Passed {
				c.status(label, checkTone(false), check.Detail)
			}
		}
		for _, missing := range r.Missing {
			c.status(label, toneWarn, "missing "+missing)
		}
	}
}
