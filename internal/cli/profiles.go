package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/pipeline"
	"github.com/matzehuels/stacksize/pkg/profile"
)

// profilesCommand creates the profiles command.
func (c *CLI) profilesCommand() *cobra.Command {
	var (
		file   string
		format = pipeline.FormatTable
	)

	cmd := &cobra.Command{
		Use:   "profiles [name]",
		Short: "List setup profiles or show one",
		Long: `List setup profiles or show one.

Without --profiles the built-in profiles are shown. A profile file is
validated while it is loaded, so this command doubles as a linter.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, pipeline.FormatTable, pipeline.FormatJSON); err != nil {
				return err
			}
			all, err := c.loadProfiles(file)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				p, err := profile.Lookup(all, args[0])
				if err != nil {
					return err
				}
				if format == pipeline.FormatJSON {
					return writeJSON(cmd.OutOrStdout(), p)
				}
				writeProfile(cmd.OutOrStdout(), p)
				return nil
			}
			if format == pipeline.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), all)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProfilesTable(all))
			if len(all) > 0 {
				printNextStep("Estimate one", "stacksize estimate "+all[0].Name)
			}
			return nil
		},
		ValidArgsFunction: c.completeProfiles,
	}

	cmd.Flags().StringVar(&file, "profiles", "", "profile file (.toml, .yaml)")
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, json")

	return cmd
}

func writeProfile(w io.Writer, p profile.Profile) {
	fmt.Fprintln(w, StyleTitle.Render(p.Name))
	writeKeyValue(w, "R", p.RLabel())
	writeKeyValue(w, "Quarto", p.QuartoLabel())
	writeKeyValue(w, "Tex", p.Tex().String())
	writeKeyValue(w, "Packages", fmt.Sprint(len(p.Packages)))
	for _, pkg := range p.Packages {
		fmt.Fprintln(w, "  "+StyleDim.Render(pkg))
	}
}

func renderProfilesTable(profiles []profile.Profile) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{
			p.Name, p.RLabel(), p.QuartoLabel(), p.Tex().String(),
			joinLimited(p.Packages, 3),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Setup Script", "R", "Quarto", "Tex", "Packages").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case col == 0:
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorGray)
		}).
		Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// profileSummary is the one-line description used by the picker.
func profileSummary(p profile.Profile) string {
	parts := []string{fmt.Sprintf("%d packages", len(p.Packages))}
	if p.R {
		parts = append(parts, "R")
	}
	if p.Quarto != "" {
		parts = append(parts, "Quarto "+p.Quarto)
	}
	if t := p.Tex(); t != profile.TexNone {
		parts = append(parts, "TeX")
	}
	return strings.Join(parts, ", ")
}
