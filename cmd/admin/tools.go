package main

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"finitefield.org/admin-console/internal/admin/config"
	"finitefield.org/admin-console/internal/admin/palette"
	"finitefield.org/admin-console/internal/admin/routes"
)

func newPaletteCommand() *cobra.Command {
	var css bool
	cmd := &cobra.Command{
		Use:   "palette <hex|preset>",
		Short: "Print the eleven-stop palette for a colour or preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePalette(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if css {
				fmt.Fprintf(out, ":root {\n")
				for _, line := range strings.Split(strings.TrimSpace(palette.CSSVariables(p, "primary")), "\n") {
					fmt.Fprintf(out, "  %s\n", line)
				}
				fmt.Fprintf(out, "}\n")
				return nil
			}
			for _, shade := range p {
				fmt.Fprintf(out, "%d\t%s\n", shade.Stop, shade.Hex)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&css, "css", false, "print CSS custom properties instead of a table")
	return cmd
}

// resolvePalette accepts a preset name or a hex colour.
func resolvePalette(arg string) (palette.Palette, error) {
	if preset, ok := palette.FindPreset(arg); ok {
		return preset.Palette, nil
	}
	return palette.Generate(arg)
}

func newRoutesCommand(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Validate and print the console route tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" && configPath != nil && *configPath != "" {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				file = cfg.Routes.File
			}
			tree, err := loadRoutes(afero.NewOsFs(), file)
			if err != nil {
				return err
			}
			if err := tree.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return tree.Walk(func(chain []routes.Record) bool {
				rec := chain[len(chain)-1]
				var flags []string
				if rec.Node.Hidden {
					flags = append(flags, "hidden")
				}
				if rec.Node.Capability != "" {
					flags = append(flags, "cap="+rec.Node.Capability)
				}
				if rec.Node.HasComponent() {
					flags = append(flags, "component="+rec.Node.Component)
				}
				if rec.Node.Redirect != "" {
					flags = append(flags, "redirect="+rec.Node.Redirect)
				}
				fmt.Fprintf(out, "%s%s\t%s\t%s\n", strings.Repeat("  ", len(chain)-1), rec.Path, rec.Node.Title, strings.Join(flags, " "))
				return false
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "route tree YAML (default: built-in tree)")
	return cmd
}
