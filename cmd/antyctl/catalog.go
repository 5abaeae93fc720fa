package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/emotion"
)

func newCatalogCmd() *cobra.Command {
	var (
		file   string
		asYAML bool
	)
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the emotion catalog",
		Long:  "List every emotion with its duration and flags, or dump the catalog as YAML. --file merges an override document over the built-in catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(file)
			if err != nil {
				return err
			}
			if asYAML {
				data, err := emotion.MarshalCatalogYAML(cat)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			printCatalog(cmd.OutOrStdout(), cat)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog override YAML")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print YAML instead of a table")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the config and emotion catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(file)
			if err != nil {
				return err
			}
			return validate(cmd.OutOrStdout(), cfg, cat)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog override YAML")
	return cmd
}

// loadCatalog returns the built-in catalog, with path merged over it when
// set.
func loadCatalog(path string) (*emotion.Catalog, error) {
	cat := emotion.Default()
	if path == "" {
		return cat, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	over, err := emotion.LoadCatalogYAML(data)
	if err != nil {
		return nil, err
	}
	return cat.Merge(over), nil
}

func printCatalog(w io.Writer, cat *emotion.Catalog) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d emotions", cat.Len())))
	fmt.Fprintln(w)
	for _, cfg := range cat.Configs() {
		var flags []string
		if cfg.Glow {
			flags = append(flags, "glow")
		}
		if cfg.PreserveIdle {
			flags = append(flags, "preserve-idle")
		}
		if !cfg.ShouldResetIdle() {
			flags = append(flags, "keep-idle")
		}
		if cfg.ShowLightbulb {
			flags = append(flags, "lightbulb")
		}
		if cfg.ShowTeardrop {
			flags = append(flags, "teardrop")
		}
		fmt.Fprintf(w, "  %-12s %5.2fs  %s\n", cfg.ID, cfg.TotalDuration, dimStyle.Render(fmt.Sprint(flags)))
	}
}

// validate prints one line per problem and returns an error when there is
// any.
func validate(w io.Writer, cfg *config.Config, cat *emotion.Catalog) error {
	var failed bool
	report := func(what string, err error) {
		if err == nil {
			fmt.Fprintln(w, successStyle.Render("✓ "+what))
			return
		}
		failed = true
		fmt.Fprintln(w, errorStyle.Render("✗ "+what))
		for _, e := range unwrapJoined(err) {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	report("config", cfg.Validate())
	report("catalog", emotion.ValidateCatalog(cat))
	if failed {
		return errors.New("validation failed")
	}
	return nil
}

func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
