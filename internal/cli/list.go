package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/langcheck/internal/fixture"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Manifest string
	Pipeline string
}

// CatalogListing is the JSON payload of the list command.
type CatalogListing struct {
	Manifest string         `json:"manifest"`
	Pipeline string         `json:"pipeline"`
	Cases    []fixture.Case `json:"cases"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions, env envConfig) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the ordered fixture catalog",
		Long: `Print the fixtures a run would evaluate, in evaluation order, with the
expected diagnostic for each erroring fixture.

Examples:
  langcheck list
  langcheck list --pipeline lex
  langcheck list --manifest fixtures.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", env.Manifest, "fixture manifest (.yaml, .yml or .cue); built-in catalog if empty")
	cmd.Flags().StringVarP(&opts.Pipeline, "pipeline", "p", string(fixture.StageAll), "pipeline stage to list (all|lex|syn|cfa|output)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	}

	m, cases, err := loadCatalog(opts.Manifest, opts.Pipeline)
	if err != nil {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeManifest, err.Error(), nil)
		}
		return err
	}

	if opts.Format == "json" {
		return formatter.Success(CatalogListing{
			Manifest: m.Name,
			Pipeline: opts.Pipeline,
			Cases:    cases,
		})
	}

	w := cmd.OutOrStdout()
	for _, c := range cases {
		if c.IsErroring() {
			fmt.Fprintf(w, "%-5s %-6s %s  %s at %s\n", c.Kind, c.Stage, c.Path, c.ExpectedID, c.ExpectedLocation)
			continue
		}
		fmt.Fprintf(w, "%-5s %-6s %s\n", c.Kind, c.Stage, c.Path)
	}
	fmt.Fprintf(w, "%d fixture(s)\n", len(cases))
	return nil
}
