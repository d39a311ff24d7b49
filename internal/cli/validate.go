package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/langcheck/internal/fixture"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid            bool     `json:"valid"`
	Name             string   `json:"name,omitempty"`
	ValidFixtures    int      `json:"valid_fixtures"`
	ErrorFixtures    int      `json:"error_fixtures"`
	DisabledFixtures int      `json:"disabled_fixtures"`
	Warnings         []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a fixture manifest without running a compiler",
		Long: `Validate a YAML or CUE fixture manifest.

Checks structure, identifier uniqueness and location syntax. Diagnostic
codes outside the known taxonomy are reported as warnings; they do not
fail validation.`,
		Args:          exactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Loading manifest %s", path)

	m, err := fixture.Load(path)
	if err != nil {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeManifest, err.Error(), map[string]string{"manifest": path})
		}
		return WrapExitError(ExitCommandError, "manifest is invalid", err)
	}

	result := ValidationResult{
		Valid:         true,
		Name:          m.Name,
		ValidFixtures: len(m.Valid),
		Warnings:      m.Lint(fixture.KnownDiagnostics),
	}
	for _, e := range m.Errors {
		if e.Disabled {
			result.DisabledFixtures++
		} else {
			result.ErrorFixtures++
		}
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	fmt.Fprintf(w, "✓ %s is valid: %d valid, %d erroring, %d disabled fixture(s)\n",
		m.Name, result.ValidFixtures, result.ErrorFixtures, result.DisabledFixtures)
	return nil
}
