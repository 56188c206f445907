package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/assessment-intake/internal/config"
	domain "github.com/bryanwahyu/assessment-intake/internal/domain/assessments"
)

var (
	formInput   bool
	validate    bool
	catalogPath string
	minAnswers  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "assessctl",
		Short: "Offline tools for assessment submissions",
		Long: `assessctl runs the intake sanitizer outside the server.

Use it to check what a form post will look like once stored, or to
inspect the assessment catalog a deployment will load.`,
		SilenceUsage: true,
	}

	sanitizeCmd := &cobra.Command{
		Use:   "sanitize [file]",
		Short: "Sanitize a submission and print the stored record",
		Long: `Reads a flat JSON object (or a urlencoded body with --form) from the
file, or stdin when no file is given, and prints the sanitized record.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSanitize,
	}
	sanitizeCmd.Flags().BoolVar(&formInput, "form", false, "input is application/x-www-form-urlencoded")
	sanitizeCmd.Flags().BoolVar(&validate, "validate", false, "also validate against the catalog")
	sanitizeCmd.Flags().StringVar(&catalogPath, "catalog", "catalog.yaml", "catalog file used by --validate")
	sanitizeCmd.Flags().IntVar(&minAnswers, "min-answers", domain.DefaultMinAnswers, "minimum answers required by --validate")

	catalogCmd := &cobra.Command{
		Use:   "catalog [file]",
		Short: "List the assessment types in a catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := catalogPath
			if len(args) == 1 {
				path = args[0]
			}
			c, err := config.LoadCatalog(path)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.Definitions())
		},
	}
	catalogCmd.Flags().StringVar(&catalogPath, "catalog", "catalog.yaml", "catalog file")

	rootCmd.AddCommand(sanitizeCmd, catalogCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSanitize(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	sub, err := readSubmission(in, formInput)
	if err != nil {
		return err
	}
	rec := domain.Sanitize(sub)

	out := map[string]any{"data": rec}
	if validate {
		c, err := config.LoadCatalog(catalogPath)
		if err != nil {
			return err
		}
		problems := []string{}
		var verr *domain.ValidationError
		if err := domain.Validate(rec, c, domain.Rules{MinAnswers: minAnswers}); errors.As(err, &verr) {
			problems = verr.Problems
		}
		out["valid"] = len(problems) == 0
		out["problems"] = problems
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func readSubmission(r io.Reader, form bool) (domain.Submission, error) {
	if !form {
		return domain.DecodeJSON(r)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return domain.Submission{}, err
	}
	return domain.ParseForm(strings.TrimSpace(string(b)))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
