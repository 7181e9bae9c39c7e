package cli

import (
	"fmt"
	"os"

	"github.com/examsift/examsift/internal/pipeline"
	"github.com/examsift/examsift/internal/render"
	"github.com/spf13/cobra"
)

var validateGlob string

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <input-dir>",
	Short: "Audit extraction quality without writing outputs",
	Long: `Validate runs the extraction pipeline and audits every parsed
question for leaked community discussion, OCR corruption that survived
cleaning, truncated descriptions, and missing or mismatched answer
options.

No output files are written; the report goes to stdout.

Example:
  examsift validate ./dumps
  examsift validate ./dumps --glob "*.txt"`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateGlob, "glob", "", "filename pattern under the input dir (default from config)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputDir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if validateGlob != "" {
		cfg.PDFProcessing.InputGlob = validateGlob
	}
	// an audit run never annotates
	cfg.LLM.Provider = ""

	p := pipeline.NewPipeline(cfg, newLogger())

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Extracting questions...\n")
	}

	result, err := p.Run(cmd.Context(), inputDir)
	if err != nil {
		return fmt.Errorf("validate failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d questions from %d sources\n", len(result.Questions), len(result.Report.SourcesProcessed))
		fmt.Fprintln(os.Stderr)
	}

	report := p.ValidateQuestions(cmd.Context(), result.Questions)
	render.WriteValidationReport(os.Stdout, report)

	return nil
}
