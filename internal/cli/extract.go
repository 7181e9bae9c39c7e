package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/examsift/examsift/internal/model"
	"github.com/examsift/examsift/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	inputGlob     string
	outputDir     string
	formats       []string
	llmProvider   string
	llmModel      string
	minConfidence float64
	noCache       bool
	workers       int
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <input-dir>",
	Short: "Extract questions from exam dumps into the configured formats",
	Long: `Extract walks the input directory for matching dumps and:
- Cleans OCR corruption and dump-site noise
- Detects question boundaries, with a whole-document fallback
- Separates community discussion from question content
- Parses numbered questions with lettered answer options
- Scores every record and drops the low-confidence ones
- Optionally asks an LLM provider for its answer per question
- Writes the requested CSV, Markdown, JSON, and web exports

Example:
  examsift extract ./dumps
  examsift extract ./dumps --glob "*.txt" --output ./out --formats csv,json
  examsift extract ./dumps --provider openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// Input and output flags
	extractCmd.Flags().StringVar(&inputGlob, "glob", "", "filename pattern under the input dir (default from config)")
	extractCmd.Flags().StringVar(&outputDir, "output", "", "output directory (default from config)")
	extractCmd.Flags().StringSliceVar(&formats, "formats", nil, "output formats: csv, markdown, json, web (default from config)")
	extractCmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "confidence threshold, 0 keeps the configured value")

	// LLM flags
	extractCmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider for answer annotation (openai, anthropic, ollama)")
	extractCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name")
	extractCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the annotation cache (force fresh provider calls)")
	extractCmd.Flags().IntVar(&workers, "workers", 0, "annotation worker count, 0 keeps the configured value")
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputDir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyExtractFlags(cfg)
	if err := configureLLM(cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Examsift Extraction\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input dir:    %s\n", inputDir)
	fmt.Fprintf(os.Stderr, "  Glob:         %s\n", cfg.PDFProcessing.InputGlob)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.OutputFormat.OutputDir)
	fmt.Fprintf(os.Stderr, "  Formats:      %s\n", strings.Join(cfg.OutputFormat.Formats, ", "))
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(cfg, newLogger())

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Extracting questions...\n")
	}

	result, err := p.Run(cmd.Context(), inputDir)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Processed %d sources\n", len(result.Report.SourcesProcessed))
		fmt.Fprintf(os.Stderr, "✓ Extracted %d questions\n", len(result.Questions))
		if result.Report.Annotated > 0 {
			fmt.Fprintf(os.Stderr, "✓ Annotated %d questions using %s/%s\n", result.Report.Annotated, cfg.LLM.Provider, cfg.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderOutputs(result, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// applyExtractFlags overlays set flags onto the loaded configuration.
func applyExtractFlags(cfg *model.Config) {
	if inputGlob != "" {
		cfg.PDFProcessing.InputGlob = inputGlob
	}
	if outputDir != "" {
		cfg.OutputFormat.OutputDir = outputDir
	}
	if len(formats) > 0 {
		cfg.OutputFormat.Formats = formats
	}
	if minConfidence > 0 {
		cfg.QualityControl.MinConfidence = minConfidence
	}
	if workers > 0 {
		cfg.RateLimiting.Workers = workers
	}
	if noCache {
		cfg.LLM.CacheEnabled = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}

// configureLLM resolves the provider API key from the environment. Keys are
// never accepted as flags and never read from config files.
func configureLLM(cfg *model.Config) error {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
