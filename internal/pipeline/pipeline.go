// Package pipeline wires the extraction stages into one run: discover
// sources, clean and detect boundaries per source, parse spans into
// questions, apply the confidence policy, report duplicates, optionally
// annotate, and render. A failed source never aborts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/examsift/examsift/internal/boundary"
	"github.com/examsift/examsift/internal/expert"
	"github.com/examsift/examsift/internal/model"
	"github.com/examsift/examsift/internal/parse"
	"github.com/examsift/examsift/internal/render"
	"github.com/examsift/examsift/internal/score"
	"github.com/examsift/examsift/internal/segment"
	"github.com/examsift/examsift/internal/source"
	"github.com/examsift/examsift/internal/textclean"
	"github.com/examsift/examsift/internal/validate"
)

// fallbackConfidence is assigned to questions recovered by the
// whole-document parse, which never goes through the scorer.
const fallbackConfidence = 0.85

// Pipeline orchestrates the complete extraction process
type Pipeline struct {
	cleaner   *textclean.Cleaner
	detector  *boundary.Detector
	segmenter *segment.Segmenter
	parser    *parse.Parser
	scorer    *score.Scorer
	renderer  *render.Renderer
	validator *validate.Validator
	annotator *expert.Annotator // Optional expert annotator (nil if disabled)
	config    *model.Config
	log       *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *slog.Logger) *Pipeline {
	cleaner := textclean.NewCleaner()

	// Create the annotator if a provider is configured
	var annotator *expert.Annotator
	if cfg.LLM.Provider != "" {
		provider, err := expert.NewProvider(expert.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else if provider != nil {
			annotator = expert.NewAnnotator(provider, cfg, logger)
		}
	}

	return &Pipeline{
		cleaner:   cleaner,
		detector:  boundary.NewDetector(cfg.PDFProcessing, cleaner),
		segmenter: segment.NewSegmenter(cfg.QuestionParsing.UsernameAllowlist),
		parser:    parse.NewParser(cfg.QuestionParsing, cleaner),
		scorer:    score.NewScorer(cfg.QuestionParsing),
		renderer:  render.NewRenderer(cfg.OutputFormat),
		validator: validate.NewValidator(0),
		annotator: annotator,
		config:    cfg,
		log:       logger,
	}
}

// RunResult carries the run's accepted questions and its summary report.
type RunResult struct {
	Questions []*model.Question
	Report    *model.RunReport
}

// Run executes a full extraction over inputDir. Sources are processed in
// sorted order; a source that fails to read is counted and skipped, and the
// result always carries whatever subset succeeded.
func (p *Pipeline) Run(ctx context.Context, inputDir string) (*RunResult, error) {
	report := &model.RunReport{StartedAt: time.Now().UTC()}

	// 1. Discover inputs
	files, err := source.List(inputDir, p.config.PDFProcessing.InputGlob)
	if err != nil {
		return nil, fmt.Errorf("discover inputs: %w", err)
	}

	// 2. Extract every source
	var accepted []*model.Question
	for _, file := range files {
		accepted = append(accepted, p.processSource(file, report)...)
	}

	// 3. Surface community answers that name absent options
	p.auditAnswerMembership(accepted, report)

	// 4. Report probable duplicates, never remove them
	report.DuplicatePairs = p.scorer.FindDuplicates(accepted, p.config.QualityControl.DuplicateThreshold)

	// 5. Annotate if an expert provider is configured
	if p.annotator != nil && len(accepted) > 0 {
		stats := p.annotator.AnnotateAll(ctx, accepted)
		report.Annotated = stats.Annotated
		report.AnnotationFailures = stats.Failed
		report.CacheHits = stats.CacheHits
	}

	report.QuestionsAccepted = len(accepted)
	report.Confidence = model.BuildConfidenceStats(accepted)
	report.FinishedAt = time.Now().UTC()

	return &RunResult{Questions: accepted, Report: report}, nil
}

// processSource extracts the questions of one file. Read failures mark the
// source failed; a document without boundary markers goes through the
// whole-document fallback instead.
func (p *Pipeline) processSource(path string, report *model.RunReport) []*model.Question {
	name := filepath.Base(path)

	pages, err := source.Read(path)
	if err != nil {
		p.log.Warn("source skipped", "file", name, "error", err)
		report.SourcesFailed = append(report.SourcesFailed, name)
		return nil
	}
	for i := range pages {
		pages[i].Text = p.cleaner.CleanPage(pages[i].Text)
	}

	spans, err := p.detector.DetectBoundaries(pages)
	if err != nil {
		if !errors.Is(err, boundary.ErrNoBoundaries) {
			p.log.Warn("source skipped", "file", name, "error", err)
			report.SourcesFailed = append(report.SourcesFailed, name)
			return nil
		}

		// Case-study documents print no question markers. Parse the whole
		// document as a single best-effort span.
		p.log.Warn("no question boundaries, trying whole-document parse", "file", name)
		report.FallbackDocuments++
		report.SourcesProcessed = append(report.SourcesProcessed, name)
		if q := p.parseWholeDocument(pages, report); q != nil {
			return []*model.Question{q}
		}
		return nil
	}

	report.SpansDetected += len(spans)
	report.SourcesProcessed = append(report.SourcesProcessed, name)

	var questions []*model.Question
	for _, span := range spans {
		if q := p.parseSpan(span, report); q != nil {
			questions = append(questions, q)
		}
	}

	p.log.Info("source processed",
		"file", name,
		"pages", len(pages),
		"spans", len(spans),
		"questions", len(questions),
	)
	return questions
}

// parseSpan runs one span through segmentation, parsing, answer attachment
// and the confidence policy. Nil means the span was dropped and counted.
func (p *Pipeline) parseSpan(span model.QuestionSpan, report *model.RunReport) *model.Question {
	cleanLines, comments := p.segmenter.Segment(span)

	q, err := p.parser.Parse(cleanLines, span.HeaderLine, span.StartPage, span.SourceFile)
	if err != nil {
		report.ParseFailures++
		p.log.Debug("span rejected", "file", span.SourceFile, "page", span.StartPage, "error", err)
		return nil
	}

	p.parser.AttachCommunityAnswers(q, comments)
	report.CommentCount += len(comments)

	q.Confidence = p.scorer.Calculate(q)
	if q.Confidence < p.config.QualityControl.MinConfidence {
		report.BelowThreshold++
		p.log.Debug("question below threshold", "id", q.ID, "confidence", q.Confidence)
		return nil
	}
	return q
}

// parseWholeDocument treats the entire document as one span. The validity
// gate still applies; what passes gets the fixed fallback confidence.
func (p *Pipeline) parseWholeDocument(pages []model.PageText, report *model.RunReport) *model.Question {
	if len(pages) == 0 {
		return nil
	}

	var lines []string
	for _, page := range pages {
		for _, raw := range strings.Split(page.Text, "\n") {
			if line := strings.TrimSpace(raw); line != "" {
				lines = append(lines, line)
			}
		}
	}

	span := model.QuestionSpan{
		StartPage:  pages[0].PageNumber,
		SourceFile: pages[0].SourceFile,
		RawLines:   lines,
	}

	cleanLines, comments := p.segmenter.Segment(span)
	q, err := p.parser.Parse(cleanLines, "", span.StartPage, span.SourceFile)
	if err != nil {
		report.ParseFailures++
		p.log.Debug("whole-document parse rejected", "file", span.SourceFile, "error", err)
		return nil
	}

	p.parser.AttachCommunityAnswers(q, comments)
	report.CommentCount += len(comments)
	q.Confidence = fallbackConfidence
	return q
}

// auditAnswerMembership counts community answers naming options the
// question does not have. Lenient by default: letters stay untouched unless
// enforcement is configured, and then they are cleared, never remapped.
func (p *Pipeline) auditAnswerMembership(questions []*model.Question, report *model.RunReport) {
	enforce := p.config.QualityControl.EnforceAnswerInOptions
	for _, q := range questions {
		for _, field := range []*string{&q.CommunityAnswer, &q.HighlyVotedAnswer, &q.MostRecentAnswer} {
			letter := *field
			if letter == "" || !model.IsOptionLetter(letter) {
				continue
			}
			if _, ok := q.Options[letter]; !ok {
				report.AnswersNotInOptions++
				if enforce {
					*field = ""
				}
			}
		}
	}
}

// RenderOutputs writes the configured formats and prints the run summary to
// stdout. Verbose per-file progress goes to stderr.
func (p *Pipeline) RenderOutputs(result *RunResult, verbose bool) error {
	paths, err := p.renderer.RenderAll(result.Questions)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if verbose {
		for _, path := range paths {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
		}
	}

	render.WriteSummary(os.Stdout, result.Report, result.Questions)
	return nil
}

// ValidateQuestions runs the post-parse quality audit.
func (p *Pipeline) ValidateQuestions(ctx context.Context, questions []*model.Question) *model.ValidationReport {
	return p.validator.Validate(ctx, questions)
}
