// CLAUDE:SUMMARY Main Service orchestrator: capture -> analyze -> generate -> package -> compare, one output dir per run.
// Package maquette clones the visual appearance of a website: a headless
// browser captures the page, a vision model describes it, a code-generation
// call emits a runnable front-end scaffold, and an optional SSIM score
// compares the clone against the original.
package maquette

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/maquette/idgen"
	"github.com/hazyhaar/maquette/maquette/internal/analyzer"
	"github.com/hazyhaar/maquette/maquette/internal/capture"
	"github.com/hazyhaar/maquette/maquette/internal/generator"
	"github.com/hazyhaar/maquette/maquette/internal/llm"
	"github.com/hazyhaar/maquette/maquette/internal/similarity"
	"github.com/hazyhaar/maquette/maquette/internal/store"
)

// Capturer abstracts the browser manager for testability.
type Capturer interface {
	Capture(ctx context.Context, pageURL string) (*capture.Artifact, error)
	Close() error
}

// Service is the main maquette orchestrator.
type Service struct {
	capturer  Capturer
	cli       llm.Client
	analyzer  *analyzer.Analyzer
	generator *generator.Generator
	store     *store.Store
	logger    *slog.Logger
	config    *Config
	newID     func() string
}

// New creates a maquette Service. ctx is used for client construction only.
// Without WithLLM, a Gemini client is created from cfg.GeminiAPIKey; an
// empty key is a configuration error.
func New(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Service{
		logger: logger,
		config: cfg,
		newID:  idgen.Timestamped(idgen.NanoID(8)),
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.cli == nil {
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is required", ErrConfig)
		}
		cli, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("%w: gemini client: %v", ErrConfig, err)
		}
		svc.cli = cli
	}

	if svc.capturer == nil {
		svc.capturer = capture.NewManager(capture.Config{
			RemoteURL:       cfg.ChromeURL,
			NavigateTimeout: cfg.NavigateTimeout,
			SettleDelay:     cfg.SettleDelay,
			ViewportWidth:   cfg.ViewportWidth,
			ViewportHeight:  cfg.ViewportHeight,
			Logger:          logger,
		})
	}

	if svc.store == nil {
		st, err := store.Open(cfg.RunsDB)
		if err != nil {
			return nil, fmt.Errorf("%w: runs db: %v", ErrConfig, err)
		}
		svc.store = st
	}

	svc.analyzer = analyzer.New(svc.cli, logger)
	svc.generator = generator.New(svc.cli, logger)
	return svc, nil
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithLLM injects the model client. Tests use llm.NewFake.
func WithLLM(cli llm.Client) ServiceOption {
	return func(svc *Service) { svc.cli = cli }
}

// WithCapturer replaces the browser manager.
func WithCapturer(c Capturer) ServiceOption {
	return func(svc *Service) { svc.capturer = c }
}

// WithStore replaces the run store.
func WithStore(st *store.Store) ServiceOption {
	return func(svc *Service) { svc.store = st }
}

// WithNewID overrides run ID generation.
func WithNewID(fn func() string) ServiceOption {
	return func(svc *Service) { svc.newID = fn }
}

// Start warms the browser so the first clone does not pay launch latency.
// Non-fatal: the manager launches lazily on first capture anyway.
func (svc *Service) Start(ctx context.Context) {
	type starter interface{ Start(context.Context) error }
	if st, ok := svc.capturer.(starter); ok {
		if err := st.Start(ctx); err != nil {
			svc.logger.Warn("maquette: browser warmup failed", "error", err)
		}
	}
	svc.logger.Info("maquette: started")
}

// Close shuts down the browser, drains the event recorder and closes the
// run store.
func (svc *Service) Close() error {
	var errs []error
	if err := svc.capturer.Close(); err != nil {
		errs = append(errs, err)
	}
	if svc.cli != nil {
		if err := svc.cli.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := svc.store.Close(); err != nil {
		errs = append(errs, err)
	}
	svc.logger.Info("maquette: closed")
	return errors.Join(errs...)
}

// Frameworks lists the supported target frameworks.
func (svc *Service) Frameworks() []string {
	return []string{
		generator.FrameworkVanilla,
		generator.FrameworkReact,
		generator.FrameworkNext,
		generator.FrameworkVue,
		generator.FrameworkAngular,
	}
}

// Clone runs the full pipeline for one URL. Stages are strictly sequential,
// fail-fast, and on failure the run directory does not survive.
func (svc *Service) Clone(ctx context.Context, req *CloneRequest) (*CloneResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	runID := svc.newID()
	outDir := filepath.Join(svc.config.OutputDir, runID)
	start := time.Now()

	run := &store.Run{ID: runID, URL: req.URL, ProjectTag: svc.config.ProjectTag}
	if err := svc.store.InsertRun(ctx, run); err != nil {
		// Run-log trouble never blocks the pipeline.
		svc.logger.Warn("maquette: insert run", "run_id", runID, "error", err)
	}

	// Capture.
	capStart := time.Now()
	art, err := svc.capturer.Capture(ctx, req.URL)
	if err != nil {
		return nil, svc.fail(ctx, run, outDir, start, fmt.Errorf("%w: %v", ErrCapture, err))
	}
	svc.recordStage(runID, "capture", req.URL, capStart)

	// Analyze.
	anStart := time.Now()
	an, err := svc.analyzer.Analyze(ctx, art.Screenshot, art.HTML)
	if err != nil {
		return nil, svc.fail(ctx, run, outDir, start, fmt.Errorf("%w: %v", ErrAnalysis, err))
	}
	framework := generator.ResolveFramework(req.Framework, an, svc.config.DefaultFramework)
	svc.recordStage(runID, "analyze", framework, anStart)

	// Generate.
	genStart := time.Now()
	proj, err := svc.generator.Generate(ctx, an, framework)
	if err != nil {
		return nil, svc.fail(ctx, run, outDir, start, fmt.Errorf("%w: %v", ErrGeneration, err))
	}
	svc.recordStage(runID, "generate", framework, genStart)

	// Package.
	if err := generator.Write(outDir, proj); err != nil {
		return nil, svc.fail(ctx, run, outDir, start, fmt.Errorf("%w: write project: %v", ErrGeneration, err))
	}

	// Compare. Best effort: a missing or failed score is omitted, never an
	// error surfaced to the caller.
	var score *float64
	if !svc.config.DisableCompare {
		cmpStart := time.Now()
		score = svc.compare(ctx, art, outDir, proj)
		svc.recordStage(runID, "compare", "", cmpStart)
	}

	run.Framework = framework
	run.ComponentsCount = len(an.Components)
	run.LayoutType = an.Layout.Type
	run.Similarity = score
	run.OutputPath = outDir
	run.Status = store.StatusSuccess
	run.DurationMs = time.Since(start).Milliseconds()
	if err := svc.store.FinishRun(ctx, run); err != nil {
		svc.logger.Warn("maquette: finish run", "run_id", runID, "error", err)
	}

	svc.logger.Info("clone complete",
		"run_id", runID,
		"url", req.URL,
		"framework", framework,
		"components_count", len(an.Components),
		"layout_type", an.Layout.Type,
		"duration_ms", run.DurationMs)

	return &CloneResult{
		RunID:           runID,
		OutputPath:      outDir,
		Framework:       framework,
		ComponentsCount: len(an.Components),
		LayoutType:      an.Layout.Type,
		SimilarityScore: score,
		GenerationMs:    run.DurationMs,
		FallbackRoles:   proj.FallbackRoles,
	}, nil
}

// Run returns one run from the log, or nil when absent.
func (svc *Service) Run(ctx context.Context, id string) (*store.Run, error) {
	return svc.store.GetRun(ctx, id)
}

// Runs returns the most recent runs, newest first.
func (svc *Service) Runs(ctx context.Context, limit int) ([]*store.Run, error) {
	return svc.store.ListRuns(ctx, limit)
}

// RunEvents returns the stage events of a run, oldest first.
func (svc *Service) RunEvents(ctx context.Context, runID string) ([]*store.StageEvent, error) {
	return svc.store.ListEvents(ctx, runID)
}

// --- Internal ---

func validateRequest(req *CloneRequest) error {
	if req == nil || strings.TrimSpace(req.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidRequest, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidRequest)
	}
	return nil
}

// fail records the failed run and guarantees no partial output survives.
func (svc *Service) fail(ctx context.Context, run *store.Run, outDir string, start time.Time, cloneErr error) error {
	if _, statErr := os.Stat(outDir); statErr == nil {
		if rmErr := os.RemoveAll(outDir); rmErr != nil {
			// Can't remove: mark the directory so nothing mistakes it for a
			// finished clone.
			marker := filepath.Join(outDir, "FAILED")
			if wErr := os.WriteFile(marker, []byte(cloneErr.Error()+"\n"), 0o644); wErr != nil {
				svc.logger.Error("maquette: mark failed run dir", "dir", outDir, "error", wErr)
			}
		}
	}

	run.Status = store.StatusFailed
	run.Error = cloneErr.Error()
	run.DurationMs = time.Since(start).Milliseconds()
	if err := svc.store.FinishRun(ctx, run); err != nil {
		svc.logger.Warn("maquette: finish run", "run_id", run.ID, "error", err)
	}
	svc.store.RecordStage(&store.StageEvent{
		RunID:      run.ID,
		Stage:      "failed",
		Detail:     cloneErr.Error(),
		DurationMs: run.DurationMs,
	})

	svc.logger.Error("clone failed", "run_id", run.ID, "url", run.URL, "error", cloneErr)
	return cloneErr
}

func (svc *Service) recordStage(runID, stage, detail string, start time.Time) {
	svc.store.RecordStage(&store.StageEvent{
		RunID:      runID,
		Stage:      stage,
		Detail:     detail,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

// compare renders the generated entry page in the browser and scores it
// against the original screenshot. Any trouble means "no score".
func (svc *Service) compare(ctx context.Context, art *capture.Artifact, outDir string, proj *generator.Project) *float64 {
	entry := entryFile(proj)
	if entry == "" {
		return nil
	}
	abs, err := filepath.Abs(filepath.Join(outDir, entry))
	if err != nil {
		return nil
	}

	cloneArt, err := svc.capturer.Capture(ctx, "file://"+abs)
	if err != nil {
		svc.logger.Warn("maquette: clone render for comparison failed", "error", err)
		return nil
	}

	origPNG, err := similarity.Downscale(art.Screenshot, svc.config.SimilarityWidth)
	if err != nil {
		return nil
	}
	clonePNG, err := similarity.Downscale(cloneArt.Screenshot, svc.config.SimilarityWidth)
	if err != nil {
		return nil
	}
	origPNG, clonePNG, err = similarity.CropToMatch(origPNG, clonePNG)
	if err != nil {
		return nil
	}

	score, err := similarity.Score(origPNG, clonePNG)
	if err != nil {
		if !errors.Is(err, similarity.ErrDimensionMismatch) {
			svc.logger.Warn("maquette: similarity score failed", "error", err)
		}
		return nil
	}
	return &score
}

// entryFile picks the page the comparison renders: the project's index.html
// if present, else any HTML file.
func entryFile(proj *generator.Project) string {
	var anyHTML string
	for p := range proj.Files {
		lower := strings.ToLower(p)
		if strings.HasSuffix(lower, "index.html") {
			return p
		}
		if strings.HasSuffix(lower, ".html") && anyHTML == "" {
			anyHTML = p
		}
	}
	return anyHTML
}
