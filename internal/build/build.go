// Package build is the canonical build pipeline. All execution paths (CLI,
// preview server, tests) route through Builder.Run: load, expand, render,
// assemble, write, post-process.
package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/cache"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/feeds"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/search"
	"git.home.luguber.info/inful/sitebuilder/internal/shortcode"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/theme"
)

// Options are the inputs for one build run.
type Options struct {
	// Root is the project directory holding config, content/, data/,
	// static/, and templates/.
	Root string

	// OutputDir receives the generated site. Defaults to Root/public.
	OutputDir string

	// ConfigPath overrides the default Root/config.yaml.
	ConfigPath string

	// Drafts includes draft content.
	Drafts bool

	// Store persists build state between runs. Nil disables change
	// classification and the image variant cache.
	Store *cache.Store

	// Recorder receives build metrics. Nil means no metrics.
	Recorder metrics.Recorder
}

func (o Options) outputDir() string {
	if o.OutputDir != "" {
		return o.OutputDir
	}
	return filepath.Join(o.Root, "public")
}

func (o Options) configPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	return filepath.Join(o.Root, config.DefaultFileName)
}

// Report describes one completed (or skipped) build.
type Report struct {
	BuildID      string
	Scope        cache.Scope
	Duration     time.Duration
	PagesWritten int
	Posts        int
	Pages        int

	// Stages holds per-stage durations in execution order.
	Stages []StageTiming

	// Skipped lists per-file errors that excluded single files without
	// failing the build.
	Skipped []error
}

// StageTiming is one stage's wall-clock duration.
type StageTiming struct {
	Name     string
	Duration time.Duration
}

// timeStage appends a stage timing and forwards it to the recorder.
func (b *Builder) timeStage(report *Report, name string, start time.Time) {
	d := time.Since(start)
	report.Stages = append(report.Stages, StageTiming{Name: name, Duration: d})
	b.recorder.ObserveStageDuration(name, d)
}

// Builder executes builds. Safe for sequential reuse; watch mode runs one
// build at a time.
type Builder struct {
	opts     Options
	recorder metrics.Recorder
}

// New returns a Builder for the given options.
func New(opts Options) *Builder {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Builder{opts: opts, recorder: recorder}
}

// Run executes a full build. Per-file parse and validation errors skip the
// offending file and are reported on the Report; conflict, guard, and write
// errors fail the build.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{BuildID: uuid.NewString(), Scope: cache.ScopeFull}
	log := slog.With(slog.String("build_id", report.BuildID))

	cfg, err := config.Load(b.opts.configPath())
	if err != nil {
		return report, err
	}

	var snapshot cache.Snapshot
	if b.opts.Store != nil {
		scope, snap, err := b.classifyChanges()
		if err != nil {
			return report, err
		}
		report.Scope = scope
		snapshot = snap
		if scope == cache.ScopeNone {
			log.Debug("no input changes, skipping build")
			report.Duration = time.Since(start)
			return report, nil
		}
	}

	stageStart := time.Now()
	model, skipped, err := b.assemble(ctx, cfg)
	b.timeStage(report, "render", stageStart)
	if err != nil {
		b.recorder.IncStageResult("render", metrics.ResultFatal)
		b.recorder.IncBuildOutcome("failed")
		return report, err
	}
	b.recorder.IncStageResult("render", metrics.ResultSuccess)
	report.Skipped = skipped
	report.Posts = len(model.Posts)
	report.Pages = len(model.Pages)

	stageStart = time.Now()
	written, err := b.write(ctx, model)
	b.timeStage(report, "write", stageStart)
	if err != nil {
		b.recorder.IncStageResult("write", metrics.ResultFatal)
		b.recorder.IncBuildOutcome("failed")
		return report, err
	}
	b.recorder.IncStageResult("write", metrics.ResultSuccess)
	report.PagesWritten = written

	if b.opts.Store != nil {
		if err := b.opts.Store.SaveSnapshot(snapshot); err != nil {
			log.Warn("saving build snapshot failed", "error", err)
		}
	}

	report.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.IncBuildOutcome("success")
	log.Info("build finished",
		slog.Duration("duration", report.Duration),
		slog.Int("pages_written", report.PagesWritten),
		slog.Int("posts", report.Posts),
		slog.Int("skipped_files", len(report.Skipped)))
	return report, nil
}

// classifyChanges diffs the current input snapshot against the stored one.
func (b *Builder) classifyChanges() (cache.Scope, cache.Snapshot, error) {
	previous, err := b.opts.Store.LoadSnapshot()
	if err != nil {
		return cache.ScopeFull, nil, err
	}
	current, err := cache.TakeSnapshot(b.opts.Root, b.opts.configPath())
	if err != nil {
		return cache.ScopeFull, nil, err
	}
	changes := cache.Diff(previous, current)
	scope := cache.Classify(changes)
	if scope != cache.ScopeNone {
		slog.Debug("input changes classified",
			slog.Int("changes", len(changes)),
			slog.String("scope", scope.String()))
	}
	return scope, current, nil
}

// assemble loads, expands, and renders all content, then builds the site
// model.
func (b *Builder) assemble(ctx context.Context, cfg *config.Config) (*site.Model, []error, error) {
	loader := content.NewLoader(b.opts.Root, b.opts.Drafts)
	files, fileErrs := loader.Load()
	skipped := append([]error(nil), fileErrs...)

	renderer := render.NewRenderer()
	shortcodeDirs := []string{filepath.Join(b.opts.Root, "templates", "shortcodes")}
	if themeDir := b.themeDir(cfg); themeDir != "" {
		shortcodeDirs = append(shortcodeDirs, filepath.Join(themeDir, "shortcodes"))
	}
	expander, err := shortcode.NewExpander(shortcodeDirs, renderer.Fragment)
	if err != nil {
		return nil, nil, err
	}
	expander.SetRefRegistry(site.BuildRefRegistry(files))

	rendered := make([]site.Rendered, len(files))
	ok := make([]bool, len(files))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	limit := runtime.NumCPU()
	g.SetLimit(limit)
	b.recorder.SetRenderConcurrency(limit)

	for i, f := range files {
		if f.Class == content.ClassDataFile {
			rendered[i] = site.Rendered{File: f}
			ok[i] = true
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			expanded, err := expander.Expand(f.Body, f.SourcePath)
			if err != nil {
				if isSkippable(err) {
					mu.Lock()
					skipped = append(skipped, err)
					mu.Unlock()
					return nil
				}
				return err
			}
			doc, err := renderer.Render(expanded, f.SourcePath)
			if err != nil {
				if isSkippable(err) {
					mu.Lock()
					skipped = append(skipped, err)
					mu.Unlock()
					return nil
				}
				return err
			}
			rendered[i] = site.Rendered{File: f, Doc: doc}
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	kept := rendered[:0]
	for i := range rendered {
		if ok[i] {
			kept = append(kept, rendered[i])
		}
	}
	b.recorder.IncFilesRendered(len(kept))

	for _, err := range skipped {
		b.recorder.IncStageResult("render", metrics.ResultSkipped)
		slog.Warn("skipping file", "error", err)
	}

	model, err := site.Assemble(cfg, kept)
	if err != nil {
		return nil, nil, err
	}
	return model, skipped, nil
}

// themeDir resolves the configured theme override directory, relative to
// the site root unless absolute. Empty when no theme is configured.
func (b *Builder) themeDir(cfg *config.Config) string {
	if cfg.Theme == "" {
		return ""
	}
	if filepath.IsAbs(cfg.Theme) {
		return cfg.Theme
	}
	return filepath.Join(b.opts.Root, cfg.Theme)
}

// isSkippable reports whether an error excludes a single file rather than
// failing the build.
func isSkippable(err error) bool {
	be, ok := builderrors.AsBuildError(err)
	if !ok {
		return false
	}
	switch be.Category {
	case builderrors.CategoryParse, builderrors.CategoryValidation, builderrors.CategoryShortcode:
		return true
	}
	return false
}

// write renders theme pages and generated artifacts into the output tree
// and runs asset post-processing. Nothing is deleted: outputs are
// overwritten in place, so a crashed build never leaves the previous site
// missing.
func (b *Builder) write(ctx context.Context, model *site.Model) (int, error) {
	// Project templates override the configured theme, which overrides the
	// builtins.
	engine, err := theme.New(b.themeDir(model.Config), filepath.Join(b.opts.Root, "templates"))
	if err != nil {
		return 0, err
	}

	outDir := b.opts.outputDir()
	writer := output.NewWriter(outDir)

	written, err := renderPages(engine, model, writer)
	if err != nil {
		return written, err
	}

	if engine.UsesBuiltin() {
		if err := writer.WriteFile("style.css", []byte(theme.DefaultStylesheet)); err != nil {
			return written, err
		}
	}
	if err := writer.CopyTree(filepath.Join(b.opts.Root, "static")); err != nil {
		return written, err
	}

	rss, err := feeds.RSS(model)
	if err != nil {
		return written, err
	}
	if err := writer.WriteFile("rss.xml", rss); err != nil {
		return written, err
	}
	atom, err := feeds.Atom(model)
	if err != nil {
		return written, err
	}
	if err := writer.WriteFile("atom.xml", atom); err != nil {
		return written, err
	}
	if err := writer.WriteFile("sitemap.xml", feeds.Sitemap(model)); err != nil {
		return written, err
	}
	index, err := search.Index(model)
	if err != nil {
		return written, err
	}
	if err := writer.WriteFile("search-index.json", index); err != nil {
		return written, err
	}
	if err := output.WriteRedirects(writer, model); err != nil {
		return written, err
	}

	if err := ctx.Err(); err != nil {
		return written, err
	}

	var variantCache assets.VariantCache
	if b.opts.Store != nil {
		variantCache = b.opts.Store
	}
	err = assets.Process(outDir, assets.Options{
		Minify:      model.Config.Minify,
		Fingerprint: model.Config.Fingerprint,
		Images:      model.Config.Images,
		BaseURL:     model.Config.BaseURL,
		Cache:       variantCache,
		Recorder:    b.recorder,
	})
	return written, err
}
