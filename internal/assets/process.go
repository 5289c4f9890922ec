package assets

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Options selects which post-processing stages run over the output tree.
type Options struct {
	Minify      bool
	Fingerprint bool
	Images      config.ImageConfig
	BaseURL     string
	Cache       VariantCache
	Recorder    metrics.Recorder
}

// Process runs the asset pipeline over a fully written output tree. Stage
// order is fixed: image variants, CSS/JS minification, fingerprinting,
// reference rewriting, HTML minification. Fingerprinting must see final
// asset bytes, and HTML minification must run after references are
// rewritten so the rewritten tags survive verbatim.
func Process(outputDir string, opts Options) error {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	start := time.Now()
	manifest, err := GenerateImageVariants(outputDir, opts.Images, opts.Cache, recorder)
	if err != nil {
		return err
	}
	if err := RewritePictures(outputDir, manifest); err != nil {
		return err
	}
	recorder.ObserveStageDuration("images", time.Since(start))
	slog.Debug("image variants generated", "sources", len(manifest), "duration", time.Since(start))

	if opts.Minify {
		start = time.Now()
		if err := minifyStyles(outputDir); err != nil {
			return err
		}
		recorder.ObserveStageDuration("minify_assets", time.Since(start))
	}

	if opts.Fingerprint {
		start = time.Now()
		mapping, err := FingerprintAssets(outputDir)
		if err != nil {
			return err
		}
		if err := RewriteReferences(outputDir, opts.BaseURL, mapping); err != nil {
			return err
		}
		recorder.ObserveStageDuration("fingerprint", time.Since(start))
		slog.Debug("assets fingerprinted", "count", len(mapping), "duration", time.Since(start))
	}

	if opts.Minify {
		start = time.Now()
		if err := minifyDocuments(outputDir); err != nil {
			return err
		}
		recorder.ObserveStageDuration("minify_html", time.Since(start))
	}
	return nil
}

// minifyStyles rewrites every CSS and JS file in place, in parallel.
func minifyStyles(outputDir string) error {
	return rewriteFiles(outputDir, map[string]func(string) string{
		".css": MinifyCSS,
		".js":  MinifyJS,
	})
}

func minifyDocuments(outputDir string) error {
	return rewriteFiles(outputDir, map[string]func(string) string{
		".html": MinifyHTML,
	})
}

func rewriteFiles(outputDir string, byExt map[string]func(string) string) error {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	err := filepath.WalkDir(outputDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		transform, ok := byExt[strings.ToLower(filepath.Ext(p))]
		if !ok {
			return nil
		}
		g.Go(func() error {
			content, err := os.ReadFile(p)
			if err != nil {
				return builderrors.IOError("read asset", p, err)
			}
			minified := transform(string(content))
			if minified == string(content) {
				return nil
			}
			if err := os.WriteFile(p, []byte(minified), 0o644); err != nil {
				return builderrors.IOError("write asset", p, err)
			}
			return nil
		})
		return nil
	})
	if err != nil {
		return builderrors.IOError("walk output tree", outputDir, err)
	}
	return g.Wait()
}
