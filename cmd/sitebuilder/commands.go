package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/cache"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/preview"
)

// cacheFileName is the build-state database kept in the site root.
const cacheFileName = ".sitebuilder-cache.db"

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func runBuild(ctx context.Context) error {
	root := CLI.Build.Dir
	outDir := resolvePath(root, CLI.Build.Output)

	if CLI.Build.Clean {
		if err := output.Clean(outDir); err != nil {
			return err
		}
	}

	opts := build.Options{
		Root:       root,
		OutputDir:  outDir,
		ConfigPath: resolvePath(root, CLI.Config),
		Drafts:     CLI.Build.Drafts,
	}
	if CLI.Build.Incremental {
		store, err := cache.Open(filepath.Join(root, cacheFileName))
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Store = store
	}

	report, err := build.New(opts).Run(ctx)
	if err != nil {
		return err
	}
	if report.Scope == cache.ScopeNone {
		fmt.Println("No changes detected, skipping rebuild.")
		return nil
	}
	fmt.Printf("Built %d pages, %d posts to %s in %s\n",
		report.Pages, report.Posts, outDir, report.Duration.Round(time.Millisecond))
	return nil
}

func runPreview(ctx context.Context) error {
	root := CLI.Preview.Dir
	outDir := resolvePath(root, CLI.Preview.Output)

	store, err := cache.Open(filepath.Join(root, cacheFileName))
	if err != nil {
		return err
	}
	defer store.Close()

	recorder := metrics.NewPrometheusRecorder(nil)
	builder := build.New(build.Options{
		Root:       root,
		OutputDir:  outDir,
		ConfigPath: resolvePath(root, CLI.Config),
		Drafts:     CLI.Preview.Drafts,
		Store:      store,
		Recorder:   recorder,
	})
	watcher, err := build.NewWatcher(builder)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("localhost:%d", CLI.Preview.Port)
	server := preview.New(outDir, addr, recorder.Handler())
	slog.Info("preview available", "url", "http://"+addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error { return server.ListenAndServe(gctx) })
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runClean() error {
	return output.Clean(resolvePath(CLI.Clean.Dir, CLI.Clean.Output))
}

// runInit scaffolds a minimal site: config, home page, about page, one
// dated post, and the standard input directories.
func runInit() error {
	dir := CLI.Init.Dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return builderrors.IOError("resolve init directory", dir, err)
	}

	configPath := filepath.Join(abs, config.DefaultFileName)
	if _, err := os.Stat(configPath); err == nil && !CLI.Init.Force {
		return builderrors.ValidationError(configPath, "config",
			config.DefaultFileName+" already exists (use --force to overwrite)")
	}

	for _, sub := range []string{
		filepath.Join("content", "posts"),
		"data",
		filepath.Join("static", "images"),
		filepath.Join("templates", "shortcodes"),
	} {
		if err := os.MkdirAll(filepath.Join(abs, sub), 0o755); err != nil {
			return builderrors.IOError("create site directory", sub, err)
		}
	}

	cfg := map[string]any{
		"title":          filepath.Base(abs),
		"base_url":       "http://localhost:3000",
		"description":    "A new site",
		"language":       "en",
		"posts_per_page": 10,
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return builderrors.InternalError("encode scaffold config", err)
	}
	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		return builderrors.IOError("write config", configPath, err)
	}

	scaffold := map[string]string{
		filepath.Join("content", "_index.md"): `---
title: Home
---

Welcome to your new site!
`,
		filepath.Join("content", "about.md"): `---
title: About
weight: 10
---

This is the about page.
`,
		filepath.Join("content", "posts", "2024-01-01-hello-world.md"): `---
title: Hello World
tags: [welcome, first-post]
---

This is your first post. Start writing!

You can use **markdown** formatting, including:

- Lists
- Code blocks
- And more!
`,
	}
	for rel, body := range scaffold {
		p := filepath.Join(abs, rel)
		if _, err := os.Stat(p); err == nil {
			continue
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			return builderrors.IOError("write scaffold file", p, err)
		}
	}

	fmt.Printf("Initialized site in %s\n", abs)
	fmt.Println("  sitebuilder preview")
	return nil
}
