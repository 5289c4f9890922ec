package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

var CLI struct {
	Config  string `short:"c" help:"Site configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Dir         string `short:"d" help:"Site root directory" default:"."`
		Output      string `short:"o" help:"Output directory for the generated site" default:"public"`
		Drafts      bool   `help:"Include draft content"`
		Clean       bool   `help:"Remove the output directory before building"`
		Incremental bool   `short:"i" help:"Persist build state and skip unchanged rebuilds"`
	} `cmd:"" help:"Build the site"`

	Preview struct {
		Dir    string `short:"d" help:"Site root directory" default:"."`
		Output string `short:"o" help:"Output directory for the generated site" default:"public"`
		Drafts bool   `help:"Include draft content"`
		Port   int    `short:"p" help:"HTTP port to listen on" default:"3000"`
	} `cmd:"" help:"Build the site, serve it locally, and rebuild on changes"`

	Init struct {
		Dir   string `arg:"" optional:"" help:"Directory to scaffold (default: current directory)" default:"."`
		Force bool   `help:"Overwrite an existing configuration file"`
	} `cmd:"" help:"Scaffold a new site"`

	Clean struct {
		Dir    string `short:"d" help:"Site root directory" default:"."`
		Output string `short:"o" help:"Output directory to remove" default:"public"`
	} `cmd:"" help:"Remove the output directory"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	adapter := builderrors.NewCLIErrorAdapter(CLI.Verbose, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild(ctx)
	case "preview":
		err = runPreview(ctx)
	case "init", "init <dir>":
		err = runInit()
	case "clean":
		err = runClean()
	}
	adapter.HandleError(err)
}
