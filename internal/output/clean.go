// Package output writes the final site tree: rendered pages, generated
// artifacts, redirect stubs, and copied static files. Destructive
// operations are guarded so a misconfigured output path can never wipe a
// project or home directory.
package output

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Clean removes the output directory after validating that the target is
// safe to delete. A missing directory is not an error. No deletion happens
// when validation fails.
func Clean(outputDir string) error {
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		return nil
	}
	if err := validateCleanTarget(outputDir); err != nil {
		return err
	}
	if err := os.RemoveAll(outputDir); err != nil {
		return builderrors.IOError("remove output directory", outputDir, err)
	}
	return nil
}

// validateCleanTarget canonicalizes the path and refuses the filesystem
// root, a direct child of the root, the user's home directory, the current
// working directory, and any directory that looks like a project root.
func validateCleanTarget(outputDir string) error {
	canonical, err := canonicalize(outputDir)
	if err != nil {
		return builderrors.IOError("resolve output directory", outputDir, err)
	}

	if canonical == string(filepath.Separator) {
		return builderrors.GuardViolation(outputDir, "refusing to delete the filesystem root")
	}
	if filepath.Dir(canonical) == string(filepath.Separator) {
		return builderrors.GuardViolation(outputDir, "refusing to delete a directory directly under the filesystem root")
	}
	if home, err := os.UserHomeDir(); err == nil {
		if h, err := canonicalize(home); err == nil && canonical == h {
			return builderrors.GuardViolation(outputDir, "refusing to delete the home directory")
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		if c, err := canonicalize(cwd); err == nil && canonical == c {
			return builderrors.GuardViolation(outputDir, "refusing to delete the current working directory")
		}
	}
	if _, err := os.Stat(filepath.Join(canonical, config.DefaultFileName)); err == nil {
		return builderrors.GuardViolation(outputDir, "refusing to delete a directory containing a site config")
	}
	return nil
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}
