// Package cache tracks build inputs between runs so watch-mode rebuilds can
// tell targeted content edits apart from changes that invalidate the whole
// site.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// FileKind says which part of the project a tracked file belongs to.
type FileKind string

const (
	KindContent  FileKind = "content"
	KindData     FileKind = "data"
	KindStatic   FileKind = "static"
	KindTemplate FileKind = "template"
	KindConfig   FileKind = "config"
)

// trackedDirs maps project-relative directories to the kind of their files.
var trackedDirs = []struct {
	dir  string
	kind FileKind
}{
	{"content", KindContent},
	{"data", KindData},
	{"static", KindStatic},
	{"templates", KindTemplate},
}

// Entry is one tracked file: its content hash and kind.
type Entry struct {
	Hash string
	Kind FileKind
}

// Snapshot maps project-relative paths (forward slashes) to entries.
type Snapshot map[string]Entry

// HashFile returns the hex sha256 of a file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", builderrors.IOError("open file", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", builderrors.IOError("hash file", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// TakeSnapshot hashes every file under the tracked project directories plus
// the config file. Missing directories are fine; a missing config file means
// the caller failed earlier.
func TakeSnapshot(root, configPath string) (Snapshot, error) {
	snap := Snapshot{}

	for _, tracked := range trackedDirs {
		base := filepath.Join(root, tracked.dir)
		if _, err := os.Stat(base); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(base, func(p string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			hash, err := HashFile(p)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return builderrors.IOError("resolve tracked path", p, err)
			}
			snap[filepath.ToSlash(rel)] = Entry{Hash: hash, Kind: tracked.kind}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if configPath != "" {
		hash, err := HashFile(configPath)
		if err != nil {
			return nil, err
		}
		rel := configPath
		if r, err := filepath.Rel(root, configPath); err == nil {
			rel = filepath.ToSlash(r)
		}
		snap[rel] = Entry{Hash: hash, Kind: KindConfig}
	}

	return snap, nil
}
