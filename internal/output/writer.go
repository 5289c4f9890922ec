package output

import (
	"io"
	"os"
	"path/filepath"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// Writer places files under one output directory, creating parent
// directories as needed.
type Writer struct {
	dir string
}

// NewWriter returns a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output root.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteFile writes data at the output-relative path rel.
func (w *Writer) WriteFile(rel string, data []byte) error {
	target := filepath.Join(w.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return builderrors.IOError("create output directory", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return builderrors.IOError("write output file", target, err)
	}
	return nil
}

// Exists reports whether an output-relative path is already present.
func (w *Writer) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(w.dir, filepath.FromSlash(rel)))
	return err == nil
}

// CopyTree copies every file under src into the output root, preserving the
// relative layout. A missing source directory is not an error.
func (w *Writer) CopyTree(src string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(src, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return builderrors.IOError("resolve static path", p, err)
		}
		return w.copyFile(p, filepath.Join(w.dir, rel))
	})
}

func (w *Writer) copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return builderrors.IOError("create output directory", filepath.Dir(dst), err)
	}
	in, err := os.Open(src)
	if err != nil {
		return builderrors.IOError("open static file", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return builderrors.IOError("create output file", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return builderrors.IOError("copy static file", dst, err)
	}
	return out.Close()
}
