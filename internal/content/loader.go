// Package content walks the content tree, classifies each source file, and
// splits the metadata header from the markdown body. Files it emits are
// immutable inputs to the render and assembly stages.
package content

import (
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
)

// Classification identifies how the pipeline treats a source file.
type Classification int

const (
	ClassPage Classification = iota
	ClassPost
	ClassCollectionItem
	ClassDirectoryIndex
	ClassDataFile
)

func (c Classification) String() string {
	switch c {
	case ClassPage:
		return "page"
	case ClassPost:
		return "post"
	case ClassCollectionItem:
		return "collection-item"
	case ClassDirectoryIndex:
		return "directory-index"
	case ClassDataFile:
		return "data-file"
	}
	return "unknown"
}

const (
	indexMarker          = "_index.md"
	collectionDeclMarker = "_collection.toml"
	postsDirName         = "posts"
)

// File is one classified content source. Created by the Loader and never
// mutated afterwards.
type File struct {
	SourcePath string // site-root relative, slash separated
	Class      Classification
	Collection string // set for ClassCollectionItem
	Slug       string
	Date       time.Time // set for ClassPost
	Meta       Metadata
	Body       string // raw markdown body, or raw bytes for data files
}

// Loader walks a site root's content/ and data/ trees.
type Loader struct {
	root          string
	includeDrafts bool
}

// NewLoader creates a loader rooted at the site directory.
func NewLoader(root string, includeDrafts bool) *Loader {
	return &Loader{root: root, includeDrafts: includeDrafts}
}

// Load walks the tree and returns all loadable files plus the per-file
// errors encountered. A parse or validation error skips only the file it
// names; the walk continues.
func (l *Loader) Load() ([]File, []error) {
	var files []File
	var errs []error

	collectionDirs := l.findCollectionDirs()

	contentDir := filepath.Join(l.root, "content")
	if _, err := os.Stat(contentDir); err == nil {
		walkErr := filepath.WalkDir(contentDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(p, ".md") {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, "_") && name != indexMarker {
				return nil
			}

			file, ferr := l.loadContentFile(p, contentDir, collectionDirs)
			if ferr != nil {
				errs = append(errs, ferr)
				return nil
			}
			if file.Meta.Draft && !l.includeDrafts {
				slog.Debug("skipping draft", "path", file.SourcePath)
				return nil
			}
			files = append(files, file)
			return nil
		})
		if walkErr != nil {
			errs = append(errs, builderrors.IOError("walk content tree", contentDir, walkErr))
		}
	}

	dataDir := filepath.Join(l.root, "data")
	if _, err := os.Stat(dataDir); err == nil {
		walkErr := filepath.WalkDir(dataDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.TrimPrefix(filepath.Ext(p), ".")
			if !dataExtensions.Has(ext) {
				return nil
			}
			raw, rerr := os.ReadFile(p)
			if rerr != nil {
				errs = append(errs, builderrors.IOError("read data file", p, rerr))
				return nil
			}
			rel, _ := filepath.Rel(l.root, p)
			files = append(files, File{
				SourcePath: filepath.ToSlash(rel),
				Class:      ClassDataFile,
				Body:       string(raw),
			})
			return nil
		})
		if walkErr != nil {
			errs = append(errs, builderrors.IOError("walk data tree", dataDir, walkErr))
		}
	}

	return files, errs
}

var dataExtensions = sets.New("toml", "yaml", "yml", "json")

// findCollectionDirs returns the names of top-level content directories
// declared as collections by a _collection.toml marker.
func (l *Loader) findCollectionDirs() sets.Set[string] {
	dirs := sets.New[string]()
	entries, err := os.ReadDir(filepath.Join(l.root, "content"))
	if err != nil {
		return dirs
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == postsDirName {
			continue
		}
		marker := filepath.Join(l.root, "content", entry.Name(), collectionDeclMarker)
		if _, err := os.Stat(marker); err == nil {
			dirs.Add(entry.Name())
		}
	}
	return dirs
}

func (l *Loader) loadContentFile(p, contentDir string, collectionDirs sets.Set[string]) (File, error) {
	rel, err := filepath.Rel(contentDir, p)
	if err != nil {
		return File{}, builderrors.IOError("resolve path", p, err)
	}
	rel = filepath.ToSlash(rel)
	sourcePath := path.Join("content", rel)

	raw, err := os.ReadFile(p)
	if err != nil {
		return File{}, builderrors.IOError("read content file", p, err)
	}

	format, header, body, err := SplitFrontmatter(string(raw), sourcePath)
	if err != nil {
		return File{}, err
	}
	fields, err := decodeHeader(format, header, sourcePath)
	if err != nil {
		return File{}, err
	}
	meta, err := decodeMetadata(fields, sourcePath)
	if err != nil {
		return File{}, err
	}

	file := File{SourcePath: sourcePath, Meta: meta, Body: body}

	name := path.Base(rel)
	topDir, _, nested := strings.Cut(rel, "/")

	switch {
	case nested && topDir == postsDirName:
		file.Class = ClassPost
		if err := classifyPost(&file, name, sourcePath); err != nil {
			return File{}, err
		}
	case nested && collectionDirs.Has(topDir) && name != indexMarker:
		file.Class = ClassCollectionItem
		file.Collection = topDir
		file.Slug = strings.TrimSuffix(name, ".md")
	case name == indexMarker:
		file.Class = ClassDirectoryIndex
		dir := path.Dir(rel)
		if dir == "." {
			file.Slug = "index"
		} else {
			file.Slug = dir
		}
	default:
		file.Class = ClassPage
		file.Slug = pageSlug(rel)
	}

	if file.Meta.Title == "" {
		file.Meta.Title = path.Base(file.Slug)
	}
	return file, nil
}

// filenameDatePattern matches a YYYY-MM-DD- prefix shape. Whether the digits
// form a real calendar date is checked separately so 2024-13-40 fails
// validation instead of silently becoming a slug.
var filenameDatePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

func classifyPost(file *File, name, sourcePath string) error {
	stem := strings.TrimSuffix(name, ".md")
	file.Slug = stem

	if m := filenameDatePattern.FindStringSubmatch(stem); m != nil {
		derived, err := parseDate(m[1])
		if err != nil {
			return builderrors.ValidationError(sourcePath, "date", "invalid date in filename: "+m[1])
		}
		file.Slug = m[2]
		if file.Meta.Date == nil {
			file.Meta.Date = &derived
		}
	}

	if file.Meta.Date == nil {
		return builderrors.ValidationError(sourcePath, "date", "post has no date field and no date filename prefix")
	}
	file.Date = *file.Meta.Date
	return nil
}

// pageSlug derives a page slug from its content-relative path:
// about.md -> about, guides/setup.md -> guides/setup.
func pageSlug(rel string) string {
	slug := strings.TrimSuffix(rel, ".md")
	if base := path.Base(slug); base == "index" {
		dir := path.Dir(slug)
		if dir == "." {
			return "index"
		}
		return dir
	}
	return slug
}
