package assets

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

// Variant is one generated responsive rendition of a source image.
type Variant struct {
	Path   string // output-relative, forward slashes
	Width  int
	Format string
}

// ImageManifest maps output-relative source image paths to their variants.
type ImageManifest map[string][]Variant

// VariantCache lets repeated builds in one dev session skip re-encoding
// unchanged images. Keys combine source bytes and processing parameters.
type VariantCache interface {
	IsFresh(path, key string) bool
	Mark(path, key string) error
}

// isVariantName reports whether the stem already carries a -<width>w suffix
// matching a configured width; such files are pre-generated and skipped.
func isVariantName(name string, widths []int) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	dash := strings.LastIndexByte(stem, '-')
	if dash < 0 {
		return false
	}
	suffix := stem[dash+1:]
	digits, ok := strings.CutSuffix(suffix, "w")
	if !ok {
		return false
	}
	width, err := strconv.Atoi(digits)
	if err != nil {
		return false
	}
	for _, w := range widths {
		if w == width {
			return true
		}
	}
	return false
}

// variantCacheKey identifies the (source bytes, parameters) pair.
func variantCacheKey(content []byte, cfg config.ImageConfig) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%s|w=%v|q=%d|f=%v", hex.EncodeToString(sum[:]), cfg.Widths, cfg.Quality, cfg.Formats)
}

// GenerateImageVariants resizes every qualifying image under outputDir to
// the configured widths and formats. Images are processed in parallel; an
// undecodable image is logged and skipped, never fatal. A nil recorder
// disables cache hit/miss accounting.
func GenerateImageVariants(outputDir string, cfg config.ImageConfig, cache VariantCache, recorder metrics.Recorder) (ImageManifest, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	var paths []string
	err := filepath.WalkDir(outputDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		if isVariantName(filepath.Base(p), cfg.Widths) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, builderrors.IOError("walk output tree", outputDir, err)
	}

	manifest := ImageManifest{}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, p := range paths {
		g.Go(func() error {
			rel, err := filepath.Rel(outputDir, p)
			if err != nil {
				return builderrors.IOError("resolve image path", p, err)
			}
			rel = filepath.ToSlash(rel)

			variants, err := generateVariantsFor(p, rel, cfg, cache, recorder)
			if err != nil {
				return err
			}
			if len(variants) > 0 {
				mu.Lock()
				manifest[rel] = variants
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func generateVariantsFor(p, rel string, cfg config.ImageConfig, cache VariantCache, recorder metrics.Recorder) ([]Variant, error) {
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, builderrors.IOError("read image", p, err)
	}

	cacheKey := variantCacheKey(content, cfg)
	cached := cache != nil && cache.IsFresh(rel, cacheKey)

	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		slog.Warn("skipping undecodable image", "path", rel, "error", err)
		return nil, nil
	}
	if cached {
		recorder.IncAssetCacheHit()
	} else {
		recorder.IncAssetCacheMiss()
	}

	bounds := src.Bounds()
	originalWidth := bounds.Dx()
	dir := filepath.Dir(p)
	stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	relDir := filepath.ToSlash(filepath.Dir(rel))

	var variants []Variant
	for _, width := range cfg.Widths {
		if width >= originalWidth {
			continue
		}
		height := bounds.Dy() * width / originalWidth

		var resized image.Image
		if !cached {
			dst := image.NewRGBA(image.Rect(0, 0, width, height))
			draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
			resized = dst
		}

		for _, format := range cfg.Formats {
			name := fmt.Sprintf("%s-%dw.%s", stem, width, format)
			variantPath := filepath.Join(dir, name)

			if !cached {
				if err := encodeImage(variantPath, resized, format, cfg.Quality); err != nil {
					slog.Warn("skipping image variant", "path", name, "error", err)
					continue
				}
			}
			relVariant := name
			if relDir != "." {
				relVariant = relDir + "/" + name
			}
			variants = append(variants, Variant{Path: relVariant, Width: width, Format: normalizeFormat(format)})
		}
	}

	if cache != nil && !cached && len(variants) > 0 {
		if err := cache.Mark(rel, cacheKey); err != nil {
			slog.Warn("image cache update failed", "path", rel, "error", err)
		}
	}
	return variants, nil
}

// encodeImage writes one variant. Unsupported formats are an error the
// caller downgrades to a warning.
func encodeImage(path string, img image.Image, format string, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(f, img)
	case "gif":
		return gif.Encode(f, img, nil)
	}
	return fmt.Errorf("unsupported image format %q", format)
}

func normalizeFormat(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

func formatMIME(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "avif":
		return "image/avif"
	}
	return "application/octet-stream"
}

// PictureElement builds the <picture> replacement for an img tag whose src
// resolves to a manifest entry. The original img tag is kept as the
// fallback.
func PictureElement(imgTag string, variants []Variant) string {
	byFormat := map[string][]Variant{}
	var order []string
	for _, v := range variants {
		if _, seen := byFormat[v.Format]; !seen {
			order = append(order, v.Format)
		}
		byFormat[v.Format] = append(byFormat[v.Format], v)
	}
	sort.Strings(order)

	var out strings.Builder
	out.WriteString("<picture>")
	for _, format := range order {
		group := byFormat[format]
		sort.Slice(group, func(i, j int) bool { return group[i].Width < group[j].Width })
		entries := make([]string, len(group))
		for i, v := range group {
			entries[i] = fmt.Sprintf("/%s %dw", v.Path, v.Width)
		}
		fmt.Fprintf(&out, `<source type="%s" srcset="%s">`, formatMIME(format), strings.Join(entries, ", "))
	}
	out.WriteString(imgTag)
	out.WriteString("</picture>")
	return out.String()
}

// RewritePictures replaces qualifying img tags in every HTML file under
// outputDir with responsive picture elements.
func RewritePictures(outputDir string, manifest ImageManifest) error {
	if len(manifest) == 0 {
		return nil
	}
	return filepath.WalkDir(outputDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.ToLower(filepath.Ext(p)) != ".html" {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return builderrors.IOError("read document", p, err)
		}
		updated := RewriteImgTags(string(content), manifest)
		if updated == string(content) {
			return nil
		}
		if err := os.WriteFile(p, []byte(updated), 0o644); err != nil {
			return builderrors.IOError("write document", p, err)
		}
		return nil
	})
}

// RewriteImgTags wraps every img tag whose src matches a manifest entry in
// a picture element. Tags already inside a picture element are left alone.
func RewriteImgTags(source string, manifest ImageManifest) string {
	var out strings.Builder
	out.Grow(len(source))
	pos := 0
	inPicture := 0

	for pos < len(source) {
		open := strings.IndexByte(source[pos:], '<')
		if open < 0 {
			out.WriteString(source[pos:])
			break
		}
		open += pos
		out.WriteString(source[pos:open])

		end := findTagEnd(source, open)
		if end < 0 {
			out.WriteString(source[open:])
			break
		}
		tag := source[open : end+1]
		pos = end + 1

		name, closing := tagName(tag)
		switch {
		case name == "picture":
			if closing {
				inPicture--
			} else {
				inPicture++
			}
			out.WriteString(tag)
		case name == "img" && inPicture == 0:
			src := attrValue(tag, "src")
			key := strings.TrimPrefix(src, "/")
			if variants, ok := manifest[key]; ok {
				out.WriteString(PictureElement(tag, variants))
			} else {
				out.WriteString(tag)
			}
		default:
			out.WriteString(tag)
		}
	}
	return out.String()
}

// attrValue extracts one attribute value from a raw tag.
func attrValue(tag, name string) string {
	lower := strings.ToLower(tag)
	for from := 0; ; {
		idx := strings.Index(lower[from:], name+"=")
		if idx < 0 {
			return ""
		}
		idx += from
		// must be preceded by whitespace to be an attribute name
		if idx == 0 || !isHTMLSpace(lower[idx-1]) {
			from = idx + len(name) + 1
			continue
		}
		valStart := idx + len(name) + 1
		if valStart >= len(tag) {
			return ""
		}
		if q := tag[valStart]; q == '"' || q == '\'' {
			end := strings.IndexByte(tag[valStart+1:], q)
			if end < 0 {
				return ""
			}
			return tag[valStart+1 : valStart+1+end]
		}
		end := valStart
		for end < len(tag) && !isHTMLSpace(tag[end]) && tag[end] != '>' {
			end++
		}
		return tag[valStart:end]
	}
}

func isHTMLSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
