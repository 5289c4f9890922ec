package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// fingerprintExtensions lists asset types that get content-hashed names.
var fingerprintExtensions = map[string]bool{
	".css": true, ".js": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true,
}

// refAttributes are the attribute contexts whose values are rewritten to
// fingerprinted names. Text content resembling a path is never touched.
var refAttributes = map[string]bool{
	"src": true, "href": true, "poster": true, "srcset": true,
}

// HashName returns the fingerprinted filename for content: stem.hash8.ext.
func HashName(name string, content []byte) string {
	sum := sha256.Sum256(content)
	short := hex.EncodeToString(sum[:])[:8]
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s.%s%s", stem, short, ext)
}

// isHashedName reports whether the filename stem already ends in an
// 8-hex-digit fingerprint segment.
func isHashedName(name string) bool {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	dot := strings.LastIndexByte(stem, '.')
	if dot < 0 || len(stem)-dot-1 != 8 {
		return false
	}
	for _, c := range stem[dot+1:] {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// FingerprintAssets renames every qualifying asset under outputDir to its
// content-hashed name and returns the old-path to new-path mapping, both
// relative to outputDir with forward slashes.
func FingerprintAssets(outputDir string) (map[string]string, error) {
	mapping := map[string]string{}

	err := filepath.WalkDir(outputDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if !fingerprintExtensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		// leftovers from a previous incremental build already carry a hash
		if isHashedName(filepath.Base(p)) {
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			return builderrors.IOError("read asset", p, err)
		}

		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return builderrors.IOError("resolve asset path", p, err)
		}
		rel = filepath.ToSlash(rel)

		hashed := HashName(filepath.Base(p), content)
		target := filepath.Join(filepath.Dir(p), hashed)
		if err := os.Rename(p, target); err != nil {
			return builderrors.IOError("rename asset", p, err)
		}

		relHashed, _ := filepath.Rel(outputDir, target)
		mapping[rel] = filepath.ToSlash(relHashed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

// RewriteReferences rewrites asset references to their fingerprinted names
// in every HTML and XML file under outputDir.
func RewriteReferences(outputDir, baseURL string, mapping map[string]string) error {
	if len(mapping) == 0 {
		return nil
	}
	return filepath.WalkDir(outputDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".html" && ext != ".xml" {
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			return builderrors.IOError("read document", p, err)
		}
		updated := RewriteHTML(string(content), baseURL, mapping)
		if updated == string(content) {
			return nil
		}
		if err := os.WriteFile(p, []byte(updated), 0o644); err != nil {
			return builderrors.IOError("write document", p, err)
		}
		return nil
	})
}

// RewriteHTML replaces asset paths inside recognized attribute contexts.
// Tags are copied byte-for-byte apart from the replaced values, so quoting
// survives untouched; script and style bodies are skipped entirely.
func RewriteHTML(source, baseURL string, mapping map[string]string) string {
	var out strings.Builder
	out.Grow(len(source))
	pos := 0
	n := len(source)

	for pos < n {
		open := strings.IndexByte(source[pos:], '<')
		if open < 0 {
			out.WriteString(source[pos:])
			break
		}
		open += pos
		out.WriteString(source[pos:open])

		if strings.HasPrefix(source[open:], "<!--") {
			end := strings.Index(source[open:], "-->")
			if end < 0 {
				out.WriteString(source[open:])
				break
			}
			out.WriteString(source[open : open+end+3])
			pos = open + end + 3
			continue
		}

		close := findTagEnd(source, open)
		if close < 0 {
			out.WriteString(source[open:])
			break
		}
		tag := source[open : close+1]
		out.WriteString(rewriteTag(tag, baseURL, mapping))
		pos = close + 1

		name, closing := tagName(tag)
		if (name == "script" || name == "style") && !closing && !strings.HasSuffix(tag, "/>") {
			end := strings.Index(strings.ToLower(source[pos:]), "</"+name)
			if end < 0 {
				out.WriteString(source[pos:])
				break
			}
			out.WriteString(source[pos : pos+end])
			pos += end
		}
	}

	return out.String()
}

// rewriteTag rewrites reference attribute values in a single tag.
func rewriteTag(tag, baseURL string, mapping map[string]string) string {
	var out strings.Builder
	out.Grow(len(tag))
	i := 0
	n := len(tag)

	// copy "<name" or "</name"
	for i < n && tag[i] != ' ' && tag[i] != '\t' && tag[i] != '\n' && tag[i] != '\r' && tag[i] != '>' {
		out.WriteByte(tag[i])
		i++
	}

	for i < n {
		// whitespace before an attribute
		start := i
		for i < n && (tag[i] == ' ' || tag[i] == '\t' || tag[i] == '\n' || tag[i] == '\r') {
			i++
		}
		out.WriteString(tag[start:i])
		if i >= n || tag[i] == '>' || tag[i] == '/' {
			out.WriteString(tag[i:])
			break
		}

		// attribute name
		nameStart := i
		for i < n && tag[i] != '=' && tag[i] != ' ' && tag[i] != '\t' && tag[i] != '\n' && tag[i] != '\r' && tag[i] != '>' {
			i++
		}
		attrName := strings.ToLower(tag[nameStart:i])
		out.WriteString(tag[nameStart:i])

		if i >= n || tag[i] != '=' {
			continue // boolean attribute
		}
		out.WriteByte('=')
		i++

		if i < n && (tag[i] == '"' || tag[i] == '\'') {
			quote := tag[i]
			out.WriteByte(quote)
			i++
			valStart := i
			for i < n && tag[i] != quote {
				i++
			}
			value := tag[valStart:i]
			if refAttributes[attrName] {
				value = rewriteAttrValue(attrName, value, baseURL, mapping)
			}
			out.WriteString(value)
			if i < n {
				out.WriteByte(quote)
				i++
			}
		} else {
			// unquoted value
			valStart := i
			for i < n && tag[i] != ' ' && tag[i] != '\t' && tag[i] != '\n' && tag[i] != '\r' && tag[i] != '>' {
				i++
			}
			value := tag[valStart:i]
			if refAttributes[attrName] {
				value = rewriteAttrValue(attrName, value, baseURL, mapping)
			}
			out.WriteString(value)
		}
	}

	return out.String()
}

func rewriteAttrValue(attrName, value, baseURL string, mapping map[string]string) string {
	if attrName == "srcset" {
		entries := strings.Split(value, ",")
		for idx, entry := range entries {
			fields := strings.Fields(entry)
			if len(fields) == 0 {
				continue
			}
			fields[0] = rewritePath(fields[0], baseURL, mapping)
			entries[idx] = strings.Join(fields, " ")
		}
		return strings.Join(entries, ", ")
	}
	return rewritePath(value, baseURL, mapping)
}

// rewritePath maps one URL spelling to its fingerprinted form. Absolute
// paths, base-URL-prefixed URLs, and relative paths are recognized;
// everything else passes through.
func rewritePath(value, baseURL string, mapping map[string]string) string {
	prefix, rest := "", value
	switch {
	case baseURL != "" && strings.HasPrefix(value, baseURL+"/"):
		prefix = baseURL + "/"
		rest = value[len(prefix):]
	case strings.HasPrefix(value, "/"):
		prefix = "/"
		rest = value[1:]
	}
	if hashed, ok := mapping[rest]; ok {
		return prefix + hashed
	}
	return value
}
