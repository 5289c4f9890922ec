package site

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// dataMerger deep-merges data files into one tree. Files and directories
// sharing a logical key merge structurally; two sources writing different
// values to the same leaf is a ConflictError naming both files.
type dataMerger struct {
	tree   map[string]any
	origin map[string]string // dotted leaf path -> source file
}

func newDataMerger() *dataMerger {
	return &dataMerger{tree: map[string]any{}, origin: map[string]string{}}
}

// addFile parses one data file and merges it under the key path derived
// from its location: data/nav/links.yaml merges under nav.links.
func (d *dataMerger) addFile(f content.File) error {
	value, err := parseDataBody(f)
	if err != nil {
		return err
	}

	rel := strings.TrimPrefix(f.SourcePath, "data/")
	ext := path.Ext(rel)
	keys := strings.Split(strings.TrimSuffix(rel, ext), "/")

	return d.merge(d.tree, keys, value, f.SourcePath)
}

func (d *dataMerger) merge(node map[string]any, keys []string, value any, source string) error {
	key := keys[0]
	dotted := strings.Join(keys, ".")

	if len(keys) > 1 {
		child, ok := node[key]
		if !ok {
			child = map[string]any{}
			node[key] = child
		}
		childMap, ok := child.(map[string]any)
		if !ok {
			return builderrors.DataConflictError(dotted, source, d.origin[key])
		}
		return d.merge(childMap, keys[1:], value, source)
	}

	existing, ok := node[key]
	if !ok {
		node[key] = value
		d.origin[dotted] = source
		return nil
	}

	existingMap, existingIsMap := existing.(map[string]any)
	valueMap, valueIsMap := value.(map[string]any)
	if existingIsMap && valueIsMap {
		return d.mergeMaps(existingMap, valueMap, dotted, source)
	}

	return builderrors.DataConflictError(dotted, source, d.origin[dotted])
}

func (d *dataMerger) mergeMaps(dst, src map[string]any, prefix, source string) error {
	for key, value := range src {
		dotted := prefix + "." + key
		existing, ok := dst[key]
		if !ok {
			dst[key] = value
			d.origin[dotted] = source
			continue
		}

		existingMap, existingIsMap := existing.(map[string]any)
		valueMap, valueIsMap := value.(map[string]any)
		if existingIsMap && valueIsMap {
			if err := d.mergeMaps(existingMap, valueMap, dotted, source); err != nil {
				return err
			}
			continue
		}

		return builderrors.DataConflictError(dotted, source, d.origin[dotted])
	}
	return nil
}

// parseDataBody decodes by extension into generic Go values. YAML maps are
// normalized to string keys so all three formats merge uniformly.
func parseDataBody(f content.File) (any, error) {
	raw := []byte(f.Body)
	switch path.Ext(f.SourcePath) {
	case ".toml":
		value := map[string]any{}
		if err := toml.Unmarshal(raw, &value); err != nil {
			return nil, builderrors.ParseError(f.SourcePath, "invalid TOML data: "+err.Error())
		}
		return normalizeValue(value), nil
	case ".yaml", ".yml":
		var value any
		if err := yaml.Unmarshal(raw, &value); err != nil {
			return nil, builderrors.ParseError(f.SourcePath, "invalid YAML data: "+err.Error())
		}
		return normalizeValue(value), nil
	case ".json":
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, builderrors.ParseError(f.SourcePath, "invalid JSON data: "+err.Error())
		}
		return normalizeValue(value), nil
	}
	return nil, builderrors.ParseError(f.SourcePath, "unsupported data format")
}

// normalizeValue rewrites nested maps to map[string]any.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if s, ok := key.(string); ok {
				out[s] = normalizeValue(item)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return value
}
