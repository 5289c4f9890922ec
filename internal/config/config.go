// Package config loads and validates the site configuration consumed by the
// build pipeline. The file format is YAML; values may reference environment
// variables, and a .env/.env.local file is loaded first if present.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// DefaultFileName is the config file looked up in the site root.
const DefaultFileName = "config.yaml"

// Config is the resolved site configuration.
type Config struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Language    string `yaml:"language,omitempty"`

	// PostsPerPage of 0 means a single page holding all items.
	PostsPerPage int  `yaml:"posts_per_page"`
	Minify       bool `yaml:"minify"`
	Fingerprint  bool `yaml:"fingerprint"`

	Images ImageConfig `yaml:"images"`

	// Taxonomies maps a taxonomy name (also its listing route segment) to the
	// frontmatter key holding its terms. Defaults to tags and categories.
	Taxonomies map[string]string `yaml:"taxonomies,omitempty"`

	Theme string `yaml:"theme,omitempty"` // optional template override directory

	Extra map[string]any `yaml:"extra,omitempty"`
}

// ImageConfig controls responsive image variant generation.
type ImageConfig struct {
	Widths  []int    `yaml:"widths,omitempty"`
	Quality int      `yaml:"quality,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
}

// Load reads the config file, applies environment overrides and defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, builderrors.ConfigNotFound(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, builderrors.IOError("read config", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, builderrors.ConfigInvalid(path, err.Error())
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SITEBUILDER_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("SITEBUILDER_TITLE"); v != "" {
		c.Title = v
	}
}

func (c *Config) applyDefaults() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Taxonomies == nil {
		c.Taxonomies = map[string]string{
			"tags":       "tags",
			"categories": "categories",
		}
	}
	if len(c.Images.Widths) == 0 {
		c.Images.Widths = []int{320, 640, 1024, 1920}
	}
	if c.Images.Quality == 0 {
		c.Images.Quality = 80
	}
	if len(c.Images.Formats) == 0 {
		c.Images.Formats = []string{"jpg", "png"}
	}
}

func (c *Config) validate(path string) error {
	if c.Title == "" {
		return builderrors.ConfigInvalid(path, "title is required")
	}
	if c.BaseURL == "" {
		return builderrors.ConfigInvalid(path, "base_url is required")
	}
	if c.PostsPerPage < 0 {
		return builderrors.ConfigInvalid(path, "posts_per_page must be >= 0")
	}
	if c.Images.Quality < 1 || c.Images.Quality > 100 {
		return builderrors.ConfigInvalid(path, "images.quality must be in 1..100")
	}
	for _, w := range c.Images.Widths {
		if w <= 0 {
			return builderrors.ConfigInvalid(path, "images.widths entries must be positive")
		}
	}
	return nil
}
