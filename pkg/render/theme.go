package render

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// ErrUnknownVariant is returned when a manifest has no such variant.
var ErrUnknownVariant = errors.New("render: unknown theme variant")

type manifestFile struct {
	Name      string                 `yaml:"name"`
	Version   string                 `yaml:"version"`
	Tokens    map[string]string      `yaml:"tokens"`
	Templates map[string]string      `yaml:"templates"`
	Assets    assetsFile             `yaml:"assets"`
	Variants  map[string]variantFile `yaml:"variants"`
}

type assetsFile struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type variantFile struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    assetsFile        `yaml:"assets"`
}

// LoadThemeManifest reads a YAML (or JSON) theme manifest and checks it by
// registering it with a go-theme registry.
func LoadThemeManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: read theme %s: %w", path, err)
	}
	return ParseThemeManifest(data)
}

// ParseThemeManifest decodes manifest data.
func ParseThemeManifest(data []byte) (*theme.Manifest, error) {
	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("render: decode theme: %w", err)
	}
	manifest := &theme.Manifest{
		Name:      file.Name,
		Version:   file.Version,
		Tokens:    file.Tokens,
		Templates: file.Templates,
		Assets:    theme.Assets{Prefix: file.Assets.Prefix, Files: file.Assets.Files},
	}
	if len(file.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(file.Variants))
		for name, v := range file.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Templates,
				Assets:    theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	if err := theme.NewRegistry().Register(manifest); err != nil {
		return nil, fmt.Errorf("render: invalid theme %q: %w", manifest.Name, err)
	}
	return manifest, nil
}

// ThemeConfig resolves a selection into renderer configuration: variant
// tokens override base tokens and every token becomes a "--name" CSS
// variable.
func ThemeConfig(selection *theme.Selection) (*theme.RendererConfig, error) {
	if selection == nil || selection.Manifest == nil {
		return nil, nil
	}
	manifest := selection.Manifest

	tokens := copyStrings(manifest.Tokens)
	partials := copyStrings(manifest.Templates)
	prefix := manifest.Assets.Prefix
	files := copyStrings(manifest.Assets.Files)

	if selection.Variant != "" {
		variant, ok := manifest.Variants[selection.Variant]
		if !ok {
			return nil, fmt.Errorf("%w: %q in theme %q", ErrUnknownVariant, selection.Variant, manifest.Name)
		}
		tokens = mergeStrings(tokens, variant.Tokens)
		partials = mergeStrings(partials, variant.Templates)
		files = mergeStrings(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	name := selection.Theme
	if name == "" {
		name = manifest.Name
	}
	return &theme.RendererConfig{
		Theme:    name,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}, nil
}

// CSSVarsStyle renders CSS variables as a deterministic inline style.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		if key == "" {
			return ""
		}
		file, ok := files[key]
		if !ok {
			file = key
		}
		if prefix == "" || strings.Contains(file, "://") {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
}

func copyStrings(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeStrings(base, overrides map[string]string) map[string]string {
	for key, value := range overrides {
		base[key] = value
	}
	return base
}
