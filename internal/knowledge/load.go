package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Load reads a knowledge base from a YAML or JSON file. Tables absent from
// the file are taken from Default.
func Load(path string) (*Base, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	return Parse(blob, filepath.Ext(path))
}

// Parse decodes a knowledge base document; ext selects the format.
func Parse(blob []byte, ext string) (*Base, error) {
	var file Base
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(blob, &file); err != nil {
			return nil, fmt.Errorf("decode yaml knowledge base: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(blob, &file); err != nil {
			return nil, fmt.Errorf("decode json knowledge base: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported knowledge base format %q", ext)
	}

	b := mergeDefaults(file)
	if strings.TrimSpace(b.Version) == "" {
		sum := sha256.Sum256(blob)
		b.Version = hex.EncodeToString(sum[:])[:12]
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func mergeDefaults(file Base) *Base {
	def := Default()
	out := &file
	if out.References == nil {
		out.References = def.References
	}
	if out.Benchmarks == nil {
		out.Benchmarks = def.Benchmarks
	}
	if out.PolicyKeywords == nil {
		out.PolicyKeywords = def.PolicyKeywords
	}
	// Coverage types are lowercased before matching, so keywords must be too.
	for pt, kws := range out.PolicyKeywords {
		for i, kw := range kws {
			kws[i] = strings.ToLower(strings.TrimSpace(kw))
		}
		out.PolicyKeywords[pt] = kws
	}
	if out.Templates == nil {
		out.Templates = def.Templates
	}
	if out.FallbackTemplates == nil {
		out.FallbackTemplates = def.FallbackTemplates
	}
	if out.Precedents == nil {
		out.Precedents = def.Precedents
	}
	if out.Clauses == nil {
		out.Clauses = def.Clauses
	}
	return out
}
