package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultImagePaths is the candidate list tried in order when looking for a
// display image. Paths are data; add new shapes here.
var DefaultImagePaths = []string{
	"store.branding.logo_url",
	"store.branding.logo",
	"store.logo_url",
	"store.logo",
	"branding.logo_url",
	"branding.logo",
	"logo_url",
	"logo",
	"images",
	"image_urls",
	"image",
	"image_url",
	"thumbnail",
	"cover_image",
	"photo",
}

// keys read from object-valued entries such as {"url": "..."}.
var imageObjectKeys = []string{"url", "src", "href", "image", "image_url"}

type ImageURLNormalizer struct {
	Paths           []string
	Fallback        string
	BlockedPrefixes []string
}

func DefaultImageURLNormalizer() *ImageURLNormalizer {
	return &ImageURLNormalizer{
		Paths:           append([]string(nil), DefaultImagePaths...),
		Fallback:        DefaultFallbackImage,
		BlockedPrefixes: []string{DefaultBlobURLPrefix},
	}
}

// NewImageURLNormalizer builds a normalizer from config, filling gaps with the
// defaults.
func NewImageURLNormalizer(cfg NormalizerConfig) *ImageURLNormalizer {
	normalizer := DefaultImageURLNormalizer()
	if paths := compactStrings(cfg.Paths); len(paths) > 0 {
		normalizer.Paths = paths
	}
	if fallback := strings.TrimSpace(cfg.FallbackImage); fallback != "" {
		normalizer.Fallback = fallback
	}
	if prefixes := compactStrings(cfg.BlockedPrefixes); len(prefixes) > 0 {
		normalizer.BlockedPrefixes = prefixes
	}
	return normalizer
}

// ExtractImageURLs applies the default normalizer.
func ExtractImageURLs(response any) []string {
	return DefaultImageURLNormalizer().Extract(response)
}

// ExtractImageURLsFromJSON decodes payload first; malformed input yields the
// fallback.
func ExtractImageURLsFromJSON(payload []byte) []string {
	return DefaultImageURLNormalizer().ExtractJSON(payload)
}

func (n *ImageURLNormalizer) ExtractJSON(payload []byte) []string {
	var decoded any
	if len(payload) == 0 || json.Unmarshal(payload, &decoded) != nil {
		return n.fallback()
	}
	return n.Extract(decoded)
}

// Extract returns the usable strings of the first candidate path that has
// any, or a single-element fallback. It never fails and never returns an
// empty slice.
func (n *ImageURLNormalizer) Extract(response any) []string {
	root := normalizeJSONValue(response)
	if root == nil {
		return n.fallback()
	}
	for _, path := range n.paths() {
		value, ok := lookupPathValue(root, path)
		if !ok {
			continue
		}
		if urls := n.collect(value); len(urls) > 0 {
			return urls
		}
	}
	return n.fallback()
}

func (n *ImageURLNormalizer) collect(value any) []string {
	out := []string{}
	var visit func(value any, depth int)
	visit = func(value any, depth int) {
		switch typed := value.(type) {
		case string:
			if candidate, ok := n.usable(typed); ok {
				out = append(out, candidate)
			}
		case []string:
			for _, item := range typed {
				visit(item, depth)
			}
		case []any:
			if depth > 0 {
				return
			}
			for _, item := range typed {
				visit(item, depth+1)
			}
		case map[string]any:
			for _, key := range imageObjectKeys {
				if nested, ok := typed[key]; ok {
					if text, isString := nested.(string); isString {
						if candidate, ok := n.usable(text); ok {
							out = append(out, candidate)
							return
						}
					}
				}
			}
		}
	}
	visit(value, 0)
	return out
}

func (n *ImageURLNormalizer) usable(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	lowered := strings.ToLower(trimmed)
	for _, prefix := range n.blockedPrefixes() {
		if strings.HasPrefix(lowered, strings.ToLower(prefix)) {
			return "", false
		}
	}
	return trimmed, true
}

func (n *ImageURLNormalizer) paths() []string {
	if n == nil || len(n.Paths) == 0 {
		return DefaultImagePaths
	}
	return n.Paths
}

func (n *ImageURLNormalizer) blockedPrefixes() []string {
	if n == nil || n.BlockedPrefixes == nil {
		return []string{DefaultBlobURLPrefix}
	}
	return n.BlockedPrefixes
}

func (n *ImageURLNormalizer) fallback() []string {
	if n == nil || strings.TrimSpace(n.Fallback) == "" {
		return []string{DefaultFallbackImage}
	}
	return []string{strings.TrimSpace(n.Fallback)}
}

// lookupPathValue walks a dotted path through objects and, for numeric
// segments, list indexes.
func lookupPathValue(root any, path string) (any, bool) {
	path = strings.Trim(strings.TrimSpace(path), ".")
	if root == nil || path == "" {
		return nil, false
	}
	current := root
	for _, part := range strings.Split(path, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, exists := typed[part]
			if !exists {
				return nil, false
			}
			current = next
		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(typed) {
				return nil, false
			}
			current = typed[index]
		default:
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// normalizeJSONValue maps typed inputs onto the generic JSON shapes the path
// walker understands.
func normalizeJSONValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case map[string]any, []any:
		if isGenericJSON(typed) {
			return typed
		}
	case map[string]string:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = item
		}
		return out
	case json.RawMessage:
		var decoded any
		if json.Unmarshal(typed, &decoded) != nil {
			return nil
		}
		return decoded
	case []byte:
		var decoded any
		if json.Unmarshal(typed, &decoded) != nil {
			return nil
		}
		return decoded
	case string:
		return nil
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var decoded any
	if json.Unmarshal(encoded, &decoded) != nil {
		return nil
	}
	return decoded
}

// isGenericJSON reports whether value is built only from the shapes
// encoding/json decodes into. Anything else is re-decoded before walking.
func isGenericJSON(value any) bool {
	switch typed := value.(type) {
	case nil, string, bool, float64, json.Number:
		return true
	case map[string]any:
		for _, item := range typed {
			if !isGenericJSON(item) {
				return false
			}
		}
		return true
	case []any:
		for _, item := range typed {
			if !isGenericJSON(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
