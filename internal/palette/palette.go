// Package palette assigns display colors to file extensions.
package palette

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/temirov/dirscope/internal/types"
)

const (
	// NoExtensionColor is used for files without an extension.
	NoExtensionColor = "#FFFFFF"

	hueDegrees = 360
	saturation = 0.7
	value      = 0.95
)

// wellKnownColors pins colors for common extensions so they stay recognizable.
var wellKnownColors = map[string]string{
	".go":   "#00add8",
	".py":   "#3572a5",
	".js":   "#f1e05a",
	".ts":   "#3178c6",
	".rs":   "#dea584",
	".java": "#b07219",
	".c":    "#8c96a8",
	".h":    "#a8b4c4",
	".md":   "#4fa3e0",
	".json": "#cbcb41",
	".yaml": "#cb8a41",
	".yml":  "#cb8a41",
	".html": "#e34c26",
	".css":  "#8c6bc8",
	".sh":   "#89e051",
}

// Assigner maps extensions to colors. The mapping depends only on the extension, so every
// Assigner in every process returns the same color for the same extension.
type Assigner struct {
	cache sync.Map
}

// NewAssigner constructs an Assigner.
func NewAssigner() *Assigner {
	return &Assigner{}
}

// ForExtension returns a "#rrggbb" color for the extension. The extension is normalized first,
// so "PY", "py" and ".py" share a color.
func (assigner *Assigner) ForExtension(extension string) string {
	normalizedExtension := types.NormalizeExtension(extension)
	if normalizedExtension == "" {
		return NoExtensionColor
	}
	if cachedColor, cached := assigner.cache.Load(normalizedExtension); cached {
		return cachedColor.(string)
	}
	color := ColorForExtension(normalizedExtension)
	assigner.cache.Store(normalizedExtension, color)
	return color
}

// ColorForExtension derives the color of a normalized extension without caching.
func ColorForExtension(normalizedExtension string) string {
	if normalizedExtension == "" {
		return NoExtensionColor
	}
	if fixedColor, fixed := wellKnownColors[normalizedExtension]; fixed {
		return fixedColor
	}
	hue := float64(xxhash.Sum64String(normalizedExtension) % hueDegrees)
	return colorful.Hsv(hue, saturation, value).Hex()
}
