package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/dirscope/internal/types"
)

// ErrUnsupportedFormat reports an output format other than raw, json or yaml.
var ErrUnsupportedFormat = errors.New("unsupported output format")

const errorFormatFormat = "%w '%s'"

// Options controls how a tree is rendered.
type Options struct {
	Format string
	// FullPath prints every entry with its absolute path instead of its name.
	FullPath bool
	// Color enables ANSI styling of the raw format.
	Color bool
}

// IsSupportedFormat reports whether format names a known renderer.
func IsSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case types.FormatRaw, types.FormatJSON, types.FormatYAML:
		return true
	default:
		return false
	}
}

// RenderTree writes tree to writer in the selected format.
func RenderTree(writer io.Writer, tree *types.Tree, options Options) error {
	switch strings.ToLower(options.Format) {
	case types.FormatRaw, "":
		return WalkTree(tree, newRawTreeRenderer(writer, tree, options))
	case types.FormatJSON:
		return writeJSON(writer, tree)
	case types.FormatYAML:
		return writeYAML(writer, tree)
	default:
		return fmt.Errorf(errorFormatFormat, ErrUnsupportedFormat, options.Format)
	}
}

// RenderComparison writes comparisonTree to writer in the selected format.
func RenderComparison(writer io.Writer, comparisonTree *types.ComparisonTree, options Options) error {
	switch strings.ToLower(options.Format) {
	case types.FormatRaw, "":
		return WalkComparison(comparisonTree, newRawComparisonRenderer(writer, comparisonTree, options))
	case types.FormatJSON:
		return writeJSON(writer, comparisonTree)
	case types.FormatYAML:
		return writeYAML(writer, comparisonTree)
	default:
		return fmt.Errorf(errorFormatFormat, ErrUnsupportedFormat, options.Format)
	}
}
