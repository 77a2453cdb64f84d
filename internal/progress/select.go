package progress

import (
	"fmt"
	"io"
)

// Renderer styles accepted by NewRenderer.
const (
	StyleAuto   = "auto"
	StyleRich   = "rich"
	StyleSimple = "simple"
)

// NewRenderer returns the renderer for style. Auto picks Rich when the
// output is an interactive terminal and Simple otherwise.
func NewRenderer(style string, out io.Writer, interactive bool) (Renderer, error) {
	switch style {
	case StyleRich:
		return NewRich(out), nil
	case StyleSimple:
		return NewSimple(out), nil
	case StyleAuto, "":
		if interactive {
			return NewRich(out), nil
		}
		return NewSimple(out), nil
	default:
		return nil, fmt.Errorf("unknown progress style %q (want %s, %s or %s)", style, StyleAuto, StyleRich, StyleSimple)
	}
}
