package geometry

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// metricsFace is the face used to measure text extents. Rendering happens
// elsewhere; only the advance widths matter here, scaled to the requested
// font size.
var metricsFace font.Face = basicfont.Face7x13

const metricsFaceSize = 13

// MeasureText returns the rendered width of the widest line of text at the
// given font size.
func MeasureText(text string, fontSize float64) float64 {
	if text == "" {
		return 0
	}
	var widest float64
	for _, line := range strings.Split(text, "\n") {
		w := float64(font.MeasureString(metricsFace, line)) / 64
		if w > widest {
			widest = w
		}
	}
	return widest * fontSize / metricsFaceSize
}
