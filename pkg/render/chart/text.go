package chart

import (
	"bytes"
	"encoding/xml"
)

const (
	fontHeightRatio = 0.3
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 6.0
	fontSizeMax     = 18.0
	lineSpacing     = 1.2
	detailRatio     = 0.8
)

// FontSize picks a label size that fits the box.
func FontSize(b Box) float64 {
	n := max(1, len(b.Label))
	byHeight := b.H * fontHeightRatio
	byWidth := (b.W * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// TruncateLabel shortens the label to what fits at FontSize, marking the cut
// with "..".
func TruncateLabel(b Box) string {
	label := []rune(b.Label)
	charWidth := FontSize(b) * fontCharWidth
	maxChars := max(3, int(b.W*fontWidthRatio/charWidth))
	if len(label) <= maxChars {
		return b.Label
	}
	return string(label[:maxChars-2]) + ".."
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
