package ui

import "strings"

// sparkRunes are the eight block heights used by the sparkline.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline renders the last values as a fixed-width block graph
// scaled to the series maximum. Short series are left-padded so the
// graph grows from the right.
func sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for i := 0; i < width-len(values); i++ {
		b.WriteRune(' ')
	}
	for _, v := range values {
		if max <= 0 || v <= 0 {
			b.WriteRune(sparkRunes[0])
			continue
		}
		idx := int(v / max * float64(len(sparkRunes)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkRunes) {
			idx = len(sparkRunes) - 1
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
