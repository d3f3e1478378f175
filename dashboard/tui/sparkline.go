package tui

import (
	"math"
	"strings"
)

var blocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as one block rune each, scaled to [lo, hi]. When lo >= hi
// the range is taken from the values themselves. Only the last width values are drawn
// when width > 0.
func Sparkline(values []float64, lo, hi float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	if lo >= hi {
		lo, hi = bounds(values)
	}

	var sb strings.Builder
	top := len(blocks) - 1
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		idx = max(0, min(top, idx))
		sb.WriteRune(blocks[idx])
	}
	return sb.String()
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
