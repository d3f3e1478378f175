package tui

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSparklineFixedScale(t *testing.T) {
	assert.Equal(t, "▁▅█", Sparkline([]float64{0, 0.6, 1}, 0, 1, 0))
	assert.Equal(t, "▁█", Sparkline([]float64{-5, 7}, 0, 1, 0), "values outside the scale are clamped")
}

func TestSparklineAutoScale(t *testing.T) {
	assert.Equal(t, "▁█▁", Sparkline([]float64{50, 200, 50}, 0, 0, 0))
	assert.Equal(t, "▁▁", Sparkline([]float64{3, 3}, 0, 0, 0), "flat series")
}

func TestSparklineWidth(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(i)
	}
	line := Sparkline(values, 0, 0, 20)
	assert.Equal(t, 20, utf8.RuneCountInString(line))
	assert.Equal(t, '█', []rune(line)[19])
}

func TestSparklineEmpty(t *testing.T) {
	assert.Empty(t, Sparkline(nil, 0, 1, 10))
}
