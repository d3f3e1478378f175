// Package view turns snapshots into the strings and rows the renderers draw.
package view

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Timestamp formats t as H:MM:SS with an unpadded hour.
func Timestamp(t time.Time) string {
	return fmt.Sprintf("%d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// Count formats n with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Seconds formats a duration given in seconds with two decimals.
func Seconds(v float64) string {
	return fmt.Sprintf("%.2f s", v)
}

// Percent formats v as given, without forcing decimals.
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// Stake rounds to a whole number and adds thousands separators.
func Stake(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// ShortID keeps the first 12 and last 4 characters of long ids.
func ShortID(id string) string {
	if len(id) < 16 {
		return id
	}
	return id[:12] + "..." + id[len(id)-4:]
}
