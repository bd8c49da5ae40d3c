package scoring

import (
	"fmt"
	"math"
)

// NoData is the placeholder shown when a time or diff is absent.
const NoData = "-"

// FormatTime renders elapsed seconds as "HH:MM:SS.ss".
func FormatTime(seconds *float64) string {
	if seconds == nil {
		return NoData
	}

	s := *seconds
	hours := int(s) / 3600
	minutes := (int(s) % 3600) / 60
	secs := math.Mod(s, 60)

	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, secs)
}

// FormatDiff renders a signed differential as "±HH:MM:SS.ss".
func FormatDiff(seconds *float64) string {
	if seconds == nil {
		return NoData
	}

	sign := "+"
	s := *seconds
	if s < 0 {
		sign = "-"
		s = -s
	}

	hours := int(s) / 3600
	minutes := (int(s) % 3600) / 60
	secs := math.Mod(s, 60)

	return fmt.Sprintf("%s%02d:%02d:%05.2f", sign, hours, minutes, secs)
}
