package subtitles

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseTimestamp accepts SRT (00:00:01,000), WebVTT (00:01.000 or 00:00:01.000)
// and ASS (0:00:01.00) timestamps.
func parseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// Normalize period to comma (SRT standard uses comma for milliseconds)
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) > 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) < 2 || len(hms) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if len(hms) == 2 {
		hms = append([]string{"0"}, hms...)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	if errH != nil || errM != nil || errS != nil || hours < 0 || minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	millis := 0
	if len(timeParts) == 2 {
		frac := timeParts[1]
		if frac == "" {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		if len(frac) > 3 {
			frac = frac[:3]
		}
		frac += strings.Repeat("0", 3-len(frac))
		ms, err := strconv.Atoi(frac)
		if err != nil || ms < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		millis = ms
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return total, nil
}

func formatSRTTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	msTotal := int64(d.Round(time.Millisecond) / time.Millisecond)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func formatASSTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	csTotal := int64(d.Round(10*time.Millisecond) / (10 * time.Millisecond))
	hours := csTotal / 360_000
	csTotal %= 360_000
	minutes := csTotal / 6_000
	csTotal %= 6_000
	secs := csTotal / 100
	centis := csTotal % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}
