package ffmpeg

import (
	"strconv"
	"strings"
)

// progressParser turns the key=value lines ffmpeg writes with
// "-progress pipe:1" into percent-complete values against a known total
// duration. Raw values can jitter near the edges, so results are clamped.
type progressParser struct {
	totalSeconds float64
}

func newProgressParser(totalSeconds float64) *progressParser {
	return &progressParser{totalSeconds: totalSeconds}
}

// parseLine returns (percent, true) for lines that advance progress.
func (p *progressParser) parseLine(line string) (float64, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "out_time_us", "out_time_ms":
		// out_time_ms is microseconds too, a long-standing ffmpeg quirk
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return p.percentOf(float64(us) / 1e6), true
	case "out_time":
		seconds, ok := parseClock(value)
		if !ok {
			return 0, false
		}
		return p.percentOf(seconds), true
	case "progress":
		if value == "end" {
			return 100, true
		}
	}

	return 0, false
}

func (p *progressParser) percentOf(seconds float64) float64 {
	if p.totalSeconds <= 0 {
		return 0
	}
	return clampPercent(seconds / p.totalSeconds * 100)
}

func clampPercent(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// parseClock parses ffmpeg's HH:MM:SS.micros timestamps.
func parseClock(value string) (float64, bool) {
	if value == "" || value == "N/A" {
		return 0, false
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}

	hours, err1 := strconv.ParseFloat(parts[0], 64)
	mins, err2 := strconv.ParseFloat(parts[1], 64)
	secs, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}

	return hours*3600 + mins*60 + secs, true
}
