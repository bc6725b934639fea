// Package reltime renders elapsed time as short "n units ago" labels.
package reltime

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Locale selects the label set used by a Formatter.
type Locale string

const (
	English Locale = "en"
	Korean  Locale = "ko"
)

// The largest non-zero unit wins and is truncated, so 90 minutes is
// "1 hour ago" and 3.7 seconds is "3 seconds ago". Anything under a second
// is "just now". Days never roll over into weeks or months.
var englishMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "just now", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 second %s", DivBy: 1},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
	{D: time.Duration(math.MaxInt64), Format: "%d days %s", DivBy: humanize.Day},
}

var koreanMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "방금 전", DivBy: time.Second},
	{D: time.Minute, Format: "%d초 %s", DivBy: time.Second},
	{D: time.Hour, Format: "%d분 %s", DivBy: time.Minute},
	{D: humanize.Day, Format: "%d시간 %s", DivBy: time.Hour},
	{D: time.Duration(math.MaxInt64), Format: "%d일 %s", DivBy: humanize.Day},
}

// Formatter converts a pair of timestamps into a relative label.
type Formatter struct {
	locale     Locale
	label      string
	magnitudes []humanize.RelTimeMagnitude
}

// New returns a Formatter for the given locale. Unknown locales fall back
// to English.
func New(locale Locale) *Formatter {
	switch locale {
	case Korean:
		return &Formatter{locale: Korean, label: "전", magnitudes: koreanMagnitudes}
	default:
		return &Formatter{locale: English, label: "ago", magnitudes: englishMagnitudes}
	}
}

// ParseLocale maps a config value to a Locale. Empty means English.
func ParseLocale(s string) (Locale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "english":
		return English, nil
	case "ko", "kr", "korean":
		return Korean, nil
	default:
		return "", fmt.Errorf("unsupported time label locale %q", s)
	}
}

// Locale reports the label set in use.
func (f *Formatter) Locale() Locale {
	return f.locale
}

// Format returns the label for the time elapsed between created and now.
// A created time after now is treated as zero elapsed.
func (f *Formatter) Format(now, created time.Time) string {
	if created.After(now) {
		created = now
	}
	return humanize.CustomRelTime(created, now, f.label, f.label, f.magnitudes)
}

var defaultFormatter = New(English)

// Format renders an English label using the default Formatter.
func Format(now, created time.Time) string {
	return defaultFormatter.Format(now, created)
}
