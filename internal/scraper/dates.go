package scraper

import (
	"strings"
	"time"
)

// tamilMonths maps Tamil month names to their English equivalents so date
// strings can go through a fixed-format parse.
var tamilMonths = map[string]string{
	"ஜனவரி":     "January",
	"பிப்ரவரி":  "February",
	"மார்ச்":    "March",
	"ஏப்ரல்":    "April",
	"மே":        "May",
	"ஜூன்":      "June",
	"ஜூலை":      "July",
	"ஆகஸ்ட்":    "August",
	"செப்டம்பர்": "September",
	"அக்டோபர்":  "October",
	"நவம்பர்":   "November",
	"டிசம்பர்":  "December",
}

// ParseTamilDate parses strings like "26 ஜூன், 2025" by translating the
// month name and trying the site's two date layouts. Returns nil when the
// string cannot be parsed.
func ParseTamilDate(text string) *time.Time {
	if text == "" {
		return nil
	}

	for tamil, english := range tamilMonths {
		text = strings.ReplaceAll(text, tamil, english)
	}
	text = strings.TrimSpace(text)

	for _, layout := range []string{"2 January, 2006", "2 Jan, 2006"} {
		if t, err := time.Parse(layout, text); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// ParseISOTime parses an ISO-8601 timestamp (the value of a <time datetime>
// attribute) and normalizes it to UTC. Returns nil when unparseable.
func ParseISOTime(text string) *time.Time {
	if text == "" {
		return nil
	}
	text = strings.TrimSpace(text)

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	// Sites emit both "Z"-suffixed and offset-less forms
	trimmed := strings.TrimSuffix(text, "Z")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			utc := t.UTC()
			return &utc
		}
		if t, err := time.Parse(layout, trimmed); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// ParseDataDatestring parses DinaThanthi's "2006-01-02 15:04:05" attribute
// values as UTC instants. Returns nil when unparseable.
func ParseDataDatestring(text string) *time.Time {
	if text == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(text))
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
