package export

import (
	"regexp"
	"strings"
	"time"
)

// Accepted timestamp formats. All patterns anchor at line start and require a
// full time-of-day component so that short numeric lines (codes, counts) are
// never misread as timestamps.
var timestampPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\w{3}\s+\d{1,2},\s+\d{4}\s+\d{1,2}:\d{2}:\d{2}\s+[AP]M)`), // Jan 15, 2025  2:30:15 PM
	regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}\s+\d{1,2}:\d{2}:\d{2}\s+[AP]M)`),  // 1/15/25 2:30:15 PM
	regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})`),                  // 2025-01-15 14:30:15
}

var timestampLayouts = []string{
	"Jan 2, 2006 3:04:05 PM",
	"1/2/06 3:04:05 PM",
	"1/2/2006 3:04:05 PM",
	"2006-01-02 15:04:05",
}

// MatchTimestamp reports whether line begins with a recognized timestamp and
// returns the matched substring. Trailing text after the timestamp (read
// receipts appended by some exporters) is allowed.
func MatchTimestamp(line string) (string, bool) {
	for _, re := range timestampPatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ParseTimestamp converts a matched timestamp string to a time.Time. Interior
// whitespace runs are collapsed first because exports pad the time column.
func ParseTimestamp(raw string) (time.Time, bool) {
	normalized := strings.Join(strings.Fields(raw), " ")
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
