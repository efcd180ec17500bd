package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dayLayout = "20060102"

// FormatRunID returns a run ID like "20250115-001".
func FormatRunID(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%03d", day.Format(dayLayout), seq)
}

// ParseRunID parses "20250115-001" into its day and sequence.
func ParseRunID(id string) (day time.Time, seq int, err error) {
	datePart, seqPart, ok := strings.Cut(id, "-")
	if !ok {
		return time.Time{}, 0, fmt.Errorf("invalid run ID format: %q", id)
	}

	day, err = time.Parse(dayLayout, datePart)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid date in run ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(seqPart)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid sequence in run ID %q: %w", id, err)
	}

	return day, seq, nil
}

// NextRunID returns the ID following the highest sequence used on day.
// IDs that do not parse or belong to other days are ignored.
func NextRunID(day time.Time, existing []string) string {
	prefix := day.Format(dayLayout)
	maxSeq := 0
	for _, e := range existing {
		d, seq, err := ParseRunID(e)
		if err != nil || d.Format(dayLayout) != prefix {
			continue
		}
		maxSeq = max(maxSeq, seq)
	}
	return FormatRunID(day, maxSeq+1)
}
