package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

var (
	digitsPattern  = regexp.MustCompile(`\d+`)
	blockIDPattern = regexp.MustCompile(`(?i)block_(\w+?)(?:\.json)?$`)
)

// HourNumber extracts the hour number from an hour identifier such as "2",
// "hour_2", "Hour 02" or "h2". It reports false when there are no digits.
func HourNumber(hour string) (int, bool) {
	digits := digitsPattern.FindString(hour)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// HourMatcher reports whether a manifest reference belongs to one hour.
type HourMatcher struct {
	hour    string
	pattern *regexp.Regexp
}

// NewHourMatcher builds a matcher for hour. Numeric hours match the
// "hour 2", "hour_2", "hour-2", "hour 02" and "h2" conventions without
// matching other hours such as "h12" or "hour 20". Other identifiers fall back
// to a case-insensitive substring match.
func NewHourMatcher(hour string) HourMatcher {
	m := HourMatcher{hour: fold(strings.TrimSpace(hour))}
	n, ok := HourNumber(hour)
	if !ok {
		return m
	}
	m.pattern = regexp.MustCompile(fmt.Sprintf(`(?:^|[^\p{L}\p{N}])(?:hour[\s_-]*|h)0*%d(?:[^\p{N}]|$)`, n))
	return m
}

// Match reports whether ref belongs to the hour.
func (m HourMatcher) Match(ref string) bool {
	folded := fold(ref)
	if m.pattern != nil {
		return m.pattern.MatchString(folded)
	}
	return m.hour != "" && strings.Contains(folded, m.hour)
}

// MatchesHour reports whether ref belongs to hour.
func MatchesHour(ref, hour string) bool {
	return NewHourMatcher(hour).Match(ref)
}

// FilterByHour keeps the references of hour in manifest order.
func FilterByHour(refs []string, hour string) []string {
	m := NewHourMatcher(hour)
	return lo.Filter(refs, func(ref string, _ int) bool {
		return m.Match(ref)
	})
}

// FindReference returns the first reference that contains blockID.
func FindReference(refs []string, blockID string) (string, bool) {
	if blockID == "" {
		return "", false
	}
	return lo.Find(refs, func(ref string) bool {
		return strings.Contains(ref, blockID)
	})
}

// BlockIDFromReference extracts the block id from references such as
// "Hour 1 - Sanitation/block_001" or "h1_block_001.json". The last path
// segment without extension is returned when there is no block_ marker.
func BlockIDFromReference(ref string) string {
	segment := ref
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if m := blockIDPattern.FindStringSubmatch(segment); m != nil {
		return m[1]
	}
	return strings.TrimSuffix(segment, ".json")
}

// HourKey is the manifest index key of hour n.
func HourKey(n int) string {
	return fmt.Sprintf("hour_%d", n)
}

func fold(s string) string {
	return cases.Fold().String(s)
}
