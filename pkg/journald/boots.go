package journald

import (
	"regexp"
	"strconv"
	"strings"
)

// Boot is one entry of `journalctl --list-boots`
type Boot struct {
	Index      int    `json:"index" yaml:"index"`
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	FirstEntry string `json:"first_entry,omitempty" yaml:"first_entry,omitempty"`
	LastEntry  string `json:"last_entry,omitempty" yaml:"last_entry,omitempty"`
}

// Matches "  -3 8a5c...e1 Mon 2024-05-27 10:00:01 EDT—Mon 2024-05-27 22:14:09 EDT".
// Only the index is required; older journalctl versions print the range with a
// plain dash and newer ones print a header line first.
var (
	bootIndexPattern = regexp.MustCompile(`^\s*(-?\d+)(?:\s+|$)`)
	bootIDPattern    = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// ParseBootList parses the output of `journalctl --list-boots`.
// Lines that do not start with a boot index are ignored.
func ParseBootList(output string) []Boot {
	var boots []Boot

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		match := bootIndexPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		index, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		boot := Boot{Index: index}
		rest := strings.Fields(line[len(match[0]):])
		if len(rest) > 0 && bootIDPattern.MatchString(rest[0]) {
			boot.ID = rest[0]
			boot.FirstEntry, boot.LastEntry = splitEntryRange(strings.Join(rest[1:], " "))
		}

		boots = append(boots, boot)
	}

	return boots
}

// splitEntryRange splits "first—last" (em dash or " - ") into its halves
func splitEntryRange(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	for _, sep := range []string{"—", " - "} {
		if first, last, ok := strings.Cut(s, sep); ok {
			return strings.TrimSpace(first), strings.TrimSpace(last)
		}
	}
	return s, ""
}

// SelectBoots filters boots while keeping journal order.
// If include is non-empty only those indexes are kept. If limit is
// non-negative only the limit most recent boots are kept.
func SelectBoots(boots []Boot, include []int, limit int) []Boot {
	selected := make([]Boot, 0, len(boots))

	wanted := make(map[int]bool, len(include))
	for _, idx := range include {
		wanted[idx] = true
	}

	for _, b := range boots {
		if len(wanted) > 0 && !wanted[b.Index] {
			continue
		}
		selected = append(selected, b)
	}

	if limit < 0 || limit >= len(selected) {
		return selected
	}

	// journalctl lists oldest first, so the most recent boots are at the tail
	return selected[len(selected)-limit:]
}
