package stability

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// "May 29 18:37:47 fedora kernel: ..." as printed by journalctl's short format
	timestampPattern = regexp.MustCompile(`^(\w+ \d+ \d{2}:\d{2}:\d{2}) (.+)`)

	// Tag the kernel appends to faults it can attribute, e.g. "likely on CPU 15 (core 15, socket 0)"
	coreTagPattern = regexp.MustCompile(`\(core (\d+), socket (\d+)\)`)
)

// ParseLine extracts a Record from one kernel log line. It reports false for
// lines without a leading timestamp or a core/socket tag.
func ParseLine(line string, boot int) (Record, bool) {
	timeMatch := timestampPattern.FindStringSubmatch(line)
	if timeMatch == nil {
		return Record{}, false
	}

	coreMatch := coreTagPattern.FindStringSubmatch(line)
	if coreMatch == nil {
		return Record{}, false
	}

	core, err := strconv.Atoi(coreMatch[1])
	if err != nil || core < 0 {
		return Record{}, false
	}
	socket, err := strconv.Atoi(coreMatch[2])
	if err != nil {
		return Record{}, false
	}

	message := kernelMessage(timeMatch[2])

	return Record{
		Timestamp: timeMatch[1],
		Boot:      boot,
		Source:    messageSource(message),
		Message:   message,
		Core:      core,
		Socket:    socket,
	}, true
}

// ParseLines parses every line and keeps the matches in input order
func ParseLines(lines []string, boot int) []Record {
	var records []Record
	for _, line := range lines {
		if record, ok := ParseLine(line, boot); ok {
			records = append(records, record)
		}
	}
	return records
}

// kernelMessage strips the "<hostname> <identifier>: " syslog prefix
func kernelMessage(rest string) string {
	if _, body, ok := strings.Cut(rest, ": "); ok {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(rest)
}

// messageSource returns the process or kernel subsystem the message is about:
// "gldriverquery[271469]" in "gldriverquery[271469]: segfault at ...",
// "traps" in "traps: foo[12] general protection fault ...".
func messageSource(message string) string {
	if head, _, ok := strings.Cut(message, ":"); ok && head != "" && !strings.ContainsAny(head, " \t") {
		return head
	}
	if fields := strings.Fields(message); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
