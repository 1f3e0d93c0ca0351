package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/yairfalse/corestab/pkg/stability"
)

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	report := &stability.Report{
		Records: []stability.Record{
			{Timestamp: "May 29 18:37:47", Boot: -1, Source: "foo[1]", Core: 15},
			{Timestamp: "May 29 18:39:47", Boot: 0, Source: "bar[2]", Core: 15},
		},
		Stats: stability.ScanStats{BootsListed: 3, BootsScanned: 2, BootsFailed: 1, BootsPartial: 1, LinesRead: 120, RecordsFound: 2},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "scanned 2 of 3 boots, 120 kernel lines")
	assert.Contains(t, out, "1 boots could not be read")
	assert.Contains(t, out, "1 boots were only partially read")
	assert.Contains(t, out, "2 core-attributed faults")
	assert.Contains(t, out, "SOCKET")
	assert.Contains(t, out, "-1,0")
	assert.Contains(t, out, "foo[1], bar[2]")
}

func TestPrintSummaryClean(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSummary(&buf, &stability.Report{Stats: stability.ScanStats{BootsListed: 1, BootsScanned: 1}})
	assert.Contains(t, buf.String(), "no core-attributed faults found")
	assert.NotContains(t, buf.String(), "could not be read")
	assert.NotContains(t, buf.String(), "partially read")
}
