package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/yairfalse/corestab/pkg/stability"
)

// PrintSummary prints a per-core overview of a scan
func PrintSummary(w io.Writer, report *stability.Report) {
	stats := report.Stats
	fmt.Fprintf(w, "%s scanned %d of %d boots, %d kernel lines\n",
		Colors.Heading("corestab:"), stats.BootsScanned, stats.BootsListed, stats.LinesRead)

	if stats.BootsFailed > 0 {
		fmt.Fprintf(w, "%s %d boots could not be read\n", Colors.Warning(Icons.Warning), stats.BootsFailed)
	}
	if stats.BootsPartial > 0 {
		fmt.Fprintf(w, "%s %d boots were only partially read\n", Colors.Warning(Icons.Warning), stats.BootsPartial)
	}

	if len(report.Records) == 0 {
		fmt.Fprintf(w, "%s no core-attributed faults found\n", Colors.Success(Icons.Success))
		return
	}

	fmt.Fprintf(w, "%s %d core-attributed faults\n\n", Colors.Error(Icons.Error), len(report.Records))
	PrintCoreTable(w, stability.Summarize(report.Records))
}

// PrintCoreTable prints one row per core
func PrintCoreTable(w io.Writer, summaries []stability.CoreSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOCKET\tCORE\tEVENTS\tBOOTS\tLAST SEEN\tSOURCES")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n",
			s.Socket,
			s.Core,
			s.Events,
			joinInts(s.Boots),
			s.LastSeen,
			strings.Join(s.Sources, ", "))
	}
	tw.Flush()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
