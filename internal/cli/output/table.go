package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/yndnr/sessprobe-go/internal/checker"
	"github.com/yndnr/sessprobe-go/internal/loadgen"
)

// TableFormatter renders run reports and suite results as aligned
// plain-text tables. Unknown data types fall back to indented JSON.
type TableFormatter struct{}

// Format formats data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case *loadgen.Report:
		return renderReport(w, v)
	case *checker.Summary:
		return renderSummary(w, v)
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	}
}

func renderReport(w io.Writer, r *loadgen.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "elapsed\t%s\n", r.Elapsed.Round(1e6))
	fmt.Fprintf(tw, "requests\t%d\n", r.Requests)
	fmt.Fprintf(tw, "failures\t%d (%.2f%%)\n", r.Failures, r.FailureRate()*100)
	fmt.Fprintf(tw, "violations\t%d\n", r.Violations)
	fmt.Fprintf(tw, "throughput\t%.1f req/s\n", r.Throughput)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "ACTION\tREQUESTS\tFAILURES\tMIN\tAVG\tMAX")
	for _, a := range r.PerAction {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			a.Action, a.Requests, a.Failures,
			a.MinLatency.Round(1e6), a.AvgLatency.Round(1e6), a.MaxLatency.Round(1e6),
		)
	}

	if len(r.Reasons) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "FAILURE REASON\tCOUNT")
		for _, reason := range r.Reasons {
			fmt.Fprintf(tw, "%s\t%d\n", reason.Reason, reason.Count)
		}
	}

	return tw.Flush()
}

func renderSummary(w io.Writer, s *checker.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "SCENARIO\tSTATUS\tDETAIL")
	for _, res := range s.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", res.Name, res.Status, res.Detail)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "passed %d, failed %d, skipped %d\n", s.Passed, s.Failed, s.Skipped)

	return tw.Flush()
}
