package app

import (
	"fmt"
	"io"

	"github.com/vk/hetgrid/internal/dispatch"
)

// render writes the human-readable run outcome: the index ranges each
// branch handled, the verdict line, and (verbose) the raw output and
// reference vectors.
func (a *App) render(report *dispatch.Report, verbose bool) {
	fmt.Fprintf(a.outW, "start index for device = %d; end index for device = %d\n",
		report.AccelRange.Start, report.AccelRange.End)
	fmt.Fprintf(a.outW, "start index for host = %d; end index for host = %d\n",
		report.HostRange.Start, report.HostRange.End)

	if report.Verdict.Correct {
		fmt.Fprintln(a.outW, "Heterogeneous triad correct.")
	} else {
		fmt.Fprintln(a.outW, "Heterogeneous triad error.")
		if verbose && report.Verdict.Diff != "" {
			fmt.Fprintln(a.outW, report.Verdict.Diff)
		}
	}

	if verbose {
		printArr(a.outW, "c_array: ", report.Verdict.Output)
		printArr(a.outW, "c_gold:  ", report.Verdict.Reference)
	}
}

// printArr writes a labeled vector as space-separated values.
func printArr(w io.Writer, label string, values []float32) {
	fmt.Fprint(w, label)
	for _, v := range values {
		fmt.Fprintf(w, "%g ", v)
	}
	fmt.Fprintln(w)
}
