package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/naka-gawa/release-cadence/internal/domain"
)

// renderReport prints both series as aligned tables with a bar of the weekly total.
func renderReport(w io.Writer, report *domain.Report, repos []domain.RepoRef, months int) {
	fmt.Fprintf(w, "Production releases since %s (%d months)\n\n", report.WindowStart.Format("2006-01-02"), months)
	renderSeries(w, "releases", report.Releases, domain.ReleaseLabels(repos), report.Summary)
	fmt.Fprintf(w, "\nBugs\n\n")
	renderSeries(w, "bugs", report.Bugs, domain.IssueLabels(repos), report.Summary)
}

func renderSeries(w io.Writer, prefix string, buckets []domain.WeekBucket, labels []string, summary map[string]domain.LabelSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "WEEK\t%s\t\n", strings.Join(labels, "\t"))
	for _, b := range buckets {
		cells := make([]string, len(labels))
		total := 0
		for i, label := range labels {
			cells[i] = fmt.Sprint(b.Counts[label])
			total += b.Counts[label]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Week, strings.Join(cells, "\t"), strings.Repeat("#", total))
	}

	means := make([]string, len(labels))
	for i, label := range labels {
		means[i] = fmt.Sprintf("%.2f", summary[prefix+"/"+label].MeanPerWeek)
	}
	fmt.Fprintf(tw, "mean/week\t%s\t\n", strings.Join(means, "\t"))
	tw.Flush()
}
