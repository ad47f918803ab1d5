package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Table renders a tab-aligned table to w.
func Table(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// OutputTable prints a simple tab-aligned table to stdout (human mode).
func OutputTable(headers []string, rows [][]string) {
	Table(os.Stdout, headers, rows)
}

// OutputList prints one item per line to stdout (human mode).
func OutputList(items []string) {
	for _, item := range items {
		fmt.Fprintln(os.Stdout, item)
	}
}
