package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/coldframe/coldframe/pkg/columnar"
	"github.com/coldframe/coldframe/pkg/driver"
)

// printResult renders a driver.Result as either a plain status message
// or a fixed-width table, one column per schema field.
func printResult(w io.Writer, res *driver.Result) {
	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
		return
	}
	if len(res.Batches) == 0 || res.Schema.Len() == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	widths := columnWidths(res)
	printRow(w, widths, fieldNames(res))
	printSeparator(w, widths)

	rows := 0
	for _, b := range res.Batches {
		for row := 0; row < b.NumRows(); row++ {
			cells := make([]string, res.Schema.Len())
			for col := 0; col < res.Schema.Len(); col++ {
				cells[col] = columnar.ArrayValueAt(b.Column(col), row).String()
			}
			printRow(w, widths, cells)
			rows++
		}
	}
	fmt.Fprintf(w, "(%d row(s))\n", rows)
}

func fieldNames(res *driver.Result) []string {
	names := make([]string, res.Schema.Len())
	for i, f := range res.Schema.Fields {
		names[i] = f.Name
	}
	return names
}

func columnWidths(res *driver.Result) []int {
	widths := make([]int, res.Schema.Len())
	for i, f := range res.Schema.Fields {
		widths[i] = len(f.Name)
	}
	for _, b := range res.Batches {
		for row := 0; row < b.NumRows(); row++ {
			for col := 0; col < res.Schema.Len(); col++ {
				s := columnar.ArrayValueAt(b.Column(col), row).String()
				if len(s) > widths[col] {
					widths[col] = len(s)
				}
			}
		}
	}
	return widths
}

func printRow(w io.Writer, widths []int, cells []string) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], c)
	}
	fmt.Fprintln(w, strings.Join(parts, " | "))
}

func printSeparator(w io.Writer, widths []int) {
	parts := make([]string, len(widths))
	for i, wd := range widths {
		parts[i] = strings.Repeat("-", wd)
	}
	fmt.Fprintln(w, strings.Join(parts, "-+-"))
}
