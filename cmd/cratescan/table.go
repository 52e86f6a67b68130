package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"cratescan/internal/reconcile"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func tableStyle() table.Style {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return table.StyleRounded
	}
	return table.StyleLight
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(tableStyle())

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderReport prints the human-readable scan summary: one row per artist,
// then the missing-album detail and the unresolved list.
func renderReport(w io.Writer, report *reconcile.Report) {
	fmt.Fprintf(w, "Scan %s of %s (%s)\n",
		report.ScanID, report.Root, report.GeneratedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "%d artists, %d missing albums, %d unresolved\n\n",
		len(report.Artists), report.TotalMissing(), len(report.Unresolved))

	if len(report.Artists) > 0 {
		rows := make([][]string, 0, len(report.Artists))
		for _, artist := range report.Artists {
			rows = append(rows, []string{
				artist.Name,
				strconv.Itoa(len(artist.Matched)),
				strconv.Itoa(len(artist.Missing)),
				strconv.Itoa(len(artist.ExtraLocal)),
				artist.Image,
			})
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Artist", "Matched", "Missing", "Extra", "Image"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
		))
	}

	for _, artist := range report.Artists {
		if len(artist.Missing) == 0 {
			continue
		}
		fmt.Fprintf(w, "\nMissing from %s:\n", artist.Name)
		for _, album := range artist.Missing {
			fmt.Fprintf(w, "  %-12s %s\n", album.ReleaseDate, album.Title)
		}
	}

	if len(report.Unresolved) > 0 {
		fmt.Fprintln(w, "\nUnresolved artists:")
		for _, entry := range report.Unresolved {
			fmt.Fprintf(w, "  %s (%s)\n", entry.Name, entry.Reason)
		}
	}
}

// renderDiff prints what changed between two scans of the same root.
func renderDiff(w io.Writer, previous, current *reconcile.Report, diff *reconcile.ReportDiff) {
	fmt.Fprintf(w, "Changes in %s between scan %s (%s) and scan %s (%s)\n",
		current.Root,
		previous.ScanID, previous.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
		current.ScanID, current.GeneratedAt.Local().Format("2006-01-02 15:04:05"))

	if diff.Empty() {
		fmt.Fprintln(w, "No changes.")
		return
	}

	if len(diff.NewArtists) > 0 {
		fmt.Fprintln(w, "\nNew artists:")
		for _, name := range diff.NewArtists {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	if len(diff.GoneArtists) > 0 {
		fmt.Fprintln(w, "\nNo longer present:")
		for _, name := range diff.GoneArtists {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	for _, change := range diff.Changed {
		fmt.Fprintf(w, "\n%s:\n", change.Name)
		for _, album := range change.NewlyMissing {
			fmt.Fprintf(w, "  newly missing  %-12s %s\n", album.ReleaseDate, album.Title)
		}
		for _, title := range change.NowPresent {
			fmt.Fprintf(w, "  now present    %s\n", title)
		}
	}
}
