package main

import (
	"fmt"
	"strings"

	"cratescan/internal/reconcile"
)

// renderMarkdown formats a scan report as a Markdown comparison document
// suitable for dropping into a wiki or issue.
func renderMarkdown(report *reconcile.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Library scan %s\n\n", report.GeneratedAt.Local().Format("2006-01-02"))
	fmt.Fprintf(&b, "Root: `%s`\n\n", report.Root)
	fmt.Fprintf(&b, "%d artists scanned, %d albums missing, %d artists unresolved.\n\n",
		len(report.Artists), report.TotalMissing(), len(report.Unresolved))

	for _, artist := range report.Artists {
		fmt.Fprintf(&b, "## %s\n\n", artist.Name)
		fmt.Fprintf(&b, "Matched %d, missing %d, local-only %d.\n\n",
			len(artist.Matched), len(artist.Missing), len(artist.ExtraLocal))

		if len(artist.Missing) > 0 {
			b.WriteString("| Release date | Album |\n|---|---|\n")
			for _, album := range artist.Missing {
				fmt.Fprintf(&b, "| %s | %s |\n", album.ReleaseDate, album.Title)
			}
			b.WriteString("\n")
		}
		if len(artist.ExtraLocal) > 0 {
			b.WriteString("Local folders with no catalog match:\n\n")
			for _, name := range artist.ExtraLocal {
				fmt.Fprintf(&b, "- %s\n", name)
			}
			b.WriteString("\n")
		}
	}

	if len(report.Unresolved) > 0 {
		b.WriteString("## Unresolved\n\n")
		for _, entry := range report.Unresolved {
			fmt.Fprintf(&b, "- %s (%s)\n", entry.Name, entry.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}
