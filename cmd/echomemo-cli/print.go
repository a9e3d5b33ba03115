package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"echomemo/internal/client"
	"echomemo/internal/notesview"
	"echomemo/internal/style"
)

const timeLayout = "2006-01-02 15:04"

func printNotes(w io.Writer, notes []client.Note, colorOf func(string) string) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "no notes")
		return
	}
	for _, n := range notes {
		fmt.Fprintf(w, "%s  %s", n.ID, n.CreateTime.Format(timeLayout))
		if n.UpdateTime != nil {
			fmt.Fprintf(w, " (edited %s)", n.UpdateTime.Format(timeLayout))
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", n.Content)
		if n.AIResponse != "" {
			fmt.Fprintf(w, "  [%s %s] %s\n", n.AIStyle, colorOf(n.AIStyle), n.AIResponse)
		}
		fmt.Fprintln(w)
	}
}

func printStyles(w io.Writer, styles []style.Style, current string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tCOLOR\tDESCRIPTION")
	for _, s := range styles {
		mark := ""
		if s.Name == current {
			mark = "*"
		}
		id := s.ID.String()
		if cid, ok := s.ID.CustomID(); ok {
			id = cid
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, id, s.Name, s.Color, s.Description)
	}
	_ = tw.Flush()
}

var shades = []string{"·", "░", "▒", "█"}

// printHeatmap draws weeks as columns, oldest on the left.
func printHeatmap(w io.Writer, h notesview.HeatmapData) {
	rows := make([]strings.Builder, 7)
	for i, d := range h.Days {
		rows[i%7].WriteString(shades[d.Intensity])
	}
	if len(h.Days) > 0 {
		fmt.Fprintf(w, "%s .. %s\n", h.Days[0].Date, h.Days[len(h.Days)-1].Date)
	}
	for i := range rows {
		fmt.Fprintln(w, rows[i].String())
	}
	fmt.Fprintf(w, "total %d, this month %d\n", h.Total, h.ThisMonth)
}
