package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/melitton/internal/client/client"
	"github.com/dmitrijs2005/melitton/internal/client/state"
	"github.com/dmitrijs2005/melitton/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func syncMark(s models.SyncState) string {
	if s == models.SyncPending {
		return "*"
	}
	return ""
}

func location(l models.Location) string {
	s := l.Description
	if l.Lat != nil && l.Lng != nil {
		s = strings.TrimSpace(fmt.Sprintf("%s (%.5f, %.5f)", s, *l.Lat, *l.Lng))
	}
	return s
}

func printBoxes(w io.Writer, boxes []models.Box) {
	if len(boxes) == 0 {
		fmt.Fprintln(w, "No boxes found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSPECIES\tSTATUS\tINSTALLED\tLOGS\t")
	for _, b := range boxes {
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t%d\t\n",
			b.ID, syncMark(b.SyncState), b.Name, b.Species, b.Status, b.InstallDate, len(b.ManagementHistory))
	}
	_ = tw.Flush()
	fmt.Fprintln(w, "(* not yet synchronized)")
}

func printBox(w io.Writer, b models.Box) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s%s\n", b.ID, syncMark(b.SyncState))
	fmt.Fprintf(tw, "Name:\t%s\n", b.Name)
	fmt.Fprintf(tw, "Species:\t%s\n", b.Species)
	fmt.Fprintf(tw, "Box type:\t%s\n", b.BoxType)
	fmt.Fprintf(tw, "Installed:\t%s\n", b.InstallDate)
	fmt.Fprintf(tw, "Origin:\t%s\n", b.Origin)
	fmt.Fprintf(tw, "Location:\t%s\n", location(b.Location))
	fmt.Fprintf(tw, "Status:\t%s\n", b.Status)
	fmt.Fprintf(tw, "Photo:\t%s\n", photoSummary(b.Photo))
	fmt.Fprintf(tw, "Observations:\t%s\n", b.Observations)
	_ = tw.Flush()

	if len(b.ManagementHistory) == 0 {
		fmt.Fprintln(w, "No management events yet.")
		return
	}
	fmt.Fprintln(w, "Management history:")
	tw = newTable(w)
	for _, l := range b.ManagementHistory {
		line := fmt.Sprintf("  %s%s\t%s\t%s", l.Date, syncMark(l.SyncState), l.Type.Label(), l.Notes)
		if l.Quantity != "" {
			line += fmt.Sprintf("\t[%s]", l.Quantity)
		}
		fmt.Fprintln(tw, line)
	}
	_ = tw.Flush()
}

func printBaits(w io.Writer, baits []models.Bait, today time.Time) {
	if len(baits) == 0 {
		fmt.Fprintln(w, "No baits installed.")
		return
	}
	cutoff := models.FormatDate(today)
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tTARGET\tSTATE\tLAST CHECK\tNEXT CHECK\t")
	for _, b := range baits {
		next := b.NextInspectionDate
		if models.NormalizeDate(next) < cutoff {
			next += " (overdue)"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t%s\t\n",
			b.ID, syncMark(b.SyncState), b.Name, b.TargetSpecies, b.Status.State, b.Status.LastInspection, next)
	}
	_ = tw.Flush()
}

func printBait(w io.Writer, b models.Bait) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s%s\n", b.ID, syncMark(b.SyncState))
	fmt.Fprintf(tw, "Name:\t%s\n", b.Name)
	fmt.Fprintf(tw, "Type:\t%s\n", b.Type)
	fmt.Fprintf(tw, "Attractant:\t%s\n", b.Attractant)
	fmt.Fprintf(tw, "Location:\t%s\n", location(b.Location))
	fmt.Fprintf(tw, "Installed:\t%s\n", b.InstallDate)
	fmt.Fprintf(tw, "Target species:\t%s\n", b.TargetSpecies)
	fmt.Fprintf(tw, "State:\t%s (checked %s)\n", b.Status.State, b.Status.LastInspection)
	fmt.Fprintf(tw, "Next inspection:\t%s\n", b.NextInspectionDate)
	_ = tw.Flush()
}

// reportResult tells the user where a write ended up.
func reportResult(w io.Writer, what string, src state.Source, err error) {
	switch {
	case src == state.SourceRemote && err == nil:
		fmt.Fprintf(w, "%s saved.\n", what)
	case errors.Is(err, state.ErrNotSynced):
		fmt.Fprintf(w, "%s saved locally; it will be sent once its record reaches the server.\n", what)
	case errors.Is(err, client.ErrRejected):
		fmt.Fprintf(w, "The server refused it (%v). %s saved locally; edit it to try again.\n", err, what)
	default:
		fmt.Fprintf(w, "Server unavailable (%v). %s saved locally and will be synchronized later.\n", err, what)
	}
}

// reportListSource warns when a listing came from the local copy.
func reportListSource(w io.Writer, src state.Source, err error) {
	if src == state.SourceLocal {
		fmt.Fprintf(w, "Offline (%v): showing local data.\n", err)
	}
}
