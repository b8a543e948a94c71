package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/melitton/internal/client/stats"
	"github.com/dmitrijs2005/melitton/internal/models"
)

// Stats prints the dashboard figures, refreshing both lists first when the
// server is reachable.
func (a *App) Stats(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if res, err := a.store.ListBoxes(ctx); err != nil {
		return err
	} else if res.Err == nil {
		if _, err := a.store.ListBaits(ctx); err != nil {
			return err
		}
	} else {
		reportListSource(a.out, res.Source, res.Err)
	}

	s := stats.Summarize(a.store.Snapshot(), a.now())
	tw := newTable(a.out)
	fmt.Fprintf(tw, "Active boxes:\t%d of %d\n", s.ActiveBoxes, s.TotalBoxes)
	fmt.Fprintf(tw, "Estimated bees:\t~%d (%d per active box)\n", s.EstimatedBees, stats.BeesPerBox)
	fmt.Fprintf(tw, "Occupied baits:\t%d of %d\n", s.OccupiedBaits, s.TotalBaits)
	fmt.Fprintf(tw, "Capture rate:\t%.0f%%\n", s.CaptureRate)
	fmt.Fprintf(tw, "Honey harvested:\t%gL\n", s.TotalHoney)
	fmt.Fprintf(tw, "Monthly average:\t%.1fL / month\n", s.MonthlyHoneyAverage)
	top := string(s.TopProducer)
	if top == "" {
		top = "--"
	}
	fmt.Fprintf(tw, "Top producer:\t%s\n", top)
	fmt.Fprintf(tw, "Expansion forecast:\t%d colonies\n", s.ExpansionForecast)
	fmt.Fprintf(tw, "Overdue inspections:\t%d\n", len(s.OverdueBaits))
	_ = tw.Flush()

	if len(s.HoneyBySpecies) > 0 {
		fmt.Fprintln(a.out, "Production by species:")
		tw = newTable(a.out)
		for _, st := range s.HoneyBySpecies {
			fmt.Fprintf(tw, "  %s\t%gL\n", st.Species, st.Total)
		}
		_ = tw.Flush()
	}
	if len(s.SpeciesDistribution) > 0 {
		fmt.Fprintln(a.out, "Boxes by species:")
		tw = newTable(a.out)
		for _, sc := range s.SpeciesDistribution {
			fmt.Fprintf(tw, "  %s\t%d\n", sc.Species, sc.Count)
		}
		_ = tw.Flush()
	}
	return nil
}

func (a *App) Settings(ctx context.Context) error {
	cur := a.store.Settings()
	p := a.prompter()
	var err error

	next := cur
	if next.UserName, err = p.text("Your name", cur.UserName); err != nil {
		return err
	}
	if next.InspectionFrequencyDays, err = p.positiveInt("Bait inspection interval (days)", cur.InspectionFrequencyDays); err != nil {
		return err
	}
	if next.Theme, err = choice(p, "Theme", []models.Theme{models.ThemeLight, models.ThemeDark}, cur.Theme); err != nil {
		return err
	}

	if err := a.store.UpdateSettings(ctx, next); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Settings saved.")
	return nil
}
