package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/melitton/internal/client/stats"
	"github.com/dmitrijs2005/melitton/internal/models"
)

func (a *App) ListBaits(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := a.store.ListBaits(ctx)
	if err != nil {
		return err
	}
	reportListSource(a.out, res.Source, res.Err)
	printBaits(a.out, res.Record, a.now())
	return nil
}

// baitForm fills b interactively. For a new bait the next inspection
// default follows the install date.
func (a *App) baitForm(b *models.Bait, isNew bool) error {
	p := a.prompter()
	interval := a.store.Settings().InspectionFrequencyDays
	var err error

	if b.Name, err = p.required("Name", b.Name); err != nil {
		return err
	}
	if b.Type, err = p.text("Model (e.g. Garrafa PET, Caixa de papelão)", b.Type); err != nil {
		return err
	}
	if b.Attractant, err = p.text("Attractant (e.g. cerume, própolis)", b.Attractant); err != nil {
		return err
	}
	if b.Location.Description, err = p.text("Location", b.Location.Description); err != nil {
		return err
	}
	if b.Location.Lat, err = p.coordinate("Latitude", b.Location.Lat); err != nil {
		return err
	}
	if b.Location.Lng, err = p.coordinate("Longitude", b.Location.Lng); err != nil {
		return err
	}
	if b.InstallDate, err = p.date("Install date", b.InstallDate); err != nil {
		return err
	}
	if b.TargetSpecies, err = choice(p, "Target species", models.AllSpecies, b.TargetSpecies); err != nil {
		return err
	}
	if b.Status.State, err = choice(p, "State", models.AllBaitStates, b.Status.State); err != nil {
		return err
	}
	if isNew {
		b.Status.LastInspection = b.InstallDate
		installed, _ := models.ParseDate(b.InstallDate)
		b.NextInspectionDate = models.AddDays(installed, interval)
	} else if b.Status.LastInspection, err = p.date("Last inspection", b.Status.LastInspection); err != nil {
		return err
	}
	if b.NextInspectionDate, err = p.date("Next inspection", b.NextInspectionDate); err != nil {
		return err
	}
	if b.Photo, err = p.photo(b.Photo); err != nil {
		return err
	}
	return nil
}

func (a *App) AddBait(ctx context.Context) error {
	b := a.store.NewBait()
	if err := a.baitForm(&b, true); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	res, err := a.store.CreateBait(ctx, b)
	if err != nil {
		return err
	}
	reportResult(a.out, fmt.Sprintf("Bait %q (%s)", res.Record.Name, res.Record.ID), res.Source, res.Err)
	return nil
}

func (a *App) EditBait(ctx context.Context, id string) error {
	id, err := a.resolveBaitID(id)
	if err != nil {
		return err
	}
	b, _ := a.store.Bait(id)
	if err := a.baitForm(&b, false); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	res, err := a.store.UpdateBait(ctx, b)
	if err != nil {
		return err
	}
	reportResult(a.out, fmt.Sprintf("Bait %q", res.Record.Name), res.Source, res.Err)
	return nil
}

func (a *App) InspectBait(ctx context.Context, id string) error {
	id, err := a.resolveBaitID(id)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	res, err := a.store.MarkBaitInspected(ctx, id)
	if err != nil {
		return err
	}
	reportResult(a.out, fmt.Sprintf("Inspection of %q; next one on %s", res.Record.Name, res.Record.NextInspectionDate), res.Source, res.Err)
	return nil
}

func (a *App) DeleteBait(ctx context.Context, id string) error {
	id, err := a.resolveBaitID(id)
	if err != nil {
		return err
	}
	b, _ := a.store.Bait(id)

	ok, err := a.prompter().confirm(fmt.Sprintf("Delete bait %q?", b.Name), "delete")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	res, err := a.store.DeleteBait(ctx, id)
	if err != nil {
		return err
	}
	if res.Err != nil {
		fmt.Fprintf(a.out, "Bait deleted locally; the server will be updated when reachable (%v).\n", res.Err)
		return nil
	}
	fmt.Fprintln(a.out, "Bait deleted.")
	return nil
}

// Overdue lists baits whose inspection date has passed, from the local copy.
func (a *App) Overdue(ctx context.Context) error {
	today := a.now()
	overdue := stats.OverdueBaits(a.store.Snapshot().Baits, today)
	if len(overdue) == 0 {
		fmt.Fprintln(a.out, "No overdue inspections.")
		return nil
	}
	fmt.Fprintf(a.out, "%d bait(s) overdue for inspection:\n", len(overdue))
	printBaits(a.out, overdue, today)
	return nil
}

func (a *App) ShowBait(ctx context.Context, id string) error {
	id, err := a.resolveBaitID(id)
	if err != nil {
		return err
	}
	b, _ := a.store.Bait(id)
	printBait(a.out, b)
	return nil
}
