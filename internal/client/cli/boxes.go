package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/melitton/internal/client/stats"
	"github.com/dmitrijs2005/melitton/internal/models"
)

func (a *App) prompter() prompter {
	return prompter{r: a.reader, w: a.out}
}

// parseFilter splits "boxes" arguments into filters and free text.
// species=<name> and status=<name> select exact values; underscores stand
// for spaces ("status=em_observação").
func parseFilter(arg string) stats.Filter {
	var f stats.Filter
	var words []string
	for _, tok := range strings.Fields(arg) {
		key, val, ok := strings.Cut(tok, "=")
		val = strings.ReplaceAll(val, "_", " ")
		switch {
		case ok && key == "species":
			f.Species = models.Species(val)
		case ok && key == "status":
			f.Status = models.BoxStatus(val)
		default:
			words = append(words, tok)
		}
	}
	f.Search = strings.Join(words, " ")
	return f
}

func (a *App) ListBoxes(ctx context.Context, search string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := a.store.ListBoxes(ctx)
	if err != nil {
		return err
	}
	reportListSource(a.out, res.Source, res.Err)
	printBoxes(a.out, stats.FilterBoxes(res.Record, parseFilter(search)))
	return nil
}

func (a *App) ShowBox(ctx context.Context, id string) error {
	id, err := a.resolveBoxID(id)
	if err != nil {
		return err
	}
	b, _ := a.store.Box(id)
	printBox(a.out, b)
	return nil
}

// boxForm fills b interactively, offering its current values as defaults.
func (a *App) boxForm(b *models.Box) error {
	p := a.prompter()
	var err error

	if b.Name, err = p.required("Name", b.Name); err != nil {
		return err
	}
	if b.Species, err = choice(p, "Species", models.AllSpecies, b.Species); err != nil {
		return err
	}
	if b.BoxType, err = p.text("Box type (e.g. INPA, Nordestina)", b.BoxType); err != nil {
		return err
	}
	if b.InstallDate, err = p.date("Install date", b.InstallDate); err != nil {
		return err
	}
	if b.Origin, err = choice(p, "Origin", models.AllOrigins, b.Origin); err != nil {
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
	if b.Status, err = choice(p, "Status", models.AllBoxStatuses, b.Status); err != nil {
		return err
	}
	if b.Observations, err = p.text("Observations", b.Observations); err != nil {
		return err
	}
	if b.Photo, err = p.photo(b.Photo); err != nil {
		return err
	}
	return nil
}

func (a *App) AddBox(ctx context.Context) error {
	b := a.store.NewBox()
	if err := a.boxForm(&b); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	res, err := a.store.CreateBox(ctx, b)
	if err != nil {
		return err
	}
	reportResult(a.out, fmt.Sprintf("Box %q (%s)", res.Record.Name, res.Record.ID), res.Source, res.Err)
	return nil
}

func (a *App) EditBox(ctx context.Context, id string) error {
	id, err := a.resolveBoxID(id)
	if err != nil {
		return err
	}
	b, _ := a.store.Box(id)
	if err := a.boxForm(&b); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	res, err := a.store.UpdateBox(ctx, b)
	if err != nil {
		return err
	}
	reportResult(a.out, fmt.Sprintf("Box %q", res.Record.Name), res.Source, res.Err)
	return nil
}

func (a *App) DeleteBox(ctx context.Context, id string) error {
	id, err := a.resolveBoxID(id)
	if err != nil {
		return err
	}
	b, _ := a.store.Box(id)

	ok, err := a.prompter().confirm(
		fmt.Sprintf("Delete box %q and its %d management event(s)?", b.Name, len(b.ManagementHistory)), "delete")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	res, err := a.store.DeleteBox(ctx, id)
	if err != nil {
		return err
	}
	if res.Err != nil {
		fmt.Fprintf(a.out, "Box deleted locally; the server will be updated when reachable (%v).\n", res.Err)
		return nil
	}
	fmt.Fprintln(a.out, "Box deleted.")
	return nil
}

func (a *App) AddLog(ctx context.Context, boxID string) error {
	boxID, err := a.resolveBoxID(boxID)
	if err != nil {
		return err
	}

	l := a.store.NewLog()
	p := a.prompter()
	if l.Date, err = p.date("Date", l.Date); err != nil {
		return err
	}
	if l.Type, err = choice(p, "Event type", models.AllLogTypes, l.Type); err != nil {
		return err
	}
	if l.Notes, err = GetMultiline(a.reader, "Notes", a.out); err != nil {
		return err
	}
	if l.Type == models.LogHarvest {
		if l.Quantity, err = p.text("Quantity (e.g. 500ml, 1.5 L)", ""); err != nil {
			return err
		}
	}
	if l.Photo, err = p.photo(""); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	res, err := a.store.AddLog(ctx, boxID, l)
	if err != nil {
		return err
	}
	reportResult(a.out, fmt.Sprintf("%s on %s", res.Record.Type.Label(), res.Record.Date), res.Source, res.Err)
	return nil
}
