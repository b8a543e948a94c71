package stats

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func harvest(q string) models.ManagementLog {
	return models.ManagementLog{Date: "2026-04-01", Type: models.LogHarvest, Quantity: q}
}

func box(id, name string, sp models.Species, st models.BoxStatus, logs ...models.ManagementLog) models.Box {
	return models.Box{ID: id, Name: name, Species: sp, Status: st, ManagementHistory: logs}
}

func bait(name string, state models.BaitState, next string) models.Bait {
	return models.Bait{Name: name, Status: models.BaitStatus{State: state}, NextInspectionDate: next}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"500ml", 500},
		{"1.5 L", 1.5},
		{"  2L", 2},
		{".5", 0.5},
		{"3,5 kg", 3},
		{"", 0},
		{"muito", 0},
		{"L 2", 0},
		{"-1", -1},
		{"1e3g", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseQuantity(tt.in), 1e-9)
		})
	}
}

func TestTotalHoney_OnlyHarvestLogs(t *testing.T) {
	boxes := []models.Box{
		box("1", "A", models.SpeciesJatai, models.BoxActive,
			harvest("500"),
			harvest("abc"),
			models.ManagementLog{Type: models.LogFeeding, Quantity: "200"},
		),
		box("2", "B", models.SpeciesUrucu, models.BoxActive, harvest("1.5L")),
	}
	assert.InDelta(t, 501.5, TotalHoney(boxes), 1e-9)
	assert.InDelta(t, 501.5/12, MonthlyHoneyAverage(boxes), 1e-9)
}

func TestHoneyBySpecies_SortedWithTies(t *testing.T) {
	boxes := []models.Box{
		box("1", "A", models.SpeciesUrucu, models.BoxActive, harvest("2")),
		box("2", "B", models.SpeciesJatai, models.BoxActive, harvest("1")),
		box("3", "C", models.SpeciesJatai, models.BoxActive, harvest("1")),
		box("4", "D", models.SpeciesIrai, models.BoxActive, harvest("2")),
		box("5", "E", models.SpeciesMirim, models.BoxDead),
	}

	got := HoneyBySpecies(boxes)
	want := []SpeciesTotal{
		{Species: models.SpeciesIrai, Total: 2},
		{Species: models.SpeciesJatai, Total: 2},
		{Species: models.SpeciesUrucu, Total: 2},
		{Species: models.SpeciesMirim, Total: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("HoneyBySpecies mismatch (-want +got):\n%s", diff)
	}

	top, ok := TopProducer(boxes)
	require.True(t, ok)
	assert.Equal(t, models.SpeciesIrai, top)

	_, ok = TopProducer(nil)
	assert.False(t, ok)
}

func TestSpeciesDistribution(t *testing.T) {
	boxes := []models.Box{
		box("1", "A", models.SpeciesUrucu, models.BoxActive),
		box("2", "B", models.SpeciesJatai, models.BoxActive),
		box("3", "C", models.SpeciesJatai, models.BoxActive),
	}
	want := []SpeciesCount{
		{Species: models.SpeciesJatai, Count: 2},
		{Species: models.SpeciesUrucu, Count: 1},
	}
	assert.Equal(t, want, SpeciesDistribution(boxes))
	assert.Empty(t, SpeciesDistribution(nil))
}

func TestCaptureRate(t *testing.T) {
	assert.Zero(t, CaptureRate(nil))

	baits := []models.Bait{
		bait("1", models.BaitOccupied, "2026-05-01"),
		bait("2", models.BaitEmpty, "2026-05-01"),
		bait("3", models.BaitCollected, "2026-05-01"),
		bait("4", models.BaitOccupied, "2026-05-01"),
	}
	assert.InDelta(t, 50, CaptureRate(baits), 1e-9)
	assert.Equal(t, 2, OccupiedBaits(baits))
}

func TestBoxCounters(t *testing.T) {
	boxes := []models.Box{
		box("1", "A", models.SpeciesJatai, models.BoxActive),
		box("2", "B", models.SpeciesJatai, models.BoxActive),
		box("3", "C", models.SpeciesJatai, models.BoxSwarmed),
	}
	assert.Equal(t, 2, ActiveBoxes(boxes))
	assert.Equal(t, 6000, EstimatedBees(boxes))
	// 3 * 1.5 = 4.5 rounds half away from zero.
	assert.Equal(t, 5, ExpansionForecast(boxes))
	assert.Equal(t, 0, ExpansionForecast(nil))
}

func TestOverdueBaits_StrictlyBeforeToday(t *testing.T) {
	today := time.Date(2026, 5, 10, 8, 0, 0, 0, time.Local)
	baits := []models.Bait{
		bait("ontem 1", models.BaitEmpty, "2026-05-09"),
		bait("hoje", models.BaitEmpty, "2026-05-10"),
		bait("ontem 2", models.BaitOccupied, "2026-05-09T00:00:00Z"),
		bait("amanhã", models.BaitEmpty, "2026-05-11"),
		bait("quebrada", models.BaitEmpty, "nunca"),
	}

	got := OverdueBaits(baits, today)
	require.Len(t, got, 2)
	assert.Equal(t, "ontem 1", got[0].Name)
	assert.Equal(t, "ontem 2", got[1].Name)
}

func TestFilterBoxes(t *testing.T) {
	boxes := []models.Box{
		box("abc-1", "Caixa Quintal", models.SpeciesJatai, models.BoxActive),
		box("abc-2", "Caixa Sítio", models.SpeciesUrucu, models.BoxObservation),
		box("xyz-3", "Mandaçaia grande", models.SpeciesMandacaia, models.BoxActive),
	}

	names := func(bs []models.Box) []string {
		var out []string
		for _, b := range bs {
			out = append(out, b.Name)
		}
		return out
	}

	assert.Len(t, FilterBoxes(boxes, Filter{}), 3)
	assert.Equal(t, []string{"Caixa Quintal", "Caixa Sítio"}, names(FilterBoxes(boxes, Filter{Search: "CAIXA"})))
	assert.Equal(t, []string{"Mandaçaia grande"}, names(FilterBoxes(boxes, Filter{Search: "xyz"})))
	assert.Equal(t, []string{"Caixa Sítio"}, names(FilterBoxes(boxes, Filter{Species: models.SpeciesUrucu})))
	assert.Equal(t, []string{"Caixa Quintal"}, names(FilterBoxes(boxes, Filter{Search: "caixa", Status: models.BoxActive})))
	assert.Empty(t, FilterBoxes(boxes, Filter{Search: "nada"}))
}

func TestSummarize(t *testing.T) {
	st := models.State{
		Boxes: []models.Box{
			box("1", "A", models.SpeciesJatai, models.BoxActive, harvest("2L")),
			box("2", "B", models.SpeciesUrucu, models.BoxDead),
		},
		Baits: []models.Bait{
			bait("1", models.BaitOccupied, "2026-05-01"),
			bait("2", models.BaitEmpty, "2026-06-01"),
		},
	}

	s := Summarize(st, time.Date(2026, 5, 10, 0, 0, 0, 0, time.Local))
	assert.Equal(t, 2, s.TotalBoxes)
	assert.Equal(t, 1, s.ActiveBoxes)
	assert.Equal(t, 2, s.TotalBaits)
	assert.Equal(t, 1, s.OccupiedBaits)
	assert.InDelta(t, 50, s.CaptureRate, 1e-9)
	assert.Equal(t, 3000, s.EstimatedBees)
	assert.InDelta(t, 2, s.TotalHoney, 1e-9)
	assert.Equal(t, 3, s.ExpansionForecast)
	assert.Equal(t, models.SpeciesJatai, s.TopProducer)
	require.Len(t, s.OverdueBaits, 1)
	assert.Equal(t, "1", s.OverdueBaits[0].Name)
}
