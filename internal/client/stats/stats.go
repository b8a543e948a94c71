// Package stats derives the dashboard figures shown by the CLI from a
// state snapshot. Everything here is pure and clock-free; callers pass
// "today" explicitly.
package stats

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/melitton/internal/models"
)

const (
	// BeesPerBox is the rough colony size used for the population estimate.
	BeesPerBox = 3000
	// ExpansionFactor projects next season's box count.
	ExpansionFactor = 1.5
)

var leadingNumber = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseQuantity returns the number a harvest quantity starts with:
// "500ml" is 500, "1.5 L" is 1.5. Anything else is 0.
func ParseQuantity(q string) float64 {
	m := leadingNumber.FindString(q)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func boxHoney(b models.Box) float64 {
	var total float64
	for _, l := range b.ManagementHistory {
		if l.Type == models.LogHarvest {
			total += ParseQuantity(l.Quantity)
		}
	}
	return total
}

// TotalHoney sums the harvest quantities of every box.
func TotalHoney(boxes []models.Box) float64 {
	var total float64
	for _, b := range boxes {
		total += boxHoney(b)
	}
	return total
}

type SpeciesTotal struct {
	Species models.Species
	Total   float64
}

// HoneyBySpecies totals harvests per species, largest first. Every species
// with at least one box is listed, even with no harvest.
func HoneyBySpecies(boxes []models.Box) []SpeciesTotal {
	totals := map[models.Species]float64{}
	for _, b := range boxes {
		totals[b.Species] += boxHoney(b)
	}

	out := make([]SpeciesTotal, 0, len(totals))
	for sp, v := range totals {
		out = append(out, SpeciesTotal{Species: sp, Total: v})
	}
	slices.SortFunc(out, func(a, b SpeciesTotal) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return strings.Compare(string(a.Species), string(b.Species))
	})
	return out
}

// TopProducer is the species with the largest harvest, if any box exists.
func TopProducer(boxes []models.Box) (models.Species, bool) {
	by := HoneyBySpecies(boxes)
	if len(by) == 0 {
		return "", false
	}
	return by[0].Species, true
}

type SpeciesCount struct {
	Species models.Species
	Count   int
}

// SpeciesDistribution counts boxes per species, most common first.
func SpeciesDistribution(boxes []models.Box) []SpeciesCount {
	counts := map[models.Species]int{}
	for _, b := range boxes {
		counts[b.Species]++
	}

	out := make([]SpeciesCount, 0, len(counts))
	for sp, n := range counts {
		out = append(out, SpeciesCount{Species: sp, Count: n})
	}
	slices.SortFunc(out, func(a, b SpeciesCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(string(a.Species), string(b.Species))
	})
	return out
}

func ActiveBoxes(boxes []models.Box) int {
	n := 0
	for _, b := range boxes {
		if b.Status == models.BoxActive {
			n++
		}
	}
	return n
}

func OccupiedBaits(baits []models.Bait) int {
	n := 0
	for _, b := range baits {
		if b.Status.State == models.BaitOccupied {
			n++
		}
	}
	return n
}

// CaptureRate is the share of occupied baits in percent, 0 with no baits.
func CaptureRate(baits []models.Bait) float64 {
	if len(baits) == 0 {
		return 0
	}
	return float64(OccupiedBaits(baits)) / float64(len(baits)) * 100
}

func EstimatedBees(boxes []models.Box) int {
	return ActiveBoxes(boxes) * BeesPerBox
}

func MonthlyHoneyAverage(boxes []models.Box) float64 {
	return TotalHoney(boxes) / 12
}

func ExpansionForecast(boxes []models.Box) int {
	return int(math.Round(float64(len(boxes)) * ExpansionFactor))
}

// OverdueBaits returns the baits whose next inspection is before today,
// in their original order. Baits with an unparsable date are skipped.
func OverdueBaits(baits []models.Bait, today time.Time) []models.Bait {
	cutoff := models.FormatDate(today)
	var out []models.Bait
	for _, b := range baits {
		if _, err := models.ParseDate(b.NextInspectionDate); err != nil {
			continue
		}
		if models.NormalizeDate(b.NextInspectionDate) < cutoff {
			out = append(out, b)
		}
	}
	return out
}

// Filter narrows a box listing. Zero fields match everything.
type Filter struct {
	Search  string
	Species models.Species
	Status  models.BoxStatus
}

// FilterBoxes keeps boxes whose name or id contains Search (ignoring case)
// and that match Species and Status when those are set.
func FilterBoxes(boxes []models.Box, f Filter) []models.Box {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []models.Box
	for _, b := range boxes {
		if needle != "" &&
			!strings.Contains(strings.ToLower(b.Name), needle) &&
			!strings.Contains(strings.ToLower(b.ID), needle) {
			continue
		}
		if f.Species != "" && b.Species != f.Species {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Summary is every dashboard figure at once.
type Summary struct {
	TotalBoxes          int
	ActiveBoxes         int
	TotalBaits          int
	OccupiedBaits       int
	CaptureRate         float64
	EstimatedBees       int
	TotalHoney          float64
	MonthlyHoneyAverage float64
	ExpansionForecast   int
	TopProducer         models.Species
	HoneyBySpecies      []SpeciesTotal
	SpeciesDistribution []SpeciesCount
	OverdueBaits        []models.Bait
}

func Summarize(st models.State, today time.Time) Summary {
	top, _ := TopProducer(st.Boxes)
	return Summary{
		TotalBoxes:          len(st.Boxes),
		ActiveBoxes:         ActiveBoxes(st.Boxes),
		TotalBaits:          len(st.Baits),
		OccupiedBaits:       OccupiedBaits(st.Baits),
		CaptureRate:         CaptureRate(st.Baits),
		EstimatedBees:       EstimatedBees(st.Boxes),
		TotalHoney:          TotalHoney(st.Boxes),
		MonthlyHoneyAverage: MonthlyHoneyAverage(st.Boxes),
		ExpansionForecast:   ExpansionForecast(st.Boxes),
		TopProducer:         top,
		HoneyBySpecies:      HoneyBySpecies(st.Boxes),
		SpeciesDistribution: SpeciesDistribution(st.Boxes),
		OverdueBaits:        OverdueBaits(st.Baits, today),
	}
}
