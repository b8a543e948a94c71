package models

import "slices"

// Species is a stingless-bee species. Values are the labels used on the wire.
type Species string

const (
	SpeciesJatai      Species = "Jataí"
	SpeciesMandacaia  Species = "Mandaçaia"
	SpeciesUrucu      Species = "Uruçu"
	SpeciesMirim      Species = "Mirim"
	SpeciesIrai       Species = "Iraí"
	SpeciesBugia      Species = "Bugia"
	SpeciesTubuna     Species = "Tubuna"
	SpeciesMandaguari Species = "Mandaguari"
	SpeciesOther      Species = "Outra"
)

// AllSpecies lists every species in display order.
var AllSpecies = []Species{
	SpeciesJatai, SpeciesMandacaia, SpeciesUrucu, SpeciesMirim, SpeciesIrai,
	SpeciesBugia, SpeciesTubuna, SpeciesMandaguari, SpeciesOther,
}

func (s Species) Valid() bool { return slices.Contains(AllSpecies, s) }

// BoxStatus is the health of a colony.
type BoxStatus string

const (
	BoxActive      BoxStatus = "ativa"
	BoxObservation BoxStatus = "em observação"
	BoxSwarmed     BoxStatus = "enxameada"
	BoxDead        BoxStatus = "morta"
)

var AllBoxStatuses = []BoxStatus{BoxActive, BoxObservation, BoxSwarmed, BoxDead}

func (s BoxStatus) Valid() bool { return slices.Contains(AllBoxStatuses, s) }

// Origin tells how a colony was obtained.
type Origin string

const (
	OriginCapture  Origin = "captura"
	OriginDivision Origin = "divisão"
	OriginPurchase Origin = "compra"
)

var AllOrigins = []Origin{OriginCapture, OriginDivision, OriginPurchase}

func (o Origin) Valid() bool { return slices.Contains(AllOrigins, o) }

// LogType is the kind of management event.
type LogType string

const (
	LogInspection LogType = "inspeção"
	LogFeeding    LogType = "alimentação"
	LogDivision   LogType = "divisão"
	LogHarvest    LogType = "colheita"
	LogTreatment  LogType = "tratamento"
	LogRelocation LogType = "mudança"
)

var AllLogTypes = []LogType{LogInspection, LogFeeding, LogDivision, LogHarvest, LogTreatment, LogRelocation}

func (t LogType) Valid() bool { return slices.Contains(AllLogTypes, t) }

// Label returns the long description shown in listings.
func (t LogType) Label() string {
	switch t {
	case LogInspection:
		return "Inspeção de Rotina"
	case LogFeeding:
		return "Alimentação"
	case LogDivision:
		return "Divisão / Multiplicação"
	case LogHarvest:
		return "Colheita de Mel"
	case LogTreatment:
		return "Tratamento Sanitário"
	case LogRelocation:
		return "Mudança de Local"
	default:
		return string(t)
	}
}

// BaitState is the occupancy of a bait trap.
type BaitState string

const (
	BaitEmpty     BaitState = "vazia"
	BaitOccupied  BaitState = "ocupada"
	BaitCollected BaitState = "coletada"
)

var AllBaitStates = []BaitState{BaitEmpty, BaitOccupied, BaitCollected}

func (s BaitState) Valid() bool { return slices.Contains(AllBaitStates, s) }

// Theme is the UI color scheme kept in settings.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// SyncState is the client-side replication tag of a record. The server
// never stores or emits it.
type SyncState string

const (
	// SyncPending marks a record that still has to be pushed to the server.
	SyncPending SyncState = "pending"
	// SyncConfirmed marks a record whose last write reached the server.
	SyncConfirmed SyncState = "confirmed"
)
