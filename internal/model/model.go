// Package model defines the typed records produced by the document parsers and
// the derivation stage, along with their fixed tabular layouts.
package model

// SkillNames is the fixed skill vocabulary, in output column order.
var SkillNames = []string{
	"Sailing", "Rigging", "Carpentry", "Patching", "Bilging", "Gunning", "Treasure Haul", "Navigating",
	"Battle Navigation", "Swordfighting", "Rumble", "Drinking", "Spades", "Hearts", "Treasure Drop",
	"Poker", "Distilling", "Alchemistry", "Shipwrightery", "Blacksmithing", "Foraging", "Weaving",
}

// IsSkill reports whether name is one of SkillNames.
func IsSkill(name string) bool {
	for _, s := range SkillNames {
		if s == name {
			return true
		}
	}
	return false
}

// Crew is one row of the flag's crew roster.
type Crew struct {
	Name    string
	URL     string
	Rank    string
	Members string
	Fame    string
}

// Columns returns the crews table header.
func (Crew) Columns() []string {
	return []string{"Crew Name", "Crew URL", "Rank", "Members", "Fame"}
}

// Values returns the row in Columns order.
func (c Crew) Values() []string {
	return []string{c.Name, c.URL, c.Rank, c.Members, c.Fame}
}

// CrewDetail is extracted from a crew's info page.
type CrewDetail struct {
	CrewName        string
	PublicStatement string
	Captain         string
	CrewURL         string
}

// Columns returns the crew details table header.
func (CrewDetail) Columns() []string {
	return []string{"Crew Name", "Public Statement", "Captain", "Crew URL"}
}

// Values returns the row in Columns order.
func (d CrewDetail) Values() []string {
	return []string{d.CrewName, d.PublicStatement, d.Captain, d.CrewURL}
}

// PirateURL links a pirate profile to the crew page it was listed on.
type PirateURL struct {
	PirateURL  string
	PirateName string
	CrewName   string
	CrewURL    string
}

// Columns returns the pirate URL table header.
func (PirateURL) Columns() []string {
	return []string{"Pirate URL", "Pirate Name", "Crew Name", "Crew URL"}
}

// Values returns the row in Columns order.
func (p PirateURL) Values() []string {
	return []string{p.PirateURL, p.PirateName, p.CrewName, p.CrewURL}
}

// Pirate is a parsed pirate profile. Skills is keyed by SkillNames; a missing
// key renders as an empty cell.
type Pirate struct {
	URL      string
	Name     string
	CrewRank string
	CrewName string
	FlagRole string
	FlagName string
	Skills   map[string]string
}

// Columns returns the pirates table header.
func (Pirate) Columns() []string {
	cols := []string{"Pirate URL", "Pirate Name", "Crew Rank", "Crew Name", "Flag Role", "Flag Name"}
	return append(cols, SkillNames...)
}

// Values returns the row in Columns order.
func (p Pirate) Values() []string {
	row := []string{p.URL, p.Name, p.CrewRank, p.CrewName, p.FlagRole, p.FlagName}
	for _, skill := range SkillNames {
		row = append(row, p.Skills[skill])
	}
	return row
}

// Shop sizes.
const (
	SizeShoppe = "Shoppe"
	SizeStall  = "Stall"
)

// Ownership roles.
const (
	RoleOwns    = "Owns"
	RoleManages = "Manages"
)

// LocationError marks a shop whose name/location could not be extracted.
const LocationError = "Error"

// Shop is one shoppe or stall owned or managed by a pirate.
type Shop struct {
	PirateName string
	CrewName   string
	Type       string
	Size       string
	Name       string
	Location   string
	Role       string
}

// Columns returns the shoppes table header.
func (Shop) Columns() []string {
	return []string{"Pirate Name", "Crew Name", "Shop Type", "Shop size", "Shop Name", "Location", "Ownership Role"}
}

// Values returns the row in Columns order.
func (s Shop) Values() []string {
	return []string{s.PirateName, s.CrewName, s.Type, s.Size, s.Name, s.Location, s.Role}
}

// Failure records one input key that could not be fetched or parsed.
type Failure struct {
	Key     string
	Kind    string
	Message string
}

// FailureColumns returns the failure table header for a stage keyed by keyColumn.
func FailureColumns(keyColumn string) []string {
	return []string{keyColumn, "Error Type", "Message"}
}

// Values returns the row in FailureColumns order.
func (f Failure) Values() []string {
	return []string{f.Key, f.Kind, f.Message}
}

// Royal is a pirate holding one of the recognised flag titles.
type Royal struct {
	PirateName string
	FlagRole   string
	FlagName   string
	CrewName   string
	CrewRank   string
	PirateURL  string
}

// Columns returns the royals table header.
func (Royal) Columns() []string {
	return []string{"Pirate Name", "Flag Role", "Flag Name", "Crew Name", "Crew Rank", "Pirate URL"}
}

// Values returns the row in Columns order.
func (r Royal) Values() []string {
	return []string{r.PirateName, r.FlagRole, r.FlagName, r.CrewName, r.CrewRank, r.PirateURL}
}
