package family

import (
	"strconv"
	"strings"
)

// Status describes whether a person is known to be alive.
type Status string

const (
	StatusLiving   Status = "living"
	StatusDeceased Status = "deceased"
	StatusUnknown  Status = "unknown"
)

// Person is a single record from the family document.
//
// Optional fields default to their zero value when absent from the source;
// a missing field is never an error.
type Person struct {
	ID        string   `json:"id" bson:"id"`
	Name      string   `json:"name" bson:"name"`
	BirthYear *int     `json:"birthYear,omitempty" bson:"birthYear,omitempty"`
	DeathYear *int     `json:"deathYear,omitempty" bson:"deathYear,omitempty"`
	Subtitle  string   `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Location  string   `json:"location,omitempty" bson:"location,omitempty"`
	Photo     string   `json:"photo,omitempty" bson:"photo,omitempty"`
	Notes     string   `json:"notes,omitempty" bson:"notes,omitempty"`
	ParentIDs []string `json:"parentIds,omitempty" bson:"parentIds,omitempty"`
	SpouseIDs []string `json:"spouseIds,omitempty" bson:"spouseIds,omitempty"`
	Order     int      `json:"order,omitempty" bson:"order,omitempty"` // Sibling-order hint
}

// Status derives the living/deceased marker shown next to a person.
// A death year wins over a birth year; neither means unknown.
func (p *Person) Status() Status {
	switch {
	case p.DeathYear != nil:
		return StatusDeceased
	case p.BirthYear != nil:
		return StatusLiving
	default:
		return StatusUnknown
	}
}

// Years formats the life span as "1901–1980", "1950" or "—".
func (p *Person) Years() string {
	var b strings.Builder
	if p.BirthYear != nil {
		b.WriteString(strconv.Itoa(*p.BirthYear))
	}
	if p.DeathYear != nil {
		b.WriteString("–")
		b.WriteString(strconv.Itoa(*p.DeathYear))
	}
	if b.Len() == 0 {
		return "—"
	}
	return b.String()
}

// DisplayName returns the name, falling back to the id for unnamed records.
func (p *Person) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Document is the input contract consumed from a loader.
type Document struct {
	People []Person `json:"people" bson:"people"`
}

// Year returns a pointer to y, for building [Person] literals.
func Year(y int) *int { return &y }
