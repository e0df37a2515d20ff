package pipeline

import (
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Details is everything known about one person, with relatives resolved
// to names.
type Details struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Years      string `json:"years"`
	Status     string `json:"status"`
	BirthYear  *int   `json:"birth_year,omitempty"`
	DeathYear  *int   `json:"death_year,omitempty"`
	Subtitle   string `json:"subtitle,omitempty"`
	Location   string `json:"location,omitempty"`
	Photo      string `json:"photo,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Generation *int   `json:"generation,omitempty"` // Nil when not connected to the anchor

	Parents  []Relative `json:"parents"`
	Spouses  []Relative `json:"spouses"`
	Children []Relative `json:"children"`
}

// Relative is a short reference to another person.
type Relative struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Years string `json:"years"`
}

// Details returns the details of person id. Children are in sibling order.
func (s *Session) Details(id string) (*Details, error) {
	if err := errors.ValidatePersonID(id); err != nil {
		return nil, err
	}
	p, ok := s.idx.Person(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no person %q", id)
	}

	d := &Details{
		ID:        p.ID,
		Name:      p.DisplayName(),
		Years:     p.Years(),
		Status:    string(p.Status()),
		BirthYear: p.BirthYear,
		DeathYear: p.DeathYear,
		Subtitle:  p.Subtitle,
		Location:  p.Location,
		Photo:     p.Photo,
		Notes:     p.Notes,
		Parents:   s.relatives(s.idx.Parents(id)),
		Spouses:   s.relatives(s.partners(id)),
		Children:  s.relatives(s.idx.SortedChildren(id)),
	}
	if g, ok := s.gens.Lookup(id); ok {
		d.Generation = &g
	}
	return d, nil
}

// partners lists id's spouses from either side of the link, in union
// creation order.
func (s *Session) partners(id string) []string {
	us := s.unions.Of(id)
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.Other(id))
	}
	return out
}

func (s *Session) relatives(ids []string) []Relative {
	out := make([]Relative, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.idx.Person(id); ok {
			out = append(out, relative(p))
		}
	}
	return out
}

func relative(p *family.Person) Relative {
	return Relative{ID: p.ID, Name: p.DisplayName(), Years: p.Years()}
}
