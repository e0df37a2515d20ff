package hierarchy

import "github.com/matzehuels/kintree/pkg/family"

// Kind distinguishes the two entity variants a tree node can wrap.
type Kind int

const (
	// KindPerson wraps a single person.
	KindPerson Kind = iota
	// KindUnion wraps a partnership and its shared children.
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindPerson:
		return "person"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

// Entity is the payload of a tree node: either a [PersonEntity] or a
// [UnionEntity]. The set is closed; consumers switch on the concrete type
// and treat any other value as a programming error.
type Entity interface {
	ID() string
	Kind() Kind
	entity()
}

// PersonEntity wraps one person.
type PersonEntity struct {
	Person *family.Person
}

func (e PersonEntity) ID() string { return e.Person.ID }
func (e PersonEntity) Kind() Kind { return KindPerson }
func (PersonEntity) entity()      {}

// UnionEntity wraps a union together with both partner records, so
// renderers can draw the couple without another lookup.
type UnionEntity struct {
	Union    *family.Union
	Partners [2]*family.Person
}

func (e UnionEntity) ID() string { return e.Union.ID }
func (e UnionEntity) Kind() Kind { return KindUnion }
func (UnionEntity) entity()      {}

// PartnerIDs returns the ids of both partners, sorted.
func (e UnionEntity) PartnerIDs() [2]string { return e.Union.Partners }
