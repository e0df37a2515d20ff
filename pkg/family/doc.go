// Package family provides the genealogical graph model used by kintree.
//
// # Overview
//
// A family dataset is a flat list of [Person] records linked by parent and
// spouse references. This package turns that list into lookup structures the
// layout engine can work with:
//
//   - [Index]: id → person lookup plus a parent → children index
//   - [Unions]: partnerships synthesized from spouse references and shared children
//   - [Generations]: per-person generation offsets relative to an anchor person
//
// Construction is strict about identity and lenient about references. Two
// records sharing an id abort construction with [ErrDuplicateID], while a
// parent or spouse id that points at nobody is dropped and reported as a
// [Diagnostic] so partial datasets still render.
//
// # Domain Constraints
//
// Every person has at most two parents, and a child is exactly one generation
// below its parents. Marriage links may form cycles; descent links should not.
//
// # Usage
//
//	doc, err := family.ReadFile("family.json")
//	if err != nil {
//	    return err
//	}
//	idx, err := family.NewIndex(doc.People)
//	if err != nil {
//	    return err // duplicate or malformed records
//	}
//	unions := family.SynthesizeUnions(idx)
//	gens, diags := family.AssignGenerations(idx, "jane-doe")
//
// All types are read-only after construction and safe to share between
// readers. None of them is modified by later pipeline stages.
package family
