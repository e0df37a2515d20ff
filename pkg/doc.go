// Package pkg provides the core libraries for Kintree family tree layout.
//
// # Overview
//
// Kintree turns a genealogy dataset (people with parent and spouse links)
// into a node-and-link diagram: couples share one union box, children hang
// below their union, every generation sits on its own row, and the viewer
// can collapse, expand and focus branches. The pkg directory is organized
// into three areas:
//
//  1. Domain logic: [family], [hierarchy], [layout], [view]
//  2. Orchestration and output: [pipeline], [render], [render/nodelink]
//  3. Infrastructure: [cache], [session], [errors], [observability],
//     [source/mongo], [buildinfo]
//
// # Architecture
//
// The data flow through Kintree:
//
//	family.json / MongoDB
//	         ↓
//	    [family] package (index, unions, generations, diagnostics)
//	         ↓
//	    [hierarchy] package (visible forest, reads view state)
//	         ↓
//	    [layout] package (tidy tree, forest packing, dedup reconciliation)
//	         ↓
//	    [render] package (layout.json contract, DOT, SVG, PNG, PDF)
//
// Every toggle or focus re-runs the hierarchy and layout stages in full;
// only the [view] state persists between passes.
//
// # Quick Start
//
//	doc, _ := family.ReadFile("family.json")
//	sess, _ := pipeline.Load(ctx, doc, pipeline.Options{Anchor: "ann"})
//
//	_, _ = sess.Toggle(ctx, "union:ann+bob")
//	_, _ = sess.Focus(ctx, "eve")
//
//	_ = render.WriteLayoutFile(sess.Contract(), "family.layout.json")
//
// # Main Packages
//
// [family] - The dataset model and the structural passes that run once per
// load: id index, union synthesis and generation assignment relative to an
// anchor. Non-fatal problems are reported as diagnostics.
//
// [hierarchy] - Builds the visible forest from the index and the current
// view state. Person and union nodes are a sealed [hierarchy.Entity] sum
// type.
//
// [layout] - Deterministic tidy-tree coordinates per tree, forest packing,
// and reconciliation so that every id appears exactly once.
//
// [view] - Per-node expand state, focus and viewport. Mutated only by
// toggle, focus, expand-all and collapse-all.
//
// [pipeline] - Options, the [pipeline.Session] tying the stages together,
// and a cached [pipeline.Runner] producing render artifacts.
//
// [render] - The JSON render contract consumed by the CLI, the explorer and
// the HTTP shell, plus format conversion.
//
// [cache], [session] - Layout cache (file, Redis, null) and viewer session
// stores (memory, file).
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/hierarchy
// [layout]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/layout
// [view]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/view
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/session
// [errors]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/observability
// [source/mongo]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/source/mongo
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/buildinfo
package pkg
