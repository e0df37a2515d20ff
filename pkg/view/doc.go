// Package view holds the interactive state layered over a family forest.
//
// A [Controller] tracks three independent things:
//
//   - Expand state per node. Collapsing a node parks its children in the
//     node's [Entry] and expanding restores them unchanged, so a toggle
//     followed by a second toggle reproduces the previous layout exactly.
//   - The focused node, at most one. Focusing expands the ancestor chain of
//     the node but leaves every other node alone.
//   - The [Viewport] transform used by interactive renderers.
//
// The controller is a [hierarchy.ChildSource]: after every change the caller
// rebuilds the forest from it and lays it out again.
package view
