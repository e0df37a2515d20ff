// Package hierarchy converts the family graph into a forest of trees that a
// tidy-tree layout can consume.
//
// Family graphs are not trees: a child has two parents, and descent lines
// reconverge when relatives marry. The builder cuts the graph into trees
// using two rules:
//
//   - Couples are folded into union nodes. A person whose primary partner
//     shares children with them descends through a [UnionEntity], so shared
//     children are attached once, not once per parent.
//   - Roots are couples where neither partner has parents, plus single people
//     with no parents and no spouse.
//
// The same person may still occur in more than one tree. That is expected
// here and resolved by the layout package.
//
// Which children are materialized on a pass is delegated to a [ChildSource].
// The view package implements it to hide collapsed subtrees; [Builder.Full]
// materializes everything.
package hierarchy
