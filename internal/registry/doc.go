// Package registry provides an insertion-ordered, name-keyed collection.
//
// Iteration order is the registration order, which keeps sums over
// registered items reproducible from one run to the next.
package registry
