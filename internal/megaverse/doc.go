// Package megaverse owns the domain vocabulary of the megaverse grid.
//
// Ownership boundary:
// - cell labels and entity descriptors
//
// - translation of raw current-map cells into labels
//
// - position and grid value types
//
// - the validation error taxonomy shared by the client and reconciler
//
// Nothing in this package performs I/O.
package megaverse
