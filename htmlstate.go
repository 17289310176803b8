// Package htmlstate converts HTML fragments into the typed document tree
// consumed by a rich-content editor and serializes it as editor-state JSON.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, lexical/, http/).
package htmlstate
