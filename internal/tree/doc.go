// Package tree defines the root topology seen by the soil component.
//
// The soil component never owns the tree. It only needs to enumerate the
// live entities and, when new entities appear, find their parent:
//
//   - [Tree]: read-only view implemented by the growth component
//   - [Graph]: in-memory implementation used by runs and tests
//
// Entities are identified by [ID] and are never removed.
package tree
