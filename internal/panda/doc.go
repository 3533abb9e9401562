// Package panda defines the flattened output schema filled once per event:
// ordered record collections, index references between them, and the branch
// declarations that describe which fields a run mode writes.
package panda
