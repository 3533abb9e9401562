// Package testutil provides event fixtures, a fixed run token generator and
// an in-memory sink shared by the engine, harness and CLI tests.
package testutil
