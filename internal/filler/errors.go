package filler

import "fmt"

// TypeMismatchError reports an input object that lacks a capability the
// filler requires, such as a muon without a best track. It is fatal for the
// event.
type TypeMismatchError struct {
	Filler     string
	Object     string
	Capability string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: input %s does not provide %s", e.Filler, e.Object, e.Capability)
}
