package ir

import "fmt"

// Product names of the input collections an event carries.
const (
	ProductMuons          = "slimmedMuons"
	ProductVertices       = "offlineSlimmedPrimaryVertices"
	ProductPFCandidates   = "packedPFCandidates"
	ProductGenParticles   = "prunedGenParticles"
	ProductTriggerObjects = "slimmedPatTrigger"
)

// Ptr is a typed identity token for an input object of kind T.
//
// A Ptr names the product (collection) the object lives in and its key
// (position) in that product. Two Ptrs are equal exactly when they refer to
// the same object of the same event. Ptrs may point into products the event
// does not carry; such Ptrs are valid identities that simply never resolve.
type Ptr[T any] struct {
	Product string `yaml:"product" json:"product"`
	Key     int    `yaml:"key" json:"key"`
}

// NewPtr creates a Ptr into the given product.
func NewPtr[T any](product string, key int) Ptr[T] {
	return Ptr[T]{Product: product, Key: key}
}

// IsNull reports whether the Ptr refers to nothing.
func (p Ptr[T]) IsNull() bool {
	return p.Product == ""
}

// IsNonnull reports whether the Ptr refers to an object.
func (p Ptr[T]) IsNonnull() bool {
	return p.Product != ""
}

func (p Ptr[T]) String() string {
	if p.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%s:%d", p.Product, p.Key)
}

// at resolves a key into a slice-backed product.
func at[T any](items []T, key int) (*T, bool) {
	if key < 0 || key >= len(items) {
		return nil, false
	}
	return &items[key], true
}
