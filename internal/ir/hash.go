package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainEvent  = "pandafill/event/v1"
	DomainOutput = "pandafill/output/v1"
	DomainConfig = "pandafill/config/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashCanonical marshals v canonically and hashes it under domain.
// Returns the canonical bytes alongside the hash so callers can store both.
func HashCanonical(domain string, v any) ([]byte, string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return nil, "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return canonical, hashWithDomain(domain, canonical), nil
}

// EventHash is the content hash of an input event.
func EventHash(ev *Event) (string, error) {
	_, h, err := HashCanonical(DomainEvent, ev)
	return h, err
}

// OutputHash is the content hash of an output event. The argument is any
// JSON-marshalable output record set.
func OutputHash(out any) (string, error) {
	_, h, err := HashCanonical(DomainOutput, out)
	return h, err
}

// ConfigHash is the content hash of a run configuration.
func ConfigHash(cfg any) (string, error) {
	_, h, err := HashCanonical(DomainConfig, cfg)
	return h, err
}

// MustEventHash is like EventHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustEventHash(ev *Event) string {
	h, err := EventHash(ev)
	if err != nil {
		panic(err)
	}
	return h
}
