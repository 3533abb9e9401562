// Package ir provides the input data model for pandafill: the reconstructed
// event records handed to fillers by the host.
//
// This package contains type definitions, identity tokens, decoding and
// canonical hashing only. All other internal packages import ir; ir imports
// nothing internal.
//
// Key design constraints:
//   - Input objects are immutable while an event is processed
//   - Identity is a typed Ptr (product name + key), unique within the event
//     and stable across fillers
//   - Ptr values are comparable so they can key object maps directly
//   - Canonical JSON (sorted keys, NFC strings) is the only serialization
//     used for content hashes
package ir
