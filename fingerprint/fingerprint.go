// Package fingerprint computes durable integer keys for translation requests.
//
// Keys are written to disk as cache file names and reused as the default
// sampling seed, so the encoding must never change between releases:
// every field is length-prefixed and hashed with xxhash64.
package fingerprint

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hasher accumulates typed fields into a stable digest.
type Hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

// New returns an empty Hasher.
func New() *Hasher {
	return &Hasher{d: xxhash.New()}
}

// String adds a length-prefixed string.
func (h *Hasher) String(s string) *Hasher {
	h.Uint64(uint64(len(s)))
	_, _ = h.d.WriteString(s)
	return h
}

// Int64 adds a signed integer.
func (h *Hasher) Int64(v int64) *Hasher {
	return h.Uint64(uint64(v))
}

// Uint64 adds an unsigned integer in little-endian order.
func (h *Hasher) Uint64(v uint64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
	return h
}

// OptionalUint32 adds a presence tag followed by the value when set,
// so that "unset" and "0" hash differently.
func (h *Hasher) OptionalUint32(v *uint32) *Hasher {
	if v == nil {
		_, _ = h.d.Write([]byte{0})
		return h
	}
	_, _ = h.d.Write([]byte{1})
	return h.Uint64(uint64(*v))
}

// Sum63 returns the digest reduced to the non-negative int64 range.
func (h *Hasher) Sum63() int64 {
	return int64(h.d.Sum64() % math.MaxInt64)
}

// Request fingerprints the identity fields of a translation request.
func Request(model string, seed int64, maxCompletionTokens *uint32, prompt string) int64 {
	return New().
		String(model).
		Int64(seed).
		OptionalUint32(maxCompletionTokens).
		String(prompt).
		Sum63()
}

// Prompt fingerprints prompt text alone. It is the default seed for requests
// that do not set one explicitly.
func Prompt(prompt string) int64 {
	return New().String(prompt).Sum63()
}
