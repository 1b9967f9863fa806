// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package format is the catalog of video display modes and pixel formats.
//
// Modes and formats are identified by four-character codes packed big-endian
// into a uint32 (the same representation used by broadcast SDKs and most
// third-party tooling). Every lookup is total: unknown codes resolve to zero
// sentinels instead of failing, so callers check for degeneracy (Known, zero
// width, zero depth) before acting on a result.
package format

import (
	"encoding/binary"
	"fmt"
)

// Code is a four-character code packed big-endian into 32 bits.
type Code uint32

// tagPad fills short tags so that every encoded tag is exactly four bytes.
const tagPad = ' '

// EncodeTag packs the first four bytes of tag big-endian. Shorter tags are
// right-padded with spaces and longer tags are truncated.
func EncodeTag(tag string) Code {
	var b [4]byte
	for i := range b {
		if i < len(tag) {
			b[i] = tag[i]
		} else {
			b[i] = tagPad
		}
	}
	return Code(binary.BigEndian.Uint32(b[:]))
}

// DecodeTag unpacks c into its four bytes.
func DecodeTag(c Code) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return string(b[:])
}

// IsZero reports whether c is the zero code, which no mode or format uses.
func (c Code) IsZero() bool { return c == 0 }

// String renders printable codes as their tag and everything else as hex.
func (c Code) String() string {
	tag := DecodeTag(c)
	for i := 0; i < len(tag); i++ {
		if tag[i] < 0x20 || tag[i] > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(c))
		}
	}
	return tag
}
