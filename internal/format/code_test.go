// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTag_BigEndian(t *testing.T) {
	assert.Equal(t, Code(0x48693530), EncodeTag("Hi50"))
	assert.Equal(t, Code(0x76323130), EncodeTag("v210"))
	assert.Equal(t, Code(ModePAL), EncodeTag("pal "))
}

func TestEncodeTag_PadsAndTruncates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "    "},
		{"short", "pal", "pal "},
		{"exact", "ntsc", "ntsc"},
		{"long", "pgroup", "pgro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeTag(EncodeTag(tt.in)))
		})
	}
}

func TestTagRoundTrip_Catalog(t *testing.T) {
	for _, m := range Modes() {
		tag := m.Tag()
		require.Len(t, tag, 4)
		assert.Equal(t, m, DisplayMode(EncodeTag(tag)), "mode %s", m)
	}
	for _, f := range PixelFormats() {
		if f == Format8BitARGB {
			continue // raw integer, not a printable tag
		}
		tag := DecodeTag(Code(f))
		assert.Equal(t, f, PixelFormat(EncodeTag(tag)), "format %s", f)
	}
}

func TestPixelFormatCodes(t *testing.T) {
	tests := []struct {
		format PixelFormat
		tag    string
	}{
		{Format8BitYUV, "2vuy"},
		{Format10BitYUV, "v210"},
		{Format8BitBGRA, "BGRA"},
		{Format10BitRGB, "r210"},
		{Format12BitRGB, "R12B"},
		{Format12BitRGBLE, "R12L"},
		{Format10BitRGBXLE, "R10l"},
		{Format10BitRGBX, "R10b"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.tag, DecodeTag(Code(tt.format)))
		})
	}
	assert.Equal(t, PixelFormat(32), Format8BitARGB)
	assert.Zero(t, FormatUnknown)
}

func TestTagRoundTrip_ArbitraryBytes(t *testing.T) {
	for _, c := range []Code{0, 1, 32, 0x7f7f7f7f, 0x80ff0001, 0xffffffff} {
		assert.Equal(t, c, EncodeTag(DecodeTag(c)))
	}
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "Hi50", Code(ModeHD1080i50).String())
	assert.Equal(t, "0x00000020", Code(Format8BitARGB).String())
	assert.True(t, Code(0).IsZero())
}
