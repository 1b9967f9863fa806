// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package format

import "strings"

// PixelFormat identifies a sample packing.
type PixelFormat Code

// Pixel formats. Format8BitARGB is the raw integer 32, not a packed tag.
//
// The RGB formats differ in byte order and range:
//   - Format10BitRGB: big-endian, SMPTE levels (64-960), packed 2:10:10:10
//   - Format12BitRGB: big-endian, full range (0-4095)
//   - Format12BitRGBLE: little-endian, full range (0-4095)
//   - Format10BitRGBXLE: little-endian, SMPTE levels (64-940)
//   - Format10BitRGBX: big-endian, SMPTE levels (64-940)
const (
	FormatUnknown PixelFormat = 0

	Format8BitYUV     PixelFormat = '2'<<24 | 'v'<<16 | 'u'<<8 | 'y'
	Format10BitYUV    PixelFormat = 'v'<<24 | '2'<<16 | '1'<<8 | '0'
	Format8BitARGB    PixelFormat = 32
	Format8BitBGRA    PixelFormat = 'B'<<24 | 'G'<<16 | 'R'<<8 | 'A'
	Format10BitRGB    PixelFormat = 'r'<<24 | '2'<<16 | '1'<<8 | '0'
	Format12BitRGB    PixelFormat = 'R'<<24 | '1'<<16 | '2'<<8 | 'B'
	Format12BitRGBLE  PixelFormat = 'R'<<24 | '1'<<16 | '2'<<8 | 'L'
	Format10BitRGBXLE PixelFormat = 'R'<<24 | '1'<<16 | '0'<<8 | 'l'
	Format10BitRGBX   PixelFormat = 'R'<<24 | '1'<<16 | '0'<<8 | 'b'
)

// Sampling is the sample structure of a pixel format.
type Sampling string

const (
	SamplingUnknown  Sampling = ""
	SamplingYCbCr422 Sampling = "YCbCr-4:2:2"
	SamplingRGB      Sampling = "RGB"
	SamplingARGB     Sampling = "ARGB"
	SamplingBGRA     Sampling = "BGRA"
)

// Colorimetry is the colour standard of a pixel format.
type Colorimetry string

const (
	ColorimetryUnknown   Colorimetry = ""
	ColorimetryBT601     Colorimetry = "BT601-5"
	ColorimetryBT709     Colorimetry = "BT709-2"
	ColorimetrySMPTE240M Colorimetry = "SMPTE240M"
	ColorimetryFull      Colorimetry = "FULL"
)

type formatInfo struct {
	format      PixelFormat
	name        string
	tags        []string // first entry is the canonical FourCC, the rest are aliases
	depth       int
	sampling    Sampling
	colorimetry Colorimetry
	rowBytes    func(width int) int
}

func bytesPerPixel(n int) func(int) int {
	return func(width int) int { return width * n }
}

// v210 packs 6 pixels in 16 bytes, rows aligned to 48-pixel / 128-byte groups.
func v210RowBytes(width int) int { return (width + 47) / 48 * 128 }

// 12-bit RGB packs 8 pixels in 36 bytes.
func rgb12RowBytes(width int) int { return (width + 7) / 8 * 36 }

var formatTable = []formatInfo{
	{Format8BitYUV, "8BitYUV", []string{"UYVY", "2vuy"}, 8, SamplingYCbCr422, ColorimetryBT601, bytesPerPixel(2)},
	{Format10BitYUV, "10BitYUV", []string{"v210", "pgroup"}, 10, SamplingYCbCr422, ColorimetryBT709, v210RowBytes},
	{Format8BitARGB, "8BitARGB", []string{"ARGB"}, 8, SamplingARGB, ColorimetryFull, bytesPerPixel(4)},
	{Format8BitBGRA, "8BitBGRA", []string{"BGRA"}, 8, SamplingBGRA, ColorimetryFull, bytesPerPixel(4)},
	{Format10BitRGB, "10BitRGB", []string{"r210"}, 10, SamplingRGB, ColorimetrySMPTE240M, bytesPerPixel(4)},
	{Format12BitRGB, "12BitRGB", []string{"R12B"}, 12, SamplingRGB, ColorimetryFull, rgb12RowBytes},
	{Format12BitRGBLE, "12BitRGBLE", []string{"R12L"}, 12, SamplingRGB, ColorimetryFull, rgb12RowBytes},
	{Format10BitRGBXLE, "10BitRGBXLE", []string{"R10l"}, 10, SamplingRGB, ColorimetrySMPTE240M, bytesPerPixel(4)},
	{Format10BitRGBX, "10BitRGBX", []string{"R10b"}, 10, SamplingRGB, ColorimetrySMPTE240M, bytesPerPixel(4)},
}

var (
	formatByCode   = make(map[PixelFormat]*formatInfo, len(formatTable))
	formatByFourCC = make(map[string]PixelFormat, 2*len(formatTable))
	formatByName   = make(map[string]PixelFormat, len(formatTable))
)

func init() {
	for i := range formatTable {
		f := &formatTable[i]
		formatByCode[f.format] = f
		formatByName[strings.ToLower(f.name)] = f.format
		for _, tag := range f.tags {
			formatByFourCC[tag] = f.format
		}
	}
}

func (f PixelFormat) info() (*formatInfo, bool) {
	info, ok := formatByCode[f]
	return info, ok
}

// Known reports whether f is a catalog member.
func (f PixelFormat) Known() bool {
	_, ok := f.info()
	return ok
}

// Depth is the bit depth per component, 0 for unknown formats.
func (f PixelFormat) Depth() int {
	if info, ok := f.info(); ok {
		return info.depth
	}
	return 0
}

// FourCC is the canonical external tag, which may differ from the internal
// code (8-bit YUV is "UYVY"). Empty for unknown formats.
func (f PixelFormat) FourCC() string {
	if info, ok := f.info(); ok {
		return info.tags[0]
	}
	return ""
}

// Sampling is the sample structure, empty for unknown formats.
func (f PixelFormat) Sampling() Sampling {
	if info, ok := f.info(); ok {
		return info.sampling
	}
	return SamplingUnknown
}

// Colorimetry is the colour standard, empty for unknown formats.
func (f PixelFormat) Colorimetry() Colorimetry {
	if info, ok := f.info(); ok {
		return info.colorimetry
	}
	return ColorimetryUnknown
}

// Aliases returns every external tag accepted for f, canonical first.
func (f PixelFormat) Aliases() []string {
	info, ok := f.info()
	if !ok {
		return nil
	}
	return append([]string(nil), info.tags...)
}

// Name is the human readable format name, empty for unknown formats.
func (f PixelFormat) Name() string {
	if info, ok := f.info(); ok {
		return info.name
	}
	return ""
}

func (f PixelFormat) String() string {
	if name := f.Name(); name != "" {
		return name
	}
	return Code(f).String()
}

// FormatForFourCC is the inverse of FourCC. It also accepts the documented
// aliases: "pgroup" for 10-bit YUV and "2vuy" for 8-bit YUV.
func FormatForFourCC(tag string) (PixelFormat, bool) {
	if f, ok := formatByFourCC[tag]; ok {
		return f, true
	}
	return FormatUnknown, false
}

// ParsePixelFormat resolves a format from a FourCC or alias, its internal
// tag, or its name ("10BitYUV", case-insensitive).
func ParsePixelFormat(s string) (PixelFormat, bool) {
	if f, ok := FormatForFourCC(s); ok {
		return f, true
	}
	if s != "" && len(s) <= 4 {
		if f := PixelFormat(EncodeTag(s)); f.Known() {
			return f, true
		}
	}
	if f, ok := formatByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, true
	}
	return FormatUnknown, false
}

// PixelFormats lists every catalog format in catalog order.
func PixelFormats() []PixelFormat {
	out := make([]PixelFormat, 0, len(formatTable))
	for _, f := range formatTable {
		out = append(out, f.format)
	}
	return out
}

// RowBytes is the packed size of one line of width pixels in f.
func RowBytes(width int, f PixelFormat) int {
	info, ok := f.info()
	if !ok || width <= 0 {
		return 0
	}
	return info.rowBytes(width)
}

// FrameBytes is the packed size of one full frame (both fields for
// interlaced modes). Zero when either side is unknown.
func FrameBytes(m DisplayMode, f PixelFormat) int {
	return RowBytes(m.Width(), f) * m.Height()
}
