// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package format

import "strings"

// DisplayMode identifies a video timing standard.
type DisplayMode Code

// Display modes. The 1080i and NTSC/PAL grains follow the device convention:
// 1080i50 and PAL are expressed per frame, 1080i59.94/60 per field.
const (
	ModeNTSC     DisplayMode = 'n'<<24 | 't'<<16 | 's'<<8 | 'c'
	ModeNTSC2398 DisplayMode = 'n'<<24 | 't'<<16 | '2'<<8 | '3' // 3:2 pulldown on the card
	ModePAL      DisplayMode = 'p'<<24 | 'a'<<16 | 'l'<<8 | ' '
	ModeNTSCp    DisplayMode = 'n'<<24 | 't'<<16 | 's'<<8 | 'p'
	ModePALp     DisplayMode = 'p'<<24 | 'a'<<16 | 'l'<<8 | 'p'

	ModeHD1080p2398 DisplayMode = '2'<<24 | '3'<<16 | 'p'<<8 | 's'
	ModeHD1080p24   DisplayMode = '2'<<24 | '4'<<16 | 'p'<<8 | 's'
	ModeHD1080p25   DisplayMode = 'H'<<24 | 'p'<<16 | '2'<<8 | '5'
	ModeHD1080p2997 DisplayMode = 'H'<<24 | 'p'<<16 | '2'<<8 | '9'
	ModeHD1080p30   DisplayMode = 'H'<<24 | 'p'<<16 | '3'<<8 | '0'
	ModeHD1080i50   DisplayMode = 'H'<<24 | 'i'<<16 | '5'<<8 | '0'
	ModeHD1080i5994 DisplayMode = 'H'<<24 | 'i'<<16 | '5'<<8 | '9'
	ModeHD1080i6000 DisplayMode = 'H'<<24 | 'i'<<16 | '6'<<8 | '0' // really 60.00 Hz
	ModeHD1080p50   DisplayMode = 'H'<<24 | 'p'<<16 | '5'<<8 | '0'
	ModeHD1080p5994 DisplayMode = 'H'<<24 | 'p'<<16 | '5'<<8 | '9'
	ModeHD1080p6000 DisplayMode = 'H'<<24 | 'p'<<16 | '6'<<8 | '0' // really 60.00 Hz

	ModeHD720p50   DisplayMode = 'h'<<24 | 'p'<<16 | '5'<<8 | '0'
	ModeHD720p5994 DisplayMode = 'h'<<24 | 'p'<<16 | '5'<<8 | '9'
	ModeHD720p60   DisplayMode = 'h'<<24 | 'p'<<16 | '6'<<8 | '0'

	Mode2k2398 DisplayMode = '2'<<24 | 'k'<<16 | '2'<<8 | '3'
	Mode2k24   DisplayMode = '2'<<24 | 'k'<<16 | '2'<<8 | '4'
	Mode2k25   DisplayMode = '2'<<24 | 'k'<<16 | '2'<<8 | '5'

	// DCI modes are output only.
	Mode2kDCI2398 DisplayMode = '2'<<24 | 'd'<<16 | '2'<<8 | '3'
	Mode2kDCI24   DisplayMode = '2'<<24 | 'd'<<16 | '2'<<8 | '4'
	Mode2kDCI25   DisplayMode = '2'<<24 | 'd'<<16 | '2'<<8 | '5'

	Mode4K2160p2398 DisplayMode = '4'<<24 | 'k'<<16 | '2'<<8 | '3'
	Mode4K2160p24   DisplayMode = '4'<<24 | 'k'<<16 | '2'<<8 | '4'
	Mode4K2160p25   DisplayMode = '4'<<24 | 'k'<<16 | '2'<<8 | '5'
	Mode4K2160p2997 DisplayMode = '4'<<24 | 'k'<<16 | '2'<<8 | '9'
	Mode4K2160p30   DisplayMode = '4'<<24 | 'k'<<16 | '3'<<8 | '0'
	Mode4K2160p50   DisplayMode = '4'<<24 | 'k'<<16 | '5'<<8 | '0'
	Mode4K2160p5994 DisplayMode = '4'<<24 | 'k'<<16 | '5'<<8 | '9'
	Mode4K2160p60   DisplayMode = '4'<<24 | 'k'<<16 | '6'<<8 | '0'

	Mode4kDCI2398 DisplayMode = '4'<<24 | 'd'<<16 | '2'<<8 | '3'
	Mode4kDCI24   DisplayMode = '4'<<24 | 'd'<<16 | '2'<<8 | '4'
	Mode4kDCI25   DisplayMode = '4'<<24 | 'd'<<16 | '2'<<8 | '5'

	// ModeUnknown is the sentinel reported for codes outside the catalog.
	ModeUnknown DisplayMode = 'i'<<24 | 'u'<<16 | 'n'<<8 | 'k'
)

// FieldDominance describes the field order of a mode.
type FieldDominance Code

const (
	FieldUnknown     FieldDominance = 0
	FieldLowerFirst  FieldDominance = 'l'<<24 | 'o'<<16 | 'w'<<8 | 'r'
	FieldUpperFirst  FieldDominance = 'u'<<24 | 'p'<<16 | 'p'<<8 | 'r'
	FieldProgressive FieldDominance = 'p'<<24 | 'r'<<16 | 'o'<<8 | 'g'
)

func (f FieldDominance) String() string { return Code(f).String() }

type modeInfo struct {
	mode       DisplayMode
	name       string
	width      int
	height     int
	grain      Grain
	interlaced bool
}

var modeTable = []modeInfo{
	{ModeNTSC, "NTSC", 720, 486, Grain{1001, 30000}, true},
	{ModeNTSC2398, "NTSC2398", 720, 486, Grain{1001, 30000}, true},
	{ModePAL, "PAL", 720, 576, Grain{1000, 25000}, true},
	{ModeNTSCp, "NTSCp", 720, 486, Grain{1001, 60000}, false},
	{ModePALp, "PALp", 720, 576, Grain{1000, 50000}, false},

	{ModeHD1080p2398, "HD1080p2398", 1920, 1080, Grain{1001, 24000}, false},
	{ModeHD1080p24, "HD1080p24", 1920, 1080, Grain{1000, 24000}, false},
	{ModeHD1080p25, "HD1080p25", 1920, 1080, Grain{1000, 25000}, false},
	{ModeHD1080p2997, "HD1080p2997", 1920, 1080, Grain{1001, 30000}, false},
	{ModeHD1080p30, "HD1080p30", 1920, 1080, Grain{1000, 30000}, false},
	{ModeHD1080i50, "HD1080i50", 1920, 1080, Grain{1000, 25000}, true},
	{ModeHD1080i5994, "HD1080i5994", 1920, 1080, Grain{1001, 60000}, true},
	{ModeHD1080i6000, "HD1080i6000", 1920, 1080, Grain{1000, 60000}, true},
	{ModeHD1080p50, "HD1080p50", 1920, 1080, Grain{1000, 50000}, false},
	{ModeHD1080p5994, "HD1080p5994", 1920, 1080, Grain{1001, 60000}, false},
	{ModeHD1080p6000, "HD1080p6000", 1920, 1080, Grain{1000, 60000}, false},

	{ModeHD720p50, "HD720p50", 1280, 720, Grain{1000, 50000}, false},
	{ModeHD720p5994, "HD720p5994", 1280, 720, Grain{1001, 60000}, false},
	{ModeHD720p60, "HD720p60", 1280, 720, Grain{1000, 60000}, false},

	{Mode2k2398, "2k2398", 2048, 1556, Grain{1001, 24000}, false},
	{Mode2k24, "2k24", 2048, 1556, Grain{1000, 24000}, false},
	{Mode2k25, "2k25", 2048, 1556, Grain{1000, 25000}, false},

	{Mode2kDCI2398, "2kDCI2398", 2048, 1080, Grain{1001, 24000}, false},
	{Mode2kDCI24, "2kDCI24", 2048, 1080, Grain{1000, 24000}, false},
	{Mode2kDCI25, "2kDCI25", 2048, 1080, Grain{1000, 25000}, false},

	{Mode4K2160p2398, "4K2160p2398", 3840, 2160, Grain{1001, 24000}, false},
	{Mode4K2160p24, "4K2160p24", 3840, 2160, Grain{1000, 24000}, false},
	{Mode4K2160p25, "4K2160p25", 3840, 2160, Grain{1000, 25000}, false},
	{Mode4K2160p2997, "4K2160p2997", 3840, 2160, Grain{1001, 30000}, false},
	{Mode4K2160p30, "4K2160p30", 3840, 2160, Grain{1000, 30000}, false},
	{Mode4K2160p50, "4K2160p50", 3840, 2160, Grain{1000, 50000}, false},
	{Mode4K2160p5994, "4K2160p5994", 3840, 2160, Grain{1001, 60000}, false},
	{Mode4K2160p60, "4K2160p60", 3840, 2160, Grain{1000, 60000}, false},

	{Mode4kDCI2398, "4kDCI2398", 4096, 2160, Grain{1001, 24000}, false},
	{Mode4kDCI24, "4kDCI24", 4096, 2160, Grain{1000, 24000}, false},
	{Mode4kDCI25, "4kDCI25", 4096, 2160, Grain{1000, 25000}, false},
}

var (
	modeByCode = make(map[DisplayMode]*modeInfo, len(modeTable))
	modeByName = make(map[string]DisplayMode, len(modeTable))
)

func init() {
	for i := range modeTable {
		m := &modeTable[i]
		modeByCode[m.mode] = m
		modeByName[strings.ToLower(m.name)] = m.mode
	}
}

func (m DisplayMode) info() (*modeInfo, bool) {
	info, ok := modeByCode[m]
	return info, ok
}

// Known reports whether m is a catalog member.
func (m DisplayMode) Known() bool {
	_, ok := m.info()
	return ok
}

// Width in pixels, 0 for unknown modes.
func (m DisplayMode) Width() int {
	if info, ok := m.info(); ok {
		return info.width
	}
	return 0
}

// Height in pixels, 0 for unknown modes. DCI modes report their letterboxed
// active height.
func (m DisplayMode) Height() int {
	if info, ok := m.info(); ok {
		return info.height
	}
	return 0
}

// GrainDuration is the exact frame interval; unknown modes report 0/1.
func (m DisplayMode) GrainDuration() Grain {
	if info, ok := m.info(); ok {
		return info.grain
	}
	return grainUnknown
}

// Interlaced reports whether a frame interval carries two fields.
func (m DisplayMode) Interlaced() bool {
	if info, ok := m.info(); ok {
		return info.interlaced
	}
	return false
}

// FieldDominance returns the field order; interlaced SD NTSC is lower field
// first, every other interlaced mode upper field first.
func (m DisplayMode) FieldDominance() FieldDominance {
	info, ok := m.info()
	switch {
	case !ok:
		return FieldUnknown
	case !info.interlaced:
		return FieldProgressive
	case m == ModeNTSC || m == ModeNTSC2398:
		return FieldLowerFirst
	default:
		return FieldUpperFirst
	}
}

// Name is the human readable mode name, empty for unknown modes.
func (m DisplayMode) Name() string {
	if info, ok := m.info(); ok {
		return info.name
	}
	return ""
}

// Tag is the four-character code of m.
func (m DisplayMode) Tag() string { return DecodeTag(Code(m)) }

func (m DisplayMode) String() string {
	if name := m.Name(); name != "" {
		return name
	}
	return Code(m).String()
}

// ParseMode resolves a mode from its four-character tag ("Hi50", "pal") or its
// name ("HD1080i50", case-insensitive).
func ParseMode(s string) (DisplayMode, bool) {
	if s == "" {
		return ModeUnknown, false
	}
	if len(s) <= 4 {
		if m := DisplayMode(EncodeTag(s)); m.Known() {
			return m, true
		}
	}
	if m, ok := modeByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, true
	}
	return ModeUnknown, false
}

// Modes lists every catalog mode in catalog order.
func Modes() []DisplayMode {
	out := make([]DisplayMode, 0, len(modeTable))
	for _, m := range modeTable {
		out = append(out, m.mode)
	}
	return out
}
