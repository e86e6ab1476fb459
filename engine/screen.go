package engine

import (
	"fmt"
	"strings"
)

// ScreenResolution of the rendered frames
type ScreenResolution int

const (
	RES_160X120 ScreenResolution = iota
	RES_320X240
	RES_640X480
	RES_800X600
	RES_1024X768
	RES_1280X960
	RES_1920X1080
)

var resolutionDims = map[ScreenResolution][2]int{
	RES_160X120:   {160, 120},
	RES_320X240:   {320, 240},
	RES_640X480:   {640, 480},
	RES_800X600:   {800, 600},
	RES_1024X768:  {1024, 768},
	RES_1280X960:  {1280, 960},
	RES_1920X1080: {1920, 1080},
}

func (r ScreenResolution) Width() int {
	return resolutionDims[r][0]
}

func (r ScreenResolution) Height() int {
	return resolutionDims[r][1]
}

func (r ScreenResolution) Valid() bool {
	_, ok := resolutionDims[r]
	return ok
}

func (r ScreenResolution) String() string {
	if !r.Valid() {
		return fmt.Sprintf("RES_UNKNOWN(%d)", int(r))
	}
	return fmt.Sprintf("RES_%dX%d", r.Width(), r.Height())
}

// ParseScreenResolution accepts either "RES_640X480" or "640x480"
func ParseScreenResolution(s string) (ScreenResolution, error) {
	want := strings.TrimPrefix(strings.ToUpper(s), "RES_")
	for r := range resolutionDims {
		if strings.TrimPrefix(r.String(), "RES_") == want {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown screen resolution %q", s)
}

// ScreenFormat is the pixel layout of the screen buffer
type ScreenFormat int

const (
	// CRCGCB is three planes, one per color channel
	CRCGCB ScreenFormat = iota
	RGB24
	GRAY8
)

func (f ScreenFormat) Channels() int {
	if f == GRAY8 {
		return 1
	}
	return 3
}

func (f ScreenFormat) String() string {
	switch f {
	case CRCGCB:
		return "CRCGCB"
	case RGB24:
		return "RGB24"
	case GRAY8:
		return "GRAY8"
	default:
		return fmt.Sprintf("FORMAT_UNKNOWN(%d)", int(f))
	}
}
