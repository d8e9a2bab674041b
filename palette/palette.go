package palette

import (
	"math/rand"
)

// RGB is a 24-bit color triple
type RGB struct {
	R, G, B uint8
}

// Palette is a color set that particles draw their color from at creation
type Palette []RGB

// Named colors used outside of key palettes
var (
	RGBBlack   = RGB{0, 0, 0}
	RGBWhite   = RGB{255, 255, 255}
	RGBGray    = RGB{100, 100, 100}
	RGBGrey    = RGB{128, 128, 128}
	RGBRed     = RGB{255, 0, 0}
	RGBYellow  = RGB{255, 255, 0}
	RGBCyan    = RGB{0, 255, 255}
	RGBBlue    = RGB{0, 0, 255}
	RGBLightBg = RGB{240, 240, 240}
)

// Neutral is used before the first section sets a key palette
var Neutral = Palette{RGBGray}

// NoKey is the index of the palette used when the analysis reports no detectable key
const NoKey = 12

// keyPalettes is indexed by pitch class (0 = C, 1 = C#/Db, ...), index 12 is the no-key fallback
var keyPalettes = [13]Palette{
	{{82, 247, 146}, {170, 49, 148}, {255, 51, 199}},
	{{1, 126, 121}, {255, 129, 255}, {1, 255, 196}},
	{{12, 212, 121}, {170, 214, 126}, {255, 215, 197}},
	{{5, 252, 255}, {170, 253, 124}, {255, 253, 195}},
	{{5, 20, 255}, {170, 253, 124}, {5, 253, 195}},
	{{42, 251, 121}, {177, 253, 123}, {215, 253, 126}},
	{{115, 250, 121}, {255, 251, 123}, {117, 253, 127}},
	{{115, 252, 214}, {255, 253, 215}, {119, 253, 215}},
	{{11, 253, 255}, {200, 1, 255}, {119, 251, 253}},
	{{118, 214, 255}, {255, 214, 255}, {120, 214, 255}},
	{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}},
	{{0, 0, 255}, {120, 0, 255}, {215, 13, 255}},
	{{255, 133, 255}, {42, 135, 255}, {255, 136, 255}},
}

// ForKey returns the palette for a pitch class, out-of-range keys map to the no-key palette
func ForKey(key int) Palette {
	if key < 0 || key >= NoKey {
		return keyPalettes[NoKey]
	}
	return keyPalettes[key]
}

// Pick returns a random member, empty palettes yield neutral gray
func (p Palette) Pick(rng *rand.Rand) RGB {
	switch len(p) {
	case 0:
		return RGBGray
	case 1:
		return p[0]
	}
	return p[rng.Intn(len(p))]
}
