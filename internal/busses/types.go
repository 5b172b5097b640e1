package busses

import "fmt"

// Type identifies the pixel encoding a bus drives.
// Values match the numeric strip type ids used in persisted configuration.
type Type uint8

// Strip types.
const (
	TypeNone        Type = 0
	TypeWS2812White Type = 18
	TypeWS2812RGB   Type = 22
	TypeGS8608      Type = 23
	TypeWS2811_400k Type = 24
	TypeTM1829      Type = 25
	TypeUCS8903     Type = 26
	TypeAPA106      Type = 27
	TypeUCS8904     Type = 29
	TypeSK6812RGBW  Type = 30
	TypeTM1814      Type = 31
	TypeWS2801      Type = 50
	TypeAPA102      Type = 51
	TypeLPD8806     Type = 52
	TypeP9813       Type = 53
)

var typeNames = map[Type]string{
	TypeNone:        "none",
	TypeWS2812White: "ws2812_white",
	TypeWS2812RGB:   "ws2812_rgb",
	TypeGS8608:      "gs8608",
	TypeWS2811_400k: "ws2811_400khz",
	TypeTM1829:      "tm1829",
	TypeUCS8903:     "ucs8903",
	TypeAPA106:      "apa106",
	TypeUCS8904:     "ucs8904",
	TypeSK6812RGBW:  "sk6812_rgbw",
	TypeTM1814:      "tm1814",
	TypeWS2801:      "ws2801",
	TypeAPA102:      "apa102",
	TypeLPD8806:     "lpd8806",
	TypeP9813:       "p9813",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Known reports whether t is one of the strip types listed above.
func (t Type) Known() bool {
	_, ok := typeNames[t]
	return ok
}

// TwoWire reports whether the type needs a clock line in addition to data.
func (t Type) TwoWire() bool {
	return t >= TypeWS2801 && t <= TypeP9813
}

// ColorOrder is the byte order in which a strip expects color channels.
type ColorOrder uint8

// Color orders.
const (
	OrderGRB ColorOrder = iota
	OrderRGB
	OrderBRG
	OrderRBG
	OrderBGR
	OrderGBR
)

var orderNames = [...]string{"GRB", "RGB", "BRG", "RBG", "BGR", "GBR"}

func (o ColorOrder) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("order(%d)", uint8(o))
}
