// Package palette derives an 11 stop shade ramp from a single seed colour and
// ships the fixed preset ramps offered by the theme picker.
package palette

import (
	"errors"
	"math"
	"strconv"
)

// ErrInvalidColorFormat is returned for seeds that are not hex colours.
var ErrInvalidColorFormat = errors.New("palette: invalid color format")

// Stops lists the shade stops in ascending order.
var Stops = [...]int{50, 100, 200, 300, 400, 500, 600, 700, 800, 900, 950}

const (
	midStop    = 500
	stopSpan   = 450
	lightLimit = 98.0
	darkLimit  = 8.0
	satFloor   = 30.0
	satCeiling = 100.0
)

// Shade is one stop of a palette.
type Shade struct {
	Stop int
	Hex  string
}

// Palette is an immutable ramp ordered like Stops.
type Palette [len(Stops)]Shade

// Hex returns the colour for the stop, or "" when the stop is unknown.
func (p Palette) Hex(stop int) string {
	for _, shade := range p {
		if shade.Stop == stop {
			return shade.Hex
		}
	}
	return ""
}

// Primary returns the 500 stop.
func (p Palette) Primary() string {
	return p.Hex(midStop)
}

// Map returns the palette keyed by stop name.
func (p Palette) Map() map[string]string {
	out := make(map[string]string, len(p))
	for _, shade := range p {
		out[strconv.Itoa(shade.Stop)] = shade.Hex
	}
	return out
}

// Generate builds the ramp for seed. Stops below 500 move towards a light
// extreme and lose saturation, stops above move towards a dark extreme and
// gain saturation. Stop 500 is the seed round-tripped through HSL.
func Generate(seed string) (Palette, error) {
	base, err := HexToHSL(seed)
	if err != nil {
		return Palette{}, err
	}

	var out Palette
	for i, stop := range Stops {
		out[i] = Shade{Stop: stop, Hex: shadeFor(base, stop).Hex()}
	}
	return out, nil
}

// MustGenerate is Generate for compile-time constant seeds.
func MustGenerate(seed string) Palette {
	p, err := Generate(seed)
	if err != nil {
		panic(err)
	}
	return p
}

func shadeFor(base HSL, stop int) HSL {
	shade := base
	switch {
	case stop < midStop:
		t := float64(midStop-stop) / stopSpan
		shade.L = math.Min(lightLimit, base.L+t*(lightLimit-base.L))
		shade.S = math.Max(satFloor, base.S-t*(base.S-satFloor))
	case stop > midStop:
		t := float64(stop-midStop) / stopSpan
		shade.L = math.Max(darkLimit, base.L-t*(base.L-darkLimit))
		shade.S = math.Min(satCeiling, base.S+t*(satCeiling-base.S))
	}
	return shade
}
