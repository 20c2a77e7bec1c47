package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HSL holds hue in degrees [0,360) and saturation/lightness in percent [0,100].
type HSL struct {
	H float64
	S float64
	L float64
}

// NormalizeHex validates a user supplied colour and returns it as a lowercase
// "#rrggbb" string. A missing leading '#' is tolerated and the three digit
// shorthand is expanded.
func NormalizeHex(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "#")
	if len(value) == 3 {
		value = string([]byte{value[0], value[0], value[1], value[1], value[2], value[2]})
	}
	if len(value) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColorFormat, raw)
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: %q", ErrInvalidColorFormat, raw)
		}
	}
	return "#" + value, nil
}

// HexToHSL converts a colour into HSL space.
func HexToHSL(hex string) (HSL, error) {
	normalized, err := NormalizeHex(hex)
	if err != nil {
		return HSL{}, err
	}
	r := channel(normalized[1:3])
	g := channel(normalized[3:5])
	b := channel(normalized[5:7])

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l := (max + min) / 2
	d := max - min

	var h, s float64
	if d != 0 {
		if l > 0.5 {
			s = d / (2 - max - min)
		} else {
			s = d / (max + min)
		}
		switch max {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h *= 60
	}
	return HSL{H: h, S: s * 100, L: l * 100}, nil
}

// Hex converts the colour back into "#rrggbb".
func (c HSL) Hex() string {
	s := c.S / 100
	l := c.L / 100
	a := s * math.Min(l, 1-l)

	f := func(n float64) string {
		k := math.Mod(n+c.H/30, 12)
		col := l - a*math.Max(-1, math.Min(k-3, math.Min(9-k, 1)))
		v := int(math.Floor(255*col + 0.5))
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return fmt.Sprintf("%02x", v)
	}
	return "#" + f(0) + f(8) + f(4)
}

func channel(pair string) float64 {
	v, _ := strconv.ParseUint(pair, 16, 8)
	return float64(v) / 255
}
