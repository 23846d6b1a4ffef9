package plan

import (
	"strconv"
	"strings"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
)

// EmptyColor is used for fixtures without a zone.
const EmptyColor = "#555555"

// Well-known zone names keep their traditional colours when the document
// declares none.
var namedZones = map[string]string{
	"cleaning": "#0077ff",
	"storage":  "#914400",
	"cooking":  "#cc0000",
}

var palette = []string{
	"#4caf50", "#2196f3", "#ff9800", "#9c27b0",
	"#00bcd4", "#f44336", "#ffeb3b", "#795548",
}

func zoneColors(k *kitchen.Kitchen) map[string]string {
	out := make(map[string]string, len(k.Zones))
	next := 0
	for _, z := range k.Zones {
		switch {
		case validHex(z.Color):
			out[z.Name] = strings.ToLower(z.Color)
		case namedZones[z.Name] != "":
			out[z.Name] = namedZones[z.Name]
		default:
			out[z.Name] = palette[next%len(palette)]
			next++
		}
	}
	return out
}

func validHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}

// RGB splits a #rrggbb colour. Invalid input yields grey.
func RGB(hex string) (r, g, b int) {
	if !validHex(hex) {
		return 0x55, 0x55, 0x55
	}
	v, _ := strconv.ParseUint(hex[1:], 16, 32)
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
