package chat

import "strings"

// Color is one of the sixteen chat formatting colours. The zero value means
// "inherit from the parent component".
type Color int

const (
	ColorNone Color = iota
	Black
	DarkBlue
	DarkGreen
	DarkAqua
	DarkRed
	DarkPurple
	Gold
	Gray
	DarkGray
	Blue
	Green
	Aqua
	Red
	LightPurple
	Yellow
	White
)

type colorInfo struct {
	name string
	hex  string
}

var colors = map[Color]colorInfo{
	Black:       {"black", "#000000"},
	DarkBlue:    {"dark_blue", "#0000AA"},
	DarkGreen:   {"dark_green", "#00AA00"},
	DarkAqua:    {"dark_aqua", "#00AAAA"},
	DarkRed:     {"dark_red", "#AA0000"},
	DarkPurple:  {"dark_purple", "#AA00AA"},
	Gold:        {"gold", "#FFAA00"},
	Gray:        {"gray", "#AAAAAA"},
	DarkGray:    {"dark_gray", "#555555"},
	Blue:        {"blue", "#5555FF"},
	Green:       {"green", "#55FF55"},
	Aqua:        {"aqua", "#55FFFF"},
	Red:         {"red", "#FF5555"},
	LightPurple: {"light_purple", "#FF55FF"},
	Yellow:      {"yellow", "#FFFF55"},
	White:       {"white", "#FFFFFF"},
}

// Name returns the colour's wire name, e.g. "dark_red". ColorNone has none.
func (c Color) Name() string {
	return colors[c].name
}

// Hex returns the colour as #RRGGBB.
func (c Color) Hex() string {
	return colors[c].hex
}

// ParseColor looks a colour up by its wire name.
func ParseColor(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, info := range colors {
		if info.name == name {
			return c, true
		}
	}
	return ColorNone, false
}
