package chat

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// style is the effective formatting after inheritance.
type style struct {
	color Color
	bold  bool
}

func (s style) inherit(c Component) style {
	if c.color != ColorNone {
		s.color = c.color
	}
	if c.bold {
		s.bold = true
	}
	return s
}

// Plain renders c as text. Hover text is shown in parentheses after the
// component it belongs to.
func Plain(c Component) string {
	var b strings.Builder
	writePlain(&b, c)
	return b.String()
}

func writePlain(b *strings.Builder, c Component) {
	b.WriteString(c.text)
	for _, child := range c.extra {
		writePlain(b, child)
	}
	if c.hover != nil {
		b.WriteString(" (")
		b.WriteString(c.hover.String())
		b.WriteString(")")
	}
}

// ANSI renders c with terminal colours using r. Hover text is inlined as in
// Plain.
func ANSI(c Component, r *lipgloss.Renderer) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	var b strings.Builder
	writeANSI(&b, r, c, style{})
	return b.String()
}

func writeANSI(b *strings.Builder, r *lipgloss.Renderer, c Component, parent style) {
	st := parent.inherit(c)
	writeStyled(b, r, c.text, st)
	for _, child := range c.extra {
		writeANSI(b, r, child, st)
	}
	if c.hover != nil {
		hs := style{}.inherit(*c.hover)
		writeStyled(b, r, " (", st)
		writeANSI(b, r, *c.hover, hs)
		writeStyled(b, r, ")", st)
	}
}

// writeStyled renders line by line so lipgloss does not pad multi-line text
// into a block.
func writeStyled(b *strings.Builder, r *lipgloss.Renderer, text string, st style) {
	if text == "" {
		return
	}
	ls := r.NewStyle().Bold(st.bold)
	if st.color != ColorNone {
		ls = ls.Foreground(lipgloss.Color(st.color.Hex()))
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if line != "" {
			b.WriteString(ls.Render(line))
		}
	}
}

type jsonComponent struct {
	Text       string          `json:"text"`
	Color      string          `json:"color,omitempty"`
	Bold       bool            `json:"bold,omitempty"`
	HoverEvent *jsonHover      `json:"hoverEvent,omitempty"`
	Extra      []jsonComponent `json:"extra,omitempty"`
}

type jsonHover struct {
	Action   string        `json:"action"`
	Contents jsonComponent `json:"contents"`
}

func toJSON(c Component) jsonComponent {
	out := jsonComponent{
		Text:  c.text,
		Color: c.color.Name(),
		Bold:  c.bold,
	}
	if c.hover != nil {
		out.HoverEvent = &jsonHover{Action: "show_text", Contents: toJSON(*c.hover)}
	}
	if len(c.extra) > 0 {
		out.Extra = make([]jsonComponent, len(c.extra))
		for i, child := range c.extra {
			out.Extra[i] = toJSON(child)
		}
	}
	return out
}

// MarshalJSON encodes c in the game's raw JSON text-component format.
func (c Component) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(c))
}

// JSON renders c as a raw JSON text component.
func JSON(c Component) (string, error) {
	data, err := c.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
