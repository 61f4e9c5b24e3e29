// Package chat models styled chat text as immutable values and renders it
// for terminals, plain text and the game's JSON text format.
package chat

// Component is a run of styled text with optional hover text and child
// components. Children inherit colour and boldness unless they set their own.
// Every method returns a new Component; a value is never changed in place.
type Component struct {
	text  string
	color Color
	bold  bool
	hover *Component
	extra []Component
}

// Text creates an unstyled component.
func Text(s string) Component {
	return Component{text: s}
}

// Content returns the component's own text, without children.
func (c Component) Content() string { return c.text }

// Color returns the component's own colour.
func (c Component) Color() Color { return c.color }

// Bold reports whether the component itself is bold.
func (c Component) Bold() bool { return c.bold }

// Hover returns the hover text, if any.
func (c Component) Hover() (Component, bool) {
	if c.hover == nil {
		return Component{}, false
	}
	return *c.hover, true
}

// Children returns a copy of the child components.
func (c Component) Children() []Component {
	out := make([]Component, len(c.extra))
	copy(out, c.extra)
	return out
}

func (c Component) WithColor(col Color) Component {
	c.color = col
	return c
}

func (c Component) WithBold(bold bool) Component {
	c.bold = bold
	return c
}

func (c Component) WithHover(h Component) Component {
	c.hover = &h
	return c
}

// Append returns c with children added after the existing ones.
func (c Component) Append(children ...Component) Component {
	extra := make([]Component, 0, len(c.extra)+len(children))
	extra = append(extra, c.extra...)
	extra = append(extra, children...)
	c.extra = extra
	return c
}

// String flattens the component and its children into plain text, leaving
// out hover text.
func (c Component) String() string {
	s := c.text
	for _, child := range c.extra {
		s += child.String()
	}
	return s
}
