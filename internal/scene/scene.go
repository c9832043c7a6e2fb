// Package scene is a small vector scene graph serialized as SVG.
//
// Nodes carry stable ids so hosts can style or script individual elements;
// the renderers in package render decide the ids, this package only keeps
// them and checks they are unique when writing.
package scene

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"
)

// Attr is one element attribute.
type Attr struct {
	Key, Value string
}

// Node is an SVG element.
type Node struct {
	Tag      string
	ID       string
	Class    string
	Attrs    []Attr
	Title    string // rendered as a <title> child, i.e. a tooltip
	Text     string // character data, escaped on output
	Children []*Node
}

// El creates an element with attribute key/value pairs.
func El(tag string, kv ...string) *Node {
	n := &Node{Tag: tag}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attrs = append(n.Attrs, Attr{kv[i], kv[i+1]})
	}
	return n
}

// Set adds or replaces an attribute.
func (n *Node) Set(key, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{key, value})
	return n
}

// Get returns an attribute value.
func (n *Node) Get(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// WithID sets the element id.
func (n *Node) WithID(id string) *Node {
	n.ID = id
	return n
}

// WithClass sets the element class.
func (n *Node) WithClass(class string) *Node {
	n.Class = class
	return n
}

// WithTitle sets the tooltip.
func (n *Node) WithTitle(title string) *Node {
	n.Title = title
	return n
}

// Add appends children, skipping nil ones.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Walk visits n and its descendants depth first, stopping when fn returns
// false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the descendant (or n itself) with the given id.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(x *Node) bool {
		if x.ID == id {
			found = x
			return false
		}
		return true
	})
	return found
}

// Group creates a <g> with an id.
func Group(id string, children ...*Node) *Node {
	return El("g").WithID(id).Add(children...)
}

// Circle creates a circle.
func Circle(cx, cy, r float64) *Node {
	return El("circle", "cx", Num(cx), "cy", Num(cy), "r", Num(r))
}

// Line creates a line segment.
func Line(x1, y1, x2, y2 float64) *Node {
	return El("line", "x1", Num(x1), "y1", Num(y1), "x2", Num(x2), "y2", Num(y2))
}

// Rect creates a rectangle.
func Rect(x, y, w, h float64) *Node {
	return El("rect", "x", Num(x), "y", Num(y), "width", Num(w), "height", Num(h))
}

// PathNode creates a path from path data.
func PathNode(d string) *Node {
	return El("path", "d", d)
}

// Polyline creates a polyline through xy pairs.
func Polyline(xy ...float64) *Node {
	return El("polyline", "points", points(xy))
}

// Polygon creates a closed polygon through xy pairs.
func Polygon(xy ...float64) *Node {
	return El("polygon", "points", points(xy))
}

func points(xy []float64) string {
	var b strings.Builder
	for i := 0; i+1 < len(xy); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(Num(xy[i]))
		b.WriteByte(',')
		b.WriteString(Num(xy[i+1]))
	}
	return b.String()
}

// Text creates a text element.
func Text(x, y float64, s string) *Node {
	n := El("text", "x", Num(x), "y", Num(y))
	n.Text = s
	return n
}

// Num formats a coordinate with at most two decimals and no trailing zeros.
func Num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	f = math.Round(f*100) / 100
	if f == 0 {
		f = 0 // drop negative zero
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Path builds SVG path data.
type Path struct {
	b strings.Builder
}

func (p *Path) cmd(c byte, vals ...float64) *Path {
	p.b.WriteByte(c)
	for i, v := range vals {
		if i > 0 {
			p.b.WriteByte(',')
		}
		p.b.WriteString(Num(v))
	}
	return p
}

// MoveTo starts a subpath.
func (p *Path) MoveTo(x, y float64) *Path { return p.cmd('M', x, y) }

// LineTo draws a straight line.
func (p *Path) LineTo(x, y float64) *Path { return p.cmd('L', x, y) }

// HLine draws a relative horizontal line.
func (p *Path) HLine(dx float64) *Path { return p.cmd('h', dx) }

// VLine draws a relative vertical line.
func (p *Path) VLine(dy float64) *Path { return p.cmd('v', dy) }

// Arc draws an elliptical arc to (x, y).
func (p *Path) Arc(rx, ry, rotation float64, large, sweep bool, x, y float64) *Path {
	return p.cmd('A', rx, ry, rotation, flag(large), flag(sweep), x, y)
}

// Close closes the current subpath.
func (p *Path) Close() *Path {
	p.b.WriteByte('Z')
	return p
}

// Empty reports whether nothing was drawn.
func (p *Path) Empty() bool { return p.b.Len() == 0 }

// String returns the path data.
func (p *Path) String() string { return p.b.String() }

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Scene is one self-contained picture.
type Scene struct {
	Width, Height int
	ViewBox       [4]float64 // min-x, min-y, width, height
	ID            string
	Class         string
	X, Y          string // embed offset, written verbatim

	Defs   []*Node
	Layers []*Node
}

// New creates a scene with a viewBox centred on the origin.
func New(width, height int, halfExtent float64) *Scene {
	return &Scene{
		Width:   width,
		Height:  height,
		ViewBox: [4]float64{-halfExtent, -halfExtent, 2 * halfExtent, 2 * halfExtent},
	}
}

// Layer returns the top-level group with the id, appending it when absent.
func (s *Scene) Layer(id string) *Node {
	for _, l := range s.Layers {
		if l.ID == id {
			return l
		}
	}
	l := Group(id)
	s.Layers = append(s.Layers, l)
	return l
}

// AddDef adds a definition (gradient, clip path).
func (s *Scene) AddDef(n *Node) {
	s.Defs = append(s.Defs, n)
}

// Find returns the element with the id anywhere in the scene.
func (s *Scene) Find(id string) *Node {
	for _, l := range append(append([]*Node(nil), s.Defs...), s.Layers...) {
		if n := l.Find(id); n != nil {
			return n
		}
	}
	return nil
}

// IDs lists element ids in document order.
func (s *Scene) IDs() []string {
	var ids []string
	for _, l := range append(append([]*Node(nil), s.Defs...), s.Layers...) {
		l.Walk(func(n *Node) bool {
			if n.ID != "" {
				ids = append(ids, n.ID)
			}
			return true
		})
	}
	return ids
}

// WriteSVG serializes the scene. Duplicate ids are an error since hosts
// address elements by id.
func (s *Scene) WriteSVG(w io.Writer) error {
	seen := make(map[string]bool)
	for _, id := range s.IDs() {
		if seen[id] {
			return fmt.Errorf("scene: duplicate element id %q", id)
		}
		seen[id] = true
	}
	if s.ID != "" && seen[s.ID] {
		return fmt.Errorf("scene: root id %q also used by an element", s.ID)
	}

	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg"`)
	writeAttr(&b, "id", s.ID)
	writeAttr(&b, "class", s.Class)
	writeAttr(&b, "x", s.X)
	writeAttr(&b, "y", s.Y)
	writeAttr(&b, "width", strconv.Itoa(s.Width))
	writeAttr(&b, "height", strconv.Itoa(s.Height))
	vb := s.ViewBox
	writeAttr(&b, "viewBox", Num(vb[0])+" "+Num(vb[1])+" "+Num(vb[2])+" "+Num(vb[3]))
	b.WriteString(">\n")

	if len(s.Defs) > 0 {
		b.WriteString("<defs>\n")
		for _, d := range s.Defs {
			writeNode(&b, d, 1)
		}
		b.WriteString("</defs>\n")
	}
	for _, l := range s.Layers {
		writeNode(&b, l, 0)
	}
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// SVG returns the serialized scene.
func (s *Scene) SVG() (string, error) {
	var b strings.Builder
	err := s.WriteSVG(&b)
	return b.String(), err
}

func writeAttr(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat(" ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(n.Tag)
	writeAttr(b, "id", n.ID)
	writeAttr(b, "class", n.Class)
	for _, a := range n.Attrs {
		writeAttr(b, a.Key, a.Value)
	}

	if n.Title == "" && n.Text == "" && len(n.Children) == 0 {
		b.WriteString("/>\n")
		return
	}
	b.WriteByte('>')
	if n.Title != "" {
		b.WriteString("<title>")
		b.WriteString(html.EscapeString(n.Title))
		b.WriteString("</title>")
	}
	b.WriteString(html.EscapeString(n.Text))
	if len(n.Children) > 0 {
		b.WriteByte('\n')
		for _, c := range n.Children {
			writeNode(b, c, depth+1)
		}
		b.WriteString(indent)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteString(">\n")
}
