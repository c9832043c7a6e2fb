// Package style resolves the visual encoding (size, color, shape) of map
// objects from user format rules and built-in defaults.
package style

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadFormat is returned for format strings or patterns that cannot be used.
var ErrBadFormat = errors.New("bad format")

// Shape is a marker shape.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeDiamond  Shape = "diamond"
	ShapeTriangle Shape = "triangle"
	ShapeCross    Shape = "cross"
)

var shapes = map[Shape]bool{
	ShapeCircle: true, ShapeSquare: true, ShapeDiamond: true, ShapeTriangle: true, ShapeCross: true,
}

// Format is a visual encoding. Zero-valued fields are unset and are filled
// from the next lower precedence level.
type Format struct {
	Size  float64 // marker radius in map units (the horizon circle has radius 90)
	Color string  // CSS color
	Shape Shape
}

// Complete reports whether every field is set.
func (f Format) Complete() bool {
	return f.Size > 0 && f.Color != "" && f.Shape != ""
}

// Fill returns f with unset fields taken from fallback.
func (f Format) Fill(fallback Format) Format {
	if f.Size <= 0 {
		f.Size = fallback.Size
	}
	if f.Color == "" {
		f.Color = fallback.Color
	}
	if f.Shape == "" {
		f.Shape = fallback.Shape
	}
	return f
}

// String renders the format in the "size, color, shape" form ParseFormat reads.
func (f Format) String() string {
	size := ""
	if f.Size > 0 {
		size = strconv.FormatFloat(f.Size, 'g', -1, 64)
	}
	s := size + ", " + f.Color
	if f.Shape != "" {
		s += ", " + string(f.Shape)
	}
	return s
}

// ParseFormat parses "size, color[, shape]". Any field may be left empty to
// inherit it, e.g. ", #ff0000" only sets the color.
func ParseFormat(s string) (Format, error) {
	parts := strings.Split(s, ",")
	if strings.TrimSpace(s) == "" || len(parts) > 3 {
		return Format{}, fmt.Errorf("%w: %q: want \"size, color[, shape]\"", ErrBadFormat, s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var f Format
	if parts[0] != "" {
		size, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || size <= 0 || math.IsInf(size, 0) || math.IsNaN(size) {
			return Format{}, fmt.Errorf("%w: %q: size %q", ErrBadFormat, s, parts[0])
		}
		f.Size = size
	}
	if len(parts) > 1 && parts[1] != "" {
		if !ValidColor(parts[1]) {
			return Format{}, fmt.Errorf("%w: %q: color %q", ErrBadFormat, s, parts[1])
		}
		f.Color = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		shape := Shape(strings.ToLower(parts[2]))
		if !shapes[shape] {
			return Format{}, fmt.Errorf("%w: %q: shape %q", ErrBadFormat, s, parts[2])
		}
		f.Shape = shape
	}
	return f, nil
}
