package style

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Builtin is the last-resort format.
var Builtin = Format{Size: 0.5, Color: "currentColor", Shape: ShapeCircle}

// ClassDefaults are the built-in formats per object class.
var ClassDefaults = map[string]Format{
	"sun":       {Size: 3, Color: "#ffffff", Shape: ShapeCircle},
	"moon":      {Size: 2, Color: "#ffecd5", Shape: ShapeCircle},
	"planet":    {Size: 0.5, Color: "#ffffff", Shape: ShapeCircle},
	"star":      {Size: 0.5, Color: "#ffffff", Shape: ShapeCircle},
	"satellite": {Size: 0.6, Color: "#7fff7f", Shape: ShapeDiamond},
}

// bodyDefaults refine the class defaults for individual bodies.
var bodyDefaults = map[string]Format{
	"mercury": {Size: 0.75},
	"venus":   {Size: 0.75},
	"mars":    {Size: 0.75, Color: "#ff8f5e"},
	"jupiter": {Size: 0.75},
	"saturn":  {Size: 0.75},
}

type patternRule struct {
	pattern string
	format  Format
	literal int // non-wildcard characters, for specificity ordering
}

// Resolver maps object ids to formats. It is immutable after Compile and
// safe for concurrent use.
type Resolver struct {
	exact    map[string]Format
	patterns []patternRule
	class    map[string]Format // rules keyed by a class name
}

// Compile builds a resolver from user rules keyed by object id, by class
// name ("star", "satellite", ...) or by a path.Match pattern (e.g. "HIP*",
// "stations_*"). Rules with a bad pattern or format string are skipped;
// their errors are returned so the caller can warn about them.
func Compile(formats map[string]string) (*Resolver, []error) {
	r := &Resolver{exact: make(map[string]Format), class: make(map[string]Format)}
	var errs []error

	for key, value := range formats {
		key = strings.TrimSpace(key)
		f, err := ParseFormat(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", key, err))
			continue
		}

		if !isPattern(key) {
			// "sun" and "moon" name both a class and its only object.
			if _, ok := ClassDefaults[key]; ok {
				r.class[key] = f
			}
			r.exact[key] = f
			continue
		}
		if _, err := path.Match(key, ""); err != nil {
			errs = append(errs, fmt.Errorf("%w: rule %q: %v", ErrBadFormat, key, err))
			continue
		}
		r.patterns = append(r.patterns, patternRule{pattern: key, format: f, literal: literalLen(key)})
	}

	// Most specific first; ties broken by length then text so the order
	// does not depend on map iteration.
	sort.Slice(r.patterns, func(i, j int) bool {
		a, b := r.patterns[i], r.patterns[j]
		if a.literal != b.literal {
			return a.literal > b.literal
		}
		if len(a.pattern) != len(b.pattern) {
			return len(a.pattern) > len(b.pattern)
		}
		return a.pattern < b.pattern
	})

	// Sort errors for stable log output.
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return r, errs
}

// Resolve returns the complete format for an object. Precedence, highest
// first: exact id rule (a rule for "mars" also covers "mars_barycenter"),
// matching patterns (most specific first), class rule, derived (e.g. a
// magnitude-based star size), built-in body default, class default,
// Builtin. Each level only fills fields the levels above left unset.
func (r *Resolver) Resolve(id, class string, derived Format) Format {
	body := strings.TrimSuffix(id, "_barycenter")

	var f Format
	if r != nil {
		if e, ok := r.exact[id]; ok {
			f = e
		} else if e, ok := r.exact[body]; ok {
			f = e
		}
		for _, p := range r.patterns {
			if f.Complete() {
				break
			}
			if ok, _ := path.Match(p.pattern, id); ok {
				f = f.Fill(p.format)
			}
		}
		f = f.Fill(r.class[class])
	}

	f = f.Fill(derived)
	f = f.Fill(bodyDefaults[body])
	f = f.Fill(ClassDefaults[class])
	return f.Fill(Builtin)
}

// Rules returns the number of exact and pattern rules.
func (r *Resolver) Rules() (exact, patterns int) {
	if r == nil {
		return 0, 0
	}
	return len(r.exact), len(r.patterns)
}

func isPattern(key string) bool {
	return strings.ContainsAny(key, "*?[\\")
}

func literalLen(pattern string) int {
	n := 0
	inClass := false
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '*' || c == '?':
		case c == '\\':
			i++
			n++
		default:
			n++
		}
	}
	return n
}
