package router

import (
	"fmt"
	"strings"
)

// Segment is one "/"-separated part of a route key.
type Segment struct {
	// Literal is the raw segment text as declared.
	Literal string

	// IsVariable is true when the segment has the placeholder shape.
	IsVariable bool

	// Name is the variable name for placeholder segments.
	Name string
}

// String pretty prints the segment, for debugging.
func (s Segment) String() string {
	return fmt.Sprintf("{ Literal: %q, IsVariable: %v, Name: %q }", s.Literal, s.IsVariable, s.Name)
}

// Match reports whether the segment accepts a path segment.
// A placeholder accepts anything, including a missing segment.
func (s Segment) Match(value string, present bool) bool {
	if s.IsVariable {
		return true
	}
	return present && s.Literal == value
}

// Pattern is a parsed route key. Patterns are immutable once parsed.
type Pattern struct {
	key      string
	segments []Segment
}

// ParsePattern splits a route key into segments.
func ParsePattern(key string) Pattern {
	parts := strings.Split(key, "/")
	segments := make([]Segment, len(parts))
	for i, part := range parts {
		segments[i] = parseSegment(part)
	}
	return Pattern{key: key, segments: segments}
}

// parseSegment tokenizes a single route segment.
func parseSegment(part string) Segment {
	if !isPlaceholder(part) {
		return Segment{Literal: part}
	}
	return Segment{
		Literal:    part,
		IsVariable: true,
		Name:       placeholderName(part),
	}
}

// isPlaceholder reports whether part starts with "{", word characters, "}".
// Text after the closing brace is not inspected.
func isPlaceholder(part string) bool {
	if len(part) < 2 || part[0] != '{' {
		return false
	}
	for i := 1; i < len(part); i++ {
		c := part[i]
		if c == '}' {
			return true
		}
		if !isWordChar(c) {
			return false
		}
	}
	return false
}

// placeholderName drops every brace, pipe and slash from the segment.
func placeholderName(part string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '|', '/':
			return -1
		}
		return r
	}, part)
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

// Key returns the route key the pattern was parsed from.
func (p Pattern) Key() string {
	return p.key
}

// Segments returns a copy of the pattern's segments.
func (p Pattern) Segments() []Segment {
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Len returns the number of declared segments.
func (p Pattern) Len() int {
	return len(p.segments)
}

// VariableNames returns placeholder names in declaration order.
func (p Pattern) VariableNames() []string {
	var names []string
	for _, seg := range p.segments {
		if seg.IsVariable {
			names = append(names, seg.Name)
		}
	}
	return names
}

// Match compares the pattern against path segments by index.
// With strict set, the segment counts must also be equal.
func (p Pattern) Match(pathSegments []string, strict bool) bool {
	if strict && len(pathSegments) != len(p.segments) {
		return false
	}
	for i, seg := range p.segments {
		var value string
		present := i < len(pathSegments)
		if present {
			value = pathSegments[i]
		}
		if !seg.Match(value, present) {
			return false
		}
	}
	return true
}

// Extract collects the values of placeholder segments from pathSegments.
// Placeholders past the end of the path are left out.
func (p Pattern) Extract(pathSegments []string) Variables {
	vars := make(Variables)
	for i, seg := range p.segments {
		if !seg.IsVariable || i >= len(pathSegments) {
			continue
		}
		vars[seg.Name] = pathSegments[i]
	}
	return vars
}

// hasUpperLiteral reports whether any literal segment contains upper case
// letters. Such a segment can never equal a lowercased path segment.
func (p Pattern) hasUpperLiteral() bool {
	for _, seg := range p.segments {
		if !seg.IsVariable && strings.ToLower(seg.Literal) != seg.Literal {
			return true
		}
	}
	return false
}
