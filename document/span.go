package document

// Span is a half-open byte interval [Start, End) into a specific document
// snapshot. Spans from different snapshots are never compared without
// translation.
type Span struct {
	Start int
	End   int
}

// Len returns the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies fully within s.
func (s Span) Contains(o Span) bool { return o.Start >= s.Start && o.End <= s.End }

// Union returns the smallest span covering both a and b.
func Union(a, b Span) Span {
	if b.Start < a.Start {
		a.Start = b.Start
	}
	if b.End > a.End {
		a.End = b.End
	}
	return a
}
