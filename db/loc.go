package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the variant tag of a locator value.
type Kind int

const (
	KindInt Kind = iota + 1
	KindText
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindText:
		return "text"
	case KindComposite:
		return "composite"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Loc is a single locator value: an integer, a string, or an ordered
// composite of further locator values.  The zero Loc is invalid.
type Loc struct {
	kind  Kind
	n     int
	s     string
	elems []Loc
}

func Int(n int) Loc {
	return Loc{kind: KindInt, n: n}
}

func Text(s string) Loc {
	return Loc{kind: KindText, s: s}
}

func Composite(elems ...Loc) Loc {
	cp := make([]Loc, len(elems))
	copy(cp, elems)
	return Loc{kind: KindComposite, elems: cp}
}

func (l Loc) Kind() Kind {
	return l.kind
}

func (l Loc) AsInt() (n int, ok bool) {
	return l.n, l.kind == KindInt
}

func (l Loc) AsText() (s string, ok bool) {
	return l.s, l.kind == KindText
}

// Elems returns the members of a composite, or nil.
func (l Loc) Elems() []Loc {
	if l.kind != KindComposite {
		return nil
	}
	return l.elems
}

func (l Loc) Equal(o Loc) bool {
	if l.kind != o.kind {
		return false
	}
	switch l.kind {
	case KindInt:
		return l.n == o.n
	case KindText:
		return l.s == o.s
	case KindComposite:
		return Locs(l.elems).Equal(Locs(o.elems))
	}
	return true
}

// String renders l in the textual form accepted by ParseLoc.
func (l Loc) String() string {
	switch l.kind {
	case KindInt:
		return strconv.Itoa(l.n)
	case KindText:
		return strconv.Quote(l.s)
	case KindComposite:
		parts := make([]string, len(l.elems))
		for i, e := range l.elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return "<invalid>"
}

// plain converts l into the ints, strings and slices that yaml and
// msgpack know how to encode.
func (l Loc) plain() interface{} {
	switch l.kind {
	case KindInt:
		return l.n
	case KindText:
		return l.s
	case KindComposite:
		out := make([]interface{}, len(l.elems))
		for i, e := range l.elems {
			out[i] = e.plain()
		}
		return out
	}
	return nil
}

func fromPlain(v interface{}) (l Loc, err error) {
	switch x := v.(type) {
	case Loc:
		return x, nil
	case int:
		return Int(x), nil
	case int8:
		return Int(int(x)), nil
	case int16:
		return Int(int(x)), nil
	case int32:
		return Int(int(x)), nil
	case int64:
		return Int(int(x)), nil
	case uint8:
		return Int(int(x)), nil
	case uint16:
		return Int(int(x)), nil
	case uint32:
		return Int(int(x)), nil
	case uint64:
		return Int(int(x)), nil
	case string:
		return Text(x), nil
	case Locs:
		return Composite(x...), nil
	case []int:
		elems := make([]Loc, len(x))
		for i, n := range x {
			elems[i] = Int(n)
		}
		return Composite(elems...), nil
	case []string:
		elems := make([]Loc, len(x))
		for i, s := range x {
			elems[i] = Text(s)
		}
		return Composite(elems...), nil
	case []interface{}:
		elems := make([]Loc, len(x))
		for i, e := range x {
			elems[i], err = fromPlain(e)
			if err != nil {
				return
			}
		}
		return Composite(elems...), nil
	}
	return l, fmt.Errorf("unsupported locator value %#v (%T)", v, v)
}

// Locs is a locator sequence.
type Locs []Loc

// MakeLocs builds a locator sequence from Go values: ints, strings,
// Locs, Loc, and (nested) slices of those.
func MakeLocs(vals ...interface{}) (locs Locs, err error) {
	locs = make(Locs, len(vals))
	for i, v := range vals {
		locs[i], err = fromPlain(v)
		if err != nil {
			return nil, err
		}
	}
	return
}

// L is MakeLocs for literal values known to be valid; it panics
// otherwise.
func L(vals ...interface{}) Locs {
	locs, err := MakeLocs(vals...)
	if err != nil {
		panic(err)
	}
	return locs
}

func (locs Locs) Equal(o Locs) bool {
	if len(locs) != len(o) {
		return false
	}
	for i := range locs {
		if !locs[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (locs Locs) String() string {
	return Composite(locs...).String()
}

// Join returns a new sequence holding locs followed by more.
func (locs Locs) Join(more ...Loc) Locs {
	out := make(Locs, 0, len(locs)+len(more))
	out = append(out, locs...)
	return append(out, more...)
}

func (locs Locs) plain() []interface{} {
	out := make([]interface{}, len(locs))
	for i, l := range locs {
		out[i] = l.plain()
	}
	return out
}

// MarshalYAML implements yaml.Marshaler.
func (l Loc) MarshalYAML() (interface{}, error) {
	return l.plain(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Loc) UnmarshalYAML(unmarshal func(interface{}) error) (err error) {
	var v interface{}
	err = unmarshal(&v)
	if err != nil {
		return
	}
	*l, err = fromPlain(v)
	return
}

// ParseLoc parses the textual form produced by Loc.String.  Bare words
// that are not integers are accepted as text, so `afs ls conf abc` works
// without shell quoting.
func ParseLoc(s string) (l Loc, err error) {
	p := &locParser{in: strings.TrimSpace(s)}
	l, err = p.parse()
	if err != nil {
		return
	}
	p.skipSpace()
	if p.pos != len(p.in) {
		return l, fmt.Errorf("trailing input in locator %q at %d", s, p.pos)
	}
	return
}

// ParseLocs parses each argument with ParseLoc.
func ParseLocs(args ...string) (locs Locs, err error) {
	locs = make(Locs, len(args))
	for i, a := range args {
		locs[i], err = ParseLoc(a)
		if err != nil {
			return nil, err
		}
	}
	return
}

type locParser struct {
	in  string
	pos int
}

func (p *locParser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t') {
		p.pos++
	}
}

func (p *locParser) parse() (l Loc, err error) {
	p.skipSpace()
	if p.pos >= len(p.in) {
		return l, fmt.Errorf("empty locator")
	}
	switch p.in[p.pos] {
	case '[':
		p.pos++
		var elems []Loc
		for {
			p.skipSpace()
			if p.pos < len(p.in) && p.in[p.pos] == ']' {
				p.pos++
				return Composite(elems...), nil
			}
			if len(elems) > 0 {
				if p.pos >= len(p.in) || p.in[p.pos] != ',' {
					return l, fmt.Errorf("expected ',' at %d in %q", p.pos, p.in)
				}
				p.pos++
			}
			e, err := p.parse()
			if err != nil {
				return l, err
			}
			elems = append(elems, e)
		}
	case '"':
		rest := p.in[p.pos:]
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return l, err
		}
		s, err := strconv.Unquote(q)
		if err != nil {
			return l, err
		}
		p.pos += len(q)
		return Text(s), nil
	}
	start := p.pos
	for p.pos < len(p.in) && !strings.ContainsRune(",] \t", rune(p.in[p.pos])) {
		p.pos++
	}
	word := p.in[start:p.pos]
	n, err := strconv.Atoi(word)
	if err == nil {
		return Int(n), nil
	}
	return Text(word), nil
}
