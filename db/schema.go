package db

import (
	"fmt"
	"strings"
)

// Shape declares the expected kind of one locator position.  A
// composite shape may constrain its members with Elem; a nil Elem
// accepts members of any kind.
type Shape struct {
	Kind Kind
	Elem *Shape
}

var (
	IntShape  = Shape{Kind: KindInt}
	TextShape = Shape{Kind: KindText}
)

func CompositeOf(elem Shape) Shape {
	return Shape{Kind: KindComposite, Elem: &elem}
}

func (s Shape) check(l Loc) error {
	if l.Kind() != s.Kind {
		return fmt.Errorf("expected %s, got %s %s", s.Kind, l.Kind(), l)
	}
	if s.Kind == KindComposite && s.Elem != nil {
		for _, e := range l.Elems() {
			if err := s.Elem.check(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// Schema describes one level of the hierarchy: how many locator
// values it consumes (len(Shapes)), how many path segments it
// produces (Depth), and the two mappings between them.
//
// PathMap must be injective over the locators the callers actually
// produce.  ValueMap inverts it.  A PathMap that hashes its input can't
// be inverted; such schemas set Record, and Create stores the locator
// values in a record file inside the directory instead.
type Schema struct {
	Name     string
	Shapes   []Shape
	Depth    int
	PathMap  func(locs Locs) ([]string, error)
	ValueMap func(segs []string) (Locs, error)
	Record   bool
}

func (s *Schema) Arity() int {
	return len(s.Shapes)
}

// FixedSchema is a zero-arity level that always maps to seg.
func FixedSchema(name, seg string) *Schema {
	return &Schema{
		Name:  name,
		Depth: 1,
		PathMap: func(Locs) ([]string, error) {
			return []string{seg}, nil
		},
		ValueMap: func(segs []string) (Locs, error) {
			if len(segs) != 1 || segs[0] != seg {
				return nil, fmt.Errorf("not %s: %v", seg, segs)
			}
			return Locs{}, nil
		},
	}
}

func (s *Schema) checkShapes(locs Locs) error {
	if len(locs) != len(s.Shapes) {
		return fmt.Errorf("schema %s takes %d locators, got %d", s.Name, len(s.Shapes), len(locs))
	}
	for i, shape := range s.Shapes {
		if err := shape.check(locs[i]); err != nil {
			return fmt.Errorf("locator %d: %v", i, err)
		}
	}
	return nil
}

// segments validates locs against the schema and maps them to path
// segments.
func (s *Schema) segments(locs Locs) (segs []string, err error) {
	err = s.checkShapes(locs)
	if err != nil {
		return
	}
	segs, err = s.PathMap(locs)
	if err != nil {
		return
	}
	if len(segs) != s.Depth {
		return nil, fmt.Errorf("schema %s produced %d segments, depth is %d", s.Name, len(segs), s.Depth)
	}
	for _, seg := range segs {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsRune(seg, '/') {
			return nil, fmt.Errorf("schema %s produced bad segment %q", s.Name, seg)
		}
	}
	return
}

// values inverts segments for non-recording schemas, and confirms the
// inversion maps back onto the same segments.  Directories that don't
// belong to this schema fail here and are skipped by Existing.
func (s *Schema) values(segs []string) (locs Locs, err error) {
	if s.ValueMap == nil {
		return nil, fmt.Errorf("schema %s has no value map", s.Name)
	}
	locs, err = s.ValueMap(segs)
	if err != nil {
		return
	}
	back, err := s.segments(locs)
	if err != nil {
		return nil, err
	}
	if strings.Join(back, "/") != strings.Join(segs, "/") {
		return nil, fmt.Errorf("schema %s: %v does not map back to %v", s.Name, locs, segs)
	}
	return
}
