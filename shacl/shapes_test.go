package shacl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/geoknoesis/ldkit-go/rdf"
)

const kinNS = "https://example.org/kinematics#"

func kin(local string) rdf.IRI {
	return rdf.IRI{Value: kinNS + local}
}

func parseTurtle(t *testing.T, doc string) *rdf.Graph {
	t.Helper()
	g, err := rdf.ParseGraphString(context.Background(), doc, rdf.FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

// kinematicsShapes constrains position coordinates: exactly one
// kin:of-position value that is a kin:Position, and at least one
// kin:as-seen-by value that is a kin:Frame. The as-seen-by constraint
// lives in a standalone shape referenced by IRI.
const kinematicsShapes = `
PREFIX sh: <http://www.w3.org/ns/shacl#>
PREFIX kin: <https://example.org/kinematics#>

kin:PositionCoordinateShape a sh:NodeShape ;
    sh:targetClass kin:PositionCoordinate ;
    sh:property [
        sh:path kin:of-position ;
        sh:class kin:Position ;
        sh:minCount 1 ;
        sh:maxCount 1
    ] ;
    sh:property kin:AsSeenByShape .

kin:AsSeenByShape a sh:PropertyShape ;
    sh:path kin:as-seen-by ;
    sh:class kin:Frame ;
    sh:minCount 1 .
`

func TestParseShapesKinematics(t *testing.T) {
	shapes, err := ParseShapes(parseTurtle(t, kinematicsShapes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shapes.NodeShapes) != 1 {
		t.Fatalf("expected 1 node shape, got %d", len(shapes.NodeShapes))
	}
	ns := shapes.NodeShapes[0]
	if ns.ID != kin("PositionCoordinateShape") {
		t.Fatalf("unexpected shape ID %v", ns.ID)
	}
	if len(ns.TargetClasses) != 1 || ns.TargetClasses[0] != kin("PositionCoordinate") {
		t.Fatalf("unexpected target classes %v", ns.TargetClasses)
	}
	if len(ns.Properties) != 2 {
		t.Fatalf("expected 2 property shapes, got %d", len(ns.Properties))
	}

	// Properties sort by path: as-seen-by before of-position.
	seenBy := ns.Properties[0]
	if seenBy.Path != kin("as-seen-by") {
		t.Fatalf("unexpected first path %v", seenBy.Path)
	}
	if seenBy.ID != kin("AsSeenByShape") {
		t.Fatalf("standalone shape must keep its IRI, got %v", seenBy.ID)
	}
	if seenBy.Class != kin("Frame") {
		t.Fatalf("unexpected class %v", seenBy.Class)
	}
	if seenBy.MinCount == nil || *seenBy.MinCount != 1 {
		t.Fatalf("unexpected minCount %v", seenBy.MinCount)
	}
	if seenBy.MaxCount != nil {
		t.Fatalf("maxCount must be unbounded, got %d", *seenBy.MaxCount)
	}

	ofPosition := ns.Properties[1]
	if ofPosition.Path != kin("of-position") {
		t.Fatalf("unexpected second path %v", ofPosition.Path)
	}
	if ofPosition.ID.Kind() != rdf.TermBlankNode {
		t.Fatalf("inline shape must be a blank node, got %v", ofPosition.ID)
	}
	if ofPosition.Class != kin("Position") {
		t.Fatalf("unexpected class %v", ofPosition.Class)
	}
	if ofPosition.MinCount == nil || *ofPosition.MinCount != 1 {
		t.Fatalf("unexpected minCount %v", ofPosition.MinCount)
	}
	if ofPosition.MaxCount == nil || *ofPosition.MaxCount != 1 {
		t.Fatalf("unexpected maxCount %v", ofPosition.MaxCount)
	}
}

func TestParseShapesSharedReference(t *testing.T) {
	g := parseTurtle(t, `
PREFIX sh: <http://www.w3.org/ns/shacl#>
PREFIX kin: <https://example.org/kinematics#>

kin:CoordinateShape a sh:NodeShape ;
    sh:targetClass kin:PositionCoordinate ;
    sh:property kin:AsSeenByShape .

kin:VelocityShape a sh:NodeShape ;
    sh:targetClass kin:VelocityCoordinate ;
    sh:property kin:AsSeenByShape .

kin:AsSeenByShape sh:path kin:as-seen-by ;
    sh:minCount 1 .
`)
	shapes, err := ParseShapes(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shapes.NodeShapes) != 2 {
		t.Fatalf("expected 2 node shapes, got %d", len(shapes.NodeShapes))
	}
	if shapes.NodeShapes[0].Properties[0] != shapes.NodeShapes[1].Properties[0] {
		t.Fatal("shared property shape must be parsed once and shared by pointer")
	}
}

func TestParseShapesNodeShapeOrder(t *testing.T) {
	g := parseTurtle(t, `
PREFIX sh: <http://www.w3.org/ns/shacl#>
PREFIX kin: <https://example.org/kinematics#>

kin:ZShape a sh:NodeShape ; sh:property [ sh:path kin:z ] .
kin:AShape a sh:NodeShape ; sh:property [ sh:path kin:a ] .
`)
	shapes, err := ParseShapes(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shapes.NodeShapes) != 2 {
		t.Fatalf("expected 2 node shapes, got %d", len(shapes.NodeShapes))
	}
	if shapes.NodeShapes[0].ID != kin("AShape") || shapes.NodeShapes[1].ID != kin("ZShape") {
		t.Fatalf("node shapes must sort by ID: %v, %v", shapes.NodeShapes[0].ID, shapes.NodeShapes[1].ID)
	}
}

func TestParseShapesDefinitionErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    error
		message string
	}{
		{
			name: "literal property",
			doc: `kin:S a sh:NodeShape ;
    sh:property "not a shape" .`,
			want: ErrPropertyShapeExpected,
		},
		{
			name: "inline shape without path",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:minCount 1 ] .`,
			want: ErrMissingPath,
		},
		{
			name: "dangling reference",
			doc: `kin:S a sh:NodeShape ;
    sh:property kin:Undefined .`,
			want: ErrMissingPath,
		},
		{
			name: "multiple paths",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:path kin:p ; sh:path kin:q ] .`,
			want:    ErrInvalidPath,
			message: "2 sh:path values",
		},
		{
			name: "literal path",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:path "kin:p" ] .`,
			want: ErrInvalidPath,
		},
		{
			name: "literal class",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:path kin:p ; sh:class "Position" ] .`,
			want: ErrInvalidClass,
		},
		{
			name: "multiple classes",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:path kin:p ; sh:class kin:A ; sh:class kin:B ] .`,
			want:    ErrInvalidClass,
			message: "2 sh:class values",
		},
		{
			name: "literal target class",
			doc: `kin:S a sh:NodeShape ;
    sh:targetClass "Position" ;
    sh:property [ sh:path kin:p ] .`,
			want: ErrInvalidTargetClass,
		},
		{
			name: "string cardinality",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:path kin:p ; sh:minCount "one" ] .`,
			want: ErrInvalidCardinality,
		},
		{
			name: "negative cardinality",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:path kin:p ; sh:maxCount -1 ] .`,
			want: ErrInvalidCardinality,
		},
		{
			name: "multiple cardinalities",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:path kin:p ; sh:minCount 1 ; sh:minCount 2 ] .`,
			want:    ErrInvalidCardinality,
			message: "multiple values",
		},
		{
			name: "min exceeds max",
			doc: `kin:S a sh:NodeShape ;
    sh:property [ sh:path kin:p ; sh:minCount 3 ; sh:maxCount 1 ] .`,
			want:    ErrCardinalityOrder,
			message: "3 > 1",
		},
	}
	prologue := `PREFIX sh: <http://www.w3.org/ns/shacl#>
PREFIX kin: <https://example.org/kinematics#>
`
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseShapes(parseTurtle(t, prologue+tt.doc))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var defErr *DefinitionError
			if !errors.As(err, &defErr) {
				t.Fatalf("expected *DefinitionError, got %T", err)
			}
			if defErr.Shape == nil {
				t.Fatal("definition error must name the offending shape")
			}
			if tt.message != "" && !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("error %q does not mention %q", err, tt.message)
			}
		})
	}
}

func TestParseShapesStandaloneChecked(t *testing.T) {
	// A typed property shape is validated even when no node shape
	// references it.
	g := parseTurtle(t, `
PREFIX sh: <http://www.w3.org/ns/shacl#>
PREFIX kin: <https://example.org/kinematics#>

kin:Orphan a sh:PropertyShape ;
    sh:minCount 1 .
`)
	_, err := ParseShapes(g)
	if !errors.Is(err, ErrMissingPath) {
		t.Fatalf("expected ErrMissingPath, got %v", err)
	}
}

func TestDefinitionErrorMessage(t *testing.T) {
	err := &DefinitionError{Shape: kin("BadShape"), Err: ErrMissingPath}
	want := "shacl: property shape has no sh:path (shape <https://example.org/kinematics#BadShape>)"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrMissingPath) {
		t.Fatal("DefinitionError must unwrap to its cause")
	}
}
