package vocab

import (
	"strings"
	"testing"
)

func TestConstantsUseTheirNamespace(t *testing.T) {
	tests := []struct {
		constant  string
		namespace string
	}{
		{RdfType, RDFNamespace},
		{RdfFirst, RDFNamespace},
		{RdfRest, RDFNamespace},
		{RdfNil, RDFNamespace},
		{RdfLangString, RDFNamespace},
		{RdfsSubClassOf, RDFSNamespace},
		{XsdString, XSDNamespace},
		{XsdInteger, XSDNamespace},
		{XsdBoolean, XSDNamespace},
		{ShNodeShape, SHACLNamespace},
		{ShPath, SHACLNamespace},
		{ShMinCountConstraintComponent, SHACLNamespace},
	}
	for _, tt := range tests {
		if !strings.HasPrefix(tt.constant, tt.namespace) {
			t.Errorf("%s is not in namespace %s", tt.constant, tt.namespace)
		}
	}
}

func TestRdfTypeValue(t *testing.T) {
	if RdfType != "http://www.w3.org/1999/02/22-rdf-syntax-ns#type" {
		t.Fatalf("unexpected rdf:type IRI %q", RdfType)
	}
}

func TestPrefixesReturnsFreshMap(t *testing.T) {
	p := Prefixes()
	want := map[string]string{
		"rdf":  RDFNamespace,
		"rdfs": RDFSNamespace,
		"xsd":  XSDNamespace,
		"sh":   SHACLNamespace,
	}
	if len(p) != len(want) {
		t.Fatalf("expected %d prefixes, got %d", len(want), len(p))
	}
	for prefix, ns := range want {
		if p[prefix] != ns {
			t.Fatalf("prefix %q: expected %q, got %q", prefix, ns, p[prefix])
		}
	}

	p["ex"] = "http://example.org/"
	if _, ok := Prefixes()["ex"]; ok {
		t.Fatal("mutating the returned map must not affect later calls")
	}
}
