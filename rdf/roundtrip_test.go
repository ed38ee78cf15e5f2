package rdf

import (
	"context"
	"sort"
	"testing"

	"github.com/geoknoesis/ldkit-go/vocab"
)

func TestRoundTripGraphsIsomorphic(t *testing.T) {
	g := NewGraph(
		Triple{S: IRI{Value: "http://example.org/s"}, P: IRI{Value: "http://example.org/p"}, O: NewLangLiteral("v", "en")},
		Triple{S: BlankNode{ID: "b1"}, P: IRI{Value: "http://example.org/p2"}, O: IRI{Value: "http://example.org/o"}},
		Triple{S: BlankNode{ID: "b1"}, P: IRI{Value: "http://example.org/p3"}, O: BlankNode{ID: "b2"}},
		Triple{S: IRI{Value: "http://example.org/s2"}, P: IRI{Value: "http://example.org/p4"}, O: NewTypedLiteral("1", IRI{Value: vocab.XsdInteger})},
	)

	for _, format := range Formats() {
		out, err := SerializeGraphString(context.Background(), g, format)
		if err != nil {
			t.Fatalf("format %s: serialize error %v", format, err)
		}
		back, err := ParseGraphString(context.Background(), out, format)
		if err != nil {
			t.Fatalf("format %s: parse error %v\n%s", format, err, out)
		}
		if !isomorphicGraphs(g, back) {
			t.Fatalf("format %s: roundtrip graphs are not isomorphic:\n%s", format, out)
		}
	}
}

func TestCrossFormatConversion(t *testing.T) {
	input := `@prefix ex: <http://example.org/> .
ex:s a ex:Thing .
ex:s ex:p "hello"@en .
ex:s ex:q [ ex:r "nested" ] .
`
	original, err := ParseGraphString(context.Background(), input, FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Turtle -> JSON-LD -> N-Triples -> Turtle, comparing at each hop.
	chain := []Format{FormatJSONLD, FormatNTriples, FormatTurtle}
	current := original
	for _, format := range chain {
		out, err := SerializeGraphString(context.Background(), current, format)
		if err != nil {
			t.Fatalf("format %s: serialize error %v", format, err)
		}
		next, err := ParseGraphString(context.Background(), out, format)
		if err != nil {
			t.Fatalf("format %s: parse error %v\n%s", format, err, out)
		}
		if !isomorphicGraphs(original, next) {
			t.Fatalf("format %s: conversion lost information:\n%s", format, out)
		}
		current = next
	}
}

// isomorphicGraphs reports whether two graphs are equal up to blank
// node relabeling, searching label mappings with backtracking.
func isomorphicGraphs(a, b *Graph) bool {
	if a.Len() != b.Len() {
		return false
	}
	aTriples, bTriples := a.Triples(), b.Triples()
	aBNodes := isoCollectBlankNodes(aTriples)
	bBNodes := isoCollectBlankNodes(bTriples)
	if len(aBNodes) != len(bBNodes) {
		return false
	}
	bCounts := tripleCountMap(bTriples, nil)
	if len(aBNodes) == 0 {
		return countsEqual(tripleCountMap(aTriples, nil), bCounts)
	}
	mapping := map[string]string{}
	used := map[string]bool{}

	var search func(idx int) bool
	search = func(idx int) bool {
		if idx == len(aBNodes) {
			return countsEqual(tripleCountMap(aTriples, mapping), bCounts)
		}
		source := aBNodes[idx]
		for _, target := range bBNodes {
			if used[target] {
				continue
			}
			mapping[source] = target
			if mappingConsistent(aTriples, mapping, bCounts) {
				used[target] = true
				if search(idx + 1) {
					return true
				}
				used[target] = false
			}
			delete(mapping, source)
		}
		return false
	}

	return search(0)
}

func isoCollectBlankNodes(triples []Triple) []string {
	seen := map[string]bool{}
	var labels []string
	add := func(term Term) {
		if bnode, ok := term.(BlankNode); ok && !seen[bnode.ID] {
			seen[bnode.ID] = true
			labels = append(labels, bnode.ID)
		}
	}
	for _, t := range triples {
		add(t.S)
		add(t.O)
	}
	sort.Strings(labels)
	return labels
}

func mappingConsistent(triples []Triple, mapping map[string]string, targetCounts map[string]int) bool {
	counts := map[string]int{}
	for _, t := range triples {
		key, ok := isoTripleKey(t, mapping, true)
		if !ok {
			continue
		}
		counts[key]++
		if counts[key] > targetCounts[key] {
			return false
		}
	}
	return true
}

func tripleCountMap(triples []Triple, mapping map[string]string) map[string]int {
	counts := map[string]int{}
	for _, t := range triples {
		key, ok := isoTripleKey(t, mapping, mapping != nil)
		if !ok {
			return map[string]int{}
		}
		counts[key]++
	}
	return counts
}

func countsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for key, count := range a {
		if b[key] != count {
			return false
		}
	}
	return true
}

func isoTripleKey(t Triple, mapping map[string]string, requireMapped bool) (string, bool) {
	subject, ok := isoTermKey(t.S, mapping, requireMapped)
	if !ok {
		return "", false
	}
	object, ok := isoTermKey(t.O, mapping, requireMapped)
	if !ok {
		return "", false
	}
	return subject + "|I:" + t.P.Value + "|" + object, true
}

func isoTermKey(term Term, mapping map[string]string, requireMapped bool) (string, bool) {
	switch value := term.(type) {
	case IRI:
		return "I:" + value.Value, true
	case BlankNode:
		if mapping == nil {
			return "B:" + value.ID, true
		}
		mapped, ok := mapping[value.ID]
		if !ok {
			return "", !requireMapped
		}
		return "B:" + mapped, true
	case Literal:
		return "L:" + value.Lexical + "|lang:" + value.Lang + "|dt:" + value.Datatype.Value, true
	default:
		return "", false
	}
}
