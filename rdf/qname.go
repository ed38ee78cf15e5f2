package rdf

import "strings"

// abbreviateQName compacts an IRI to prefix:local against the prefix
// table, preferring the longest matching namespace. Prefix name order
// breaks length ties so output stays deterministic under map
// iteration. It reports false when no binding yields a writable
// prefixed name.
func abbreviateQName(iri string, prefixes map[string]string) (string, bool) {
	bestPrefix := ""
	bestNS := ""
	found := false
	for prefix, ns := range prefixes {
		if ns == "" || !strings.HasPrefix(iri, ns) {
			continue
		}
		if !isQNameLocal(iri[len(ns):]) {
			continue
		}
		if !found || len(ns) > len(bestNS) || (len(ns) == len(bestNS) && prefix < bestPrefix) {
			bestPrefix = prefix
			bestNS = ns
			found = true
		}
	}
	if !found {
		return "", false
	}
	return bestPrefix + ":" + iri[len(bestNS):], true
}

// isQNameLocal reports whether a local part can be written unescaped.
// This is stricter than the PN_LOCAL grammar; names it rejects are
// serialized as full IRIs instead.
func isQNameLocal(value string) bool {
	if value == "" || value[len(value)-1] == '.' {
		return false
	}
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if i == 0 {
			if !isNameStartChar(ch) {
				return false
			}
		} else if !isNameChar(ch) {
			return false
		}
	}
	return true
}

func isNameStartChar(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_'
}

func isNameChar(ch byte) bool {
	return isNameStartChar(ch) || (ch >= '0' && ch <= '9') || ch == '-' || ch == '.'
}
