package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// ClassifiedCode is a single code taken from a compound identifier value
type ClassifiedCode struct {
	Value string         `json:"value"`
	Type  IdentifierType `json:"type"`
}

// SplitCompound splits a value such as "398828/6927116185329, 6938112675813"
// on '/', ',', ';' and whitespace runs and classifies every token.
// Input order is preserved and empty tokens are dropped.
func SplitCompound(raw string) []ClassifiedCode {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == ',' || r == ';' || unicode.IsSpace(r)
	})

	codes := make([]ClassifiedCode, 0, len(tokens))
	for _, token := range tokens {
		codes = append(codes, ClassifiedCode{Value: token, Type: Classify(token)})
	}
	return codes
}

// OrderByPriority returns a copy of codes ordered for primary election:
// ean before upc before unverified_barcode before custom, ties keep input order.
func OrderByPriority(codes []ClassifiedCode) []ClassifiedCode {
	ordered := make([]ClassifiedCode, len(codes))
	copy(ordered, codes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Type.Priority() < ordered[j].Type.Priority()
	})
	return ordered
}

// PrimaryCandidate returns the code that would become primary, the first
// barcode-group code by priority. ok is false when no code is a barcode.
func PrimaryCandidate(codes []ClassifiedCode) (ClassifiedCode, bool) {
	for _, c := range OrderByPriority(codes) {
		if c.Type.IsBarcode() {
			return c, true
		}
	}
	return ClassifiedCode{}, false
}
