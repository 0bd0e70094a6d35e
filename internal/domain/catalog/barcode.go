package catalog

import "strings"

// Classify determines the identifier type of a scanned or supplied code.
// Classification never fails: anything that is not a recognisable barcode is custom.
func Classify(code string) IdentifierType {
	code = strings.TrimSpace(code)
	if code == "" || !isDigits(code) {
		return IdentifierTypeCustom
	}

	switch {
	case len(code) == 13 && ValidEAN13(code):
		return IdentifierTypeEAN
	case len(code) == 8 && ValidEAN8(code):
		return IdentifierTypeEAN
	case len(code) == 12 && ValidUPCA(code):
		return IdentifierTypeUPC
	case len(code) >= 4 && len(code) <= 10:
		return IdentifierTypeUnverifiedBarcode
	}
	return IdentifierTypeCustom
}

// ValidEAN13 checks the GS1 check digit of a 13 digit code.
// Positions 0-11 are weighted 1,3,1,3...
func ValidEAN13(code string) bool {
	if len(code) != 13 || !isDigits(code) {
		return false
	}
	return checkDigit(code[:12], 1, 3) == digitAt(code, 12)
}

// ValidEAN8 checks the check digit of an 8 digit code.
// Positions 0-6 are weighted 3,1,3,1...
func ValidEAN8(code string) bool {
	if len(code) != 8 || !isDigits(code) {
		return false
	}
	return checkDigit(code[:7], 3, 1) == digitAt(code, 7)
}

// ValidUPCA checks the check digit of a 12 digit UPC-A code.
// Positions 0-10 are weighted 3,1,3,1...
func ValidUPCA(code string) bool {
	if len(code) != 12 || !isDigits(code) {
		return false
	}
	return checkDigit(code[:11], 3, 1) == digitAt(code, 11)
}

// checkDigit computes (10 - sum mod 10) mod 10 with alternating weights,
// evenWeight applied to even (0-based) positions.
func checkDigit(payload string, evenWeight, oddWeight int) int {
	sum := 0
	for i := 0; i < len(payload); i++ {
		w := oddWeight
		if i%2 == 0 {
			w = evenWeight
		}
		sum += digitAt(payload, i) * w
	}
	return (10 - sum%10) % 10
}

func digitAt(s string, i int) int {
	return int(s[i] - '0')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
