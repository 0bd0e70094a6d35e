package catalog

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func referenceCheckDigit(payload string, weights [2]int) int {
	sum := 0
	for i, r := range payload {
		sum += int(r-'0') * weights[i%2]
	}
	return (10 - sum%10) % 10
}

func randomDigits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.Intn(10))
	}
	return string(b)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code string
		want IdentifierType
	}{
		{"valid EAN-13", "4006381333931", IdentifierTypeEAN},
		{"valid EAN-13 with surrounding spaces", "  5901234123457 ", IdentifierTypeEAN},
		{"EAN-13 with bad check digit", "4006381333932", IdentifierTypeCustom},
		{"valid EAN-8", "96385074", IdentifierTypeEAN},
		{"EAN-8 with bad check digit falls back to unverified", "96385075", IdentifierTypeUnverifiedBarcode},
		{"valid UPC-A", "036000291452", IdentifierTypeUPC},
		{"UPC-A with bad check digit", "036000291453", IdentifierTypeCustom},
		{"short numeric", "398828", IdentifierTypeUnverifiedBarcode},
		{"four digits", "1234", IdentifierTypeUnverifiedBarcode},
		{"ten digits", "1234567890", IdentifierTypeUnverifiedBarcode},
		{"three digits", "123", IdentifierTypeCustom},
		{"eleven digits", "12345678901", IdentifierTypeCustom},
		{"alphanumeric", "PL-4471", IdentifierTypeCustom},
		{"digits with inner space", "4006381 333931", IdentifierTypeCustom},
		{"empty", "", IdentifierTypeCustom},
		{"whitespace only", "   ", IdentifierTypeCustom},
		{"non ascii digits", "٤٠٠٦٣٨١٣٣٣٩٣١", IdentifierTypeCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.code))
		})
	}
}

func TestClassify_ChecksumProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	t.Run("13 digits are ean iff EAN-13 checksum holds", func(t *testing.T) {
		for n := 0; n < 500; n++ {
			payload := randomDigits(rng, 12)
			want := referenceCheckDigit(payload, [2]int{1, 3})
			for d := 0; d <= 9; d++ {
				code := payload + fmt.Sprint(d)
				if d == want {
					assert.Equal(t, IdentifierTypeEAN, Classify(code), code)
				} else {
					assert.Equal(t, IdentifierTypeCustom, Classify(code), code)
				}
			}
		}
	})

	t.Run("8 digits are ean iff EAN-8 checksum holds", func(t *testing.T) {
		for n := 0; n < 500; n++ {
			payload := randomDigits(rng, 7)
			want := referenceCheckDigit(payload, [2]int{3, 1})
			for d := 0; d <= 9; d++ {
				code := payload + fmt.Sprint(d)
				if d == want {
					assert.Equal(t, IdentifierTypeEAN, Classify(code), code)
				} else {
					assert.Equal(t, IdentifierTypeUnverifiedBarcode, Classify(code), code)
				}
			}
		}
	})

	t.Run("12 digits are upc iff UPC-A checksum holds", func(t *testing.T) {
		for n := 0; n < 500; n++ {
			payload := randomDigits(rng, 11)
			want := referenceCheckDigit(payload, [2]int{3, 1})
			for d := 0; d <= 9; d++ {
				code := payload + fmt.Sprint(d)
				if d == want {
					assert.Equal(t, IdentifierTypeUPC, Classify(code), code)
				} else {
					assert.Equal(t, IdentifierTypeCustom, Classify(code), code)
				}
			}
		}
	})
}

func TestChecksumValidators_RejectWrongLength(t *testing.T) {
	assert.False(t, ValidEAN13("400638133393"))
	assert.False(t, ValidEAN8("9638507"))
	assert.False(t, ValidUPCA("0036000291452"))
	assert.False(t, ValidEAN13("40063813339A1"))
}
