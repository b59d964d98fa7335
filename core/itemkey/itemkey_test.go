package itemkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"WhitespaceOnly", "   \t ", ""},
		{"PlainUPC", "012345678905", "012345678905"},
		{"SpacedUPC", "0 12345 67890 5", "012345678905"},
		{"LowercaseSKU", "sku-chair-01", "SKU-CHAIR-01"},
		{"MixedCase", "Abc123", "ABC123"},
		{"SurroundingSpace", "  ABC123  ", "ABC123"},
		{"InternalTabs", "AB\tC1\t23", "ABC123"},
		{"LeadingZerosKept", "0042", "0042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

// Two representations of the same identifier must collapse to one key.
func TestNormalize_Convergence(t *testing.T) {
	variants := []string{"sku-chair-01", "SKU-CHAIR-01", " sku-chair-01 ", "SKU-chair-01"}
	want := Normalize(variants[0])
	for _, v := range variants {
		assert.Equal(t, want, Normalize(v), "variant %q", v)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := " sku 99 "
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
}
