package geocode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAddress_Structured(t *testing.T) {
	r := &Result{
		DisplayName: "should not be used",
		Address: AddressDetails{
			HouseNumber:   "12",
			Road:          "خیابان ولیعصر",
			Neighbourhood: "ونک",
			City:          "تهران",
			State:         "استان تهران",
			Country:       "ایران",
		},
	}

	got := FormatAddress(r)
	assert.Equal(t, "12، خیابان ولیعصر، ونک، تهران، استان تهران، ایران", got)
}

func TestFormatAddress_CityFallsBackToTownOrVillage(t *testing.T) {
	r := &Result{
		Address: AddressDetails{
			Road:    "جاده اصلی",
			Village: "ده بالا",
			State:   "استان یزد",
			Country: "ایران",
		},
	}

	got := FormatAddress(r)
	assert.Contains(t, got, "ده بالا")
	assert.Equal(t, "جاده اصلی، ده بالا، استان یزد، ایران", got)
}

func TestFormatAddress_UnstructuredUsesDisplayName(t *testing.T) {
	r := &Result{
		DisplayName: "میدان آزادی ,  تهران ,, ایران",
	}

	got := FormatAddress(r)
	assert.Equal(t, "میدان آزادی، تهران، ایران", got)
}

func TestFormatAddress_Truncation(t *testing.T) {
	r := &Result{
		DisplayName: strings.Repeat("آ", 300),
	}

	got := FormatAddress(r)
	assert.Equal(t, 120, len([]rune(got)))
}

func TestFormatAddress_Nil(t *testing.T) {
	assert.Equal(t, "", FormatAddress(nil))
}

func TestFallbackAddress(t *testing.T) {
	got := FallbackAddress(35.70, 51.40)
	assert.Contains(t, got, "35.7000")
	assert.Contains(t, got, "51.4000")
	assert.Contains(t, got, "موقعیت انتخاب‌شده")
}

func TestNormalizePunctuation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ASCII commas", in: "a, b,c", want: "a، b، c"},
		{name: "Empty segments dropped", in: "a،،b", want: "a، b"},
		{name: "Extra whitespace", in: "  a  ،  b  ", want: "a، b"},
		{name: "Already clean", in: "تهران، ایران", want: "تهران، ایران"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePunctuation(tt.in))
		})
	}
}
