package geocode

import (
	"fmt"
	"strings"
)

// maxAddressLen caps formatted addresses at what the ad form displays
const maxAddressLen = 120

// FormatAddress builds a display address from a geocoding result.
// When structured fields are present the order is house number, road,
// neighborhood, city, province, country; otherwise the raw display name is
// cleaned up. The result is truncated to 120 characters.
func FormatAddress(r *Result) string {
	if r == nil {
		return ""
	}

	a := r.Address
	city := firstNonEmpty(a.City, a.Town, a.Village, a.County)
	neighborhood := firstNonEmpty(a.Neighbourhood, a.Suburb)

	parts := make([]string, 0, 6)
	for _, p := range []string{a.HouseNumber, a.Road, neighborhood, city, a.State, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	var address string
	if len(parts) > 0 {
		address = strings.Join(parts, "، ")
	} else {
		address = r.DisplayName
	}

	return truncate(normalizePunctuation(address), maxAddressLen)
}

// FallbackAddress synthesizes a placeholder when the upstream lookup
// fails or returns nothing.
func FallbackAddress(lat, lng float64) string {
	return fmt.Sprintf("موقعیت انتخاب‌شده (%.4f, %.4f)", lat, lng)
}

// normalizePunctuation collapses the comma soup Nominatim tends to emit:
// both ASCII and Persian commas become "، " with single spacing, and empty
// segments are dropped.
func normalizePunctuation(s string) string {
	s = strings.ReplaceAll(s, ",", "،")
	segments := strings.Split(s, "،")

	cleaned := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.Join(strings.Fields(seg), " ")
		if seg != "" {
			cleaned = append(cleaned, seg)
		}
	}
	return strings.Join(cleaned, "، ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
