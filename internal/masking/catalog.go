package masking

import (
	"strings"
	"unicode"
)

var categoryNames = [numCategories]string{
	CategoryNationalID:    "national_id",
	CategoryStreetAddress: "street_address",
	CategoryCity:          "city",
	CategoryPostalCode:    "postal_code",
	CategoryEmail:         "email",
	CategoryPhone:         "phone",
	CategoryFullName:      "full_name",
	CategorySecret:        "secret",
	CategoryPassword:      "password",
}

var catalog = [numCategories]Rule{
	CategoryNationalID:    NationalID,
	CategoryStreetAddress: StreetAddress,
	CategoryCity:          City,
	CategoryPostalCode:    PostalCode,
	CategoryEmail:         Email,
	CategoryPhone:         Phone,
	CategoryFullName:      fullNameValue,
	CategorySecret:        Secret,
	CategoryPassword:      Password,
}

// String returns the stable snake_case name of the category.
func (c Category) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the catalog categories.
func (c Category) Valid() bool {
	return c >= 0 && c < numCategories
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Categories returns every category in catalog order.
func Categories() []Category {
	out := make([]Category, 0, numCategories)
	for c := range numCategories {
		out = append(out, c)
	}
	return out
}

// ParseCategory resolves a category by name, ignoring case and surrounding
// whitespace.
func ParseCategory(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range categoryNames {
		if n == name {
			return Category(c), true
		}
	}
	return 0, false
}

// Mask applies the rule bound to c. A full name is given as one value and
// split on its first run of whitespace. Unknown categories are fully masked.
func Mask(c Category, value string) string {
	if value == "" {
		return ""
	}
	if !c.Valid() {
		return FullMask(value)
	}
	return catalog[c](value)
}

// fullNameValue adapts FullName to a single "first last" value.
func fullNameValue(value string) string {
	value = strings.TrimSpace(value)
	i := strings.IndexFunc(value, unicode.IsSpace)
	if i < 0 {
		return FullName(value, "")
	}
	return FullName(value[:i], strings.TrimLeftFunc(value[i:], unicode.IsSpace))
}
