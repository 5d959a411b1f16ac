package masking

var (
	// Local parts of two characters or fewer degrade to a full mask.
	emailRule    = SplitOnDelimiterMask(emailDelimiter, PrefixSuffixMask(emailVisiblePrefix, 0))
	phoneRule    = SuffixOnlyMask(phoneVisibleSuffix)
	secretRule   = PrefixSuffixMask(secretVisibleEdge, secretVisibleEdge)
	passwordRule = BoundedFullMask(passwordMaxMask)
)

// NationalID masks a national identification number (e.g. PESEL) entirely.
// Example: 92071234567 -> ***********
func NationalID(value string) string {
	return FullMask(value)
}

// StreetAddress masks a street address as "***".
func StreetAddress(value string) string {
	return LiteralMask(value)
}

// City masks a city name as "***".
func City(value string) string {
	return LiteralMask(value)
}

// PostalCode masks a postal code as "***".
func PostalCode(value string) string {
	return LiteralMask(value)
}

// Email keeps the first two characters of the local part and the domain.
// Example: abcdef@example.com -> ab****@example.com
func Email(value string) string {
	return emailRule(value)
}

// Phone keeps the last four characters of a phone number.
// Example: 123456789 -> *****6789
func Phone(value string) string {
	return phoneRule(value)
}

// FullName reduces a name to its initials.
// Example: Jan, Kowalski -> J. K.
func FullName(first, last string) string {
	return InitialsMask(first, last)
}

// Secret keeps the first and last four characters of an API key or token.
// Example: ABCDEFGHIJKL -> ABCD****IJKL
func Secret(value string) string {
	return secretRule(value)
}

// Password masks a password with at most ten asterisks.
func Password(value string) string {
	return passwordRule(value)
}
