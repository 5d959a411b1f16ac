package masking

import (
	"strings"
)

// stars returns n mask characters.
func stars(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(string(maskRune), n)
}

// FullMask replaces every character of value with an asterisk.
func FullMask(value string) string {
	return stars(graphemeCount(value))
}

// LiteralMask replaces any non-empty value with "***", hiding its length.
func LiteralMask(value string) string {
	if value == "" {
		return ""
	}
	return literalMask
}

// PrefixSuffixMask keeps the first prefix and last suffix characters and
// masks the rest. Values too short to reveal prefix+suffix characters are
// fully masked.
func PrefixSuffixMask(prefix, suffix int) Rule {
	prefix = max(prefix, 0)
	suffix = max(suffix, 0)

	return func(value string) string {
		clusters := graphemes(value)
		n := len(clusters)
		if n <= prefix+suffix {
			return stars(n)
		}

		var b strings.Builder
		b.Grow(len(value))
		for _, c := range clusters[:prefix] {
			b.WriteString(c)
		}
		b.WriteString(stars(n - prefix - suffix))
		for _, c := range clusters[n-suffix:] {
			b.WriteString(c)
		}
		return b.String()
	}
}

// SuffixOnlyMask keeps the last suffix characters and masks the rest.
func SuffixOnlyMask(suffix int) Rule {
	return PrefixSuffixMask(0, suffix)
}

// SplitOnDelimiterMask masks the part of value before the first delim with
// local and appends the delimiter and everything after it unchanged. Values
// without the delimiter are fully masked.
func SplitOnDelimiterMask(delim string, local Rule) Rule {
	if local == nil {
		local = FullMask
	}

	return func(value string) string {
		// An empty delimiter would match at offset zero and expose the whole value.
		if delim == "" {
			return FullMask(value)
		}

		i := strings.Index(value, delim)
		if i < 0 {
			return FullMask(value)
		}
		return local(value[:i]) + value[i:]
	}
}

// InitialsMask reduces a two-part name to its initials, e.g. "J. K.".
// An empty part yields an empty initial.
func InitialsMask(first, last string) string {
	return firstGrapheme(first) + ". " + firstGrapheme(last) + "."
}

// BoundedFullMask masks value with at most limit asterisks so that very long
// secrets do not reveal their length.
func BoundedFullMask(limit int) Rule {
	limit = max(limit, 0)

	return func(value string) string {
		return stars(min(graphemeCount(value), limit))
	}
}
