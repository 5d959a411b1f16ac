package masking

import (
	"github.com/scalecode-solutions/runeseg"
)

// graphemes splits value into user-perceived characters so that accented
// letters and emoji count as one unit.
func graphemes(value string) []string {
	if value == "" {
		return nil
	}

	clusters := make([]string, 0, len(value))
	for state, remaining := -1, value; len(remaining) > 0; {
		var cluster string
		cluster, remaining, _, state = runeseg.StepString(remaining, state)
		clusters = append(clusters, cluster)
	}
	return clusters
}

// graphemeCount returns the number of user-perceived characters in value.
func graphemeCount(value string) int {
	count := 0
	for state, remaining := -1, value; len(remaining) > 0; {
		_, remaining, _, state = runeseg.StepString(remaining, state)
		count++
	}
	return count
}

// firstGrapheme returns the first user-perceived character of value, or ""
// when value is empty.
func firstGrapheme(value string) string {
	if value == "" {
		return ""
	}
	cluster, _, _, _ := runeseg.StepString(value, -1)
	return cluster
}
