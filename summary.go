package vehiclecount

import (
	"fmt"
	"sort"
	"strings"
)

// CountSnapshot is a consistent point in time copy of the counter state,
// mapping each label to the number of distinct objects counted for it
type CountSnapshot struct {
	// Counts per label.  Labels configured in the class map are present
	// even when still at zero
	Counts map[string]int
	// Total is the number of distinct objects counted across all labels
	Total int
}

// Labels returns the snapshot's labels sorted lexicographically
func (s CountSnapshot) Labels() []string {

	labels := make([]string, 0, len(s.Counts))

	for label := range s.Counts {
		labels = append(labels, label)
	}

	sort.Strings(labels)

	return labels
}

// Summary renders the snapshot as a multi line report with one row per
// label in lexicographic order followed by the total, eg:
//
//	Vehicle counts:
//	  Bus          1
//	  Car          3
//	  Total        4
func (s CountSnapshot) Summary() string {

	var b strings.Builder

	b.WriteString("Vehicle counts:\n")

	for _, label := range s.Labels() {
		fmt.Fprintf(&b, "  %-12s %d\n", title(label), s.Counts[label])
	}

	fmt.Fprintf(&b, "  %-12s %d\n", "Total", s.Total)

	return b.String()
}

// title upper cases the first letter of a label for display
func title(label string) string {
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
