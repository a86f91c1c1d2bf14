package vehiclecount

import "testing"

// TestSummary checks the report format: labels sorted lexicographically,
// title cased, followed by the total
func TestSummary(t *testing.T) {

	c := newTestCounter(t)

	c.Observe(1, 2, 0)
	c.Observe(2, 2, 1)
	c.Observe(3, 5, 2)

	got := c.Snapshot().Summary()

	want := "Vehicle counts:\n" +
		"  Bus          1\n" +
		"  Car          2\n" +
		"  Motorcycle   0\n" +
		"  Truck        0\n" +
		"  Total        3\n"

	if got != want {
		t.Errorf("expected summary:\n%s\ngot:\n%s", want, got)
	}
}

// TestSummaryEmpty checks a snapshot with no observations still lists every
// configured label at zero
func TestSummaryEmpty(t *testing.T) {

	c := newTestCounter(t)

	got := c.Snapshot().Summary()

	want := "Vehicle counts:\n" +
		"  Bus          0\n" +
		"  Car          0\n" +
		"  Motorcycle   0\n" +
		"  Truck        0\n" +
		"  Total        0\n"

	if got != want {
		t.Errorf("expected summary:\n%s\ngot:\n%s", want, got)
	}
}

// TestSnapshotLabels checks label ordering is deterministic
func TestSnapshotLabels(t *testing.T) {

	snap := CountSnapshot{
		Counts: map[string]int{"truck": 1, "bus": 2, "car": 0},
		Total:  3,
	}

	want := []string{"bus", "car", "truck"}
	got := snap.Labels()

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}
