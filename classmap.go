package vehiclecount

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrEmptyClassMap is returned when a class map is constructed with no
	// entries
	ErrEmptyClassMap = errors.New("class map has no entries")
	// ErrDuplicateClassID is returned when a class map file defines the same
	// raw class id more than once
	ErrDuplicateClassID = errors.New("duplicate class id")
)

// ClassMap maps the raw class ids output by an object detection model to the
// semantic labels of the objects to be counted.  Class ids absent from the
// map are not of interest and observations carrying them are filtered out
// before reaching the Counter.
type ClassMap struct {
	classes map[int]string
}

// NewClassMap creates a ClassMap from the given table of raw class id to
// label.  The table must contain at least one entry.
func NewClassMap(classes map[int]string) (*ClassMap, error) {

	if len(classes) == 0 {
		return nil, ErrEmptyClassMap
	}

	// copy table so later mutation by the caller cannot change classification
	cpy := make(map[int]string, len(classes))

	for id, label := range classes {
		if id < 0 {
			return nil, fmt.Errorf("negative class id %d", id)
		}

		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("empty label for class id %d", id)
		}

		cpy[id] = label
	}

	return &ClassMap{classes: cpy}, nil
}

// VehicleClasses returns a ClassMap of the COCO dataset class ids for the
// vehicle types counted by default: car, motorcycle, bus, and truck.
func VehicleClasses() *ClassMap {
	cm, _ := NewClassMap(map[int]string{
		2: "car",
		3: "motorcycle",
		5: "bus",
		7: "truck",
	})
	return cm
}

// LoadClassMap reads a class map from the given text file.  It should contain
// one entry per line in the format "id:label", eg: "2:car".  Blank lines are
// skipped.
func LoadClassMap(file string) (*ClassMap, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	classes := make(map[int]string)

	// read and parse each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		id, label, ok := strings.Cut(line, ":")

		if !ok {
			return nil, fmt.Errorf("malformed class map line %q", line)
		}

		classID, err := strconv.Atoi(strings.TrimSpace(id))

		if err != nil {
			return nil, fmt.Errorf("malformed class id in line %q: %w", line, err)
		}

		if _, exists := classes[classID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateClassID, classID)
		}

		classes[classID] = strings.TrimSpace(label)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return NewClassMap(classes)
}

// Classify maps a raw detector class id to its semantic label.  The second
// return value is false when the class id is not of interest, which is a
// normal outcome and not an error.
func (c *ClassMap) Classify(classID int) (string, bool) {
	label, ok := c.classes[classID]
	return label, ok
}

// Labels returns all labels in the class map sorted lexicographically
func (c *ClassMap) Labels() []string {

	seen := make(map[string]bool)
	var labels []string

	for _, label := range c.classes {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}

	sort.Strings(labels)

	return labels
}
