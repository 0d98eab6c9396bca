package classifier

import (
	"fmt"
	"sort"
)

// LabelCodec is the bidirectional mapping between category names and the
// model's internal class indices.
type LabelCodec struct {
	Classes []string // sorted; index == class index
}

// FitLabels derives the codec from the training labels and encodes them.
func FitLabels(labels []string) (*LabelCodec, []int) {
	uniq := make(map[string]bool)
	for _, l := range labels {
		uniq[l] = true
	}
	classes := make([]string, 0, len(uniq))
	for l := range uniq {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	codec := &LabelCodec{Classes: classes}
	y := make([]int, len(labels))
	for i, l := range labels {
		y[i], _ = codec.Encode(l)
	}
	return codec, y
}

// Encode maps a category name to its class index.
func (c *LabelCodec) Encode(name string) (int, error) {
	i := sort.SearchStrings(c.Classes, name)
	if i < len(c.Classes) && c.Classes[i] == name {
		return i, nil
	}
	return 0, fmt.Errorf("unknown label %q", name)
}

// Decode maps a class index back to its category name.
func (c *LabelCodec) Decode(idx int) (string, error) {
	if idx < 0 || idx >= len(c.Classes) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", idx, len(c.Classes))
	}
	return c.Classes[idx], nil
}

// Len returns the number of classes.
func (c *LabelCodec) Len() int { return len(c.Classes) }
