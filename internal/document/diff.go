package document

import "github.com/sergi/go-diff/diffmatchpatch"

// Segment is one run of a tracked change's word-level diff.
type Segment struct {
	Op   string `json:"op" yaml:"op"` // "equal" | "insert" | "delete"
	Text string `json:"text" yaml:"text"`
}

// diffSegments computes the runs that turn original into suggested.
func diffSegments(original, suggested string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, suggested, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	out := make([]Segment, 0, len(diffs))
	for _, df := range diffs {
		op := "equal"
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			op = "insert"
		case diffmatchpatch.DiffDelete:
			op = "delete"
		}
		out = append(out, Segment{Op: op, Text: df.Text})
	}
	return out
}
