package transform

import (
	"sort"

	"github.com/ipcforge/ipcforge/errors"
)

// edit is one text change against the original source. start == end is a
// pure insertion; start < end replaces the span.
type edit struct {
	start int
	end   int
	text  string
}

// Segment maps one byte range of the transformed output back to the
// original file. Replacements keep the span they replaced as their origin;
// purely inserted text (appended registrations, synthesized imports) is
// marked synthesized with OrigStart/OrigEnd of -1.
type Segment struct {
	NewStart  int `json:"new_start"`
	NewEnd    int `json:"new_end"`
	OrigStart int `json:"orig_start"`
	OrigEnd   int `json:"orig_end"`
}

// Synthesized reports whether the segment has no origin in the old text.
func (s Segment) Synthesized() bool {
	return s.OrigStart < 0
}

// assemble applies the accumulated edits against the original source and
// produces the transformed text plus the position mapping. Edits must not
// overlap; overlapping edits indicate a generator bug and fail the
// transform rather than emitting corrupt output.
func assemble(src []byte, edits []edit) ([]byte, []Segment, error) {
	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	var out []byte
	var segments []Segment
	pos := 0

	appendSegment := func(newStart, newEnd, origStart, origEnd int) {
		if newStart == newEnd {
			return
		}
		segments = append(segments, Segment{
			NewStart:  newStart,
			NewEnd:    newEnd,
			OrigStart: origStart,
			OrigEnd:   origEnd,
		})
	}

	for _, e := range sorted {
		if e.start < 0 || e.end > len(src) || e.start > e.end {
			return nil, nil, errors.Newf("edit span [%d, %d) out of bounds for %d-byte source", e.start, e.end, len(src))
		}
		if e.start < pos {
			return nil, nil, errors.Newf("overlapping edit at byte %d (already consumed through %d)", e.start, pos)
		}

		// Untouched text before this edit.
		if e.start > pos {
			newStart := len(out)
			out = append(out, src[pos:e.start]...)
			appendSegment(newStart, len(out), pos, e.start)
		}

		newStart := len(out)
		out = append(out, e.text...)
		if e.start < e.end {
			appendSegment(newStart, len(out), e.start, e.end)
		} else {
			appendSegment(newStart, len(out), -1, -1)
		}
		pos = e.end
	}

	if pos < len(src) {
		newStart := len(out)
		out = append(out, src[pos:]...)
		appendSegment(newStart, len(out), pos, len(src))
	}

	return out, segments, nil
}
