package linkdetector

import "encoding/json"

// Fragment is one labeled span of a larger text: either a link or plain text.
//
// Fragments are immutable values and safe to share between goroutines.
// StartIndex is inclusive and EndIndex exclusive, both zero-based byte
// offsets into the original text, so that
//
//	original[f.StartIndex():f.EndIndex()] == f.String()
type Fragment struct {
	value  string
	start  int
	end    int
	isLink bool
}

// NewText creates a fragment that represents plain text.
// input is the original text the fragment is part of; start (inclusive) and
// end (exclusive) locate the fragment inside it.
func NewText(input string, start, end int) (Fragment, error) {
	return newFragment(false, input, start, end)
}

// NewLink creates a fragment that represents a link.
// input is the original text the fragment is part of; start (inclusive) and
// end (exclusive) locate the fragment inside it.
func NewLink(input string, start, end int) (Fragment, error) {
	return newFragment(true, input, start, end)
}

func newFragment(isLink bool, input string, start, end int) (Fragment, error) {
	switch {
	case start < 0:
		return Fragment{}, &RangeError{
			Reason: "start cannot be less than zero",
			Start:  start, End: end, Length: len(input),
		}
	case end > len(input):
		return Fragment{}, &RangeError{
			Reason: "end cannot be larger than the length of the input",
			Start:  start, End: end, Length: len(input),
		}
	case start > end:
		return Fragment{}, &RangeError{
			Reason: "start cannot be larger than end",
			Start:  start, End: end, Length: len(input),
		}
	}

	return Fragment{
		value:  input[start:end],
		start:  start,
		end:    end,
		isLink: isLink,
	}, nil
}

// IsLink reports whether the fragment represents a link.
func (f Fragment) IsLink() bool {
	return f.isLink
}

// StartIndex returns the position (inclusive) in the original text where
// the fragment starts.
func (f Fragment) StartIndex() int {
	return f.start
}

// EndIndex returns the position (exclusive) in the original text where
// the fragment ends.
func (f Fragment) EndIndex() int {
	return f.end
}

// Len returns the length of the fragment in bytes.
func (f Fragment) Len() int {
	return f.end - f.start
}

// String returns the text captured by the fragment.
func (f Fragment) String() string {
	return f.value
}

// fragmentDoc is the serialized shape of a Fragment.
type fragmentDoc struct {
	Value string `json:"value" yaml:"value"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end"   yaml:"end"`
	Link  bool   `json:"link"  yaml:"link"`
}

func (f Fragment) doc() fragmentDoc {
	return fragmentDoc{Value: f.value, Start: f.start, End: f.end, Link: f.isLink}
}

// MarshalJSON implements json.Marshaler.
func (f Fragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.doc())
}

// MarshalYAML implements yaml.Marshaler (gopkg.in/yaml.v3).
func (f Fragment) MarshalYAML() (any, error) {
	return f.doc(), nil
}
