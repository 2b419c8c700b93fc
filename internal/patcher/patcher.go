package patcher

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sokinpui/routepin/model"
)

// Spacing follows the directive: it ends the directive line and leaves one
// blank line before the anchor.
const Spacing = "\n\n"

// ErrOffsetOutOfRange is returned by Apply for offsets outside the text.
var ErrOffsetOutOfRange = errors.New("insertion offset out of range")

// Detector reports whether a directive has already been applied.
type Detector struct {
	Marker string
}

// Present reports whether the marker occurs anywhere in text.
func (d Detector) Present(text []byte) bool {
	return bytes.Contains(text, []byte(d.Marker))
}

// Apply inserts directive and Spacing at offset. The returned slice is a new
// buffer; text is left untouched.
func Apply(text []byte, offset int, directive string) ([]byte, error) {
	if offset < 0 || offset > len(text) {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrOffsetOutOfRange, offset, len(text))
	}

	out := make([]byte, 0, len(text)+len(directive)+len(Spacing))
	out = append(out, text[:offset]...)
	out = append(out, directive...)
	out = append(out, Spacing...)
	out = append(out, text[offset:]...)
	return out, nil
}

// Plan is the result of checking one file's content.
type Plan struct {
	Outcome model.Outcome
	Anchor  model.AnchorMatch
	Content []byte // Patched content, set only when Outcome is Updated.
}

// Injector combines detection, anchor lookup and patching.
type Injector struct {
	Detector  Detector
	Locator   *Locator
	Directive string
}

// Plan decides what to do with a file's content without touching disk.
func (in *Injector) Plan(text []byte) (Plan, error) {
	if in.Detector.Present(text) {
		return Plan{Outcome: model.SkippedPresent}, nil
	}

	match, ok := in.Locator.Locate(text)
	if !ok {
		return Plan{Outcome: model.SkippedNoAnchor}, nil
	}

	patched, err := Apply(text, match.Offset, in.Directive)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Outcome: model.Updated, Anchor: match, Content: patched}, nil
}
