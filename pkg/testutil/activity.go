package testutil

import (
	"encoding/json"

	"github.com/brightloop-labs/directline-go/directline"
)

// NewActivity builds a minimal message Activity for use in tests, merging
// in any extra fields supplied.
func NewActivity(text string, extra map[string]any) directline.Activity {
	a := directline.NewActivity("message", extra)
	a["text"] = text
	return a
}

// MustJSON marshals v to a JSON string, panicking on failure. It is meant
// for building fixed, known-good test fixtures (e.g. SSE event bodies),
// not for use on production code paths.
func MustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
