package diff

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pkg/errors"
)

// Merge applies patch to doc as a JSON merge patch (RFC 7386) and returns the
// merged document as decoded JSON. doc is not modified. Objects merge
// recursively, everything else is replaced and a null removes the key.
func Merge(doc, patch map[string]any) (map[string]any, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	if patch == nil {
		patch = map[string]any{}
	}
	src, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	p, err := json.Marshal(patch)
	if err != nil {
		return nil, errors.Wrap(err, "encode patch")
	}
	merged, err := jsonpatch.MergePatch(src, p)
	if err != nil {
		return nil, errors.Wrap(err, "merge patch")
	}
	var out map[string]any
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, errors.Wrap(err, "decode merged document")
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
