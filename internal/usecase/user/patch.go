package user

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Patch is a partial-update document applied to the JSON form of UserFields.
type Patch interface {
	// Apply returns doc with the patch applied.
	Apply(doc []byte) ([]byte, error)
	// Touched returns the top-level field names the patch writes to.
	Touched() []string
}

// patchableFields are the top-level UserFields members a patch can write.
var patchableFields = []string{"login", "firstName", "lastName"}

// jsonPatch is an RFC 6902 operation list.
type jsonPatch struct {
	ops     jsonpatch.Patch
	touched []string
}

// NewJSONPatch decodes an RFC 6902 JSON Patch document.
func NewJSONPatch(raw []byte) (Patch, error) {
	ops, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid json patch: %w", err)
	}

	seen := make(map[string]bool)
	var touched []string
	for _, op := range ops {
		path, err := op.Path()
		if err != nil {
			return nil, fmt.Errorf("invalid json patch: %w", err)
		}
		if op.Kind() == "test" {
			continue
		}

		paths := []string{path}
		if op.Kind() == "move" {
			if from, err := op.From(); err == nil {
				paths = append(paths, from)
			}
		}
		for _, p := range paths {
			fields := []string{topLevelField(p)}
			if p == "" {
				// the root pointer replaces the whole document
				fields = patchableFields
			}
			for _, field := range fields {
				if !seen[field] {
					seen[field] = true
					touched = append(touched, field)
				}
			}
		}
	}

	return &jsonPatch{ops: ops, touched: touched}, nil
}

func (p *jsonPatch) Apply(doc []byte) ([]byte, error) {
	return p.ops.Apply(doc)
}

func (p *jsonPatch) Touched() []string {
	return p.touched
}

// mergePatch is an RFC 7386 merge document.
type mergePatch struct {
	raw     []byte
	touched []string
}

// NewMergePatch decodes an RFC 7386 JSON Merge Patch document. The document must be an object.
func NewMergePatch(raw []byte) (Patch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("invalid merge patch: %w", err)
	}

	touched := make([]string, 0, len(fields))
	for k := range fields {
		touched = append(touched, k)
	}

	return &mergePatch{raw: raw, touched: touched}, nil
}

func (p *mergePatch) Apply(doc []byte) ([]byte, error) {
	return jsonpatch.MergePatch(doc, p.raw)
}

func (p *mergePatch) Touched() []string {
	return p.touched
}

// topLevelField returns the first reference token of a JSON Pointer.
func topLevelField(pointer string) string {
	token := strings.TrimPrefix(pointer, "/")
	if i := strings.IndexByte(token, '/'); i >= 0 {
		token = token[:i]
	}
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
