package transform

import (
	"strings"

	"github.com/juju/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// shiftNode is one level of a shift spec. Keys walk the input tree; a leaf
// holds the output paths the matched value is copied to.
type shiftNode struct {
	match    matcher
	outputs  []string
	children []*shiftNode
	self     []string
}

func parseShift(spec gjson.Result) (*shiftNode, error) {
	node := &shiftNode{}

	var err error
	spec.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if key == "@" {
			node.self, err = leafOutputs(key, v)
			return err == nil
		}

		var m matcher
		if m, err = newMatcher(key); err != nil {
			return false
		}

		var c *shiftNode
		if v.IsObject() {
			c, err = parseShift(v)
		} else {
			c = &shiftNode{}
			c.outputs, err = leafOutputs(key, v)
		}
		if err != nil {
			return false
		}

		c.match = m
		node.children = append(node.children, c)
		return true
	})

	return node, errors.Trace(err)
}

func leafOutputs(key string, v gjson.Result) ([]string, error) {
	switch {
	case v.Type == gjson.String:
		return []string{v.String()}, nil
	case v.IsArray():
		var outputs []string
		for _, o := range v.Array() {
			if o.Type != gjson.String {
				return nil, errors.Annotatef(ErrInvalidSpec, "output of %q must be a path or a list of paths", key)
			}
			outputs = append(outputs, o.String())
		}
		return outputs, nil
	default:
		return nil, errors.Annotatef(ErrInvalidSpec, "output of %q must be a path or a list of paths", key)
	}
}

// lookup picks the spec entry for an input key; literal keys win over
// wildcards.
func (n *shiftNode) lookup(key string) *shiftNode {
	for _, c := range n.children {
		if c.match.literal(key) {
			return c
		}
	}

	for _, c := range n.children {
		if c.match.wildcard(key) {
			return c
		}
	}

	return nil
}

type shiftWriter struct {
	out []byte
}

// shift copies every input value the spec reaches to its output paths. A
// document the spec does not match at all shifts to null.
func shift(spec, input gjson.Result) ([]byte, error) {
	root, err := parseShift(spec)
	if err != nil {
		return nil, errors.Trace(err)
	}

	w := &shiftWriter{}
	if err := w.walk(root, input, nil); err != nil {
		return nil, errors.Trace(err)
	}

	if w.out == nil {
		return []byte("null"), nil
	}

	return w.out, nil
}

func (w *shiftWriter) walk(n *shiftNode, node gjson.Result, matched []string) error {
	if err := w.emit(n.self, node, matched); err != nil {
		return errors.Trace(err)
	}

	return eachChild(node, func(key string, value gjson.Result) error {
		c := n.lookup(key)
		if c == nil {
			return nil
		}

		keys := append(matched[:len(matched):len(matched)], key)
		if c.outputs != nil {
			return w.emit(c.outputs, value, keys)
		}

		return w.walk(c, value, keys)
	})
}

func (w *shiftWriter) emit(outputs []string, value gjson.Result, matched []string) error {
	for _, o := range outputs {
		path, err := outputPath(o, matched)
		if err != nil {
			return errors.Trace(err)
		}

		if err := w.put(path, value.Raw); err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}

// put writes raw at path; a second value for the same path turns it into a
// list holding both.
func (w *shiftWriter) put(path, raw string) error {
	if w.out == nil {
		w.out = []byte("{}")
	}

	if !strings.HasSuffix(path, ".-1") && path != "-1" {
		if existing := gjson.GetBytes(w.out, path); existing.Exists() {
			if existing.IsArray() {
				path += ".-1"
			} else {
				raw = "[" + existing.Raw + "," + raw + "]"
			}
		}
	}

	out, err := sjson.SetRawBytes(w.out, path, []byte(raw))
	if err != nil {
		return errors.Annotatef(ErrInvalidSpec, "writing %q: %s", path, err)
	}

	w.out = out
	return nil
}
