package transform

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/juju/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type write struct {
	path string
	raw  string
}

// defaults fills in spec values wherever the document lacks them or holds
// null. Existing values are never replaced.
func defaults(spec gjson.Result, doc []byte) ([]byte, error) {
	if trimmed := bytes.TrimSpace(doc); len(trimmed) == 0 || string(trimmed) == "null" {
		doc = []byte("{}")
	}

	var writes []write
	if err := collectDefaults(spec, gjson.ParseBytes(doc), "", &writes); err != nil {
		return nil, errors.Trace(err)
	}

	for _, wr := range writes {
		var err error
		if doc, err = sjson.SetRawBytes(doc, wr.path, []byte(wr.raw)); err != nil {
			return nil, errors.Annotatef(ErrInvalidSpec, "writing %q: %s", wr.path, err)
		}
	}

	return doc, nil
}

func collectDefaults(spec, node gjson.Result, prefix string, writes *[]write) error {
	var err error
	spec.ForEach(func(k, v gjson.Result) bool {
		key := strings.TrimSuffix(k.String(), "[]")

		var targets []string
		if targets, err = defaultTargets(key, node); err != nil {
			return false
		}

		for _, t := range targets {
			existing := child(node, t)
			missing := !existing.Exists() || existing.Type == gjson.Null
			path := join(prefix, t)

			switch {
			case v.IsObject() && missing:
				err = collectDefaults(v, gjson.Result{}, path, writes)
			case v.IsObject() && (existing.IsObject() || existing.IsArray()):
				err = collectDefaults(v, existing, path, writes)
			case !v.IsObject() && missing:
				*writes = append(*writes, write{path: path, raw: v.Raw})
			}
			if err != nil {
				return false
			}
		}

		return true
	})

	return errors.Trace(err)
}

// defaultTargets expands "*" to every existing child and "a|b" to each
// alternative.
func defaultTargets(key string, node gjson.Result) ([]string, error) {
	if key == "*" {
		var keys []string
		err := eachChild(node, func(k string, _ gjson.Result) error {
			keys = append(keys, k)
			return nil
		})
		return keys, errors.Trace(err)
	}

	if key == "" || strings.Contains(key, "*") || strings.ContainsAny(key[:1], "$#&@") {
		return nil, errors.Annotatef(ErrInvalidSpec, "unsupported default key %q", key)
	}

	return strings.Split(key, "|"), nil
}

// remove deletes every path whose spec leaf is reached.
func remove(spec gjson.Result, doc []byte) ([]byte, error) {
	var paths []string
	if err := collectRemovals(spec, gjson.ParseBytes(doc), "", &paths); err != nil {
		return nil, errors.Trace(err)
	}

	// Reverse order keeps the array indices of pending paths valid.
	for i := len(paths) - 1; i >= 0; i-- {
		var err error
		if doc, err = sjson.DeleteBytes(doc, paths[i]); err != nil {
			return nil, errors.Annotatef(ErrInvalidSpec, "removing %q: %s", paths[i], err)
		}
	}

	return doc, nil
}

func collectRemovals(spec, node gjson.Result, prefix string, paths *[]string) error {
	return eachChild(node, func(key string, value gjson.Result) error {
		var leaf, sub gjson.Result
		var found bool
		spec.ForEach(func(k, v gjson.Result) bool {
			m, err := newMatcher(k.String())
			if err != nil || !(m.literal(key) || m.wildcard(key)) {
				return true
			}
			if v.IsObject() {
				sub = v
			} else {
				leaf = v
			}
			found = true
			return false
		})

		switch path := join(prefix, key); {
		case !found:
			return nil
		case leaf.Exists():
			*paths = append(*paths, path)
			return nil
		default:
			return collectRemovals(sub, value, path, paths)
		}
	})
}

// sortKeys rewrites the document with every object's keys in alphabetical
// order.
func sortKeys(doc []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Annotate(ErrInvalidInput, err.Error())
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Trace(err)
	}

	return bytes.TrimSpace(buf.Bytes()), nil
}
