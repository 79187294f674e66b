package transform

import (
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/tidwall/gjson"
)

// eachChild visits the members of an object, or the elements of an array
// keyed by their index.
func eachChild(node gjson.Result, fn func(key string, value gjson.Result) error) error {
	var err error
	switch {
	case node.IsObject():
		node.ForEach(func(k, v gjson.Result) bool {
			err = fn(k.String(), v)
			return err == nil
		})
	case node.IsArray():
		i := 0
		node.ForEach(func(_, v gjson.Result) bool {
			err = fn(strconv.Itoa(i), v)
			i++
			return err == nil
		})
	}

	return err
}

func child(node gjson.Result, key string) gjson.Result {
	if !node.IsObject() && !node.IsArray() {
		return gjson.Result{}
	}

	return node.Get(gjson.Escape(key))
}

func join(prefix, key string) string {
	if prefix == "" {
		return gjson.Escape(key)
	}

	return prefix + "." + gjson.Escape(key)
}

// matcher is one left-hand key of a spec: a literal, a "|" separated list of
// alternatives, or a pattern where "*" matches any run of characters.
type matcher struct {
	alternatives []string
}

func newMatcher(key string) (matcher, error) {
	if key == "" || strings.ContainsAny(key[:1], "$#&") || strings.HasPrefix(key, "@(") {
		return matcher{}, errors.Annotatef(ErrInvalidSpec, "unsupported key %q", key)
	}

	return matcher{alternatives: strings.Split(key, "|")}, nil
}

func (m matcher) literal(key string) bool {
	for _, alt := range m.alternatives {
		if !strings.Contains(alt, "*") && alt == key {
			return true
		}
	}

	return false
}

func (m matcher) wildcard(key string) bool {
	for _, alt := range m.alternatives {
		if strings.Contains(alt, "*") && glob(alt, key) {
			return true
		}
	}

	return false
}

func glob(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		i := strings.Index(s, part)
		if i < 0 {
			return false
		}
		s = s[i+len(part):]
	}

	return len(s) >= len(last) && strings.HasSuffix(s, last)
}

// outputPath turns a Jolt output path ("a.&1.b[&0]", "list[]") into a gjson
// path, resolving "&n" against the keys matched on the way down.
func outputPath(spec string, matched []string) (string, error) {
	if spec == "" {
		return "", errors.Annotate(ErrInvalidSpec, "empty output path")
	}

	segments := strings.Split(spec, ".")
	path := make([]string, 0, len(segments))
	for _, seg := range segments {
		name, index, hasIndex := strings.Cut(seg, "[")
		resolved, err := substitute(name, matched)
		if err != nil {
			return "", errors.Trace(err)
		}
		if resolved != "" {
			path = append(path, gjson.Escape(resolved))
		}

		if !hasIndex {
			continue
		}

		index, ok := strings.CutSuffix(index, "]")
		if !ok {
			return "", errors.Annotatef(ErrInvalidSpec, "malformed output path %q", spec)
		}

		switch index, err = substitute(index, matched); {
		case err != nil:
			return "", errors.Trace(err)
		case index == "":
			path = append(path, "-1")
		default:
			if _, err := strconv.Atoi(index); err != nil {
				return "", errors.Annotatef(ErrInvalidSpec, "output index %q is not a number", index)
			}
			path = append(path, index)
		}
	}

	if len(path) == 0 {
		return "", errors.Annotatef(ErrInvalidSpec, "output path %q resolves to nothing", spec)
	}

	return strings.Join(path, "."), nil
}

// substitute replaces "&" and "&n" with the key matched n levels up.
func substitute(s string, matched []string) (string, error) {
	if !strings.Contains(s, "&") {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			b.WriteByte(s[i])
			continue
		}

		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j < len(s) && s[j] == '(' {
			return "", errors.Annotatef(ErrInvalidSpec, "unsupported reference in %q", s)
		}

		up := 0
		if j > i+1 {
			up, _ = strconv.Atoi(s[i+1 : j])
		}
		if up >= len(matched) {
			return "", errors.Annotatef(ErrInvalidSpec, "reference &%d in %q is above the root", up, s)
		}

		b.WriteString(matched[len(matched)-1-up])
		i = j - 1
	}

	return b.String(), nil
}
