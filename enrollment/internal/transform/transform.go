// Package transform reshapes partner documents with Jolt operation chains.
// The shift, default, remove and sort operations are supported; keys and
// output paths follow Jolt's notation (input tree on the left, output path
// on the right).
package transform

import (
	"bytes"
	"encoding/json"

	"github.com/juju/errors"
	"github.com/tidwall/gjson"
)

var (
	ErrNoSpecs       = errors.New("transform: no specification given")
	ErrInvalidSpec   = errors.New("transform: invalid specification")
	ErrInvalidInput  = errors.New("transform: input is not valid JSON")
	ErrInvalidOutput = errors.New("transform: output is not a JSON object")
)

const (
	opShift   = "shift"
	opDefault = "default"
	opRemove  = "remove"
	opSort    = "sort"
)

type Engine interface {
	// Apply runs every operation of specs, in order, over input.
	Apply(input []byte, specs []json.RawMessage) ([]byte, error)
}

type operation struct {
	Operation string          `json:"operation"`
	Spec      json.RawMessage `json:"spec"`
}

type joltEngine struct{}

func NewEngine() Engine {
	return joltEngine{}
}

func (joltEngine) Apply(input []byte, specs []json.RawMessage) ([]byte, error) {
	if len(specs) == 0 {
		return nil, errors.Trace(ErrNoSpecs)
	}

	if !gjson.ValidBytes(input) {
		return nil, errors.Trace(ErrInvalidInput)
	}

	ops := make([]operation, 0, len(specs))
	for i, raw := range specs {
		var op operation
		if err := json.Unmarshal(raw, &op); err != nil {
			return nil, errors.Annotatef(ErrInvalidSpec, "operation %d: %s", i, err)
		}

		ops = append(ops, op)
	}

	doc := input
	for i, op := range ops {
		var err error
		doc, err = apply(op, doc)
		if err != nil {
			return nil, errors.Annotatef(err, "operation %d (%s)", i, op.Operation)
		}
	}

	return doc, nil
}

func apply(op operation, doc []byte) ([]byte, error) {
	if op.Operation == opSort {
		return sortKeys(doc)
	}

	if len(op.Spec) == 0 || !gjson.ValidBytes(op.Spec) {
		return nil, errors.Annotate(ErrInvalidSpec, "spec must be a JSON object")
	}

	spec := gjson.ParseBytes(op.Spec)
	if !spec.IsObject() {
		return nil, errors.Annotate(ErrInvalidSpec, "spec must be a JSON object")
	}

	switch op.Operation {
	case opShift:
		return shift(spec, gjson.ParseBytes(doc))
	case opDefault:
		return defaults(spec, doc)
	case opRemove:
		return remove(spec, doc)
	default:
		return nil, errors.Annotatef(ErrInvalidSpec, "unsupported operation %q", op.Operation)
	}
}

// ApplyToObject runs Apply and decodes the result, which must be a JSON object.
func ApplyToObject(e Engine, input []byte, specs []json.RawMessage) (map[string]any, error) {
	out, err := e.Apply(input, specs)
	if err != nil {
		return nil, errors.Trace(err)
	}

	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.Trace(ErrInvalidOutput)
	}

	var doc map[string]any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Annotate(ErrInvalidOutput, err.Error())
	}

	return doc, nil
}
