package witschema

import (
	"path/filepath"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/typeshape/errors"
	"github.com/wippyai/typeshape/schema"
)

// Load converts every type definition of res and registers the named ones
// in reg. Resources, futures and streams carry no value shape and are
// skipped.
func Load(res *wit.Resolve, reg *schema.Registry) error {
	c := NewConverter(reg)
	for _, td := range res.TypeDefs {
		switch td.Kind.(type) {
		case *wit.Resource, *wit.Future, *wit.Stream, wit.ErrorContext:
			continue
		}
		if _, err := c.Convert(td); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a WIT document into a new registry. A .json file is read
// as the JSON form written by `wasm-tools component wit --json`; anything
// else is WIT text, which goes through the embedded wasm-tools.
func LoadFile(path string) (*schema.Registry, error) {
	var (
		res *wit.Resolve
		err error
	)
	if filepath.Ext(path) == ".json" {
		res, err = wit.LoadJSON(path)
	} else {
		res, err = wit.LoadWIT(path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read WIT "+path)
	}

	reg, err := schema.NewRegistry()
	if err != nil {
		return nil, err
	}
	if err := Load(res, reg); err != nil {
		return nil, err
	}
	return reg, nil
}
