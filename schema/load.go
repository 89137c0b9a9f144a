package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/typeshape/errors"
)

// LoadYAML reads a schema document into a new registry.
//
//	types:
//	  Point:
//	    fields:
//	      x: int
//	      y: int
//	      label: {type: string, default: origin}
//	  Shape:
//	    variants: [Circle, Square]
//	  Color:
//	    enum: [red, green, blue]
//	  Tree:
//	    params: [T]
//	    fields:
//	      value: T
//	      children: list[Tree[T]]
//
// Field and type order is preserved.
func LoadYAML(data []byte) (*Registry, error) {
	r, _ := NewRegistry()
	if err := r.LoadYAML(data); err != nil {
		return nil, err
	}
	return r, nil
}

type pendingDef struct {
	def  *Def
	node *yaml.Node
}

// LoadYAML adds the definitions of a schema document to the registry. Types in
// the document may reference each other and anything already registered.
func (r *Registry) LoadYAML(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindSyntax, err, "invalid schema document")
	}
	if len(doc.Content) == 0 {
		return errors.InvalidData(errors.PhaseLoad, nil, "empty schema document")
	}

	root := doc.Content[0]
	types := mappingValue(root, "types")
	if types == nil || types.Kind != yaml.MappingNode {
		return errors.FieldMissing(errors.PhaseLoad, nil, "types")
	}

	// Definitions are created before any body is read so bodies may refer
	// forward and to themselves.
	var pending []pendingDef
	for i := 0; i+1 < len(types.Content); i += 2 {
		name := types.Content[i].Value
		body := types.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return loadError(body, []string{name}, "type body must be a mapping")
		}
		def := &Def{Name: name}
		if params := mappingValue(body, "params"); params != nil {
			if err := params.Decode(&def.Params); err != nil {
				return loadError(params, []string{name, "params"}, "params must be a list of names")
			}
		}
		if err := r.Register(def); err != nil {
			return err
		}
		pending = append(pending, pendingDef{def: def, node: body})
	}

	for _, p := range pending {
		if err := r.fillDef(p.def, p.node); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) fillDef(def *Def, body *yaml.Node) error {
	if fields := mappingValue(body, "fields"); fields != nil {
		if fields.Kind != yaml.MappingNode {
			return loadError(fields, []string{def.Name, "fields"}, "fields must be a mapping")
		}
		for i := 0; i+1 < len(fields.Content); i += 2 {
			f, err := r.loadField(def, fields.Content[i].Value, fields.Content[i+1])
			if err != nil {
				return err
			}
			def.Fields = append(def.Fields, f)
		}
	}

	if variants := mappingValue(body, "variants"); variants != nil {
		var names []string
		if err := variants.Decode(&names); err != nil {
			return loadError(variants, []string{def.Name, "variants"}, "variants must be a list of type names")
		}
		for _, n := range names {
			v, ok := r.Lookup(n)
			if !ok {
				return errors.New(errors.PhaseLoad, errors.KindNotFound).
					Path(def.Name, "variants").
					Detail("variant %q is not defined", n).
					Build()
			}
			def.Variants = append(def.Variants, v)
		}
	}

	if enum := mappingValue(body, "enum"); enum != nil {
		cases, err := loadCases(def, enum)
		if err != nil {
			return err
		}
		def.Cases = cases
	}
	return nil
}

func (r *Registry) loadField(def *Def, name string, node *yaml.Node) (Field, error) {
	path := []string{def.Name, name}
	expr := node.Value
	var dflt *yaml.Node
	if node.Kind == yaml.MappingNode {
		typeNode := mappingValue(node, "type")
		if typeNode == nil {
			return Field{}, errors.FieldMissing(errors.PhaseLoad, path, "type")
		}
		expr = typeNode.Value
		dflt = mappingValue(node, "default")
	} else if node.Kind != yaml.ScalarNode {
		return Field{}, loadError(node, path, "field must be a type expression or a mapping")
	}

	t, err := ParseExpr(expr, r, def.Params)
	if err != nil {
		return Field{}, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Path(path...).
			Cause(err).
			Detail("line %d", node.Line).
			Build()
	}

	f := NewField(name, t)
	if dflt != nil {
		var v any
		if err := dflt.Decode(&v); err != nil {
			return Field{}, loadError(dflt, path, "unreadable default")
		}
		if n, ok := v.(int); ok {
			v = int64(n)
		}
		f = f.WithDefault(v)
	}
	return f, nil
}

// loadCases accepts either a list of labels or a mapping of label to value.
func loadCases(def *Def, node *yaml.Node) ([]EnumCase, error) {
	path := []string{def.Name, "enum"}
	switch node.Kind {
	case yaml.SequenceNode:
		cases := make([]EnumCase, 0, len(node.Content))
		for _, item := range node.Content {
			cases = append(cases, EnumCase{Label: item.Value, Value: item.Value})
		}
		return cases, nil
	case yaml.MappingNode:
		cases := make([]EnumCase, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var v any
			if err := node.Content[i+1].Decode(&v); err != nil {
				return nil, loadError(node.Content[i+1], path, "unreadable enum value")
			}
			cases = append(cases, EnumCase{Label: node.Content[i].Value, Value: v})
		}
		return cases, nil
	}
	return nil, loadError(node, path, "enum must be a list or a mapping")
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func loadError(node *yaml.Node, path []string, msg string) error {
	return errors.InvalidData(errors.PhaseLoad, path, fmt.Sprintf("%s (line %d)", msg, node.Line))
}
