package metrics

// Context is one ancestor of a metric: the name of a Named collection and
// the properties its tags contributed.
type Context struct {
	Properties map[string]string
	Name       string
}

// Metric is a flattened numeric observation. Lineage starts at the direct
// parent and ends at the root.
type Metric struct {
	Lineage []*Context
	Name    string
	Value   float64
}

// Flatten turns a tree into metrics, naming the root name. Tags are not
// metrics themselves; they become properties of the closest Named ancestor.
func Flatten(name string, t Tree) []Metric {
	switch n := t.(type) {
	case Leaf:
		return []Metric{{Name: name, Value: n.Value}}
	case Named:
		return n.flatten(name)
	case Unnamed:
		return n.flatten(name)
	}
	return nil
}

func (u Unnamed) flatten(name string) []Metric {
	var leaves, nested []Metric
	for _, c := range u.Children {
		switch n := c.(type) {
		case Leaf:
			leaves = append(leaves, Metric{Name: name, Value: n.Value})
		case Named:
			nested = append(nested, n.flatten(name)...)
		case Unnamed:
			nested = append(nested, n.flatten(name)...)
		}
	}
	return append(leaves, nested...)
}

func (nc Named) flatten(name string) []Metric {
	props := make(map[string]string)
	for _, c := range nc.Children {
		if u, ok := c.Tree.(Unnamed); ok {
			u.tags(c.Name, props)
		}
	}
	for _, c := range nc.Children {
		if tag, ok := c.Tree.(Tag); ok {
			props[tag.fullName(c.Name)] = tag.Value
		}
	}
	ctx := &Context{Name: name, Properties: props}

	var leaves, nested []Metric
	for _, c := range nc.Children {
		switch n := c.Tree.(type) {
		case Leaf:
			leaves = append(leaves, Metric{Name: c.Name, Value: n.Value, Lineage: []*Context{ctx}})
		case Named:
			nested = append(nested, n.flatten(c.Name)...)
		case Unnamed:
			nested = append(nested, n.flatten(c.Name)...)
		}
	}
	for i := range nested {
		nested[i].Lineage = append(nested[i].Lineage, ctx)
	}
	return append(leaves, nested...)
}
