package metrics

// Tree is the exported form of a value. Leaf carries a number, Tag a
// string property; Named and Unnamed group children with and without names.
type Tree interface {
	tree()
}

// Tag is a string property. Its full name is the name of the component it
// belongs to followed by Postfix.
type Tag struct {
	Postfix string
	Value   string
}

// Leaf is a numeric observation.
type Leaf struct {
	Value float64
}

// Child is one named component of a Named collection.
type Child struct {
	Tree Tree
	Name string
}

// Named is a collection whose children are named, such as a record. Each
// Named collection becomes a context in the lineage of the metrics below it.
type Named struct {
	Children []Child
}

// Unnamed is a collection of anonymous children, such as a list. Its tags
// attach to the enclosing Named collection under the collection's name.
type Unnamed struct {
	Children []Tree
}

func (Tag) tree()     {}
func (Leaf) tree()    {}
func (Named) tree()   {}
func (Unnamed) tree() {}

func (t Tag) fullName(name string) string { return name + t.Postfix }

// tags collects the direct tag children of u, named after name.
func (u Unnamed) tags(name string, into map[string]string) {
	for _, c := range u.Children {
		if tag, ok := c.(Tag); ok {
			into[tag.fullName(name)] = tag.Value
		}
	}
}
