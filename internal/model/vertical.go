package model

// VerticalOther is the classification fallback for unknown industries.
const VerticalOther = "other"

// VerticalDef describes one industry vertical the classifier can emit.
type VerticalDef struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// VerticalRegistry indexes the verticals available to the classify stage.
type VerticalRegistry struct {
	defs  []VerticalDef
	index map[string]VerticalDef
}

// NewVerticalRegistry builds a registry from definitions. The "other"
// vertical is always present even when not listed.
func NewVerticalRegistry(defs []VerticalDef) *VerticalRegistry {
	r := &VerticalRegistry{
		defs:  defs,
		index: make(map[string]VerticalDef, len(defs)+1),
	}
	for _, d := range defs {
		r.index[d.Name] = d
	}
	if _, ok := r.index[VerticalOther]; !ok {
		other := VerticalDef{Name: VerticalOther, Description: "Other industries"}
		r.defs = append(r.defs, other)
		r.index[VerticalOther] = other
	}
	return r
}

// Defs returns all vertical definitions in registry order.
func (r *VerticalRegistry) Defs() []VerticalDef {
	return r.defs
}

// Valid reports whether name is a known vertical.
func (r *VerticalRegistry) Valid(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Normalize returns name if it is a known vertical, else "other".
func (r *VerticalRegistry) Normalize(name string) string {
	if r.Valid(name) {
		return name
	}
	return VerticalOther
}
