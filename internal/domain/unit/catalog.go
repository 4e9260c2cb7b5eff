package unit

// Catalog is the ruleset's type table, built once from the engine handshake
// and read-only afterwards.
type Catalog struct {
	types map[string]TypeInfo
}

// NewCatalog creates a catalog from the given type declarations. Later
// duplicates of a type name win, matching how the engine resolves ruleset
// overrides.
func NewCatalog(infos []TypeInfo) *Catalog {
	types := make(map[string]TypeInfo, len(infos))
	for _, info := range infos {
		types[info.Name] = info
	}
	return &Catalog{types: types}
}

// Lookup returns the type info for the given type name.
func (c *Catalog) Lookup(name string) (TypeInfo, bool) {
	info, ok := c.types[name]
	return info, ok
}

// IsFactory reports whether the named type is a factory. Unknown types are
// not factories.
func (c *Catalog) IsFactory(name string) bool {
	info, ok := c.types[name]
	return ok && info.IsFactory
}

// CanTransport reports whether the named type can carry other units.
func (c *Catalog) CanTransport(name string) bool {
	info, ok := c.types[name]
	return ok && info.CanTransport
}

// BuildersOf returns the names of all factory types able to build typeName.
func (c *Catalog) BuildersOf(typeName string) []string {
	var builders []string
	for name, info := range c.types {
		if info.CanBuild(typeName) {
			builders = append(builders, name)
		}
	}
	return builders
}

// Len returns the number of known types.
func (c *Catalog) Len() int {
	return len(c.types)
}
