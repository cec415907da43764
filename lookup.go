package xsd

// LookupType returns the fully built global type (simple or complex) for
// name, constructing it on first access.
func (g *Globals) LookupType(name QName) (Component, error) {
	return g.lookup(g.Types, g.opts.Factories.Types, name)
}

// LookupAttribute returns the fully built global attribute for name.
func (g *Globals) LookupAttribute(name QName) (Component, error) {
	return g.lookup(g.Attributes, g.opts.Factories.Attributes, name)
}

// LookupAttributeGroup returns the fully built attribute group for name.
func (g *Globals) LookupAttributeGroup(name QName) (Component, error) {
	return g.lookup(g.AttributeGroups, g.opts.Factories.AttributeGroups, name)
}

// LookupGroup returns the fully built global model group for name.
func (g *Globals) LookupGroup(name QName) (Component, error) {
	return g.lookup(g.Groups, g.opts.Factories.Groups, name)
}

// LookupNotation returns the fully built notation for name.
func (g *Globals) LookupNotation(name QName) (Component, error) {
	return g.lookup(g.Notations, g.opts.Factories.Notations, name)
}

// LookupElement returns the fully built global element for name.
func (g *Globals) LookupElement(name QName) (Component, error) {
	return g.lookup(g.Elements, g.opts.Factories.Elements, name)
}

// LookupBaseElement returns the element for name from the base-elements
// root set derived during build.
func (g *Globals) LookupBaseElement(name QName) (Component, error) {
	c, ok := g.BaseElements[name]
	if !ok {
		return nil, &LookupError{Kind: "base element", Name: name}
	}
	return c, nil
}

// lookup is the lazy build-on-lookup protocol over one global table. The
// slot's shape selects the branch; every constructed result replaces the
// slot in place, so repeated lookups of a built name are idempotent no-ops.
func (g *Globals) lookup(table map[QName]*Entry, cat Category, name QName) (Component, error) {
	entry, ok := table[name]
	if !ok {
		return nil, &LookupError{Kind: cat.Kind, Name: name}
	}

	switch {
	case entry.finishing:
		// Self-referential construction in progress: the caller observes
		// the placeholder instead of recursing.
		return entry.component, nil

	case entry.component != nil && len(entry.pending) > 0:
		// A built head with queued rewrites: fold the remaining pairs as a
		// redefinition chain, each construction seeing the previous result.
		return g.foldChain(entry, cat, name, entry.component)

	case entry.component != nil:
		if entry.component.Built() {
			return entry.component, nil
		}
		// A partially constructed component left in the slot: re-invoke
		// its construction function with itself as the prior version.
		return g.construct(entry, cat, name, pendingDecl{
			elem:   entry.component.SourceElement(),
			schema: entry.component.SourceSchema(),
		}, entry.component)

	case len(entry.pending) == 1:
		c, err := g.construct(entry, cat, name, entry.pending[0], nil)
		if err != nil {
			return nil, err
		}
		entry.pending = nil
		return c, nil

	case len(entry.pending) > 1 && entry.redefined:
		return g.foldChain(entry, cat, name, nil)

	case len(entry.pending) > 1:
		// Independent declarations sharing one name with no redefinition
		// resolving them.
		return nil, &ConflictError{Kind: cat.Kind, Name: name, Count: len(entry.pending)}

	default:
		return nil, &TypeMismatchError{Kind: cat.Kind, Name: name, Detail: "empty table entry"}
	}
}

// foldChain builds a redefinition chain in order. Each pending pair is
// constructed with the immediately preceding built result as its prior
// version; the final result replaces the slot. A pair is consumed only once
// its construction succeeds, so a failed lookup keeps the raw declaration and
// its diagnostic for retries.
func (g *Globals) foldChain(entry *Entry, cat Category, name QName, prior Component) (Component, error) {
	for len(entry.pending) > 0 {
		c, err := g.construct(entry, cat, name, entry.pending[0], prior)
		if err != nil {
			return nil, err
		}
		entry.pending = entry.pending[1:]
		prior = c
	}
	return prior, nil
}

// construct dispatches a raw declaration to the construction function for
// its source tag and runs the two-phase protocol: the factory allocates a
// shell, the shell is stored as a visible placeholder, then Finish resolves
// internal references.
func (g *Globals) construct(entry *Entry, cat Category, name QName, decl pendingDecl, prior Component) (Component, error) {
	factory, ok := cat.Factories[elementTag(decl.elem)]
	if !ok {
		return nil, &TypeMismatchError{
			Kind:   cat.Kind,
			Name:   name,
			Detail: "element " + elementTag(decl.elem) + " not compatible",
		}
	}

	c, err := factory(g, decl.elem, decl.schema, prior)
	if err != nil {
		return nil, err
	}
	entry.component = c

	if f, ok := c.(Finisher); ok && !c.Built() {
		entry.finishing = true
		err := f.Finish(g)
		entry.finishing = false
		if err != nil {
			return nil, err
		}
	}
	return entry.component, nil
}
