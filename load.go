package xsd

// pendingRedefinition is a redefine-block declaration waiting to be applied
// once every schema has been scanned.
type pendingRedefinition struct {
	name QName
	decl pendingDecl
}

// loadGlobals scans every registered schema for top-level declarations with
// one of the given XSD tags and records them as raw entries in table.
//
// The scan is two-pass per category: redefine blocks are collected first and
// applied only after all schemas have contributed their direct declarations,
// so a redefinition may appear before or after its base declaration in
// document order. A redefinition whose target name never materializes is a
// RedefinitionError.
func (g *Globals) loadGlobals(table map[QName]*Entry, tags ...string) error {
	var redefinitions []pendingRedefinition

	for schema := range g.IterSchemas() {
		root := schema.Root()
		if root == nil {
			continue
		}

		for redefine := range childrenByTag(root, "redefine") {
			for _, tag := range tags {
				for child := range childrenByTag(redefine, tag) {
					name, err := declaredName(child, schema)
					if err != nil {
						return err
					}
					redefinitions = append(redefinitions, pendingRedefinition{
						name: name,
						decl: pendingDecl{elem: child, schema: schema},
					})
				}
			}
		}

		for _, tag := range tags {
			for elem := range childrenByTag(root, tag) {
				name, err := declaredName(elem, schema)
				if err != nil {
					return err
				}
				entry, ok := table[name]
				if !ok {
					entry = &Entry{}
					table[name] = entry
				}
				entry.appendDecl(pendingDecl{elem: elem, schema: schema})
			}
		}
	}

	for _, r := range redefinitions {
		entry, ok := table[r.name]
		if !ok {
			return &RedefinitionError{Name: r.name, Elem: r.decl.elem}
		}
		entry.appendRedefinition(r.decl)
	}

	return nil
}
