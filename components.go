package xsd

import (
	"iter"

	"github.com/agentflare-ai/go-xmldom"
)

// Default component set. These are deliberately thin declaration objects:
// they resolve their global references through the registry but carry none
// of the instance-validation machinery, which is out of scope for the
// linking core.

// componentBase carries the identity and diagnostic back-references shared
// by every component kind.
type componentBase struct {
	name   QName
	elem   xmldom.Element
	schema Schema
	built  bool
}

func (c *componentBase) Name() QName                   { return c.name }
func (c *componentBase) Built() bool                   { return c.built }
func (c *componentBase) SourceElement() xmldom.Element { return c.elem }
func (c *componentBase) SourceSchema() Schema          { return c.schema }

// BindSchema attaches an owning schema after construction. Builtin types
// are constructed without one; the build attaches the meta-schema to the
// anchor types.
func (c *componentBase) BindSchema(s Schema) { c.schema = s }

// newComponentBase computes the component's qualified name from its declared
// name. Inline (anonymous) components keep a zero name.
func newComponentBase(elem xmldom.Element, schema Schema) componentBase {
	base := componentBase{elem: elem, schema: schema}
	if name := string(elem.GetAttribute("name")); name != "" {
		base.name = GetQName(schema.TargetNamespace(), name)
	}
	return base
}

// SimpleType represents an XSD simple type declaration.
type SimpleType struct {
	componentBase

	// Base is the resolved base type of a restriction, or the item type of
	// a list. Nil for primitives.
	Base Component

	// Redefined is the previous version of this type in a redefinition
	// chain, nil outside redefinitions.
	Redefined Component

	// Validator checks a lexical value against the type's value space.
	// Set for builtin types.
	Validator func(value string) error
}

// BuildSimpleType is the construction function for xs:simpleType.
func BuildSimpleType(g *Globals, elem xmldom.Element, schema Schema, prior Component) (Component, error) {
	if st, ok := prior.(*SimpleType); ok && st.elem == elem && !st.built {
		return st, nil
	}
	st := &SimpleType{componentBase: newComponentBase(elem, schema)}
	st.Redefined = prior
	return st, nil
}

// Finish resolves the type's base reference.
func (t *SimpleType) Finish(g *Globals) error {
	for child := range childElements(t.elem) {
		switch string(child.LocalName()) {
		case "restriction":
			base, err := t.resolveBase(g, string(child.GetAttribute("base")))
			if err != nil {
				return err
			}
			t.Base = base
		case "list":
			base, err := t.resolveBase(g, string(child.GetAttribute("itemType")))
			if err != nil {
				return err
			}
			t.Base = base
		case "union":
			// Member types resolve lazily through the registry when
			// needed; the union itself has anySimpleType as its base.
		}
	}
	t.built = true
	return nil
}

// resolveBase resolves a base or item type reference. A redefinition whose
// restriction names the type itself restricts the previous version in the
// chain.
func (t *SimpleType) resolveBase(g *Globals, ref string) (Component, error) {
	if ref == "" {
		return nil, nil
	}
	name := resolveReference(ref, t.schema)
	if t.Redefined != nil && name == t.name {
		return t.Redefined, nil
	}
	return g.LookupType(name)
}

// IterComponents yields the type itself; simple types embed no groups.
func (t *SimpleType) IterComponents() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		yield(t)
	}
}

// ComplexType represents an XSD complex type declaration.
type ComplexType struct {
	componentBase

	Mixed    bool
	Abstract bool

	// Base is the resolved base type of an extension or restriction.
	Base Component

	// Content is the embedded content model group, nil for empty content.
	Content *Group

	// Attributes are the type's declared attributes.
	Attributes []*Attribute

	Redefined Component
}

// BuildComplexType is the construction function for xs:complexType.
func BuildComplexType(g *Globals, elem xmldom.Element, schema Schema, prior Component) (Component, error) {
	if ct, ok := prior.(*ComplexType); ok && ct.elem == elem && !ct.built {
		return ct, nil
	}
	ct := &ComplexType{componentBase: newComponentBase(elem, schema)}
	ct.Redefined = prior
	if string(elem.GetAttribute("mixed")) == "true" {
		ct.Mixed = true
	}
	if string(elem.GetAttribute("abstract")) == "true" {
		ct.Abstract = true
	}
	return ct, nil
}

// Finish parses the content model and resolves base type and attribute
// references. Lookups triggered here observe this type as a placeholder, so
// self-referential content models terminate.
func (t *ComplexType) Finish(g *Globals) error {
	if err := t.parseContent(g, t.elem); err != nil {
		return err
	}
	t.built = true
	return nil
}

func (t *ComplexType) parseContent(g *Globals, parent xmldom.Element) error {
	for child := range childElements(parent) {
		switch string(child.LocalName()) {
		case "sequence", "choice", "all":
			group, err := newInlineGroup(g, child, t.schema)
			if err != nil {
				return err
			}
			t.Content = group
		case "group":
			ref := string(child.GetAttribute("ref"))
			if ref == "" {
				continue
			}
			c, err := g.LookupGroup(resolveReference(ref, t.schema))
			if err != nil {
				return err
			}
			if group, ok := c.(*Group); ok {
				t.Content = group
			}
		case "simpleContent", "complexContent":
			if err := t.parseDerivation(g, child); err != nil {
				return err
			}
		case "attribute":
			attr, err := inlineAttribute(g, child, t.schema)
			if err != nil {
				return err
			}
			t.Attributes = append(t.Attributes, attr)
		case "attributeGroup":
			ref := string(child.GetAttribute("ref"))
			if ref == "" {
				continue
			}
			c, err := g.LookupAttributeGroup(resolveReference(ref, t.schema))
			if err != nil {
				return err
			}
			if ag, ok := c.(*AttributeGroup); ok {
				t.Attributes = append(t.Attributes, ag.Attributes...)
			}
		}
	}
	return nil
}

// parseDerivation handles simpleContent and complexContent extension or
// restriction.
func (t *ComplexType) parseDerivation(g *Globals, content xmldom.Element) error {
	for child := range childElements(content) {
		tag := string(child.LocalName())
		if tag != "extension" && tag != "restriction" {
			continue
		}
		if ref := string(child.GetAttribute("base")); ref != "" {
			name := resolveReference(ref, t.schema)
			if t.Redefined != nil && name == t.name {
				t.Base = t.Redefined
			} else {
				base, err := g.LookupType(name)
				if err != nil {
					return err
				}
				t.Base = base
			}
		}
		if err := t.parseContent(g, child); err != nil {
			return err
		}
	}
	return nil
}

// IterComponents yields the type itself followed by its embedded model
// groups, nested groups included.
func (t *ComplexType) IterComponents() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		if !yield(t) {
			return
		}
		if t.Content != nil {
			for c := range t.Content.IterComponents() {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Element represents a global or local element declaration.
type Element struct {
	componentBase

	// Type is the element's resolved type, nil when no type is declared.
	Type Component

	// substitutionGroup is the head reference as written in the source.
	substitutionGroup string

	Nillable bool
	Abstract bool
}

// BuildElement is the construction function for xs:element. A reference
// occurrence (ref= with no name) resolves to the referenced global element.
func BuildElement(g *Globals, elem xmldom.Element, schema Schema, prior Component) (Component, error) {
	if e, ok := prior.(*Element); ok && e.elem == elem && !e.built {
		return e, nil
	}

	if name := elem.GetAttribute("name"); name == "" {
		if ref := string(elem.GetAttribute("ref")); ref != "" {
			return g.LookupElement(resolveReference(ref, schema))
		}
		return nil, &ParseError{Msg: "element declaration needs a name or a ref", Elem: elem}
	}

	e := &Element{componentBase: newComponentBase(elem, schema)}
	e.substitutionGroup = string(elem.GetAttribute("substitutionGroup"))
	if string(elem.GetAttribute("nillable")) == "true" {
		e.Nillable = true
	}
	if string(elem.GetAttribute("abstract")) == "true" {
		e.Abstract = true
	}
	return e, nil
}

// Finish resolves the element's type reference or builds its inline type.
func (e *Element) Finish(g *Globals) error {
	if ref := string(e.elem.GetAttribute("type")); ref != "" {
		t, err := g.LookupType(resolveReference(ref, e.schema))
		if err != nil {
			return err
		}
		e.Type = t
		e.built = true
		return nil
	}

	for child := range childElements(e.elem) {
		switch string(child.LocalName()) {
		case "simpleType":
			t, err := inlineComponent(g, BuildSimpleType, child, e.schema)
			if err != nil {
				return err
			}
			e.Type = t
		case "complexType":
			t, err := inlineComponent(g, BuildComplexType, child, e.schema)
			if err != nil {
				return err
			}
			e.Type = t
		}
	}
	e.built = true
	return nil
}

// SubstitutionGroupRef returns the substitutionGroup attribute as written,
// or "" when the element declares no head.
func (e *Element) SubstitutionGroupRef() string { return e.substitutionGroup }

// IterComponents yields the element and, for an inline (anonymous) type,
// the type's components.
func (e *Element) IterComponents() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		if !yield(e) {
			return
		}
		if e.Type == nil || e.Type.Name() != (QName{}) {
			return
		}
		if walker, ok := e.Type.(ComponentWalker); ok {
			for c := range walker.IterComponents() {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// ModelGroupKind represents the kind of model group
type ModelGroupKind string

const (
	SequenceGroup ModelGroupKind = "sequence"
	ChoiceGroup   ModelGroupKind = "choice"
	AllGroup      ModelGroupKind = "all"
)

// Group represents a model group: a global xs:group declaration or an
// inline sequence/choice/all compositor.
type Group struct {
	componentBase

	Kind ModelGroupKind

	// particles holds the group's contents in document order. Element
	// occurrences stay as raw pendingDecl pairs until the build's
	// materialization phase substitutes built components in place.
	particles []any

	Redefined Component
}

// BuildGroup is the construction function for a global xs:group.
func BuildGroup(g *Globals, elem xmldom.Element, schema Schema, prior Component) (Component, error) {
	if grp, ok := prior.(*Group); ok && grp.elem == elem && !grp.built {
		return grp, nil
	}
	grp := &Group{componentBase: newComponentBase(elem, schema)}
	grp.Redefined = prior
	return grp, nil
}

// Finish parses the group's compositor. Element occurrences are recorded as
// pending pairs; nested compositors become nested groups; group references
// resolve through the registry.
func (grp *Group) Finish(g *Globals) error {
	for child := range childElements(grp.elem) {
		switch tag := string(child.LocalName()); tag {
		case "sequence", "choice", "all":
			grp.Kind = ModelGroupKind(tag)
			if err := grp.parseParticles(g, child); err != nil {
				return err
			}
		}
	}
	grp.built = true
	return nil
}

// newInlineGroup builds an anonymous group from a compositor element.
func newInlineGroup(g *Globals, compositor xmldom.Element, schema Schema) (*Group, error) {
	grp := &Group{
		componentBase: componentBase{elem: compositor, schema: schema},
		Kind:          ModelGroupKind(string(compositor.LocalName())),
	}
	if err := grp.parseParticles(g, compositor); err != nil {
		return nil, err
	}
	grp.built = true
	return grp, nil
}

func (grp *Group) parseParticles(g *Globals, compositor xmldom.Element) error {
	for child := range childElements(compositor) {
		switch string(child.LocalName()) {
		case "element":
			grp.particles = append(grp.particles, pendingDecl{elem: child, schema: grp.schema})
		case "sequence", "choice", "all":
			nested, err := newInlineGroup(g, child, grp.schema)
			if err != nil {
				return err
			}
			grp.particles = append(grp.particles, nested)
		case "group":
			ref := string(child.GetAttribute("ref"))
			if ref == "" {
				continue
			}
			name := resolveReference(ref, grp.schema)
			if grp.Redefined != nil && name == grp.name {
				// A redefined group referencing itself includes the
				// previous version in the chain.
				grp.particles = append(grp.particles, grp.Redefined)
				continue
			}
			c, err := g.LookupGroup(name)
			if err != nil {
				return err
			}
			grp.particles = append(grp.particles, c)
		}
	}
	return nil
}

// Len returns the number of particles in the group.
func (grp *Group) Len() int { return len(grp.particles) }

// Particle returns the built component at position i, or nil while the slot
// is still a pending element occurrence.
func (grp *Group) Particle(i int) Component {
	if c, ok := grp.particles[i].(Component); ok {
		return c
	}
	return nil
}

// Materialize builds every pending element occurrence in the group and its
// nested groups, substituting the built components in place. Already
// materialized slots are left untouched. Groups may reference each other in
// cycles, so the recursion tracks visited groups.
func (grp *Group) Materialize(build func(elem xmldom.Element, schema Schema) (Component, error)) error {
	return grp.materialize(build, map[*Group]bool{})
}

func (grp *Group) materialize(build func(elem xmldom.Element, schema Schema) (Component, error), seen map[*Group]bool) error {
	if seen[grp] {
		return nil
	}
	seen[grp] = true
	for i, p := range grp.particles {
		switch p := p.(type) {
		case pendingDecl:
			c, err := build(p.elem, p.schema)
			if err != nil {
				return err
			}
			grp.particles[i] = c
		case *Group:
			if err := p.materialize(build, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// IterElements yields every element declaration reachable through the
// group's contents, recursing into nested groups. Slots still pending are
// skipped.
func (grp *Group) IterElements() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		grp.iterElements(yield, map[*Group]bool{})
	}
}

func (grp *Group) iterElements(yield func(Component) bool, seen map[*Group]bool) bool {
	if seen[grp] {
		return true
	}
	seen[grp] = true
	for _, p := range grp.particles {
		switch p := p.(type) {
		case *Group:
			if !p.iterElements(yield, seen) {
				return false
			}
		case ElementComponent:
			if !yield(p) {
				return false
			}
		}
	}
	return true
}

// IterComponents yields the group itself followed by its nested groups.
func (grp *Group) IterComponents() iter.Seq[Component] {
	return func(yield func(Component) bool) {
		grp.iterGroups(yield, map[*Group]bool{})
	}
}

func (grp *Group) iterGroups(yield func(Component) bool, seen map[*Group]bool) bool {
	if seen[grp] {
		return true
	}
	seen[grp] = true
	if !yield(grp) {
		return false
	}
	for _, p := range grp.particles {
		if nested, ok := p.(*Group); ok {
			if !nested.iterGroups(yield, seen) {
				return false
			}
		}
	}
	return true
}

// Attribute represents an attribute declaration.
type Attribute struct {
	componentBase

	// Type is the attribute's resolved simple type, nil when undeclared.
	Type Component
}

// BuildAttribute is the construction function for xs:attribute.
func BuildAttribute(g *Globals, elem xmldom.Element, schema Schema, prior Component) (Component, error) {
	if a, ok := prior.(*Attribute); ok && a.elem == elem && !a.built {
		return a, nil
	}
	return &Attribute{componentBase: newComponentBase(elem, schema)}, nil
}

// Finish resolves the attribute's type reference or builds its inline type.
func (a *Attribute) Finish(g *Globals) error {
	if ref := string(a.elem.GetAttribute("type")); ref != "" {
		t, err := g.LookupType(resolveReference(ref, a.schema))
		if err != nil {
			return err
		}
		a.Type = t
		a.built = true
		return nil
	}
	for child := range childrenByTag(a.elem, "simpleType") {
		t, err := inlineComponent(g, BuildSimpleType, child, a.schema)
		if err != nil {
			return err
		}
		a.Type = t
	}
	a.built = true
	return nil
}

// AttributeGroup represents a named group of attribute declarations.
type AttributeGroup struct {
	componentBase

	Attributes []*Attribute

	Redefined Component
}

// BuildAttributeGroup is the construction function for xs:attributeGroup.
func BuildAttributeGroup(g *Globals, elem xmldom.Element, schema Schema, prior Component) (Component, error) {
	if ag, ok := prior.(*AttributeGroup); ok && ag.elem == elem && !ag.built {
		return ag, nil
	}
	ag := &AttributeGroup{componentBase: newComponentBase(elem, schema)}
	ag.Redefined = prior
	return ag, nil
}

// Finish builds the group's attribute declarations.
func (ag *AttributeGroup) Finish(g *Globals) error {
	for child := range childrenByTag(ag.elem, "attribute") {
		attr, err := inlineAttribute(g, child, ag.schema)
		if err != nil {
			return err
		}
		ag.Attributes = append(ag.Attributes, attr)
	}
	ag.built = true
	return nil
}

// Notation represents an xs:notation declaration.
type Notation struct {
	componentBase

	Public string
	System string
}

// BuildNotation is the construction function for xs:notation.
func BuildNotation(g *Globals, elem xmldom.Element, schema Schema, prior Component) (Component, error) {
	if n, ok := prior.(*Notation); ok && n.elem == elem && !n.built {
		return n, nil
	}
	n := &Notation{componentBase: newComponentBase(elem, schema)}
	n.Public = string(elem.GetAttribute("public"))
	n.System = string(elem.GetAttribute("system"))
	n.built = true
	return n, nil
}

// inlineComponent constructs and finishes an anonymous component that is not
// registered in any global table.
func inlineComponent(g *Globals, factory Factory, elem xmldom.Element, schema Schema) (Component, error) {
	c, err := factory(g, elem, schema, nil)
	if err != nil {
		return nil, err
	}
	if f, ok := c.(Finisher); ok && !c.Built() {
		if err := f.Finish(g); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// inlineAttribute constructs a local attribute declaration.
func inlineAttribute(g *Globals, elem xmldom.Element, schema Schema) (*Attribute, error) {
	c, err := inlineComponent(g, BuildAttribute, elem, schema)
	if err != nil {
		return nil, err
	}
	return c.(*Attribute), nil
}
