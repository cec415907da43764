package xsd

import (
	"iter"
	"log/slog"

	"github.com/agentflare-ai/go-xmldom"
)

// Component is a global XSD declaration once it has been (at least
// partially) constructed. SourceElement and SourceSchema are back-references
// for diagnostics; both are nil for builtin types.
type Component interface {
	Name() QName
	// Built reports whether construction has finished. A component present
	// in a table with Built() == false is a placeholder observed by
	// self-referential lookups.
	Built() bool
	SourceElement() xmldom.Element
	SourceSchema() Schema
}

// Finisher is the second phase of the two-phase construction protocol. A
// factory allocates a shell without resolving internal references; the
// resolver stores the shell in the table and then calls Finish, so lookups
// triggered while finishing observe the placeholder instead of recursing.
type Finisher interface {
	Finish(g *Globals) error
}

// ComponentWalker is implemented by components with nested subcomponents
// (types and elements). The sequence yields the component itself first.
type ComponentWalker interface {
	IterComponents() iter.Seq[Component]
}

// ElementComponent is implemented by element declarations.
type ElementComponent interface {
	Component
	// SubstitutionGroupRef returns the substitutionGroup attribute as
	// written in the source document, or "" when absent.
	SubstitutionGroupRef() string
}

// GroupComponent is implemented by model groups. During the build's
// materialization phase every element occurrence still held as an
// unresolved (element, schema) pair is replaced through Materialize.
type GroupComponent interface {
	Component
	// Materialize builds every pending element occurrence in the group
	// (recursively through nested groups) and substitutes it in place.
	Materialize(build func(elem xmldom.Element, schema Schema) (Component, error)) error
	// IterElements yields every element declaration reachable through the
	// group's contents, nested groups included.
	IterElements() iter.Seq[Component]
}

// Factory constructs a component from its source element. prior is the
// previously built version when folding a redefinition chain, or the
// component's own unfinished shell when completing a placeholder; it is nil
// for a plain first construction.
type Factory func(g *Globals, elem xmldom.Element, schema Schema, prior Component) (Component, error)

// Category binds a declaration category to the construction functions for
// its accepted source tags. Lookup dispatches on the source element's XSD
// tag, so one table can host several component kinds (the types table holds
// both simple and complex types).
type Category struct {
	Kind      string             // diagnostic label, e.g. "type"
	Factories map[string]Factory // XSD local tag -> factory
}

// Factories bundles the per-category construction functions supplied to the
// resolver. The resolver does not own concrete component types; swapping
// this bundle swaps the component model.
type Factories struct {
	Types           Category
	Attributes      Category
	AttributeGroups Category
	Elements        Category
	Groups          Category
	Notations       Category
}

// Validation modes for Build.
const (
	ValidationStrict = "strict"
	ValidationLax    = "lax"
)

// BuildOptions configures a Globals instance.
type BuildOptions struct {
	// Validation selects strict or lax mode. In lax mode every registered
	// schema is pre-validated against the meta-schema check and errors are
	// accumulated on the schema instead of aborting the build.
	Validation string

	// Builtins is the externally supplied builtin type table, merged
	// verbatim into the types table at build start.
	Builtins map[QName]Component

	// Factories supplies the construction functions per category.
	Factories Factories

	// SchemaCheck validates a schema document structurally against the
	// rules of the schema-for-schemas. Used for lax pre-validation.
	SchemaCheck func(schema Schema) []error

	// FinalCheck, when set, runs over every schema after a successful
	// build unless SkipCheck is true.
	FinalCheck func(schema Schema) error

	// SkipCheck disables the final consistency check.
	SkipCheck bool

	Logger *slog.Logger
}

// DefaultOptions returns options wired to the package's default component
// set, builtin type table and schema check.
func DefaultOptions() *BuildOptions {
	return &BuildOptions{
		Validation:  ValidationStrict,
		Builtins:    BuiltinTypes(),
		Factories:   DefaultFactories(),
		SchemaCheck: CheckSchemaDocument,
	}
}

// DefaultFactories returns the factory bundle for the package's default
// component set.
func DefaultFactories() Factories {
	return Factories{
		Types: Category{Kind: "type", Factories: map[string]Factory{
			"simpleType":  BuildSimpleType,
			"complexType": BuildComplexType,
		}},
		Attributes: Category{Kind: "attribute", Factories: map[string]Factory{
			"attribute": BuildAttribute,
		}},
		AttributeGroups: Category{Kind: "attribute group", Factories: map[string]Factory{
			"attributeGroup": BuildAttributeGroup,
		}},
		Elements: Category{Kind: "element", Factories: map[string]Factory{
			"element": BuildElement,
		}},
		Groups: Category{Kind: "group", Factories: map[string]Factory{
			"group": BuildGroup,
		}},
		Notations: Category{Kind: "notation", Factories: map[string]Factory{
			"notation": BuildNotation,
		}},
	}
}
