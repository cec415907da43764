package xsd

import (
	"fmt"

	"github.com/agentflare-ai/go-xmldom"
)

// Schema is the schema-document collaborator consumed by the global maps:
// a parsed schema exposing its target namespace, an optional resource
// identity, its root element and a mutable error list.
type Schema interface {
	TargetNamespace() string
	// Resource identifies the document the schema was loaded from, or ""
	// for in-memory schemas. Registration de-duplicates by this identity.
	Resource() string
	Root() xmldom.Element
	Errors() []error
	AddError(err error)
	ResetErrors()
}

// SchemaDocument is a ready-made Schema over a parsed XSD document.
type SchemaDocument struct {
	targetNamespace string
	resource        string
	root            xmldom.Element
	errs            []error
}

// NewSchemaDocument wraps a parsed document as a Schema. The document root
// must be an xs:schema element. resource may be empty for in-memory schemas.
func NewSchemaDocument(doc xmldom.Document, resource string) (*SchemaDocument, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	root := doc.DocumentElement()
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	if string(root.NamespaceURI()) != XSDNamespace || string(root.LocalName()) != "schema" {
		return nil, fmt.Errorf("not an XSD schema document")
	}

	sd := &SchemaDocument{
		root:     root,
		resource: resource,
	}
	if tns := root.GetAttribute("targetNamespace"); tns != "" {
		sd.targetNamespace = string(tns)
	}
	return sd, nil
}

// TargetNamespace returns the schema's target namespace, possibly empty.
func (s *SchemaDocument) TargetNamespace() string { return s.targetNamespace }

// Resource returns the schema's resource identity, or "" if unknown.
func (s *SchemaDocument) Resource() string { return s.resource }

// Root returns the parsed xs:schema root element.
func (s *SchemaDocument) Root() xmldom.Element { return s.root }

// Errors returns the errors accumulated on the schema.
func (s *SchemaDocument) Errors() []error { return s.errs }

// AddError appends an error to the schema's error list.
func (s *SchemaDocument) AddError(err error) { s.errs = append(s.errs, err) }

// ResetErrors empties the schema's error list.
func (s *SchemaDocument) ResetErrors() { s.errs = nil }
