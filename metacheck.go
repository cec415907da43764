package xsd

import (
	"fmt"

	"github.com/agentflare-ai/go-xmldom"
)

// knownSchemaTags are the XSD element tags a schema document may contain.
var knownSchemaTags = map[string]bool{
	"schema": true, "annotation": true, "documentation": true, "appinfo": true,
	"element": true, "attribute": true, "simpleType": true, "complexType": true,
	"attributeGroup": true, "group": true, "notation": true,
	"import": true, "include": true, "redefine": true,
	"sequence": true, "choice": true, "all": true, "any": true, "anyAttribute": true,
	"restriction": true, "extension": true, "simpleContent": true, "complexContent": true,
	"list": true, "union": true,
	"unique": true, "key": true, "keyref": true, "selector": true, "field": true,
	"enumeration": true, "pattern": true, "length": true, "minLength": true,
	"maxLength": true, "minInclusive": true, "maxInclusive": true,
	"minExclusive": true, "maxExclusive": true, "totalDigits": true,
	"fractionDigits": true, "whiteSpace": true, "assertion": true,
}

// CheckSchemaDocument validates a schema document structurally against the
// rules of the schema for schemas: the root must be xs:schema, every XSD
// element must be a known construct, global declarations must be named, and
// id attributes must be unique within the document. It is the default
// meta-schema check used for lax-mode pre-validation.
func CheckSchemaDocument(schema Schema) []error {
	root := schema.Root()
	if root == nil {
		return []error{fmt.Errorf("schema has no root element")}
	}

	c := &schemaCheck{ids: make(map[string]bool)}
	if string(root.NamespaceURI()) != XSDNamespace || string(root.LocalName()) != "schema" {
		c.errorf("document root must be an xs:schema element")
	}

	for child := range childElements(root) {
		c.checkGlobal(child)
	}
	c.checkTree(root)
	return c.errs
}

type schemaCheck struct {
	errs []error
	ids  map[string]bool
}

func (c *schemaCheck) errorf(format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf(format, args...))
}

// checkGlobal verifies constraints on direct children of xs:schema.
func (c *schemaCheck) checkGlobal(elem xmldom.Element) {
	tag := string(elem.LocalName())
	switch tag {
	case "element", "attribute", "simpleType", "complexType",
		"attributeGroup", "group", "notation":
		if elem.GetAttribute("name") == "" {
			c.errorf("global %s declaration requires a name", tag)
		}
	case "redefine", "include":
		if elem.GetAttribute("schemaLocation") == "" {
			c.errorf("%s requires a schemaLocation", tag)
		}
	}
}

// checkTree recursively validates every XSD element in the document.
func (c *schemaCheck) checkTree(elem xmldom.Element) {
	if id := string(elem.GetAttribute("id")); id != "" {
		if c.ids[id] {
			c.errorf("duplicate id %q in schema document", id)
		}
		c.ids[id] = true
	}

	tag := string(elem.LocalName())
	if !knownSchemaTags[tag] {
		c.errorf("unknown XSD element: %s", tag)
	}

	switch tag {
	case "restriction", "extension":
		// A base reference or an inline simple type is required for
		// derivations outside a redefine block; redefined types restrict
		// themselves, checked by the loader.
	case "list":
		if elem.GetAttribute("itemType") == "" && !hasChildTag(elem, "simpleType") {
			c.errorf("list requires an itemType or an inline simpleType")
		}
	case "keyref":
		if elem.GetAttribute("refer") == "" {
			c.errorf("keyref requires a refer attribute")
		}
	}

	for child := range childElements(elem) {
		c.checkTree(child)
	}
}

func hasChildTag(elem xmldom.Element, tag string) bool {
	for range childrenByTag(elem, tag) {
		return true
	}
	return false
}
