package xsd

import (
	"iter"

	"github.com/agentflare-ai/go-xmldom"
)

// childElements iterates the XSD-namespace element children of parent.
func childElements(parent xmldom.Element) iter.Seq[xmldom.Element] {
	return func(yield func(xmldom.Element) bool) {
		if parent == nil {
			return
		}
		children := parent.Children()
		for i := uint(0); i < children.Length(); i++ {
			child := children.Item(i)
			if child == nil {
				continue
			}
			if string(child.NamespaceURI()) != XSDNamespace {
				continue
			}
			if !yield(child) {
				return
			}
		}
	}
}

// childrenByTag iterates the XSD-namespace children of parent with the given
// local tag name.
func childrenByTag(parent xmldom.Element, tag string) iter.Seq[xmldom.Element] {
	return func(yield func(xmldom.Element) bool) {
		for child := range childElements(parent) {
			if string(child.LocalName()) != tag {
				continue
			}
			if !yield(child) {
				return
			}
		}
	}
}

// declaredName reads the required "name" attribute of a global declaration
// and qualifies it with the schema's target namespace.
func declaredName(elem xmldom.Element, schema Schema) (QName, error) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return QName{}, &ParseError{
			Msg:  "missing required attribute 'name' on " + string(elem.LocalName()),
			Elem: elem,
		}
	}
	return GetQName(schema.TargetNamespace(), name), nil
}

// elementTag returns the XSD local tag of elem, or "" when elem is not in
// the XSD namespace.
func elementTag(elem xmldom.Element) string {
	if elem == nil {
		return ""
	}
	if string(elem.NamespaceURI()) != XSDNamespace {
		return ""
	}
	return string(elem.LocalName())
}
