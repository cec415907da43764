package xsd

import (
	"fmt"
	"strings"
)

// XSDNamespace is the XML Schema namespace
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// QName represents a qualified XML name
type QName struct {
	Namespace string
	Local     string
}

// String returns the canonical form of a QName: "{uri}local", or the bare
// local name when the namespace is empty.
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return fmt.Sprintf("{%s}%s", q.Namespace, q.Local)
}

// ParseQName parses the canonical "{uri}local" form back into a QName.
// A string without a leading brace is a bare local name.
func ParseQName(s string) QName {
	if strings.HasPrefix(s, "{") {
		if end := strings.Index(s, "}"); end > 0 {
			return QName{Namespace: s[1:end], Local: s[end+1:]}
		}
	}
	return QName{Local: s}
}

// GetQName qualifies a local name with a target namespace.
func GetQName(namespace, local string) QName {
	return QName{Namespace: namespace, Local: local}
}

// resolveReference resolves a prefixed or unprefixed reference (as written in
// a schema document, e.g. "v:vehicle" or "vehicle") to a QName. Prefixes are
// looked up in the xmlns declarations on the schema's root element; an
// unprefixed reference is expanded with the schema's target namespace.
func resolveReference(ref string, schema Schema) QName {
	if ref == "" {
		return QName{}
	}

	parts := strings.SplitN(ref, ":", 2)
	if len(parts) == 2 {
		prefix := parts[0]
		local := parts[1]

		// Common aliases for the XML Schema namespace
		if prefix == "xs" || prefix == "xsd" {
			return QName{Namespace: XSDNamespace, Local: local}
		}

		if root := schema.Root(); root != nil {
			attrs := root.Attributes()
			for i := uint(0); i < attrs.Length(); i++ {
				attr := attrs.Item(i)
				if attr == nil {
					continue
				}
				if string(attr.NamespaceURI()) == "xmlns" && string(attr.LocalName()) == prefix {
					return QName{Namespace: string(attr.NodeValue()), Local: local}
				}
			}
		}

		// Unresolvable prefix: fall back to the target namespace, which
		// covers the common xmlns:t="targetNamespace" pattern.
		return QName{Namespace: schema.TargetNamespace(), Local: local}
	}

	return QName{Namespace: schema.TargetNamespace(), Local: ref}
}
