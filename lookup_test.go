package xsd

import (
	"errors"
	"strings"
	"testing"
)

func TestLookupMissingName(t *testing.T) {
	g := newGlobals(t)
	if err := g.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	_, err := g.LookupType(QName{Namespace: "http://example.com/a", Local: "Nope"})
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("Expected LookupError, got %v", err)
	}
	if lookupErr.Kind != "type" {
		t.Errorf("Expected kind %q, got %q", "type", lookupErr.Kind)
	}
}

func TestLookupIdempotent(t *testing.T) {
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/a">
  <xs:simpleType name="Age">
    <xs:restriction base="xs:integer"/>
  </xs:simpleType>
</xs:schema>`

	g := newGlobals(t, src)
	if err := g.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	name := QName{Namespace: "http://example.com/a", Local: "Age"}
	first, err := g.LookupType(name)
	if err != nil {
		t.Fatalf("First lookup failed: %v", err)
	}
	second, err := g.LookupType(name)
	if err != nil {
		t.Fatalf("Second lookup failed: %v", err)
	}
	if first != second {
		t.Error("Repeated lookups returned different objects")
	}
	if !first.Built() {
		t.Error("Lookup returned an unbuilt component")
	}
}

func TestRedefinitionChain(t *testing.T) {
	base := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/a">
  <xs:simpleType name="Size">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
</xs:schema>`
	redefineOnce := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:t="http://example.com/a"
           targetNamespace="http://example.com/a">
  <xs:redefine schemaLocation="base.xsd">
    <xs:simpleType name="Size">
      <xs:restriction base="t:Size"/>
    </xs:simpleType>
  </xs:redefine>
</xs:schema>`
	redefineTwice := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:t="http://example.com/a"
           targetNamespace="http://example.com/a">
  <xs:redefine schemaLocation="v2.xsd">
    <xs:simpleType name="Size">
      <xs:restriction base="t:Size"/>
    </xs:simpleType>
  </xs:redefine>
</xs:schema>`

	g := newGlobals(t, base, redefineOnce, redefineTwice)
	if err := g.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	name := QName{Namespace: "http://example.com/a", Local: "Size"}
	c, err := g.LookupType(name)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	final, ok := c.(*SimpleType)
	if !ok {
		t.Fatalf("Expected *SimpleType, got %T", c)
	}
	middle, ok := final.Redefined.(*SimpleType)
	if !ok {
		t.Fatalf("Final redefinition has no prior version, got %T", final.Redefined)
	}
	original, ok := middle.Redefined.(*SimpleType)
	if !ok {
		t.Fatalf("Middle redefinition has no prior version, got %T", middle.Redefined)
	}
	if original.Redefined != nil {
		t.Error("Original definition should have no prior version")
	}

	// Each rewrite restricts the immediately preceding built version.
	if final.Base != Component(middle) {
		t.Error("Final redefinition does not restrict the middle version")
	}
	if middle.Base != Component(original) {
		t.Error("Middle redefinition does not restrict the original")
	}
	if !final.Built() || !middle.Built() || !original.Built() {
		t.Error("Chain members were not fully built")
	}
}

func TestOrphanRedefinitionRejected(t *testing.T) {
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:t="http://example.com/a"
           targetNamespace="http://example.com/a">
  <xs:redefine schemaLocation="missing.xsd">
    <xs:simpleType name="Ghost">
      <xs:restriction base="t:Ghost"/>
    </xs:simpleType>
  </xs:redefine>
</xs:schema>`

	g := newGlobals(t, src)
	err := g.Build()

	var redefErr *RedefinitionError
	if !errors.As(err, &redefErr) {
		t.Fatalf("Expected RedefinitionError, got %v", err)
	}
	want := QName{Namespace: "http://example.com/a", Local: "Ghost"}
	if redefErr.Name != want {
		t.Errorf("Expected offending name %s, got %s", want, redefErr.Name)
	}
	if redefErr.Elem == nil {
		t.Error("RedefinitionError lost its source element")
	}
}

func TestAmbiguousDuplicateDeclarations(t *testing.T) {
	a := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/a">
  <xs:simpleType name="Dup">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
</xs:schema>`
	b := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/a">
  <xs:simpleType name="Dup">
    <xs:restriction base="xs:integer"/>
  </xs:simpleType>
</xs:schema>`

	g := newGlobals(t, a, b)
	err := g.Build()

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
	if conflictErr.Count != 2 {
		t.Errorf("Expected 2 conflicting declarations, got %d", conflictErr.Count)
	}
}

func TestDuplicateLegitimizedByRedefinition(t *testing.T) {
	// Two independent declarations of one name are only valid when a
	// redefinition later resolves them into an ordered chain.
	a := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/a">
  <xs:simpleType name="Dup">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
</xs:schema>`
	b := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/a">
  <xs:simpleType name="Dup">
    <xs:restriction base="xs:integer"/>
  </xs:simpleType>
</xs:schema>`
	r := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:t="http://example.com/a"
           targetNamespace="http://example.com/a">
  <xs:redefine schemaLocation="b.xsd">
    <xs:simpleType name="Dup">
      <xs:restriction base="t:Dup"/>
    </xs:simpleType>
  </xs:redefine>
</xs:schema>`

	g := newGlobals(t, a, b, r)
	if err := g.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	c, err := g.LookupType(QName{Namespace: "http://example.com/a", Local: "Dup"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	final := c.(*SimpleType)
	if final.Redefined == nil {
		t.Fatal("Chain was not folded")
	}
}

func TestRedeclaredBuiltinFoldsOntoBuiltHead(t *testing.T) {
	// A declaration in the XSD namespace lands on the seeded builtin
	// entry; the built head is folded as a redefinition chain.
	meta := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="integer">
    <xs:restriction base="xs:integer"/>
  </xs:simpleType>
</xs:schema>`

	g := NewGlobals(nil)
	g.Register(parseSchema(t, meta, "meta.xsd"))
	if err := g.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	c, err := g.LookupType(QName{Namespace: XSDNamespace, Local: "integer"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	st := c.(*SimpleType)
	builtin, ok := st.Redefined.(*SimpleType)
	if !ok || builtin.Validator == nil {
		t.Fatal("Redeclared builtin does not chain onto the seeded builtin")
	}
	if st.Base != Component(builtin) {
		t.Error("Self-restriction did not bind to the previous version")
	}
}

func TestLookupTypeMismatch(t *testing.T) {
	g := newGlobals(t)
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/a">
  <xs:notation name="odd" public="odd"/>
</xs:schema>`
	schema := parseSchema(t, src, "")
	g.Register(schema)

	// Force a notation declaration into the types table: the slot's shape
	// is incompatible with the requested category.
	if err := g.loadGlobals(g.Types, "notation"); err != nil {
		t.Fatalf("loadGlobals failed: %v", err)
	}

	// A failed construction keeps the raw declaration, so a retried lookup
	// reports the same diagnostic instead of an empty slot.
	for i := 0; i < 2; i++ {
		_, err := g.LookupType(QName{Namespace: "http://example.com/a", Local: "odd"})
		var mismatch *TypeMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("Lookup %d: expected TypeMismatchError, got %v", i, err)
		}
		if !strings.Contains(mismatch.Detail, "notation") {
			t.Errorf("Lookup %d: diagnostic lost the offending tag: %q", i, mismatch.Detail)
		}
	}
}

func TestMutuallyRecursiveTypes(t *testing.T) {
	// Each type carries an attribute of the other's type: finishing A
	// looks up B, which looks up A again and must observe A's placeholder
	// instead of recursing.
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:t="http://example.com/a"
           targetNamespace="http://example.com/a">
  <xs:complexType name="A">
    <xs:attribute name="b" type="t:B"/>
  </xs:complexType>
  <xs:complexType name="B">
    <xs:attribute name="a" type="t:A"/>
  </xs:complexType>
</xs:schema>`

	g := newGlobals(t, src)
	if err := g.Build(); err != nil {
		t.Fatalf("Build of mutually recursive types failed: %v", err)
	}

	aName := QName{Namespace: "http://example.com/a", Local: "A"}
	bName := QName{Namespace: "http://example.com/a", Local: "B"}

	a, err := g.LookupType(aName)
	if err != nil {
		t.Fatalf("Lookup A failed: %v", err)
	}
	b, err := g.LookupType(bName)
	if err != nil {
		t.Fatalf("Lookup B failed: %v", err)
	}
	if !a.Built() || !b.Built() {
		t.Fatal("Recursive types were not fully built")
	}

	// The placeholder observed during construction is the final object.
	ct := a.(*ComplexType)
	if len(ct.Attributes) != 1 || ct.Attributes[0].Type != b {
		t.Error("A's attribute type does not resolve to B")
	}
	bt := b.(*ComplexType)
	if len(bt.Attributes) != 1 || bt.Attributes[0].Type != a {
		t.Error("B's attribute type does not resolve to A")
	}
}

func TestSelfReferentialElementType(t *testing.T) {
	// An element whose type contains a reference back to the element
	// itself must terminate.
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:t="http://example.com/tree"
           targetNamespace="http://example.com/tree">
  <xs:element name="node" type="t:NodeType"/>
  <xs:complexType name="NodeType">
    <xs:sequence>
      <xs:element ref="t:node"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

	g := newGlobals(t, src)
	if err := g.Build(); err != nil {
		t.Fatalf("Build of self-referential element failed: %v", err)
	}

	node, err := g.LookupElement(QName{Namespace: "http://example.com/tree", Local: "node"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	el := node.(*Element)
	nodeType := el.Type.(*ComplexType)
	if nodeType.Content == nil || nodeType.Content.Len() != 1 {
		t.Fatal("Node type content was not materialized")
	}
	if nodeType.Content.Particle(0) != node {
		t.Error("Nested reference does not resolve back to the node element")
	}
}
