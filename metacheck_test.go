package xsd

import (
	"strings"
	"testing"
)

func checkSource(t *testing.T, src string) []error {
	t.Helper()
	return CheckSchemaDocument(parseSchema(t, src, ""))
}

func TestCheckSchemaDocumentAccepts(t *testing.T) {
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="http://example.com/a">
  <xs:simpleType name="Code">
    <xs:restriction base="xs:string">
      <xs:pattern value="[A-Z]{3}"/>
    </xs:restriction>
  </xs:simpleType>
  <xs:element name="root" type="Code"/>
</xs:schema>`

	if errs := checkSource(t, src); len(errs) != 0 {
		t.Errorf("Valid schema document rejected: %v", errs)
	}
}

func TestCheckSchemaDocumentUnknownElement(t *testing.T) {
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:bogus/>
</xs:schema>`

	errs := checkSource(t, src)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "bogus") {
		t.Errorf("Error does not name the offending element: %v", errs[0])
	}
}

func TestCheckSchemaDocumentUnnamedGlobal(t *testing.T) {
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType>
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
</xs:schema>`

	errs := checkSource(t, src)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "name") {
		t.Errorf("Error does not mention the missing name: %v", errs[0])
	}
}

func TestCheckSchemaDocumentDuplicateIDs(t *testing.T) {
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="a" id="e1" type="xs:string"/>
  <xs:element name="b" id="e1" type="xs:string"/>
</xs:schema>`

	errs := checkSource(t, src)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "e1") {
		t.Errorf("Error does not name the duplicate id: %v", errs[0])
	}
}

func TestCheckSchemaDocumentRedefineLocation(t *testing.T) {
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:redefine>
    <xs:simpleType name="T">
      <xs:restriction base="xs:string"/>
    </xs:simpleType>
  </xs:redefine>
</xs:schema>`

	errs := checkSource(t, src)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "schemaLocation") {
		t.Errorf("Error does not mention schemaLocation: %v", errs[0])
	}
}

func TestCheckSchemaDocumentListItemType(t *testing.T) {
	src := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="Bad">
    <xs:list/>
  </xs:simpleType>
  <xs:simpleType name="Good">
    <xs:list>
      <xs:simpleType>
        <xs:restriction base="xs:string"/>
      </xs:simpleType>
    </xs:list>
  </xs:simpleType>
</xs:schema>`

	errs := checkSource(t, src)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "itemType") {
		t.Errorf("Error does not mention itemType: %v", errs[0])
	}
}
