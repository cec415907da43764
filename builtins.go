package xsd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// BuiltinTypes returns the builtin primitive and derived simple types of the
// XML Schema namespace, ready to be merged into a types table at build
// start. Every component is already built; the anchor types (anyType,
// anySimpleType, anyAtomicType) get their owning schema attached by Build.
func BuiltinTypes() map[QName]Component {
	table := make(map[QName]Component)

	anyType := &ComplexType{componentBase: componentBase{
		name: anyTypeName, built: true,
	}}
	table[anyTypeName] = anyType

	anySimple := builtinSimpleType("anySimpleType", nil, nil)
	table[anySimpleTypeName] = anySimple
	anyAtomic := builtinSimpleType("anyAtomicType", anySimple, nil)
	table[anyAtomicTypeName] = anyAtomic

	primitive := func(local string, validator func(string) error) *SimpleType {
		t := builtinSimpleType(local, anyAtomic, validator)
		table[t.Name()] = t
		return t
	}
	derived := func(local string, base *SimpleType, validator func(string) error) *SimpleType {
		t := builtinSimpleType(local, base, validator)
		table[t.Name()] = t
		return t
	}

	// Primitive types
	str := primitive("string", validateString)
	primitive("boolean", validateBoolean)
	decimal := primitive("decimal", validateDecimal)
	primitive("float", validateFloat)
	primitive("double", validateDouble)
	primitive("duration", validateDuration)
	primitive("dateTime", validateDateTime)
	primitive("time", validateTimeValue)
	primitive("date", validateDate)
	primitive("gYearMonth", matchPattern(`^-?\d{4,}-\d{2}$`))
	primitive("gYear", matchPattern(`^-?\d{4,}$`))
	primitive("gMonthDay", matchPattern(`^--\d{2}-\d{2}$`))
	primitive("gDay", matchPattern(`^---\d{2}$`))
	primitive("gMonth", matchPattern(`^--\d{2}$`))
	primitive("hexBinary", validateHexBinary)
	primitive("base64Binary", validateBase64Binary)
	primitive("anyURI", validateAnyURI)
	primitive("QName", validateQNameValue)
	primitive("NOTATION", validateQNameValue)

	// Derived string types
	normalized := derived("normalizedString", str, validateString)
	token := derived("token", normalized, validateToken)
	derived("language", token, matchPattern(`^[a-zA-Z]{1,8}(-[a-zA-Z0-9]{1,8})*$`))
	name := derived("Name", token, matchPattern(`^[A-Za-z_:][\w.:-]*$`))
	ncName := derived("NCName", name, matchPattern(`^[A-Za-z_][\w.-]*$`))
	derived("ID", ncName, ncName.Validator)
	idref := derived("IDREF", ncName, ncName.Validator)
	derived("IDREFS", idref, listOf(idref.Validator))
	entity := derived("ENTITY", ncName, ncName.Validator)
	derived("ENTITIES", entity, listOf(entity.Validator))
	nmtoken := derived("NMTOKEN", token, matchPattern(`^[\w.:-]+$`))
	derived("NMTOKENS", nmtoken, listOf(nmtoken.Validator))

	// Derived numeric types
	integer := derived("integer", decimal, validateInteger)
	nonPositive := derived("nonPositiveInteger", integer, rangeInt(math.MinInt64, 0))
	derived("negativeInteger", nonPositive, rangeInt(math.MinInt64, -1))
	long := derived("long", integer, rangeInt(math.MinInt64, math.MaxInt64))
	intT := derived("int", long, rangeInt(math.MinInt32, math.MaxInt32))
	short := derived("short", intT, rangeInt(math.MinInt16, math.MaxInt16))
	derived("byte", short, rangeInt(math.MinInt8, math.MaxInt8))
	nonNegative := derived("nonNegativeInteger", integer, rangeInt(0, math.MaxInt64))
	uLong := derived("unsignedLong", nonNegative, validateUnsignedLong)
	uInt := derived("unsignedInt", uLong, rangeInt(0, math.MaxUint32))
	uShort := derived("unsignedShort", uInt, rangeInt(0, math.MaxUint16))
	derived("unsignedByte", uShort, rangeInt(0, math.MaxUint8))
	derived("positiveInteger", nonNegative, rangeInt(1, math.MaxInt64))

	return table
}

func builtinSimpleType(local string, base Component, validator func(string) error) *SimpleType {
	t := &SimpleType{componentBase: componentBase{
		name:  GetQName(XSDNamespace, local),
		built: true,
	}}
	if base != nil {
		t.Base = base
	}
	t.Validator = validator
	return t
}

// Value validators, adapted to the lexical rules of XML Schema Part 2.

func validateString(string) error { return nil }

func validateBoolean(value string) error {
	switch value {
	case "true", "false", "1", "0":
		return nil
	default:
		return fmt.Errorf("invalid boolean value: %s", value)
	}
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

func validateDecimal(value string) error {
	if !decimalPattern.MatchString(value) {
		return fmt.Errorf("invalid decimal value: %s", value)
	}
	if _, _, err := new(big.Float).Parse(value, 10); err != nil {
		return fmt.Errorf("invalid decimal value: %s", value)
	}
	return nil
}

func validateFloat(value string) error {
	switch value {
	case "INF", "-INF", "NaN":
		return nil
	}
	if _, err := strconv.ParseFloat(value, 32); err != nil {
		return fmt.Errorf("invalid float value: %s", value)
	}
	return nil
}

func validateDouble(value string) error {
	switch value {
	case "INF", "-INF", "NaN":
		return nil
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return fmt.Errorf("invalid double value: %s", value)
	}
	return nil
}

var durationPattern = regexp.MustCompile(`^-?P(\d+Y)?(\d+M)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)

func validateDuration(value string) error {
	if !durationPattern.MatchString(value) || value == "P" || value == "-P" {
		return fmt.Errorf("invalid duration value: %s", value)
	}
	return nil
}

var (
	dateTimePattern = regexp.MustCompile(`^-?\d{4,}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)
	timePattern     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)
	datePattern     = regexp.MustCompile(`^-?\d{4,}-\d{2}-\d{2}(Z|[+-]\d{2}:\d{2})?$`)
)

func validateDateTime(value string) error {
	if !dateTimePattern.MatchString(value) {
		return fmt.Errorf("invalid dateTime value: %s", value)
	}
	return nil
}

func validateTimeValue(value string) error {
	if !timePattern.MatchString(value) {
		return fmt.Errorf("invalid time value: %s", value)
	}
	return nil
}

func validateDate(value string) error {
	if !datePattern.MatchString(value) {
		return fmt.Errorf("invalid date value: %s", value)
	}
	return nil
}

func validateHexBinary(value string) error {
	if _, err := hex.DecodeString(value); err != nil {
		return fmt.Errorf("invalid hexBinary value: %s", value)
	}
	return nil
}

func validateBase64Binary(value string) error {
	if _, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(value, " ", "")); err != nil {
		return fmt.Errorf("invalid base64Binary value: %s", value)
	}
	return nil
}

func validateAnyURI(value string) error {
	if _, err := url.Parse(value); err != nil {
		return fmt.Errorf("invalid anyURI value: %s", value)
	}
	return nil
}

func validateQNameValue(value string) error {
	if value == "" || strings.Count(value, ":") > 1 {
		return fmt.Errorf("invalid QName value: %q", value)
	}
	return nil
}

func validateToken(value string) error {
	if strings.ContainsAny(value, "\t\n\r") ||
		strings.HasPrefix(value, " ") || strings.HasSuffix(value, " ") ||
		strings.Contains(value, "  ") {
		return fmt.Errorf("invalid token value: %q", value)
	}
	return nil
}

func validateInteger(value string) error {
	if _, ok := new(big.Int).SetString(value, 10); !ok {
		return fmt.Errorf("invalid integer value: %s", value)
	}
	return nil
}

func validateUnsignedLong(value string) error {
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return fmt.Errorf("invalid unsignedLong value: %s", value)
	}
	return nil
}

// matchPattern builds a validator from a lexical pattern.
func matchPattern(pattern string) func(string) error {
	re := regexp.MustCompile(pattern)
	return func(value string) error {
		if !re.MatchString(value) {
			return fmt.Errorf("value %q does not match %s", value, pattern)
		}
		return nil
	}
}

// rangeInt builds a validator for an integer range.
func rangeInt(lo, hi int64) func(string) error {
	return func(value string) error {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		if n < lo || n > hi {
			return fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
		}
		return nil
	}
}

// listOf builds a validator applying an item validator to every
// space-separated item.
func listOf(item func(string) error) func(string) error {
	return func(value string) error {
		for _, v := range strings.Fields(value) {
			if err := item(v); err != nil {
				return err
			}
		}
		return nil
	}
}
