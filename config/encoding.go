package config

import (
	"fmt"
	"strings"
)

// Encoding is the physical layout of definitions inside a tree.
type Encoding int

const (
	// Nested stores each definition as an object_N node holding one child per
	// attribute plus methods and parameters subtrees.
	Nested Encoding = iota

	// Flat is the legacy layout: one namespace node per key holding
	// property_N/value_N nodes, with methods and parameters in sibling
	// namespaces named key.method and key.parameters.
	Flat
)

// String returns "nested" or "flat".
func (e Encoding) String() string {
	switch e {
	case Nested:
		return "nested"
	case Flat:
		return "flat"
	default:
		return "unknown"
	}
}

// ParseEncoding parses "nested" or "flat", ignoring case.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nested", "":
		return Nested, nil
	case "flat":
		return Flat, nil
	default:
		return Nested, fmt.Errorf("unknown definition encoding %q", s)
	}
}

// Node and attribute names shared by both encodings.
const (
	rootName = "definitions"

	attrAppDomain  = "app_domain"
	attrAssembly   = "assembly"
	attrTypeName   = "type_name"
	attrIgnoreCase = "ignore_case"
	attrLifetime   = "instantiation_lifetime"
	attrMethodName = "method_name"
	attrIsProperty = "is_property"

	attrName  = "name"
	attrValue = "value"
	attrType  = "type"

	nodeMethods    = "methods"
	nodeParameters = "parameters"

	prefixObject    = "object_"
	prefixMethod    = "method_"
	prefixParameter = "parameter_"

	prefixProperty = "property_"
	prefixValue    = "value_"
	attrNodeValue  = "node_value"
	propMethods    = "methods"
)

var (
	objectAttributes = []string{attrAppDomain, attrAssembly, attrTypeName, attrIgnoreCase, attrLifetime, attrMethodName}
	methodAttributes = []string{attrMethodName, attrIgnoreCase, attrIsProperty}
)
