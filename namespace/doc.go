// Package namespace maps short prefixes to namespace IRIs.
//
// A Table is an ordered prefix table used to build JSON-LD contexts and
// Turtle headers. The package-level catalog holds well-known ontology
// namespaces and can be extended at runtime with Register or from YAML with
// LoadCatalog.
package namespace
