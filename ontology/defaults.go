package ontology

import "sync/atomic"

// Defaults are process-wide settings used when an operation is not given an
// explicit option.
type Defaults struct {
	// LocalPrefix and LocalNamespace name the fallback namespace for fields
	// and extras without a predicate.
	LocalPrefix    string
	LocalNamespace string
	// Indent is the JSON-LD indentation. Empty writes compact JSON.
	Indent string
	// IgnoreConflicts keeps the first binding of a prefix bound twice while
	// building a context instead of failing.
	IgnoreConflicts bool
	// Strict rejects unknown construction keys for classes that did not
	// choose with WithStrictExtras or WithLenientExtras.
	Strict bool
}

var defaults atomic.Pointer[Defaults]

func init() {
	d := builtinDefaults()
	defaults.Store(&d)
}

func builtinDefaults() Defaults {
	return Defaults{
		LocalPrefix:    "local",
		LocalNamespace: "urn:ontomap:local#",
		Indent:         "  ",
	}
}

// CurrentDefaults returns the process defaults.
func CurrentDefaults() Defaults { return *defaults.Load() }

// SetDefaults replaces the process defaults and returns a function that
// restores the previous ones. Empty local namespace settings keep the
// built-in values.
func SetDefaults(d Defaults) (restore func()) {
	builtin := builtinDefaults()
	if d.LocalPrefix == "" {
		d.LocalPrefix = builtin.LocalPrefix
	}
	if d.LocalNamespace == "" {
		d.LocalNamespace = builtin.LocalNamespace
	}
	prev := defaults.Swap(&d)
	return func() { defaults.Store(prev) }
}
