package ontology

import (
	"context"
	"encoding/hex"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/geoknoesis/ontomap/errors"
)

// IDPolicy decides the id of instances constructed without one.
type IDPolicy struct {
	// BlankNodePrefix is prepended to generated ids. It must end with ':'.
	// "_:" yields blank nodes; any other prefix yields compact IRIs.
	BlankNodePrefix string
	// Generator returns the local part of a new id.
	Generator func() string
}

// DefaultBlankNodePrefix marks generated ids as blank nodes.
const DefaultBlankNodePrefix = "_:"

// NewBlankID returns "N" followed by 32 hex digits of a random UUID.
func NewBlankID() string {
	u := uuid.New()
	return "N" + hex.EncodeToString(u[:])
}

// Validate checks the prefix shape.
func (p IDPolicy) Validate() error {
	if !strings.HasSuffix(p.BlankNodePrefix, ":") {
		return errors.WithHint(
			errors.Wrapf(errors.ErrInvalidArgument, "blank node prefix %q must end with ':'", p.BlankNodePrefix),
			`use "_:" for blank nodes or a compact prefix such as "local:"`)
	}
	return nil
}

// NewID mints an id under the policy.
func (p IDPolicy) NewID() string {
	gen := p.Generator
	if gen == nil {
		gen = NewBlankID
	}
	return p.BlankNodePrefix + gen()
}

func (p IDPolicy) normalized() IDPolicy {
	if p.BlankNodePrefix == "" {
		p.BlankNodePrefix = DefaultBlankNodePrefix
	}
	if p.Generator == nil {
		p.Generator = NewBlankID
	}
	return p
}

var defaultPolicy atomic.Pointer[IDPolicy]

func init() {
	p := IDPolicy{}.normalized()
	defaultPolicy.Store(&p)
}

// DefaultIDPolicy returns the process-wide policy.
func DefaultIDPolicy() IDPolicy { return *defaultPolicy.Load() }

// SetDefaultIDPolicy replaces the process-wide policy. Call the returned
// function to put the previous policy back:
//
//	restore, err := ontology.SetDefaultIDPolicy(ontology.IDPolicy{BlankNodePrefix: "local:"})
//	if err != nil {
//	    return err
//	}
//	defer restore()
func SetDefaultIDPolicy(p IDPolicy) (restore func(), err error) {
	p = p.normalized()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	prev := defaultPolicy.Swap(&p)
	return func() { defaultPolicy.Store(prev) }, nil
}

type policyKey struct{}

// WithIDPolicy scopes p to everything constructed under the returned
// context, including nested instances.
func WithIDPolicy(ctx context.Context, p IDPolicy) (context.Context, error) {
	p = p.normalized()
	if err := p.Validate(); err != nil {
		return ctx, err
	}
	return context.WithValue(ctx, policyKey{}, p), nil
}

// WithBlankNodePrefix scopes a prefix, keeping the generator in effect.
func WithBlankNodePrefix(ctx context.Context, prefix string) (context.Context, error) {
	p := IDPolicyFrom(ctx)
	p.BlankNodePrefix = prefix
	if prefix == "" {
		return ctx, IDPolicy{}.Validate()
	}
	return WithIDPolicy(ctx, p)
}

// WithBlankIDGenerator scopes a generator, keeping the prefix in effect.
func WithBlankIDGenerator(ctx context.Context, gen func() string) context.Context {
	p := IDPolicyFrom(ctx)
	p.Generator = gen
	return context.WithValue(ctx, policyKey{}, p.normalized())
}

// IDPolicyFrom returns the policy scoped to ctx, or the process default.
func IDPolicyFrom(ctx context.Context) IDPolicy {
	if ctx != nil {
		if p, ok := ctx.Value(policyKey{}).(IDPolicy); ok {
			return p
		}
	}
	return DefaultIDPolicy()
}
