// Package resolver dispatches parsed DIDs to method-specific resolution
// strategies and produces canonical DID documents.
package resolver

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tcfw/didkit/pkg/did"
	"github.com/tcfw/didkit/pkg/did/document"
)

var (
	ErrUnsupportedMethod  = errors.New("unsupported did method")
	ErrUnsupportedKeyType = errors.New("unsupported key type")
	ErrNotFound           = errors.New("did document not found")
	ErrUnreachable        = errors.New("did document unreachable")
	ErrMalformedDocument  = errors.New("malformed did document")
	ErrFragmentNotFound   = errors.New("fragment not found in document")
)

// Resolver resolves a single DID method. Implementations must be safe
// for concurrent use.
type Resolver interface {
	ResolveContext(ctx context.Context, d *did.DID) (*document.Document, error)
}

// Registry routes DIDs to resolvers by method name. Registration happens
// at construction; the registry itself performs no I/O and no retries.
type Registry struct {
	resolvers map[string]Resolver
}

type Option func(*Registry)

// WithResolver registers a resolver for a method name.
func WithResolver(method string, r Resolver) Option {
	return func(reg *Registry) {
		reg.resolvers[method] = r
	}
}

func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{resolvers: make(map[string]Resolver)}

	for _, opt := range opts {
		opt(reg)
	}

	return reg
}

// Default builds a registry with the key, jwk, web and dns methods.
func Default() *Registry {
	reg := NewRegistry(
		WithResolver(MethodKey, NewKeyResolver()),
		WithResolver(MethodJWK, NewJWKResolver()),
		WithResolver(MethodWeb, NewWebResolver(nil)),
	)
	reg.Register(MethodDNS, NewDNSResolver(reg, ""))

	return reg
}

// Register adds a resolver after construction, replacing any existing
// registration for the method.
func (r *Registry) Register(method string, res Resolver) {
	r.resolvers[method] = res
}

// Resolve parses s and dispatches it to the resolver registered for its
// method. Syntax errors surface before any resolver is consulted.
func (r *Registry) Resolve(ctx context.Context, s string) (*document.Document, error) {
	d, err := did.Parse(s)
	if err != nil {
		return nil, err
	}

	return r.ResolveDID(ctx, d)
}

// ResolveDID dispatches an already-parsed DID.
func (r *Registry) ResolveDID(ctx context.Context, d *did.DID) (*document.Document, error) {
	res, ok := r.resolvers[d.Method]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedMethod, "%s", d.Method)
	}

	return res.ResolveContext(ctx, d)
}

// Dereference resolves the base document of s and extracts the
// verification method its fragment names.
func (r *Registry) Dereference(ctx context.Context, s string) (*document.VerificationMethod, error) {
	d, err := did.Parse(s)
	if err != nil {
		return nil, err
	}

	if d.Fragment == "" {
		return nil, errors.Wrap(did.ErrInvalidSyntax, "dereference requires a fragment")
	}

	doc, err := r.ResolveDID(ctx, d)
	if err != nil {
		return nil, err
	}

	vm, ok := doc.FindVerificationMethod("#" + d.Fragment)
	if !ok {
		return nil, errors.Wrapf(ErrFragmentNotFound, "#%s", d.Fragment)
	}

	return vm, nil
}
