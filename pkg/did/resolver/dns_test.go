package resolver

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/didkit/pkg/did"
)

func dnsTestResolver(t *testing.T, txts []string, lookupErr error) (*Registry, *DNSResolver) {
	t.Helper()

	reg := NewRegistry(WithResolver(MethodKey, NewKeyResolver()))

	r := NewDNSResolver(reg, "")
	r.lookup = func(_ context.Context, name string) ([]string, error) {
		assert.Equal(t, "_did.example.com", name)
		return txts, lookupErr
	}

	reg.Register(MethodDNS, r)

	return reg, r
}

func TestDNSResolveDelegates(t *testing.T) {
	kp, target := freshKeyDID(t)
	defer kp.Zero()

	reg, _ := dnsTestResolver(t, []string{"unrelated record", target}, nil)

	doc, err := reg.Resolve(context.Background(), "did:dns:example.com")
	require.NoError(t, err)
	assert.Equal(t, target, doc.ID)
}

func TestDNSResolveNoRecord(t *testing.T) {
	reg, _ := dnsTestResolver(t, []string{"spf1 include:example.com"}, nil)

	_, err := reg.Resolve(context.Background(), "did:dns:example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDNSResolveLookupFailure(t *testing.T) {
	reg, _ := dnsTestResolver(t, nil, errors.New("servfail"))

	_, err := reg.Resolve(context.Background(), "did:dns:example.com")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestDNSResolveRejectsRecursion(t *testing.T) {
	reg, _ := dnsTestResolver(t, []string{"did:dns:other.example.com"}, nil)

	_, err := reg.Resolve(context.Background(), "did:dns:example.com")
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestDNSResolveRejectsSubpaths(t *testing.T) {
	reg, _ := dnsTestResolver(t, nil, nil)

	_, err := reg.Resolve(context.Background(), "did:dns:example.com:extra")
	assert.ErrorIs(t, err, did.ErrInvalidSyntax)
}
