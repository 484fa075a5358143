package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/didkit/pkg/did"
)

func TestResolveInvalidSyntax(t *testing.T) {
	reg := NewRegistry(WithResolver(MethodKey, NewKeyResolver()))

	_, err := reg.Resolve(context.Background(), "not-a-did")
	assert.ErrorIs(t, err, did.ErrInvalidSyntax)
}

func TestResolveUnsupportedMethodNoFetch(t *testing.T) {
	f := &stubFetcher{}

	reg := NewRegistry(
		WithResolver(MethodKey, NewKeyResolver()),
		WithResolver(MethodWeb, NewWebResolver(f)),
	)

	_, err := reg.Resolve(context.Background(), "did:unknownmethod:abc")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
	assert.Zero(t, f.calls)
}

func TestDereference(t *testing.T) {
	kp, didStr := freshKeyDID(t)
	defer kp.Zero()

	token, err := kp.Multibase()
	require.NoError(t, err)

	reg := NewRegistry(WithResolver(MethodKey, NewKeyResolver()))

	vm, err := reg.Dereference(context.Background(), didStr+"#"+token)
	require.NoError(t, err)
	assert.Equal(t, didStr+"#"+token, vm.ID)
}

func TestDereferenceFragmentNotFound(t *testing.T) {
	kp, didStr := freshKeyDID(t)
	defer kp.Zero()

	reg := NewRegistry(WithResolver(MethodKey, NewKeyResolver()))

	_, err := reg.Dereference(context.Background(), didStr+"#nope")
	assert.ErrorIs(t, err, ErrFragmentNotFound)
}

func TestDereferenceMissingFragment(t *testing.T) {
	kp, didStr := freshKeyDID(t)
	defer kp.Zero()

	reg := NewRegistry(WithResolver(MethodKey, NewKeyResolver()))

	_, err := reg.Dereference(context.Background(), didStr)
	assert.ErrorIs(t, err, did.ErrInvalidSyntax)
}

func TestRegisterReplaces(t *testing.T) {
	reg := NewRegistry()
	reg.Register(MethodKey, NewKeyResolver())

	kp, didStr := freshKeyDID(t)
	defer kp.Zero()

	_, err := reg.Resolve(context.Background(), didStr)
	assert.NoError(t, err)
}

func TestRetryFetcherRetriesUnreachable(t *testing.T) {
	inner := &flakyFetcher{failures: 2}

	rf := &RetryFetcher{
		Inner:    inner,
		Attempts: 3,
		Min:      time.Millisecond,
		Max:      2 * time.Millisecond,
	}

	body, err := rf.Fetch(context.Background(), "https://example.com/did.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryFetcherDoesNotRetryNotFound(t *testing.T) {
	inner := &stubFetcher{err: errors.Wrap(ErrNotFound, "gone")}

	rf := &RetryFetcher{Inner: inner, Attempts: 3, Min: time.Millisecond, Max: time.Millisecond}

	_, err := rf.Fetch(context.Background(), "https://example.com/did.json")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, inner.calls)
}

func TestDefaultRegistry(t *testing.T) {
	reg := Default()

	kp, didStr := freshKeyDID(t)
	defer kp.Zero()

	doc, err := reg.Resolve(context.Background(), didStr)
	require.NoError(t, err)
	assert.Equal(t, didStr, doc.ID)

	// dns is wired back through the registry; colons in the name are
	// rejected before any lookup happens
	_, err = reg.Resolve(context.Background(), "did:dns:example.com:extra")
	assert.ErrorIs(t, err, did.ErrInvalidSyntax)

	_, err = reg.Resolve(context.Background(), "did:unknown:abc")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

type flakyFetcher struct {
	failures int
	calls    int
}

func (f *flakyFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.Wrap(ErrUnreachable, "flaky")
	}

	return []byte("ok"), nil
}
