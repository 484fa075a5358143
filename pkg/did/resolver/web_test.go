package resolver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/didkit/pkg/did"
	"github.com/tcfw/didkit/pkg/did/document"
)

type stubFetcher struct {
	lastURL string
	calls   int
	body    []byte
	err     error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.lastURL = url
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return f.body, nil
}

func webTestDoc(t *testing.T, id string) []byte {
	t.Helper()

	doc, err := document.NewBuilder(id).
		AllowExternalRefs().
		VerificationMethod(document.VerificationMethod{
			ID:                 id + "#key-1",
			Type:               document.Ed25519VerificationKey2020,
			Controller:         id,
			PublicKeyMultibase: "z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK",
		}).
		Authentication(document.Reference(id + "#key-1")).
		Build()
	require.NoError(t, err)

	body, err := json.Marshal(doc)
	require.NoError(t, err)

	return body
}

func TestWebURLMapping(t *testing.T) {
	tests := map[string]string{
		"did:web:example.com":                   "https://example.com/.well-known/did.json",
		"did:web:example.com%3A8443":            "https://example.com:8443/.well-known/did.json",
		"did:web:example.com:user:alice":        "https://example.com/user/alice/did.json",
		"did:web:example.com%3A8443:user:alice": "https://example.com:8443/user/alice/did.json",
	}

	for s, wantURL := range tests {
		t.Run(s, func(t *testing.T) {
			d, err := did.Parse(s)
			require.NoError(t, err)

			f := &stubFetcher{body: webTestDoc(t, d.Base())}

			_, err = NewWebResolver(f).ResolveContext(context.Background(), d)
			require.NoError(t, err)

			assert.Equal(t, wantURL, f.lastURL)
			assert.Equal(t, 1, f.calls)
		})
	}
}

func TestWebResolveNotFound(t *testing.T) {
	d, err := did.Parse("did:web:example.com")
	require.NoError(t, err)

	f := &stubFetcher{err: errors.Wrap(ErrNotFound, "https://example.com/.well-known/did.json")}

	_, err = NewWebResolver(f).ResolveContext(context.Background(), d)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWebResolveUnreachable(t *testing.T) {
	d, err := did.Parse("did:web:example.com")
	require.NoError(t, err)

	f := &stubFetcher{err: errors.Wrap(ErrUnreachable, "connection refused")}

	_, err = NewWebResolver(f).ResolveContext(context.Background(), d)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestWebResolveMalformedDocument(t *testing.T) {
	d, err := did.Parse("did:web:example.com")
	require.NoError(t, err)

	f := &stubFetcher{body: []byte("<html>not json</html>")}

	_, err = NewWebResolver(f).ResolveContext(context.Background(), d)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestWebResolveIDMismatch(t *testing.T) {
	d, err := did.Parse("did:web:example.com")
	require.NoError(t, err)

	f := &stubFetcher{body: webTestDoc(t, "did:web:evil.example")}

	_, err = NewWebResolver(f).ResolveContext(context.Background(), d)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestWebResolveExternalControllerAllowed(t *testing.T) {
	// fetched documents may reference methods hosted elsewhere
	id := "did:web:example.com"

	doc, err := document.NewBuilder(id).
		AllowExternalRefs().
		Authentication(document.Reference("did:web:other.example#key-9")).
		Build()
	require.NoError(t, err)

	body, err := json.Marshal(doc)
	require.NoError(t, err)

	d, err := did.Parse(id)
	require.NoError(t, err)

	got, err := NewWebResolver(&stubFetcher{body: body}).ResolveContext(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestWebResolveBadPathSegment(t *testing.T) {
	d, err := did.Parse("did:web:example.com:user:%zz")
	// %zz fails the pct-encoding check at parse time
	assert.ErrorIs(t, err, did.ErrInvalidSyntax)
	assert.Nil(t, d)
}
