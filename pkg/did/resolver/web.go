package resolver

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/tcfw/didkit/pkg/did"
	"github.com/tcfw/didkit/pkg/did/document"
)

const MethodWeb = "web"

const (
	didJSONContentType = "application/did+json"

	// maxDocumentSize bounds fetched documents; did documents are small
	maxDocumentSize = 1 << 20
)

// Fetcher retrieves the raw document payload for a did:web location.
// Implementations own transport policy (TLS, proxies, retries); the
// resolver issues exactly one Fetch per resolution and propagates the
// caller's context deadline through it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is the default Fetcher backed by net/http.
type HTTPFetcher struct {
	Client *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", didJSONContentType)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrUnreachable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, errors.Wrapf(ErrNotFound, "%s", rawURL)
	default:
		return nil, errors.Wrapf(ErrUnreachable, "unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, errors.Wrap(ErrUnreachable, err.Error())
	}

	return body, nil
}

// WebResolver resolves did:web identifiers by mapping the
// method-specific-id to an HTTPS location and fetching the hosted
// document through the injected Fetcher.
type WebResolver struct {
	fetcher Fetcher
}

// NewWebResolver builds a web resolver; a nil fetcher selects the
// default HTTP fetcher.
func NewWebResolver(f Fetcher) *WebResolver {
	if f == nil {
		f = &HTTPFetcher{}
	}

	return &WebResolver{fetcher: f}
}

func (r *WebResolver) ResolveContext(ctx context.Context, d *did.DID) (*document.Document, error) {
	loc, err := didWebURL(d.ID)
	if err != nil {
		return nil, err
	}

	body, err := r.fetcher.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}

	doc, err := document.Parse(body)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedDocument, err.Error())
	}

	if doc.ID != d.Base() {
		return nil, errors.Wrapf(ErrMalformedDocument, "document id %q does not match %q", doc.ID, d.Base())
	}

	// Fetched documents may reference methods under external controllers
	if err := doc.Validate(true); err != nil {
		return nil, errors.Wrap(ErrMalformedDocument, err.Error())
	}

	return doc, nil
}

// didWebURL reverses the did:web identifier encoding: the first segment
// is the (possibly port-carrying, percent-encoded) host, remaining
// colon-separated segments form the path, defaulting to .well-known.
func didWebURL(msid string) (string, error) {
	segs := strings.Split(msid, ":")

	host, err := url.PathUnescape(segs[0])
	if err != nil || host == "" {
		return "", errors.Wrapf(did.ErrInvalidSyntax, "invalid did:web host %q", segs[0])
	}

	path := "/.well-known"
	if len(segs) > 1 {
		parts := make([]string, 0, len(segs)-1)

		for _, seg := range segs[1:] {
			p, err := url.PathUnescape(seg)
			if err != nil || p == "" {
				return "", errors.Wrapf(did.ErrInvalidSyntax, "invalid did:web path segment %q", seg)
			}
			parts = append(parts, p)
		}

		path = "/" + strings.Join(parts, "/")
	}

	return "https://" + host + path + "/did.json", nil
}
