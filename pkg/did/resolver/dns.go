package resolver

import (
	"context"
	"strings"

	"github.com/miekg/dns"
	"github.com/pkg/errors"

	"github.com/tcfw/didkit/pkg/did"
	"github.com/tcfw/didkit/pkg/did/document"
)

const MethodDNS = "dns"

// didRecordPrefix is the owner-name label holding the delegation record,
// per draft-mayrhofer-did-dns.
const didRecordPrefix = "_did."

const defaultDNSServer = "1.1.1.1:53"

// lookupFunc fetches the TXT strings for a name; split out so tests can
// stub the wire exchange.
type lookupFunc func(ctx context.Context, name string) ([]string, error)

// DNSResolver resolves did:dns identifiers: the TXT record at
// _did.<domain> names a target DID, which is resolved through the
// registry. Delegation is a single hop; a did:dns target is rejected.
type DNSResolver struct {
	registry *Registry
	server   string
	client   *dns.Client
	lookup   lookupFunc
}

func NewDNSResolver(reg *Registry, server string) *DNSResolver {
	if server == "" {
		server = defaultDNSServer
	}

	r := &DNSResolver{
		registry: reg,
		server:   server,
		client:   &dns.Client{},
	}
	r.lookup = r.lookupTXT

	return r
}

func (r *DNSResolver) ResolveContext(ctx context.Context, d *did.DID) (*document.Document, error) {
	if strings.ContainsRune(d.ID, ':') {
		return nil, errors.Wrapf(did.ErrInvalidSyntax, "did:dns expects a bare domain, got %q", d.ID)
	}

	txts, err := r.lookup(ctx, didRecordPrefix+d.ID)
	if err != nil {
		return nil, errors.Wrap(ErrUnreachable, err.Error())
	}

	var target *did.DID

	for _, txt := range txts {
		t, err := did.Parse(strings.TrimSpace(txt))
		if err != nil {
			continue
		}

		target = t
		break
	}

	if target == nil {
		return nil, errors.Wrapf(ErrNotFound, "no DID record at %s%s", didRecordPrefix, d.ID)
	}

	if target.Method == MethodDNS {
		return nil, errors.Wrap(ErrMalformedDocument, "recursive did:dns delegation")
	}

	return r.registry.ResolveDID(ctx, target)
}

func (r *DNSResolver) lookupTXT(ctx context.Context, name string) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeTXT)

	resp, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, errors.Wrap(err, "exchanging dns query")
	}

	var txts []string

	for _, rr := range resp.Answer {
		if t, ok := rr.(*dns.TXT); ok {
			txts = append(txts, strings.Join(t.Txt, ""))
		}
	}

	return txts, nil
}
