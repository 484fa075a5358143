package resolver

import (
	"context"

	"github.com/multiformats/go-multicodec"
	"github.com/pkg/errors"

	"github.com/tcfw/didkit/pkg/cryptography"
	"github.com/tcfw/didkit/pkg/did"
	"github.com/tcfw/didkit/pkg/did/document"
	"github.com/tcfw/didkit/pkg/multikey"
)

const MethodKey = "key"

// securityContext is required when verification methods carry multibase
// encoded key material.
const securityContext = "https://w3id.org/security/data-integrity/v1"

// KeyResolver resolves self-certifying did:key identifiers. Resolution
// is pure: the document is synthesized from the key embedded in the
// identifier and two resolutions of the same DID are byte-identical.
type KeyResolver struct {
	deriveKeyAgreement bool
}

type KeyResolverOption func(*KeyResolver)

// WithEncryptionKeyDerivation adds an X25519 key-agreement method derived
// from the Ed25519 key to resolved documents.
func WithEncryptionKeyDerivation() KeyResolverOption {
	return func(r *KeyResolver) {
		r.deriveKeyAgreement = true
	}
}

func NewKeyResolver(opts ...KeyResolverOption) *KeyResolver {
	r := &KeyResolver{}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *KeyResolver) ResolveContext(_ context.Context, d *did.DID) (*document.Document, error) {
	code, raw, err := multikey.Decode(d.ID)
	if err != nil {
		if errors.Is(err, multikey.ErrUnknownCodec) {
			return nil, errors.Wrap(ErrUnsupportedKeyType, err.Error())
		}
		return nil, err
	}

	return buildKeyDocument(d.Base(), d.ID, code, raw, r.deriveKeyAgreement)
}

func buildKeyDocument(didStr, token string, code multicodec.Code, raw []byte, deriveKeyAgreement bool) (*document.Document, error) {
	var vmType document.VerificationMethodType

	switch code {
	case multicodec.Ed25519Pub:
		vmType = document.Ed25519VerificationKey2020
	case multicodec.X25519Pub:
		vmType = document.X25519KeyAgreementKey2019
	default:
		return nil, errors.Wrapf(ErrUnsupportedKeyType, "0x%x", uint64(code))
	}

	vmID := didStr + "#" + token

	b := document.NewBuilder(didStr).
		Context(securityContext).
		VerificationMethod(document.VerificationMethod{
			ID:                 vmID,
			Type:               vmType,
			Controller:         didStr,
			PublicKeyMultibase: token,
		}).
		Authentication(document.Reference(vmID)).
		AssertionMethod(document.Reference(vmID)).
		CapabilityInvocation(document.Reference(vmID))

	if deriveKeyAgreement && code == multicodec.Ed25519Pub {
		kaVM, err := deriveKeyAgreementMethod(didStr, raw)
		if err != nil {
			return nil, err
		}

		b.KeyAgreement(document.Embed(*kaVM))
	} else {
		b.KeyAgreement(document.Reference(vmID))
	}

	return b.Build()
}

// deriveKeyAgreementMethod converts an Ed25519 public key to its X25519
// form and wraps it as a standalone key-agreement method.
func deriveKeyAgreementMethod(didStr string, edPub []byte) (*document.VerificationMethod, error) {
	xPub, err := cryptography.X25519FromEd25519(edPub)
	if err != nil {
		return nil, errors.Wrap(err, "deriving key agreement key")
	}

	token, err := multikey.Encode(multicodec.X25519Pub, xPub)
	if err != nil {
		return nil, err
	}

	return &document.VerificationMethod{
		ID:                 didStr + "#" + token,
		Type:               document.X25519KeyAgreementKey2019,
		Controller:         didStr,
		PublicKeyMultibase: token,
	}, nil
}
