package resolver

import (
	"context"
	"encoding/base64"

	"github.com/pkg/errors"

	"github.com/tcfw/didkit/pkg/cryptography"
	"github.com/tcfw/didkit/pkg/did"
	"github.com/tcfw/didkit/pkg/did/document"
)

const MethodJWK = "jwk"

// JWKResolver resolves did:jwk identifiers, whose method-specific-id is
// the base64url-encoded JWK itself. Like did:key, resolution is pure.
type JWKResolver struct{}

func NewJWKResolver() *JWKResolver {
	return &JWKResolver{}
}

func (r *JWKResolver) ResolveContext(_ context.Context, d *did.DID) (*document.Document, error) {
	data, err := base64.RawURLEncoding.DecodeString(d.ID)
	if err != nil {
		return nil, errors.Wrap(cryptography.ErrMalformedJwk, "method-specific-id is not base64url")
	}

	jwk, err := cryptography.ParseJWK(data)
	if err != nil {
		return nil, err
	}

	kp, err := cryptography.FromJWK(jwk)
	if err != nil {
		if errors.Is(err, cryptography.ErrUnsupportedAlgorithm) {
			return nil, errors.Wrap(ErrUnsupportedKeyType, err.Error())
		}
		return nil, err
	}
	defer kp.Zero()

	pub, err := kp.PublicJWK()
	if err != nil {
		return nil, err
	}

	didStr := d.Base()
	vmID := didStr + "#key-0"

	b := document.NewBuilder(didStr).
		VerificationMethod(document.VerificationMethod{
			ID:           vmID,
			Type:         document.JSONWebKey2020,
			Controller:   didStr,
			PublicKeyJWK: pub,
		}).
		Authentication(document.Reference(vmID)).
		AssertionMethod(document.Reference(vmID)).
		KeyAgreement(document.Reference(vmID)).
		CapabilityInvocation(document.Reference(vmID))

	return b.Build()
}
