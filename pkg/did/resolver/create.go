package resolver

import (
	"github.com/pkg/errors"

	"github.com/tcfw/didkit/pkg/cryptography"
	"github.com/tcfw/didkit/pkg/did"
	"github.com/tcfw/didkit/pkg/did/document"
)

// CreateKeyDocument mints the did:key document for a locally held key
// pair, using the same synthesis path resolution uses so that resolving
// the returned document's id reproduces it byte for byte.
func CreateKeyDocument(kp *cryptography.KeyPair, opts ...KeyResolverOption) (*document.Document, error) {
	token, err := kp.Multibase()
	if err != nil {
		return nil, err
	}

	code, err := kp.Algorithm().Code()
	if err != nil {
		return nil, err
	}

	r := NewKeyResolver(opts...)

	return buildKeyDocument("did:"+MethodKey+":"+token, token, code, kp.Public(), r.deriveKeyAgreement)
}

// KeyDID formats the did:key identifier for a key pair.
func KeyDID(kp *cryptography.KeyPair) (string, error) {
	token, err := kp.Multibase()
	if err != nil {
		return "", err
	}

	return "did:" + MethodKey + ":" + token, nil
}

// CreateWebDocument builds an unhosted did:web document for the given
// identifier and signing key. There is no registration protocol for
// did:web; the caller publishes the document at the derived location and
// deactivates it by unhosting.
func CreateWebDocument(didStr string, kp *cryptography.KeyPair, services ...document.Service) (*document.Document, error) {
	d, err := did.Parse(didStr)
	if err != nil {
		return nil, err
	}

	if d.Method != MethodWeb {
		return nil, errors.Wrapf(ErrUnsupportedMethod, "expected did:web, got did:%s", d.Method)
	}

	token, err := kp.Multibase()
	if err != nil {
		return nil, err
	}

	code, err := kp.Algorithm().Code()
	if err != nil {
		return nil, err
	}

	var vmType document.VerificationMethodType
	switch kp.Algorithm() {
	case cryptography.Ed25519:
		vmType = document.Ed25519VerificationKey2020
	case cryptography.X25519:
		vmType = document.X25519KeyAgreementKey2019
	default:
		return nil, errors.Wrapf(ErrUnsupportedKeyType, "0x%x", uint64(code))
	}

	base := d.Base()
	vmID := base + "#" + token

	b := document.NewBuilder(base).
		Context(securityContext).
		VerificationMethod(document.VerificationMethod{
			ID:                 vmID,
			Type:               vmType,
			Controller:         base,
			PublicKeyMultibase: token,
		}).
		Authentication(document.Reference(vmID)).
		AssertionMethod(document.Reference(vmID))

	for _, svc := range services {
		b.Service(svc)
	}

	return b.Build()
}
