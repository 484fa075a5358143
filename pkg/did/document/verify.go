package document

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/tcfw/didkit/internal/utils/logging"
	"github.com/tcfw/didkit/pkg/cryptography"
)

// SignatureValidator checks a signature over msg against a single
// verification method.
type SignatureValidator func(vm VerificationMethod, sig []byte, msg []byte) (bool, error)

var (
	ErrNoValidSignatures = errors.New("no valid signatures")

	validators = map[VerificationMethodType]SignatureValidator{
		Ed25519VerificationKey2020: validateEd25519,
		Multikey:                   validateEd25519,
		JSONWebKey2020:             validateJWK,
	}
)

// Signed checks whether the signature over msg was produced by a key in
// the document's verification-method list.
func (d *Document) Signed(signature []byte, msg []byte) error {
	if len(d.VerificationMethod) == 0 {
		return errors.New("no verification method specified")
	}

	for _, vm := range d.VerificationMethod {
		validator, ok := validators[vm.Type]
		if !ok {
			logging.Entry().Debugf("unsupported verification type: %s", vm.Type)
			continue
		}

		ok, err := validator(vm, signature, msg)
		if err != nil {
			logging.Entry().WithField("type", vm.Type).WithError(err).Debug("validating signature")
			continue
		}

		if ok {
			return nil
		}
	}

	return ErrNoValidSignatures
}

func validateEd25519(vm VerificationMethod, sig []byte, msg []byte) (bool, error) {
	kp, err := cryptography.FromMultibase(vm.PublicKeyMultibase)
	if err != nil {
		return false, errors.Wrap(err, "decoding multikey")
	}

	if kp.Algorithm() != cryptography.Ed25519 {
		return false, errors.Errorf("%s is not a signing key", kp.Algorithm())
	}

	return ed25519.Verify(ed25519.PublicKey(kp.Public()), msg, sig), nil
}

func validateJWK(vm VerificationMethod, sig []byte, msg []byte) (bool, error) {
	if vm.PublicKeyJWK == nil {
		return false, errors.New("missing publicKeyJwk")
	}

	kp, err := cryptography.FromJWK(vm.PublicKeyJWK)
	if err != nil {
		return false, errors.Wrap(err, "importing JWK")
	}

	if kp.Algorithm() != cryptography.Ed25519 {
		return false, errors.Errorf("%s is not a signing key", kp.Algorithm())
	}

	return ed25519.Verify(ed25519.PublicKey(kp.Public()), msg, sig), nil
}
