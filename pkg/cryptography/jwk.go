package cryptography

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrMalformedJwk = errors.New("malformed JWK")

const (
	jwkKtyOKP     = "OKP"
	jwkCrvEd25519 = "Ed25519"
	jwkCrvX25519  = "X25519"
)

// JWK is the OKP subset of a JSON Web Key carrying a single public
// coordinate and optionally the private key.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	D   string `json:"d,omitempty"`
}

// ParseJWK decodes a JSON-serialized JWK without validating key material.
// Members outside the OKP set are rejected.
func ParseJWK(data []byte) (*JWK, error) {
	jwk := &JWK{}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(jwk); err != nil {
		return nil, errors.Wrap(ErrMalformedJwk, err.Error())
	}

	return jwk, nil
}

// FromJWK validates a JWK and imports it as a key pair. The declared key
// type, curve and coordinate lengths must all line up; when a private key
// is present the public coordinate must match the one it derives.
func FromJWK(jwk *JWK) (*KeyPair, error) {
	if jwk.Kty != jwkKtyOKP {
		return nil, errors.Wrapf(ErrMalformedJwk, "unsupported kty %q", jwk.Kty)
	}

	var alg Algorithm
	switch jwk.Crv {
	case jwkCrvEd25519:
		alg = Ed25519
	case jwkCrvX25519:
		alg = X25519
	default:
		return nil, errors.Wrapf(ErrMalformedJwk, "unsupported crv %q", jwk.Crv)
	}

	if jwk.X == "" {
		return nil, errors.Wrap(ErrMalformedJwk, "missing x coordinate")
	}

	x, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedJwk, "x is not base64url")
	}

	if len(x) != PublicKeySize {
		return nil, errors.Wrapf(ErrMalformedJwk, "x expects %d bytes, got %d", PublicKeySize, len(x))
	}

	if jwk.D == "" {
		return FromPublicBytes(alg, x)
	}

	d, err := base64.RawURLEncoding.DecodeString(jwk.D)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedJwk, "d is not base64url")
	}
	defer zero(d)

	if len(d) != SeedSize {
		return nil, errors.Wrapf(ErrMalformedJwk, "d expects %d bytes, got %d", SeedSize, len(d))
	}

	kp, err := FromPrivateBytes(alg, d)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare(kp.pub, x) != 1 {
		kp.Zero()
		return nil, errors.Wrap(ErrMalformedJwk, "x does not match derived public key")
	}

	return kp, nil
}

// JWK exports the key pair as an OKP JWK, including the private key when
// the pair holds one.
func (k *KeyPair) JWK() (*JWK, error) {
	jwk := &JWK{
		Kty: jwkKtyOKP,
		X:   base64.RawURLEncoding.EncodeToString(k.pub),
	}

	switch k.alg {
	case Ed25519:
		jwk.Crv = jwkCrvEd25519
	case X25519:
		jwk.Crv = jwkCrvX25519
	default:
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%s", k.alg)
	}

	if k.HasPrivate() {
		jwk.D = base64.RawURLEncoding.EncodeToString(k.priv)
	}

	return jwk, nil
}

// PublicJWK exports only the public half regardless of whether the pair
// holds private material.
func (k *KeyPair) PublicJWK() (*JWK, error) {
	jwk, err := k.JWK()
	if err != nil {
		return nil, err
	}

	jwk.D = ""
	return jwk, nil
}
