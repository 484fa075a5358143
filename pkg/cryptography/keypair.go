// Package cryptography models the key material behind DIDs: generation,
// import from self-describing encodings, and conversion to and from JWKs.
package cryptography

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"

	"filippo.io/edwards25519"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
	"golang.org/x/crypto/curve25519"

	"github.com/tcfw/didkit/pkg/multikey"
)

type Algorithm string

const (
	Ed25519 Algorithm = "ed25519"
	X25519  Algorithm = "x25519"

	// All supported algorithms use 32-byte public keys and 32-byte seeds
	PublicKeySize = 32
	SeedSize      = 32
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported key algorithm")
	ErrInvalidKeyLength     = errors.New("invalid key length")
	ErrInvalidPublicKey     = errors.New("invalid public key")
	ErrNoPrivateKey         = errors.New("no private key material")
)

// Code maps the algorithm to its multicodec key tag.
func (a Algorithm) Code() (multicodec.Code, error) {
	switch a {
	case Ed25519:
		return multicodec.Ed25519Pub, nil
	case X25519:
		return multicodec.X25519Pub, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedAlgorithm, "%s", a)
	}
}

// AlgorithmForCode maps a multicodec key tag back to an algorithm.
func AlgorithmForCode(code multicodec.Code) (Algorithm, error) {
	switch code {
	case multicodec.Ed25519Pub:
		return Ed25519, nil
	case multicodec.X25519Pub:
		return X25519, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedAlgorithm, "codec 0x%x", uint64(code))
	}
}

// KeyPair holds public key bytes and, when locally generated or imported
// from private material, the private seed. Private bytes never leave the
// pair except through PrivateBytes, and are wiped by Zero.
type KeyPair struct {
	alg  Algorithm
	pub  []byte
	priv []byte
}

// Generate creates a fresh key pair from the process entropy source.
func Generate(alg Algorithm) (*KeyPair, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, errors.Wrap(err, "reading entropy")
	}
	defer zero(seed)

	return FromPrivateBytes(alg, seed)
}

// FromPrivateBytes derives a full key pair from a 32-byte private seed.
// The seed is copied; the caller retains ownership of its buffer.
func FromPrivateBytes(alg Algorithm, seed []byte) (*KeyPair, error) {
	if len(seed) != SeedSize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "%s seed expects %d bytes, got %d", alg, SeedSize, len(seed))
	}

	pub, err := derivePublic(alg, seed)
	if err != nil {
		return nil, err
	}

	priv := make([]byte, SeedSize)
	copy(priv, seed)

	return &KeyPair{alg: alg, pub: pub, priv: priv}, nil
}

// FromMultibase imports a public-only key pair from a multikey token.
func FromMultibase(token string) (*KeyPair, error) {
	code, raw, err := multikey.Decode(token)
	if err != nil {
		return nil, err
	}

	alg, err := AlgorithmForCode(code)
	if err != nil {
		return nil, err
	}

	pub := make([]byte, len(raw))
	copy(pub, raw)

	return &KeyPair{alg: alg, pub: pub}, nil
}

// FromPublicBytes imports a public-only key pair from raw key bytes.
func FromPublicBytes(alg Algorithm, pub []byte) (*KeyPair, error) {
	if len(pub) != PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "%s public key expects %d bytes, got %d", alg, PublicKeySize, len(pub))
	}
	if _, err := alg.Code(); err != nil {
		return nil, err
	}

	p := make([]byte, len(pub))
	copy(p, pub)

	return &KeyPair{alg: alg, pub: p}, nil
}

func derivePublic(alg Algorithm, seed []byte) ([]byte, error) {
	switch alg {
	case Ed25519:
		sk := ed25519.NewKeyFromSeed(seed)
		defer zero(sk)

		pub := make([]byte, PublicKeySize)
		copy(pub, sk[SeedSize:])
		return pub, nil
	case X25519:
		pub, err := curve25519.X25519(seed, curve25519.Basepoint)
		if err != nil {
			return nil, errors.Wrap(err, "deriving x25519 public key")
		}
		return pub, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%s", alg)
	}
}

func (k *KeyPair) Algorithm() Algorithm {
	return k.alg
}

// Public returns a copy of the public key bytes.
func (k *KeyPair) Public() []byte {
	pub := make([]byte, len(k.pub))
	copy(pub, k.pub)
	return pub
}

func (k *KeyPair) HasPrivate() bool {
	return len(k.priv) != 0
}

// PrivateBytes returns a copy of the private seed. Callers own the copy
// and are responsible for wiping it.
func (k *KeyPair) PrivateBytes() ([]byte, error) {
	if !k.HasPrivate() {
		return nil, ErrNoPrivateKey
	}

	priv := make([]byte, len(k.priv))
	copy(priv, k.priv)
	return priv, nil
}

// Multibase encodes the public key as a base58btc multikey token.
func (k *KeyPair) Multibase() (string, error) {
	code, err := k.alg.Code()
	if err != nil {
		return "", err
	}

	return multikey.Encode(code, k.pub)
}

// Fingerprint derives a stable identifier for the public key.
func (k *KeyPair) Fingerprint() (string, error) {
	mh, err := multihash.Sum(k.pub, multihash.SHA3_384, multihash.DefaultLengths[multihash.SHA3_384])
	if err != nil {
		return "", errors.Wrap(err, "hashing public key")
	}

	return mh.B58String(), nil
}

// Equal reports whether both pairs hold the same algorithm and public key.
func (k *KeyPair) Equal(o *KeyPair) bool {
	return o != nil && k.alg == o.alg && bytes.Equal(k.pub, o.pub)
}

// Clone returns an independent copy. Zeroing one pair leaves the other
// intact.
func (k *KeyPair) Clone() *KeyPair {
	c := &KeyPair{alg: k.alg, pub: k.Public()}

	if k.HasPrivate() {
		c.priv = make([]byte, len(k.priv))
		copy(c.priv, k.priv)
	}

	return c
}

// Zero overwrites any private key material held by the pair. The pair
// remains usable as a public-only key afterwards.
func (k *KeyPair) Zero() {
	zero(k.priv)
	k.priv = nil
}

// X25519FromEd25519 converts an Ed25519 public key to its X25519
// (Montgomery) form for key agreement.
func X25519FromEd25519(pub []byte) ([]byte, error) {
	if len(pub) != PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidKeyLength, "ed25519 public key expects %d bytes, got %d", PublicKeySize, len(pub))
	}

	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPublicKey, "not a valid edwards point")
	}

	return p.BytesMontgomery(), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
