// Package multikey encodes and decodes self-describing public key tokens.
//
// A token is a multibase string carrying a varint multicodec tag followed
// by the raw key bytes, e.g. z6Mk... for an ed25519-pub key in base58btc.
package multikey

import (
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"
	"github.com/pkg/errors"
)

var (
	ErrUnknownBase  = errors.New("unknown multibase indicator")
	ErrUnknownCodec = errors.New("unknown key codec")
	ErrTruncated    = errors.New("truncated key payload")
	ErrTrailing     = errors.New("trailing key payload")
)

// DefaultBase is the base used by Encode. did:key and the W3C Multikey
// suite hard-code base58btc.
const DefaultBase = multibase.Base58BTC

// keySizes registers the key codecs the package recognises and the exact
// payload length each requires.
var keySizes = map[multicodec.Code]int{
	multicodec.Ed25519Pub: 32,
	multicodec.X25519Pub:  32,
}

// KeySize reports the fixed payload length for a registered key codec.
func KeySize(code multicodec.Code) (int, bool) {
	n, ok := keySizes[code]
	return n, ok
}

// Encode renders raw key bytes as a base58btc multikey token.
func Encode(code multicodec.Code, raw []byte) (string, error) {
	return EncodeBase(DefaultBase, code, raw)
}

// EncodeBase renders raw key bytes as a multikey token in the given base.
func EncodeBase(base multibase.Encoding, code multicodec.Code, raw []byte) (string, error) {
	size, ok := keySizes[code]
	if !ok {
		return "", errors.Wrapf(ErrUnknownCodec, "0x%x", uint64(code))
	}

	if len(raw) != size {
		return "", errors.Wrapf(ErrTruncated, "%s expects %d bytes, got %d", code, size, len(raw))
	}

	tag := varint.ToUvarint(uint64(code))

	buf := make([]byte, 0, len(tag)+len(raw))
	buf = append(buf, tag...)
	buf = append(buf, raw...)

	return multibase.Encode(base, buf)
}

// Decode parses a multikey token back into its codec tag and raw key bytes.
func Decode(token string) (multicodec.Code, []byte, error) {
	code, raw, _, err := DecodeBase(token)
	return code, raw, err
}

// DecodeBase parses a multikey token, additionally reporting the base it
// was encoded in so callers can re-encode byte-exact.
func DecodeBase(token string) (multicodec.Code, []byte, multibase.Encoding, error) {
	if len(token) == 0 {
		return 0, nil, 0, errors.Wrap(ErrUnknownBase, "empty token")
	}

	base := multibase.Encoding(token[0])
	if _, ok := multibase.EncodingToStr[base]; !ok {
		return 0, nil, 0, errors.Wrapf(ErrUnknownBase, "%q", token[0])
	}

	_, buf, err := multibase.Decode(token)
	if err != nil {
		return 0, nil, 0, errors.Wrap(err, "decoding multibase")
	}

	tag, n, err := varint.FromUvarint(buf)
	if err != nil {
		return 0, nil, 0, errors.Wrap(ErrUnknownCodec, err.Error())
	}

	code := multicodec.Code(tag)

	size, ok := keySizes[code]
	if !ok {
		return 0, nil, 0, errors.Wrapf(ErrUnknownCodec, "0x%x", tag)
	}

	raw := buf[n:]
	if len(raw) < size {
		return 0, nil, 0, errors.Wrapf(ErrTruncated, "%s expects %d bytes, got %d", code, size, len(raw))
	}

	if len(raw) > size {
		return 0, nil, 0, errors.Wrapf(ErrTrailing, "%s expects %d bytes, got %d", code, size, len(raw))
	}

	return code, raw, base, nil
}
