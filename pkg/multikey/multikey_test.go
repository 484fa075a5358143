package multikey

import (
	"crypto/rand"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, code := range []multicodec.Code{multicodec.Ed25519Pub, multicodec.X25519Pub} {
		t.Run(code.String(), func(t *testing.T) {
			size, ok := KeySize(code)
			require.True(t, ok)

			raw := make([]byte, size)
			_, err := rand.Read(raw)
			require.NoError(t, err)

			token, err := Encode(code, raw)
			require.NoError(t, err)

			gotCode, gotRaw, err := Decode(token)
			require.NoError(t, err)

			assert.Equal(t, code, gotCode)
			assert.Equal(t, raw, gotRaw)
		})
	}
}

func TestReencodeSameBase(t *testing.T) {
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)

	token, err := Encode(multicodec.Ed25519Pub, raw)
	require.NoError(t, err)

	code, gotRaw, base, err := DecodeBase(token)
	require.NoError(t, err)

	again, err := EncodeBase(base, code, gotRaw)
	require.NoError(t, err)

	assert.Equal(t, token, again)
}

func TestDecodeUnknownBase(t *testing.T) {
	_, _, err := Decode("?notabase")
	assert.ErrorIs(t, err, ErrUnknownBase)

	_, _, err = Decode("")
	assert.ErrorIs(t, err, ErrUnknownBase)
}

func TestDecodeUnknownCodec(t *testing.T) {
	// sha2-256 is a valid multicodec but not a key codec
	buf := append(varint.ToUvarint(0x12), make([]byte, 32)...)

	token, err := multibase.Encode(multibase.Base58BTC, buf)
	require.NoError(t, err)

	_, _, err = Decode(token)
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestDecodeTruncated(t *testing.T) {
	buf := append(varint.ToUvarint(uint64(multicodec.Ed25519Pub)), make([]byte, 16)...)

	token, err := multibase.Encode(multibase.Base58BTC, buf)
	require.NoError(t, err)

	_, _, err = Decode(token)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeTrailingBytes(t *testing.T) {
	buf := append(varint.ToUvarint(uint64(multicodec.Ed25519Pub)), make([]byte, 40)...)

	token, err := multibase.Encode(multibase.Base58BTC, buf)
	require.NoError(t, err)

	_, _, err = Decode(token)
	assert.ErrorIs(t, err, ErrTrailing)
}

func TestEncodeWrongLength(t *testing.T) {
	_, err := Encode(multicodec.Ed25519Pub, make([]byte, 31))
	assert.Error(t, err)
}

func TestEncodeUnknownCodec(t *testing.T) {
	_, err := Encode(multicodec.Code(0x12), make([]byte, 32))
	assert.ErrorIs(t, err, ErrUnknownCodec)
}
