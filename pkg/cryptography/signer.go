package cryptography

// Signer is the external signing capability consumers inject when they
// need signatures over DID-bound material. The core never executes
// signing primitives itself; key custody stays with the implementation.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
}
