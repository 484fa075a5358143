package document

import (
	"encoding/json"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

// Canonical produces a deterministic serialization of the document:
// stable property order, list order as constructed. Two logically equal
// documents canonicalize to the same bytes.
func (d *Document) Canonical() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "canonicalizing document")
	}

	return b, nil
}

// Digest hashes the canonical form into a base58 multihash, usable as a
// content identifier for the resolved document.
func (d *Document) Digest() (string, error) {
	c, err := d.Canonical()
	if err != nil {
		return "", err
	}

	mh, err := multihash.Sum(c, multihash.SHA2_256, multihash.DefaultLengths[multihash.SHA2_256])
	if err != nil {
		return "", errors.Wrap(err, "hashing canonical form")
	}

	return mh.B58String(), nil
}
