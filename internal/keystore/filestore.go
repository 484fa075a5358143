// Package keystore persists locally generated key pairs to disk, indexed
// by public key fingerprint.
package keystore

import (
	"encoding/base64"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tcfw/didkit/pkg/cryptography"
)

var ErrNotFound = errors.New("key not found")

type keyFile struct {
	Keys []keyFileEntry `yaml:"keys"`
}

type keyFileEntry struct {
	Algorithm string `yaml:"algorithm"`
	Seed      string `yaml:"seed"`
}

type FileStore struct {
	path string
	keys keyFile
	idx  map[string]*cryptography.KeyPair

	mu sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	f := &FileStore{path: path}
	if err := f.read(); err != nil {
		return nil, err
	}

	return f, nil
}

func (fs *FileStore) read() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.OpenFile(fs.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return errors.Wrap(err, "opening key file for read")
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return errors.Wrap(err, "reading key file")
	}

	if err := yaml.Unmarshal(d, &fs.keys); err != nil {
		return errors.Wrap(err, "unmarshalling key data")
	}

	return fs.buildIdx()
}

func (fs *FileStore) buildIdx() error {
	//assumes locked fs.mu

	fs.idx = make(map[string]*cryptography.KeyPair, len(fs.keys.Keys))

	for _, e := range fs.keys.Keys {
		kp, err := decodeEntry(e)
		if err != nil {
			return errors.Wrap(err, "decoding key entry")
		}

		fp, err := kp.Fingerprint()
		if err != nil {
			return errors.Wrap(err, "fingerprinting key")
		}

		fs.idx[fp] = kp
	}

	return nil
}

func decodeEntry(e keyFileEntry) (*cryptography.KeyPair, error) {
	seed, err := base64.StdEncoding.DecodeString(e.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "decoding b64 seed")
	}

	kp, err := cryptography.FromPrivateBytes(cryptography.Algorithm(e.Algorithm), seed)

	for i := range seed {
		seed[i] = 0
	}

	return kp, err
}

// Add persists a key pair holding private material. Adding a key already
// present is a no-op.
func (fs *FileStore) Add(kp *cryptography.KeyPair) error {
	if !kp.HasPrivate() {
		return errors.New("key pair holds no private material")
	}

	fp, err := kp.Fingerprint()
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.idx[fp]; ok {
		return nil
	}

	seed, err := kp.PrivateBytes()
	if err != nil {
		return err
	}

	fs.keys.Keys = append(fs.keys.Keys, keyFileEntry{
		Algorithm: string(kp.Algorithm()),
		Seed:      base64.StdEncoding.EncodeToString(seed),
	})

	for i := range seed {
		seed[i] = 0
	}

	fs.idx[fp] = kp.Clone()

	return fs.write()
}

func (fs *FileStore) write() error {
	//assumes locked fs.mu

	f, err := os.OpenFile(fs.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return errors.Wrap(err, "opening key file for write")
	}
	defer f.Close()

	d, err := yaml.Marshal(&fs.keys)
	if err != nil {
		return errors.Wrap(err, "marshalling key data")
	}

	f.Truncate(0)
	_, err = f.Write(d)
	return err
}

// Find looks up a key pair by public key fingerprint.
func (fs *FileStore) Find(fingerprint string) (*cryptography.KeyPair, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	kp, ok := fs.idx[fingerprint]
	if !ok {
		return nil, ErrNotFound
	}

	// callers own the copy and may Zero it without touching the index
	return kp.Clone(), nil
}

func (fs *FileStore) List() ([]*cryptography.KeyPair, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	keys := make([]*cryptography.KeyPair, 0, len(fs.idx))

	for _, kp := range fs.idx {
		keys = append(keys, kp.Clone())
	}

	return keys, nil
}
