// Package document models W3C DID Documents: verification methods,
// relationship lists and service endpoints, with a builder that enforces
// the document invariants at construction time.
package document

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/tcfw/didkit/pkg/cryptography"
)

type VerificationMethodType string

const (
	Ed25519VerificationKey2020 VerificationMethodType = "Ed25519VerificationKey2020"
	X25519KeyAgreementKey2019  VerificationMethodType = "X25519KeyAgreementKey2019"
	JSONWebKey2020             VerificationMethodType = "JsonWebKey2020"
	Multikey                   VerificationMethodType = "Multikey"
)

// DefaultContext is the base JSON-LD context for DID documents.
const DefaultContext = "https://www.w3.org/ns/did/v1"

type VerificationMethod struct {
	ID                 string                 `json:"id"`
	Type               VerificationMethodType `json:"type"`
	Controller         string                 `json:"controller"`
	PublicKeyMultibase string                 `json:"publicKeyMultibase,omitempty"`
	PublicKeyJWK       *cryptography.JWK      `json:"publicKeyJwk,omitempty"`
}

type Service struct {
	ID              string      `json:"id"`
	Type            string      `json:"type"`
	ServiceEndpoint FlexStrings `json:"serviceEndpoint"`
}

// Relationship is an entry in a verification relationship list: either a
// reference to a verification method id or an embedded method.
type Relationship struct {
	Ref      string
	Embedded *VerificationMethod
}

// Reference builds a relationship entry referring to a method by id.
func Reference(id string) Relationship {
	return Relationship{Ref: id}
}

// Embed builds a relationship entry carrying the method inline.
func Embed(vm VerificationMethod) Relationship {
	return Relationship{Embedded: &vm}
}

func (r Relationship) MarshalJSON() ([]byte, error) {
	if r.Embedded != nil {
		return json.Marshal(r.Embedded)
	}

	return json.Marshal(r.Ref)
}

func (r *Relationship) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.Ref)
	}

	vm := &VerificationMethod{}
	if err := json.Unmarshal(data, vm); err != nil {
		return err
	}

	r.Embedded = vm
	return nil
}

type Document struct {
	Context              FlexStrings          `json:"@context,omitempty"`
	ID                   string               `json:"id"`
	AlsoKnownAs          []string             `json:"alsoKnownAs,omitempty"`
	Controller           FlexStrings          `json:"controller,omitempty"`
	VerificationMethod   []VerificationMethod `json:"verificationMethod,omitempty"`
	Authentication       []Relationship       `json:"authentication,omitempty"`
	AssertionMethod      []Relationship       `json:"assertionMethod,omitempty"`
	KeyAgreement         []Relationship       `json:"keyAgreement,omitempty"`
	CapabilityInvocation []Relationship       `json:"capabilityInvocation,omitempty"`
	Service              []Service            `json:"service,omitempty"`
}

// Parse decodes a JSON DID document without applying builder invariants.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(err, "unmarshalling document")
	}

	return doc, nil
}

// FindVerificationMethod locates a method by full id or by '#fragment'
// relative reference, searching the verification-method list first and
// any embedded relationship entries second.
func (d *Document) FindVerificationMethod(id string) (*VerificationMethod, bool) {
	abs := id
	if len(id) > 0 && id[0] == '#' {
		abs = d.ID + id
	}

	for i := range d.VerificationMethod {
		if matchMethodID(d.VerificationMethod[i].ID, abs, d.ID) {
			return &d.VerificationMethod[i], true
		}
	}

	for _, rels := range [][]Relationship{d.Authentication, d.AssertionMethod, d.KeyAgreement, d.CapabilityInvocation} {
		for i := range rels {
			if rels[i].Embedded != nil && matchMethodID(rels[i].Embedded.ID, abs, d.ID) {
				return rels[i].Embedded, true
			}
		}
	}

	return nil, false
}

// matchMethodID compares a stored method id against an absolute lookup
// id, tolerating documents that store relative '#fragment' ids.
func matchMethodID(stored, abs, docID string) bool {
	if stored == abs {
		return true
	}

	return len(stored) > 0 && stored[0] == '#' && docID+stored == abs
}

// relationships returns the four relationship lists keyed by their
// document property names, for validation and inspection.
func (d *Document) relationships() map[string][]Relationship {
	return map[string][]Relationship{
		"authentication":       d.Authentication,
		"assertionMethod":      d.AssertionMethod,
		"keyAgreement":         d.KeyAgreement,
		"capabilityInvocation": d.CapabilityInvocation,
	}
}
