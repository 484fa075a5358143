package document

import (
	"github.com/pkg/errors"

	"github.com/tcfw/didkit/pkg/did"
)

var (
	ErrDuplicateVerificationMethod = errors.New("duplicate verification method id")
	ErrDanglingReference           = errors.New("relationship references unknown verification method")
)

// Builder accumulates document parts and enforces the uniqueness and
// reference-resolution invariants when Build is called. Built documents
// are treated as immutable by everything downstream.
type Builder struct {
	doc               Document
	allowExternalRefs bool
}

func NewBuilder(id string) *Builder {
	return &Builder{
		doc: Document{
			ID:      id,
			Context: FlexStrings{DefaultContext},
		},
	}
}

// AllowExternalRefs relaxes dangling-reference validation for documents
// whose relationship lists legitimately point at methods hosted
// elsewhere, as fetched network documents may.
func (b *Builder) AllowExternalRefs() *Builder {
	b.allowExternalRefs = true
	return b
}

func (b *Builder) Context(ctxs ...string) *Builder {
	b.doc.Context = append(b.doc.Context, ctxs...)
	return b
}

func (b *Builder) AlsoKnownAs(ids ...string) *Builder {
	b.doc.AlsoKnownAs = append(b.doc.AlsoKnownAs, ids...)
	return b
}

func (b *Builder) Controller(ids ...string) *Builder {
	b.doc.Controller = append(b.doc.Controller, ids...)
	return b
}

func (b *Builder) VerificationMethod(vm VerificationMethod) *Builder {
	b.doc.VerificationMethod = append(b.doc.VerificationMethod, vm)
	return b
}

func (b *Builder) Authentication(r Relationship) *Builder {
	b.doc.Authentication = append(b.doc.Authentication, r)
	return b
}

func (b *Builder) AssertionMethod(r Relationship) *Builder {
	b.doc.AssertionMethod = append(b.doc.AssertionMethod, r)
	return b
}

func (b *Builder) KeyAgreement(r Relationship) *Builder {
	b.doc.KeyAgreement = append(b.doc.KeyAgreement, r)
	return b
}

func (b *Builder) CapabilityInvocation(r Relationship) *Builder {
	b.doc.CapabilityInvocation = append(b.doc.CapabilityInvocation, r)
	return b
}

func (b *Builder) Service(s Service) *Builder {
	b.doc.Service = append(b.doc.Service, s)
	return b
}

// Build validates the accumulated document and returns it. The builder
// is not reusable after a successful build.
func (b *Builder) Build() (*Document, error) {
	doc := b.doc
	if err := doc.Validate(b.allowExternalRefs); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Validate enforces the document invariants: the id parses as a DID,
// verification method ids are unique, and - unless allowExternalRefs is
// set - every relationship reference resolves to a method in this
// document.
func (d *Document) Validate(allowExternalRefs bool) error {
	if _, err := did.Parse(d.ID); err != nil {
		return errors.Wrap(err, "document id")
	}

	ids := make(map[string]struct{}, len(d.VerificationMethod))

	collect := func(vmID string) error {
		abs := absoluteID(d.ID, vmID)
		if _, ok := ids[abs]; ok {
			return errors.Wrapf(ErrDuplicateVerificationMethod, "%s", vmID)
		}
		ids[abs] = struct{}{}
		return nil
	}

	for _, vm := range d.VerificationMethod {
		if err := collect(vm.ID); err != nil {
			return err
		}
	}

	for _, rels := range d.relationships() {
		for _, r := range rels {
			if r.Embedded != nil {
				if err := collect(r.Embedded.ID); err != nil {
					return err
				}
			}
		}
	}

	if !allowExternalRefs {
		for list, rels := range d.relationships() {
			for _, r := range rels {
				if r.Embedded != nil {
					continue
				}

				if _, ok := ids[absoluteID(d.ID, r.Ref)]; !ok {
					return errors.Wrapf(ErrDanglingReference, "%s in %s", r.Ref, list)
				}
			}
		}
	}

	return nil
}

func absoluteID(docID, id string) string {
	if len(id) > 0 && id[0] == '#' {
		return docID + id
	}
	return id
}
