// Package detector defines the protocol shared by qualifier detectors.
//
// A detector declares the qualifier classes it can assign. Run initializes
// every entity with the default of each declared class it does not yet
// carry, then lets the detector overwrite the defaults it finds evidence
// against. Detectors only ever replace qualifiers by class name, so each
// entity holds at most one value per class.
package detector

import (
	"errors"
	"fmt"

	"github.com/roach88/clinctx/internal/document"
	"github.com/roach88/clinctx/internal/qualifier"
)

// ErrQualifiersNotInitialized indicates an attempt to add a qualifier to an
// entity whose qualifier set was never initialized.
var ErrQualifiersNotInitialized = errors.New("entity qualifiers not initialized")

// Detector assigns qualifiers to the entities of a document.
type Detector interface {
	// QualifierClasses returns the classes this detector may assign.
	QualifierClasses() []*qualifier.Class

	// DetectQualifiers assigns qualifiers to already initialized entities.
	DetectQualifiers(doc *document.Document) error
}

// Run initializes the entities of doc and invokes d. Documents without
// entities are left untouched.
func Run(d Detector, doc *document.Document) error {
	if len(doc.Entities) == 0 {
		return nil
	}

	classes := d.QualifierClasses()
	for _, ent := range doc.Entities {
		InitializeEntity(ent, classes)
	}

	if err := d.DetectQualifiers(doc); err != nil {
		return fmt.Errorf("detect qualifiers in document %s: %w", doc.ID, err)
	}
	return nil
}

// InitializeEntity gives ent a qualifier set when it has none, and adds the
// default of every class in classes that the set does not already hold.
// Existing qualifiers are kept.
func InitializeEntity(ent *document.Entity, classes []*qualifier.Class) {
	if ent.Qualifiers == nil {
		ent.Qualifiers = qualifier.NewSet()
	}
	for _, c := range classes {
		if _, ok := ent.Qualifiers.Get(c.Name()); !ok {
			ent.Qualifiers.Add(c.Default())
		}
	}
}

// AddQualifier sets q on ent, replacing any qualifier of the same class.
func AddQualifier(ent *document.Entity, q qualifier.Qualifier) error {
	if ent.Qualifiers == nil {
		return fmt.Errorf("%w: entity [%d, %d)", ErrQualifiersNotInitialized, ent.Start, ent.End)
	}
	ent.Qualifiers.Add(q)
	return nil
}
