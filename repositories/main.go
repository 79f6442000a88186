package repositories

import (
	"loqus/api/models/indexes"
)

// Store is the capability surface the loading pipeline needs
// from the variant-frequency database. Lookups return
// (nil, nil) when nothing matches; aggregation of repeated
// insertions of the same canonical variant is the store's
// responsibility, not the caller's.
type Store interface {
	// cases
	Case(caseId string) (*indexes.Case, error)
	Cases() ([]*indexes.Case, error)
	AddCase(caseObj *indexes.Case) error
	// DeleteCase removes the case document and every variant
	// observation it contributed, decrementing aggregates and
	// dropping documents that reach zero observations.
	DeleteCase(caseId string, genomeBuild string) error
	NrCases(snvCases bool, svCases bool) (int, error)

	// the fixed marker panel, in stable enumeration order
	ProfileMarkers() ([]*indexes.ProfileMarker, error)

	// variant observations
	AddVariants(variants []*indexes.Variant) error
	AddStructuralVariant(sv *indexes.StructuralVariant, maxWindow int) error
	Variant(variantId string) (*indexes.Variant, error)
	// StructuralVariant matches against the cluster envelope
	// [pos_left, pos_right] x [end_left, end_right].
	StructuralVariant(chrom string, endChrom string, svType string, pos int, end int) (*indexes.StructuralVariant, error)
}
