package memory

import (
	"sync"

	"loqus/api/models/indexes"
	"loqus/api/utils"
)

/*
	In-process Store with the same aggregation semantics as the
	elasticsearch implementation. Backs the test suites and the
	LOQUS_API_MEM_STORE development mode.
*/

type tally struct {
	observations int
	homozygote   int
	hemizygote   int
}

type variantAggregate struct {
	doc    *indexes.Variant
	byCase map[string]*tally
}

type svAggregate struct {
	doc    *indexes.StructuralVariant
	byCase map[string]int
}

type Store struct {
	mu        sync.RWMutex
	cases     map[string]*indexes.Case
	caseOrder []string
	variants  map[string]*variantAggregate
	svs       []*svAggregate
	markers   []*indexes.ProfileMarker
}

func NewStore() *Store {
	return &Store{
		cases:    map[string]*indexes.Case{},
		variants: map[string]*variantAggregate{},
	}
}

// SeedProfileMarkers installs the fixed marker panel; the
// slice order is the panel enumeration order.
func (s *Store) SeedProfileMarkers(markers ...*indexes.ProfileMarker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append(s.markers, markers...)
}

func (s *Store) ProfileMarkers() ([]*indexes.ProfileMarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*indexes.ProfileMarker, len(s.markers))
	copy(out, s.markers)
	return out, nil
}

func (s *Store) Case(caseId string) (*indexes.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cases[caseId], nil
}

func (s *Store) Cases() ([]*indexes.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*indexes.Case, 0, len(s.caseOrder))
	for _, caseId := range s.caseOrder {
		out = append(out, s.cases[caseId])
	}
	return out, nil
}

func (s *Store) AddCase(caseObj *indexes.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cases[caseObj.CaseId]; !exists {
		s.caseOrder = append(s.caseOrder, caseObj.CaseId)
	}
	s.cases[caseObj.CaseId] = caseObj
	return nil
}

func (s *Store) NrCases(snvCases bool, svCases bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, caseObj := range s.cases {
		if snvCases && caseObj.VcfPath != "" {
			count++
			continue
		}
		if svCases && caseObj.VcfSvPath != "" {
			count++
		}
	}
	return count, nil
}

func (s *Store) AddVariants(variants []*indexes.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, variant := range variants {
		agg, exists := s.variants[variant.Id]
		if !exists {
			doc := *variant
			doc.Observations = 0
			doc.Homozygote = 0
			doc.Hemizygote = 0
			doc.Families = nil
			agg = &variantAggregate{doc: &doc, byCase: map[string]*tally{}}
			s.variants[variant.Id] = agg
		}

		caseTally, exists := agg.byCase[variant.CaseId]
		if !exists {
			caseTally = &tally{}
			agg.byCase[variant.CaseId] = caseTally
		}
		caseTally.observations++
		caseTally.homozygote += variant.Homozygote
		caseTally.hemizygote += variant.Hemizygote

		agg.doc.Observations++
		agg.doc.Homozygote += variant.Homozygote
		agg.doc.Hemizygote += variant.Hemizygote
		if !utils.StringInSlice(variant.CaseId, agg.doc.Families) {
			agg.doc.Families = append(agg.doc.Families, variant.CaseId)
		}
	}
	return nil
}

func (s *Store) AddStructuralVariant(sv *indexes.StructuralVariant, maxWindow int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, agg := range s.svs {
		doc := agg.doc
		if doc.Chrom != sv.Chrom || doc.EndChrom != sv.EndChrom || doc.SvType != sv.SvType {
			continue
		}
		if abs(doc.Pos-sv.Pos) > maxWindow || abs(doc.End-sv.End) > maxWindow {
			continue
		}

		// grow the cluster envelope around the new observation
		doc.PosLeft = min(doc.PosLeft, sv.Pos)
		doc.PosRight = max(doc.PosRight, sv.Pos)
		doc.EndLeft = min(doc.EndLeft, sv.End)
		doc.EndRight = max(doc.EndRight, sv.End)
		doc.Pos = (doc.PosLeft + doc.PosRight) / 2
		doc.End = (doc.EndLeft + doc.EndRight) / 2
		doc.Observations++
		if !utils.StringInSlice(sv.CaseId, doc.Families) {
			doc.Families = append(doc.Families, sv.CaseId)
		}
		agg.byCase[sv.CaseId]++
		return nil
	}

	doc := *sv
	doc.Observations = 1
	doc.Families = []string{sv.CaseId}
	doc.PosLeft = sv.Pos
	doc.PosRight = sv.Pos
	doc.EndLeft = sv.End
	doc.EndRight = sv.End
	s.svs = append(s.svs, &svAggregate{
		doc:    &doc,
		byCase: map[string]int{sv.CaseId: 1},
	})
	return nil
}

func (s *Store) Variant(variantId string) (*indexes.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, exists := s.variants[variantId]
	if !exists {
		return nil, nil
	}
	doc := *agg.doc
	return &doc, nil
}

func (s *Store) StructuralVariant(chrom string, endChrom string, svType string, pos int, end int) (*indexes.StructuralVariant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, agg := range s.svs {
		doc := agg.doc
		if doc.Chrom != chrom || doc.EndChrom != endChrom || doc.SvType != svType {
			continue
		}
		if pos < doc.PosLeft || pos > doc.PosRight || end < doc.EndLeft || end > doc.EndRight {
			continue
		}
		out := *doc
		return &out, nil
	}
	return nil, nil
}

func (s *Store) DeleteCase(caseId string, genomeBuild string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for variantId, agg := range s.variants {
		caseTally, exists := agg.byCase[caseId]
		if !exists {
			continue
		}
		agg.doc.Observations -= caseTally.observations
		agg.doc.Homozygote -= caseTally.homozygote
		agg.doc.Hemizygote -= caseTally.hemizygote
		agg.doc.Families = remove(agg.doc.Families, caseId)
		delete(agg.byCase, caseId)
		if agg.doc.Observations <= 0 {
			delete(s.variants, variantId)
		}
	}

	kept := s.svs[:0]
	for _, agg := range s.svs {
		if count, exists := agg.byCase[caseId]; exists {
			agg.doc.Observations -= count
			agg.doc.Families = remove(agg.doc.Families, caseId)
			delete(agg.byCase, caseId)
		}
		if agg.doc.Observations > 0 {
			kept = append(kept, agg)
		}
	}
	s.svs = kept

	if _, exists := s.cases[caseId]; exists {
		delete(s.cases, caseId)
		s.caseOrder = remove(s.caseOrder, caseId)
	}
	return nil
}

func remove(list []string, item string) []string {
	out := list[:0]
	for _, entry := range list {
		if entry != item {
			out = append(out, entry)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
