package profile

import (
	"fmt"

	"loqus/api/models/constants/genotype"
	"loqus/api/models/errors"
	"loqus/api/models/indexes"
	"loqus/api/repositories"
	"loqus/api/vcf"
)

/*
	Individual genetic profiles over the fixed marker panel.

	A profile is a positional list of genotype strings, one per
	panel marker in the store's stable enumeration order. Two
	profiles are therefore directly comparable position by
	position, whichever vcf they came from.
*/

// Build reads a profile vcf and renders one profile per sample.
// A marker absent from the vcf, or present with an uncalled
// genotype, contributes "refref".
func Build(store repositories.Store, reader *vcf.Reader) (map[string][]string, error) {
	markers, err := store.ProfileMarkers()
	if err != nil {
		return nil, err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &errors.ValidationError{Message: err.Error()}
	}
	index := vcf.NewPositionIndex(records)

	samples := reader.Samples()
	profiles := make(map[string][]string, len(samples))
	for _, sample := range samples {
		profiles[sample] = make([]string, 0, len(markers))
	}

	for _, marker := range markers {
		rec := markerRecord(index, marker)
		for sampleIndex, sample := range samples {
			entry := "refref"
			if rec != nil {
				class, _ := genotype.Classify(rec.Calls[sampleIndex], 0, 0)
				entry = genotype.ProfileEntry(class)
			}
			profiles[sample] = append(profiles[sample], entry)
		}
	}

	return profiles, nil
}

// markerRecord finds the record matching a panel marker, on
// position and alleles both.
func markerRecord(index vcf.PositionIndex, marker *indexes.ProfileMarker) *vcf.Record {
	for _, rec := range index.At(marker.Chrom, marker.Pos) {
		if rec.Ref != marker.Ref {
			continue
		}
		for _, alt := range rec.Alt {
			if alt == marker.Alt {
				return rec
			}
		}
	}
	return nil
}

// Similarity is the fraction of positions at which the two
// profiles agree, over the longer of the two. Two empty
// profiles are identical.
func Similarity(a []string, b []string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}

	shared := len(a)
	if len(b) < shared {
		shared = len(b)
	}

	matches := 0
	for i := 0; i < shared; i++ {
		if a[i] == b[i] {
			matches++
		}
	}

	return float64(matches) / float64(longest)
}

// CheckDuplicates compares every incoming individual against
// every profiled individual already in the store. A similarity
// at or above hardThreshold rejects the whole upload; one at or
// above softThreshold is recorded on the incoming individual as
// "caseId.indId" and lets the upload proceed.
func CheckDuplicates(store repositories.Store, individuals []*indexes.Individual, hardThreshold float64, softThreshold float64) error {
	existingCases, err := store.Cases()
	if err != nil {
		return err
	}

	for _, individual := range individuals {
		if len(individual.Profile) == 0 {
			continue
		}
		for _, existingCase := range existingCases {
			for _, existing := range existingCase.Individuals {
				if len(existing.Profile) == 0 {
					continue
				}

				similarity := Similarity(individual.Profile, existing.Profile)
				if similarity >= hardThreshold {
					return &errors.DuplicationError{
						Message: fmt.Sprintf(
							"profile of %s matches %s.%s (similarity %.3f)",
							individual.IndId, existingCase.CaseId, existing.IndId, similarity),
					}
				}
				if similarity >= softThreshold {
					individual.SimilarSamples = append(individual.SimilarSamples,
						fmt.Sprintf("%s.%s", existingCase.CaseId, existing.IndId))
				}
			}
		}
	}

	return nil
}
