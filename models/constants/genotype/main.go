package genotype

import (
	"loqus/api/models/constants"
)

/*
	Raw genotype call codes as produced by the vcf reader,
	and their mapping to zygosity classes. The code values
	follow the numbering the upstream variant callers use:

		0 : homozygous reference
		1 : heterozygous
		2 : uncalled / missing
		3 : homozygous alternate
*/

const (
	CallHomRef  constants.GenotypeCall = 0
	CallHet     constants.GenotypeCall = 1
	CallUnknown constants.GenotypeCall = 2
	CallHomAlt  constants.GenotypeCall = 3
)

const (
	HomRef constants.GenotypeClass = iota
	Het
	HomAlt
	Missing
)

// fixed lookup from raw call code to zygosity class;
// any code outside the table is treated as missing
var callClasses = map[constants.GenotypeCall]constants.GenotypeClass{
	CallHomRef:  HomRef,
	CallHet:     Het,
	CallUnknown: Missing,
	CallHomAlt:  HomAlt,
}

// Classify maps a raw call code and its genotype quality to a
// zygosity class. The second return value is false when the
// call fails the quality gate and must be skipped entirely
// (no observation recorded), as opposed to classified missing.
func Classify(call constants.GenotypeCall, quality int, qualityThreshold int) (constants.GenotypeClass, bool) {
	if quality < qualityThreshold {
		return Missing, false
	}

	class, ok := callClasses[call]
	if !ok {
		return Missing, true
	}
	return class, true
}

// CallFromAlleles derives the raw call code from the
// integer allele pair of a VCF GT field (-1 = '.').
func CallFromAlleles(alleles []int) constants.GenotypeCall {
	if len(alleles) == 0 {
		return CallUnknown
	}

	allRef := true
	allAlt := true
	for _, allele := range alleles {
		if allele < 0 {
			return CallUnknown
		}
		if allele == 0 {
			allAlt = false
		} else {
			allRef = false
		}
	}

	switch {
	case allRef:
		return CallHomRef
	case allAlt:
		return CallHomAlt
	default:
		return CallHet
	}
}

// ProfileEntry renders a class as the two-letter genotype
// string used in individual profiles. Missing calls are
// imputed as homozygous reference.
func ProfileEntry(class constants.GenotypeClass) string {
	switch class {
	case HomAlt:
		return "altalt"
	case Het:
		return "refalt"
	default:
		return "refref"
	}
}
