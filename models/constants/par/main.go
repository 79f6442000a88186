package par

import (
	"loqus/api/models/constants"
	a "loqus/api/models/constants/assembly-id"
)

type region struct {
	start int
	end   int
}

// Pseudo-autosomal regions per genome build. Calls landing
// inside one of these intervals behave autosomally and are
// never counted as hemizygous.
var pseudoAutosomalRegions = map[constants.AssemblyId]map[string][]region{
	a.GRCh37: {
		"X": {{60001, 2699520}, {154931044, 155260560}},
		"Y": {{10001, 2649520}, {59034050, 59363566}},
	},
	a.GRCh38: {
		"X": {{10001, 2781479}, {155701383, 156030895}},
		"Y": {{10001, 2781479}, {56887903, 57217415}},
	},
}

func InPseudoAutosomalRegion(assemblyId constants.AssemblyId, chromosome string, position int) bool {
	chromRegions, ok := pseudoAutosomalRegions[assemblyId]
	if !ok {
		return false
	}

	for _, r := range chromRegions[chromosome] {
		if position >= r.start && position <= r.end {
			return true
		}
	}
	return false
}
