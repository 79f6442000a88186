package variantType

import (
	"loqus/api/models/constants"
)

// "snv" covers any small sequence-resolved variant; "sv"
// covers symbolic and breakend records. A loadable VCF must
// contain exactly one of the two kinds.
const (
	Unknown constants.VariantType = "unknown"

	Snv constants.VariantType = "snv"
	Sv  constants.VariantType = "sv"
)
