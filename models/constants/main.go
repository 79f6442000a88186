package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout the loqus api and its
	associated services.
*/
type (
	AssemblyId string

	GenotypeCall  int
	GenotypeClass int

	Sex int

	VariantType string
)
