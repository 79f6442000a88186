package sex

import (
	"loqus/api/models/constants"
	"strings"
)

const (
	Unknown constants.Sex = 0
	Male    constants.Sex = 1
	Female  constants.Sex = 2
)

func CastToSex(text string) constants.Sex {
	switch strings.ToLower(text) {
	case "1", "m", "male":
		return Male
	case "2", "f", "female":
		return Female
	default:
		return Unknown
	}
}
