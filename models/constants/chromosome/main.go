package chromosome

import (
	"strconv"
	"strings"
)

func IsValidHumanChromosome(text string) bool {

	// Check if number can be represented as an int as is non-zero
	chromNumber, _ := strconv.Atoi(text)
	if chromNumber > 0 {
		// It can..
		// Check if it in range 1-23
		if chromNumber < 24 {
			return true
		}
	} else {
		// No it can't..
		// Check if it is an X, Y..
		loweredText := strings.ToLower(text)
		switch loweredText {
		case "x":
			return true
		case "y":
			return true
		}

		// ..or M (MT)
		switch strings.Contains(loweredText, "m") {
		case true:
			return true
		}
	}

	return false
}

func IsSexChromosome(text string) bool {
	switch strings.ToUpper(text) {
	case "X":
		return true
	case "Y":
		return true
	}
	return false
}

// StripPrefix removes the configured leading prefix, falling
// back to the conventional "chr" one when none is configured,
// so chromosome names compare equal across differently
// prefixed VCFs and marker panels.
func StripPrefix(text string, prefix string) string {
	if prefix != "" {
		return strings.TrimPrefix(text, prefix)
	}
	if strings.HasPrefix(strings.ToLower(text), "chr") {
		return text[3:]
	}
	return text
}
