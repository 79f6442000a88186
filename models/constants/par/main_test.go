package par

import (
	"testing"

	a "loqus/api/models/constants/assembly-id"

	"github.com/stretchr/testify/assert"
)

func TestInPseudoAutosomalRegion(t *testing.T) {
	t.Run("should include both interval bounds", func(t *testing.T) {
		assert.True(t, InPseudoAutosomalRegion(a.GRCh37, "X", 60001))
		assert.True(t, InPseudoAutosomalRegion(a.GRCh37, "X", 2699520))
		assert.False(t, InPseudoAutosomalRegion(a.GRCh37, "X", 60000))
		assert.False(t, InPseudoAutosomalRegion(a.GRCh37, "X", 2699521))
	})

	t.Run("should cover the second interval", func(t *testing.T) {
		assert.True(t, InPseudoAutosomalRegion(a.GRCh37, "X", 154931044))
		assert.True(t, InPseudoAutosomalRegion(a.GRCh38, "Y", 57000000))
	})

	t.Run("should differ between builds", func(t *testing.T) {
		// inside GRCh38's X interval but below GRCh37's start
		assert.True(t, InPseudoAutosomalRegion(a.GRCh38, "X", 20000))
		assert.False(t, InPseudoAutosomalRegion(a.GRCh37, "X", 20000))
	})

	t.Run("should never match autosomes or unknown builds", func(t *testing.T) {
		assert.False(t, InPseudoAutosomalRegion(a.GRCh37, "1", 60001))
		assert.False(t, InPseudoAutosomalRegion(a.Unknown, "X", 60001))
	})
}
