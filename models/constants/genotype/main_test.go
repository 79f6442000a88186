package genotype

import (
	"testing"

	c "loqus/api/models/constants"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("should map every call code to its zygosity class", func(t *testing.T) {
		cases := []struct {
			call     c.GenotypeCall
			expected c.GenotypeClass
		}{
			{CallHomRef, HomRef},
			{CallHet, Het},
			{CallUnknown, Missing},
			{CallHomAlt, HomAlt},
		}
		for _, tc := range cases {
			class, counted := Classify(tc.call, 99, 20)
			assert.True(t, counted)
			assert.Equal(t, tc.expected, class)
		}
	})

	t.Run("should treat unexpected call codes as missing", func(t *testing.T) {
		class, counted := Classify(c.GenotypeCall(42), 99, 20)
		assert.True(t, counted)
		assert.Equal(t, Missing, class)
	})

	t.Run("should gate out calls below the quality threshold", func(t *testing.T) {
		_, counted := Classify(CallHomAlt, 19, 20)
		assert.False(t, counted)

		// at the threshold the call still counts
		class, counted := Classify(CallHomAlt, 20, 20)
		assert.True(t, counted)
		assert.Equal(t, HomAlt, class)
	})
}

func TestCallFromAlleles(t *testing.T) {
	cases := []struct {
		alleles  []int
		expected c.GenotypeCall
	}{
		{[]int{0, 0}, CallHomRef},
		{[]int{0, 1}, CallHet},
		{[]int{1, 0}, CallHet},
		{[]int{1, 1}, CallHomAlt},
		{[]int{1, 2}, CallHomAlt},
		{[]int{-1, -1}, CallUnknown},
		{[]int{0, -1}, CallUnknown},
		{[]int{}, CallUnknown},
		// haploid calls
		{[]int{1}, CallHomAlt},
		{[]int{0}, CallHomRef},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, CallFromAlleles(tc.alleles), "alleles %v", tc.alleles)
	}
}

func TestProfileEntry(t *testing.T) {
	assert.Equal(t, "altalt", ProfileEntry(HomAlt))
	assert.Equal(t, "refalt", ProfileEntry(Het))
	assert.Equal(t, "refref", ProfileEntry(HomRef))
	assert.Equal(t, "refref", ProfileEntry(Missing))
}
