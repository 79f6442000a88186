package vcf

import "fmt"

// PositionIndex answers "which records sit at this exact
// position" for a fully read VCF. The marker panel is tens of
// positions, so a flat map beats any interval structure here.
type PositionIndex map[string][]*Record

func NewPositionIndex(records []*Record) PositionIndex {
	index := make(PositionIndex)
	for _, rec := range records {
		key := positionKey(rec.Chrom, rec.Pos)
		index[key] = append(index[key], rec)
	}
	return index
}

func (idx PositionIndex) At(chrom string, pos int) []*Record {
	return idx[positionKey(chrom, pos)]
}

func positionKey(chrom string, pos int) string {
	return fmt.Sprintf("%s:%d", chrom, pos)
}
