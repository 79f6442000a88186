package vcf

import (
	"fmt"
	"strconv"
	"strings"

	"loqus/api/models/constants/chromosome"
	variantType "loqus/api/models/constants/variant-type"
)

// Coordinates is the canonical form of one record : where it
// starts, where it ends (possibly on another chromosome for
// translocations), and what kind of event it is. SvType is
// empty for small variants.
type Coordinates struct {
	Chrom    string
	Pos      int
	End      int
	EndChrom string
	SvType   string
	Length   int
}

// TranslocationLength marks breakend pairs, whose extent is
// unbounded rather than zero.
const TranslocationLength = -1

// Normalize derives canonical coordinates from a record.
// Well-formed records never fail; a structural record whose
// encoding cannot be resolved does.
func Normalize(rec *Record) (*Coordinates, error) {
	if rec.VariantType() != variantType.Sv {
		return &Coordinates{
			Chrom:    rec.Chrom,
			Pos:      rec.Pos,
			End:      rec.Pos + len(rec.Ref) - 1,
			EndChrom: rec.Chrom,
		}, nil
	}

	coords := &Coordinates{
		Chrom:    rec.Chrom,
		Pos:      rec.Pos,
		EndChrom: rec.Chrom,
		SvType:   rec.SvType,
	}
	if coords.SvType == "" {
		coords.SvType = svTypeFromAlt(rec.Alt)
	}

	if coords.SvType == "BND" || isBreakendAlt(rec.Alt) {
		if coords.SvType == "" {
			coords.SvType = "BND"
		}
		endChrom, end, err := parseBreakend(rec.Alt)
		if err != nil {
			return nil, fmt.Errorf("record %s:%d : %v", rec.Chrom, rec.Pos, err)
		}
		coords.EndChrom = endChrom
		coords.End = end
		coords.Length = TranslocationLength
		return coords, nil
	}

	switch {
	case rec.SvEnd > 0:
		coords.End = rec.SvEnd
	case rec.SvLen != 0:
		coords.End = rec.Pos + abs(rec.SvLen)
	default:
		return nil, fmt.Errorf(
			"record %s:%d : structural variant without END or SVLEN", rec.Chrom, rec.Pos)
	}

	if rec.SvLen != 0 {
		coords.Length = abs(rec.SvLen)
	} else {
		coords.Length = coords.End - coords.Pos + 1
	}

	return coords, nil
}

// VariantId builds the canonical document id used to
// aggregate observations of the same event.
func VariantId(rec *Record, coords *Coordinates) string {
	if coords.SvType == "" {
		alt := ""
		if len(rec.Alt) > 0 {
			alt = rec.Alt[0]
		}
		return strings.Join([]string{
			coords.Chrom, strconv.Itoa(coords.Pos), rec.Ref, alt}, "_")
	}
	return strings.Join([]string{
		coords.Chrom, strconv.Itoa(coords.Pos),
		coords.EndChrom, strconv.Itoa(coords.End), coords.SvType}, "_")
}

func isBreakendAlt(alts []string) bool {
	for _, alt := range alts {
		if strings.ContainsAny(alt, "[]") {
			return true
		}
	}
	return false
}

// parseBreakend extracts the mate position from a breakend
// ALT of the forms t[p[ , t]p] , ]p]t , [p[t .
func parseBreakend(alts []string) (string, int, error) {
	if len(alts) == 0 {
		return "", 0, fmt.Errorf("breakend record without ALT")
	}
	alt := alts[0]

	sep := "["
	if !strings.Contains(alt, sep) {
		sep = "]"
	}
	parts := strings.Split(alt, sep)
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("malformed breakend ALT %q", alt)
	}

	mate := strings.Split(parts[1], ":")
	if len(mate) != 2 {
		return "", 0, fmt.Errorf("malformed breakend mate position in ALT %q", alt)
	}

	pos, err := strconv.Atoi(mate[1])
	if err != nil || pos <= 0 {
		return "", 0, fmt.Errorf("malformed breakend mate position in ALT %q", alt)
	}

	return chromosome.StripPrefix(mate[0], ""), pos, nil
}

func svTypeFromAlt(alts []string) string {
	for _, alt := range alts {
		if strings.HasPrefix(alt, "<") {
			inner := strings.Trim(alt, "<>")
			// <DUP:TANDEM> and friends collapse to the base type
			return strings.ToUpper(strings.SplitN(inner, ":", 2)[0])
		}
	}
	return ""
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
