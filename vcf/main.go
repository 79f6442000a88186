package vcf

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brentp/vcfgo"

	c "loqus/api/models/constants"
	"loqus/api/models/constants/chromosome"
	"loqus/api/models/constants/genotype"
	variantType "loqus/api/models/constants/variant-type"
)

/*
	Thin reader collaborator around brentp/vcfgo. Everything
	downstream works on Records : chromosome names are prefix
	stripped, genotypes are reduced to raw call codes, and the
	structural-variant INFO fields are pulled out up front.
*/

type Record struct {
	Chrom string
	Pos   int // 1-based
	Id    string
	Ref   string
	Alt   []string

	// indexed by sample column order
	Calls []c.GenotypeCall
	Quals []int

	SvType string
	SvLen  int
	SvEnd  int
}

type Reader struct {
	Path string

	fh         *os.File
	gz         *gzip.Reader
	rdr        *vcfgo.Reader
	samples    []string
	chrmPrefix string
}

// Open opens a plain or bgzipped VCF file and parses its header.
// chrmPrefix is the configured chromosome prefix to strip from
// record chromosome names; empty means the conventional "chr".
func Open(path string, chrmPrefix string) (*Reader, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vcf %s : %v", path, err)
	}

	// sniff for the gzip magic number (0x1f, 0x8b)
	magic := make([]byte, 2)
	if _, err = io.ReadFull(fh, magic); err != nil {
		fh.Close()
		return nil, fmt.Errorf("failed to read vcf %s : %v", path, err)
	}
	if _, err = fh.Seek(0, io.SeekStart); err != nil {
		fh.Close()
		return nil, err
	}

	var src io.Reader = fh
	var gz *gzip.Reader
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err = gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("failed to decompress vcf %s : %v", path, err)
		}
		src = gz
	}

	rdr, err := vcfgo.NewReader(src, false)
	if err != nil {
		if gz != nil {
			gz.Close()
		}
		fh.Close()
		return nil, fmt.Errorf("failed to parse vcf header of %s : %v", path, err)
	}

	return &Reader{
		Path:       path,
		fh:         fh,
		gz:         gz,
		rdr:        rdr,
		samples:    rdr.Header.SampleNames,
		chrmPrefix: chrmPrefix,
	}, nil
}

func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	if r.fh != nil {
		return r.fh.Close()
	}
	return nil
}

// Samples returns the sample names in header column order;
// that order defines every individual's ind_index.
func (r *Reader) Samples() []string {
	return r.samples
}

// HasFormat reports whether the header declares the given
// per-sample FORMAT field (e.g. "GQ").
func (r *Reader) HasFormat(id string) bool {
	_, ok := r.rdr.Header.SampleFormats[id]
	return ok
}

// Next returns the next record, or (nil, nil) at end of file.
// A record the underlying reader cannot parse is fatal.
func (r *Reader) Next() (*Record, error) {
	variant := r.rdr.Read()
	if variant == nil {
		if err := r.rdr.Error(); err != nil {
			return nil, fmt.Errorf("malformed vcf %s : %v", r.Path, err)
		}
		return nil, nil
	}
	// vcfgo accumulates soft errors per record; any of them
	// makes the upload untrustworthy, so surface the first
	if err := r.rdr.Error(); err != nil {
		return nil, fmt.Errorf("malformed vcf %s : %v", r.Path, err)
	}

	rec := &Record{
		Chrom: chromosome.StripPrefix(variant.Chromosome, r.chrmPrefix),
		Pos:   int(variant.Pos),
		Id:    variant.Id(),
		Ref:   variant.Ref(),
		Alt:   variant.Alt(),
		Calls: make([]c.GenotypeCall, len(variant.Samples)),
		Quals: make([]int, len(variant.Samples)),
	}

	for i, sample := range variant.Samples {
		if sample == nil {
			rec.Calls[i] = genotype.CallUnknown
			continue
		}
		rec.Calls[i] = genotype.CallFromAlleles(sample.GT)
		rec.Quals[i] = sample.GQ
	}

	if svType, err := variant.Info().Get("SVTYPE"); err == nil {
		rec.SvType = strings.ToUpper(fmt.Sprintf("%v", svType))
	}
	if svLen, err := variant.Info().Get("SVLEN"); err == nil {
		rec.SvLen = toInt(svLen)
	}
	if svEnd, err := variant.Info().Get("END"); err == nil {
		rec.SvEnd = toInt(svEnd)
	}

	return rec, nil
}

// ReadAll drains the reader. Only meant for the (small)
// profile VCF, which gets queried positionally afterwards.
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return records, nil
		}
		records = append(records, rec)
	}
}

// VariantType classifies a record as small ("snv") or
// structural ("sv"). Symbolic alts (<DEL>, <DUP:TANDEM>, ..)
// and breakend alts count as structural.
func (r *Record) VariantType() c.VariantType {
	if r.SvType != "" {
		return variantType.Sv
	}
	for _, alt := range r.Alt {
		if strings.HasPrefix(alt, "<") ||
			strings.ContainsAny(alt, "[]") {
			return variantType.Sv
		}
	}
	if len(r.Alt) == 0 || r.Ref == "" {
		return variantType.Unknown
	}
	return variantType.Snv
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case string:
		var n int
		fmt.Sscanf(v, "%d", &n)
		return n
	case []interface{}:
		if len(v) > 0 {
			return toInt(v[0])
		}
	}
	return 0
}
