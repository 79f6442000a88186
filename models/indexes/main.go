package indexes

import (
	c "loqus/api/models/constants"
)

/*
	Documents kept in the variant-frequency store.
	Variant and StructuralVariant double as the insertion
	payload (a single observation event, observations = 1)
	and the aggregated form the store keeps per canonical id.
*/

type Case struct {
	CaseId        string        `json:"case_id" mapstructure:"case_id"`
	ProfilePath   string        `json:"profile_path" mapstructure:"profile_path"`
	VcfPath       string        `json:"vcf_path,omitempty" mapstructure:"vcf_path"`
	VcfSvPath     string        `json:"vcf_sv_path,omitempty" mapstructure:"vcf_sv_path"`
	NrVariants    int           `json:"nr_variants" mapstructure:"nr_variants"`
	NrSvVariants  int           `json:"nr_sv_variants" mapstructure:"nr_sv_variants"`
	Individuals   []*Individual `json:"individuals" mapstructure:"individuals"`
	SvIndividuals []*Individual `json:"sv_individuals" mapstructure:"sv_individuals"`

	// sample id -> position in the Individuals / SvIndividuals
	// lists, so callers never alias two copies of an individual
	Inds   map[string]int `json:"inds,omitempty" mapstructure:"inds"`
	SvInds map[string]int `json:"sv_inds,omitempty" mapstructure:"sv_inds"`
}

type Individual struct {
	IndId          string   `json:"ind_id" mapstructure:"ind_id"`
	CaseId         string   `json:"case_id" mapstructure:"case_id"`
	Mother         string   `json:"mother,omitempty" mapstructure:"mother"`
	Father         string   `json:"father,omitempty" mapstructure:"father"`
	Sex            c.Sex    `json:"sex" mapstructure:"sex"`
	Phenotype      string   `json:"phenotype,omitempty" mapstructure:"phenotype"`
	IndIndex       int      `json:"ind_index" mapstructure:"ind_index"`
	Profile        []string `json:"profile,omitempty" mapstructure:"profile"`
	SimilarSamples []string `json:"similar_samples,omitempty" mapstructure:"similar_samples"`
}

type Variant struct {
	Id           string   `json:"id" mapstructure:"id"`
	Chrom        string   `json:"chrom" mapstructure:"chrom"`
	Start        int      `json:"start" mapstructure:"start"`
	End          int      `json:"end" mapstructure:"end"`
	Ref          string   `json:"ref" mapstructure:"ref"`
	Alt          string   `json:"alt" mapstructure:"alt"`
	CaseId       string   `json:"case_id" mapstructure:"case_id"`
	Homozygote   int      `json:"homozygote" mapstructure:"homozygote"`
	Hemizygote   int      `json:"hemizygote" mapstructure:"hemizygote"`
	Observations int      `json:"observations" mapstructure:"observations"`
	Families     []string `json:"families" mapstructure:"families"`
	VcfId        string   `json:"vcf_id,omitempty" mapstructure:"vcf_id"`
}

type StructuralVariant struct {
	Id           string   `json:"id" mapstructure:"id"`
	Chrom        string   `json:"chrom" mapstructure:"chrom"`
	EndChrom     string   `json:"end_chrom" mapstructure:"end_chrom"`
	SvType       string   `json:"sv_type" mapstructure:"sv_type"`
	Length       int      `json:"length" mapstructure:"length"`
	Pos          int      `json:"pos" mapstructure:"pos"`
	End          int      `json:"end" mapstructure:"end"`
	PosLeft      int      `json:"pos_left" mapstructure:"pos_left"`
	PosRight     int      `json:"pos_right" mapstructure:"pos_right"`
	EndLeft      int      `json:"end_left" mapstructure:"end_left"`
	EndRight     int      `json:"end_right" mapstructure:"end_right"`
	CaseId       string   `json:"case_id" mapstructure:"case_id"`
	Observations int      `json:"observations" mapstructure:"observations"`
	Families     []string `json:"families" mapstructure:"families"`
	VcfId        string   `json:"vcf_id,omitempty" mapstructure:"vcf_id"`
}

// ProfileMarker is one position of the fixed marker panel
// profiles are built from. Enumeration order is stable and
// defines the positional layout of every profile.
type ProfileMarker struct {
	Id    string `json:"id" mapstructure:"id"`
	Chrom string `json:"chrom" mapstructure:"chrom"`
	Pos   int    `json:"pos" mapstructure:"pos"`
	Ref   string `json:"ref" mapstructure:"ref"`
	Alt   string `json:"alt" mapstructure:"alt"`
}

var MAPPING_FIELDS_KEYWORD_IG256 = map[string]interface{}{
	"keyword": map[string]interface{}{
		"type":         "keyword",
		"ignore_above": 256,
	},
}
var MAPPING_KEYWORD = map[string]interface{}{"type": "keyword"}
var MAPPING_TEXT = map[string]interface{}{"type": "text", "fields": MAPPING_FIELDS_KEYWORD_IG256}
var MAPPING_LONG = map[string]interface{}{"type": "long"}

var CASES_INDEX_MAPPING = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"case_id":        MAPPING_KEYWORD,
			"profile_path":   MAPPING_TEXT,
			"vcf_path":       MAPPING_TEXT,
			"vcf_sv_path":    MAPPING_TEXT,
			"nr_variants":    MAPPING_LONG,
			"nr_sv_variants": MAPPING_LONG,
		},
	},
}

var VARIANTS_INDEX_MAPPING = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":           MAPPING_KEYWORD,
			"chrom":        MAPPING_KEYWORD,
			"start":        MAPPING_LONG,
			"end":          MAPPING_LONG,
			"ref":          MAPPING_TEXT,
			"alt":          MAPPING_TEXT,
			"homozygote":   MAPPING_LONG,
			"hemizygote":   MAPPING_LONG,
			"observations": MAPPING_LONG,
			"families":     MAPPING_KEYWORD,
		},
	},
}

var MARKERS_INDEX_MAPPING = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":    MAPPING_KEYWORD,
			"chrom": MAPPING_KEYWORD,
			"pos":   MAPPING_LONG,
			"ref":   MAPPING_TEXT,
			"alt":   MAPPING_TEXT,
		},
	},
}

var SVS_INDEX_MAPPING = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":           MAPPING_KEYWORD,
			"chrom":        MAPPING_KEYWORD,
			"end_chrom":    MAPPING_KEYWORD,
			"sv_type":      MAPPING_KEYWORD,
			"length":       MAPPING_LONG,
			"pos":          MAPPING_LONG,
			"end":          MAPPING_LONG,
			"observations": MAPPING_LONG,
			"families":     MAPPING_KEYWORD,
		},
	},
}
