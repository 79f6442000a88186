package dtos

import (
	"loqus/api/models/indexes"
	"time"
)

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}
type GeneralError struct {
	Message string `json:"message"`
}

type CasesResponseDto struct {
	NrCasesSnvs int `json:"nr_cases_snvs"`
	NrCasesSvs  int `json:"nr_cases_svs"`
}

// CaseCreatedResponseDto is returned by the upload endpoint
// once the case document exists; variant ingestion continues
// in the background under IngestRequestId.
type CaseCreatedResponseDto struct {
	Case            *indexes.Case `json:"case"`
	IngestRequestId string        `json:"ingest_request_id"`
	Message         string        `json:"message"`
}

type VariantResponseDto struct {
	Id           string   `json:"id"`
	Chrom        string   `json:"chrom"`
	Start        int      `json:"start"`
	End          int      `json:"end"`
	Ref          string   `json:"ref"`
	Alt          string   `json:"alt"`
	Homozygote   int      `json:"homozygote"`
	Hemizygote   int      `json:"hemizygote"`
	Observations int      `json:"observations"`
	Families     []string `json:"families"`
	Total        int      `json:"total"`
}

type StructuralVariantResponseDto struct {
	Id           string   `json:"id"`
	Chrom        string   `json:"chrom"`
	EndChrom     string   `json:"end_chrom"`
	SvType       string   `json:"sv_type"`
	Length       int      `json:"length"`
	PosLeft      int      `json:"pos_left"`
	PosRight     int      `json:"pos_right"`
	EndLeft      int      `json:"end_left"`
	EndRight     int      `json:"end_right"`
	Observations int      `json:"observations"`
	Families     []string `json:"families"`
	Total        int      `json:"total"`
}
