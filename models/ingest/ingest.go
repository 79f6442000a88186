package ingest

import (
	"github.com/google/uuid"
)

type State string

const (
	Queued  State = "Queued"
	Running       = "Running"
	Done          = "Done"
	Error         = "Error"
)

// CaseIngestRequest tracks the background variant-streaming
// phase of one case upload. The case document itself is
// persisted before the request is queued.
type CaseIngestRequest struct {
	Id        uuid.UUID `json:"id"`
	CaseId    string    `json:"caseId"`
	State     State     `json:"state"`
	Message   string    `json:"message"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type CaseIngestResponseDTO struct {
	Id      uuid.UUID `json:"id"`
	CaseId  string    `json:"caseId"`
	State   State     `json:"state"`
	Message string    `json:"message"`
}
