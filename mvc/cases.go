package mvc

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"loqus/api/contexts"
	c "loqus/api/models/constants"
	"loqus/api/models/constants/sex"
	"loqus/api/models/dtos"
	serviceErrors "loqus/api/models/dtos/errors"
	"loqus/api/models/errors"
	"loqus/api/models/ingest"

	linq "github.com/ahmetb/go-linq"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

func CasesGet(ec echo.Context) error {
	fmt.Printf("[%s] - CasesGet hit!\n", time.Now())
	store, _ := RetrieveCommonElements(ec)

	nrSnvCases, err := store.NrCases(true, false)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}
	nrSvCases, err := store.NrCases(false, true)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}

	return ec.JSON(http.StatusOK, dtos.CasesResponseDto{
		NrCasesSnvs: nrSnvCases,
		NrCasesSvs:  nrSvCases,
	})
}

func CaseGet(ec echo.Context) error {
	fmt.Printf("[%s] - CaseGet hit!\n", time.Now())
	store, _ := RetrieveCommonElements(ec)

	caseId := ec.Param("caseId")
	caseObj, err := store.Case(caseId)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}
	if caseObj == nil {
		return ec.JSON(http.StatusNotFound, serviceErrors.CreateSimpleNotFound(
			fmt.Sprintf("Case %s not found", caseId)))
	}

	return ec.JSON(http.StatusOK, caseObj)
}

func CaseDelete(ec echo.Context) error {
	fmt.Printf("[%s] - CaseDelete hit!\n", time.Now())
	store, cfg := RetrieveCommonElements(ec)
	ingestionService := ec.(*contexts.LoqusContext).IngestionService

	caseId := ec.Param("caseId")
	if ingestionService.CaseAlreadyQueued(caseId) {
		return ec.JSON(http.StatusConflict, serviceErrors.CreateSimpleConflict(
			fmt.Sprintf("Case %s is still being ingested", caseId)))
	}

	caseObj, err := store.Case(caseId)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}
	if caseObj == nil {
		return ec.JSON(http.StatusNotFound, serviceErrors.CreateSimpleNotFound(
			fmt.Sprintf("Case %s not found", caseId)))
	}

	if err = store.DeleteCase(caseId, cfg.Load.GenomeBuild); err != nil {
		return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
	}

	return ec.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Case %s deleted", caseId),
	})
}

func CaseCreate(ec echo.Context) error {
	fmt.Printf("[%s] - CaseCreate hit!\n", time.Now())
	lc := ec.(*contexts.LoqusContext)
	ingestionService := lc.IngestionService

	caseId := ec.Param("caseId")
	snvPath := ec.QueryParam("snv_file")
	svPath := ec.QueryParam("sv_file")
	profilePath := ec.QueryParam("profile_file")

	if ingestionService.CaseAlreadyQueued(caseId) {
		return ec.JSON(http.StatusConflict, serviceErrors.CreateSimpleConflict(
			fmt.Sprintf("Case %s is already being ingested", caseId)))
	}

	caseObj, err := ingestionService.BuildCase(caseId, profilePath, snvPath, svPath, parseSexes(ec.QueryParam("sex")))
	if err != nil {
		switch err.(type) {
		case *errors.ConflictError:
			return ec.JSON(http.StatusConflict, serviceErrors.CreateSimpleConflict(err.Error()))
		case *errors.DuplicationError:
			return ec.JSON(http.StatusConflict, serviceErrors.CreateSimpleConflict(err.Error()))
		case *errors.ValidationError:
			return ec.JSON(http.StatusBadRequest, serviceErrors.CreateSimpleBadRequest(err.Error()))
		default:
			return ec.JSON(http.StatusInternalServerError, serviceErrors.CreateSimpleInternalServerError(err.Error()))
		}
	}

	request := &ingest.CaseIngestRequest{
		Id:        uuid.New(),
		CaseId:    caseId,
		State:     ingest.Queued,
		CreatedAt: time.Now().String(),
		UpdatedAt: time.Now().String(),
	}
	ingestionService.IngestRequestChan <- request
	ingestionService.ScheduleIngestion(request, caseObj)

	return ec.JSON(http.StatusCreated, dtos.CaseCreatedResponseDto{
		Case:            caseObj,
		IngestRequestId: request.Id.String(),
		Message:         "Case persisted, variant ingestion running in the background",
	})
}

func CaseIngestionRequestsGet(ec echo.Context) error {
	fmt.Printf("[%s] - CaseIngestionRequestsGet hit!\n", time.Now())
	ingestionService := ec.(*contexts.LoqusContext).IngestionService

	requests := []*ingest.CaseIngestRequest{}
	ingestionService.IngestRequestMapMux.RLock()
	for _, request := range ingestionService.IngestRequestMap {
		requests = append(requests, request)
	}
	ingestionService.IngestRequestMapMux.RUnlock()

	// newest first, shed the timestamps
	responses := []ingest.CaseIngestResponseDTO{}
	linq.From(requests).OrderByDescendingT(func(r *ingest.CaseIngestRequest) string {
		return r.CreatedAt
	}).SelectT(func(r *ingest.CaseIngestRequest) ingest.CaseIngestResponseDTO {
		return ingest.CaseIngestResponseDTO{
			Id:      r.Id,
			CaseId:  r.CaseId,
			State:   r.State,
			Message: r.Message,
		}
	}).ToSlice(&responses)

	return ec.JSON(http.StatusOK, responses)
}

// parseSexes reads the optional "sex" query parameter, of the
// form "sampleA:M,sampleB:F".
func parseSexes(raw string) map[string]c.Sex {
	sexes := map[string]c.Sex{}
	if raw == "" {
		return sexes
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		sexes[strings.TrimSpace(parts[0])] = sex.CastToSex(strings.TrimSpace(parts[1]))
	}
	return sexes
}
