package mvc

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"loqus/api/contexts"
	"loqus/api/models"
	c "loqus/api/models/constants"
	"loqus/api/models/constants/sex"
	"loqus/api/models/indexes"
	"loqus/api/models/ingest"
	"loqus/api/repositories/memory"
	"loqus/api/services"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
)

func testConfig() *models.Config {
	cfg := &models.Config{}
	cfg.Load.GenomeBuild = "GRCh37"
	cfg.Load.GqThreshold = 20
	cfg.Load.HardThreshold = 0.95
	cfg.Load.SoftThreshold = 0.95
	cfg.Load.SvWindow = 2000
	cfg.Load.VcfWorkers = 2
	return cfg
}

func setUpEcho(store *memory.Store, method string, path string) (*contexts.LoqusContext, *httptest.ResponseRecorder) {
	cfg := testConfig()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	lc := &contexts.LoqusContext{
		Context:          ctx,
		Config:           cfg,
		Store:            store,
		IngestionService: services.NewIngestionService(store, cfg),
	}
	return lc, rec
}

func getJsonBody(rec *httptest.ResponseRecorder) map[string]interface{} {
	// - extract body bytes from response
	body, _ := io.ReadAll(rec.Body)
	// - unmarshal or decode the JSON to a declared empty interface.
	var bodyJson map[string]interface{}
	json.Unmarshal(body, &bodyJson)

	return bodyJson
}

func TestRoot(t *testing.T) {
	lc, rec := setUpEcho(memory.NewStore(), http.MethodGet, "/")

	assert.NoError(t, Root(lc))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := getJsonBody(rec)
	assert.Equal(t, ApiName, body["name"].(string))
	assert.Equal(t, ApiVersion, body["version"].(string))
}

func TestCasesGet(t *testing.T) {
	store := memory.NewStore()
	store.AddCase(&indexes.Case{CaseId: "caseA", VcfPath: "a.vcf"})
	store.AddCase(&indexes.Case{CaseId: "caseB", VcfSvPath: "b.vcf"})

	lc, rec := setUpEcho(store, http.MethodGet, "/cases")

	assert.NoError(t, CasesGet(lc))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := getJsonBody(rec)
	assert.Equal(t, float64(1), body["nr_cases_snvs"])
	assert.Equal(t, float64(1), body["nr_cases_svs"])
}

func TestCaseGet(t *testing.T) {
	store := memory.NewStore()
	store.AddCase(&indexes.Case{CaseId: "caseA", VcfPath: "a.vcf", NrVariants: 12})

	t.Run("should return the case document", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/cases/caseA")
		lc.SetParamNames("caseId")
		lc.SetParamValues("caseA")

		assert.NoError(t, CaseGet(lc))
		assert.Equal(t, http.StatusOK, rec.Code)

		body := getJsonBody(rec)
		assert.Equal(t, "caseA", body["case_id"])
		assert.Equal(t, float64(12), body["nr_variants"])
	})

	t.Run("should 404 on unknown cases", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/cases/ghost")
		lc.SetParamNames("caseId")
		lc.SetParamValues("ghost")

		assert.NoError(t, CaseGet(lc))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCaseDelete(t *testing.T) {
	store := memory.NewStore()
	store.AddCase(&indexes.Case{CaseId: "caseA", VcfPath: "a.vcf"})
	store.AddVariants([]*indexes.Variant{{
		Id: "1_100_A_T", Chrom: "1", Start: 100, End: 100,
		CaseId: "caseA", Observations: 1, Families: []string{"caseA"},
	}})

	t.Run("should delete the case and its observations", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodDelete, "/cases/caseA")
		lc.SetParamNames("caseId")
		lc.SetParamValues("caseA")

		assert.NoError(t, CaseDelete(lc))
		assert.Equal(t, http.StatusOK, rec.Code)

		caseObj, _ := store.Case("caseA")
		assert.Nil(t, caseObj)
		variant, _ := store.Variant("1_100_A_T")
		assert.Nil(t, variant)
	})

	t.Run("should 404 when the case is already gone", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodDelete, "/cases/caseA")
		lc.SetParamNames("caseId")
		lc.SetParamValues("caseA")

		assert.NoError(t, CaseDelete(lc))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCaseCreateValidation(t *testing.T) {
	t.Run("should 400 without any variant file", func(t *testing.T) {
		lc, rec := setUpEcho(memory.NewStore(), http.MethodPost, "/cases/caseA")
		lc.SetParamNames("caseId")
		lc.SetParamValues("caseA")

		assert.NoError(t, CaseCreate(lc))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should 400 on missing files", func(t *testing.T) {
		lc, rec := setUpEcho(memory.NewStore(), http.MethodPost, "/cases/caseA?snv_file=/does/not/exist.vcf")
		lc.SetParamNames("caseId")
		lc.SetParamValues("caseA")

		assert.NoError(t, CaseCreate(lc))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should 409 when the case already exists", func(t *testing.T) {
		store := memory.NewStore()
		store.AddCase(&indexes.Case{CaseId: "caseA", VcfPath: "a.vcf"})

		lc, rec := setUpEcho(store, http.MethodPost, "/cases/caseA?snv_file=/does/not/matter.vcf")
		lc.SetParamNames("caseId")
		lc.SetParamValues("caseA")

		assert.NoError(t, CaseCreate(lc))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestVariantGet(t *testing.T) {
	store := memory.NewStore()
	store.AddCase(&indexes.Case{CaseId: "caseA", VcfPath: "a.vcf"})
	store.AddVariants([]*indexes.Variant{{
		Id: "1_100_A_T", Chrom: "1", Start: 100, End: 100, Ref: "A", Alt: "T",
		CaseId: "caseA", Homozygote: 1, Observations: 1, Families: []string{"caseA"},
	}})

	t.Run("should return the aggregate with the total case count", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/variants/1_100_A_T")
		lc.SetParamNames("variantId")
		lc.SetParamValues("1_100_A_T")

		assert.NoError(t, VariantGet(lc))
		assert.Equal(t, http.StatusOK, rec.Code)

		body := getJsonBody(rec)
		assert.Equal(t, "1_100_A_T", body["id"])
		assert.Equal(t, float64(1), body["observations"])
		assert.Equal(t, float64(1), body["total"])
	})

	t.Run("should 404 on unseen variants", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/variants/9_9_G_C")
		lc.SetParamNames("variantId")
		lc.SetParamValues("9_9_G_C")

		assert.NoError(t, VariantGet(lc))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStructuralVariantGet(t *testing.T) {
	store := memory.NewStore()
	store.AddCase(&indexes.Case{CaseId: "caseA", VcfSvPath: "a.vcf"})
	store.AddStructuralVariant(&indexes.StructuralVariant{
		Id: "1_1000_1_5000_DEL", Chrom: "1", EndChrom: "1", SvType: "DEL",
		Pos: 1000, End: 5000, CaseId: "caseA",
		Observations: 1, Families: []string{"caseA"},
	}, 2000)

	t.Run("should match within the cluster envelope", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/svs/?chrom=1&sv_type=del&pos=1000&end=5000")

		assert.NoError(t, StructuralVariantGet(lc))
		assert.Equal(t, http.StatusOK, rec.Code)

		body := getJsonBody(rec)
		assert.Equal(t, "DEL", body["sv_type"])
		assert.Equal(t, float64(1), body["observations"])
		assert.Equal(t, float64(1), body["total"])
	})

	t.Run("should 404 outside the envelope", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/svs/?chrom=1&sv_type=DEL&pos=99000&end=99500")

		assert.NoError(t, StructuralVariantGet(lc))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("should 400 on malformed coordinates", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/svs/?chrom=1&sv_type=DEL&pos=abc&end=5000")

		assert.NoError(t, StructuralVariantGet(lc))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should 400 without chrom or sv_type", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/svs/?pos=1000&end=5000")

		assert.NoError(t, StructuralVariantGet(lc))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should 400 on chromosomes no human genome has", func(t *testing.T) {
		lc, rec := setUpEcho(store, http.MethodGet, "/svs/?chrom=99&sv_type=DEL&pos=1000&end=5000")

		assert.NoError(t, StructuralVariantGet(lc))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCaseIngestionRequestsGet(t *testing.T) {
	lc, rec := setUpEcho(memory.NewStore(), http.MethodGet, "/cases/ingestion/requests")
	iz := lc.IngestionService

	older := &ingest.CaseIngestRequest{
		Id: uuid.New(), CaseId: "caseA", State: ingest.Done,
		CreatedAt: "2026-08-30 10:00:00 +0000 UTC", UpdatedAt: "2026-08-30 10:05:00 +0000 UTC",
	}
	newer := &ingest.CaseIngestRequest{
		Id: uuid.New(), CaseId: "caseB", State: ingest.Error, Message: "boom",
		CreatedAt: "2026-08-31 10:00:00 +0000 UTC", UpdatedAt: "2026-08-31 10:05:00 +0000 UTC",
	}
	iz.IngestRequestMapMux.Lock()
	iz.IngestRequestMap[older.Id.String()] = older
	iz.IngestRequestMap[newer.Id.String()] = newer
	iz.IngestRequestMapMux.Unlock()

	assert.NoError(t, CaseIngestionRequestsGet(lc))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)

	// newest first, timestamps shed
	assert.Equal(t, "caseB", body[0]["caseId"])
	assert.Equal(t, "boom", body[0]["message"])
	assert.Equal(t, "caseA", body[1]["caseId"])
	assert.NotContains(t, body[0], "createdAt")
}

func TestParseSexes(t *testing.T) {
	assert.Equal(t, map[string]c.Sex{}, parseSexes(""))
	assert.Equal(t,
		map[string]c.Sex{"sampleA": sex.Male, "sampleB": sex.Female},
		parseSexes("sampleA:M,sampleB:F"))
	// malformed pairs are skipped
	assert.Equal(t, map[string]c.Sex{"sampleA": sex.Male}, parseSexes("sampleA:M,broken"))
}
