package sanitation

import (
	"fmt"
	"testing"
	"time"

	"loqus/api/models"
	"loqus/api/models/indexes"
	"loqus/api/models/ingest"
	"loqus/api/repositories/memory"
	"loqus/api/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// flakyStore fails compensating deletions on demand.
type flakyStore struct {
	*memory.Store
	failDeletes bool
}

func (f *flakyStore) DeleteCase(caseId string, genomeBuild string) error {
	if f.failDeletes {
		return fmt.Errorf("store unreachable")
	}
	return f.Store.DeleteCase(caseId, genomeBuild)
}

func testConfig() *models.Config {
	cfg := &models.Config{}
	cfg.Load.GenomeBuild = "GRCh37"
	cfg.Load.VcfWorkers = 2
	cfg.Sanitation.IntervalMinutes = 15
	cfg.Sanitation.RequestTtlMinutes = 60
	return cfg
}

// the scheduler is deliberately not started; the sweep steps are
// exercised directly
func testService(store *flakyStore, cfg *models.Config) *SanitationService {
	return &SanitationService{
		IngestionService: services.NewIngestionService(store, cfg),
		Config:           cfg,
	}
}

func parkFailedRollback(iz *services.IngestionService, caseId string, genomeBuild string) {
	iz.FailedRollbackMapMux.Lock()
	defer iz.FailedRollbackMapMux.Unlock()
	iz.FailedRollbackMap[caseId] = genomeBuild
}

func TestRetryFailedRollbacks(t *testing.T) {
	t.Run("should delete parked cases and clear them", func(t *testing.T) {
		store := &flakyStore{Store: memory.NewStore()}
		ss := testService(store, testConfig())

		assert.NoError(t, store.AddCase(&indexes.Case{CaseId: "case1", VcfPath: "snv.vcf"}))
		parkFailedRollback(ss.IngestionService, "case1", "GRCh37")

		ss.RetryFailedRollbacks()

		assert.Empty(t, ss.IngestionService.FailedRollbacks())
		deleted, err := store.Case("case1")
		assert.NoError(t, err)
		assert.Nil(t, deleted)
	})

	t.Run("should keep cases whose deletion failed again", func(t *testing.T) {
		store := &flakyStore{Store: memory.NewStore(), failDeletes: true}
		ss := testService(store, testConfig())

		assert.NoError(t, store.AddCase(&indexes.Case{CaseId: "case1", VcfPath: "snv.vcf"}))
		parkFailedRollback(ss.IngestionService, "case1", "GRCh37")

		ss.RetryFailedRollbacks()

		assert.Equal(t, map[string]string{"case1": "GRCh37"}, ss.IngestionService.FailedRollbacks())
	})
}

func TestPruneIngestRequests(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore()}
	ss := testService(store, testConfig())
	iz := ss.IngestionService

	seed := func(state ingest.State, age time.Duration) string {
		request := &ingest.CaseIngestRequest{
			Id:        uuid.New(),
			CaseId:    "case1",
			State:     state,
			UpdatedAt: time.Now().Add(-age).String(),
		}
		iz.IngestRequestMapMux.Lock()
		defer iz.IngestRequestMapMux.Unlock()
		iz.IngestRequestMap[request.Id.String()] = request
		return request.Id.String()
	}

	staleDone := seed(ingest.Done, 2*time.Hour)
	staleError := seed(ingest.Error, 2*time.Hour)
	freshDone := seed(ingest.Done, time.Minute)
	staleRunning := seed(ingest.Running, 2*time.Hour)

	ss.PruneIngestRequests()

	iz.IngestRequestMapMux.RLock()
	defer iz.IngestRequestMapMux.RUnlock()

	assert.NotContains(t, iz.IngestRequestMap, staleDone)
	assert.NotContains(t, iz.IngestRequestMap, staleError)
	assert.Contains(t, iz.IngestRequestMap, freshDone)
	assert.Contains(t, iz.IngestRequestMap, staleRunning)
}
