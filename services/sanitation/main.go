package sanitation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"loqus/api/models"
	"loqus/api/models/ingest"
	"loqus/api/services"
)

type (
	SanitationService struct {
		Initialized      bool
		IngestionService *services.IngestionService
		Config           *models.Config
	}
)

func NewSanitationService(iz *services.IngestionService, cfg *models.Config) *SanitationService {
	ss := &SanitationService{
		Initialized:      false,
		IngestionService: iz,
		Config:           cfg,
	}

	ss.Init()

	return ss
}

func (ss *SanitationService) Init() {
	// initialization if necessary
	if !ss.Initialized {
		// - spin up a go routine that will periodically
		//   run through a series of steps to ensure
		//   the system is "sanitary" ; here that means
		//   - retrying case deletions whose rollback failed,
		//     so no partially loaded case lingers
		//   - pruning finished ingest requests past their ttl
		go func() {
			// setup cron job
			s := gocron.NewScheduler(time.UTC)

			s.Every(ss.Config.Sanitation.IntervalMinutes).Minutes().Do(func() {
				ss.RetryFailedRollbacks()
				ss.PruneIngestRequests()
			})

			// starts the scheduler in blocking mode, which blocks
			// the current execution path
			s.StartBlocking()
		}()

		ss.Initialized = true
		fmt.Println("Sanitation Service Initialized ..")
	}
}

// RetryFailedRollbacks re-runs the compensating case deletion
// for every upload whose rollback failed.
func (ss *SanitationService) RetryFailedRollbacks() {
	failed := ss.IngestionService.FailedRollbacks()
	if len(failed) == 0 {
		return
	}

	fmt.Printf("[%s] - Retrying %d failed case rollbacks..\n", time.Now(), len(failed))
	for caseId, genomeBuild := range failed {
		if err := ss.IngestionService.Store.DeleteCase(caseId, genomeBuild); err != nil {
			fmt.Printf("[%s] - Rollback of case %s failed again : %v..\n", time.Now(), caseId, err)
			continue
		}
		ss.IngestionService.ClearFailedRollback(caseId)
		fmt.Printf("[%s] - Rolled back case %s..\n", time.Now(), caseId)
	}
}

// PruneIngestRequests drops Done and Error requests older than
// the configured ttl from the in-memory request map.
func (ss *SanitationService) PruneIngestRequests() {
	ttl := time.Duration(ss.Config.Sanitation.RequestTtlMinutes) * time.Minute
	cutoff := time.Now().Add(-ttl)

	ss.IngestionService.IngestRequestMapMux.Lock()
	defer ss.IngestionService.IngestRequestMapMux.Unlock()

	for id, request := range ss.IngestionService.IngestRequestMap {
		if request.State != ingest.Done && request.State != ingest.Error {
			continue
		}
		// timestamps are stored with time.Time's default format,
		// which may carry a monotonic clock suffix
		raw := request.UpdatedAt
		if idx := strings.Index(raw, " m="); idx >= 0 {
			raw = raw[:idx]
		}
		updatedAt, err := time.Parse("2006-01-02 15:04:05.999999999 -0700 MST", raw)
		if err != nil || updatedAt.After(cutoff) {
			continue
		}
		delete(ss.IngestionService.IngestRequestMap, id)
	}
}
