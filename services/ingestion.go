package services

import (
	"fmt"
	"sync"
	"time"

	"loqus/api/models"
	c "loqus/api/models/constants"
	assemblyId "loqus/api/models/constants/assembly-id"
	"loqus/api/models/constants/chromosome"
	"loqus/api/models/constants/genotype"
	"loqus/api/models/constants/par"
	"loqus/api/models/constants/sex"
	variantType "loqus/api/models/constants/variant-type"
	"loqus/api/models/errors"
	"loqus/api/models/indexes"
	"loqus/api/models/ingest"
	"loqus/api/repositories"
	"loqus/api/utils"
	"loqus/api/vcf"

	"loqus/api/services/profile"
)

const variantBatchSize = 1000

type (
	IngestionService struct {
		Initialized                  bool
		IngestRequestChan            chan *ingest.CaseIngestRequest
		IngestRequestMap             map[string]*ingest.CaseIngestRequest
		IngestRequestMapMux          sync.RWMutex
		ConcurrentCaseIngestionQueue chan bool

		// rollbacks that themselves failed, keyed by case id,
		// waiting for the sanitation service to retry them
		FailedRollbackMap    map[string]string
		FailedRollbackMapMux sync.Mutex

		Store  repositories.Store
		Config *models.Config
	}
)

func NewIngestionService(store repositories.Store, cfg *models.Config) *IngestionService {

	iz := &IngestionService{
		Initialized:                  false,
		IngestRequestChan:            make(chan *ingest.CaseIngestRequest),
		IngestRequestMap:             map[string]*ingest.CaseIngestRequest{},
		IngestRequestMapMux:          sync.RWMutex{},
		ConcurrentCaseIngestionQueue: make(chan bool, cfg.Load.VcfWorkers),
		FailedRollbackMap:            map[string]string{},
		Store:                        store,
		Config:                       cfg,
	}

	iz.Init()

	return iz
}

func (i *IngestionService) Init() {
	// safeguard to prevent multiple initilizations
	if !i.Initialized {
		// spin up a go routine acting as a listener for
		// case ingest request state updates
		go func() {
			for caseIngestionRequest := range i.IngestRequestChan {
				if caseIngestionRequest.State == ingest.Queued {
					fmt.Printf("Queueing a new ingestion request for case %s\n", caseIngestionRequest.CaseId)
				}

				// publish a private copy; map entries are never
				// written again, so readers can serialize them
				// without racing against state transitions
				request := *caseIngestionRequest
				request.UpdatedAt = time.Now().String()
				i.IngestRequestMapMux.Lock()
				i.IngestRequestMap[request.Id.String()] = &request
				i.IngestRequestMapMux.Unlock()
			}
		}()

		i.Initialized = true
	}
}

// CaseAlreadyQueued reports whether an upload for this case is
// still queued or running.
func (i *IngestionService) CaseAlreadyQueued(caseId string) bool {
	i.IngestRequestMapMux.RLock()
	defer i.IngestRequestMapMux.RUnlock()

	for _, request := range i.IngestRequestMap {
		if request.CaseId == caseId &&
			(request.State == ingest.Queued || request.State == ingest.Running) {
			return true
		}
	}
	return false
}

// BuildCase runs the synchronous half of an upload : validate
// everything, build the profiled individuals, persist the case
// document, and read it back. No variant has been written yet
// when it returns; a non-nil error means nothing was written
// at all.
func (i *IngestionService) BuildCase(caseId string, profilePath string, vcfPath string, vcfSvPath string, sexes map[string]c.Sex) (*indexes.Case, error) {
	if !assemblyId.IsKnownAssemblyId(i.Config.Load.GenomeBuild) {
		return nil, &errors.ValidationError{
			Message: fmt.Sprintf("unknown genome build %s", i.Config.Load.GenomeBuild)}
	}

	existing, err := i.Store.Case(caseId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &errors.ConflictError{CaseId: caseId}
	}

	if vcfPath == "" && vcfSvPath == "" {
		return nil, &errors.ValidationError{Message: "provide at least one of snv_file and sv_file"}
	}
	for _, path := range []string{profilePath, vcfPath, vcfSvPath} {
		if path != "" && !utils.FileExists(path) {
			return nil, &errors.ValidationError{Message: fmt.Sprintf("file %s does not exist", path)}
		}
	}

	profiles := map[string][]string{}
	if profilePath != "" {
		profileReader, openErr := vcf.Open(profilePath, i.Config.Load.ChrPrefix)
		if openErr != nil {
			return nil, &errors.ValidationError{Message: openErr.Error()}
		}
		profiles, err = profile.Build(i.Store, profileReader)
		profileReader.Close()
		if err != nil {
			return nil, err
		}
	}

	caseObj := &indexes.Case{
		CaseId:      caseId,
		ProfilePath: profilePath,
		VcfPath:     vcfPath,
		VcfSvPath:   vcfSvPath,
		Inds:        map[string]int{},
		SvInds:      map[string]int{},
	}

	// one Individual per distinct sample id; the snv and sv
	// lists may point at the same entry
	individualsById := map[string]*indexes.Individual{}
	newIndividual := func(sampleId string, index int) *indexes.Individual {
		if ind, ok := individualsById[sampleId]; ok {
			return ind
		}
		ind := &indexes.Individual{
			IndId:    sampleId,
			CaseId:   caseId,
			Sex:      sexes[sampleId],
			IndIndex: index,
			Profile:  profiles[sampleId],
		}
		individualsById[sampleId] = ind
		return ind
	}

	if vcfPath != "" {
		samples, nrVariants, validateErr := i.validateVcf(vcfPath, variantType.Snv)
		if validateErr != nil {
			return nil, validateErr
		}
		caseObj.NrVariants = nrVariants
		for index, sampleId := range samples {
			caseObj.Individuals = append(caseObj.Individuals, newIndividual(sampleId, index))
			caseObj.Inds[sampleId] = index
		}
	}

	if vcfSvPath != "" {
		samples, nrVariants, validateErr := i.validateVcf(vcfSvPath, variantType.Sv)
		if validateErr != nil {
			return nil, validateErr
		}
		caseObj.NrSvVariants = nrVariants
		for index, sampleId := range samples {
			caseObj.SvIndividuals = append(caseObj.SvIndividuals, newIndividual(sampleId, index))
			caseObj.SvInds[sampleId] = index
		}
	}

	allIndividuals := make([]*indexes.Individual, 0, len(individualsById))
	for _, ind := range individualsById {
		allIndividuals = append(allIndividuals, ind)
	}
	if err = profile.CheckDuplicates(i.Store, allIndividuals,
		i.Config.Load.HardThreshold, i.Config.Load.SoftThreshold); err != nil {
		return nil, err
	}

	if err = i.Store.AddCase(caseObj); err != nil {
		return nil, err
	}

	// read the case back so the caller gets what the store
	// actually holds
	return i.Store.Case(caseId)
}

// validateVcf streams a whole file once before anything is
// written : it must declare GQ, parse cleanly, and contain only
// variants of the expected kind.
func (i *IngestionService) validateVcf(path string, expectedType c.VariantType) ([]string, int, error) {
	reader, err := vcf.Open(path, i.Config.Load.ChrPrefix)
	if err != nil {
		return nil, 0, &errors.ValidationError{Message: err.Error()}
	}
	defer reader.Close()

	if !reader.HasFormat("GQ") {
		return nil, 0, &errors.ValidationError{
			Message: fmt.Sprintf("file %s does not declare the GQ format field", path)}
	}

	nrVariants := 0
	for {
		rec, readErr := reader.Next()
		if readErr != nil {
			return nil, 0, &errors.ValidationError{Message: readErr.Error()}
		}
		if rec == nil {
			break
		}
		if rec.VariantType() != expectedType {
			return nil, 0, &errors.ValidationError{
				Message: fmt.Sprintf(
					"file %s holds a %s variant at %s:%d, expected only %s variants",
					path, rec.VariantType(), rec.Chrom, rec.Pos, expectedType)}
		}
		// every record must be resolvable to canonical
		// coordinates before anything is written
		if _, normErr := vcf.Normalize(rec); normErr != nil {
			return nil, 0, &errors.ValidationError{
				Message: fmt.Sprintf("file %s : %v", path, normErr)}
		}
		nrVariants++
	}

	return reader.Samples(), nrVariants, nil
}

// ScheduleIngestion runs the background half of an upload for
// an already persisted case, bounded by the vcf worker pool.
// State transitions are fresh request values sent through the
// listener; the request handed in is never written.
func (i *IngestionService) ScheduleIngestion(request *ingest.CaseIngestRequest, caseObj *indexes.Case) {
	update := func(state ingest.State, message string) {
		i.IngestRequestChan <- &ingest.CaseIngestRequest{
			Id:        request.Id,
			CaseId:    request.CaseId,
			State:     state,
			Message:   message,
			CreatedAt: request.CreatedAt,
		}
	}

	go func() {
		i.ConcurrentCaseIngestionQueue <- true
		defer func() { <-i.ConcurrentCaseIngestionQueue }()

		update(ingest.Running, "")

		fmt.Printf("[%s] - Begin ingesting variants for case %s..\n", time.Now(), caseObj.CaseId)
		if err := i.IngestVariants(caseObj); err != nil {
			fmt.Printf("[%s] - Ingestion of case %s failed : %v\n", time.Now(), caseObj.CaseId, err)
			update(ingest.Error, err.Error())
			return
		}
		fmt.Printf("[%s] - Done ingesting variants for case %s\n", time.Now(), caseObj.CaseId)

		update(ingest.Done, "")
	}()
}

// IngestVariants streams the case's vcf files into the store.
// Any failure rolls the whole case back, so observation counts
// never reflect a partial upload.
func (i *IngestionService) IngestVariants(caseObj *indexes.Case) error {
	if caseObj.VcfPath != "" {
		if err := i.ingestSmallVariants(caseObj); err != nil {
			return i.rollback(caseObj.CaseId, err)
		}
	}
	if caseObj.VcfSvPath != "" {
		if err := i.ingestStructuralVariants(caseObj); err != nil {
			return i.rollback(caseObj.CaseId, err)
		}
	}
	return nil
}

func (i *IngestionService) ingestSmallVariants(caseObj *indexes.Case) error {
	reader, err := vcf.Open(caseObj.VcfPath, i.Config.Load.ChrPrefix)
	if err != nil {
		return err
	}
	defer reader.Close()

	build := assemblyId.CastToAssemblyId(i.Config.Load.GenomeBuild)
	gqThreshold := i.Config.Load.GqThreshold

	batch := make([]*indexes.Variant, 0, variantBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := i.Store.AddVariants(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		rec, readErr := reader.Next()
		if readErr != nil {
			return readErr
		}
		if rec == nil {
			break
		}

		coords, normErr := vcf.Normalize(rec)
		if normErr != nil {
			return normErr
		}
		variantId := vcf.VariantId(rec, coords)

		for sampleIndex, individual := range caseObj.Individuals {
			class, counted := genotype.Classify(rec.Calls[sampleIndex], rec.Quals[sampleIndex], gqThreshold)
			if !counted || class == genotype.HomRef || class == genotype.Missing {
				continue
			}

			homozygote := 0
			hemizygote := 0
			if class == genotype.HomAlt {
				homozygote = 1
			}
			if chromosome.IsSexChromosome(rec.Chrom) &&
				individual.Sex == sex.Male &&
				!par.InPseudoAutosomalRegion(build, rec.Chrom, rec.Pos) {
				hemizygote = 1
				homozygote = 0
			}

			alt := ""
			if len(rec.Alt) > 0 {
				alt = rec.Alt[0]
			}
			batch = append(batch, &indexes.Variant{
				Id:           variantId,
				Chrom:        coords.Chrom,
				Start:        coords.Pos,
				End:          coords.End,
				Ref:          rec.Ref,
				Alt:          alt,
				CaseId:       caseObj.CaseId,
				Homozygote:   homozygote,
				Hemizygote:   hemizygote,
				Observations: 1,
				Families:     []string{caseObj.CaseId},
				VcfId:        rec.Id,
			})
		}

		if len(batch) >= variantBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

func (i *IngestionService) ingestStructuralVariants(caseObj *indexes.Case) error {
	reader, err := vcf.Open(caseObj.VcfSvPath, i.Config.Load.ChrPrefix)
	if err != nil {
		return err
	}
	defer reader.Close()

	maxWindow := i.Config.Load.SvWindow

	for {
		rec, readErr := reader.Next()
		if readErr != nil {
			return readErr
		}
		if rec == nil {
			return nil
		}

		// exactly one observation per record; structural events
		// are counted per case, never per carrier genotype
		coords, normErr := vcf.Normalize(rec)
		if normErr != nil {
			return normErr
		}

		sv := &indexes.StructuralVariant{
			Id:           vcf.VariantId(rec, coords),
			Chrom:        coords.Chrom,
			EndChrom:     coords.EndChrom,
			SvType:       coords.SvType,
			Length:       coords.Length,
			Pos:          coords.Pos,
			End:          coords.End,
			PosLeft:      coords.Pos,
			PosRight:     coords.Pos,
			EndLeft:      coords.End,
			EndRight:     coords.End,
			CaseId:       caseObj.CaseId,
			Observations: 1,
			Families:     []string{caseObj.CaseId},
			VcfId:        rec.Id,
		}
		if err := i.Store.AddStructuralVariant(sv, maxWindow); err != nil {
			return err
		}
	}
}

// rollback deletes the case and everything it contributed. A
// failed rollback is parked for the sanitation service, which
// keeps retrying the deletion.
func (i *IngestionService) rollback(caseId string, cause error) error {
	rollbackErr := i.Store.DeleteCase(caseId, i.Config.Load.GenomeBuild)
	if rollbackErr != nil {
		i.FailedRollbackMapMux.Lock()
		i.FailedRollbackMap[caseId] = i.Config.Load.GenomeBuild
		i.FailedRollbackMapMux.Unlock()
	}
	return &errors.IngestionError{CaseId: caseId, Cause: cause, RollbackErr: rollbackErr}
}

// FailedRollbacks snapshots the cases whose compensating
// deletion still has to be retried.
func (i *IngestionService) FailedRollbacks() map[string]string {
	i.FailedRollbackMapMux.Lock()
	defer i.FailedRollbackMapMux.Unlock()

	snapshot := make(map[string]string, len(i.FailedRollbackMap))
	for caseId, build := range i.FailedRollbackMap {
		snapshot[caseId] = build
	}
	return snapshot
}

func (i *IngestionService) ClearFailedRollback(caseId string) {
	i.FailedRollbackMapMux.Lock()
	defer i.FailedRollbackMapMux.Unlock()
	delete(i.FailedRollbackMap, caseId)
}
