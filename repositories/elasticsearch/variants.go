package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"loqus/api/models/indexes"

	"github.com/elastic/go-elasticsearch/v7/esutil"
	"github.com/mitchellh/mapstructure"
)

// painless fragment shared by every SNV observation : bump
// the aggregate counters and the per-case tallies the delete
// path relies on
const variantUpsertScript = `
if (ctx._source.case_counts == null) { ctx._source.case_counts = [:]; }
if (!ctx._source.case_counts.containsKey(params.case)) {
  ctx._source.case_counts[params.case] = ['observations':0,'homozygote':0,'hemizygote':0];
}
def t = ctx._source.case_counts[params.case];
t.observations += 1;
t.homozygote += params.hom;
t.hemizygote += params.hem;
ctx._source.observations += 1;
ctx._source.homozygote += params.hom;
ctx._source.hemizygote += params.hem;
if (!ctx._source.families.contains(params.case)) { ctx._source.families.add(params.case); }
`

const variantRemoveCaseScript = `
if (ctx._source.case_counts != null && ctx._source.case_counts.containsKey(params.case)) {
  def t = ctx._source.case_counts.remove(params.case);
  ctx._source.observations -= t.observations;
  ctx._source.homozygote -= t.homozygote;
  ctx._source.hemizygote -= t.hemizygote;
}
if (ctx._source.families.contains(params.case)) {
  ctx._source.families.remove(ctx._source.families.indexOf(params.case));
}
`

const svUpsertScript = `
ctx._source.pos_left = (int)Math.min(ctx._source.pos_left, params.pos);
ctx._source.pos_right = (int)Math.max(ctx._source.pos_right, params.pos);
ctx._source.end_left = (int)Math.min(ctx._source.end_left, params.end);
ctx._source.end_right = (int)Math.max(ctx._source.end_right, params.end);
ctx._source.pos = (int)((ctx._source.pos_left + ctx._source.pos_right) / 2);
ctx._source.end = (int)((ctx._source.end_left + ctx._source.end_right) / 2);
ctx._source.observations += 1;
if (!ctx._source.families.contains(params.case)) { ctx._source.families.add(params.case); }
if (ctx._source.case_counts == null) { ctx._source.case_counts = [:]; }
if (ctx._source.case_counts.containsKey(params.case)) {
  ctx._source.case_counts[params.case] += 1;
} else {
  ctx._source.case_counts[params.case] = 1;
}
`

const svRemoveCaseScript = `
if (ctx._source.case_counts != null && ctx._source.case_counts.containsKey(params.case)) {
  ctx._source.observations -= ctx._source.case_counts.remove(params.case);
}
if (ctx._source.families.contains(params.case)) {
  ctx._source.families.remove(ctx._source.families.indexOf(params.case));
}
`

// AddVariants bulk-upserts one observation event per entry,
// aggregating by the canonical variant id.
func (s *Store) AddVariants(variants []*indexes.Variant) error {
	bi, biErr := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:   variantsIndex,
		Client:  s.Client,
		Refresh: "true",
	})
	if biErr != nil {
		return biErr
	}

	countFailed := uint64(0)

	for _, variant := range variants {
		body, bodyErr := variantUpsertBody(variant)
		if bodyErr != nil {
			log.Printf("Cannot encode variant %s: %s\n", variant.Id, bodyErr)
			return bodyErr
		}

		addErr := bi.Add(
			context.Background(),
			esutil.BulkIndexerItem{
				Action:     "update",
				DocumentID: variant.Id,
				Body:       bytes.NewReader(body),

				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					atomic.AddUint64(&countFailed, 1)
					if err != nil {
						fmt.Printf("ERROR: %s\n", err)
					} else {
						fmt.Printf("ERROR: %s: %s\n", res.Error.Type, res.Error.Reason)
					}
				},
			},
		)
		if addErr != nil {
			bi.Close(context.Background())
			return addErr
		}
	}

	if closeErr := bi.Close(context.Background()); closeErr != nil {
		return closeErr
	}
	if failed := atomic.LoadUint64(&countFailed); failed > 0 {
		return fmt.Errorf("failed to index %d variant observations", failed)
	}
	return nil
}

func variantUpsertBody(variant *indexes.Variant) ([]byte, error) {
	// roundtrip the doc into a map so the per-case tally can
	// ride along without widening the document model
	docBytes, err := json.Marshal(variant)
	if err != nil {
		return nil, err
	}
	upsertDoc := map[string]interface{}{}
	if err := json.Unmarshal(docBytes, &upsertDoc); err != nil {
		return nil, err
	}
	upsertDoc["observations"] = 1
	upsertDoc["families"] = []string{variant.CaseId}
	upsertDoc["case_counts"] = map[string]interface{}{
		variant.CaseId: map[string]int{
			"observations": 1,
			"homozygote":   variant.Homozygote,
			"hemizygote":   variant.Hemizygote,
		},
	}

	return json.Marshal(map[string]interface{}{
		"script": map[string]interface{}{
			"source": variantUpsertScript,
			"lang":   "painless",
			"params": map[string]interface{}{
				"case": variant.CaseId,
				"hom":  variant.Homozygote,
				"hem":  variant.Hemizygote,
			},
		},
		"upsert": upsertDoc,
	})
}

func (s *Store) AddStructuralVariant(sv *indexes.StructuralVariant, maxWindow int) error {
	query := map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{"term": map[string]interface{}{"chrom": sv.Chrom}},
					{"term": map[string]interface{}{"end_chrom": sv.EndChrom}},
					{"term": map[string]interface{}{"sv_type": sv.SvType}},
					{"range": map[string]interface{}{
						"pos": map[string]interface{}{
							"gte": sv.Pos - maxWindow,
							"lte": sv.Pos + maxWindow,
						},
					}},
					{"range": map[string]interface{}{
						"end": map[string]interface{}{
							"gte": sv.End - maxWindow,
							"lte": sv.End + maxWindow,
						},
					}},
				},
			},
		},
	}

	result, err := s.search(svsIndex, query)
	if err != nil {
		return err
	}
	clusterId := firstHitId(result)

	if clusterId == "" {
		// no cluster within the window : this observation seeds one
		doc := *sv
		doc.Observations = 1
		doc.Families = []string{sv.CaseId}
		doc.PosLeft = sv.Pos
		doc.PosRight = sv.Pos
		doc.EndLeft = sv.End
		doc.EndRight = sv.End

		docBytes, marshalErr := json.Marshal(&doc)
		if marshalErr != nil {
			return marshalErr
		}
		docMap := map[string]interface{}{}
		if err := json.Unmarshal(docBytes, &docMap); err != nil {
			return err
		}
		docMap["case_counts"] = map[string]int{sv.CaseId: 1}
		docBytes, marshalErr = json.Marshal(docMap)
		if marshalErr != nil {
			return marshalErr
		}

		res, indexErr := s.Client.Index(svsIndex,
			bytes.NewReader(docBytes),
			s.Client.Index.WithDocumentID(sv.Id),
			s.Client.Index.WithRefresh("true"),
		)
		if indexErr != nil {
			fmt.Printf("Error indexing structural variant %s : %s\n", sv.Id, indexErr)
			return indexErr
		}
		defer res.Body.Close()
		_, err = checkedBody(res.String(), "index structural variant")
		return err
	}

	updateBody, marshalErr := json.Marshal(map[string]interface{}{
		"script": map[string]interface{}{
			"source": svUpsertScript,
			"lang":   "painless",
			"params": map[string]interface{}{
				"case": sv.CaseId,
				"pos":  sv.Pos,
				"end":  sv.End,
			},
		},
	})
	if marshalErr != nil {
		return marshalErr
	}

	res, updateErr := s.Client.Update(svsIndex, clusterId,
		bytes.NewReader(updateBody),
		s.Client.Update.WithRefresh("true"),
	)
	if updateErr != nil {
		fmt.Printf("Error updating structural variant cluster %s : %s\n", clusterId, updateErr)
		return updateErr
	}
	defer res.Body.Close()
	_, err = checkedBody(res.String(), "update structural variant cluster")
	return err
}

func (s *Store) Variant(variantId string) (*indexes.Variant, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"id": variantId,
			},
		},
	}

	result, err := s.search(variantsIndex, query)
	if err != nil {
		return nil, err
	}

	sources := sourcesFromHits(result)
	if len(sources) == 0 {
		return nil, nil
	}

	var variant indexes.Variant
	if err := decodeSource(sources[0], &variant); err != nil {
		return nil, err
	}
	return &variant, nil
}

func (s *Store) StructuralVariant(chrom string, endChrom string, svType string, pos int, end int) (*indexes.StructuralVariant, error) {
	query := map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{"term": map[string]interface{}{"chrom": chrom}},
					{"term": map[string]interface{}{"end_chrom": endChrom}},
					{"term": map[string]interface{}{"sv_type": strings.ToUpper(svType)}},
					{"range": map[string]interface{}{"pos_left": map[string]interface{}{"lte": pos}}},
					{"range": map[string]interface{}{"pos_right": map[string]interface{}{"gte": pos}}},
					{"range": map[string]interface{}{"end_left": map[string]interface{}{"lte": end}}},
					{"range": map[string]interface{}{"end_right": map[string]interface{}{"gte": end}}},
				},
			},
		},
	}

	result, err := s.search(svsIndex, query)
	if err != nil {
		return nil, err
	}

	sources := sourcesFromHits(result)
	if len(sources) == 0 {
		return nil, nil
	}

	var sv indexes.StructuralVariant
	if err := decodeSource(sources[0], &sv); err != nil {
		return nil, err
	}
	return &sv, nil
}

// removeCaseObservations runs the decrement scripts for one
// case across both observation indices, then prunes documents
// that no longer have any observations left.
func (s *Store) removeCaseObservations(caseId string) error {
	scripts := map[string]string{
		variantsIndex: variantRemoveCaseScript,
		svsIndex:      svRemoveCaseScript,
	}

	for index, script := range scripts {
		body := map[string]interface{}{
			"query": map[string]interface{}{
				"term": map[string]interface{}{
					"families": caseId,
				},
			},
			"script": map[string]interface{}{
				"source": script,
				"lang":   "painless",
				"params": map[string]interface{}{"case": caseId},
			},
		}

		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("Error encoding query: %s\n", err)
		}

		res, ubqErr := s.Client.UpdateByQuery(
			[]string{index},
			s.Client.UpdateByQuery.WithBody(&buf),
			s.Client.UpdateByQuery.WithRefresh(true),
		)
		if ubqErr != nil {
			fmt.Printf("Error getting response: %s\n", ubqErr)
			return ubqErr
		}
		res.Body.Close()
	}

	// prune empty aggregates
	pruneQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"observations": map[string]interface{}{"lte": 0},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(pruneQuery); err != nil {
		log.Fatalf("Error encoding query: %s\n", err)
	}

	deleteRes, deleteErr := s.Client.DeleteByQuery(
		[]string{variantsIndex, svsIndex},
		bytes.NewReader(buf.Bytes()),
		s.Client.DeleteByQuery.WithRefresh(true),
	)
	if deleteErr != nil {
		fmt.Printf("Error getting response: %s\n", deleteErr)
		return deleteErr
	}
	deleteRes.Body.Close()

	return nil
}

// firstHitId digs the _id of the first hit out of a decoded
// search response.
func firstHitId(result map[string]interface{}) string {
	hitsWrapper, ok := result["hits"].(map[string]interface{})
	if !ok {
		return ""
	}
	docsHits := hitsWrapper["hits"]
	allDocHits := []map[string]interface{}{}
	mapstructure.Decode(docsHits, &allDocHits)
	if len(allDocHits) == 0 {
		return ""
	}
	if id, ok := allDocHits[0]["_id"].(string); ok {
		return id
	}
	return ""
}
