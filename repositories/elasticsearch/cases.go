package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"loqus/api/models/indexes"
	"loqus/api/utils"

	"github.com/Jeffail/gabs"
)

func (s *Store) Case(caseId string) (*indexes.Case, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"case_id": caseId,
			},
		},
	}

	result, err := s.search(casesIndex, query)
	if err != nil {
		return nil, err
	}

	sources := sourcesFromHits(result)
	if len(sources) == 0 {
		return nil, nil
	}

	var caseObj indexes.Case
	if err := decodeSource(sources[0], &caseObj); err != nil {
		return nil, err
	}
	return &caseObj, nil
}

func (s *Store) Cases() ([]*indexes.Case, error) {
	query := map[string]interface{}{
		"size": 10000,
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
		"sort": []map[string]interface{}{
			{"case_id": map[string]interface{}{"order": "asc"}},
		},
	}

	result, err := s.search(casesIndex, query)
	if err != nil {
		return nil, err
	}

	var cases []*indexes.Case
	for _, source := range sourcesFromHits(result) {
		var caseObj indexes.Case
		if err := decodeSource(source, &caseObj); err != nil {
			continue
		}
		cases = append(cases, &caseObj)
	}
	return cases, nil
}

func (s *Store) AddCase(caseObj *indexes.Case) error {
	caseData, marshallErr := json.Marshal(caseObj)
	if marshallErr != nil {
		log.Printf("Cannot encode case %s: %s\n", caseObj.CaseId, marshallErr)
		return marshallErr
	}

	res, err := s.Client.Index(casesIndex,
		bytes.NewReader(caseData),
		s.Client.Index.WithDocumentID(caseObj.CaseId),
		s.Client.Index.WithRefresh("true"),
	)
	if err != nil {
		fmt.Printf("Error indexing case %s : %s\n", caseObj.CaseId, err)
		return err
	}
	defer res.Body.Close()

	_, err = checkedBody(res.String(), "index case")
	return err
}

func (s *Store) NrCases(snvCases bool, svCases bool) (int, error) {
	shouldMap := []map[string]interface{}{}
	if snvCases {
		shouldMap = append(shouldMap, map[string]interface{}{
			"exists": map[string]interface{}{"field": "vcf_path"},
		})
	}
	if svCases {
		shouldMap = append(shouldMap, map[string]interface{}{
			"exists": map[string]interface{}{"field": "vcf_sv_path"},
		})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               shouldMap,
				"minimum_should_match": 1,
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		log.Fatalf("Error encoding query: %s\n", err)
	}

	fmt.Printf("Query Start: %s\n", time.Now())
	res, countErr := s.Client.Count(
		s.Client.Count.WithContext(context.Background()),
		s.Client.Count.WithIndex(casesIndex),
		s.Client.Count.WithBody(&buf),
	)
	if countErr != nil {
		fmt.Printf("Error getting response: %s\n", countErr)
		return 0, countErr
	}
	defer res.Body.Close()

	_, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(res.String())
	jsonParsed, err := gabs.ParseJSON([]byte(jsonBodyString))
	if err != nil {
		fmt.Printf("Parsing error: %s\n", err)
		return 0, err
	}

	count, ok := jsonParsed.Path("count").Data().(float64)
	if !ok {
		return 0, fmt.Errorf("failed to count cases : unexpected response shape")
	}
	fmt.Printf("Query End: %s\n", time.Now())

	return int(count), nil
}

func (s *Store) ProfileMarkers() ([]*indexes.ProfileMarker, error) {
	query := map[string]interface{}{
		"size": 10000,
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
		// panel order must be stable : profiles are compared positionally
		"sort": []map[string]interface{}{
			{"chrom": map[string]interface{}{"order": "asc"}},
			{"pos": map[string]interface{}{"order": "asc"}},
		},
	}

	result, err := s.search(markersIndex, query)
	if err != nil {
		return nil, err
	}

	var markers []*indexes.ProfileMarker
	for _, source := range sourcesFromHits(result) {
		var marker indexes.ProfileMarker
		if err := decodeSource(source, &marker); err != nil {
			continue
		}
		markers = append(markers, &marker)
	}
	return markers, nil
}

func (s *Store) DeleteCase(caseId string, genomeBuild string) error {
	if err := s.removeCaseObservations(caseId); err != nil {
		return err
	}

	res, err := s.Client.Delete(casesIndex, caseId,
		s.Client.Delete.WithRefresh("true"),
	)
	if err != nil {
		fmt.Printf("Error deleting case %s : %s\n", caseId, err)
		return err
	}
	defer res.Body.Close()

	// a 404 here means the observations were cleaned but the
	// case doc was already gone; that is not a failure
	if res.StatusCode != 200 && res.StatusCode != 404 {
		return fmt.Errorf("failed to delete case %s : status %d", caseId, res.StatusCode)
	}
	return nil
}
