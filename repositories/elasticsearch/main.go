package elasticsearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"loqus/api/models"
	"loqus/api/models/indexes"
	"loqus/api/utils"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/mitchellh/mapstructure"
)

const (
	casesIndex    string = "cases"
	variantsIndex string = "variants"
	svsIndex      string = "svs"
	markersIndex  string = "profile-markers"
)

// Store is the elasticsearch-backed variant-frequency store.
type Store struct {
	Client *es7.Client
	Config *models.Config
}

func NewStore(es *es7.Client, cfg *models.Config) *Store {
	s := &Store{
		Client: es,
		Config: cfg,
	}
	s.ensureIndices()
	return s
}

// ensureIndices creates the document indices up front so the
// aggregation scripts always find mapped fields. Existing
// indices are left alone (400 from a duplicate create).
func (s *Store) ensureIndices() {
	mappings := map[string]map[string]interface{}{
		casesIndex:    indexes.CASES_INDEX_MAPPING,
		variantsIndex: indexes.VARIANTS_INDEX_MAPPING,
		svsIndex:      indexes.SVS_INDEX_MAPPING,
		markersIndex:  indexes.MARKERS_INDEX_MAPPING,
	}
	for index, mapping := range mappings {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(mapping); err != nil {
			log.Fatalf("Error encoding mapping for %s: %s\n", index, err)
		}
		res, err := s.Client.Indices.Create(index,
			s.Client.Indices.Create.WithBody(&buf))
		if err != nil {
			fmt.Printf("Error creating index %s : %s\n", index, err)
			continue
		}
		res.Body.Close()
	}
}

// runs a search and hands back the decoded response body
func (s *Store) search(index string, query map[string]interface{}) (map[string]interface{}, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		log.Fatalf("Error encoding query: %s\n", err)
		return nil, err
	}

	if s.Config.Debug {
		// view the outbound elasticsearch query
		myString := string(buf.Bytes()[:])
		fmt.Println(myString)
	}

	res, searchErr := s.Client.Search(
		s.Client.Search.WithIndex(index),
		s.Client.Search.WithBody(&buf),
		s.Client.Search.WithTrackTotalHits(true),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}
	defer res.Body.Close()

	resultString := res.String()
	if s.Config.Debug {
		fmt.Println(resultString)
	}

	// Declared an empty interface
	result := make(map[string]interface{})

	// Unmarshal or Decode the JSON to the interface.
	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to search %s : got '%s'", index, bracketString)
	}
	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		fmt.Printf("Error unmarshalling response: %s\n", umErr)
		return nil, umErr
	}

	return result, nil
}

// sourcesFromHits pulls each hit's _source out of a decoded
// search response.
func sourcesFromHits(result map[string]interface{}) []map[string]interface{} {
	hitsWrapper, ok := result["hits"].(map[string]interface{})
	if !ok {
		return nil
	}
	docsHits := hitsWrapper["hits"]
	allDocHits := []map[string]interface{}{}
	mapstructure.Decode(docsHits, &allDocHits)

	sources := make([]map[string]interface{}, 0, len(allDocHits))
	for _, hit := range allDocHits {
		if source, ok := hit["_source"].(map[string]interface{}); ok {
			sources = append(sources, source)
		}
	}
	return sources
}

// decodeSource casts a raw _source map into a typed document
func decodeSource(source map[string]interface{}, out interface{}) error {
	byteSlice, _ := json.Marshal(source)
	if err := json.Unmarshal(byteSlice, out); err != nil {
		fmt.Println("failed to unmarshal:", err)
		return err
	}
	return nil
}

// checkedBody decodes a non-search response (update, delete,
// delete-by-query) the same trimmed-string way.
func checkedBody(resultString string, operation string) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") && !strings.Contains(bracketString, "201") {
		return nil, fmt.Errorf("failed to %s : got '%s'", operation, bracketString)
	}
	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		fmt.Printf("Error unmarshalling %s response: %s\n", operation, umErr)
		return nil, umErr
	}
	return result, nil
}
