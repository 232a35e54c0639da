package complexity

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaJSON validates the JSON complexity file: an array of samples with
// required entity and score, optional RFC 3339 timestamp.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["entity", "score"],
    "properties": {
      "entity": {"type": "string", "minLength": 1},
      "score": {"type": "number", "minimum": 0},
      "timestamp": {"type": "string", "format": "date-time"}
    },
    "additionalProperties": false
  }
}`

// LoadFile reads a complexity mapping, dispatching on the file extension:
// .json is schema-validated JSON, anything else is CSV.
func LoadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return LoadJSON(data)
	}
	return LoadCSV(bytes.NewReader(data))
}

// LoadCSV reads rows of "entity,score" or "entity,timestamp,score" (RFC
// 3339 timestamps). A leading header row starting with "entity" is skipped.
func LoadCSV(r io.Reader) (*Map, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var samples []Sample
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("complexity csv: %w", err)
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "entity") {
			continue
		}

		var s Sample
		switch len(record) {
		case 2:
			s.Entity = strings.TrimSpace(record[0])
			s.Score, err = strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		case 3:
			s.Entity = strings.TrimSpace(record[0])
			s.Timestamp, err = time.Parse(time.RFC3339, strings.TrimSpace(record[1]))
			if err == nil {
				s.Score, err = strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
			}
		default:
			return nil, fmt.Errorf("complexity csv line %d: expected 2 or 3 fields, got %d", line, len(record))
		}
		if err != nil {
			return nil, fmt.Errorf("complexity csv line %d: %w", line, err)
		}
		if s.Entity == "" {
			return nil, fmt.Errorf("complexity csv line %d: empty entity", line)
		}
		if s.Score < 0 {
			return nil, fmt.Errorf("complexity csv line %d: negative score %v", line, s.Score)
		}
		samples = append(samples, s)
	}
	return NewMap(samples), nil
}

// LoadJSON reads a schema-validated JSON array of samples.
func LoadJSON(data []byte) (*Map, error) {
	if err := validateJSON(data); err != nil {
		return nil, err
	}

	var raw []struct {
		Entity    string  `json:"entity"`
		Score     float64 `json:"score"`
		Timestamp string  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("complexity json: %w", err)
	}

	samples := make([]Sample, 0, len(raw))
	for i, r := range raw {
		s := Sample{Entity: r.Entity, Score: r.Score}
		if r.Timestamp != "" {
			t, err := time.Parse(time.RFC3339, r.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("complexity json sample %d: %w", i, err)
			}
			s.Timestamp = t
		}
		samples = append(samples, s)
	}
	return NewMap(samples), nil
}

func validateJSON(data []byte) error {
	compiler := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return fmt.Errorf("complexity schema: %w", err)
	}
	if err := compiler.AddResource("complexity.schema.json", doc); err != nil {
		return fmt.Errorf("complexity schema: %w", err)
	}
	schema, err := compiler.Compile("complexity.schema.json")
	if err != nil {
		return fmt.Errorf("complexity schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("complexity json: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("complexity json: %w", err)
	}
	return nil
}
