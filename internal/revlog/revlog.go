// Package revlog reads pre-extracted revision logs from CSV or JSON files,
// for feeding histories that did not come straight from a repository.
package revlog

import (
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

	"github.com/evolens/evolens/pkg/revision"
)

// ParseError reports a malformed record with enough context to find it.
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
}

// LoadFile reads a revision log, dispatching on file extension. CSV is the
// default for unknown extensions.
func LoadFile(path string) ([]revision.Revision, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening revision log: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f, path)
	default:
		return LoadCSV(f, path)
	}
}

// LoadCSV reads one change per row: rev,author,timestamp,entity,added,deleted.
// Timestamps are RFC 3339. A header row is skipped when the first field
// reads "rev". Consecutive rows sharing a revision id fold into one
// revision; the id may also reappear later, which still folds (input need
// not be grouped).
func LoadCSV(r io.Reader, path string) ([]revision.Revision, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 6
	reader.TrimLeadingSpace = true

	var out []revision.Revision
	index := make(map[string]int)
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Reason: err.Error()}
		}
		if line == 1 && strings.EqualFold(record[0], "rev") {
			continue
		}

		id := record[0]
		when, err := time.Parse(time.RFC3339, record[2])
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Reason: "bad timestamp: " + record[2]}
		}
		added, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Reason: "bad added count: " + record[4]}
		}
		deleted, err := strconv.Atoi(record[5])
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Reason: "bad deleted count: " + record[5]}
		}

		change := revision.Change{Entity: record[3], Added: added, Deleted: deleted}
		if i, ok := index[id]; ok {
			out[i].Changes = append(out[i].Changes, change)
			continue
		}
		index[id] = len(out)
		out = append(out, revision.Revision{
			ID:        id,
			Author:    record[1],
			Timestamp: when,
			Changes:   []revision.Change{change},
		})
	}
	return out, nil
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "author", "timestamp", "changes"],
    "additionalProperties": false,
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "author": {"type": "string", "minLength": 1},
      "timestamp": {"type": "string", "format": "date-time"},
      "changes": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "required": ["entity"],
          "additionalProperties": false,
          "properties": {
            "entity": {"type": "string", "minLength": 1},
            "added": {"type": "integer", "minimum": 0},
            "deleted": {"type": "integer", "minimum": 0}
          }
        }
      }
    }
  }
}`

// LoadJSON reads an array of revision objects, validated against a schema
// before decoding so malformed feeds fail with a precise location instead
// of a half-built model.
func LoadJSON(r io.Reader, path string) ([]revision.Revision, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading revision log: %w", err)
	}
	if err := validateJSON(data); err != nil {
		return nil, &ParseError{Path: path, Line: 0, Reason: err.Error()}
	}

	var out []revision.Revision
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &ParseError{Path: path, Line: 0, Reason: err.Error()}
	}
	return out, nil
}

func validateJSON(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	compiler := jsonschema.NewCompiler()
	schema, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return err
	}
	if err := compiler.AddResource("revlog.json", schema); err != nil {
		return err
	}
	compiled, err := compiler.Compile("revlog.json")
	if err != nil {
		return err
	}
	return compiled.Validate(doc)
}
