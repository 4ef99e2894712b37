package database

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/yannaql/yannaql/internal/table"
	"github.com/yannaql/yannaql/internal/util"
)

// LoadCSV reads data/<relation>.csv for each of the five fixed relations
// under dir and builds a Database from them. Each file is expected to carry
// a header row; the header is discarded in favor of the fixed Schemas
// column order, which is authoritative regardless of how a given CSV
// happens to order its own header.
//
// Built on encoding/csv; see DESIGN.md for why no third-party CSV library
// is used here.
func LoadCSV(dir string) (*Database, error) {
	tables := make(map[string]table.Table, len(relationOrder))

	for _, relation := range relationOrder {
		t, err := loadRelationCSV(dir, relation)
		if err != nil {
			return nil, util.WrapError("load "+relation, err)
		}

		tables[relation] = t
	}

	return New(tables), nil
}

func loadRelationCSV(dir, relation string) (table.Table, error) {
	schema := Schemas[relation]

	path := filepath.Join(dir, relation+".csv")

	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, util.WrapError("open "+path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(schema)

	if _, err := r.Read(); err != nil { // discard header
		if err == io.EOF {
			return table.Empty(relation, schema), nil
		}

		return table.Table{}, util.WrapError("read header of "+path, err)
	}

	columns := make([][]string, len(schema))

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return table.Table{}, util.WrapError("read row of "+path, err)
		}

		for i, v := range record {
			columns[i] = append(columns[i], v)
		}
	}

	return table.New(relation, schema, columns), nil
}
