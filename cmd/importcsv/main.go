// Command importcsv loads the ingredient catalog from a CSV file with
// name and measurement_unit columns.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/db"
	applog "foodgram/internal/log"
	"foodgram/internal/store"
)

type importResult struct {
	Created  int
	Existing int
}

func main() {
	csvPath := "data/ingredients.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}
	defer file.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	st, err := store.New(database)
	if err != nil {
		return err
	}

	result, err := importIngredients(ctx, st, file)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s (%d already present)\n",
		result.Created, filepath.Base(csvPath), result.Existing)
	return nil
}

// importIngredients get-or-creates every (name, unit) row inside one
// transaction. A first row reading "name" is treated as a header.
func importIngredients(ctx context.Context, st *store.Store, r io.Reader) (importResult, error) {
	rows, err := readRows(r)
	if err != nil {
		return importResult{}, fmt.Errorf("read csv: %w", err)
	}

	var result importResult
	err = st.Tx(ctx, func(repos *store.Repositories) error {
		for idx, row := range rows {
			_, created, err := repos.Catalog.EnsureIngredient(row[0], row[1])
			if err != nil {
				return fmt.Errorf("record %d (%s): %w", idx+1, row[0], err)
			}
			if created {
				result.Created++
			} else {
				result.Existing++
			}
		}
		return nil
	})
	if err != nil {
		return importResult{}, err
	}

	applog.Info(ctx, "ingredient import finished", "created", result.Created, "existing", result.Existing)
	return result, nil
}

func readRows(r io.Reader) ([][2]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("csv is empty")
	}
	if len(records[0]) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "name") {
		records = records[1:]
	}

	rows := make([][2]string, 0, len(records))
	for idx, record := range records {
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: expected name and measurement_unit", idx+1)
		}
		name := strings.TrimSpace(record[0])
		unit := strings.TrimSpace(record[1])
		if name == "" || unit == "" {
			return nil, fmt.Errorf("line %d: name and measurement_unit must not be empty", idx+1)
		}
		rows = append(rows, [2]string{name, unit})
	}
	return rows, nil
}
