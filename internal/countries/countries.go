// Package countries loads the static country-code reference file: a CSV
// mapping ICAO prefix to display name, shipped with the deployment.
// Loading is idempotent and cheap enough to repeat every refresh cycle.
package countries

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Load reads the reference file and returns prefix -> display name.
// Blank lines and a leading header row are tolerated. Rows with fewer
// than two fields are skipped rather than failing the whole file.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open countries file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse countries file: %w", err)
	}

	m := make(map[string]string, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(row[0]))
		name := strings.TrimSpace(row[1])
		if i == 0 && strings.EqualFold(code, "code") {
			continue
		}
		if code == "" || name == "" {
			continue
		}
		m[code] = name
	}
	return m, nil
}
