package outputs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CountRows returns the number of data rows of a predictions CSV file; the
// header row is not counted.
func CountRows(path string) (int, error) {

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	var records int

	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read predictions: %w", err)
		}
		records++
	}

	if records == 0 {
		return 0, nil
	}
	return records - 1, nil
}
