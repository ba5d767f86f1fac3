package outputs

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const unknownRunState = "UNKNOWN"

// runDocument is the part of a d3m pipeline run document we read. The
// runtime writes one document per fit and per produce phase.
type runDocument struct {
	Status struct {
		State   string `yaml:"state"`
		Message string `yaml:"message"`
	} `yaml:"status"`
}

// SummariseRunRecord reads a pipeline run record (a multi-document YAML
// stream) and counts the documents per status state, for example
// "SUCCESS x2" or "FAILURE x1, SUCCESS x1".
func SummariseRunRecord(path string) (string, error) {

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	counts, err := countRunStates(f)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(counts))
	for _, s := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s x%d", s, counts[s]))
	}

	return strings.Join(parts, ", "), nil
}

func countRunStates(r io.Reader) (map[string]int, error) {

	counts := make(map[string]int)
	dec := yaml.NewDecoder(r)

	for {
		var doc runDocument

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return counts, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode run record: %w", err)
		}

		s := strings.ToUpper(strings.TrimSpace(doc.Status.State))
		if s == "" {
			s = unknownRunState
		}
		counts[s]++
	}
}
