package ingest

import (
	"fmt"
	"testing"

	"clipbot/config"
)

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("vid%08d", i)
	}
	return ids
}

func TestBatchIDs(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		wantSizes []int
	}{
		{"no ids", 0, nil},
		{"single partial batch", 7, []int{7}},
		{"exactly one full batch", 50, []int{50}},
		{"one over the limit", 51, []int{50, 1}},
		{"several full plus remainder", 120, []int{50, 50, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := batchIDs(makeIDs(tt.count), config.StatsBatchSize)

			if len(batches) != len(tt.wantSizes) {
				t.Fatalf("got %d batches (one API call each), want %d", len(batches), len(tt.wantSizes))
			}
			for i, batch := range batches {
				if len(batch) > config.StatsBatchSize {
					t.Errorf("batch %d has %d ids, exceeding the limit of %d", i, len(batch), config.StatsBatchSize)
				}
				if len(batch) != tt.wantSizes[i] {
					t.Errorf("batch %d size = %d, want %d", i, len(batch), tt.wantSizes[i])
				}
			}
		})
	}
}

func TestBatchIDsCoversEveryIDOnce(t *testing.T) {
	ids := makeIDs(120)
	seen := make(map[string]int, len(ids))

	for _, batch := range batchIDs(ids, config.StatsBatchSize) {
		for _, id := range batch {
			seen[id]++
		}
	}

	if len(seen) != len(ids) {
		t.Fatalf("batches cover %d distinct ids, want %d", len(seen), len(ids))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %s appears %d times across batches", id, n)
		}
	}
}
