package history

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// ExportJSONL streams a run's telemetry as one JSON object per line.
func (s *Store) ExportJSONL(runID string, w io.Writer) error {
	ticks, err := s.Ticks(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, tr := range ticks {
		if err := enc.Encode(tr); err != nil {
			return err
		}
	}
	return nil
}

// ExportCompressed writes a run's telemetry to path as zstd-compressed JSONL.
func (s *Store) ExportCompressed(runID, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	enc, err := zstd.NewWriter(bw)
	if err != nil {
		return err
	}
	if err := s.ExportJSONL(runID, enc); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return bw.Flush()
}
