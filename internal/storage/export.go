package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run    RunMetadata        `json:"run"`
	Series map[string]*Series `json:"series"`
}

// ExportJSON writes a run's metadata and the entity-mean series of each
// recorded variable.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	data := ExportData{Run: *meta, Series: make(map[string]*Series, len(meta.Variables))}
	for _, name := range meta.Variables {
		series, err := s.LoadSeries(runID, name, -1)
		if err != nil {
			return err
		}
		data.Series[name] = series
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
