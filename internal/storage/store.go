package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/rhizosoil/internal/sim"
	"github.com/san-kum/rhizosoil/internal/tree"
)

var ErrUnknownColumn = errors.New("storage: variable not recorded")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	TimeStep  float64            `json:"time_step"`
	Steps     int                `json:"steps"`
	Segments  int                `json:"segments"`
	Forcing   string             `json:"forcing"`
	Growth    string             `json:"growth"`
	Workers   int                `json:"workers"`
	Scenario  map[string]float64 `json:"scenario,omitempty"`
	Variables []string           `json:"variables"`
	Entities  int                `json:"entities"`
	Unstable  int64              `json:"unstable"`
	Metrics   map[string]float64 `json:"metrics"`
	Error     string             `json:"error,omitempty"`
}

// Recorder is a sim.Observer writing one states.csv row per entity and
// step. Close writes metadata.json.
type Recorder struct {
	dir  string
	meta RunMetadata
	file *os.File
	w    *csv.Writer
}

// NewRecorder creates the run directory. An empty meta.ID gets a fresh
// UUID.
func (s *Store) NewRecorder(meta RunMetadata) (*Recorder, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if len(meta.Variables) == 0 {
		return nil, fmt.Errorf("run %s records no variables", meta.ID)
	}

	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(dir, "states.csv"))
	if err != nil {
		return nil, err
	}

	r := &Recorder{dir: dir, meta: meta, file: f, w: csv.NewWriter(f)}
	header := append([]string{"step", "time", "entity"}, meta.Variables...)
	if err := r.w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) ID() string { return r.meta.ID }

func (r *Recorder) OnStep(step int, t float64, v sim.View) error {
	cols := make([]map[tree.ID]float64, len(r.meta.Variables))
	for i, name := range r.meta.Variables {
		f, ok := v.Field(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		cols[i] = f
	}

	stepCol := strconv.Itoa(step)
	timeCol := formatFloat(t)
	for _, id := range v.Entities() {
		row := make([]string, 0, 3+len(cols))
		row = append(row, stepCol, timeCol, strconv.Itoa(int(id)))
		for _, f := range cols {
			row = append(row, formatFloat(f[id]))
		}
		if err := r.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the states and writes the metadata. result and runErr may
// describe a partial run.
func (r *Recorder) Close(result *sim.Result, runErr error) error {
	r.w.Flush()
	werr := r.w.Error()
	cerr := r.file.Close()

	if result != nil {
		r.meta.Metrics = result.Metrics
		r.meta.Unstable = result.Unstable
		if n := len(result.Entities); n > 0 {
			r.meta.Entities = result.Entities[n-1]
		}
	}
	if runErr != nil {
		r.meta.Error = runErr.Error()
	}
	merr := writeJSON(filepath.Join(r.dir, "metadata.json"), r.meta)
	return errors.Join(werr, cerr, merr)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int { return a.Timestamp.Compare(b.Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Series is one variable over time, reduced over entities.
type Series struct {
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

// LoadSeries reads variable from a run. With entity >= 0 the values are
// that entity's; otherwise they are the mean over the entities present at
// each step.
func (s *Store) LoadSeries(runID, variable string, entity int) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := slices.Index(header, variable)
	if col < 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, variable)
	}

	series := &Series{}
	var (
		step  = -1
		sum   float64
		count int
	)
	flush := func() {
		if count > 0 {
			series.Values = append(series.Values, sum/float64(count))
		} else {
			series.Times = series.Times[:len(series.Times)-1]
		}
		sum, count = 0, 0
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		st, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("bad step %q: %w", rec[0], err)
		}
		if st != step {
			if step >= 0 {
				flush()
			}
			t, err := strconv.ParseFloat(rec[1], 64)
			if err != nil {
				return nil, fmt.Errorf("bad time %q: %w", rec[1], err)
			}
			series.Times = append(series.Times, t)
			step = st
		}
		if entity >= 0 {
			id, err := strconv.Atoi(rec[2])
			if err != nil || id != entity {
				continue
			}
		}
		v, err := strconv.ParseFloat(rec[col], 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", rec[col], err)
		}
		sum += v
		count++
	}
	if step >= 0 {
		flush()
	}
	return series, nil
}
