package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/carverauto/otelsink/pkg/logger"
)

const (
	filenameTimeLayout = "20060102_150405"
	fileExtension      = ".arrow"
	dirPerm            = 0o755
)

// fileWriter persists batches of one record kind as Arrow IPC stream files
// under <output_dir>/otlp/<kind>/. Each flushed batch becomes its own file;
// the sequence counter keeps filenames unique within a timestamp second.
type fileWriter struct {
	mu    sync.Mutex
	dir   string
	kind  string
	seq   uint64
	clock Clock
	log   logger.Logger
}

func newFileWriter(outputDir, kind string, clock Clock, log logger.Logger) (*fileWriter, error) {
	dir := filepath.Join(outputDir, "otlp", kind)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}

	return &fileWriter{
		dir:   dir,
		kind:  kind,
		clock: clock,
		log:   log,
	}, nil
}

// Write persists one batch and returns the file path. Zero-row batches are
// skipped and return an empty path.
func (w *fileWriter) Write(rec arrow.RecordBatch) (string, error) {
	if rec.NumRows() == 0 {
		return "", nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	name := fmt.Sprintf("otlp_%s_%s_%04d%s",
		w.kind, w.clock.Now().UTC().Format(filenameTimeLayout), w.seq, fileExtension)
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s file %s: %w", w.kind, path, err)
	}

	wr := ipc.NewWriter(f, ipc.WithSchema(rec.Schema()))

	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		_ = f.Close()

		return "", fmt.Errorf("write %s batch to %s: %w", w.kind, path, err)
	}

	if err := wr.Close(); err != nil {
		_ = f.Close()

		return "", fmt.Errorf("finish %s stream %s: %w", w.kind, path, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s file %s: %w", w.kind, path, err)
	}

	w.seq++

	w.log.Debug().
		Str("file", path).
		Int64("rows", rec.NumRows()).
		Msg("Wrote batch file")

	return path, nil
}
