package exporter

import (
	"os"
	"path/filepath"
	"time"
)

// RemoveExpired deletes batch files whose modification time is older than
// now minus retention. Per-file failures are logged and skipped so one bad
// entry never ends the sweep.
func (w *fileWriter) RemoveExpired(retention time.Duration) (deleted, failed int) {
	cutoff := w.clock.Now().Add(-retention)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn().Err(err).Str("dir", w.dir).Msg("Failed to read cleanup directory")
		return 0, 1
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExtension {
			continue
		}

		path := filepath.Join(w.dir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			w.log.Warn().Err(err).Str("file", path).Msg("Failed to stat batch file")

			failed++

			continue
		}

		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			w.log.Warn().Err(err).Str("file", path).Msg("Failed to delete expired batch file")

			failed++

			continue
		}

		deleted++
	}

	if deleted > 0 || failed > 0 {
		w.log.Info().
			Str("kind", w.kind).
			Int("deleted", deleted).
			Int("failed", failed).
			Msg("Cleaned up expired batch files")
	}

	return deleted, failed
}
