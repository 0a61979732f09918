package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	sonic "github.com/bytedance/sonic"
)

// Checkpoint records which units a scrape has finished so a multi-hour run
// interrupted halfway resumes instead of refetching everything.
type Checkpoint struct {
	Provider  string    `json:"provider"`
	Completed []string  `json:"completed"`
	Stats     RunStats  `json:"stats"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Checkpoint) completedSet() map[string]struct{} {
	out := make(map[string]struct{}, len(c.Completed))
	for _, key := range c.Completed {
		out[key] = struct{}{}
	}
	return out
}

// LoadCheckpoint reads a checkpoint file. A missing file is a fresh start,
// not an error.
func LoadCheckpoint(path string) (Checkpoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, nil
		}
		return Checkpoint{}, fmt.Errorf("read checkpoint %s: %w", path, err)
	}

	var cp Checkpoint
	if err := sonic.Unmarshal(raw, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("decode checkpoint %s: %w", path, err)
	}
	return cp, nil
}

// SaveCheckpoint writes atomically via a temp file so a crash mid-write
// never corrupts the resume state.
func SaveCheckpoint(path string, cp Checkpoint) error {
	cp.UpdatedAt = time.Now().UTC()
	raw, err := sonic.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace checkpoint %s: %w", path, err)
	}
	return nil
}
