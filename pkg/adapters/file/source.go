package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/jsonc"

	"github.com/ts-factory/bublik-logtree/pkg/domain"
)

// Source implements ports.TreeSource over a directory of saved API responses.
// Each run lives in <dir>/<runID>.json; comments and trailing commas are
// tolerated so fixtures can be annotated by hand.
type Source struct {
	Dir string
}

// NewSource creates a Source reading from dir.
func NewSource(dir string) *Source {
	return &Source{Dir: dir}
}

// Fetch reads the payload saved for runID.
func (s *Source) Fetch(ctx context.Context, runID int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if runID < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrRunNotFound, runID)
	}

	path := filepath.Join(s.Dir, strconv.FormatInt(runID, 10)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %d", domain.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	return jsonc.ToJSON(data), nil
}
