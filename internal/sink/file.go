package sink

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/model"
)

// FileSink writes the document to a local path, creating parent directories.
type FileSink struct {
	Path string
}

// NewFile returns a FileSink targeting path.
func NewFile(path string) *FileSink {
	return &FileSink{Path: path}
}

// Write replaces the file atomically: the document goes to a temp file in the
// same directory which is then renamed over Path.
func (s *FileSink) Write(ctx context.Context, groupements []model.Groupement) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "sink: file")
	}
	data, err := encode(groupements)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "sink: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".groupements-*.json")
	if err != nil {
		return eris.Wrapf(err, "sink: create temp in %s", dir)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrapf(err, "sink: write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "sink: close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return eris.Wrapf(err, "sink: chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return eris.Wrapf(err, "sink: rename to %s", s.Path)
	}

	zap.L().Info("output written",
		zap.String("path", s.Path),
		zap.Int("groupements", len(groupements)),
		zap.Int("bytes", len(data)),
	)
	return nil
}
