package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"
)

// Packer bundles entries into a single archive.
type Packer interface {
	Pack(ctx context.Context, entries []Entry) ([]byte, error)
}

// ZipPacker writes deflate-compressed zip archives.
type ZipPacker struct {
	// Modified is stamped on every entry; zero means time.Now.
	Modified time.Time
}

// Pack implements Packer. Entry names must be unique.
func (p ZipPacker) Pack(ctx context.Context, entries []Entry) ([]byte, error) {
	modified := p.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	seen := make(map[string]struct{}, len(entries))
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return nil, err
		}
		if _, dup := seen[e.Name]; dup {
			_ = zw.Close()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name)
		}
		seen[e.Name] = struct{}{}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("create entry %s: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("write entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
