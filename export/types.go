// Package export rasterizes compositions to PNG/JPEG files and packs batch
// exports into zip archives.
package export

import (
	"errors"

	"github.com/ByLCY/cardstudio/renderer"
)

var (
	// ErrExportFailed wraps every rendering, encoding or packing failure.
	ErrExportFailed = errors.New("export failed")
	// ErrBusy is returned when a job is already exporting.
	ErrBusy = errors.New("export already in progress")
	// ErrCanceled is returned by a run whose generation was superseded.
	ErrCanceled = errors.New("export canceled")
	// ErrDuplicateEntry is returned when two archive entries share a name.
	ErrDuplicateEntry = errors.New("duplicate archive entry")
)

// Filename patterns, interpolated with brand, kind, format, timestamp and ext.
const (
	SinglePattern  = "${brand}-${kind}-${format}-${timestamp}.${ext}"
	EntryPattern   = "${brand}-${kind}-${format}.${ext}"
	ArchivePattern = "${brand}-${kind}-batch.zip"
)

// DefaultFilePrefix is the brand token used in file names.
const DefaultFilePrefix = "KG"

// ArchiveMIME is the content type of batch archives.
const ArchiveMIME = "application/zip"

// Options controls encoding of a single artifact.
type Options struct {
	Encoding renderer.Encoding
	// Quality applies to JPEG only, clamped to [0.5, 1]; 0 means 0.9.
	Quality float64
	// PixelRatio multiplies the canonical resolution; <= 0 means 2.
	PixelRatio float64
}

func (o Options) renderOptions() renderer.Options {
	return renderer.Options{Encoding: o.Encoding, Quality: o.Quality, PixelRatio: o.PixelRatio}.Normalize()
}

// Result is one exported file.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// Entry is one file inside an archive.
type Entry struct {
	Name string
	Data []byte
}

// Archive is a packed batch export.
type Archive struct {
	Name    string
	Data    []byte
	Entries []string
	// Location is set when the archive was uploaded to object storage.
	Location string
}
