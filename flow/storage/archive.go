package storage

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrArchiveFormatUnsupported is returned for archive extensions this
// runtime recognizes but cannot extract. 7z needs a CGO-free decoder that
// no pack repo or the Go ecosystem's pure-Go options cover adequately
// (bodgit/sevenzip pulls in its own compression stack with no precedent in
// this corpus); we'd rather fail loudly at read time than fabricate a
// dependency. See DESIGN.md.
var ErrArchiveFormatUnsupported = errors.New("storage: archive format unsupported")

// IsArchive reports whether uri's extension names a format this resolver
// recognizes as an extractable container (spec.md: .zip, .7z, .7zip).
func IsArchive(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasSuffix(lower, ".zip") ||
		strings.HasSuffix(lower, ".7z") ||
		strings.HasSuffix(lower, ".7zip")
}

// ArchiveEntry is one decompressed member of an archive.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// Extract unpacks every entry of an archive previously read via
// Resolver.Read. zip is handled with the standard library; 7z formats
// return ErrArchiveFormatUnsupported.
func Extract(uri string, data []byte) ([]ArchiveEntry, error) {
	lower := strings.ToLower(uri)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(data)
	case strings.HasSuffix(lower, ".7z"), strings.HasSuffix(lower, ".7zip"):
		return nil, fmt.Errorf("%w: %s", ErrArchiveFormatUnsupported, uri)
	default:
		return nil, fmt.Errorf("storage: %q is not a recognized archive", uri)
	}
}

func extractZip(data []byte) ([]ArchiveEntry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("storage: open zip: %w", err)
	}

	entries := make([]ArchiveEntry, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("storage: open zip entry %q: %w", f.Name, err)
		}
		contents := make([]byte, 0, f.UncompressedSize64)
		buf := bytes.NewBuffer(contents)
		if _, err := buf.ReadFrom(rc); err != nil {
			rc.Close()
			return nil, fmt.Errorf("storage: read zip entry %q: %w", f.Name, err)
		}
		rc.Close()
		entries = append(entries, ArchiveEntry{Name: f.Name, Data: buf.Bytes()})
	}
	return entries, nil
}
