package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/pkg/errors"
)

// romExtensions are the file names preferred when picking a ROM out
// of an archive.
var romExtensions = []string{".gb", ".gbc", ".bin"}

// LoadFile loads the given file and performs decompression if
// necessary. Gzip files are decompressed, and for zip and 7z
// archives the first ROM (or, failing that, the first file) is
// returned.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading rom")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", filename)
		}
		defer r.Close()
		return readAll(r, filename)
	case ".zip":
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", filename)
		}
		files := make([]archived, 0, len(r.File))
		for _, f := range r.File {
			files = append(files, archived{f.Name, f.FileInfo().IsDir(), f.Open})
		}
		return extract(files, filename)
	case ".7z":
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", filename)
		}
		files := make([]archived, 0, len(r.File))
		for _, f := range r.File {
			files = append(files, archived{f.Name, f.FileInfo().IsDir(), f.Open})
		}
		return extract(files, filename)
	}

	// not compressed, return as is
	return data, nil
}

// archived is a file inside a zip or 7z archive.
type archived struct {
	name string
	dir  bool
	open func() (io.ReadCloser, error)
}

func extract(files []archived, filename string) ([]byte, error) {
	var pick *archived
	for i := range files {
		if files[i].dir {
			continue
		}
		if pick == nil {
			pick = &files[i]
		}
		if isROM(files[i].name) {
			pick = &files[i]
			break
		}
	}
	if pick == nil {
		return nil, errors.Errorf("%s: archive is empty", filename)
	}

	rc, err := pick.open()
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s in %s", pick.name, filename)
	}
	defer rc.Close()
	return readAll(rc, filename)
}

func readAll(r io.Reader, filename string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing %s", filename)
	}
	return data, nil
}

func isROM(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range romExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
