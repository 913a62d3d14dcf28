package csvfile

import (
	"bufio"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	pkgErrors "github.com/pkg/errors"
)

// Header returns the header row of the file at path, lowercased
func Header(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgErrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	r := newReader(f)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, pkgErrors.Errorf("file %s has no header row", path)
		}
		return nil, pkgErrors.Wrapf(err, "failed to read header of %s", path)
	}
	return Lower(header), nil
}

// Read streams every data record of the file to fn. The header is passed
// as read (not lowercased) so rewrites can reproduce it verbatim.
func Read(path string, fn func(header, record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return pkgErrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	r := newReader(f)
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return pkgErrors.Errorf("file %s has no header row", path)
		}
		return pkgErrors.Wrapf(err, "failed to read header of %s", path)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return pkgErrors.Wrapf(err, "failed to read %s", path)
		}
		if err := fn(header, pad(record, len(header))); err != nil {
			return err
		}
	}
}

// Append writes record as one fully quoted line at the end of the file
func Append(path string, record []string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND, 0)
	if err != nil {
		return pkgErrors.Wrapf(err, "failed to open %s for append", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	missing, err := missingTrailingNewline(f)
	if err != nil {
		return pkgErrors.Wrapf(err, "failed to inspect %s", path)
	}
	if missing {
		w.WriteString("\n")
	}
	writeRecord(w, record)

	if err := w.Flush(); err != nil {
		return pkgErrors.Wrapf(err, "failed to append to %s", path)
	}
	if err := f.Sync(); err != nil {
		return pkgErrors.Wrapf(err, "failed to sync %s", path)
	}
	return nil
}

// RewriteFunc receives the i-th data record (0-based) and returns the record
// to write in its place, or keep=false to drop it
type RewriteFunc func(i int, header, record []string) (out []string, keep bool)

// Rewrite rewrites the whole file through fn. Output goes to a temporary
// file in the same directory which then atomically replaces the original,
// so a failure part way leaves the previous contents intact.
func Rewrite(path string, fn RewriteFunc) error {
	var (
		header []string
		out    [][]string
		i      int
	)
	err := Read(path, func(h, record []string) error {
		header = h
		if rec, keep := fn(i, h, record); keep {
			out = append(out, rec)
		}
		i++
		return nil
	})
	if err != nil {
		return err
	}
	if header == nil {
		if header, err = rawHeader(path); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return pkgErrors.Wrapf(err, "failed to create temp file for %s", path)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				slog.Warn("failed to remove temp file", slog.String("path", tmpPath), slog.Any("error", rmErr))
			}
		}
	}()

	w := bufio.NewWriter(tmp)
	writeRecord(w, header)
	for _, rec := range out {
		writeRecord(w, rec)
	}
	if err := w.Flush(); err != nil {
		return pkgErrors.Wrapf(err, "failed to write temp file for %s", path)
	}
	if err := tmp.Sync(); err != nil {
		return pkgErrors.Wrapf(err, "failed to sync temp file for %s", path)
	}
	if err := tmp.Close(); err != nil {
		return pkgErrors.Wrapf(err, "failed to close temp file for %s", path)
	}

	// Atomic replace
	if err := os.Rename(tmpPath, path); err != nil {
		return pkgErrors.Wrapf(err, "failed to rename temp file over %s", path)
	}
	committed = true

	slog.Debug("backing file rewritten",
		slog.String("path", path),
		slog.Int("rows_read", i),
		slog.Int("rows_written", len(out)),
	)
	return nil
}

// Create writes a new file holding only header. It fails if path exists.
func Create(path string, header []string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return pkgErrors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writeRecord(w, header)
	if err := w.Flush(); err != nil {
		return pkgErrors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// Lower returns a lowercased copy of names
func Lower(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToLower(strings.TrimSpace(n))
	}
	return out
}

func rawHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgErrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	header, err := newReader(f).Read()
	if err != nil {
		return nil, pkgErrors.Wrapf(err, "failed to read header of %s", path)
	}
	return header, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = ','
	cr.FieldsPerRecord = -1
	return cr
}

// writeRecord quotes every field, doubling embedded quotes
func writeRecord(w *bufio.Writer, record []string) {
	for i, field := range record {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteString("\n")
}

func pad(record []string, n int) []string {
	for len(record) < n {
		record = append(record, "")
	}
	return record
}

func missingTrailingNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, info.Size()-1); err != nil {
		return false, err
	}
	return buf[0] != '\n', nil
}
