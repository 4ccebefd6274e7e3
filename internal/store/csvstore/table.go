package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/usere2211-alt/finance-dashboard/internal/core"
)

// codec maps one domain between CSV rows and values.
type codec[T any] struct {
	domain   string
	header   []string
	required []string
	// decode reads a row given as column name -> cell. line is 1-based.
	decode func(cols map[string]string, line int) (T, error)
	encode func(T) []string
	// fill completes a decoded value (e.g. a missing id) and reports whether
	// it changed, which marks the file for rewrite.
	fill func(*T) bool
}

// row keeps the cells of undecodable rows so a rewrite does not drop them.
type row[T any] struct {
	raw []string
	val T
	err error
}

// table is the in-memory image of one CSV file. It is reloaded whenever the
// file's modification time or size differs from the last load or write.
type table[T any] struct {
	codec   codec[T]
	path    string
	loaded  bool
	modTime time.Time
	size    int64
	rows    []row[T]
	// headerErr is set when the file cannot be interpreted at all; writes are
	// refused so the original content is not replaced.
	headerErr error
	legacy    bool
}

func newTable[T any](dir string, c codec[T]) *table[T] {
	return &table[T]{codec: c, path: filepath.Join(dir, c.domain+".csv")}
}

// sync makes rows reflect the file on disk, creating it with the header when
// it does not exist yet.
func (t *table[T]) sync() error {
	st, err := os.Stat(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		t.rows, t.headerErr, t.legacy = nil, nil, false
		if err := t.write(); err != nil {
			return err
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %v", t.codec.domain, core.ErrStoreUnavailable, err)
	}
	if t.loaded && st.ModTime().Equal(t.modTime) && st.Size() == t.size {
		return nil
	}
	if err := t.load(); err != nil {
		return err
	}
	t.loaded, t.modTime, t.size = true, st.ModTime(), st.Size()
	if t.legacy && t.headerErr == nil {
		// Persist generated ids so they stay stable across reloads. A
		// read-only data dir still serves the rows decoded above.
		_ = t.write()
	}
	return nil
}

func (t *table[T]) load() error {
	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", t.codec.domain, core.ErrStoreUnavailable, err)
	}
	defer f.Close()

	if err := t.read(f); err != nil {
		t.rows, t.headerErr, t.legacy = nil, nil, false
		return fmt.Errorf("%s: %w: %v", t.codec.domain, core.ErrStoreUnavailable, err)
	}
	return nil
}

// read parses the file content into rows. Rows and the header are read with
// LazyQuotes and a variable field count, so the only errors left are read
// failures; those are returned rather than stored as rows without cells.
func (t *table[T]) read(src io.Reader) error {
	t.rows, t.headerErr, t.legacy = nil, nil, false

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		// Empty file: treat like a fresh one.
		t.legacy = true
		return nil
	}
	if err != nil {
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			return err
		}
		t.headerErr = &core.ParseError{Domain: t.codec.domain, Line: 1, Field: "header", Err: err}
		return nil
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range t.codec.required {
		if _, ok := index[name]; !ok {
			t.headerErr = &core.ParseError{
				Domain: t.codec.domain, Line: 1, Field: "header",
				Value: strings.Join(header, ","), Err: fmt.Errorf("missing column %q", name),
			}
			return nil
		}
	}
	if len(header) != len(t.codec.header) {
		t.legacy = true
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		line, _ := r.FieldPos(0)
		cols := make(map[string]string, len(index))
		for name, i := range index {
			if i < len(rec) {
				cols[name] = rec[i]
			}
		}
		raw := make([]string, len(t.codec.header))
		for i, name := range t.codec.header {
			raw[i] = cols[name]
		}
		val, err := t.codec.decode(cols, line)
		if err != nil {
			t.rows = append(t.rows, row[T]{raw: raw, err: err})
			continue
		}
		if t.codec.fill != nil && t.codec.fill(&val) {
			t.legacy = true
		}
		t.rows = append(t.rows, row[T]{raw: raw, val: val})
	}
	return nil
}

// values returns the decodable rows and the joined row errors.
func (t *table[T]) values() ([]T, error) {
	if t.headerErr != nil {
		return nil, core.CorruptError(t.codec.domain, []error{t.headerErr})
	}
	out := make([]T, 0, len(t.rows))
	var errs []error
	for _, r := range t.rows {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		out = append(out, r.val)
	}
	return out, core.CorruptError(t.codec.domain, errs)
}

// write replaces the file with the current rows via a temp file and rename.
func (t *table[T]) write() error {
	if t.headerErr != nil {
		return fmt.Errorf("refusing to overwrite: %w", core.CorruptError(t.codec.domain, []error{t.headerErr}))
	}
	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, "."+t.codec.domain+"-*.csv")
	if err != nil {
		return fmt.Errorf("%s: %w: %v", t.codec.domain, core.ErrStoreUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	records := make([][]string, 0, len(t.rows)+1)
	records = append(records, t.codec.header)
	for _, r := range t.rows {
		if r.err != nil {
			records = append(records, r.raw)
			continue
		}
		records = append(records, t.codec.encode(r.val))
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", t.codec.domain, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", t.codec.domain, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", t.codec.domain, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", t.codec.domain, err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("rename %s: %w", t.codec.domain, err)
	}

	st, err := os.Stat(t.path)
	if err != nil {
		t.loaded = false
		return nil
	}
	t.loaded, t.modTime, t.size, t.legacy = true, st.ModTime(), st.Size(), false
	return nil
}

// apply runs fn on a copy of the rows and persists the result. On a failed
// write the previous rows are kept.
func (t *table[T]) apply(fn func(rows []row[T]) ([]row[T], error)) error {
	if err := t.sync(); err != nil {
		return err
	}
	prev := t.rows
	next, err := fn(append([]row[T](nil), prev...))
	if err != nil {
		return err
	}
	t.rows = next
	if err := t.write(); err != nil {
		t.rows = prev
		return err
	}
	return nil
}
