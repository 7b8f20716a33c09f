// Package jsonl implements a local store that keeps the collection in a
// JSONL file, one book per line, with atomic persistence.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// BooksFile is the JSONL file name inside DataDir.
const BooksFile = "books.jsonl"

// Compile-time interface check.
var _ types.LocalStore = (*Backend)(nil)

// Backend implements types.LocalStore on books.jsonl.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	path     string
	logger   *zap.Logger
}

// NewBackend creates a new JSONL backend. Call Attach before use.
func NewBackend(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{logger: logger}
}

// Attach creates DataDir and an empty books.jsonl if they do not exist.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dataDir, BooksFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", BooksFile, err)
		}
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", BooksFile, err)
	}

	b.path = path
	b.attached = true
	return nil
}

// Detach marks the backend detached. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached = false
	return nil
}

// Load reads books.jsonl. A missing file yields an empty collection and
// malformed lines are skipped.
func (b *Backend) Load(ctx context.Context) ([]types.Book, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines, err := readJSONL(b.path, b.logger)
	if errors.Is(err, fs.ErrNotExist) {
		return []types.Book{}, nil
	}
	if err != nil {
		return nil, err
	}

	books := make([]types.Book, 0, len(lines))
	for _, ln := range lines {
		if string(ln.data) == "null" {
			continue
		}
		var book types.Book
		if err := json.Unmarshal(ln.data, &book); err != nil {
			b.logger.Warn("skipping malformed book line", zap.String("path", b.path), zap.Int("line", ln.number), zap.Error(err))
			continue
		}
		books = append(books, book)
	}
	return books, nil
}

// Save rewrites books.jsonl atomically.
func (b *Backend) Save(ctx context.Context, books []types.Book) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([]json.RawMessage, 0, len(books))
	for _, book := range books {
		rec, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("encoding book %s: %w", book.ID, err)
		}
		records = append(records, rec)
	}
	return writeJSONL(b.path, records)
}

// line is one parseable JSONL record and its 1-based line number.
type line struct {
	number int
	data   json.RawMessage
}

// readJSONL reads a JSONL file and returns each non-empty, parseable line.
// Lines that are not valid JSON are logged and skipped.
func readJSONL(path string, logger *zap.Logger) ([]line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		text := scanner.Bytes()
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		if !json.Valid(text) {
			logger.Warn("skipping invalid JSON line", zap.String("path", path), zap.Int("line", number))
			continue
		}
		cp := make([]byte, len(text))
		copy(cp, text)
		lines = append(lines, line{number: number, data: json.RawMessage(cp)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return lines, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
