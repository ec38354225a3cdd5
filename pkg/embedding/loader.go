package embedding

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// Loader produces a fully built Table for a model identifier, or fails with
// a typed error. Implementations must never publish a partially built table.
type Loader interface {
	Load(ctx context.Context, id string) (Table, error)
}

// FileLoader reads embedding files from a data directory. For a model
// identifier it looks for <id>.bin, then <id>.vec, then <id>.txt.
type FileLoader struct {
	dir string
}

// NewFileLoader creates a loader rooted at dir.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

// ctx cancellation is only checked between records, so a single huge record
// cannot stall cancellation for long.
const ctxCheckEvery = 4096

// Load parses the embedding file for id into an immutable Table.
func (l *FileLoader) Load(ctx context.Context, id string) (Table, error) {
	path, format, err := l.resolve(id)
	if err != nil {
		return nil, &LoadError{Model: id, Err: err}
	}

	log.Debugf("Loading %s embeddings from %s", format, path)

	var table Table
	switch format {
	case FormatBinary:
		table, err = l.loadBinary(ctx, id, path)
	case FormatText:
		table, err = l.loadText(ctx, id, path)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, &LoadError{Model: id, Err: err}
	}
	log.Debugf("Loaded model %s: %d words, %dD", id, table.Len(), table.Dim())
	return table, nil
}

// resolve finds the data file for id and detects its format.
func (l *FileLoader) resolve(id string) (string, FileFormat, error) {
	for _, ext := range []string{".bin", ".vec", ".txt"} {
		path := filepath.Join(l.dir, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		format, err := DetectFormat(path)
		if err != nil {
			return "", FormatUnknown, err
		}
		return path, format, nil
	}
	return "", FormatUnknown, fmt.Errorf("%w: no data file for %q in %s", ErrNotFound, id, l.dir)
}

// loadBinary reads the little-endian binary format: int32 vocab count,
// int32 dimension, then per word a uint16 length prefix, the word bytes and
// the float32 vector.
func (l *FileLoader) loadBinary(ctx context.Context, id, path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, 1<<20)
	base := filepath.Base(path)

	var count, dim int32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return nil, &ParseError{File: base, Reason: fmt.Sprintf("read header: %v", err)}
	}
	if err := binary.Read(reader, binary.LittleEndian, &dim); err != nil {
		return nil, &ParseError{File: base, Reason: fmt.Sprintf("read header: %v", err)}
	}
	if count <= 0 || count > maxHeaderVocab || dim <= 0 || dim > maxHeaderDim {
		return nil, &ParseError{File: base, Reason: fmt.Sprintf("implausible header: %d words, %dD", count, dim)}
	}

	builder := NewBuilder(id, int(dim), int(count))
	vec := make([]float32, dim)
	for i := 0; i < int(count); i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				return nil, &ParseError{File: base, Reason: fmt.Sprintf("truncated: %d of %d words", i, count)}
			}
			return nil, &ParseError{File: base, Reason: fmt.Sprintf("read word length: %v", err)}
		}
		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, &ParseError{File: base, Reason: fmt.Sprintf("read word: %v", err)}
		}
		if err := binary.Read(reader, binary.LittleEndian, vec); err != nil {
			return nil, &ParseError{File: base, Reason: fmt.Sprintf("read vector for %q: %v", wordBytes, err)}
		}
		dst := make([]float32, dim)
		copy(dst, vec)
		if err := builder.Add(string(wordBytes), dst); err != nil {
			return nil, err
		}
	}
	return builder.Build()
}

// loadText reads GloVe-style text: one word followed by its vector
// components per line. An optional "count dim" header line is skipped.
func (l *FileLoader) loadText(ctx context.Context, id, path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	base := filepath.Base(path)

	var builder *Builder
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		// word2vec text files open with a "vocab dim" header line.
		if builder == nil && lineNo == 1 && len(fields) == 2 {
			if _, err1 := strconv.Atoi(fields[0]); err1 == nil {
				if _, err2 := strconv.Atoi(fields[1]); err2 == nil {
					continue
				}
			}
		}

		if len(fields) < 2 {
			return nil, &ParseError{File: base, Line: lineNo, Reason: "no vector components"}
		}
		word := fields[0]
		vec := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, &ParseError{File: base, Line: lineNo, Reason: fmt.Sprintf("bad component %q", f)}
			}
			vec[i] = float32(v)
		}

		if builder == nil {
			builder = NewBuilder(id, len(vec), 0)
		}
		if err := builder.Add(word, vec); err != nil {
			return nil, &ParseError{File: base, Line: lineNo, Reason: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{File: base, Line: lineNo, Reason: err.Error()}
	}
	if builder == nil {
		return nil, &ParseError{File: base, Reason: "empty vocabulary"}
	}
	return builder.Build()
}
