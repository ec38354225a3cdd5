package embedding

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the supported embedding file formats.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatBinary             // length-prefixed binary vectors (.bin)
	FormatText               // GloVe-style whitespace text (.vec, .txt)
)

func (f FileFormat) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// Sanity bounds for binary headers. Vocabularies above the cap or absurd
// dimensionalities indicate a corrupt or foreign file, not a big model.
const (
	maxHeaderVocab = 10_000_000
	maxHeaderDim   = 4096
)

// DetectFormat determines the format of an embedding file from its
// extension and, for binary files, a header sanity check.
func DetectFormat(filename string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bin":
		if err := validateBinaryHeader(filename); err != nil {
			return FormatUnknown, err
		}
		return FormatBinary, nil
	case ".vec", ".txt":
		return FormatText, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(filename))
	}
}

// validateBinaryHeader reads the vocab count and dimension from a binary
// file header and rejects values outside sane bounds.
func validateBinaryHeader(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	var count, dim int32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return &ParseError{File: filepath.Base(filename), Reason: fmt.Sprintf("read header: %v", err)}
	}
	if err := binary.Read(file, binary.LittleEndian, &dim); err != nil {
		return &ParseError{File: filepath.Base(filename), Reason: fmt.Sprintf("read header: %v", err)}
	}
	if count <= 0 || count > maxHeaderVocab {
		return &ParseError{File: filepath.Base(filename), Reason: fmt.Sprintf("implausible vocab count %d", count)}
	}
	if dim <= 0 || dim > maxHeaderDim {
		return &ParseError{File: filepath.Base(filename), Reason: fmt.Sprintf("implausible dimension %d", dim)}
	}
	log.Debugf("Binary file %s validated: %d words, %dD", filepath.Base(filename), count, dim)
	return nil
}
