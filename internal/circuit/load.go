package circuit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Parser turns the raw bytes of a circuit file into a Circuit.
type Parser func(src []byte) (*Circuit, error)

var (
	parsersMu sync.RWMutex
	parsers   = make(map[string]Parser)
)

func init() {
	RegisterParser(".qasm", func(src []byte) (*Circuit, error) { return ParseQASM(string(src)) })
}

// RegisterParser installs a parser for a file extension such as ".qasm".
func RegisterParser(ext string, p Parser) {
	parsersMu.Lock()
	defer parsersMu.Unlock()
	parsers[strings.ToLower(ext)] = p
}

// Load reads and parses the circuit at path. The circuit is named after the
// file stem.
func Load(path string) (*Circuit, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	parsersMu.RLock()
	parse, ok := parsers[ext]
	parsersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no parser for %q files", ErrBackendUnavailable, ext)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return c, nil
}
