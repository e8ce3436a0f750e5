package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Status is the terminal state of a lookup.
type Status int

const (
	NotFound Status = iota
	Found
	FoundButUnparseable
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case FoundButUnparseable:
		return "found_but_unparseable"
	default:
		return "not_found"
	}
}

// MsgNotFound is the marker text for a case file missing from every directory.
const MsgNotFound = "case document not found in corpus"

// Resolution describes the outcome of locating one case document.
type Resolution struct {
	Status Status
	// Path is the probed file that matched; empty for NotFound.
	Path string
	// Data is the parsed JSON document when Status is Found.
	Data any
	// Cause is set when Status is FoundButUnparseable.
	Cause error
}

// CaseData is the value attached to a passage's metadata: the parsed document,
// or an error marker describing why it is unavailable.
func (r Resolution) CaseData() any {
	switch r.Status {
	case Found:
		return r.Data
	case FoundButUnparseable:
		return ErrorMarker(fmt.Sprintf("failed to load case document: %v", r.Cause))
	default:
		return ErrorMarker(MsgNotFound)
	}
}

// ErrorMarker builds the {"error": msg} record used in place of case data.
func ErrorMarker(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// DirResolver looks up case documents across an ordered list of base directories.
type DirResolver struct {
	dirs []string
	log  *zap.Logger
}

// New creates a resolver probing dirs in the given order.
func New(dirs []string, log *zap.Logger) *DirResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirResolver{dirs: append([]string(nil), dirs...), log: log.Named("resolver")}
}

// Dirs returns the probe order.
func (r *DirResolver) Dirs() []string { return append([]string(nil), r.dirs...) }

// Resolve probes every directory for filename and parses the first regular
// file found. Only the base name of filename is used.
func (r *DirResolver) Resolve(filename string) Resolution {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == ".." {
		return Resolution{Status: NotFound}
	}
	for _, dir := range r.dirs {
		p := filepath.Join(dir, name)
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		data, err := readJSON(p)
		if err != nil {
			r.log.Warn("case document unreadable", zap.String("path", p), zap.Error(err))
			return Resolution{Status: FoundButUnparseable, Path: p, Cause: err}
		}
		return Resolution{Status: Found, Path: p, Data: data}
	}
	r.log.Debug("case document not found", zap.String("file", name), zap.Strings("dirs", r.dirs))
	return Resolution{Status: NotFound}
}

func readJSON(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return nil, fmt.Errorf("invalid JSON at offset %d: %w", syn.Offset, err)
		}
		return nil, err
	}
	return v, nil
}
