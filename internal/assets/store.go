// Package assets provides the index-keyed asset cache: raw text, binary and structured artifacts
// stored per Reference index. Presence of an asset is the only cache-hit signal.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/story-digest/internal/types"
)

// ErrMiss is returned by Load when no asset exists for the key.
var ErrMiss = errors.New("asset not cached")

// Class distinguishes how an asset's bytes are interpreted.
type Class int

const (
	// ClassText is UTF-8 text such as raw HTML
	ClassText Class = iota
	// ClassBinary is opaque bytes such as images and documents
	ClassBinary
	// ClassStructured is pretty-printed UTF-8 JSON
	ClassStructured
)

// Kind names one asset slot of an index; its extension is the storage suffix.
type Kind struct {
	Ext   string
	Class Class
}

func (k Kind) String() string {
	return k.Ext
}

var (
	KindHTML = Kind{Ext: "html", Class: ClassText}
	KindPNG  = Kind{Ext: "png", Class: ClassBinary}
	KindJPG  = Kind{Ext: "jpg", Class: ClassBinary}
	KindPDF  = Kind{Ext: "pdf", Class: ClassBinary}
	KindJSON = Kind{Ext: "json", Class: ClassStructured}
)

// Kinds lists every kind an index can own.
var Kinds = []Kind{KindHTML, KindPNG, KindJPG, KindPDF, KindJSON}

// Store is the has/load/save contract of the cache.
type Store interface {
	Has(index types.Index, kind Kind) bool
	Load(index types.Index, kind Kind) ([]byte, error)
	Save(index types.Index, kind Kind, data []byte) error
	Remove(index types.Index, kind Kind) error
	// Path is where the asset lives (or would live); renderers open it directly.
	Path(index types.Index, kind Kind) string
}

// Error represents a failure reading or writing an asset.
type Error struct {
	Index   types.Index
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("asset error for %s.%s: %s: %v", e.Index, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("asset error for %s.%s: %s", e.Index, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// FileStore keeps assets as {Dir}/{index}.{ext}. There is no manifest, checksum or expiry.
type FileStore struct {
	Dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the file path of an asset.
func (s *FileStore) Path(index types.Index, kind Kind) string {
	return filepath.Join(s.Dir, index.String()+"."+kind.Ext)
}

// Has reports whether the asset file exists.
func (s *FileStore) Has(index types.Index, kind Kind) bool {
	info, err := os.Stat(s.Path(index, kind))
	return err == nil && info.Mode().IsRegular()
}

// Load reads an asset, returning ErrMiss when it does not exist.
func (s *FileStore) Load(index types.Index, kind Kind) ([]byte, error) {
	data, err := os.ReadFile(s.Path(index, kind))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMiss
		}
		return nil, &Error{Index: index, Kind: kind, Message: "failed to read asset", Cause: err}
	}
	return data, nil
}

// Save writes an asset through a temp file and rename; a partial write never becomes visible as a hit.
func (s *FileStore) Save(index types.Index, kind Kind, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return &Error{Index: index, Kind: kind, Message: "failed to create asset directory", Cause: err}
	}

	f, err := os.CreateTemp(s.Dir, "."+index.String()+"-*."+kind.Ext+".tmp")
	if err != nil {
		return &Error{Index: index, Kind: kind, Message: "failed to create temp file", Cause: err}
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return &Error{Index: index, Kind: kind, Message: "failed to write asset", Cause: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return &Error{Index: index, Kind: kind, Message: "failed to close asset", Cause: err}
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return &Error{Index: index, Kind: kind, Message: "failed to set asset permissions", Cause: err}
	}
	if err := os.Rename(tmp, s.Path(index, kind)); err != nil {
		_ = os.Remove(tmp)
		return &Error{Index: index, Kind: kind, Message: "failed to move asset into place", Cause: err}
	}
	return nil
}

// Remove deletes an asset. Removing a missing asset is not an error.
func (s *FileStore) Remove(index types.Index, kind Kind) error {
	if err := os.Remove(s.Path(index, kind)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &Error{Index: index, Kind: kind, Message: "failed to remove asset", Cause: err}
	}
	return nil
}
