package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"

	"github.com/vectorkit/vectorkit/internal/model"
)

// columnSet is the in-memory columnar representation of a dataset's live
// rows: one parallel slice per attribute. On disk the whole set is stored
// gob-encoded in a single file, columns/data.gob. Row i across every slice
// describes one Vector.
type columnSet struct {
	ID          []string
	DocumentID  []string
	ChunkID     []string
	ChunkIndex  []int
	ChunkCount  []int
	Embedding   [][]float32
	Content     []string
	ContentHash []string
	ContentType []string
	Language    []string
	Model       []string
	MetadataRaw [][]byte // gob-encoded map[string]any, column-stored like every other attribute
	CreatedAt   []time.Time
	UpdatedAt   []time.Time
}

func newColumnSet() *columnSet {
	return &columnSet{}
}

func (c *columnSet) len() int {
	return len(c.ID)
}

// append adds v as a new row at the end of every column.
func (c *columnSet) append(v model.Vector) error {
	metaRaw, err := encodeMetadata(v.Metadata)
	if err != nil {
		return err
	}
	c.ID = append(c.ID, v.ID)
	c.DocumentID = append(c.DocumentID, v.DocumentID)
	c.ChunkID = append(c.ChunkID, v.ChunkID)
	c.ChunkIndex = append(c.ChunkIndex, v.ChunkIndex)
	c.ChunkCount = append(c.ChunkCount, v.ChunkCount)
	c.Embedding = append(c.Embedding, v.Values)
	c.Content = append(c.Content, v.Content)
	c.ContentHash = append(c.ContentHash, v.ContentHash)
	c.ContentType = append(c.ContentType, v.ContentType)
	c.Language = append(c.Language, v.Language)
	c.Model = append(c.Model, v.Model)
	c.MetadataRaw = append(c.MetadataRaw, metaRaw)
	c.CreatedAt = append(c.CreatedAt, v.CreatedAt)
	c.UpdatedAt = append(c.UpdatedAt, v.UpdatedAt)
	return nil
}

// rowAt materializes row i as a model.Vector.
func (c *columnSet) rowAt(i int, datasetID string) (model.Vector, error) {
	meta, err := decodeMetadata(c.MetadataRaw[i])
	if err != nil {
		return model.Vector{}, err
	}
	return model.Vector{
		ID:          c.ID[i],
		DatasetID:   datasetID,
		DocumentID:  c.DocumentID[i],
		ChunkID:     c.ChunkID[i],
		ChunkIndex:  c.ChunkIndex[i],
		ChunkCount:  c.ChunkCount[i],
		Values:      c.Embedding[i],
		Content:     c.Content[i],
		ContentHash: c.ContentHash[i],
		ContentType: c.ContentType[i],
		Language:    c.Language[i],
		Model:       c.Model[i],
		Metadata:    meta,
		CreatedAt:   c.CreatedAt[i],
		UpdatedAt:   c.UpdatedAt[i],
	}, nil
}

// deleteAt removes row i from every column, preserving relative order.
func (c *columnSet) deleteAt(i int) {
	c.ID = append(c.ID[:i], c.ID[i+1:]...)
	c.DocumentID = append(c.DocumentID[:i], c.DocumentID[i+1:]...)
	c.ChunkID = append(c.ChunkID[:i], c.ChunkID[i+1:]...)
	c.ChunkIndex = append(c.ChunkIndex[:i], c.ChunkIndex[i+1:]...)
	c.ChunkCount = append(c.ChunkCount[:i], c.ChunkCount[i+1:]...)
	c.Embedding = append(c.Embedding[:i], c.Embedding[i+1:]...)
	c.Content = append(c.Content[:i], c.Content[i+1:]...)
	c.ContentHash = append(c.ContentHash[:i], c.ContentHash[i+1:]...)
	c.ContentType = append(c.ContentType[:i], c.ContentType[i+1:]...)
	c.Language = append(c.Language[:i], c.Language[i+1:]...)
	c.Model = append(c.Model[:i], c.Model[i+1:]...)
	c.MetadataRaw = append(c.MetadataRaw[:i], c.MetadataRaw[i+1:]...)
	c.CreatedAt = append(c.CreatedAt[:i], c.CreatedAt[i+1:]...)
	c.UpdatedAt = append(c.UpdatedAt[:i], c.UpdatedAt[i+1:]...)
}

func encodeMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("storage: encode metadata: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeMetadata(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&m); err != nil {
		return nil, fmt.Errorf("storage: decode metadata: %w", err)
	}
	return m, nil
}

// columnsDir returns the columns/ subdirectory for a dataset root.
func columnsDir(datasetRoot string) string {
	return filepath.Join(datasetRoot, "columns")
}

// loadColumnSet decodes columns/data.gob under columnsDir(root). A missing
// columns directory (a freshly created, empty dataset) yields an empty set.
func loadColumnSet(root string) (*columnSet, error) {
	dir := columnsDir(root)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return newColumnSet(), nil
	}

	cs := newColumnSet()
	data, err := os.ReadFile(filepath.Join(dir, "data.gob"))
	if err != nil {
		if os.IsNotExist(err) {
			return cs, nil
		}
		return nil, fmt.Errorf("storage: read columns: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(cs); err != nil {
		return nil, fmt.Errorf("storage: decode columns: %w", err)
	}
	return cs, nil
}

// saveColumnSet atomically persists cs under columnsDir(root) using a
// temp-file-then-rename write, delegated to google/renameio rather than
// hand-rolled.
func saveColumnSet(root string, cs *columnSet) error {
	dir := columnsDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir columns: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cs); err != nil {
		return fmt.Errorf("storage: encode columns: %w", err)
	}

	t, err := renameio.TempFile("", filepath.Join(dir, "data.gob"))
	if err != nil {
		return fmt.Errorf("storage: open temp column file: %w", err)
	}
	defer t.Cleanup()

	if _, err := t.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("storage: write column data: %w", err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("storage: commit column data: %w", err)
	}
	return nil
}
