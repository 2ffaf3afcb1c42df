package lexical

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // pure-Go driver, avoids cgo

	"github.com/vectorkit/vectorkit/internal/apperrors"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	dataset_id TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	content    TEXT NOT NULL,
	PRIMARY KEY (dataset_id, doc_id)
);
`

// SQLiteStore persists the document corpus a TFIDFIndex is built from, so
// a restart can reconstruct a dataset's lexical index without re-scanning
// every row through storage. The index structures themselves (postings,
// document frequencies) stay in memory and are rebuilt from the persisted
// corpus; only the corpus survives a process restart.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if absent) a sqlite database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.IndexingError("failed to open lexical store", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.IndexingError("failed to initialize lexical store schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Replace overwrites datasetID's persisted corpus with docs, atomically
// within a single transaction.
func (s *SQLiteStore) Replace(ctx context.Context, datasetID string, docs []Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.IndexingError("failed to begin lexical store transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE dataset_id = ?`, datasetID); err != nil {
		return apperrors.IndexingError("failed to clear persisted corpus", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (dataset_id, doc_id, content) VALUES (?, ?, ?)`)
	if err != nil {
		return apperrors.IndexingError("failed to prepare corpus insert", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, datasetID, d.ID, d.Content); err != nil {
			return apperrors.IndexingError("failed to persist document", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperrors.IndexingError("failed to commit lexical store transaction", err)
	}
	return nil
}

// Load returns datasetID's persisted corpus, or (nil, false) if nothing
// has been persisted for it yet.
func (s *SQLiteStore) Load(ctx context.Context, datasetID string) ([]Document, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, content FROM documents WHERE dataset_id = ?`, datasetID)
	if err != nil {
		return nil, false, apperrors.IndexingError("failed to query persisted corpus", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Content); err != nil {
			return nil, false, apperrors.IndexingError("failed to scan persisted document", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, false, apperrors.IndexingError("failed to read persisted corpus", err)
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	return docs, true, nil
}

// Delete removes datasetID's persisted corpus entirely.
func (s *SQLiteStore) Delete(ctx context.Context, datasetID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE dataset_id = ?`, datasetID); err != nil {
		return apperrors.IndexingError("failed to delete persisted corpus", err)
	}
	return nil
}
