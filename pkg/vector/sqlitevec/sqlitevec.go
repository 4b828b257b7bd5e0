// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
//
// The default database path is ":memory:", matching clipper's single-session
// knowledge base lifecycle; a file path turns the same driver into a
// disk-backed index.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/clipperhq/clipper/pkg/vector"
)

// Driver implements vector.Driver using SQLite with the sqlite-vec
// extension. KNN queries run against a vec0 virtual table declared with
// cosine distance; distances are converted to descending-similarity scores.
//
// Each driver owns a fresh pair of uuid-suffixed tables, so a new driver on
// an existing database file still starts with an empty index.
type Driver struct {
	db          *sql.DB
	logger      *slog.Logger
	chunksTable string
	vecTable    string
}

// Config holds configuration for the sqlite-vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Defaults to ":memory:" if empty.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	dbPath := c.DBPath
	if dbPath == "" {
		dbPath = ":memory:"
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", vector.ErrConnection, err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	// Per-build table names: a re-ingest on the same database file must
	// yield an empty index, never merge with a previous build's rows.
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	chunksTable := "vec_chunks_" + suffix
	vecTable := "vec_embeddings_" + suffix

	// Chunk metadata table. vec0 virtual tables use integer rowids, so the
	// mapping table provides rowids and carries the chunk's text and source.
	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE %s (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			chunk_id TEXT NOT NULL UNIQUE,
			source_url TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			text TEXT NOT NULL
		)
	`, chunksTable))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating chunks table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE %s USING vec0(embedding float[%d] distance_metric=cosine)`,
		vecTable, c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector driver initialized",
		"db_path", dbPath,
		"dimensions", c.Dimensions,
		"vec_version", vecVersion,
	)

	return &Driver{
		db:          db,
		logger:      logger,
		chunksTable: chunksTable,
		vecTable:    vecTable,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Add stores documents with their embeddings.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insertChunk := fmt.Sprintf(
		`INSERT INTO %s(chunk_id, source_url, sequence, text) VALUES (?, ?, ?, ?)`,
		d.chunksTable,
	)
	insertEmbedding := fmt.Sprintf(
		`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`,
		d.vecTable,
	)

	for _, doc := range docs {
		result, err := tx.ExecContext(ctx, insertChunk,
			doc.ID, doc.SourceURL, doc.Sequence, doc.Text,
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", doc.ID, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting rowid for chunk %s: %w", doc.ID, err)
		}

		if _, err := tx.ExecContext(ctx, insertEmbedding,
			rowID, serializeFloat32(doc.Embedding),
		); err != nil {
			return fmt.Errorf("inserting embedding for chunk %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added documents to sqlite-vec", "count", len(docs))

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	// KNN query via vec0 MATCH, joined back to the metadata table. vec0
	// permits only a single ORDER BY distance clause, so the insertion-order
	// tie-break on rowid happens in Go after scanning.
	query := fmt.Sprintf(`
		SELECT
			c.rowid,
			c.chunk_id,
			c.source_url,
			c.sequence,
			c.text,
			ve.distance
		FROM %s ve
		INNER JOIN %s c ON c.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
		ORDER BY ve.distance
	`, d.vecTable, d.chunksTable)

	rows, err := d.db.QueryContext(ctx, query, serializeFloat32(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	type scored struct {
		result   vector.QueryResult
		distance float64
		rowID    int64
	}

	var hits []scored
	for rows.Next() {
		var doc vector.Document
		var distance float64
		var rowID int64
		if err := rows.Scan(&rowID, &doc.ID, &doc.SourceURL, &doc.Sequence, &doc.Text, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		hits = append(hits, scored{
			result: vector.QueryResult{
				Document: doc,
				// Cosine distance to descending similarity.
				Score: float32(1.0 - distance),
			},
			distance: distance,
			rowID:    rowID,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].rowID < hits[j].rowID
	})

	results := make([]vector.QueryResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, h.result)
	}

	d.logger.Debug("queried sqlite-vec", "results", len(results))

	return results, nil
}

// Count reports the number of stored documents.
func (d *Driver) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, d.chunksTable)
	if err := d.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return d.db.Close()
}

var _ vector.Driver = (*Driver)(nil)
