package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"assistant/internal/embeddings"
)

// PostgresStore keeps the index in a pgvector table and searches it in the database.
type PostgresStore struct {
	db   *sql.DB
	dims int
}

func NewPostgres(ctx context.Context, dsn string, dims int) (*PostgresStore, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", dims)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db, dims: dims}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// Shared reports that every replica reads the same table, so a peer's rebuild
// only needs to be loaded, not repeated.
func (s *PostgresStore) Shared() bool { return true }

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Replicas may start together; only one runs the DDL.
	const lockID = 482771903

	var acquired bool
	if err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !acquired {
		time.Sleep(2 * time.Second)
		return nil
	}
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS doc_index_meta (
			id INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			model TEXT NOT NULL,
			built_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS doc_fragments (
			id UUID PRIMARY KEY,
			ord INT NOT NULL,
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		);`, s.dims),
		`CREATE INDEX IF NOT EXISTS doc_fragments_embedding_idx
			ON doc_fragments USING hnsw (embedding vector_cosine_ops);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (Searcher, error) {
	var model string
	err := s.db.QueryRowContext(ctx, `SELECT model FROM doc_index_meta WHERE id = 1`).Scan(&model)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoIndex
	}
	if err != nil {
		return nil, fmt.Errorf("load index meta: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM doc_fragments`).Scan(&n); err != nil {
		return nil, fmt.Errorf("count fragments: %w", err)
	}
	return &pgSearcher{db: s.db, model: model, n: n}, nil
}

// saveLockID serialises Saves across replicas so the delete and insert of
// one swap never interleave with another.
const saveLockID = 482771904

// Save swaps the table contents in one transaction; searches see either the
// old or the new index.
func (s *PostgresStore) Save(ctx context.Context, model string, entries []Entry) (Searcher, error) {
	ids := make([]string, len(entries))
	ords := make([]int64, len(entries))
	sources := make([]string, len(entries))
	contents := make([]string, len(entries))
	vectors := make([]string, len(entries))
	for i, e := range entries {
		if len(e.Vector) != s.dims {
			return nil, fmt.Errorf("entry %d has %d dimensions, table expects %d", i, len(e.Vector), s.dims)
		}
		ids[i] = uuid.NewString()
		ords[i] = int64(i)
		sources[i] = e.Source
		contents[i] = e.Content
		vectors[i] = vectorToString(e.Vector)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, saveLockID); err != nil {
		return nil, fmt.Errorf("failed to acquire save lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM doc_fragments`); err != nil {
		return nil, fmt.Errorf("clear fragments: %w", err)
	}
	if len(entries) > 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO doc_fragments(id, ord, source, content, embedding)
			SELECT unnest($1::uuid[]), unnest($2::int[]), unnest($3::text[]), unnest($4::text[]), unnest($5::text[])::vector`,
			pq.Array(ids), pq.Array(ords), pq.Array(sources), pq.Array(contents), pq.Array(vectors))
		if err != nil {
			return nil, fmt.Errorf("insert fragments: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO doc_index_meta(id, model, built_at) VALUES(1, $1, now())
		ON CONFLICT (id) DO UPDATE SET model=excluded.model, built_at=excluded.built_at`, model)
	if err != nil {
		return nil, fmt.Errorf("save index meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &pgSearcher{db: s.db, model: model, n: len(entries)}, nil
}

type pgSearcher struct {
	db    *sql.DB
	model string
	n     int
}

func (p *pgSearcher) Len() int      { return p.n }
func (p *pgSearcher) Model() string { return p.model }

func (p *pgSearcher) Search(ctx context.Context, vector embeddings.Vector, k int) ([]Fragment, error) {
	if k <= 0 {
		return []Fragment{}, nil
	}
	queryVec := vectorToString(vector)
	rows, err := p.db.QueryContext(ctx, `
		SELECT content, source, 1 - (embedding <=> $1::vector) AS similarity
		FROM doc_fragments
		ORDER BY embedding <=> $1::vector, ord
		LIMIT $2`, queryVec, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Fragment, 0, k)
	for rows.Next() {
		var f Fragment
		if err := rows.Scan(&f.Content, &f.Source, &f.Score); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// vectorToString converts a Vector to pgvector text format: "[0.1,0.2,...]".
func vectorToString(v embeddings.Vector) string {
	if len(v) == 0 {
		return "[]"
	}
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
