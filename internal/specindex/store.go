package specindex

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite cache of chunk embeddings keyed by document content
// hash. It only ever serves complete corpora: a partial hit counts as a
// miss, because chunk boundaries depend on the chunking config.
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens the cache database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		doc_hash TEXT NOT NULL,
		chunk_id TEXT NOT NULL,
		vector BLOB NOT NULL,
		PRIMARY KEY (doc_hash, chunk_id)
	)`)
	return err
}

// Load returns the cached vectors for the given chunk ids, in id order.
// The second return is false when any chunk is missing.
func (s *Store) Load(docHash string, chunkIDs []string) ([][]float32, bool, error) {
	rows, err := s.db.Query("SELECT chunk_id, vector FROM embeddings WHERE doc_hash = ?", docHash)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	cached := make(map[string][]float32)
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, false, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, false, err
		}
		cached[id] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	vectors := make([][]float32, len(chunkIDs))
	for i, id := range chunkIDs {
		vec, ok := cached[id]
		if !ok {
			return nil, false, nil
		}
		vectors[i] = vec
	}
	return vectors, true, nil
}

// Save upserts the vectors for one document in a single transaction.
func (s *Store) Save(docHash string, chunkIDs []string, vectors [][]float32) error {
	if len(chunkIDs) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunkIDs), len(vectors))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO embeddings (doc_hash, chunk_id, vector) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, id := range chunkIDs {
		if _, err := stmt.Exec(docHash, id, encodeVector(vectors[i])); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func encodeVector(vec []float32) []byte {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, vec)
	return buf.Bytes()
}

func decodeVector(blob []byte) ([]float32, error) {
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec); err != nil {
		return nil, err
	}
	return vec, nil
}
