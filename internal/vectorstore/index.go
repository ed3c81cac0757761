package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/leadforge/assessment-backend/internal/entity"
	"go.uber.org/zap"
)

// Index stores embedded document chunks and answers tenant-scoped similarity
// queries. It is constructed once at process start and shared by all
// requests; badger transactions serialize batch writes against readers.
type Index struct {
	backend *Backend
	seq     *badger.Sequence
	logger  *zap.Logger
}

// storedChunk is the on-disk representation of a chunk.
type storedChunk struct {
	Content  string    `json:"content"`
	Source   string    `json:"source"`
	TenantID string    `json:"tenant_id"`
	Vector   []float32 `json:"vector"`
}

// NewIndex creates a chunk index on top of an open backend.
func NewIndex(backend *Backend, logger *zap.Logger) (*Index, error) {
	seq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, fmt.Errorf("get chunk sequence: %w", err)
	}

	return &Index{
		backend: backend,
		seq:     seq,
		logger:  logger,
	}, nil
}

// Close releases the ID sequence. The backend is closed separately by its owner.
func (i *Index) Close() error {
	return i.seq.Release()
}

// AddChunks writes a batch of chunks in a single transaction. Vectors are
// normalized on write so searches can use a plain dot product.
func (i *Index) AddChunks(ctx context.Context, chunks []entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	err := i.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			id, err := i.seq.Next()
			if err != nil {
				return fmt.Errorf("next chunk id: %w", err)
			}

			record := storedChunk{
				Content:  chunk.Content,
				Source:   chunk.Source,
				TenantID: chunk.TenantID,
				Vector:   Normalize(chunk.Vector),
			}

			value, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("marshal chunk: %w", err)
			}

			if err := tx.Set(makeChunkKey(chunk.TenantID, id), value); err != nil {
				return fmt.Errorf("set chunk: %w", err)
			}
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	i.logger.Info("chunks indexed", zap.Int("count", len(chunks)))
	return nil
}

// Search returns up to limit chunks of the given tenant whose similarity to
// the query vector is at least minScore, ordered by score descending. The
// scan is restricted to the tenant's key prefix and every record's stored
// tenant is checked, so results can never contain another tenant's chunks.
func (i *Index) Search(ctx context.Context, tenantID string, vector []float32, limit int, minScore float32) ([]entity.ScoredChunk, error) {
	query := Normalize(vector)
	var results []entity.ScoredChunk

	err := i.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTenantPrefix(tenantID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record storedChunk
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("unmarshal chunk: %w", err)
			}

			// The key prefix narrows the scan, but a tenant ID containing the
			// separator (e.g. "acme:evil") shares the prefix of "acme". The
			// stored tenant is authoritative.
			if record.TenantID != tenantID {
				continue
			}

			if len(record.Vector) == 0 {
				continue
			}

			// Cosine similarity: dot product of normalized vectors.
			score := dotProduct(query, record.Vector)
			if score >= minScore {
				results = append(results, entity.ScoredChunk{
					Chunk: entity.DocumentChunk{
						Content:  record.Content,
						Source:   record.Source,
						TenantID: record.TenantID,
						Vector:   record.Vector,
					},
					Score: score,
				})
			}
		}

		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b entity.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}
