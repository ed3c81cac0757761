package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/panjf2000/ants/v2"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/pkg/logger"
	"github.com/leadforge/assessment-backend/internal/repository"
)

const (
	chunkSize    = 800
	chunkOverlap = 120

	retrievalTopK  = 6
	scoreThreshold = 0.45
	historyLimit   = 6

	ingestWorkers = 4
)

// RefusalAnswer is the exact sentence returned when retrieval finds nothing
// above the score threshold. The model is instructed to emit the same
// sentence when the retrieved context does not cover the question.
const RefusalAnswer = "I don't have information about that in our company documents."

// refusalMarker detects refusals in model output regardless of casing or
// surrounding text.
const refusalMarker = "don't have information"

const groundingPrompt = `You are a precise assistant for %s. Answer the question using ONLY the provided context. If the context does not contain the answer, reply EXACTLY: "I don't have information about that in our company documents."

Context:
%s

Previous conversation:
%s`

// Usecase implements document ingestion and grounded question answering.
type Usecase struct {
	index    ChunkIndex
	embedder EmbeddingConnector
	chat     ChatConnector
	messages repository.ChatMessageRepository
	docsPath string
}

func NewUsecase(
	index ChunkIndex,
	embedder EmbeddingConnector,
	chat ChatConnector,
	messages repository.ChatMessageRepository,
	docsPath string,
) *Usecase {
	return &Usecase{
		index:    index,
		embedder: embedder,
		chat:     chat,
		messages: messages,
		docsPath: docsPath,
	}
}

// Ingest splits every file in the documents directory into overlapping
// chunks, embeds them and stores them in the vector index under the tenant.
// Re-running ingestion appends; it does not deduplicate.
func (u *Usecase) Ingest(ctx context.Context, tenantID string) (*entity.IngestResult, error) {
	ctx = logger.AddFields(ctx, zap.String("tenant_id", tenantID))

	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant_id is required", entity.ErrValidation)
	}

	if err := os.MkdirAll(u.docsPath, 0o755); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}

	entries, err := os.ReadDir(u.docsPath)
	if err != nil {
		return nil, fmt.Errorf("read documents directory: %w", err)
	}

	chunks, err := u.splitFiles(ctx, entries, tenantID)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		ctxzap.Warn(ctx, "no documents to ingest", zap.String("path", u.docsPath))
		return &entity.IngestResult{Status: "ok", ChunksIngested: 0, TenantID: tenantID}, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := u.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}

	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	if err := u.index.AddChunks(ctx, chunks); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "ingestion finished",
		zap.Int("files", len(entries)), zap.Int("chunks", len(chunks)))

	return &entity.IngestResult{Status: "ok", ChunksIngested: len(chunks), TenantID: tenantID}, nil
}

// splitFiles reads and splits the directory entries concurrently. Chunk
// order across files is not guaranteed, which retrieval does not depend on.
func (u *Usecase) splitFiles(ctx context.Context, entries []os.DirEntry, tenantID string) ([]entity.DocumentChunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	pool, err := ants.NewPool(ingestWorkers)
	if err != nil {
		return nil, fmt.Errorf("create ingest pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		chunks   []entity.DocumentChunk
		firstErr error
	)

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		name := entry.Name()
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			data, err := os.ReadFile(filepath.Join(u.docsPath, name))
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("read document %s: %w", name, err)
				}
				mu.Unlock()
				return
			}

			parts, err := splitter.SplitText(string(data))
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("split document %s: %w", name, err)
				}
				mu.Unlock()
				return
			}

			fileChunks := make([]entity.DocumentChunk, 0, len(parts))
			for _, part := range parts {
				if strings.TrimSpace(part) == "" {
					continue
				}
				fileChunks = append(fileChunks, entity.DocumentChunk{
					Content:  part,
					Source:   name,
					TenantID: tenantID,
				})
			}

			mu.Lock()
			chunks = append(chunks, fileChunks...)
			mu.Unlock()

			ctxzap.Debug(ctx, "document split",
				zap.String("file", name), zap.Int("chunks", len(fileChunks)))
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit ingest task: %w", submitErr)
			}
			mu.Unlock()
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return chunks, nil
}

// Answer runs the grounded answer pipeline: embed the query, retrieve
// similar chunks for the tenant, refuse when nothing scores above the
// threshold, otherwise ask the model with the chunks and recent session
// history in the prompt, then persist both sides of the exchange.
func (u *Usecase) Answer(ctx context.Context, req entity.ChatRequest) (*entity.AnswerResult, error) {
	ctx = logger.AddFields(ctx,
		zap.String("tenant_id", req.TenantID), zap.String("session_id", req.SessionID))

	vector, err := u.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	hits, err := u.index.Search(ctx, req.TenantID, vector, retrievalTopK, scoreThreshold)
	if err != nil {
		return nil, err
	}

	if len(hits) == 0 {
		ctxzap.Info(ctx, "no chunks above threshold, refusing")
		return &entity.AnswerResult{
			Answer:     RefusalAnswer,
			Confidence: 0,
			Sources:    []string{},
			Refusal:    true,
		}, nil
	}

	history, err := u.messages.GetRecentMessages(ctx, req.SessionID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: load chat history: %v", entity.ErrStorage, err)
	}

	systemPrompt := fmt.Sprintf(groundingPrompt,
		req.TenantID, joinChunks(hits), formatHistory(history))

	answer, err := u.chat.Answer(ctx, systemPrompt, req.Query)
	if err != nil {
		return nil, err
	}

	confidence := round3(hits[0].Score)
	refusal := strings.Contains(strings.ToLower(answer), refusalMarker)

	if err := u.saveExchange(ctx, req, answer, confidence); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "answer generated",
		zap.Float64("confidence", confidence),
		zap.Int("chunks", len(hits)),
		zap.Bool("refusal", refusal))

	return &entity.AnswerResult{
		Answer:     answer,
		Confidence: confidence,
		Sources:    dedupSources(hits),
		Refusal:    refusal,
	}, nil
}

func (u *Usecase) saveExchange(ctx context.Context, req entity.ChatRequest, answer string, confidence float64) error {
	_, err := u.messages.CreateMessage(ctx, entity.ChatMessage{
		SessionID: req.SessionID,
		TenantID:  req.TenantID,
		Role:      entity.ChatRoleUser,
		Content:   req.Query,
	})
	if err != nil {
		return fmt.Errorf("%w: save user message: %v", entity.ErrStorage, err)
	}

	_, err = u.messages.CreateMessage(ctx, entity.ChatMessage{
		SessionID:  req.SessionID,
		TenantID:   req.TenantID,
		Role:       entity.ChatRoleAssistant,
		Content:    answer,
		Confidence: &confidence,
	})
	if err != nil {
		return fmt.Errorf("%w: save assistant message: %v", entity.ErrStorage, err)
	}

	return nil
}
