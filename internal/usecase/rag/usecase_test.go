package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leadforge/assessment-backend/internal/entity"
	"github.com/leadforge/assessment-backend/internal/integration/embedding"
	"github.com/leadforge/assessment-backend/internal/integration/llm"
	"github.com/leadforge/assessment-backend/internal/vectorstore"
)

type stubIndex struct {
	hits  []entity.ScoredChunk
	added []entity.DocumentChunk
}

func (s *stubIndex) AddChunks(_ context.Context, chunks []entity.DocumentChunk) error {
	s.added = append(s.added, chunks...)
	return nil
}

func (s *stubIndex) Search(_ context.Context, _ string, _ []float32, _ int, _ float32) ([]entity.ScoredChunk, error) {
	return s.hits, nil
}

type stubChat struct {
	calls int
	reply string
}

func (s *stubChat) Answer(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.reply, nil
}

type memoryChatRepo struct {
	messages []*entity.ChatMessage
}

func (r *memoryChatRepo) CreateMessage(_ context.Context, message entity.ChatMessage) (*entity.ChatMessage, error) {
	message.ID = uuid.New().String()
	message.CreatedAt = time.Now()
	stored := message
	r.messages = append(r.messages, &stored)
	return &stored, nil
}

func (r *memoryChatRepo) GetRecentMessages(_ context.Context, sessionID string, limit int) ([]*entity.ChatMessage, error) {
	var recent []*entity.ChatMessage
	for i := len(r.messages) - 1; i >= 0 && len(recent) < limit; i-- {
		if r.messages[i].SessionID == sessionID {
			recent = append(recent, r.messages[i])
		}
	}
	return recent, nil
}

func newTestRequest() entity.ChatRequest {
	return entity.ChatRequest{
		Query:     "What is the refund policy?",
		TenantID:  "acme-corp",
		SessionID: uuid.New().String(),
	}
}

func TestAnswer_RefusesWhenNothingRetrieved(t *testing.T) {
	index := &stubIndex{}
	chat := &stubChat{reply: "should not be called"}
	repo := &memoryChatRepo{}

	uc := NewUsecase(index, embedding.NewMockConnector(64, zap.NewNop()), chat, repo, t.TempDir())

	result, err := uc.Answer(context.Background(), newTestRequest())
	require.NoError(t, err)

	assert.Equal(t, RefusalAnswer, result.Answer)
	assert.True(t, result.Refusal)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Sources)

	// The model is never consulted and nothing is persisted on refusal.
	assert.Zero(t, chat.calls)
	assert.Empty(t, repo.messages)
}

func TestAnswer_GeneratesAndPersistsExchange(t *testing.T) {
	index := &stubIndex{hits: []entity.ScoredChunk{
		{Chunk: entity.DocumentChunk{Content: "Refunds within 30 days.", Source: "policy.md"}, Score: 0.9137},
		{Chunk: entity.DocumentChunk{Content: "Contact billing for refunds.", Source: "policy.md"}, Score: 0.71},
		{Chunk: entity.DocumentChunk{Content: "Our office hours.", Source: "faq.md"}, Score: 0.52},
	}}
	chat := &stubChat{reply: "Refunds are accepted within 30 days."}
	repo := &memoryChatRepo{}

	uc := NewUsecase(index, embedding.NewMockConnector(64, zap.NewNop()), chat, repo, t.TempDir())

	req := newTestRequest()
	result, err := uc.Answer(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, chat.reply, result.Answer)
	assert.False(t, result.Refusal)
	assert.Equal(t, 0.914, result.Confidence, "confidence is the top score rounded to 3 decimals")
	assert.Equal(t, []string{"policy.md", "faq.md"}, result.Sources, "sources deduplicated in relevance order")
	assert.Equal(t, 1, chat.calls)

	require.Len(t, repo.messages, 2)
	assert.Equal(t, entity.ChatRoleUser, repo.messages[0].Role)
	assert.Equal(t, req.Query, repo.messages[0].Content)
	assert.Nil(t, repo.messages[0].Confidence)
	assert.Equal(t, entity.ChatRoleAssistant, repo.messages[1].Role)
	require.NotNil(t, repo.messages[1].Confidence)
	assert.Equal(t, 0.914, *repo.messages[1].Confidence)
}

func TestAnswer_DetectsModelRefusal(t *testing.T) {
	index := &stubIndex{hits: []entity.ScoredChunk{
		{Chunk: entity.DocumentChunk{Content: "Unrelated text.", Source: "a.md"}, Score: 0.5},
	}}
	chat := &stubChat{reply: "Sorry, I DON'T have information about that in our company documents."}
	repo := &memoryChatRepo{}

	uc := NewUsecase(index, embedding.NewMockConnector(64, zap.NewNop()), chat, repo, t.TempDir())

	result, err := uc.Answer(context.Background(), newTestRequest())
	require.NoError(t, err)
	assert.True(t, result.Refusal, "refusal marker matched case-insensitively")
}

func TestAnswer_TenantIsolation(t *testing.T) {
	index, backend, err := vectorstore.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()
	defer index.Close()

	embedder := embedding.NewMockConnector(64, zap.NewNop())
	ctx := context.Background()

	// The mock embedder maps identical text to identical vectors, so indexing
	// the query text itself guarantees a perfect-score hit for acme-corp.
	req := newTestRequest()
	vectors, err := embedder.EmbedDocuments(ctx, []string{req.Query})
	require.NoError(t, err)

	err = index.AddChunks(ctx, []entity.DocumentChunk{{
		Content:  req.Query,
		Source:   "policy.md",
		TenantID: "acme-corp",
		Vector:   vectors[0],
	}})
	require.NoError(t, err)

	chat := &stubChat{reply: "Grounded answer."}
	uc := NewUsecase(index, embedder, chat, &memoryChatRepo{}, t.TempDir())

	result, err := uc.Answer(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.Refusal)
	assert.Equal(t, 1.0, result.Confidence)

	other := req
	other.TenantID = "globex"
	result, err = uc.Answer(ctx, other)
	require.NoError(t, err)
	assert.True(t, result.Refusal, "another tenant must not see acme-corp chunks")
}

func TestAnswer_HistoryInPrompt(t *testing.T) {
	index := &stubIndex{hits: []entity.ScoredChunk{
		{Chunk: entity.DocumentChunk{Content: "ctx", Source: "a.md"}, Score: 0.8},
	}}
	repo := &memoryChatRepo{}
	uc := NewUsecase(index, embedding.NewMockConnector(64, zap.NewNop()), &stubChat{reply: "first"}, repo, t.TempDir())

	req := newTestRequest()
	_, err := uc.Answer(context.Background(), req)
	require.NoError(t, err)

	history, err := repo.GetRecentMessages(context.Background(), req.SessionID, historyLimit)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Repository order is newest first; the prompt reverses it.
	rendered := formatHistory(history)
	assert.Equal(t, "user: "+req.Query+"\nassistant: first", rendered)
}

func TestFormatHistory_Empty(t *testing.T) {
	assert.Equal(t, "No previous messages.", formatHistory(nil))
}

func TestIngest(t *testing.T) {
	t.Run("splits embeds and indexes documents", func(t *testing.T) {
		docsPath := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(docsPath, "handbook.txt"),
			[]byte("Our company was founded in 2019. We sell widgets to enterprises."), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(docsPath, "policy.txt"),
			[]byte("Refunds are accepted within 30 days of purchase."), 0o644))

		index := &stubIndex{}
		uc := NewUsecase(index, embedding.NewMockConnector(64, zap.NewNop()), &stubChat{}, &memoryChatRepo{}, docsPath)

		result, err := uc.Ingest(context.Background(), "acme-corp")
		require.NoError(t, err)

		assert.Equal(t, "ok", result.Status)
		assert.Equal(t, 2, result.ChunksIngested)
		assert.Equal(t, "acme-corp", result.TenantID)

		require.Len(t, index.added, 2)
		for _, chunk := range index.added {
			assert.Equal(t, "acme-corp", chunk.TenantID)
			assert.Len(t, chunk.Vector, 64)
			assert.NotEmpty(t, chunk.Content)
		}
	})

	t.Run("empty directory ingests nothing", func(t *testing.T) {
		index := &stubIndex{}
		uc := NewUsecase(index, embedding.NewMockConnector(64, zap.NewNop()), &stubChat{}, &memoryChatRepo{}, t.TempDir())

		result, err := uc.Ingest(context.Background(), "acme-corp")
		require.NoError(t, err)
		assert.Zero(t, result.ChunksIngested)
		assert.Empty(t, index.added)
	})

	t.Run("missing directory is created", func(t *testing.T) {
		docsPath := filepath.Join(t.TempDir(), "missing")
		uc := NewUsecase(&stubIndex{}, embedding.NewMockConnector(64, zap.NewNop()), &stubChat{}, &memoryChatRepo{}, docsPath)

		result, err := uc.Ingest(context.Background(), "acme-corp")
		require.NoError(t, err)
		assert.Zero(t, result.ChunksIngested)
		assert.DirExists(t, docsPath)
	})

	t.Run("missing tenant is rejected", func(t *testing.T) {
		uc := NewUsecase(&stubIndex{}, embedding.NewMockConnector(64, zap.NewNop()), &stubChat{}, &memoryChatRepo{}, t.TempDir())

		_, err := uc.Ingest(context.Background(), "")
		assert.ErrorIs(t, err, entity.ErrValidation)
	})
}

func TestIngestThenAnswer_RoundTrip(t *testing.T) {
	index, backend, err := vectorstore.NewMemoryIndex()
	require.NoError(t, err)
	defer backend.Close()
	defer index.Close()

	// The mock embedder only scores identical text as similar, so the fixture
	// document contains the exact question that will be asked.
	question := "What is the refund policy?"
	docsPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docsPath, "policy.txt"), []byte(question), 0o644))

	repo := &memoryChatRepo{}
	uc := NewUsecase(index, embedding.NewMockConnector(64, zap.NewNop()),
		llm.NewMockConnector(zap.NewNop()), repo, docsPath)

	ctx := context.Background()
	ingested, err := uc.Ingest(ctx, "acme-corp")
	require.NoError(t, err)
	require.Equal(t, 1, ingested.ChunksIngested)

	result, err := uc.Answer(ctx, entity.ChatRequest{
		Query:     question,
		TenantID:  "acme-corp",
		SessionID: uuid.New().String(),
	})
	require.NoError(t, err)

	assert.False(t, result.Refusal)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, []string{"policy.txt"}, result.Sources)
	assert.Contains(t, result.Answer, question, "the mock echoes the retrieved context")
	assert.Len(t, repo.messages, 2)
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.914, round3(0.9137))
	assert.Equal(t, 0.5, round3(0.5))
	assert.Equal(t, 1.0, round3(0.99999))
}
