package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"docqa/internal/extract"
	"docqa/internal/model"
	"docqa/internal/rag"
	"docqa/internal/session"
)

const minContentChars = 50

type DocumentStore interface {
	Create(doc *model.Document) error
}

type ConversationStore interface {
	ListByUserID(userID uint, limit int) ([]model.ConversationWithDocument, error)
}

// ConversationPublisher hands finished Q&A pairs to the async persist
// worker.
type ConversationPublisher interface {
	Publish(ctx context.Context, conv model.Conversation) error
}

// HistoryCache caches a user's joined history rows, with a dirty marker
// bridging the gap between publishing a record and the worker persisting
// it.
type HistoryCache interface {
	GetHistory(ctx context.Context, userID uint) ([]model.ConversationWithDocument, bool, error)
	SetHistory(ctx context.Context, userID uint, rows []model.ConversationWithDocument) error
	DeleteHistory(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

// WebFetcher renders a web page to plain text plus a display name.
type WebFetcher interface {
	FromURL(ctx context.Context, rawURL string) (text, name string, err error)
}

// RAGOptions carries the tunables the service needs from configuration.
type RAGOptions struct {
	ChunkSize    int
	ChunkOverlap int
	HistoryLimit int
	FetchTimeout time.Duration
}

// RAGService implements the document side of the API: ingestion, question
// answering, status, clear, and history.
type RAGService struct {
	sessions     *session.Registry
	docs         DocumentStore
	convs        ConversationStore
	publisher    ConversationPublisher
	historyCache HistoryCache
	embedder     rag.Embedder
	engine       *rag.Engine
	web          WebFetcher
	opts         RAGOptions
}

func NewRAGService(
	sessions *session.Registry,
	docs DocumentStore,
	convs ConversationStore,
	publisher ConversationPublisher,
	historyCache HistoryCache,
	embedder rag.Embedder,
	engine *rag.Engine,
	web WebFetcher,
	opts RAGOptions,
) *RAGService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = rag.DefaultChunkSize
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = rag.DefaultChunkOverlap
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 20 * time.Second
	}
	return &RAGService{
		sessions:     sessions,
		docs:         docs,
		convs:        convs,
		publisher:    publisher,
		historyCache: historyCache,
		embedder:     embedder,
		engine:       engine,
		web:          web,
		opts:         opts,
	}
}

// UploadInput carries either file bytes with a filename, or a URL. Exactly
// one of the two must be set.
type UploadInput struct {
	UserID      uint
	FileContent []byte
	Filename    string
	URL         string
}

type UploadResult struct {
	Source        string `json:"source"`
	SourceType    string `json:"source_type"`
	ContentLength int    `json:"content_length"`
	Chunks        int    `json:"chunks"`
	WordCount     int    `json:"word_count"`
}

// Upload runs the ingestion pipeline: extract, validate, chunk, index,
// then atomically replace the user's active corpus. The commit is
// all-or-nothing; a failure before the commit leaves the previous corpus
// untouched.
func (s *RAGService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	hasFile := input.Filename != "" || len(input.FileContent) > 0
	hasURL := strings.TrimSpace(input.URL) != ""
	if hasFile == hasURL {
		return nil, fmt.Errorf("%w: provide either a file or a url", ErrInvalidInput)
	}

	var (
		text       string
		sourceName string
		sourceKind string
	)
	if hasFile {
		if len(input.FileContent) == 0 {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
		}
		extracted, err := extract.FromFile(input.FileContent, input.Filename)
		if err != nil {
			return nil, err
		}
		text = extracted
		sourceName = input.Filename
		sourceKind = session.SourceFile
	} else {
		fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
		extracted, name, err := s.web.FromURL(fetchCtx, input.URL)
		if err != nil {
			return nil, err
		}
		text = extracted
		sourceName = name
		sourceKind = session.SourceURL
	}

	if len(text) < minContentChars {
		return nil, ErrContentTooShort
	}

	chunks := rag.MakeChunks(text, sourceName, sourceKind, s.opts.ChunkSize, s.opts.ChunkOverlap)

	index, err := rag.BuildIndex(ctx, s.embedder, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	corpus := &session.Corpus{
		SourceName:    sourceName,
		SourceKind:    sourceKind,
		Chunks:        chunks,
		Index:         index,
		ContentLength: len(text),
		WordCount:     len(strings.Fields(text)),
	}

	state := s.sessions.Get(input.UserID)
	state.Replace(corpus)

	// The corpus is committed at this point. A failed metadata write is a
	// logged inconsistency, not a failed upload.
	doc := &model.Document{
		UserID:     input.UserID,
		Filename:   sourceName,
		FileSize:   len([]byte(text)),
		Chunks:     len(chunks),
		WordCount:  corpus.WordCount,
		SourceType: sourceKind,
	}
	if err := s.docs.Create(doc); err != nil {
		log.Printf("persist document record failed after corpus commit: %v", err)
	} else {
		state.SetDocumentID(corpus, doc.ID)
	}

	return &UploadResult{
		Source:        sourceName,
		SourceType:    sourceKind,
		ContentLength: len(text),
		Chunks:        len(chunks),
		WordCount:     corpus.WordCount,
	}, nil
}

type AskInput struct {
	UserID   uint
	Question string
	RAGType  string
}

type AskResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Ask answers a question against the user's active corpus using the
// requested strategy and appends the exchange to the conversation log.
func (s *RAGService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	state := s.sessions.Get(input.UserID)

	var answer *rag.Answer
	var documentID uint
	err := state.View(func(c *session.Corpus) error {
		if c == nil || c.Index == nil {
			return ErrNoActiveCorpus
		}
		documentID = c.DocumentID
		result, err := s.engine.Answer(ctx, question, input.RAGType, c.Index)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		answer = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	conv := model.Conversation{
		UserID:     input.UserID,
		DocumentID: documentID,
		Question:   question,
		Answer:     answer.Text,
		RAGType:    answer.Strategy,
		CreatedAt:  time.Now(),
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.UserID)
		_ = s.historyCache.DeleteHistory(ctx, input.UserID)
	}
	if err := s.publisher.Publish(ctx, conv); err != nil {
		return nil, fmt.Errorf("enqueue conversation failed: %w", err)
	}

	return &AskResult{
		Answer:  answer.Text,
		Sources: answer.Sources,
	}, nil
}

type StatusResult struct {
	Ready         bool   `json:"ready"`
	DocumentCount int    `json:"document_count"`
	ChunkCount    int    `json:"chunk_count"`
	SourceName    string `json:"source_name,omitempty"`
	SourceType    string `json:"source_type,omitempty"`
}

// Status reports whether the user has an active corpus and its shape.
func (s *RAGService) Status(userID uint) (*StatusResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	result := &StatusResult{}
	state := s.sessions.Get(userID)
	_ = state.View(func(c *session.Corpus) error {
		if c == nil {
			return nil
		}
		result.Ready = true
		result.DocumentCount = 1
		result.ChunkCount = len(c.Chunks)
		result.SourceName = c.SourceName
		result.SourceType = c.SourceKind
		return nil
	})
	return result, nil
}

// Clear drops the user's active corpus and releases its index. Idempotent.
func (s *RAGService) Clear(userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	s.sessions.Clear(userID)
	return nil
}

// History returns the user's most recent conversations, newest first,
// joined with document metadata. Served from the cache when it is fresh.
func (s *RAGService) History(ctx context.Context, userID uint) ([]model.ConversationWithDocument, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	rows, err := s.convs.ListByUserID(userID, s.opts.HistoryLimit)
	if err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, userID, rows)
		}
	}
	return rows, nil
}
