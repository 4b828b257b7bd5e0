// Package research is clipper's core: it turns URLs into a queryable
// knowledge base and answers questions grounded in what it ingested.
package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/clipperhq/clipper/pkg/embeddings"
	"github.com/clipperhq/clipper/pkg/fetch"
	"github.com/clipperhq/clipper/pkg/knowledge"
	"github.com/clipperhq/clipper/pkg/llm"
	"github.com/clipperhq/clipper/pkg/notify"
	"github.com/clipperhq/clipper/pkg/notify/nop"
	"github.com/clipperhq/clipper/pkg/vector"
	vectorutils "github.com/clipperhq/clipper/pkg/vector/utils"
)

// Session holds one knowledge base and everything needed to rebuild and
// query it. Ingest replaces the knowledge base wholesale; Retrieve and
// Answer read whichever build is current.
//
// All methods are safe for concurrent use. Questions asked while an ingest
// is running are answered against the previous build.
type Session struct {
	splitter *knowledge.Splitter
	fetcher  fetch.Fetcher
	embedder embeddings.Embedder
	client   llm.Client
	factory  vectorutils.Factory
	logger   *slog.Logger

	topK        int
	parallelism int

	mu         sync.RWMutex
	index      vector.Driver
	chunkCount int
}

// SessionOpts carries the collaborators and configuration for NewSession.
type SessionOpts struct {
	Config   Config
	Fetcher  fetch.Fetcher
	Embedder embeddings.Embedder
	Client   llm.Client
	Factory  vectorutils.Factory
	Logger   *slog.Logger
}

// NewSession validates the configuration and creates an empty session.
// The session is not ready to answer questions until the first successful
// Ingest.
func NewSession(o *SessionOpts) (*Session, error) {
	chunkSize := o.Config.ChunkSize
	chunkOverlap := o.Config.ChunkOverlap
	if chunkSize == 0 {
		chunkSize = knowledge.DefaultChunkSize
		if chunkOverlap == 0 {
			chunkOverlap = knowledge.DefaultChunkOverlap
		}
	}

	splitter, err := knowledge.NewSplitter(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}

	topK := o.Config.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK < 0 {
		return nil, fmt.Errorf("%w: top-k must be positive", knowledge.ErrConfiguration)
	}

	parallelism := o.Config.Parallelism
	if parallelism == 0 {
		parallelism = DefaultParallelism
	}
	if parallelism < 0 {
		return nil, fmt.Errorf("%w: parallelism must be positive", knowledge.ErrConfiguration)
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		splitter:    splitter,
		fetcher:     o.Fetcher,
		embedder:    o.Embedder,
		client:      o.Client,
		factory:     o.Factory,
		logger:      logger,
		topK:        topK,
		parallelism: parallelism,
	}, nil
}

// Ingest fetches the URLs, chunks and embeds their content, and replaces the
// session's knowledge base with the result. The replacement is all or
// nothing: any fetch or embedding failure leaves the previous knowledge base
// untouched.
func (s *Session) Ingest(ctx context.Context, urls []string, n notify.Notifier) (*notify.IngestSummary, error) {
	if n == nil {
		n = nop.NewNotifier()
	}

	start := time.Now()

	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if t := strings.TrimSpace(u); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: no URLs", knowledge.ErrEmptyInput)
	}

	docs := make([]knowledge.Document, 0, len(cleaned))
	for _, u := range cleaned {
		doc, err := s.fetcher.Fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	chunks := s.splitter.Split(docs)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no readable content", knowledge.ErrEmptyInput)
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	driver, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	vdocs := make([]vector.Document, len(chunks))
	for i, c := range chunks {
		vdocs[i] = vector.Document{
			ID:        c.ID,
			SourceURL: c.SourceURL,
			Text:      c.Text,
			Sequence:  c.Sequence,
			Embedding: vectors[i],
		}
	}

	if err := driver.Add(ctx, vdocs); err != nil {
		driver.Close()
		return nil, fmt.Errorf("populating index: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = driver
	s.chunkCount = len(chunks)
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("closing previous index", "error", err)
		}
	}

	summary := &notify.IngestSummary{
		URLs:       cleaned,
		ChunkCount: len(chunks),
		Duration:   time.Since(start),
	}

	if err := n.IngestComplete(ctx, summary); err != nil {
		s.logger.Warn("notifying ingest completion", "error", err)
	}

	s.logger.Info("knowledge base replaced",
		"urls", len(cleaned),
		"chunks", len(chunks),
		"duration", summary.Duration,
	)

	return summary, nil
}

// embedChunks embeds every chunk, a batch at a time, with a bounded number
// of concurrent embedding calls. The first failure cancels the rest.
func (s *Session) embedChunks(ctx context.Context, chunks []knowledge.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type span struct{ start, end int }
	batches := make(chan span)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)

	for range s.parallelism {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range batches {
				texts := make([]string, 0, b.end-b.start)
				for _, c := range chunks[b.start:b.end] {
					texts = append(texts, c.Text)
				}

				vecs, err := s.embedder.EmbedBatch(ctx, texts)
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					errMu.Unlock()
					continue
				}

				copy(vectors[b.start:b.end], vecs)
			}
		}()
	}

feed:
	for start := 0; start < len(chunks); start += embedBatchSize {
		b := span{start: start, end: min(start+embedBatchSize, len(chunks))}
		select {
		case batches <- b:
		case <-ctx.Done():
			break feed
		}
	}
	close(batches)
	wg.Wait()

	if firstErr != nil {
		if errors.Is(firstErr, embeddings.ErrEmbedding) {
			return nil, firstErr
		}
		return nil, fmt.Errorf("%w: %v", embeddings.ErrEmbedding, firstErr)
	}

	// A parent cancellation can end the feed without any worker recording
	// an error.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// Retrieve embeds the query and returns the k most similar chunks, best
// first. A k of zero means the session's configured top-k. It fails with
// knowledge.ErrNotReady before the first successful Ingest.
func (s *Session) Retrieve(ctx context.Context, query string, k int) ([]knowledge.RankedChunk, error) {
	if k == 0 {
		k = s.topK
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: top-k must be positive", knowledge.ErrConfiguration)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", knowledge.ErrEmptyInput)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	// The read lock is held across the query so a concurrent Ingest cannot
	// close this index out from under it.
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return nil, knowledge.ErrNotReady
	}

	results, err := s.index.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	ranked := make([]knowledge.RankedChunk, len(results))
	for i, r := range results {
		ranked[i] = knowledge.RankedChunk{
			Chunk: knowledge.Chunk{
				ID:        r.ID,
				Text:      r.Text,
				SourceURL: r.SourceURL,
				Sequence:  r.Sequence,
			},
			Score: r.Score,
		}
	}

	return ranked, nil
}

// Answer is a complete answered question: the generated text, the source
// URLs it drew on, and the retrieved chunks behind it.
type Answer struct {
	Text    string                  `json:"text"`
	Sources []string                `json:"sources"`
	Chunks  []knowledge.RankedChunk `json:"chunks,omitempty"`
}

// Answer retrieves context for the question and streams a grounded answer,
// delivering each token to the notifier as it arrives. The citations on the
// returned Answer come from the same retrieved chunks the model saw.
//
// A failure partway through streaming returns a *GenerationError carrying
// the tokens that made it out.
func (s *Session) Answer(ctx context.Context, question string, n notify.Notifier) (*Answer, error) {
	if n == nil {
		n = nop.NewNotifier()
	}

	ranked, err := s.Retrieve(ctx, question, 0)
	if err != nil {
		return nil, err
	}

	stream, err := s.client.Chat(ctx, buildMessages(question, ranked))
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	defer stream.Close()

	var text strings.Builder
	for {
		tok, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &GenerationError{Partial: text.String(), Err: err}
		}

		text.WriteString(tok.Text)

		if err := n.AnswerToken(ctx, tok.Text); err != nil {
			return nil, &GenerationError{Partial: text.String(), Err: err}
		}
	}

	if text.Len() == 0 {
		return nil, &GenerationError{Err: fmt.Errorf("%w: empty completion", llm.ErrGeneration)}
	}

	plain := make([]knowledge.Chunk, len(ranked))
	for i, c := range ranked {
		plain[i] = c.Chunk
	}
	sources := knowledge.Sources(plain)

	if err := n.AnswerComplete(ctx, sources); err != nil {
		s.logger.Warn("notifying answer completion", "error", err)
	}

	return &Answer{
		Text:    text.String(),
		Sources: sources,
		Chunks:  ranked,
	}, nil
}

// Ready reports whether the session has a knowledge base to answer from.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

// ChunkCount returns the number of chunks in the current knowledge base.
func (s *Session) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunkCount
}

// Close tears down the knowledge base and every collaborator the session
// owns.
func (s *Session) Close() error {
	s.mu.Lock()
	index := s.index
	s.index = nil
	s.chunkCount = 0
	s.mu.Unlock()

	var errs []error
	if index != nil {
		errs = append(errs, index.Close())
	}
	if s.fetcher != nil {
		errs = append(errs, s.fetcher.Close())
	}
	if s.embedder != nil {
		errs = append(errs, s.embedder.Close())
	}
	if s.client != nil {
		errs = append(errs, s.client.Close())
	}

	return errors.Join(errs...)
}
