// Package qa wires the retrieval pipeline together: one question in, one
// grounded answer with citations out.
package qa

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paperchat/paperchat/config"
	"github.com/paperchat/paperchat/docstore"
	"github.com/paperchat/paperchat/internal/chunker"
	"github.com/paperchat/paperchat/internal/citation"
	"github.com/paperchat/paperchat/internal/index"
	"github.com/paperchat/paperchat/internal/prompt"
	"github.com/paperchat/paperchat/models"
	"github.com/paperchat/paperchat/provider"
)

// Stage names the pipeline steps, used for logging. Any stage can fail; no
// stage is retried.
type Stage string

const (
	StageIdle                Stage = "idle"
	StageChunkingDocument    Stage = "chunking_document"
	StageEmbeddingDocuments  Stage = "embedding_documents"
	StageEmbeddingQuery      Stage = "embedding_query"
	StageSearching           Stage = "searching"
	StagePromptBuilding      Stage = "prompt_building"
	StageGenerating          Stage = "generating"
	StageExtractingCitations Stage = "extracting_citations"
	StageDone                Stage = "done"
)

var stagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "paperchat_pipeline_stages_total",
	Help: "Pipeline stages entered, labelled by stage name.",
}, []string{"stage"})

// Result is a question's answer with its grounding evidence.
type Result struct {
	Answer    string            `json:"answer"`
	Citations []models.Citation `json:"citations"`
}

// GeneratorFactory and EmbedderFactory build provider clients from a
// per-request config. Tests substitute fakes here.
type (
	GeneratorFactory func(models.ProviderConfig) (provider.Generator, error)
	EmbedderFactory  func(models.ProviderConfig) (provider.Embedder, error)
)

// Orchestrator runs the question-answering pipeline. It holds no state across
// questions: chunks and the similarity index are rebuilt for every request,
// so changed chunking parameters can never leave a stale index behind.
type Orchestrator struct {
	store        docstore.Store
	chunking     config.ChunkingConfig
	defaultTopK  int
	logger       *log.Logger
	newGenerator GeneratorFactory
	newEmbedder  EmbedderFactory
}

// NewOrchestrator creates an orchestrator backed by the real provider clients.
func NewOrchestrator(store docstore.Store, cfg *config.Config, logger *log.Logger) *Orchestrator {
	providers := cfg.Providers
	return &Orchestrator{
		store:       store,
		chunking:    cfg.Chunking,
		defaultTopK: cfg.Retrieval.TopK,
		logger:      logger,
		newGenerator: func(pc models.ProviderConfig) (provider.Generator, error) {
			return provider.NewGenerator(pc, providers)
		},
		newEmbedder: func(pc models.ProviderConfig) (provider.Embedder, error) {
			return provider.NewEmbedder(pc, providers)
		},
	}
}

// WithFactories overrides the provider factories; used by tests to inject
// fake backends.
func (o *Orchestrator) WithFactories(g GeneratorFactory, e EmbedderFactory) *Orchestrator {
	o.newGenerator = g
	o.newEmbedder = e
	return o
}

// Ask answers a question about a stored document. Each step either succeeds
// and advances or fails the whole request with a typed error; nothing is
// retried and errors are never downgraded.
func (o *Orchestrator) Ask(ctx context.Context, documentID, question string, pc models.ProviderConfig, topK int) (Result, error) {
	if topK <= 0 {
		topK = o.defaultTopK
	}

	doc, err := o.store.Get(ctx, documentID)
	if err != nil {
		return Result{}, err
	}

	// Both clients are built before any network call so credential problems
	// (including a missing auxiliary embedding key) fail fast.
	embedder, err := o.newEmbedder(pc)
	if err != nil {
		return Result{}, err
	}
	generator, err := o.newGenerator(pc)
	if err != nil {
		return Result{}, err
	}

	o.stage(StageChunkingDocument, documentID)
	chunks, err := chunker.NewChunker(o.chunking.Size, o.chunking.Overlap, o.logger).Chunk(doc.Pages)
	if err != nil {
		if empty, ok := err.(*models.EmptyDocumentError); ok {
			empty.DocumentID = documentID
		}
		return Result{}, err
	}

	o.stage(StageEmbeddingDocuments, documentID)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return Result{}, err
	}

	ix, err := index.New(chunks, vectors)
	if err != nil {
		return Result{}, &models.EmbeddingProviderError{Message: err.Error()}
	}

	o.stage(StageEmbeddingQuery, documentID)
	queryVec, err := embedder.EmbedQuery(ctx, question)
	if err != nil {
		return Result{}, err
	}

	o.stage(StageSearching, documentID)
	scored := ix.Search(queryVec, topK)

	o.stage(StagePromptBuilding, documentID)
	grounding := prompt.Assemble(question, scored)

	o.stage(StageGenerating, documentID)
	answer, err := generator.Generate(ctx, grounding)
	if err != nil {
		return Result{}, err
	}

	o.stage(StageExtractingCitations, documentID)
	citations := citation.Extract(answer, scored, question)

	o.stage(StageDone, documentID)
	return Result{Answer: answer, Citations: citations}, nil
}

func (o *Orchestrator) stage(s Stage, documentID string) {
	stagesTotal.WithLabelValues(string(s)).Inc()
	if o.logger != nil {
		o.logger.Printf("document %s: %s", documentID, s)
	}
}
