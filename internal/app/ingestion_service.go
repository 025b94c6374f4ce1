package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ragbase/internal/apperr"
	"ragbase/internal/chunking"
	"ragbase/internal/config"
	"ragbase/internal/model"
	"ragbase/internal/pkg/pdfextract"
	"ragbase/internal/pkg/secretbox"
	"ragbase/internal/provider"
	"ragbase/internal/ragconfig"
	"ragbase/internal/vectorstore"
)

var ErrDocumentNotFound = errors.New("document not found")

// Parser converts uploaded bytes into structured text via the external parse
// provider.
type Parser interface {
	Parse(ctx context.Context, cfg provider.ParseConfig, filename string, data []byte) ([]provider.ParsedDocument, error)
}

// EmbedClient is the embedding capability of the provider client.
type EmbedClient interface {
	EmbedBatch(ctx context.Context, cfg provider.EmbeddingConfig, texts []string) ([][]float32, error)
	Embed(ctx context.Context, cfg provider.EmbeddingConfig, text string) ([]float32, error)
}

// TaskProducer enqueues background work and answers status polls.
type TaskProducer interface {
	Enqueue(ctx context.Context, taskType string, payload any, priority int) (string, error)
	Status(ctx context.Context, taskID string) (*model.ProcessingTask, error)
}

// IngestPayload is the queue payload for one document ingestion run. The file
// lives in a temp path that must survive retries: it is removed here on
// success and by the consumer once a failed task has no redeliveries left.
type IngestPayload struct {
	DocumentID uint   `json:"document_id"`
	FilePath   string `json:"file_path"`
}

type IngestionService struct {
	docRepo       DocumentStore
	assistantRepo AssistantStore
	tenantRepo    TenantStore
	configs       *ragconfig.Manager
	store         vectorstore.Store
	parser        Parser
	embedClient   EmbedClient
	embedCache    *provider.EmbedCache
	sealer        *secretbox.Sealer
	producer      TaskProducer
	providers     config.ProvidersConfig
	uploadDir     string
}

type UploadInput struct {
	TenantID    uint
	AssistantID uint
	Filename    string
	Data        []byte
}

type UploadResult struct {
	Document *model.Document
	TaskID   string
}

func NewIngestionService(
	docRepo DocumentStore,
	assistantRepo AssistantStore,
	tenantRepo TenantStore,
	configs *ragconfig.Manager,
	store vectorstore.Store,
	parser Parser,
	embedClient EmbedClient,
	embedCache *provider.EmbedCache,
	sealer *secretbox.Sealer,
	producer TaskProducer,
	providers config.ProvidersConfig,
) *IngestionService {
	return &IngestionService{
		docRepo:       docRepo,
		assistantRepo: assistantRepo,
		tenantRepo:    tenantRepo,
		configs:       configs,
		store:         store,
		parser:        parser,
		embedClient:   embedClient,
		embedCache:    embedCache,
		sealer:        sealer,
		producer:      producer,
		providers:     providers,
		uploadDir:     os.TempDir(),
	}
}

// Upload registers the document in pending state and enqueues its ingestion.
// The heavy work happens in the worker; the caller gets a task id to poll.
func (s *IngestionService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	filename := strings.TrimSpace(filepath.Base(input.Filename))
	if input.TenantID == 0 || input.AssistantID == 0 || filename == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}
	assistant, err := s.assistantRepo.GetByIDAndTenantID(input.AssistantID, input.TenantID)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, ErrAssistantNotFound
	}

	doc := &model.Document{
		TenantID:    input.TenantID,
		AssistantID: input.AssistantID,
		Filename:    filename,
		Status:      model.DocumentStatusPending,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.uploadDir, "ingest-*"+filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("create upload temp file failed: %w", err)
	}
	if _, err := tmp.Write(input.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write upload temp file failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("close upload temp file failed: %w", err)
	}

	taskID, err := s.producer.Enqueue(ctx, model.TaskTypeDocumentIngest, IngestPayload{
		DocumentID: doc.ID,
		FilePath:   tmp.Name(),
	}, 5)
	if err != nil {
		os.Remove(tmp.Name())
		s.failDocument(doc.ID, fmt.Errorf("enqueue ingestion failed: %w", err))
		return nil, err
	}
	return &UploadResult{Document: doc, TaskID: taskID}, nil
}

func (s *IngestionService) TaskStatus(ctx context.Context, taskID string) (*model.ProcessingTask, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, ErrInvalidInput
	}
	return s.producer.Status(ctx, taskID)
}

func (s *IngestionService) ListDocuments(tenantID, assistantID uint) ([]model.Document, error) {
	if tenantID == 0 || assistantID == 0 {
		return nil, ErrInvalidInput
	}
	assistant, err := s.assistantRepo.GetByIDAndTenantID(assistantID, tenantID)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, ErrAssistantNotFound
	}
	return s.docRepo.ListByAssistantID(assistantID)
}

// DeleteDocument removes the document row and every chunk written under it.
func (s *IngestionService) DeleteDocument(ctx context.Context, tenantID, documentID uint) error {
	if tenantID == 0 || documentID == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docRepo.GetByIDAndTenantID(documentID, tenantID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if _, err := s.store.DeleteByFilter(ctx, vectorstore.Filter{
		AssistantID: doc.AssistantID,
		DocumentID:  doc.ID,
	}); err != nil {
		return err
	}
	return s.docRepo.Delete(doc.ID)
}

// Ingest runs the full pipeline for one uploaded document: parse, chunk,
// embed, store. The document moves to processing before the first external
// call and always terminates in indexed or error. The uploaded file is kept
// on failure so a redelivered task can run again once a transient provider
// outage clears.
func (s *IngestionService) Ingest(ctx context.Context, payload IngestPayload) error {
	doc, err := s.docRepo.GetByID(payload.DocumentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return apperr.NewNotFoundError("document")
	}

	if err := s.docRepo.SetStatus(doc.ID, model.DocumentStatusProcessing); err != nil {
		return err
	}

	if err := s.runPipeline(ctx, doc, payload.FilePath); err != nil {
		s.failDocument(doc.ID, err)
		return err
	}

	if payload.FilePath != "" {
		os.Remove(payload.FilePath)
	}
	return nil
}

func (s *IngestionService) runPipeline(ctx context.Context, doc *model.Document, filePath string) error {
	tenant, err := s.tenantRepo.GetByID(doc.TenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		return apperr.NewNotFoundError("tenant")
	}

	cfg, err := s.configs.Get(doc.AssistantID)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read uploaded file failed: %w", err)
	}

	docs, err := s.extractText(ctx, tenant, doc.Filename, data)
	if err != nil {
		return err
	}

	embedder, err := s.buildEmbedder(tenant, cfg)
	if err != nil {
		return err
	}

	splitter, err := chunking.BuildSplitter(cfg, embedder)
	if err != nil {
		return err
	}

	chunks, err := splitter.Split(ctx, docs)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return apperr.NewProviderError("chunk", "document produced no chunks", nil)
	}

	for i := range chunks {
		chunks[i].SetMeta(chunking.MetaAssistantID, strconv.FormatUint(uint64(doc.AssistantID), 10))
		chunks[i].SetMeta(chunking.MetaDocumentID, strconv.FormatUint(uint64(doc.ID), 10))
		chunks[i].SetMeta(chunking.MetaFilename, doc.Filename)
		chunks[i].ExcludeFromModelInput(chunking.IsolationKeys...)
	}

	vectors, err := s.embedChunks(ctx, embedder, chunks, cfg.Embedding.BatchSize)
	if err != nil {
		return err
	}

	nodes := make([]vectorstore.Node, len(chunks))
	for i, chunk := range chunks {
		nodes[i] = vectorstore.Node{
			AssistantID: doc.AssistantID,
			DocumentID:  doc.ID,
			Text:        chunk.Text,
			Embedding:   vectors[i],
			Metadata:    chunk.Metadata,
		}
	}
	if err := s.store.WriteNodes(ctx, nodes); err != nil {
		return err
	}

	meta := map[string]any{
		"chunk_count":       len(chunks),
		"chunking_strategy": splitter.Name(),
	}
	metaJSON, _ := json.Marshal(meta)
	return s.docRepo.SetIndexed(doc.ID, string(metaJSON))
}

// extractText prefers the in-process PDF extractor and falls back to the
// remote parse provider. Remote parsing requires the tenant's own credential;
// there is no shared fallback key.
func (s *IngestionService) extractText(ctx context.Context, tenant *model.Tenant, filename string, data []byte) ([]chunking.Document, error) {
	baseMeta := map[string]string{chunking.MetaFilename: filename}

	if pdfextract.IsPDF(filename) {
		text, err := pdfextract.ExtractText(bytes.NewReader(data))
		if err != nil {
			log.Printf("local pdf extract for %s failed, falling back to parse provider: %v", filename, err)
		} else if text != "" {
			return []chunking.Document{{Text: text, Metadata: baseMeta}}, nil
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown":
		return []chunking.Document{{Text: string(data), Metadata: baseMeta}}, nil
	}

	if !tenant.HasParseKey() {
		return nil, apperr.NewConfigurationError("credentials.parse_api_key", "document parsing requires a configured parse credential")
	}
	parseKey, err := s.sealer.Open(tenant.SealedParseKey)
	if err != nil {
		return nil, fmt.Errorf("unseal parse credential failed: %w", err)
	}

	parsed, err := s.parser.Parse(ctx, provider.ParseConfig{
		BaseURL: s.providers.ParseBaseURL,
		APIKey:  parseKey,
	}, filename, data)
	if err != nil {
		return nil, err
	}

	docs := make([]chunking.Document, 0, len(parsed))
	for _, p := range parsed {
		meta := map[string]string{chunking.MetaFilename: filename}
		for k, v := range p.Metadata {
			meta[k] = v
		}
		docs = append(docs, chunking.Document{Text: p.Text, Metadata: meta})
	}
	return docs, nil
}

// buildEmbedder binds the provider client to the tenant's embedding
// credential. A non-local provider without a stored key is refused.
func (s *IngestionService) buildEmbedder(tenant *model.Tenant, cfg ragconfig.Config) (chunkEmbedder, error) {
	if cfg.Embedding.Provider != ragconfig.ProviderLocal && !tenant.HasOpenAIKey() {
		return nil, apperr.NewConfigurationError("credentials.openai_api_key", "embedding requires a configured provider credential")
	}
	apiKey := ""
	if tenant.HasOpenAIKey() {
		key, err := s.sealer.Open(tenant.SealedOpenAIKey)
		if err != nil {
			return nil, fmt.Errorf("unseal embedding credential failed: %w", err)
		}
		apiKey = key
	}

	var embedder chunkEmbedder = &clientEmbedder{
		client: s.embedClient,
		cfg: provider.EmbeddingConfig{
			BaseURL: s.providers.OpenAIBaseURL,
			APIKey:  apiKey,
			Model:   cfg.Embedding.ModelName,
		},
	}
	if cfg.Performance.CacheEmbeddings && s.embedCache != nil {
		embedder = provider.NewCachedEmbedder(embedder, s.embedCache, cfg.Embedding.ModelName)
	}
	return embedder, nil
}

func (s *IngestionService) embedChunks(ctx context.Context, embedder chunkEmbedder, chunks []chunking.Chunk, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(texts) {
		return nil, apperr.NewProviderError("embed", "embedding count mismatch", nil)
	}
	return vectors, nil
}

func (s *IngestionService) failDocument(docID uint, cause error) {
	log.Printf("ingest document %d failed: %v", docID, cause)
	if err := s.docRepo.SetError(docID, apperr.Sanitized(cause)); err != nil {
		log.Printf("record document %d error failed: %v", docID, err)
	}
}

// chunkEmbedder is the embedding surface the pipeline needs, satisfied by both
// the bound client adapter and the cached decorator.
type chunkEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// clientEmbedder binds the shared provider client to one tenant's credential.
type clientEmbedder struct {
	client EmbedClient
	cfg    provider.EmbeddingConfig
}

func (e *clientEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.client.EmbedBatch(ctx, e.cfg, texts)
}

func (e *clientEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.cfg, text)
}
