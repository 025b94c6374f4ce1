package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ragbase/internal/model"
	"ragbase/internal/provider"
	"ragbase/internal/vectorstore"
)

// In-memory store fakes shared by the service tests.

type fakeTenantStore struct {
	tenants map[uint]*model.Tenant
}

func newFakeTenantStore(tenants ...*model.Tenant) *fakeTenantStore {
	s := &fakeTenantStore{tenants: map[uint]*model.Tenant{}}
	for _, t := range tenants {
		s.tenants[t.ID] = t
	}
	return s
}

func (s *fakeTenantStore) Create(tenant *model.Tenant) error {
	tenant.ID = uint(len(s.tenants) + 1)
	s.tenants[tenant.ID] = tenant
	return nil
}

func (s *fakeTenantStore) GetByID(id uint) (*model.Tenant, error) {
	return s.tenants[id], nil
}

func (s *fakeTenantStore) GetByEmail(email string) (*model.Tenant, error) {
	for _, t := range s.tenants {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, nil
}

func (s *fakeTenantStore) UpdateCredentials(id uint, sealedParseKey, sealedOpenAIKey string) error {
	t, ok := s.tenants[id]
	if !ok {
		return fmt.Errorf("tenant %d not found", id)
	}
	t.SealedParseKey = sealedParseKey
	t.SealedOpenAIKey = sealedOpenAIKey
	return nil
}

type fakeAssistantStore struct {
	assistants map[uint]*model.Assistant
}

func newFakeAssistantStore(assistants ...*model.Assistant) *fakeAssistantStore {
	s := &fakeAssistantStore{assistants: map[uint]*model.Assistant{}}
	for _, a := range assistants {
		s.assistants[a.ID] = a
	}
	return s
}

func (s *fakeAssistantStore) Create(assistant *model.Assistant) error {
	assistant.ID = uint(len(s.assistants) + 1)
	s.assistants[assistant.ID] = assistant
	return nil
}

func (s *fakeAssistantStore) GetByIDAndTenantID(id, tenantID uint) (*model.Assistant, error) {
	a, ok := s.assistants[id]
	if !ok || a.TenantID != tenantID {
		return nil, nil
	}
	return a, nil
}

func (s *fakeAssistantStore) GetByPublicID(publicID string) (*model.Assistant, error) {
	for _, a := range s.assistants {
		if a.PublicID == publicID {
			return a, nil
		}
	}
	return nil, nil
}

func (s *fakeAssistantStore) ListByTenantID(tenantID uint) ([]model.Assistant, error) {
	var out []model.Assistant
	for _, a := range s.assistants {
		if a.TenantID == tenantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAssistantStore) Update(assistant *model.Assistant) error {
	s.assistants[assistant.ID] = assistant
	return nil
}

func (s *fakeAssistantStore) DeleteByIDAndTenantID(id, tenantID uint) error {
	delete(s.assistants, id)
	return nil
}

type fakeDocumentStore struct {
	docs          map[uint]*model.Document
	statusHistory []string
	indexedMeta   string
	errorMessage  string
}

func newFakeDocumentStore(docs ...*model.Document) *fakeDocumentStore {
	s := &fakeDocumentStore{docs: map[uint]*model.Document{}}
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return s
}

func (s *fakeDocumentStore) Create(doc *model.Document) error {
	doc.ID = uint(len(s.docs) + 1)
	s.docs[doc.ID] = doc
	s.statusHistory = append(s.statusHistory, doc.Status)
	return nil
}

func (s *fakeDocumentStore) GetByID(id uint) (*model.Document, error) {
	return s.docs[id], nil
}

func (s *fakeDocumentStore) GetByIDAndTenantID(id, tenantID uint) (*model.Document, error) {
	d, ok := s.docs[id]
	if !ok || d.TenantID != tenantID {
		return nil, nil
	}
	return d, nil
}

func (s *fakeDocumentStore) ListByAssistantID(assistantID uint) ([]model.Document, error) {
	var out []model.Document
	for _, d := range s.docs {
		if d.AssistantID == assistantID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *fakeDocumentStore) SetStatus(id uint, status string) error {
	s.docs[id].Status = status
	s.statusHistory = append(s.statusHistory, status)
	return nil
}

func (s *fakeDocumentStore) SetIndexed(id uint, metadataJSON string) error {
	s.docs[id].Status = model.DocumentStatusIndexed
	s.docs[id].MetadataMap = metadataJSON
	s.indexedMeta = metadataJSON
	s.statusHistory = append(s.statusHistory, model.DocumentStatusIndexed)
	return nil
}

func (s *fakeDocumentStore) SetError(id uint, message string) error {
	s.docs[id].Status = model.DocumentStatusError
	s.docs[id].ErrorMessage = message
	s.errorMessage = message
	s.statusHistory = append(s.statusHistory, model.DocumentStatusError)
	return nil
}

func (s *fakeDocumentStore) Delete(id uint) error {
	delete(s.docs, id)
	return nil
}

type fakeConversationStore struct {
	conversations map[uint]*model.Conversation
	messages      []model.Message
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{conversations: map[uint]*model.Conversation{}}
}

func (s *fakeConversationStore) Create(conversation *model.Conversation) error {
	conversation.ID = uint(len(s.conversations) + 1)
	s.conversations[conversation.ID] = conversation
	return nil
}

func (s *fakeConversationStore) GetByPublicIDAndAssistantID(publicID string, assistantID uint) (*model.Conversation, error) {
	for _, c := range s.conversations {
		if c.PublicID == publicID && c.AssistantID == assistantID {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeConversationStore) AddMessage(message *model.Message) error {
	message.ID = uint(len(s.messages) + 1)
	s.messages = append(s.messages, *message)
	return nil
}

func (s *fakeConversationStore) ListRecentMessages(conversationID uint, limit int) ([]model.Message, error) {
	var out []model.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeVectorStore struct {
	written     []vectorstore.Node
	queryResult []vectorstore.ScoredNode
	lastQuery   vectorstore.QueryRequest
	deleted     []vectorstore.Filter
}

func (s *fakeVectorStore) WriteNodes(_ context.Context, nodes []vectorstore.Node) error {
	s.written = append(s.written, nodes...)
	return nil
}

func (s *fakeVectorStore) Query(_ context.Context, req vectorstore.QueryRequest) ([]vectorstore.ScoredNode, error) {
	s.lastQuery = req
	return s.queryResult, nil
}

func (s *fakeVectorStore) DeleteByFilter(_ context.Context, filter vectorstore.Filter) (int64, error) {
	s.deleted = append(s.deleted, filter)
	return 1, nil
}

type fakeEmbedClient struct {
	lastCfg  provider.EmbeddingConfig
	batches  int
	failures int
}

func (c *fakeEmbedClient) EmbedBatch(_ context.Context, cfg provider.EmbeddingConfig, texts []string) ([][]float32, error) {
	c.lastCfg = cfg
	c.batches++
	if c.failures > 0 {
		c.failures--
		return nil, errors.New("embedding endpoint unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (c *fakeEmbedClient) Embed(ctx context.Context, cfg provider.EmbeddingConfig, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, cfg, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

type fakeParser struct {
	docs    []provider.ParsedDocument
	lastCfg provider.ParseConfig
	calls   int
	err     error
}

func (p *fakeParser) Parse(_ context.Context, cfg provider.ParseConfig, filename string, data []byte) ([]provider.ParsedDocument, error) {
	p.lastCfg = cfg
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.docs, nil
}

type fakeProducer struct {
	tasks    map[string]*model.ProcessingTask
	payloads []any
}

func newFakeProducer() *fakeProducer {
	return &fakeProducer{tasks: map[string]*model.ProcessingTask{}}
}

func (p *fakeProducer) Enqueue(_ context.Context, taskType string, payload any, priority int) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("task-%d", len(p.tasks)+1)
	p.tasks[id] = &model.ProcessingTask{
		ID:       id,
		Type:     taskType,
		Status:   model.TaskStatusQueued,
		Priority: priority,
		Payload:  string(raw),
	}
	p.payloads = append(p.payloads, payload)
	return id, nil
}

func (p *fakeProducer) Status(_ context.Context, taskID string) (*model.ProcessingTask, error) {
	return p.tasks[taskID], nil
}

type memoryConfigStore struct {
	rows map[uint]string
}

func newMemoryConfigStore() *memoryConfigStore {
	return &memoryConfigStore{rows: map[uint]string{}}
}

func (s *memoryConfigStore) Save(assistantID uint, raw string) error {
	s.rows[assistantID] = raw
	return nil
}

func (s *memoryConfigStore) Get(assistantID uint) (string, bool, error) {
	raw, ok := s.rows[assistantID]
	return raw, ok, nil
}

func (s *memoryConfigStore) Delete(assistantID uint) error {
	delete(s.rows, assistantID)
	return nil
}

func (s *memoryConfigStore) ListAll() (map[uint]string, error) {
	return s.rows, nil
}

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (g *fakeGenerator) Complete(_ context.Context, _ provider.ChatConfig, _ []provider.ChatMessage) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}
