package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"ragbase/internal/apperr"
	"ragbase/internal/chunking"
	"ragbase/internal/config"
	"ragbase/internal/model"
	"ragbase/internal/pkg/secretbox"
	"ragbase/internal/provider"
	"ragbase/internal/ragconfig"
	"ragbase/internal/retrieval"
	"ragbase/internal/vectorstore"
)

type ChatService struct {
	assistantRepo AssistantStore
	tenantRepo    TenantStore
	convRepo      ConversationStore
	configs       *ragconfig.Manager
	store         vectorstore.Store
	generator     retrieval.Generator
	embedClient   EmbedClient
	embedCache    *provider.EmbedCache
	sealer        *secretbox.Sealer
	providers     config.ProvidersConfig
	chatCfg       config.ChatConfig
}

type ChatInput struct {
	AssistantPublicID    string
	ConversationPublicID string
	VisitorID            string
	Query                string
}

type ChatResult struct {
	ConversationPublicID string
	Answer               string
	Sources              []model.MessageSource
}

func NewChatService(
	assistantRepo AssistantStore,
	tenantRepo TenantStore,
	convRepo ConversationStore,
	configs *ragconfig.Manager,
	store vectorstore.Store,
	generator retrieval.Generator,
	embedClient EmbedClient,
	embedCache *provider.EmbedCache,
	sealer *secretbox.Sealer,
	providers config.ProvidersConfig,
	chatCfg config.ChatConfig,
) *ChatService {
	return &ChatService{
		assistantRepo: assistantRepo,
		tenantRepo:    tenantRepo,
		convRepo:      convRepo,
		configs:       configs,
		store:         store,
		generator:     generator,
		embedClient:   embedClient,
		embedCache:    embedCache,
		sealer:        sealer,
		providers:     providers,
		chatCfg:       chatCfg,
	}
}

// Chat answers one visitor query against the assistant's indexed documents.
// The user message is persisted before generation so a provider failure never
// loses the visitor's turn; the assistant message is only written on success.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	query := strings.TrimSpace(input.Query)
	if input.AssistantPublicID == "" || query == "" {
		return nil, ErrInvalidInput
	}

	assistant, err := s.assistantRepo.GetByPublicID(input.AssistantPublicID)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, apperr.NewNotFoundError("assistant")
	}

	tenant, err := s.tenantRepo.GetByID(assistant.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperr.NewNotFoundError("tenant")
	}

	cfg, err := s.configs.Get(assistant.ID)
	if err != nil {
		return nil, err
	}

	conversation, err := s.resolveConversation(assistant.ID, input.ConversationPublicID, input.VisitorID)
	if err != nil {
		return nil, err
	}

	historyLimit := s.chatCfg.MaxContextMessages
	if historyLimit <= 0 {
		historyLimit = 10
	}
	recent, err := s.convRepo.ListRecentMessages(conversation.ID, historyLimit)
	if err != nil {
		return nil, err
	}
	history := make([]provider.ChatMessage, 0, len(recent))
	for _, msg := range recent {
		history = append(history, provider.ChatMessage{Role: msg.Role, Content: msg.Content})
	}

	userMsg := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.MessageRoleUser,
		Content:        query,
	}
	if err := s.convRepo.AddMessage(userMsg); err != nil {
		return nil, err
	}

	// The visitor's turn is kept even when the provider call below cannot
	// run, so a missing credential never loses conversation history.
	apiKey, err := s.resolveProviderKey(tenant, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := s.buildEngine(assistant, cfg, apiKey)
	if err != nil {
		return nil, err
	}

	result, err := engine.Chat(ctx, query, history)
	if err != nil {
		return nil, err
	}

	sources := s.bindSources(result.Sources)
	assistantMsg := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.MessageRoleAssistant,
		Content:        result.Answer,
	}
	assistantMsg.SetSourceList(sources)
	if err := s.convRepo.AddMessage(assistantMsg); err != nil {
		return nil, err
	}

	return &ChatResult{
		ConversationPublicID: conversation.PublicID,
		Answer:               result.Answer,
		Sources:              sources,
	}, nil
}

// History returns the stored turns of one conversation, oldest first.
func (s *ChatService) History(assistantPublicID, conversationPublicID string, limit int) ([]model.Message, error) {
	if assistantPublicID == "" || conversationPublicID == "" {
		return nil, ErrInvalidInput
	}
	assistant, err := s.assistantRepo.GetByPublicID(assistantPublicID)
	if err != nil {
		return nil, err
	}
	if assistant == nil {
		return nil, apperr.NewNotFoundError("assistant")
	}
	conversation, err := s.convRepo.GetByPublicIDAndAssistantID(conversationPublicID, assistant.ID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperr.NewNotFoundError("conversation")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.convRepo.ListRecentMessages(conversation.ID, limit)
}

// resolveProviderKey enforces the fail-closed credential rule: a non-local
// embedding or generation provider only runs with the tenant's own key.
func (s *ChatService) resolveProviderKey(tenant *model.Tenant, cfg ragconfig.Config) (string, error) {
	needsKey := cfg.LLM.Provider != ragconfig.ProviderLocal ||
		cfg.Embedding.Provider != ragconfig.ProviderLocal
	if !needsKey {
		return "", nil
	}
	if !tenant.HasOpenAIKey() {
		return "", apperr.NewConfigurationError("credentials.openai_api_key", "chat requires a configured provider credential")
	}
	key, err := s.sealer.Open(tenant.SealedOpenAIKey)
	if err != nil {
		return "", fmt.Errorf("unseal provider credential failed: %w", err)
	}
	return key, nil
}

func (s *ChatService) resolveConversation(assistantID uint, publicID, visitorID string) (*model.Conversation, error) {
	if publicID != "" {
		conversation, err := s.convRepo.GetByPublicIDAndAssistantID(publicID, assistantID)
		if err != nil {
			return nil, err
		}
		if conversation != nil {
			return conversation, nil
		}
	}
	conversation := &model.Conversation{
		AssistantID: assistantID,
		PublicID:    uuid.NewString(),
		VisitorID:   visitorID,
	}
	if err := s.convRepo.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ChatService) buildEngine(assistant *model.Assistant, cfg ragconfig.Config, apiKey string) (*retrieval.Engine, error) {
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

	systemPrompt := assistant.SystemPrompt
	if cfg.LLM.SystemPrompt != "" {
		systemPrompt = cfg.LLM.SystemPrompt
	}

	builder := &retrieval.Builder{
		Store:     s.store,
		Embedder:  embedder,
		Generator: s.generator,
		ChatConfig: provider.ChatConfig{
			BaseURL:     s.providers.OpenAIBaseURL,
			APIKey:      apiKey,
			Model:       cfg.LLM.ModelName,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		},
		Filter:       vectorstore.Filter{AssistantID: assistant.ID},
		SystemPrompt: systemPrompt,
		Config:       cfg,
	}
	return builder.Build()
}

// bindSources converts scored nodes into bounded citation entries. Snippets
// are clipped so a message row never balloons with full chunk text.
func (s *ChatService) bindSources(nodes []vectorstore.ScoredNode) []model.MessageSource {
	limit := s.chatCfg.SourceSnippetLimit
	if limit <= 0 {
		limit = 200
	}
	sources := make([]model.MessageSource, 0, len(nodes))
	for _, node := range nodes {
		snippet := node.Text
		if runes := []rune(snippet); len(runes) > limit {
			snippet = string(runes[:limit]) + "..."
		}
		filename := ""
		if node.Metadata != nil {
			filename = node.Metadata[chunking.MetaFilename]
		}
		docID := node.DocumentID
		if docID == 0 && node.Metadata != nil {
			if v, err := strconv.ParseUint(node.Metadata[chunking.MetaDocumentID], 10, 64); err == nil {
				docID = uint(v)
			}
		}
		sources = append(sources, model.MessageSource{
			DocumentID: docID,
			Filename:   filename,
			Snippet:    snippet,
			Score:      node.Score,
		})
	}
	return sources
}
