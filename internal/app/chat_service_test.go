package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragbase/internal/apperr"
	"ragbase/internal/chunking"
	"ragbase/internal/config"
	"ragbase/internal/model"
	"ragbase/internal/pkg/secretbox"
	"ragbase/internal/ragconfig"
	"ragbase/internal/vectorstore"
)

type chatFixture struct {
	service   *ChatService
	convs     *fakeConversationStore
	vectors   *fakeVectorStore
	generator *fakeGenerator
	tenant    *model.Tenant
	assistant *model.Assistant
}

func newChatFixture(t *testing.T, withProviderKey bool) *chatFixture {
	t.Helper()
	sealer, err := secretbox.NewSealer(testSealKey)
	require.NoError(t, err)

	tenant := &model.Tenant{ID: 1, Email: "owner@example.com"}
	if withProviderKey {
		sealed, err := sealer.Seal("sk-unit-test")
		require.NoError(t, err)
		tenant.SealedOpenAIKey = sealed
	}
	assistant := &model.Assistant{ID: 7, TenantID: 1, PublicID: "pub-7", Name: "docs bot"}

	f := &chatFixture{
		convs:     newFakeConversationStore(),
		vectors:   &fakeVectorStore{},
		generator: &fakeGenerator{reply: "The setup steps are in the handbook."},
		tenant:    tenant,
		assistant: assistant,
	}
	f.service = NewChatService(
		newFakeAssistantStore(assistant),
		newFakeTenantStore(tenant),
		f.convs,
		ragconfig.NewManager(newMemoryConfigStore()),
		f.vectors,
		f.generator,
		&fakeEmbedClient{},
		nil,
		sealer,
		config.ProvidersConfig{OpenAIBaseURL: "https://api.example.com"},
		config.ChatConfig{},
	)
	return f
}

func TestChatAnswersAndPersistsBothTurns(t *testing.T) {
	f := newChatFixture(t, true)
	f.vectors.queryResult = []vectorstore.ScoredNode{
		{
			Node: vectorstore.Node{
				AssistantID: 7,
				DocumentID:  3,
				Text:        strings.Repeat("setup instructions ", 20),
				Metadata:    map[string]string{chunking.MetaFilename: "handbook.txt"},
			},
			Score: 0.9,
		},
	}

	result, err := f.service.Chat(context.Background(), ChatInput{
		AssistantPublicID: "pub-7",
		VisitorID:         "visitor-1",
		Query:             "How do I set this up?",
	})
	require.NoError(t, err)

	assert.Equal(t, "The setup steps are in the handbook.", result.Answer)
	assert.NotEmpty(t, result.ConversationPublicID)
	assert.Equal(t, uint(7), f.vectors.lastQuery.Filter.AssistantID)

	require.Len(t, f.convs.messages, 2)
	assert.Equal(t, model.MessageRoleUser, f.convs.messages[0].Role)
	assert.Equal(t, "How do I set this up?", f.convs.messages[0].Content)
	assert.Equal(t, model.MessageRoleAssistant, f.convs.messages[1].Role)

	sources := f.convs.messages[1].SourceList()
	require.Len(t, sources, 1)
	assert.Equal(t, uint(3), sources[0].DocumentID)
	assert.Equal(t, "handbook.txt", sources[0].Filename)
	assert.True(t, strings.HasSuffix(sources[0].Snippet, "..."))
	assert.LessOrEqual(t, len([]rune(sources[0].Snippet)), 203)
}

func TestChatWithoutProviderKeyKeepsUserMessage(t *testing.T) {
	f := newChatFixture(t, false)

	_, err := f.service.Chat(context.Background(), ChatInput{
		AssistantPublicID: "pub-7",
		Query:             "hello?",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConfiguration(err))

	require.Len(t, f.convs.messages, 1)
	assert.Equal(t, model.MessageRoleUser, f.convs.messages[0].Role)
	assert.Zero(t, f.generator.calls)
}

func TestChatUnknownAssistant(t *testing.T) {
	f := newChatFixture(t, true)

	_, err := f.service.Chat(context.Background(), ChatInput{
		AssistantPublicID: "nope",
		Query:             "hi",
	})
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, f.convs.messages)
}

func TestChatContinuesExistingConversation(t *testing.T) {
	f := newChatFixture(t, true)

	first, err := f.service.Chat(context.Background(), ChatInput{
		AssistantPublicID: "pub-7",
		Query:             "first question",
	})
	require.NoError(t, err)

	second, err := f.service.Chat(context.Background(), ChatInput{
		AssistantPublicID:    "pub-7",
		ConversationPublicID: first.ConversationPublicID,
		Query:                "second question",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationPublicID, second.ConversationPublicID)
	assert.Len(t, f.convs.conversations, 1)
	assert.Len(t, f.convs.messages, 4)
}

func TestChatHistory(t *testing.T) {
	f := newChatFixture(t, true)

	result, err := f.service.Chat(context.Background(), ChatInput{
		AssistantPublicID: "pub-7",
		Query:             "first question",
	})
	require.NoError(t, err)

	messages, err := f.service.History("pub-7", result.ConversationPublicID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, model.MessageRoleUser, messages[0].Role)
	assert.Equal(t, model.MessageRoleAssistant, messages[1].Role)

	_, err = f.service.History("pub-7", "missing-conversation", 0)
	assert.True(t, apperr.IsNotFound(err))
}
