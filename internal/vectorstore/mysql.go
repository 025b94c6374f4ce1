package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"ragbase/internal/model"
)

// ErrMissingFilter is returned for any operation attempted without an
// assistant filter. Absence of the filter is a defect, never a wildcard.
var ErrMissingFilter = errors.New("vector store operation requires an assistant filter")

// MySQLStore keeps chunks and their embeddings in MySQL via gorm and scores
// similarity in process. Candidate rows are always narrowed by the isolation
// filter in SQL before any scoring happens.
type MySQLStore struct {
	db *gorm.DB
}

func NewMySQLStore(db *gorm.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) WriteNodes(ctx context.Context, nodes []Node) error {
	if len(nodes) == 0 {
		return nil
	}
	rows := make([]model.Chunk, len(nodes))
	for i, node := range nodes {
		if node.AssistantID == 0 {
			return ErrMissingFilter
		}
		rows[i] = model.Chunk{
			AssistantID: node.AssistantID,
			DocumentID:  node.DocumentID,
			Content:     node.Text,
		}
		rows[i].SetEmbedding(node.Embedding)
		rows[i].SetMetadataMap(node.Metadata)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("write chunks failed: %w", err)
	}
	return nil
}

func (s *MySQLStore) Query(ctx context.Context, req QueryRequest) ([]ScoredNode, error) {
	if req.Filter.AssistantID == 0 {
		return nil, ErrMissingFilter
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	q := s.db.WithContext(ctx).Where("assistant_id = ?", req.Filter.AssistantID)
	if req.Filter.DocumentID != 0 {
		q = q.Where("document_id = ?", req.Filter.DocumentID)
	}
	var rows []model.Chunk
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query chunks failed: %w", err)
	}

	scored := make([]ScoredNode, 0, len(rows))
	for i := range rows {
		node := ScoredNode{
			Node: Node{
				AssistantID: rows[i].AssistantID,
				DocumentID:  rows[i].DocumentID,
				Text:        rows[i].Content,
				Embedding:   rows[i].EmbeddingVector(),
				Metadata:    rows[i].MetadataMap(),
			},
		}
		node.Score = s.score(req, node.Node)
		scored = append(scored, node)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > req.TopK {
		scored = scored[:req.TopK]
	}
	return scored, nil
}

func (s *MySQLStore) score(req QueryRequest, node Node) float32 {
	semantic := Cosine(req.Embedding, node.Embedding)
	if req.HybridWeights == nil {
		return semantic
	}
	wSem := req.HybridWeights["semantic"]
	wLex := req.HybridWeights["lexical"]
	if wSem == 0 && wLex == 0 {
		wSem, wLex = 0.7, 0.3
	}
	return float32(wSem)*semantic + float32(wLex)*LexicalScore(req.Text, node.Text)
}

func (s *MySQLStore) DeleteByFilter(ctx context.Context, filter Filter) (int64, error) {
	if filter.AssistantID == 0 {
		return 0, ErrMissingFilter
	}
	q := s.db.WithContext(ctx).Where("assistant_id = ?", filter.AssistantID)
	if filter.DocumentID != 0 {
		q = q.Where("document_id = ?", filter.DocumentID)
	}
	result := q.Delete(&model.Chunk{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete chunks failed: %w", result.Error)
	}
	return result.RowsAffected, nil
}
