package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

type ChatRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewChatRepository(db *pgxpool.Pool, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{db: db, logger: logger}
}

func (r *ChatRepository) Insert(ctx context.Context, m *model.ChatMessage) (int, error) {
	query := `
        INSERT INTO chat_messages (group_id, sender_id, content, sent_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, m.GroupID, m.SenderID, m.Content, m.SentAt).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert chat message",
			zap.Int("group_id", m.GroupID),
			zap.Error(err),
		)
		return 0, err
	}
	return id, nil
}

func (r *ChatRepository) ListByGroup(ctx context.Context, groupID, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
        SELECT c.id, c.group_id, c.sender_id, u.name, c.content, c.sent_at
        FROM chat_messages c
        JOIN users u ON u.id = c.sender_id
        WHERE c.group_id = $1
        ORDER BY c.sent_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, groupID, limit)
	if err != nil {
		r.logger.Error("Failed to query chat messages", zap.Int("group_id", groupID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	messages := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.GroupID, &m.SenderID, &m.SenderName, &m.Content, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
