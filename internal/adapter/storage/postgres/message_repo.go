package postgres

import (
	"context"
	"fmt"

	"skills-marketplace-api/internal/core/domain"

	"github.com/google/uuid"
)

// MessageRepo implements ports.MessageRepository.
type MessageRepo struct {
	pool Pool
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(pool Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create inserts a new message.
func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	query := `INSERT INTO messages (id, sender_id, receiver_id, body, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, m.ID, m.SenderID, m.ReceiverID, m.Body, m.IsRead, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Conversation returns both directions of traffic between two users,
// oldest first.
func (r *MessageRepo) Conversation(ctx context.Context, a, b uuid.UUID) ([]domain.Message, error) {
	query := `SELECT id, sender_id, receiver_id, body, is_read, created_at FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, a, b)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m := domain.Message{}
		err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.IsRead, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}
	return messages, nil
}

// MarkRead flags everything the sender sent to the receiver as read.
func (r *MessageRepo) MarkRead(ctx context.Context, receiverID, senderID uuid.UUID) error {
	query := `UPDATE messages SET is_read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE`

	if _, err := r.pool.Exec(ctx, query, receiverID, senderID); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}
