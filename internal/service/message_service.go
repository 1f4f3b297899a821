package service

import (
	"context"
	"fmt"
	"time"

	"skills-marketplace-api/internal/core/domain"
	"skills-marketplace-api/internal/core/ports"
	"skills-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
)

// MessageServiceImpl implements ports.MessageService.
type MessageServiceImpl struct {
	messageRepo    ports.MessageRepository
	discussionRepo ports.DiscussionRepository
	listingRepo    ports.ListingRepository
	userRepo       ports.UserRepository
}

// NewMessageService creates a new MessageServiceImpl.
func NewMessageService(
	messageRepo ports.MessageRepository,
	discussionRepo ports.DiscussionRepository,
	listingRepo ports.ListingRepository,
	userRepo ports.UserRepository,
) *MessageServiceImpl {
	return &MessageServiceImpl{
		messageRepo:    messageRepo,
		discussionRepo: discussionRepo,
		listingRepo:    listingRepo,
		userRepo:       userRepo,
	}
}

// Send delivers a direct message to another user.
func (s *MessageServiceImpl) Send(ctx context.Context, caller ports.Caller, receiverID uuid.UUID, body string) (*domain.Message, error) {
	if body == "" {
		return nil, apperror.Validation("message body is required")
	}
	if receiverID == caller.ID {
		return nil, apperror.Validation("cannot message yourself")
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get receiver: %w", err))
	}
	if receiver == nil || !receiver.IsActive() {
		return nil, apperror.ErrNotFound("user")
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   caller.ID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create message: %w", err))
	}
	return msg, nil
}

// Conversation returns both directions of traffic between the caller and
// another user, oldest first, and marks the inbound half as read.
func (s *MessageServiceImpl) Conversation(ctx context.Context, caller ports.Caller, otherID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messageRepo.Conversation(ctx, caller.ID, otherID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load conversation: %w", err))
	}

	if err := s.messageRepo.MarkRead(ctx, caller.ID, otherID); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("mark read: %w", err))
	}
	return messages, nil
}

// PostDiscussion adds a public comment on a listing, optionally threaded.
func (s *MessageServiceImpl) PostDiscussion(ctx context.Context, caller ports.Caller, listingID uuid.UUID, body string, parentID *uuid.UUID) (*domain.Discussion, error) {
	if body == "" {
		return nil, apperror.Validation("comment body is required")
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil || listing.IsDeleted {
		return nil, apperror.ErrNotFound("listing")
	}

	d := &domain.Discussion{
		ID:        uuid.New(),
		ListingID: listingID,
		UserID:    caller.ID,
		Body:      body,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.discussionRepo.Create(ctx, d); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create discussion: %w", err))
	}
	return d, nil
}

// ListDiscussions returns a listing's comments, oldest first.
func (s *MessageServiceImpl) ListDiscussions(ctx context.Context, listingID uuid.UUID) ([]domain.Discussion, error) {
	discussions, err := s.discussionRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list discussions: %w", err))
	}
	return discussions, nil
}
