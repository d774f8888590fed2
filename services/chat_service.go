package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ChatService stores and loads one-to-one conversations between
// connected users.
type ChatService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
	Requests *RequestService
	Table    string
	Log      logger.Logger

	now func() time.Time
}

func (s *ChatService) table() string {
	if s.Table == "" {
		return models.MessagesTable
	}
	return s.Table
}

func (s *ChatService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// CanChat checks that a and b are distinct, connected users.
func (s *ChatService) CanChat(ctx context.Context, a, b string) error {
	if a == "" || b == "" || a == b {
		return apperrors.InvalidArg("a conversation needs two distinct users")
	}
	connected, err := s.Requests.IsConnected(ctx, a, b)
	if err != nil {
		return err
	}
	if !connected {
		return apperrors.ErrNotConnected
	}
	return nil
}

// GetConversation returns the full history between selfID and targetID,
// oldest first, with both participants.
func (s *ChatService) GetConversation(ctx context.Context, selfID, targetID string) (*models.Conversation, error) {
	if err := s.CanChat(ctx, selfID, targetID); err != nil {
		return nil, err
	}

	self, err := s.Profiles.GetIdentity(ctx, selfID)
	if err != nil {
		return nil, err
	}
	target, err := s.Profiles.GetIdentity(ctx, targetID)
	if err != nil {
		return nil, err
	}

	conversationID := models.ConversationID(selfID, targetID)
	items, err := s.Dynamo.QueryItemsWithOptions(ctx, s.table(),
		"#conversationId = :conversationId",
		map[string]types.AttributeValue{
			":conversationId": &types.AttributeValueMemberS{Value: conversationID},
		},
		map[string]string{"#conversationId": "conversationId"},
		true,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var records []models.MessageRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	messages := make([]models.Message, 0, len(records))
	for _, r := range records {
		messages = append(messages, r.Message())
	}
	s.Log.Debug("✅ Conversation loaded", "conversationId", conversationID, "messages", len(messages))

	return &models.Conversation{
		Messages:     messages,
		Participants: models.Participants{Self: self, Target: target},
	}, nil
}

// SaveMessage persists a message from fromUserID to toUserID, stamping
// the server id and time.
func (s *ChatService) SaveMessage(ctx context.Context, fromUserID, toUserID, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.ErrEmptyMessage
	}
	if err := s.CanChat(ctx, fromUserID, toUserID); err != nil {
		return nil, err
	}

	createdAt := s.clock().UTC()
	id := uuid.NewString()
	record := models.MessageRecord{
		ConversationID: models.ConversationID(fromUserID, toUserID),
		SortKey:        models.MessageSortKey(createdAt, id),
		MessageID:      id,
		FromUserID:     fromUserID,
		ToUserID:       toUserID,
		Body:           body,
		CreatedAt:      models.FormatTimestamp(createdAt),
	}
	if err := s.Dynamo.PutItem(ctx, s.table(), record); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	msg := record.Message()
	return &msg, nil
}
