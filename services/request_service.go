package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// RequestService owns the Requests table: feed decisions, the pending
// inbox, reviews and the connections derived from accepted requests.
type RequestService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
	Table    string
	Log      logger.Logger

	now func() time.Time
}

func (s *RequestService) table() string {
	if s.Table == "" {
		return models.RequestsTable
	}
	return s.Table
}

func (s *RequestService) timestamp() string {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return models.FormatTimestamp(now())
}

// SendDecision records fromUserID's decision on a feed candidate. Only one
// record may exist per pair, whichever side created it.
func (s *RequestService) SendDecision(ctx context.Context, fromUserID, toUserID string, outcome models.Outcome) (*models.Request, error) {
	if !outcome.Valid() {
		return nil, apperrors.ErrInvalidOutcome
	}
	if fromUserID == toUserID {
		return nil, apperrors.ErrSelfDecision
	}
	if _, err := s.Profiles.GetUser(ctx, toUserID); err != nil {
		return nil, err
	}

	existing, err := s.findBetween(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.Log.Info("ℹ️ Request already exists", "from", fromUserID, "to", toUserID, "status", existing.Status)
		return nil, apperrors.ErrAlreadyDecided
	}

	now := s.timestamp()
	record := models.RequestRecord{
		RequestID:   uuid.NewString(),
		FromUserID:  fromUserID,
		ToUserID:    toUserID,
		Status:      models.StatusForOutcome(outcome),
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := s.Dynamo.PutItemIfAbsent(ctx, s.table(), record, "requestId"); err != nil {
		return nil, fmt.Errorf("failed to store request: %w", err)
	}
	s.Log.Info("📨 Decision stored", "requestId", record.RequestID, "from", fromUserID, "to", toUserID, "status", record.Status)

	from, err := s.Profiles.GetIdentity(ctx, fromUserID)
	if err != nil {
		return nil, err
	}
	return toRequest(record, from), nil
}

// PendingInbox lists requests awaiting userID's review, oldest first.
func (s *RequestService) PendingInbox(ctx context.Context, userID string) ([]models.Request, error) {
	status := models.StatusPending
	records, err := s.recordsTo(ctx, userID, &status)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].CreatedAt < records[j].CreatedAt })

	senderIDs := make([]string, 0, len(records))
	for _, r := range records {
		senderIDs = append(senderIDs, r.FromUserID)
	}
	senders, err := s.Profiles.GetIdentities(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	requests := make([]models.Request, 0, len(records))
	for _, r := range records {
		from, ok := senders[r.FromUserID]
		if !ok {
			continue
		}
		requests = append(requests, *toRequest(r, from))
	}
	return requests, nil
}

// Review resolves a pending request addressed to selfID. The write is
// conditional so a request can only leave pending once.
func (s *RequestService) Review(ctx context.Context, selfID, requestID string, decision models.Decision) (*models.Request, error) {
	if !models.ValidDecision(decision) {
		return nil, apperrors.ErrInvalidDecision
	}

	var record models.RequestRecord
	err := s.Dynamo.GetItemInto(ctx, s.table(), stringKey("requestId", requestID), &record)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperrors.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if record.ToUserID != selfID || record.Status == models.StatusIgnored {
		return nil, apperrors.ErrRequestNotFound
	}
	if record.Status != models.StatusPending {
		return nil, apperrors.ErrRequestAlreadyResolved
	}

	now := s.timestamp()
	updated, err := s.Dynamo.UpdateItem(ctx, s.table(),
		stringKey("requestId", requestID),
		"SET #status = :status, #lastUpdated = :now",
		"#status = :pending AND #toUserId = :self",
		map[string]types.AttributeValue{
			":status":  &types.AttributeValueMemberS{Value: string(decision)},
			":now":     &types.AttributeValueMemberS{Value: now},
			":pending": &types.AttributeValueMemberS{Value: string(models.StatusPending)},
			":self":    &types.AttributeValueMemberS{Value: selfID},
		},
		map[string]string{
			"#status":      "status",
			"#lastUpdated": "lastUpdated",
			"#toUserId":    "toUserId",
		},
	)
	if errors.Is(err, ErrConditionFailed) {
		return nil, apperrors.ErrRequestAlreadyResolved
	}
	if err != nil {
		return nil, fmt.Errorf("failed to review request: %w", err)
	}

	if err := attributevalue.UnmarshalMap(updated, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	s.Log.Info("✅ Request reviewed", "requestId", requestID, "status", decision)

	from, err := s.Profiles.GetIdentity(ctx, record.FromUserID)
	if err != nil {
		return nil, err
	}
	return toRequest(record, from), nil
}

// Connections lists everyone userID shares an accepted request with.
func (s *RequestService) Connections(ctx context.Context, userID string) ([]models.Identity, error) {
	records, err := s.recordsInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, r := range records {
		if r.Status == models.StatusAccepted {
			ids = append(ids, r.OtherParty(userID))
		}
	}
	identities, err := s.Profiles.GetIdentities(ctx, ids)
	if err != nil {
		return nil, err
	}

	connections := make([]models.Identity, 0, len(identities))
	for _, id := range ids {
		if identity, ok := identities[id]; ok {
			connections = append(connections, identity)
			delete(identities, id)
		}
	}
	return connections, nil
}

// IsConnected reports whether a and b share an accepted request.
func (s *RequestService) IsConnected(ctx context.Context, a, b string) (bool, error) {
	record, err := s.findBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	return record != nil && record.Status == models.StatusAccepted, nil
}

// RelatedUserIDs returns every user with a record of any status involving
// userID, in either direction.
func (s *RequestService) RelatedUserIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	records, err := s.recordsInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}
	related := make(map[string]struct{}, len(records))
	for _, r := range records {
		related[r.OtherParty(userID)] = struct{}{}
	}
	return related, nil
}

func (s *RequestService) findBetween(ctx context.Context, a, b string) (*models.RequestRecord, error) {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		records, err := s.recordsFrom(ctx, pair[0])
		if err != nil {
			return nil, err
		}
		for i := range records {
			if records[i].ToUserID == pair[1] {
				return &records[i], nil
			}
		}
	}
	return nil, nil
}

func (s *RequestService) recordsInvolving(ctx context.Context, userID string) ([]models.RequestRecord, error) {
	sent, err := s.recordsFrom(ctx, userID)
	if err != nil {
		return nil, err
	}
	received, err := s.recordsTo(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return append(sent, received...), nil
}

func (s *RequestService) recordsFrom(ctx context.Context, userID string) ([]models.RequestRecord, error) {
	items, err := s.Dynamo.QueryItemsWithIndex(ctx, s.table(), models.FromUserIndex,
		"#fromUserId = :fromUserId",
		map[string]types.AttributeValue{":fromUserId": &types.AttributeValueMemberS{Value: userID}},
		map[string]string{"#fromUserId": "fromUserId"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sent requests: %w", err)
	}
	return unmarshalRequests(items)
}

func (s *RequestService) recordsTo(ctx context.Context, userID string, status *models.RequestStatus) ([]models.RequestRecord, error) {
	keyCondition := "#toUserId = :toUserId"
	values := map[string]types.AttributeValue{":toUserId": &types.AttributeValueMemberS{Value: userID}}
	names := map[string]string{"#toUserId": "toUserId"}
	if status != nil {
		keyCondition += " AND #status = :status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(*status)}
		names["#status"] = "status"
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, s.table(), models.ToUserStatusIndex, keyCondition, values, names)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch received requests: %w", err)
	}
	return unmarshalRequests(items)
}

func unmarshalRequests(items []map[string]types.AttributeValue) ([]models.RequestRecord, error) {
	var records []models.RequestRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal requests: %w", err)
	}
	return records, nil
}

func toRequest(r models.RequestRecord, from models.Identity) *models.Request {
	return &models.Request{
		ID:        r.RequestID,
		From:      from,
		ToUserID:  r.ToUserID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}
