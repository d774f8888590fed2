package services

import (
	"context"
	"fmt"

	"devmatch/models"
	"devmatch/pkg/logger"
	"devmatch/utils"
)

// MaxFeedBatch caps a single feed page.
const MaxFeedBatch = 50

// FeedService serves candidate batches: users who are not the caller and
// share no request record with them in either direction.
type FeedService struct {
	Dynamo    *DynamoService
	Profiles  *UserProfileService
	Requests  *RequestService
	BatchSize int
	Log       logger.Logger
}

func (s *FeedService) batch(limit int) int {
	if limit <= 0 {
		limit = s.BatchSize
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > MaxFeedBatch {
		limit = MaxFeedBatch
	}
	return limit
}

// GetFeed returns up to limit candidates for userID.
func (s *FeedService) GetFeed(ctx context.Context, userID string, limit int) ([]models.Identity, error) {
	related, err := s.Requests.RelatedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var users []models.User
	exclude := map[string]string{"userId": userID}
	if err := s.Dynamo.ScanWithFilter(ctx, s.Profiles.table(), utils.ExcludeIDs("userId", related), exclude, s.batch(limit), &users); err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed := make([]models.Identity, 0, len(users))
	for _, u := range users {
		feed = append(feed, s.Profiles.Identity(ctx, u))
	}
	s.Log.Debug("✅ Feed built", "userId", userID, "size", len(feed), "excluded", len(related))
	return feed, nil
}
