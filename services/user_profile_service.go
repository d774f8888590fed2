package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devmatch/models"
	apperrors "devmatch/pkg/errors"
	"devmatch/pkg/logger"
	"devmatch/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PhotoResolver turns a stored photo key into a client-loadable URL.
type PhotoResolver interface {
	ResolvePhotoURL(ctx context.Context, key string) string
}

type UserProfileService struct {
	Dynamo *DynamoService
	Table  string
	Photos PhotoResolver
	Log    logger.Logger
}

func (ups *UserProfileService) table() string {
	if ups.Table == "" {
		return models.UserProfilesTable
	}
	return ups.Table
}

// SignupInput is what a new account needs.
type SignupInput struct {
	EmailID   string   `json:"emailId"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	PhotoKey  string   `json:"photoKey"`
	About     string   `json:"about"`
	Age       int      `json:"age"`
	Gender    string   `json:"gender"`
	Skills    []string `json:"skills"`
}

// AddUserProfile creates an account. Emails are unique.
func (ups *UserProfileService) AddUserProfile(ctx context.Context, in SignupInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.EmailID))
	if email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" {
		return nil, apperrors.InvalidArg("emailId, password and firstName are required")
	}

	existing, err := ups.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.AlreadyExists("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       uuid.NewString(),
		EmailID:      email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PhotoKey:     in.PhotoKey,
		About:        in.About,
		Age:          in.Age,
		Gender:       in.Gender,
		Skills:       in.Skills,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := ups.Dynamo.PutItemIfAbsent(ctx, ups.table(), user, "userId"); err != nil {
		return nil, fmt.Errorf("failed to add profile: %w", err)
	}
	ups.Log.Info("✅ Profile created", "userId", user.UserID)
	return &user, nil
}

// GetUser retrieves a user record by ID
func (ups *UserProfileService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := ups.Dynamo.GetItemInto(ctx, ups.table(), stringKey("userId", userID), &user)
	if errors.Is(err, ErrItemNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &user, nil
}

// GetUserByEmail looks a user up through the email GSI.
func (ups *UserProfileService) GetUserByEmail(ctx context.Context, emailID string) (*models.User, error) {
	keyCondition := "#emailId = :emailId"
	values := map[string]types.AttributeValue{
		":emailId": &types.AttributeValueMemberS{Value: strings.ToLower(emailID)},
	}
	names := map[string]string{"#emailId": "emailId"}

	items, err := ups.Dynamo.QueryItemsWithIndex(ctx, ups.table(), models.EmailIndex, keyCondition, values, names)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile by email: %w", err)
	}
	if len(items) == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(items[0], &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &user, nil
}

// GetIdentity returns the display projection of a user.
func (ups *UserProfileService) GetIdentity(ctx context.Context, userID string) (models.Identity, error) {
	user, err := ups.GetUser(ctx, userID)
	if err != nil {
		return models.Identity{}, err
	}
	return ups.Identity(ctx, *user), nil
}

// GetIdentities resolves many users at once. Unknown ids are skipped.
func (ups *UserProfileService) GetIdentities(ctx context.Context, userIDs []string) (map[string]models.Identity, error) {
	out := make(map[string]models.Identity, len(userIDs))
	for _, id := range utils.UniqueIDs(userIDs) {
		identity, err := ups.GetIdentity(ctx, id)
		if errors.Is(err, apperrors.ErrUserNotFound) {
			ups.Log.Warn("⚠️ Skipping unknown user", "userId", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = identity
	}
	return out, nil
}

// Identity projects a stored user, resolving the photo key.
func (ups *UserProfileService) Identity(ctx context.Context, user models.User) models.Identity {
	identity := user.Identity()
	if ups.Photos != nil {
		identity.PhotoURL = ups.Photos.ResolvePhotoURL(ctx, user.PhotoKey)
	}
	return identity
}
