package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/logging"
	"taskboard/models"
	"taskboard/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users  repositories.UserRepository
	tokens *TokenService
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens, now: time.Now}
}

const maxPasswordBytes = 72

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and issues its first token.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	// bcrypt rejects inputs longer than 72 bytes, not characters.
	if len(req.Password) > maxPasswordBytes {
		return nil, NewValidationError("password", "password must be at most 72 bytes")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race against a concurrent registration; the unique index decides.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered", user.ID.Hex())
	return &models.AuthResponse{Token: token, User: user.Summary()}, nil
}

// Login checks the password against the stored hash and issues a token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Login attempt for unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Wrong password for user %s", user.ID.Hex())
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user.Summary()}, nil
}

// VerifyToken returns the user id carried by a valid token.
func (s *AuthService) VerifyToken(token string) (primitive.ObjectID, error) {
	return s.tokens.Verify(token)
}

// Profile returns the account behind userID.
func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrNotFound)
	}
	return user, err
}
