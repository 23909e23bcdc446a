package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fares12358/erb-system-backend/internal/auth"
	"github.com/fares12358/erb-system-backend/internal/cache"
	"github.com/fares12358/erb-system-backend/internal/config"
	"github.com/fares12358/erb-system-backend/internal/models"
)

// ErrEmailExists is returned when an attempt is made to use an email that already exists.
var ErrEmailExists = errors.New("email already registered")

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidOTP is returned when the submitted OTP is wrong or expired.
var ErrInvalidOTP = errors.New("invalid or expired OTP")

// ErrInvalidResetToken is returned when a password reset token is unknown or expired.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

const usersCollection = "users"

// IUserService defines the interface for the identity lifecycle:
// registration with OTP verification, login and password reset.
type IUserService interface {
	BeginRegistration(ctx context.Context, email string) (otp string, err error)
	CompleteRegistration(ctx context.Context, name, email, password, otp string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	CreateResetToken(ctx context.Context, email string) (token string, user *models.User, err error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// userService implements IUserService.
type userService struct {
	db   *mongo.Database
	cfg  *config.Config
	otps *cache.OTPStore
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database, cfg *config.Config, otps *cache.OTPStore) IUserService {
	return &userService{db: db, cfg: cfg, otps: otps}
}

// FindByEmail finds a user by email address.
// Returns mongo.ErrNoDocuments when no user matches.
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by email %s: %w", email, err)
	}
	return &user, nil
}

// FindByID finds a user by id.
func (s *userService) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", userID.Hex(), err)
	}
	return &user, nil
}

// BeginRegistration checks the email is free and issues an OTP for it. The
// account itself is only created once the OTP is verified.
func (s *userService) BeginRegistration(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	_, err := s.FindByEmail(ctx, email)
	if err == nil {
		return "", ErrEmailExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	otp, err := s.otps.Issue(ctx, email)
	if err != nil {
		return "", fmt.Errorf("error issuing OTP for %s: %w", email, err)
	}
	return otp, nil
}

// CompleteRegistration verifies the OTP and creates the account, already
// marked verified. An already-registered email is reported as a conflict
// before the OTP is even checked.
func (s *userService) CompleteRegistration(ctx context.Context, name, email, password, otp string) (*models.User, error) {
	email = normalizeEmail(email)

	_, err := s.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if err := s.otps.Verify(ctx, email, otp); err != nil {
		if errors.Is(err, cache.ErrOTPNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", email, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.Collection(usersCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("error inserting user %s: %w", email, err)
	}

	return user, nil
}

// Authenticate verifies email and password. The same error is returned for
// an unknown email and a wrong password.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateResetToken generates a password reset token for the user and
// persists it with an expiry. Returns mongo.ErrNoDocuments when the email is
// unknown; the caller decides whether to reveal that.
func (s *userService) CreateResetToken(ctx context.Context, email string) (string, *models.User, error) {
	user, err := s.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	expire := time.Now().UTC().Add(s.cfg.ResetTokenTTL)

	update := bson.M{"$set": bson.M{
		"reset_token":  token,
		"reset_expire": expire,
		"updated_at":   time.Now().UTC(),
	}}
	_, err = s.db.Collection(usersCollection).UpdateByID(ctx, user.ID, update)
	if err != nil {
		return "", nil, fmt.Errorf("error storing reset token for %s: %w", email, err)
	}

	return token, user, nil
}

// ResetPassword sets a new password for the user holding an unexpired token,
// then clears the token.
func (s *userService) ResetPassword(ctx context.Context, token, newPassword string) error {
	collection := s.db.Collection(usersCollection)

	var user models.User
	filter := bson.M{
		"reset_token":  token,
		"reset_expire": bson.M{"$gt": time.Now().UTC()},
	}
	err := collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("error finding user by reset token: %w", err)
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	update := bson.M{
		"$set":   bson.M{"password": hashed, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_token": "", "reset_expire": ""},
	}
	_, err = collection.UpdateByID(ctx, user.ID, update)
	if err != nil {
		return fmt.Errorf("error resetting password for user %s: %w", user.ID.Hex(), err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
