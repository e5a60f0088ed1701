package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"foodgram/internal/database"
	"foodgram/internal/domain"
	"foodgram/internal/modules/view"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/pkg/validator"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service contains all business logic for accounts and authentication
type Service struct {
	users       UserRepositoryInterface
	tokens      TokenRepositoryInterface
	follows     FollowChecker
	jwt         jwtService
	tokenPepper string
	log         *zap.SugaredLogger
}

func NewService(
	users UserRepositoryInterface,
	tokens TokenRepositoryInterface,
	follows FollowChecker,
	jwt jwtService,
	tokenPepper string,
	log *zap.SugaredLogger,
) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		users:       users,
		tokens:      tokens,
		follows:     follows,
		jwt:         jwt,
		tokenPepper: tokenPepper,
		log:         log,
	}
}

// Register creates the account and its API token in one transaction and
// returns both.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if errs := validator.Validate(req); errs != nil {
		return nil, fieldErrors(errs)
	}

	emailTaken, usernameTaken, err := s.users.EmailOrUsernameTaken(ctx, req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if emailTaken || usernameTaken {
		return nil, takenErrors(emailTaken, usernameTaken)
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hashedPassword,
		IsActive:     true,
	}

	var rawToken string
	err = s.users.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		raw, hash, err := generateOpaqueToken(s.tokenPepper)
		if err != nil {
			return err
		}
		if err := s.tokens.Replace(ctx, tx, user.ID, hash); err != nil {
			return err
		}
		rawToken = raw
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, takenErrors(true, true)
		}
		return nil, err
	}

	s.log.Infow("user registered", "user_id", user.ID)
	user.PasswordHash = ""
	return &RegisterResult{User: user, Token: rawToken}, nil
}

// TokenLogin checks the credentials and rotates the user's API token.
func (s *Service) TokenLogin(ctx context.Context, req LoginRequest) (string, error) {
	user, err := s.checkCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return "", err
	}

	raw, hash, err := generateOpaqueToken(s.tokenPepper)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Replace(ctx, nil, user.ID, hash); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *Service) TokenLogout(ctx context.Context, userID int64) error {
	return s.tokens.DeleteByUser(ctx, userID)
}

// IssueJWT returns a signed access token for the credentials.
func (s *Service) IssueJWT(ctx context.Context, req LoginRequest) (*JWTResponse, error) {
	user, err := s.checkCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	token, err := s.jwt.GenerateToken(user.ID, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &JWTResponse{Access: token, ExpiresIn: int64(s.jwt.TTL().Seconds())}, nil
}

// UserByToken resolves an opaque API token.
func (s *Service) UserByToken(ctx context.Context, raw string) (*domain.User, error) {
	userID, err := s.tokens.UserIDByHash(ctx, hashTokenWithPepper(raw, s.tokenPepper))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return s.activeUser(ctx, userID)
}

// UserByJWT resolves a signed access token.
func (s *Service) UserByJWT(ctx context.Context, raw string) (*domain.User, error) {
	claims, err := s.jwt.ValidateToken(raw)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return s.activeUser(ctx, claims.UserID)
}

func (s *Service) Me(ctx context.Context, userID int64) (*view.User, error) {
	return s.GetUser(ctx, userID, userID)
}

// GetUser returns a profile; is_subscribed tells whether viewerID follows it.
func (s *Service) GetUser(ctx context.Context, viewerID, id int64) (*view.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	subscribed, err := s.follows.Marked(ctx, viewerID, []int64{id})
	if err != nil {
		return nil, err
	}
	out := view.NewUser(user, subscribed[id])
	return &out, nil
}

func (s *Service) ListUsers(ctx context.Context, viewerID int64, p pagination.Params) ([]view.User, int64, error) {
	users, total, err := s.users.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.follows.Marked(ctx, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]view.User, 0, len(users))
	for i := range users {
		out = append(out, view.NewUser(&users[i], subscribed[users[i].ID]))
	}
	return out, total, nil
}

func (s *Service) SetPassword(ctx context.Context, userID int64, req SetPasswordRequest) error {
	if errs := validator.Validate(req); errs != nil {
		return fieldErrors(errs)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return FieldErrors{"current_password": "invalid password"}
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}

func (s *Service) checkCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func (s *Service) activeUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func generateOpaqueToken(pepper string) (raw string, hash string, err error) {
	buf := make([]byte, 20)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	hash = hashTokenWithPepper(raw, pepper)
	return raw, hash, nil
}

func hashTokenWithPepper(raw, pepper string) string {
	sum := sha256.Sum256([]byte(raw + pepper))
	return hex.EncodeToString(sum[:])
}

func fieldErrors(rules map[string]string) FieldErrors {
	out := make(FieldErrors, len(rules))
	for field, rule := range rules {
		out[field] = ruleMessage(rule)
	}
	return out
}

func ruleMessage(rule string) string {
	switch rule {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "username":
		return "letters, digits and @/./+/-/_ only; \"me\" is reserved"
	case "min":
		return "value is too short"
	case "max":
		return "value is too long"
	default:
		return "invalid value"
	}
}

func takenErrors(email, username bool) FieldErrors {
	out := FieldErrors{}
	if email {
		out["email"] = "a user with this email already exists"
	}
	if username {
		out["username"] = "a user with this username already exists"
	}
	return out
}
