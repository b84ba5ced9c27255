package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mgarcia-dev/biblioteca-api/internal/auth"
	"github.com/mgarcia-dev/biblioteca-api/internal/config"
	"github.com/mgarcia-dev/biblioteca-api/internal/domain"
	"github.com/mgarcia-dev/biblioteca-api/internal/repository"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repository.UserRepository
	hasher   *auth.Hasher
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, hasher *auth.Hasher, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		cfg:      cfg,
	}
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// TokenClaims is the decoded identity carried by a bearer token.
type TokenClaims struct {
	Subject  string
	Email    string
	FullName string
	IsAdmin  bool
}

// Profile is the public view of an identity. The password hash never
// leaves the service layer.
type Profile struct {
	ID           string    `json:"id"`
	FullName     string    `json:"nombreCompleto"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"fechaCreacion"`
	LastAccessAt time.Time `json:"ultimoAcceso"`
	IsAdmin      bool      `json:"isAdmin,omitempty"`
}

type LoginResult struct {
	Token   string
	Profile *Profile
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Profile, error) {
	if input.FullName == "" || input.Email == "" || input.Password == "" {
		return nil, domain.NewValidationError("Todos los campos son obligatorios")
	}

	fullName := strings.TrimSpace(input.FullName)
	if len(fullName) < 3 {
		return nil, domain.NewValidationError("El nombre completo debe tener al menos 3 caracteres")
	}
	if !auth.ValidEmail(input.Email) {
		return nil, domain.NewValidationError("Formato de email inválido")
	}
	if !auth.ValidPassword(input.Password) {
		return nil, domain.NewValidationError("La contraseña debe tener al menos 8 caracteres, incluir una mayúscula, una minúscula y un número")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		LastAccessAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("new user registered: %s", email)

	return profileOf(user), nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.NewValidationError("Email y contraseña son obligatorios")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	// The superuser is a hardcoded identity checked before any store
	// access; it gets a long-lived token.
	if email == domain.SuperuserEmail && input.Password == s.cfg.AdminPassword {
		token, err := s.signToken(domain.SuperuserSubject, domain.SuperuserEmail, domain.SuperuserName, true, s.cfg.AdminTokenTTL)
		if err != nil {
			return nil, err
		}
		log.Printf("superuser login")
		return &LoginResult{Token: token, Profile: superuserProfile()}, nil
	}

	if !auth.ValidEmail(email) {
		return nil, domain.NewValidationError("Formato de email inválido")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := s.hasher.Compare(ctx, user.PasswordHash, input.Password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	user.LastAccessAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.signToken(user.ID.String(), user.Email, user.FullName, false, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	log.Printf("user authenticated: %s", email)

	return &LoginResult{Token: token, Profile: profileOf(user)}, nil
}

func (s *AuthService) signToken(subject, email, name string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"name":  name,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if isAdmin {
		claims["isAdmin"] = true
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken distinguishes an expired token from a malformed or
// tampered one, so clients can prompt for a clean re-login.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return nil, domain.ErrTokenInvalid
	}

	parsed := &TokenClaims{Subject: subject}
	if email, ok := claims["email"].(string); ok {
		parsed.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		parsed.FullName = name
	}
	if isAdmin, ok := claims["isAdmin"].(bool); ok {
		parsed.IsAdmin = isAdmin
	}

	return parsed, nil
}

func (s *AuthService) GetProfile(ctx context.Context, subject string) (*Profile, error) {
	if domain.IsSuperuser(subject) {
		return superuserProfile(), nil
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return profileOf(user), nil
}

func (s *AuthService) ChangePassword(ctx context.Context, subject, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return domain.NewValidationError("Debes proporcionar la contraseña actual y la nueva")
	}
	if !auth.ValidPassword(newPassword) {
		return domain.NewValidationError("La nueva contraseña debe tener al menos 8 caracteres, incluir una mayúscula, una minúscula y un número")
	}

	// The superuser has no stored credential to change.
	if domain.IsSuperuser(subject) {
		return domain.ErrUserNotFound
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return domain.ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	match, err := s.hasher.Compare(ctx, user.PasswordHash, currentPassword)
	if err != nil {
		return err
	}
	if !match {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	log.Printf("password changed: %s", user.Email)
	return nil
}

func profileOf(user *domain.User) *Profile {
	return &Profile{
		ID:           user.ID.String(),
		FullName:     user.FullName,
		Email:        user.Email,
		CreatedAt:    user.CreatedAt,
		LastAccessAt: user.LastAccessAt,
	}
}

func superuserProfile() *Profile {
	now := time.Now()
	return &Profile{
		ID:           domain.SuperuserSubject,
		FullName:     domain.SuperuserName,
		Email:        domain.SuperuserEmail,
		CreatedAt:    now,
		LastAccessAt: now,
		IsAdmin:      true,
	}
}
