package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mgarcia-dev/biblioteca-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	fullName string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		fullName: fmt.Sprintf("Test User %s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "Password123",
	}
}

// WithFullName sets the full name
func (b *UserBuilder) WithFullName(name string) *UserBuilder {
	b.fullName = name
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		FullName:     b.fullName,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		LastAccessAt: now,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Success bool   `json:"success"`
	Mensaje string `json:"mensaje"`
	Token   string `json:"token"`
	Usuario struct {
		ID       string `json:"id"`
		FullName string `json:"nombreCompleto"`
		Email    string `json:"email"`
		IsAdmin  bool   `json:"isAdmin"`
	} `json:"usuario"`
}

// BuildAndLogin creates a user in the database and logs in via the API,
// returning the user and a bearer token.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)
	token := Login(t, ts, user.Email, password)
	return user, token
}

// Login authenticates against the API and returns the bearer token
func Login(t *testing.T, ts *TestServer, email, password string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	resp, err := http.Post(ts.APIURL("/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	return loginResp.Token
}

// BookBuilder creates test books with a builder pattern
type BookBuilder struct {
	owner  uuid.UUID
	title  string
	author string
	genre  string
	year   *int
	rating int
	added  time.Time
}

// NewBookBuilder creates a new BookBuilder owned by the given user
func NewBookBuilder(owner uuid.UUID) *BookBuilder {
	return &BookBuilder{
		owner:  owner,
		title:  fmt.Sprintf("Libro %s", uuid.New().String()[:8]),
		genre:  domain.DefaultGenre,
		rating: domain.DefaultRating,
		added:  time.Now(),
	}
}

func (b *BookBuilder) WithTitle(title string) *BookBuilder {
	b.title = title
	return b
}

func (b *BookBuilder) WithAuthor(author string) *BookBuilder {
	b.author = author
	return b
}

func (b *BookBuilder) WithGenre(genre string) *BookBuilder {
	b.genre = genre
	return b
}

func (b *BookBuilder) WithYear(year int) *BookBuilder {
	b.year = &year
	return b
}

func (b *BookBuilder) WithRating(rating int) *BookBuilder {
	b.rating = rating
	return b
}

func (b *BookBuilder) WithAddedAt(added time.Time) *BookBuilder {
	b.added = added
	return b
}

// Build creates the book in the database
func (b *BookBuilder) Build(t *testing.T, db *gorm.DB) *domain.Book {
	t.Helper()

	book := &domain.Book{
		ID:        uuid.New(),
		UserID:    b.owner,
		Title:     b.title,
		Author:    b.author,
		Genre:     b.genre,
		Year:      b.year,
		Rating:    b.rating,
		AddedAt:   b.added,
		UpdatedAt: b.added,
	}

	if err := db.Create(book).Error; err != nil {
		t.Fatalf("failed to create book: %v", err)
	}

	return book
}
