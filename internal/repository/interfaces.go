package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/mgarcia-dev/biblioteca-api/internal/domain"
)

// Sort keys accepted by BookFilter. Anything else falls back to
// most-recently-added first.
const (
	SortByTitle  = "titulo"
	SortByAuthor = "autor"
	SortByYear   = "ano"
	SortByRating = "valoracion"
)

// GenreAll is the genre query sentinel that disables genre filtering.
const GenreAll = "todos"

// BookFilter narrows and orders a List query. A nil OwnerID means no
// ownership restriction (superuser scope).
type BookFilter struct {
	OwnerID *uuid.UUID
	Genre   string
	Search  string
	Sort    string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Book, error)
	List(ctx context.Context, filter BookFilter) ([]*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error
	Count(ctx context.Context, ownerID *uuid.UUID) (int64, error)
	TopRated(ctx context.Context, ownerID *uuid.UUID, limit int) ([]*domain.Book, error)
	CountByGenre(ctx context.Context, ownerID *uuid.UUID) ([]domain.GenreCount, error)
}

type Repositories struct {
	User UserRepository
	Book BookRepository
}
