package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mgarcia-dev/biblioteca-api/internal/domain"
	"github.com/mgarcia-dev/biblioteca-api/internal/repository"
	"gorm.io/gorm"
)

const topRatedLimit = 5

type BookService struct {
	bookRepo repository.BookRepository
}

func NewBookService(bookRepo repository.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

type ListBooksInput struct {
	Genre  string
	Search string
	Sort   string
}

type CreateBookInput struct {
	Title      string
	Author     string
	Genre      string
	Year       int
	Rating     int
	Comment    string
	CoverImage string
	Summary    string
}

// UpdateBookInput carries partial-update fields. Zero values mean "leave
// untouched" for everything except Comment, which uses presence of the
// pointer so an explicit empty string clears the stored comment.
type UpdateBookInput struct {
	Title   string
	Author  string
	Genre   string
	Year    int
	Rating  int
	Comment *string
}

// List returns the caller's books, or every book when the caller is the
// superuser. Filters and ordering are pushed down to the store.
func (s *BookService) List(ctx context.Context, subject string, input ListBooksInput) ([]*domain.Book, error) {
	filter := repository.BookFilter{
		Genre:  input.Genre,
		Search: input.Search,
		Sort:   input.Sort,
	}

	if !domain.IsSuperuser(subject) {
		ownerID, err := uuid.Parse(subject)
		if err != nil {
			return nil, domain.ErrBookNotFound
		}
		filter.OwnerID = &ownerID
	}

	return s.bookRepo.List(ctx, filter)
}

// Get is owner-scoped for every caller, superuser included.
func (s *BookService) Get(ctx context.Context, subject, bookID string) (*domain.Book, error) {
	ownerID, err := uuid.Parse(subject)
	if err != nil {
		return nil, domain.ErrBookNotFound
	}
	id, err := uuid.Parse(bookID)
	if err != nil {
		return nil, domain.ErrBookNotFound
	}

	book, err := s.bookRepo.GetByOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *BookService) Create(ctx context.Context, subject string, input CreateBookInput) (*domain.Book, error) {
	ownerID, err := uuid.Parse(subject)
	if err != nil {
		return nil, domain.NewValidationError("Usuario inválido")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.NewValidationError("El título es obligatorio")
	}
	if err := validateYear(input.Year); err != nil {
		return nil, err
	}
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}

	now := time.Now()
	book := &domain.Book{
		ID:        uuid.New(),
		UserID:    ownerID,
		Title:     title,
		Author:    strings.TrimSpace(input.Author),
		Genre:     domain.DefaultGenre,
		Rating:    domain.DefaultRating,
		Comment:   strings.TrimSpace(input.Comment),
		Summary:   strings.TrimSpace(input.Summary),
		AddedAt:   now,
		UpdatedAt: now,
	}
	if input.Genre != "" {
		book.Genre = input.Genre
	}
	if input.Year != 0 {
		year := input.Year
		book.Year = &year
	}
	if input.Rating != 0 {
		book.Rating = input.Rating
	}
	if input.CoverImage != "" {
		cover := input.CoverImage
		book.CoverImage = &cover
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Update applies only the fields present in the input; absent fields keep
// their stored values. The cover image and summary are not editable here.
func (s *BookService) Update(ctx context.Context, subject, bookID string, input UpdateBookInput) (*domain.Book, error) {
	book, err := s.Get(ctx, subject, bookID)
	if err != nil {
		return nil, err
	}

	if err := validateYear(input.Year); err != nil {
		return nil, err
	}
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}

	if input.Title != "" {
		book.Title = strings.TrimSpace(input.Title)
	}
	if input.Author != "" {
		book.Author = strings.TrimSpace(input.Author)
	}
	if input.Genre != "" {
		book.Genre = input.Genre
	}
	if input.Year != 0 {
		year := input.Year
		book.Year = &year
	}
	if input.Rating != 0 {
		book.Rating = input.Rating
	}
	if input.Comment != nil {
		book.Comment = strings.TrimSpace(*input.Comment)
	}
	book.UpdatedAt = time.Now()

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, subject, bookID string) error {
	ownerID, err := uuid.Parse(subject)
	if err != nil {
		return domain.ErrBookNotFound
	}
	id, err := uuid.Parse(bookID)
	if err != nil {
		return domain.ErrBookNotFound
	}

	err = s.bookRepo.DeleteByOwner(ctx, ownerID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrBookNotFound
	}
	return err
}

// Stats follows the same scoping rule as List.
func (s *BookService) Stats(ctx context.Context, subject string) (*domain.LibraryStats, error) {
	var owner *uuid.UUID
	if !domain.IsSuperuser(subject) {
		ownerID, err := uuid.Parse(subject)
		if err != nil {
			return nil, domain.ErrBookNotFound
		}
		owner = &ownerID
	}

	total, err := s.bookRepo.Count(ctx, owner)
	if err != nil {
		return nil, err
	}

	topRated, err := s.bookRepo.TopRated(ctx, owner, topRatedLimit)
	if err != nil {
		return nil, err
	}

	byGenre, err := s.bookRepo.CountByGenre(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &domain.LibraryStats{
		TotalBooks: total,
		TopRated:   topRated,
		ByGenre:    byGenre,
	}, nil
}

func validateYear(year int) error {
	if year == 0 {
		return nil
	}
	current := time.Now().Year()
	if year < domain.MinYear || year > current {
		return domain.NewValidationError(fmt.Sprintf("El año debe estar entre %d y %d", domain.MinYear, current))
	}
	return nil
}

func validateRating(rating int) error {
	if rating == 0 {
		return nil
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.NewValidationError("La valoración debe estar entre 1 y 5")
	}
	return nil
}
