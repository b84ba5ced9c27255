package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/mgarcia-dev/biblioteca-api/internal/domain"
	"github.com/mgarcia-dev/biblioteca-api/internal/repository"
	"gorm.io/gorm"
)

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) *bookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Book, error) {
	var book domain.Book
	err := r.db.WithContext(ctx).
		First(&book, "id = ? AND user_id = ?", id, ownerID).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, filter repository.BookFilter) ([]*domain.Book, error) {
	query := r.db.WithContext(ctx).Model(&domain.Book{})

	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}
	if filter.Genre != "" && filter.Genre != repository.GenreAll {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"title ILIKE ? OR author ILIKE ? OR genre ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	switch filter.Sort {
	case repository.SortByTitle:
		query = query.Order("title ASC")
	case repository.SortByAuthor:
		query = query.Order("author ASC")
	case repository.SortByYear:
		query = query.Order("year DESC NULLS LAST")
	case repository.SortByRating:
		query = query.Order("rating DESC")
	default:
		query = query.Order("added_at DESC")
	}

	var books []*domain.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// DeleteByOwner removes the book in a single owner-scoped statement, so a
// concurrent duplicate delete observes gorm.ErrRecordNotFound.
func (r *bookRepository) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&domain.Book{}, "id = ? AND user_id = ?", id, ownerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepository) Count(ctx context.Context, ownerID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Book{})
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *bookRepository) TopRated(ctx context.Context, ownerID *uuid.UUID, limit int) ([]*domain.Book, error) {
	query := r.db.WithContext(ctx).Model(&domain.Book{})
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	var books []*domain.Book
	err := query.
		Order("rating DESC, title ASC").
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) CountByGenre(ctx context.Context, ownerID *uuid.UUID) ([]domain.GenreCount, error) {
	query := r.db.WithContext(ctx).Model(&domain.Book{})
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	var counts []domain.GenreCount
	err := query.
		Select("genre, COUNT(*) AS count").
		Group("genre").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
