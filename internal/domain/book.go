package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultGenre  = "Otro"
	DefaultRating = 3

	// MinYear is the oldest publication year accepted; the upper bound is
	// the current year at validation time.
	MinYear = 1000

	MinRating = 1
	MaxRating = 5
)

type Book struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Title      string    `json:"titulo" gorm:"not null"`
	Author     string    `json:"autor"`
	Genre      string    `json:"genero"`
	Year       *int      `json:"ano_publicacion"`
	Rating     int       `json:"valoracion"`
	Comment    string    `json:"comentario"`
	CoverImage *string   `json:"foto"`
	Summary    string    `json:"resumen"`
	AddedAt    time.Time `json:"fechaAgregado"`
	UpdatedAt  time.Time `json:"fechaModificado"`
}

// GenreCount is one row of the per-genre breakdown in library stats.
type GenreCount struct {
	Genre string `json:"genero"`
	Count int64  `json:"cantidad"`
}

// LibraryStats aggregates a caller-visible slice of the collection:
// every book for the superuser, the caller's own books otherwise.
type LibraryStats struct {
	TotalBooks int64        `json:"totalLibros"`
	TopRated   []*Book      `json:"librosMejorValorados"`
	ByGenre    []GenreCount `json:"librosPorGenero"`
}
