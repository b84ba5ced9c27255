package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mgarcia-dev/biblioteca-api/internal/repository"
	"github.com/mgarcia-dev/biblioteca-api/internal/repository/postgres"
	"github.com/mgarcia-dev/biblioteca-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBookRepository_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	base := time.Now().Add(-time.Hour)
	testutil.NewBookBuilder(owner.ID).
		WithTitle("Dune").WithAuthor("Frank Herbert").WithGenre("Ciencia Ficción").
		WithYear(1965).WithRating(5).WithAddedAt(base).
		Build(t, testDB.DB)
	testutil.NewBookBuilder(owner.ID).
		WithTitle("El Hobbit").WithAuthor("Tolkien").WithGenre("Fantasía").
		WithYear(1937).WithRating(4).WithAddedAt(base.Add(time.Minute)).
		Build(t, testDB.DB)
	testutil.NewBookBuilder(owner.ID).
		WithTitle("Crónicas de Dune").WithAuthor("Anónimo").WithGenre("Ensayo").
		WithYear(2001).WithRating(2).WithAddedAt(base.Add(2 * time.Minute)).
		Build(t, testDB.DB)
	testutil.NewBookBuilder(other.ID).
		WithTitle("Libro Ajeno").WithGenre("Fantasía").
		Build(t, testDB.DB)

	ownerID := owner.ID

	tests := []struct {
		name       string
		filter     repository.BookFilter
		wantTitles []string
	}{
		{
			name:       "owner scoped default sort is newest first",
			filter:     repository.BookFilter{OwnerID: &ownerID},
			wantTitles: []string{"Crónicas de Dune", "El Hobbit", "Dune"},
		},
		{
			name:       "unscoped sees all owners",
			filter:     repository.BookFilter{},
			wantTitles: []string{"Libro Ajeno", "Crónicas de Dune", "El Hobbit", "Dune"},
		},
		{
			name:       "genre exact match",
			filter:     repository.BookFilter{OwnerID: &ownerID, Genre: "Fantasía"},
			wantTitles: []string{"El Hobbit"},
		},
		{
			name:       "genre sentinel disables filter",
			filter:     repository.BookFilter{OwnerID: &ownerID, Genre: repository.GenreAll},
			wantTitles: []string{"Crónicas de Dune", "El Hobbit", "Dune"},
		},
		{
			name:       "search matches title and author case-insensitively",
			filter:     repository.BookFilter{OwnerID: &ownerID, Search: "dune"},
			wantTitles: []string{"Crónicas de Dune", "Dune"},
		},
		{
			name:       "search matches genre",
			filter:     repository.BookFilter{OwnerID: &ownerID, Search: "fanta"},
			wantTitles: []string{"El Hobbit"},
		},
		{
			name:       "sort by title",
			filter:     repository.BookFilter{OwnerID: &ownerID, Sort: repository.SortByTitle},
			wantTitles: []string{"Crónicas de Dune", "Dune", "El Hobbit"},
		},
		{
			name:       "sort by year descending",
			filter:     repository.BookFilter{OwnerID: &ownerID, Sort: repository.SortByYear},
			wantTitles: []string{"Crónicas de Dune", "Dune", "El Hobbit"},
		},
		{
			name:       "sort by rating descending",
			filter:     repository.BookFilter{OwnerID: &ownerID, Sort: repository.SortByRating},
			wantTitles: []string{"Dune", "El Hobbit", "Crónicas de Dune"},
		},
		{
			name:       "unknown sort falls back to newest first",
			filter:     repository.BookFilter{OwnerID: &ownerID, Sort: "precio"},
			wantTitles: []string{"Crónicas de Dune", "El Hobbit", "Dune"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)

			titles := make([]string, 0, len(books))
			for _, b := range books {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestBookRepository_GetByOwner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	book := testutil.NewBookBuilder(owner.ID).Build(t, testDB.DB)

	got, err := repo.GetByOwner(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, got.ID)

	// Someone else's book is indistinguishable from a missing one
	_, err = repo.GetByOwner(ctx, stranger.ID, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByOwner(ctx, owner.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBookRepository_DeleteByOwner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	book := testutil.NewBookBuilder(owner.ID).Build(t, testDB.DB)

	// Wrong owner deletes nothing
	err := repo.DeleteByOwner(ctx, stranger.ID, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.DeleteByOwner(ctx, owner.ID, book.ID))

	// Second delete finds nothing
	err = repo.DeleteByOwner(ctx, owner.ID, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBookRepository_TopRated(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	titles := []struct {
		title  string
		rating int
	}{
		{"Zeta", 5},
		{"Alfa", 5},
		{"Beta", 4},
		{"Gamma", 3},
		{"Delta", 2},
		{"Épsilon", 1},
	}
	for _, b := range titles {
		testutil.NewBookBuilder(owner.ID).
			WithTitle(b.title).WithRating(b.rating).
			Build(t, testDB.DB)
	}

	books, err := repo.TopRated(ctx, &owner.ID, 5)
	require.NoError(t, err)
	require.Len(t, books, 5)

	// Rating descending, ties broken by title ascending
	got := make([]string, 0, len(books))
	for _, b := range books {
		got = append(got, b.Title)
	}
	assert.Equal(t, []string{"Alfa", "Zeta", "Beta", "Gamma", "Delta"}, got)
}

func TestBookRepository_CountByGenre(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	for i := 0; i < 3; i++ {
		testutil.NewBookBuilder(owner.ID).WithGenre("Novela").Build(t, testDB.DB)
	}
	testutil.NewBookBuilder(owner.ID).WithGenre("Poesía").Build(t, testDB.DB)

	counts, err := repo.CountByGenre(ctx, &owner.ID)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	assert.Equal(t, "Novela", counts[0].Genre)
	assert.Equal(t, int64(3), counts[0].Count)
	assert.Equal(t, "Poesía", counts[1].Genre)
	assert.Equal(t, int64(1), counts[1].Count)
}

func TestBookRepository_Count(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.NewBookBuilder(owner.ID).Build(t, testDB.DB)
	testutil.NewBookBuilder(owner.ID).Build(t, testDB.DB)
	testutil.NewBookBuilder(other.ID).Build(t, testDB.DB)

	scoped, err := repo.Count(ctx, &owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), scoped)

	all, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all)
}
