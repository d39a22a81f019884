package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"liveability/internal/database"
)

const usersSchema = `
CREATE TABLE users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	street TEXT,
	city TEXT,
	state TEXT,
	zip_code TEXT,
	country TEXT,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	commute_preferences JSONB,
	housing_preferences JSONB,
	amenities_preferences JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// setupRepository starts a disposable PostgreSQL container, applies the users
// schema and returns a repository backed by it.
func setupRepository(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("liveability_test"),
		postgres.WithUsername("liveability"),
		postgres.WithPassword("liveability"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Exec(ctx, usersSchema)
	require.NoError(t, err)

	return NewRepository(db)
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "a@x.com", "hash-1")
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "a@x.com", created.Email)
	require.Equal(t, "hash-1", created.PasswordHash)
	require.Nil(t, created.Commute)
	require.False(t, created.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", byID.Email)
}

func TestRepositoryDuplicateEmail(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "a@x.com", "hash-1")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "a@x.com", "hash-2")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRepositoryNotFound(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 12345)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.SaveCommutePreferences(ctx, 12345, &CommutePreferences{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepositorySavePreferences(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "a@x.com", "hash-1")
	require.NoError(t, err)

	commute := &CommutePreferences{
		WorkLocation: WorkLocation{
			Street: "1 Main St", City: "Springfield", State: "IL",
			ZipCode: "62701", Country: "USA",
		},
		MaxCommuteTime:       30,
		TransportationMethod: "public_transit",
		Walkability:          true,
	}
	updated, err := repo.SaveCommutePreferences(ctx, created.ID, commute)
	require.NoError(t, err)
	require.NotNil(t, updated.Commute)
	require.Equal(t, 30, updated.Commute.MaxCommuteTime)
	require.True(t, updated.Commute.Walkability)

	housing := &HousingPreferences{
		HomeType:  "Apartment",
		RentOrBuy: "rent",
		RentPriceMin: 800, RentPriceMax: 1600,
		Bedrooms: 2, Bathrooms: 1,
		Parking: "street",
	}
	updated, err = repo.SaveHousingPreferences(ctx, created.ID, housing)
	require.NoError(t, err)
	require.NotNil(t, updated.Housing)

	// Earlier steps survive later ones.
	require.NotNil(t, updated.Commute)
	require.Equal(t, "public_transit", updated.Commute.TransportationMethod)

	// The saved shape round-trips through a fresh read.
	reread, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, housing, reread.Housing)

	// Re-submitting a step overwrites it.
	commute.MaxCommuteTime = 45
	updated, err = repo.SaveCommutePreferences(ctx, created.ID, commute)
	require.NoError(t, err)
	require.Equal(t, 45, updated.Commute.MaxCommuteTime)
}
