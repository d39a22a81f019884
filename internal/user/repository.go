package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"liveability/internal/database"
)

// Store is the persistence boundary for user records
type Store interface {
	Create(ctx context.Context, email, passwordHash string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	SaveCommutePreferences(ctx context.Context, id int64, prefs *CommutePreferences) (*User, error)
	SaveHousingPreferences(ctx context.Context, id int64, prefs *HousingPreferences) (*User, error)
	SaveAmenitiesPreferences(ctx context.Context, id int64, prefs *AmenitiesPreferences) (*User, error)
}

// Repository implements Store on PostgreSQL
type Repository struct {
	db database.Service
}

// NewRepository creates a new user repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, password_hash, street, city, state, zip_code, country,
	latitude, longitude, commute_preferences, housing_preferences, amenities_preferences,
	created_at, updated_at`

// Create inserts a new user record. A duplicate email maps to ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, email, passwordHash string) (*User, error) {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query, email, passwordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// SaveCommutePreferences merges the commute step into the user record
func (r *Repository) SaveCommutePreferences(ctx context.Context, id int64, prefs *CommutePreferences) (*User, error) {
	return r.savePreferences(ctx, id, "commute_preferences", prefs)
}

// SaveHousingPreferences merges the housing step into the user record
func (r *Repository) SaveHousingPreferences(ctx context.Context, id int64, prefs *HousingPreferences) (*User, error) {
	return r.savePreferences(ctx, id, "housing_preferences", prefs)
}

// SaveAmenitiesPreferences merges the amenities step into the user record
func (r *Repository) SaveAmenitiesPreferences(ctx context.Context, id int64, prefs *AmenitiesPreferences) (*User, error) {
	return r.savePreferences(ctx, id, "amenities_preferences", prefs)
}

// savePreferences writes one preference column. The column name comes only
// from the three wrappers above, never from request data.
func (r *Repository) savePreferences(ctx context.Context, id int64, column string, prefs any) (*User, error) {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+userColumns, column)

	u, err := scanUser(r.db.QueryRow(ctx, query, payload, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	return u, nil
}

// scanUser reads a full user row. Preference columns are jsonb and may be NULL.
func scanUser(row pgx.Row) (*User, error) {
	var (
		u         User
		commute   []byte
		housing   []byte
		amenities []byte
	)

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.Street, &u.City, &u.State, &u.ZipCode, &u.Country,
		&u.Latitude, &u.Longitude,
		&commute, &housing, &amenities,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(commute) > 0 {
		u.Commute = &CommutePreferences{}
		if err := json.Unmarshal(commute, u.Commute); err != nil {
			return nil, fmt.Errorf("corrupt commute preferences for user %d: %w", u.ID, err)
		}
	}
	if len(housing) > 0 {
		u.Housing = &HousingPreferences{}
		if err := json.Unmarshal(housing, u.Housing); err != nil {
			return nil, fmt.Errorf("corrupt housing preferences for user %d: %w", u.ID, err)
		}
	}
	if len(amenities) > 0 {
		u.Amenities = &AmenitiesPreferences{}
		if err := json.Unmarshal(amenities, u.Amenities); err != nil {
			return nil, fmt.Errorf("corrupt amenities preferences for user %d: %w", u.ID, err)
		}
	}

	return &u, nil
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
