package postgres

import (
	"database/sql"
)

// UserRepo implements repository.UserRepository for bot access control
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// IsAuthorized checks if user has entered the bot password
func (r *UserRepo) IsAuthorized(userID int64) (bool, error) {
	var authorized bool
	query := `SELECT authorized FROM bot_users WHERE user_id = $1`
	err := r.db.QueryRow(query, userID).Scan(&authorized)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return authorized, nil
}

// AuthorizeUser marks user as authorized and records when
func (r *UserRepo) AuthorizeUser(userID int64) error {
	query := `
		INSERT INTO bot_users (user_id, authorized, authorized_at)
		VALUES ($1, TRUE, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET authorized = TRUE, authorized_at = NOW()
	`
	_, err := r.db.Exec(query, userID)
	return err
}

// EnsureUserExists creates an unauthorized user record if none exists
func (r *UserRepo) EnsureUserExists(userID int64) error {
	query := `
		INSERT INTO bot_users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(query, userID)
	return err
}
