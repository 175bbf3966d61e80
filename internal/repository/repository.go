package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kalissr/voting-system/internal/model"
)

// ErrDuplicate reports a unique-constraint conflict (email already
// registered, vote already cast).
var ErrDuplicate = errors.New("duplicate record")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Users

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	var user model.User
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// UpdateUserPassword swaps the stored hash inside a transaction so the hash
// and updated_at either both change or neither does.
func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3
	`, passwordHash, time.Now().UTC(), userID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if tag.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

// Login attempts

func (s *Store) InsertLoginAttempt(ctx context.Context, email, ip string, attemptedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO login_attempts (email, ip_address, attempted_at)
		VALUES ($1, $2, $3)
	`, email, ip, attemptedAt)
	return err
}

func (s *Store) CountLoginAttempts(ctx context.Context, email string, since time.Time) (int64, error) {
	var count int64
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE email = $1 AND attempted_at >= $2
	`, email, since)
	err := row.Scan(&count)
	return count, err
}

func (s *Store) DeleteLoginAttempts(ctx context.Context, email string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM login_attempts WHERE email = $1`, email)
	return err
}

// Audit log

func (s *Store) InsertAuditEntry(ctx context.Context, entry model.AuditEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, action, resource, user_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.Action, entry.Resource, entry.UserID, entry.Details, entry.IPAddress, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditEntries(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, action, resource, user_id, details, ip_address, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Resource, &entry.UserID, &entry.Details, &entry.IPAddress, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Institutions

func (s *Store) CreateInstitution(ctx context.Context, inst model.Institution) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO institutions (id, owner_id, name, description, website, contact_email, contact_phone, founding_year, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, inst.ID, inst.OwnerID, inst.Name, inst.Description, inst.Website, inst.ContactEmail, inst.ContactPhone, inst.FoundingYear, inst.Status, inst.CreatedAt, inst.UpdatedAt)
	return err
}

func (s *Store) GetInstitution(ctx context.Context, id string) (model.Institution, error) {
	var inst model.Institution
	row := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, description, website, contact_email, contact_phone, founding_year, status, created_at, updated_at
		FROM institutions
		WHERE id = $1
	`, id)
	err := row.Scan(&inst.ID, &inst.OwnerID, &inst.Name, &inst.Description, &inst.Website, &inst.ContactEmail, &inst.ContactPhone, &inst.FoundingYear, &inst.Status, &inst.CreatedAt, &inst.UpdatedAt)
	return inst, err
}

func (s *Store) HasPendingInstitution(ctx context.Context, ownerID string) (bool, error) {
	var exists bool
	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM institutions WHERE owner_id = $1 AND status = $2)
	`, ownerID, model.StatusPending)
	err := row.Scan(&exists)
	return exists, err
}

func (s *Store) ListApprovedInstitutions(ctx context.Context) ([]model.RankedInstitution, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.owner_id, i.name, i.description, i.website, i.contact_email, i.contact_phone, i.founding_year, i.status, i.created_at, i.updated_at,
		       COUNT(v.id) AS votes
		FROM institutions i
		LEFT JOIN votes v ON v.institution_id = i.id
		WHERE i.status = $1
		GROUP BY i.id
		ORDER BY votes DESC, i.created_at ASC
	`, model.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranked []model.RankedInstitution
	for rows.Next() {
		var r model.RankedInstitution
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Description, &r.Website, &r.ContactEmail, &r.ContactPhone, &r.FoundingYear, &r.Status, &r.CreatedAt, &r.UpdatedAt, &r.Votes); err != nil {
			return nil, err
		}
		ranked = append(ranked, r)
	}
	return ranked, rows.Err()
}

func (s *Store) ListInstitutionsByStatus(ctx context.Context, status model.InstitutionStatus, limit int) ([]model.Institution, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, name, description, website, contact_email, contact_phone, founding_year, status, created_at, updated_at
		FROM institutions
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var institutions []model.Institution
	for rows.Next() {
		var inst model.Institution
		if err := rows.Scan(&inst.ID, &inst.OwnerID, &inst.Name, &inst.Description, &inst.Website, &inst.ContactEmail, &inst.ContactPhone, &inst.FoundingYear, &inst.Status, &inst.CreatedAt, &inst.UpdatedAt); err != nil {
			return nil, err
		}
		institutions = append(institutions, inst)
	}
	return institutions, rows.Err()
}

// TransitionInstitutionStatus moves a PENDING institution to the given
// status. Returns false when the row is missing or not pending, so a
// double-approve is a no-op rather than a silent overwrite.
func (s *Store) TransitionInstitutionStatus(ctx context.Context, id string, status model.InstitutionStatus) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE institutions
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, status, time.Now().UTC(), id, model.StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Votes

func (s *Store) CreateVote(ctx context.Context, vote model.Vote) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO votes (id, user_id, institution_id, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, vote.ID, vote.UserID, vote.InstitutionID, vote.IPAddress, vote.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) ListVotedInstitutionIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT institution_id FROM votes WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
