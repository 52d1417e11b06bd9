package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"prospace/internal/account/models"
	regmodels "prospace/internal/registration/models"
	id "prospace/pkg/domain"
	"prospace/pkg/platform/sentinel"
)

// Postgres persists accounts in PostgreSQL. Pure I/O; uniqueness violations
// surface as sentinel.ErrAlreadyUsed for the service to translate.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) CreateIfEmailAvailable(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (
			id, email, first_name, last_name, phone, country, city,
			profession_type, category, specialty, languages, bio, photo_url,
			plan, password_hash, status, created_at, updated_at
		)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(account.ID),
		account.Email,
		account.FirstName,
		account.LastName,
		account.Phone,
		account.Country,
		account.City,
		string(account.ProfessionType),
		account.Category,
		account.Specialty,
		pq.Array(account.Languages),
		account.Bio,
		account.PhotoURL,
		string(account.Plan),
		account.PasswordHash,
		string(account.Status),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx,
		selectAccount+` WHERE id = $1`, uuid.UUID(accountID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return account, nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx,
		selectAccount+` WHERE email = lower($1)`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return account, nil
}

func (s *Postgres) Update(ctx context.Context, account *models.Account) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET
			status = $2, photo_url = $3, updated_at = $4
		WHERE id = $1
	`,
		uuid.UUID(account.ID),
		string(account.Status),
		account.PhotoURL,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const selectAccount = `
	SELECT id, email, first_name, last_name, phone, country, city,
		profession_type, category, specialty, languages, bio, photo_url,
		plan, password_hash, status, created_at, updated_at
	FROM accounts
`

type accountRow interface {
	Scan(dest ...any) error
}

func scanAccount(row accountRow) (*models.Account, error) {
	var account models.Account
	var accountID uuid.UUID
	var professionType, plan, status string
	if err := row.Scan(
		&accountID,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&account.Phone,
		&account.Country,
		&account.City,
		&professionType,
		&account.Category,
		&account.Specialty,
		pq.Array(&account.Languages),
		&account.Bio,
		&account.PhotoURL,
		&plan,
		&account.PasswordHash,
		&status,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account.ID = id.AccountID(accountID)
	account.ProfessionType = regmodels.ProfessionType(professionType)
	account.Plan = regmodels.Plan(plan)
	account.Status = models.AccountStatus(status)
	return &account, nil
}
