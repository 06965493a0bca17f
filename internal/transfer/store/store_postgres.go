package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"malpot/internal/platform/postgres"
	"malpot/internal/transfer/models"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/tx"
)

// PostgresStore persists transfers in ownership_transfers. The partial
// unique index on (land_id) WHERE status = 'Pending' surfaces as
// sentinel.ErrAlreadyUsed from Create.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const transferColumns = `id, land_id, previous_owner_name, previous_owner_national_id,
	new_owner_name, new_owner_national_id, documents, status,
	verified_by, verified_at, rejection_reason, created_by, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*models.Transfer, error) {
	var (
		t          models.Transfer
		transferID uuid.UUID
		landID     uuid.UUID
		prevNID    string
		newNID     string
		documents  []byte
		status     string
		verifiedBy uuid.NullUUID
		verifiedAt sql.NullTime
		createdBy  uuid.UUID
	)
	err := row.Scan(
		&transferID,
		&landID,
		&t.PreviousOwner.Name,
		&prevNID,
		&t.NewOwner.Name,
		&newNID,
		&documents,
		&status,
		&verifiedBy,
		&verifiedAt,
		&t.RejectionReason,
		&createdBy,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(documents, &t.Documents); err != nil {
		return nil, fmt.Errorf("decode transfer documents: %w", err)
	}
	t.ID = id.TransferID(transferID)
	t.LandID = id.LandID(landID)
	t.PreviousOwner.NationalID = id.NationalID(prevNID)
	t.NewOwner.NationalID = id.NationalID(newNID)
	t.Status = models.Status(status)
	t.CreatedBy = id.UserID(createdBy)
	if verifiedBy.Valid {
		reviewer := id.UserID(verifiedBy.UUID)
		t.VerifiedBy = &reviewer
	}
	if verifiedAt.Valid {
		at := verifiedAt.Time
		t.VerifiedAt = &at
	}
	return &t, nil
}

func nullableReviewer(v *id.UserID) uuid.NullUUID {
	if v == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*v), Valid: true}
}

func nullableTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func (s *PostgresStore) Create(ctx context.Context, t *models.Transfer) error {
	documents, err := json.Marshal(t.Documents)
	if err != nil {
		return fmt.Errorf("encode transfer documents: %w", err)
	}
	_, err = tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO ownership_transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		uuid.UUID(t.ID),
		uuid.UUID(t.LandID),
		t.PreviousOwner.Name,
		t.PreviousOwner.NationalID.String(),
		t.NewOwner.Name,
		t.NewOwner.NationalID.String(),
		documents,
		string(t.Status),
		nullableReviewer(t.VerifiedBy),
		nullableTime(t.VerifiedAt),
		t.RejectionReason,
		uuid.UUID(t.CreatedBy),
		t.CreatedAt,
	)
	return postgres.Classify(err, "insert transfer")
}

func (s *PostgresStore) FindByID(ctx context.Context, transferID id.TransferID) (*models.Transfer, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM ownership_transfers WHERE id = $1`, uuid.UUID(transferID))
	t, err := scanTransfer(row)
	if err != nil {
		return nil, postgres.Classify(err, "find transfer")
	}
	return t, nil
}

// Execute locks the transfer row, runs validate and mutate, and writes the
// decision columns back.
func (s *PostgresStore) Execute(ctx context.Context, transferID id.TransferID, validate func(*models.Transfer) error, mutate func(*models.Transfer)) (*models.Transfer, error) {
	var result *models.Transfer
	err := tx.Within(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		row := q.QueryRowContext(ctx,
			`SELECT `+transferColumns+` FROM ownership_transfers WHERE id = $1 FOR UPDATE`, uuid.UUID(transferID))
		t, err := scanTransfer(row)
		if err != nil {
			return postgres.Classify(err, "lock transfer")
		}
		if validate != nil {
			if err := validate(t); err != nil {
				return err
			}
		}
		mutate(t)

		_, err = q.ExecContext(ctx, `
			UPDATE ownership_transfers
			SET status = $2,
				verified_by = $3,
				verified_at = $4,
				rejection_reason = $5
			WHERE id = $1
		`,
			uuid.UUID(t.ID),
			string(t.Status),
			nullableReviewer(t.VerifiedBy),
			nullableTime(t.VerifiedAt),
			t.RejectionReason,
		)
		if err != nil {
			return postgres.Classify(err, "update transfer")
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListByLand returns the land's transfers, newest first.
func (s *PostgresStore) ListByLand(ctx context.Context, landID id.LandID) ([]*models.Transfer, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+transferColumns+`
		FROM ownership_transfers
		WHERE land_id = $1
		ORDER BY created_at DESC, id
	`, uuid.UUID(landID))
	if err != nil {
		return nil, postgres.Classify(err, "list transfers")
	}
	defer rows.Close()

	out := []*models.Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, postgres.Classify(err, "scan transfer")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Classify(err, "list transfers")
	}
	return out, nil
}
