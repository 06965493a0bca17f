package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"malpot/internal/land/models"
	"malpot/internal/platform/postgres"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/tx"
)

// PostgresStore persists lands in PostgreSQL. Writes join the transaction
// carried in ctx; Execute locks the row with SELECT ... FOR UPDATE.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const landColumns = `id, parcel_number, area, area_unit, district, ward, land_type,
	owner_name, owner_national_id, document_public_id, document_url,
	is_transfer_locked, transfer_history, created_by, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLand(row rowScanner) (*models.Land, error) {
	var (
		land      models.Land
		landID    uuid.UUID
		owner     string
		history   []string
		createdBy uuid.UUID
	)
	err := row.Scan(
		&landID,
		&land.ParcelNumber,
		&land.Area,
		&land.AreaUnit,
		&land.Location.District,
		&land.Location.Ward,
		&land.LandType,
		&land.Owner.Name,
		&owner,
		&land.OwnershipDocument.PublicID,
		&land.OwnershipDocument.URL,
		&land.IsTransferLocked,
		pq.Array(&history),
		&createdBy,
		&land.CreatedAt,
		&land.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	land.ID = id.LandID(landID)
	land.Owner.NationalID = id.NationalID(owner)
	land.CreatedBy = id.UserID(createdBy)
	land.TransferHistory = make([]id.TransferID, 0, len(history))
	for _, raw := range history {
		transferID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse transfer history entry %q: %w", raw, err)
		}
		land.TransferHistory = append(land.TransferHistory, id.TransferID(transferID))
	}
	return &land, nil
}

func historyArray(history []id.TransferID) any {
	out := make([]string, len(history))
	for i, t := range history {
		out[i] = t.String()
	}
	return pq.Array(out)
}

func (s *PostgresStore) Create(ctx context.Context, land *models.Land) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO lands (`+landColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		uuid.UUID(land.ID),
		land.ParcelNumber,
		land.Area,
		land.AreaUnit,
		land.Location.District,
		land.Location.Ward,
		land.LandType,
		land.Owner.Name,
		land.Owner.NationalID.String(),
		land.OwnershipDocument.PublicID,
		land.OwnershipDocument.URL,
		land.IsTransferLocked,
		historyArray(land.TransferHistory),
		uuid.UUID(land.CreatedBy),
		land.CreatedAt,
		land.UpdatedAt,
	)
	return postgres.Classify(err, "insert land")
}

func (s *PostgresStore) FindByID(ctx context.Context, landID id.LandID) (*models.Land, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+landColumns+` FROM lands WHERE id = $1`, uuid.UUID(landID))
	land, err := scanLand(row)
	if err != nil {
		return nil, postgres.Classify(err, "find land")
	}
	return land, nil
}

// Execute loads the land under a row lock, runs validate and mutate, and
// writes the mutable columns back. Without a transaction in ctx it opens one.
func (s *PostgresStore) Execute(ctx context.Context, landID id.LandID, validate func(*models.Land) error, mutate func(*models.Land)) (*models.Land, error) {
	var result *models.Land
	err := tx.Within(ctx, s.db, func(ctx context.Context, q tx.DBTX) error {
		row := q.QueryRowContext(ctx,
			`SELECT `+landColumns+` FROM lands WHERE id = $1 FOR UPDATE`, uuid.UUID(landID))
		land, err := scanLand(row)
		if err != nil {
			return postgres.Classify(err, "lock land")
		}
		if validate != nil {
			if err := validate(land); err != nil {
				return err
			}
		}
		mutate(land)

		_, err = q.ExecContext(ctx, `
			UPDATE lands
			SET owner_name = $2,
				owner_national_id = $3,
				is_transfer_locked = $4,
				transfer_history = $5,
				updated_at = $6
			WHERE id = $1
		`,
			uuid.UUID(land.ID),
			land.Owner.Name,
			land.Owner.NationalID.String(),
			land.IsTransferLocked,
			historyArray(land.TransferHistory),
			land.UpdatedAt,
		)
		if err != nil {
			return postgres.Classify(err, "update land")
		}
		result = land
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReleaseTransferLock clears the lock flag whatever its current value.
func (s *PostgresStore) ReleaseTransferLock(ctx context.Context, landID id.LandID, now time.Time) error {
	res, err := tx.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE lands SET is_transfer_locked = FALSE, updated_at = $2 WHERE id = $1`,
		uuid.UUID(landID), now)
	if err != nil {
		return postgres.Classify(err, "release transfer lock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return postgres.Classify(err, "release transfer lock")
	}
	if n == 0 {
		return postgres.Classify(sql.ErrNoRows, "release transfer lock")
	}
	return nil
}
