package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "malpot/pkg/domain"
	audit "malpot/pkg/platform/audit"
	"malpot/pkg/platform/tx"
)

// payloadMatcher checks the JSON payload column.
type payloadMatcher struct {
	t      *testing.T
	action string
	landID string
}

func (m payloadMatcher) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		m.t.Logf("unmarshal payload: %v", err)
		return false
	}
	return p.Action == m.action && p.LandID == m.landID && p.Category == string(audit.CategoryCompliance)
}

func TestAppendWritesOutboxRowInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	landID := id.LandID(uuid.New())
	transferID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outbox").
		WithArgs(sqlmock.AnyArg(), "transfer", transferID, string(audit.EventTransferApplied),
			payloadMatcher{t: t, action: string(audit.EventTransferApplied), landID: landID.String()},
			sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := New(db)
	err = tx.NewSQL(db).RunInTx(context.Background(), func(ctx context.Context) error {
		return store.Append(ctx, audit.Event{
			Timestamp:     time.Now(),
			Action:        string(audit.EventTransferApplied),
			AggregateType: "transfer",
			AggregateID:   transferID,
			LandID:        landID,
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendReportsInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO outbox").WillReturnError(errors.New("relation \"outbox\" does not exist"))

	err = New(db).Append(context.Background(), audit.Event{
		Action:      string(audit.EventLandRegistered),
		AggregateID: uuid.NewString(),
	})

	require.ErrorContains(t, err, "insert outbox entry")
}
