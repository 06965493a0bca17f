package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"malpot/pkg/platform/sentinel"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{"bad conn", driver.ErrBadConn, true},
		{"connection failure class", &pq.Error{Code: "08006"}, true},
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"deadlock", &pq.Error{Code: "40P01"}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"no rows", sql.ErrNoRows, false},
		{"plain error", errors.New("syntax error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil, "op"))
	assert.ErrorIs(t, Classify(sql.ErrNoRows, "find land"), sentinel.ErrNotFound)
	assert.ErrorIs(t, Classify(&pq.Error{Code: "23505"}, "insert land"), sentinel.ErrAlreadyUsed)
	assert.ErrorIs(t, Classify(&pq.Error{Code: "08003"}, "update land"), sentinel.ErrUnavailable)

	plain := errors.New("boom")
	err := Classify(plain, "update land")
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
}
