package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"serializacion": {&pgconn.PgError{Code: "40001"}, true},
		"deadlock":      {&pgconn.PgError{Code: "40P01"}, true},
		"unico":         {fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		"check":         {&pgconn.PgError{Code: "23514"}, false},
		"otro":          {errors.New("conexión cerrada"), false},
		"nil":           {nil, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryable(tc.err))
		})
	}
}

func TestBackoff_Creciente(t *testing.T) {
	assert.Less(t, backoff(0), backoff(3))
	assert.LessOrEqual(t, backoff(20), maxBackoff)
}
