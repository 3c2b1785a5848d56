package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "postgres message",
			err:  errors.New(`duplicate key value violates unique constraint "users_email_key"`),
			want: true,
		},
		{
			name: "sqlite message",
			err:  errors.New("UNIQUE constraint failed: users.email"),
			want: true,
		},
		{
			name: "typed pgconn unique violation",
			err:  fmt.Errorf("create user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", Message: "duplicate key value"}),
			want: true,
		},
		{
			name: "typed pgconn other class",
			err:  fmt.Errorf("create user: %w", &pgconn.PgError{Code: "23503", Message: "foreign key violation"}),
			want: false,
		},
		{
			name:       "constraint name matches",
			err:        errors.New(`duplicate key value violates unique constraint "users_email_key"`),
			constraint: "users_email_key",
			want:       true,
		},
		{
			name:       "constraint name differs",
			err:        errors.New(`duplicate key value violates unique constraint "users_email_key"`),
			constraint: "carts_user_id_key",
			want:       false,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation(%v, %q) = %v, want %v", tc.err, tc.constraint, got, tc.want)
			}
		})
	}
}
