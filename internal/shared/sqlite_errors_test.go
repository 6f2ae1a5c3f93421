package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsSQLiteConflictError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("SQLITE_BUSY: database table is locked"), true},
		{errors.New("database is locked"), true},
		{fmt.Errorf("insert message: %w", errors.New("SQLITE_BUSY")), true},
		{errors.New("UNIQUE constraint failed: users.uid"), false},
		{errors.New("no such table: messages"), false},
	}

	for _, tc := range cases {
		if got := IsSQLiteConflictError(tc.err); got != tc.want {
			t.Errorf("IsSQLiteConflictError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
