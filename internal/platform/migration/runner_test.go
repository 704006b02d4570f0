// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/circleblog/internal/platform/migration"
)

func TestToPgx5DSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"postgres://u:p@db:5432/circle", "pgx5://u:p@db:5432/circle"},
		{"postgresql://u@db/circle?sslmode=disable", "pgx5://u@db/circle?sslmode=disable"},
		{"pgx5://db/circle", "pgx5://db/circle"},
		{"host=db dbname=circle", "host=db dbname=circle"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
	}
}
