// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/circleblog/internal/platform/sec"
)

func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, sec.HashToken("abc"), sec.HashToken("abc"))
	assert.NotEqual(t, sec.HashToken("abc"), sec.HashToken("abd"))
	assert.Len(t, sec.HashToken("abc"), 64)
}

func TestConstantTimeEqual(t *testing.T) {
	tests := []struct {
		name      string
		expected  string
		submitted string
		want      bool
	}{
		{"match", "token", "token", true},
		{"mismatch", "token", "tokem", false},
		{"length_differs", "token", "token-longer", false},
		{"empty_submitted", "token", "", false},
		{"empty_expected", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sec.ConstantTimeEqual(tt.expected, tt.submitted))
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("hunter22", hash))
	assert.False(t, sec.CheckPasswordHash("hunter23", hash))
}

func TestUserRole_Valid(t *testing.T) {
	assert.True(t, sec.RoleUser.Valid())
	assert.True(t, sec.RoleAdmin.Valid())
	assert.False(t, sec.UserRole("moderator").Valid())
}
