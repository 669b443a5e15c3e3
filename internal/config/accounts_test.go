package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAccounts(t *testing.T) {
	accounts := DefaultAccounts()
	require.Len(t, accounts, 4)

	assert.Equal(t, "admin", accounts[0].ID)
	assert.Equal(t, domain.RoleAdmin, accounts[0].Role)
	assert.Empty(t, accounts[0].Category)

	for _, officer := range accounts[1:] {
		assert.Equal(t, domain.RoleOfficer, officer.Role)
		assert.True(t, officer.Category.IsValid(), officer.ID)
		assert.Equal(t, "123", officer.Secret)
	}
}

func TestLoadAccounts_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yml")
	doc := `accounts:
  - id: officer_drain
    secret_hash: "$2a$10$abcdefghijklmnopqrstuu"
    role: officer
    category: drain
    name: Drain Officer
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	accounts, err := LoadAccounts(path)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, domain.CategoryDrain, accounts[0].Category)
	assert.NotEmpty(t, accounts[0].SecretHash)
}

func TestLoadAccounts_EmptyPathUsesDefaults(t *testing.T) {
	accounts, err := LoadAccounts("")
	require.NoError(t, err)
	assert.Len(t, accounts, 4)
}

func TestLoadAccounts_Missing(t *testing.T) {
	_, err := LoadAccounts(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestAccountsFromYAML_Invalid(t *testing.T) {
	tests := map[string]string{
		"not yaml":        "accounts: [",
		"empty":           "accounts: []",
		"no secret":       "accounts:\n  - id: a\n    role: admin\n",
		"bad role":        "accounts:\n  - id: a\n    secret: x\n    role: clerk\n",
		"officer no cat":  "accounts:\n  - id: a\n    secret: x\n    role: officer\n",
		"officer bad cat": "accounts:\n  - id: a\n    secret: x\n    role: officer\n    category: parks\n",
		"scoped admin":    "accounts:\n  - id: a\n    secret: x\n    role: admin\n    category: road\n",
		"duplicate":       "accounts:\n  - id: a\n    secret: x\n    role: admin\n  - id: a\n    secret: y\n    role: admin\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := AccountsFromYAML([]byte(doc))
			assert.Error(t, err)
		})
	}
}
