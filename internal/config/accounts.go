package config

import (
	"fmt"
	"os"

	"github.com/mtlprog/panchayat/internal/domain"
	"gopkg.in/yaml.v3"
)

// AccountSpec is one dashboard login as written in the accounts file.
// Either Secret (plaintext) or SecretHash (bcrypt) must be set.
type AccountSpec struct {
	ID         string          `yaml:"id"`
	Secret     string          `yaml:"secret,omitempty"`
	SecretHash string          `yaml:"secret_hash,omitempty"`
	Role       domain.Role     `yaml:"role"`
	Category   domain.Category `yaml:"category,omitempty"`
	Name       string          `yaml:"name"`
}

type accountsFile struct {
	Accounts []AccountSpec `yaml:"accounts"`
}

// Validate checks a single account entry.
func (a AccountSpec) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("account id is required")
	}
	if a.Secret == "" && a.SecretHash == "" {
		return fmt.Errorf("account %s: secret or secret_hash is required", a.ID)
	}
	if !a.Role.IsValid() {
		return fmt.Errorf("account %s: unknown role %q", a.ID, a.Role)
	}
	if a.Role == domain.RoleOfficer && !a.Category.IsValid() {
		return fmt.Errorf("account %s: officer needs a valid category, got %q", a.ID, a.Category)
	}
	if a.Role == domain.RoleAdmin && a.Category != "" {
		return fmt.Errorf("account %s: admin accounts are not category scoped", a.ID)
	}
	return nil
}

// AccountsFromYAML parses and validates an accounts document.
func AccountsFromYAML(data []byte) ([]AccountSpec, error) {
	var file accountsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid accounts yaml: %w", err)
	}
	if len(file.Accounts) == 0 {
		return nil, fmt.Errorf("accounts file lists no accounts")
	}

	seen := make(map[string]struct{}, len(file.Accounts))
	for _, account := range file.Accounts {
		if err := account.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[account.ID]; dup {
			return nil, fmt.Errorf("duplicate account id %s", account.ID)
		}
		seen[account.ID] = struct{}{}
	}
	return file.Accounts, nil
}

// LoadAccounts reads the accounts file at path, or returns DefaultAccounts
// when path is empty.
func LoadAccounts(path string) ([]AccountSpec, error) {
	if path == "" {
		return DefaultAccounts(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}
	return AccountsFromYAML(data)
}

// DefaultAccounts returns the demo logins the dashboard ships with.
func DefaultAccounts() []AccountSpec {
	accounts, err := AccountsFromYAML([]byte(defaultAccountsTemplate))
	if err != nil {
		panic(fmt.Sprintf("built-in accounts are invalid: %v", err))
	}
	return accounts
}

const defaultAccountsTemplate = `accounts:
  - id: admin
    secret: admin
    role: admin
    name: Super Admin
  - id: officer_road
    secret: "123"
    role: officer
    category: road
    name: Road Officer
  - id: officer_water
    secret: "123"
    role: officer
    category: water
    name: Water Officer
  - id: officer_light
    secret: "123"
    role: officer
    category: light
    name: Light Officer
`
