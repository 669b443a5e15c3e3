// Package session authenticates dashboard viewers.
package session

import (
	"fmt"

	"github.com/mtlprog/panchayat/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Credentials are the raw values a viewer types into the login form.
type Credentials struct {
	ID     string      `json:"id"`
	Secret string      `json:"secret"`
	Role   domain.Role `json:"role"`
}

// HashSecret hashes a plaintext secret with bcrypt at the default cost.
func HashSecret(secret string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return hash, nil
}

// NewAccount builds an account from a plaintext or pre-hashed secret.
func NewAccount(id, secret, secretHash string, role domain.Role, category domain.Category, name string) (domain.Account, error) {
	hash := []byte(secretHash)
	if secretHash == "" {
		var err error
		hash, err = HashSecret(secret)
		if err != nil {
			return domain.Account{}, err
		}
	}
	return domain.Account{
		ID:         id,
		SecretHash: hash,
		Role:       role,
		Category:   category,
		Name:       name,
	}, nil
}

// Directory is the set of known dashboard accounts.
type Directory struct {
	accounts map[string]domain.Account
	// dummyHash is compared against when the id is unknown, so every
	// attempt costs one bcrypt comparison.
	dummyHash []byte
}

// NewDirectory creates a Directory. Account secrets must already be bcrypt hashes.
func NewDirectory(accounts []domain.Account) (*Directory, error) {
	d := &Directory{accounts: make(map[string]domain.Account, len(accounts))}

	cost := bcrypt.DefaultCost
	for _, account := range accounts {
		if _, dup := d.accounts[account.ID]; dup {
			return nil, fmt.Errorf("duplicate account id %s", account.ID)
		}
		c, err := bcrypt.Cost(account.SecretHash)
		if err != nil {
			return nil, fmt.Errorf("account %s: invalid secret hash: %w", account.ID, err)
		}
		cost = c
		d.accounts[account.ID] = account
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("panchayat-unknown-account"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy secret: %w", err)
	}
	d.dummyHash = dummy

	return d, nil
}

// Authenticate returns the viewer for credentials that match an account on
// id, secret and role. Every failure is domain.ErrAuth.
func (d *Directory) Authenticate(creds Credentials) (domain.Viewer, error) {
	account, ok := d.accounts[creds.ID]
	hash := d.dummyHash
	if ok {
		hash = account.SecretHash
	}

	secretErr := bcrypt.CompareHashAndPassword(hash, []byte(creds.Secret))
	if !ok || secretErr != nil || account.Role != creds.Role {
		return domain.Viewer{}, domain.ErrAuth
	}
	return account.Viewer(), nil
}

// Lookup returns the account's current viewer, if the account still exists.
func (d *Directory) Lookup(id string) (domain.Viewer, bool) {
	account, ok := d.accounts[id]
	if !ok {
		return domain.Viewer{}, false
	}
	return account.Viewer(), true
}
