package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AddAccount links a new account. The first account added becomes primary
// (the sender) unless one already exists.
func (db *DB) AddAccount(ref, username string) (*Account, error) {
	now := time.Now().UnixMilli()

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return nil, err
	}
	primary := count == 0

	res, err := tx.Exec(`
		INSERT INTO accounts (ref, username, is_primary, created_at)
		VALUES (?, ?, ?, ?)`,
		ref, username, primary, now)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, _ := res.LastInsertId()

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &Account{ID: id, Ref: ref, Username: username, Primary: primary, CreatedAt: now}, nil
}

// Accounts returns all linked accounts, primary first.
func (db *DB) Accounts() ([]Account, error) {
	rows, err := db.Query(`
		SELECT id, ref, username, is_primary, created_at
		FROM accounts ORDER BY is_primary DESC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Ref, &a.Username, &a.Primary, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AccountByRole returns the primary (sender) or non-primary (recipient)
// account. Returns nil when no such account is linked.
func (db *DB) AccountByRole(primary bool) (*Account, error) {
	var a Account
	err := db.QueryRow(`
		SELECT id, ref, username, is_primary, created_at
		FROM accounts WHERE is_primary = ? ORDER BY created_at ASC LIMIT 1`,
		primary).
		Scan(&a.ID, &a.Ref, &a.Username, &a.Primary, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SessionByRole returns the credential reference for the given role.
func (db *DB) SessionByRole(primary bool) (string, error) {
	a, err := db.AccountByRole(primary)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", fmt.Errorf("no %s account linked", roleName(primary))
	}
	return a.Ref, nil
}

// UsernameByRole returns the username for the given role.
func (db *DB) UsernameByRole(primary bool) (string, error) {
	a, err := db.AccountByRole(primary)
	if err != nil {
		return "", err
	}
	if a == nil {
		return "", fmt.Errorf("no %s account linked", roleName(primary))
	}
	return a.Username, nil
}

// SetPrimary marks the account with the given ref as the sender and clears
// the flag on every other account in one transaction, keeping the
// sender-XOR-recipient invariant.
func (db *DB) SetPrimary(ref string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRow(`SELECT id FROM accounts WHERE ref = ?`, ref).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("unknown account %q", ref)
		}
		return err
	}

	if _, err := tx.Exec(`UPDATE accounts SET is_primary = 0 WHERE is_primary = 1`); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE accounts SET is_primary = 1 WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// AccountByRef returns the account with the given credential ref, or nil
// when no such account is linked.
func (db *DB) AccountByRef(ref string) (*Account, error) {
	var a Account
	err := db.QueryRow(`
		SELECT id, ref, username, is_primary, created_at
		FROM accounts WHERE ref = ?`, ref).
		Scan(&a.ID, &a.Ref, &a.Username, &a.Primary, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetUsername updates the stored public username of an account, typically
// after a login flow confirmed it.
func (db *DB) SetUsername(ref, username string) error {
	res, err := db.Exec(`UPDATE accounts SET username = ? WHERE ref = ?`, username, ref)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("unknown account %q", ref)
	}
	return nil
}

// RemoveAccount unlinks an account by ref.
func (db *DB) RemoveAccount(ref string) error {
	res, err := db.Exec(`DELETE FROM accounts WHERE ref = ?`, ref)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("unknown account %q", ref)
	}
	return nil
}

func roleName(primary bool) string {
	if primary {
		return "sender"
	}
	return "recipient"
}
