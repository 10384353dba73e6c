package session

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const profileFileName = "profile.sqlite"

// Profile keys. "token" is the legacy spelling still honored on read.
const (
	keyToken       = "adminToken"
	keyLegacyToken = "token"
	keyUserID      = "userId"
	keyEmail       = "userEmail"
	keyRole        = "userRole"
)

// Profile is a Store persisted in a small SQLite key/value table under the
// config dir, so a login survives restarts until logout or expiry.
type Profile struct {
	path string
	db   *sql.DB
}

func ProfilePath(configDir string) string {
	return filepath.Join(configDir, profileFileName)
}

func OpenProfile(ctx context.Context, configDir string) (*Profile, error) {
	if strings.TrimSpace(configDir) == "" {
		return nil, errors.New("session: empty config dir")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}
	path := ProfilePath(configDir)
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS profile (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0o600)
	return &Profile{path: path, db: db}, nil
}

func (p *Profile) Path() string { return p.path }

func (p *Profile) Close() error { return p.db.Close() }

func (p *Profile) get(key string) string {
	var v string
	err := p.db.QueryRow(`SELECT v FROM profile WHERE k = ?`, key).Scan(&v)
	if err != nil {
		return ""
	}
	return v
}

func (p *Profile) Credential() (string, bool) {
	tok := strings.TrimSpace(p.get(keyToken))
	if tok == "" {
		tok = strings.TrimSpace(p.get(keyLegacyToken))
	}
	return tok, tok != ""
}

func (p *Profile) UserID() (string, bool) {
	id := p.get(keyUserID)
	return id, id != ""
}

func (p *Profile) Current() State {
	tok, _ := p.Credential()
	return State{
		Token:  tok,
		UserID: p.get(keyUserID),
		Email:  p.get(keyEmail),
		Role:   p.get(keyRole),
	}
}

func (p *Profile) Init(st State) error {
	ctx := context.Background()
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return err
	}
	kv := [][2]string{
		{keyToken, st.Token},
		{keyLegacyToken, st.Token},
		{keyUserID, st.UserID},
		{keyEmail, st.Email},
		{keyRole, st.Role},
	}
	for _, e := range kv {
		if e[1] == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO profile(k, v) VALUES(?, ?)`, e[0], e[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (p *Profile) Clear() error {
	_, err := p.db.Exec(`DELETE FROM profile`)
	return err
}
