package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite keeps polling offsets so a restarted bot resumes where it stopped
type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, filePath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite3 database: %w", err)
	}

	client := &SQLite{
		db: db,
	}

	err = client.init(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing sqlite3 database: %w", err)
	}

	return client, nil
}

func (c *SQLite) Close() error {
	return c.db.Close()
}

// LoadOffset returns the saved offset of the bot, zero if nothing was saved yet
func (c *SQLite) LoadOffset(ctx context.Context, bot string) (int, error) {
	var offset int
	err := c.db.QueryRowContext(
		ctx,
		"SELECT update_offset FROM offsets WHERE bot = ?",
		bot,
	).Scan(&offset)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, err
	}

	return offset, nil
}

func (c *SQLite) SaveOffset(ctx context.Context, bot string, offset int) error {
	_, err := c.db.ExecContext(
		ctx,
		`INSERT INTO offsets (bot, update_offset, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(bot) DO UPDATE
			    SET update_offset = ?, updated_at = CURRENT_TIMESTAMP`,
		bot, offset, offset,
	)
	return err
}

//go:embed init.sql
var initQuery string

func (c *SQLite) init(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, initQuery)
	return err
}
