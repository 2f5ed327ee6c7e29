package store

import (
	"database/sql"
	"time"
)

// Options returns the saved option flags, or nil when none were saved yet.
func (db *DB) Options() (*Options, error) {
	var o Options
	err := db.QueryRow(`
		SELECT sync_favorites, sync_profile_name, sync_profile_media,
			sync_channels, sync_privacy, sync_secure, sync_stickers, sync_bots
		FROM options WHERE id = 1`).
		Scan(&o.Favorites, &o.ProfileName, &o.ProfileMedia,
			&o.Channels, &o.Privacy, &o.Secure, &o.Stickers, &o.Bots)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// SetOptions saves the option flags, replacing any previous row.
func (db *DB) SetOptions(o Options) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO options (id, sync_favorites, sync_profile_name, sync_profile_media,
			sync_channels, sync_privacy, sync_secure, sync_stickers, sync_bots, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sync_favorites = excluded.sync_favorites,
			sync_profile_name = excluded.sync_profile_name,
			sync_profile_media = excluded.sync_profile_media,
			sync_channels = excluded.sync_channels,
			sync_privacy = excluded.sync_privacy,
			sync_secure = excluded.sync_secure,
			sync_stickers = excluded.sync_stickers,
			sync_bots = excluded.sync_bots,
			updated_at = excluded.updated_at`,
		o.Favorites, o.ProfileName, o.ProfileMedia,
		o.Channels, o.Privacy, o.Secure, o.Stickers, o.Bots, now)
	return err
}
