package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// SnapshotRepo stores one serialized cart per browsing session. It stands in
// for the browser's session storage: opaque payload, overwritten wholesale on
// every cart mutation.
type SnapshotRepo struct{ db *sqlx.DB }

func NewSnapshotRepo(db *sqlx.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// Read returns the stored payload, or (nil, nil) when the session has none.
func (r *SnapshotRepo) Read(sessionID string) ([]byte, error) {
	var payload string
	err := r.db.Get(&payload, `SELECT payload FROM cart_snapshots WHERE session_id = ?`, sessionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

func (r *SnapshotRepo) Write(sessionID string, payload []byte) error {
	_, err := r.db.Exec(`
	  INSERT INTO cart_snapshots(session_id, payload, updated_at)
	  VALUES(?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(session_id) DO UPDATE SET payload=excluded.payload, updated_at=CURRENT_TIMESTAMP
	`, sessionID, string(payload))
	return err
}
