package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"pantry-cli/internal/model"

	"github.com/google/uuid"
)

// AppendEvent records a mutation in the workspace event log.
func (s Store) AppendEvent(ctx context.Context, typ string, itemID int64, payload any) (model.Event, error) {
	ev := model.Event{
		ID:      uuid.NewString(),
		TS:      time.Now().UTC(),
		Type:    strings.TrimSpace(typ),
		ItemID:  itemID,
		Payload: payload,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return model.Event{}, err
	}

	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Event{}, err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `INSERT INTO events(event_id, ts_unixms, type, item_id, payload_json) VALUES(?, ?, ?, ?, ?)`,
		ev.ID, ev.TS.UnixMilli(), ev.Type, ev.ItemID, string(raw)); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// ReadEvents returns events newest first. limit <= 0 means all.
func (s Store) ReadEvents(ctx context.Context, limit int) ([]model.Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, ts_unixms, type, item_id, payload_json FROM events ORDER BY ts_unixms DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev          model.Event
			tsMs        int64
			payloadJSON string
		)
		if err := rows.Scan(&ev.ID, &tsMs, &ev.Type, &ev.ItemID, &payloadJSON); err != nil {
			return nil, err
		}
		ev.TS = time.UnixMilli(tsMs).UTC()
		var payload any
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err == nil {
			ev.Payload = payload
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
