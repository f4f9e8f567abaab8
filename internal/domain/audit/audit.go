package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionAccessDenied    = "access.denied"
	ActionStatusChanged   = "evaluation.status_changed"
	ActionScoresSubmitted = "evaluation.scores_submitted"
	ActionMatrixChanged   = "matrix.changed"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, detail any) error {
	if s == nil || s.DB == nil {
		return nil
	}
	var detailJSON []byte
	if detail != nil {
		payload, err := json.Marshal(detail)
		if err != nil {
			return err
		}
		detailJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, entity_type, entity_id, request_id, detail_json)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, actorID, action, entityType, entityID, requestID, detailJSON)
	return err
}

func (s *Service) ListForEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, actor_id, action, entity_type, entity_id, request_id, created_at, detail_json
    FROM audit_events
    WHERE entity_type = $1 AND entity_id = $2
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, entityType, entityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.CreatedAt, &evt.Detail); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
