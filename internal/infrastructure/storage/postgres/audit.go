package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "fakturo/internal/core/context"
	"fakturo/internal/core/id"
	"fakturo/internal/domain/audit"
)

// Compile-time checks.
var (
	_ audit.Recorder = (*AuditRepo)(nil)
	_ audit.Reader   = (*AuditRepo)(nil)
)

// compressionAlgo labels how the details payload is stored.
type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

// AuditRepo writes the immutable audit trail. Entries are appended
// through the caller's transaction, so a failed audit write rolls back
// the business change it describes. Large detail payloads are
// compressed with zstd before storage.
type AuditRepo struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditRepo creates an audit repository. compressThreshold is the
// payload size in bytes above which details are zstd-compressed.
func NewAuditRepo(txManager *TxManager, compressThreshold int) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	if compressThreshold <= 0 {
		compressThreshold = 1024
	}

	return &AuditRepo{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: compressThreshold,
	}, nil
}

// Record appends one audit entry attributed to the context actor.
func (r *AuditRepo) Record(ctx context.Context, action audit.Action, entityType string, entityID id.ID, details map[string]any) error {
	var payload []byte
	if len(details) > 0 {
		var err error
		payload, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}

	algo := compressionNone
	var detailsJSON, detailsCompressed []byte
	if len(payload) > r.compressThreshold {
		detailsCompressed = r.encoder.EncodeAll(payload, nil)
		algo = compressionZstd
	} else {
		detailsJSON = payload
	}

	const sql = `
		INSERT INTO audit_log (
			id, action, entity_type, entity_id, actor_id,
			details, details_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		id.New(), action, entityType, entityID, appctx.GetActorID(ctx),
		detailsJSON, detailsCompressed, algo, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByEntity returns the newest entries for an entity, decompressing
// details transparently.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	const sql = `
		SELECT id, action, entity_type, entity_id, actor_id,
		       details, details_compressed, compression_algo, created_at
		FROM audit_log
		WHERE entity_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			detailsRaw []byte
			compressed []byte
			algo       compressionAlgo
		)
		if err := rows.Scan(
			&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.ActorID,
			&detailsRaw, &compressed, &algo, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}

		if algo == compressionZstd && len(compressed) > 0 {
			detailsRaw, err = r.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit details: %w", err)
			}
		}
		if len(detailsRaw) > 0 {
			if err := json.Unmarshal(detailsRaw, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
