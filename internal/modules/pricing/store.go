// README: Pricing configuration store backed by PostgreSQL (JSONB documents).
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chauffeur/internal/modules/zone"
)

const (
	vehiclesTable   = "widget_vehicles"
	zonesTable      = "zones"
	packagesTable   = "packages"
	surchargesTable = "surcharges"
)

// configDocument is a configuration type whose id may be left out of the
// stored document and taken from its key instead.
type configDocument[T any] interface {
	*T
	DefaultID(id string)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) LoadWidget(ctx context.Context, widgetID string) (*Widget, error) {
	var w Widget
	err := s.db.QueryRow(ctx, `
        SELECT id, name, base_fee, currency, timezone
        FROM widgets
        WHERE id = $1`, widgetID,
	).Scan(&w.ID, &w.Name, &w.BaseFee, &w.Currency, &w.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWidgetNotFound
	}
	if err != nil {
		return nil, err
	}

	if w.Vehicles, err = loadDocuments[Vehicle](ctx, s.db, vehiclesTable, widgetID); err != nil {
		return nil, err
	}
	if w.Zones, err = loadDocuments[zone.Zone](ctx, s.db, zonesTable, widgetID); err != nil {
		return nil, err
	}
	if w.Packages, err = loadDocuments[Package](ctx, s.db, packagesTable, widgetID); err != nil {
		return nil, err
	}
	if w.Surcharges, err = loadDocuments[Surcharge](ctx, s.db, surchargesTable, widgetID); err != nil {
		return nil, err
	}
	return &w, nil
}

// loadDocuments decodes the JSONB data column of a per-widget table, in
// dashboard order. table is always one of the constants above.
func loadDocuments[T any, PT configDocument[T]](ctx context.Context, db *pgxpool.Pool, table, widgetID string) ([]T, error) {
	rows, err := db.Query(ctx, `
        SELECT id, data FROM `+table+`
        WHERE widget_id = $1
        ORDER BY position, id`, widgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		doc, err := decodeDocument[T, PT](id, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", table, id, err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// decodeDocument unmarshals a JSON configuration document stored under id.
func decodeDocument[T any, PT configDocument[T]](id string, raw []byte) (T, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, err
	}
	PT(&doc).DefaultID(id)
	return doc, nil
}

// FindPromo returns the code when it is active, inside its validity window
// at the given instant and below its usage cap. Codes are case-insensitive.
func (s *Store) FindPromo(ctx context.Context, widgetID, code string, at time.Time) (*PromoCode, error) {
	var p PromoCode
	err := s.db.QueryRow(ctx, `
        SELECT code, discount_type, value
        FROM promo_codes
        WHERE widget_id = $1
          AND lower(code) = lower($2)
          AND active
          AND (valid_from IS NULL OR valid_from <= $3)
          AND (valid_until IS NULL OR valid_until >= $3)
          AND (max_uses IS NULL OR uses < max_uses)`,
		widgetID, code, at,
	).Scan(&p.Code, &p.Type, &p.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPromoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
