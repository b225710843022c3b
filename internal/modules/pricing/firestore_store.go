// README: Pricing configuration store backed by Firestore documents.
package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chauffeur/internal/modules/zone"
)

// Layout: widgets/{id} holds the widget fields; vehicles, zones, packages,
// surcharges and promoCodes are sub-collections. Configuration documents
// are read in ascending "position" order and must carry that field.
const (
	widgetsCollection    = "widgets"
	vehiclesCollection   = "vehicles"
	zonesCollection      = "zones"
	packagesCollection   = "packages"
	surchargesCollection = "surcharges"
	promoCollection      = "promoCodes"
)

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type widgetDoc struct {
	Name     string  `firestore:"name"`
	BaseFee  float64 `firestore:"baseFee"`
	Currency string  `firestore:"currency"`
	Timezone string  `firestore:"timezone"`
}

type promoDoc struct {
	Code       string     `firestore:"code"`
	Type       PromoType  `firestore:"type"`
	Value      float64    `firestore:"value"`
	Active     bool       `firestore:"active"`
	ValidFrom  *time.Time `firestore:"validFrom"`
	ValidUntil *time.Time `firestore:"validUntil"`
	MaxUses    *int       `firestore:"maxUses"`
	Uses       int        `firestore:"uses"`
}

func (s *FirestoreStore) LoadWidget(ctx context.Context, widgetID string) (*Widget, error) {
	ref := s.client.Collection(widgetsCollection).Doc(widgetID)
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrWidgetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get widget: %w", err)
	}

	var doc widgetDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode widget: %w", err)
	}
	w := &Widget{
		ID:       snap.Ref.ID,
		Name:     doc.Name,
		BaseFee:  doc.BaseFee,
		Currency: doc.Currency,
		Timezone: doc.Timezone,
	}

	if w.Vehicles, err = loadSubcollection[Vehicle](ctx, ref, vehiclesCollection); err != nil {
		return nil, err
	}
	if w.Zones, err = loadSubcollection[zone.Zone](ctx, ref, zonesCollection); err != nil {
		return nil, err
	}
	if w.Packages, err = loadSubcollection[Package](ctx, ref, packagesCollection); err != nil {
		return nil, err
	}
	if w.Surcharges, err = loadSubcollection[Surcharge](ctx, ref, surchargesCollection); err != nil {
		return nil, err
	}
	return w, nil
}

func loadSubcollection[T any, PT configDocument[T]](ctx context.Context, ref *firestore.DocumentRef, name string) ([]T, error) {
	snaps, err := ref.Collection(name).OrderBy("position", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore list %s: %w", name, err)
	}
	out := make([]T, 0, len(snaps))
	for _, snap := range snaps {
		doc, err := decodeSnapshot[T, PT](snap.Ref.ID, snap.DataTo)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", name, snap.Ref.ID, err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// decodeSnapshot fills a document through dataTo (DocumentSnapshot.DataTo)
// and takes the document id when the data carries none.
func decodeSnapshot[T any, PT configDocument[T]](docID string, dataTo func(any) error) (T, error) {
	var doc T
	if err := dataTo(&doc); err != nil {
		return doc, err
	}
	PT(&doc).DefaultID(docID)
	return doc, nil
}

// FindPromo expects codes stored upper-case.
func (s *FirestoreStore) FindPromo(ctx context.Context, widgetID, code string, at time.Time) (*PromoCode, error) {
	snaps, err := s.client.Collection(widgetsCollection).Doc(widgetID).Collection(promoCollection).
		Where("code", "==", strings.ToUpper(code)).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("firestore promo lookup: %w", err)
	}
	if len(snaps) == 0 {
		return nil, ErrPromoNotFound
	}

	var doc promoDoc
	if err := snaps[0].DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode promo: %w", err)
	}
	if !doc.redeemable(at) {
		return nil, ErrPromoNotFound
	}
	return &PromoCode{Code: doc.Code, Type: doc.Type, Value: doc.Value}, nil
}

func (d promoDoc) redeemable(at time.Time) bool {
	if !d.Active {
		return false
	}
	if d.ValidFrom != nil && at.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && at.After(*d.ValidUntil) {
		return false
	}
	if d.MaxUses != nil && d.Uses >= *d.MaxUses {
		return false
	}
	return true
}
