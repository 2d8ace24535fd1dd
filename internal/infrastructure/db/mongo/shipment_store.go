package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

const collectionShipments = "shipments"

// ShipmentStore implements ports.ShipmentStore on MongoDB.
type ShipmentStore struct {
	col *mongo.Collection
}

func NewShipmentStore(db *mongo.Database) *ShipmentStore {
	return &ShipmentStore{col: db.Collection(collectionShipments)}
}

// LoadOpen returns every shipment still eligible for reconciliation: status
// outside the terminal set and not cancelled.
func (s *ShipmentStore) LoadOpen(ctx context.Context) ([]*domain.Shipment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	terminal := domain.TerminalStatuses()
	statuses := make([]string, len(terminal))
	for i, st := range terminal {
		statuses[i] = string(st)
	}

	cursor, err := s.col.Find(ctx, bson.M{
		"status":       bson.M{"$nin": statuses},
		"is_cancelled": false,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shipments []*domain.Shipment
	if err := cursor.All(ctx, &shipments); err != nil {
		return nil, err
	}
	return shipments, nil
}

// UpdateIfChanged applies newStatus as one conditional write: the filter
// requires the stored status to differ, so a concurrent writer applying the
// same status first turns this call into a no-op. The picking timestamp is
// set via $ifNull and therefore written at most once, ever.
func (s *ShipmentStore) UpdateIfChanged(
	ctx context.Context,
	trackingNumber string,
	newStatus domain.Status,
	activity ports.ActivityWindow,
) (ports.UpdateOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":     string(newStatus),
		"updated_at": time.Now().UTC(),
	}
	if !activity.Last.IsZero() {
		set["last_activity"] = activity.Last.UTC()
	}
	if newStatus == domain.StatusPicked && !activity.First.IsZero() {
		set["picking_time"] = bson.M{"$ifNull": bson.A{"$picking_time", activity.First.UTC()}}
	}

	filter := bson.M{
		"tracking_number": trackingNumber,
		"status":          bson.M{"$ne": string(newStatus)},
	}
	// Pipeline-style update so the $ifNull on picking_time evaluates inside
	// the same atomic operation as the status write.
	update := bson.A{bson.M{"$set": set}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before domain.Shipment
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err == nil {
		return ports.UpdateOutcome{
			Result:    ports.Updated,
			OldStatus: before.Status,
			Shipment:  &before,
		}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return ports.UpdateOutcome{}, err
	}

	// No document matched: either the status already equals newStatus or the
	// tracking number is unknown locally.
	count, err := s.col.CountDocuments(ctx, bson.M{"tracking_number": trackingNumber})
	if err != nil {
		return ports.UpdateOutcome{}, err
	}
	if count == 0 {
		return ports.UpdateOutcome{Result: ports.NotFound}, nil
	}
	return ports.UpdateOutcome{Result: ports.Unchanged}, nil
}

// EnsureIndexes creates the indexes the reconciliation queries rely on.
func (s *ShipmentStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_number", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := s.col.Indexes().CreateMany(ctx, indexes)
	return err
}
