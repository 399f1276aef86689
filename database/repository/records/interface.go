package recordsRepo

import (
	"context"
	"time"

	"glowapp/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ReservationRecordRepository stores receipts of reservations accepted by the salon.
type ReservationRecordRepository interface {
	Create(ctx context.Context, record models.ReservationRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.ReservationRecord, error)
	GetByUserID(ctx context.Context, userID string) ([]models.ReservationRecord, error)
	MarkReminded(ctx context.Context, id string, at time.Time) error
	DeleteByID(ctx context.Context, id string) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a ReservationRecordRepository on db and makes
// sure its indexes exist.
func NewMongoRecordRepo(db *mongo.Database) (ReservationRecordRepository, error) {
	r := &mongoRecordRepo{coll: db.Collection("reservation_records")}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}
