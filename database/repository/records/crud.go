package recordsRepo

import (
	"context"
	"errors"
	"time"

	"glowapp/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrRecordNotFound = errors.New("record not found")

// Create inserts a new reservation record and returns its ID.
func (r *mongoRecordRepo) Create(ctx context.Context, record models.ReservationRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetByID returns a reservation record by its ID.
func (r *mongoRecordRepo) GetByID(ctx context.Context, id string) (*models.ReservationRecord, error) {
	var record models.ReservationRecord
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByUserID lists a user's reservations, soonest appointment first.
func (r *mongoRecordRepo) GetByUserID(ctx context.Context, userID string) ([]models.ReservationRecord, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "confirmation.date", Value: 1},
		{Key: "confirmation.time", Value: 1},
	})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.ReservationRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkReminded records when the appointment reminder went out.
func (r *mongoRecordRepo) MarkReminded(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"remindedAt": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteByID removes a reservation record by ID.
func (r *mongoRecordRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
