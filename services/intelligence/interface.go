package ai

import (
	"context"
	"errors"

	"glowapp/models"
)

// RecommendationCount is the number of looks every recommendation run returns.
const RecommendationCount = 3

var (
	ErrInvalidPhoto             = errors.New("photo must be a base64 data URI such as data:image/jpeg;base64,...")
	ErrMalformedRecommendations = errors.New("the stylist assistant returned an unexpected answer, please try again")
	ErrNoRecommendation         = errors.New("no style recommendation yet")
)

// StyleGenerator produces recommendation text and preview images.
type StyleGenerator interface {
	GenerateDescriptions(ctx context.Context, input models.StyleRecommendationInput) ([]string, error)
	// GenerateImage returns the image bytes and MIME type, or empty data when
	// the model answered without an image.
	GenerateImage(ctx context.Context, description string) (mimeType string, data []byte, err error)
}

// ImageStore hosts a generated image and returns its public URL.
type ImageStore interface {
	StoreImage(ctx context.Context, mimeType string, data []byte) (string, error)
}

// StylistLister is the part of the salon catalog the recommender needs.
type StylistLister interface {
	ListStylists(ctx context.Context, filter models.CatalogFilter) ([]models.Stylist, error)
}

// ResultStore remembers the last recommendation per user.
type ResultStore interface {
	Get(ctx context.Context, userID string) (*models.StyleRecommendationOutput, error)
	Set(ctx context.Context, userID string, out *models.StyleRecommendationOutput) error
}

// StyleService answers style recommendation requests.
type StyleService interface {
	Recommend(ctx context.Context, userID string, input models.StyleRecommendationInput) (*models.StyleRecommendationOutput, error)
	Last(ctx context.Context, userID string) (*models.StyleRecommendationOutput, error)
}
