package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"glowapp/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StyleRecommender runs the two-stage recommendation flow: one text call for
// the looks, then one image call per look in parallel.
type StyleRecommender struct {
	Generator StyleGenerator
	Images    ImageStore
	Stylists  StylistLister
	Results   ResultStore
	Logger    *zap.Logger
	Now       func() time.Time
}

var _ StyleService = (*StyleRecommender)(nil)

func (s *StyleRecommender) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// Recommend returns exactly RecommendationCount looks, each with a preview
// image URL and a specialist assigned round-robin from the stylist catalog.
func (s *StyleRecommender) Recommend(ctx context.Context, userID string, input models.StyleRecommendationInput) (*models.StyleRecommendationOutput, error) {
	if input.PhotoDataURI != "" {
		if _, _, err := ParseDataURI(input.PhotoDataURI); err != nil {
			return nil, err
		}
	}

	descriptions, err := s.Generator.GenerateDescriptions(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(descriptions) != RecommendationCount {
		return nil, fmt.Errorf("%w: got %d recommendations", ErrMalformedRecommendations, len(descriptions))
	}
	for _, d := range descriptions {
		if strings.TrimSpace(d) == "" {
			return nil, fmt.Errorf("%w: empty recommendation", ErrMalformedRecommendations)
		}
	}

	var stylists []models.Stylist
	if s.Stylists != nil {
		stylists, err = s.Stylists.ListStylists(ctx, models.CatalogFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to load stylists: %w", err)
		}
	}

	recs := make([]models.StyleRecommendation, len(descriptions))
	g, gctx := errgroup.WithContext(ctx)
	for i, description := range descriptions {
		recs[i] = models.StyleRecommendation{Description: description}
		if len(stylists) > 0 {
			recs[i].SpecialistID = stylists[i%len(stylists)].ID
		}
		g.Go(func() error {
			url, err := s.previewURL(gctx, description)
			if err != nil {
				return err
			}
			recs[i].ImageURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	out := &models.StyleRecommendationOutput{Recommendations: recs, GeneratedAt: now()}
	if s.Results != nil && userID != "" {
		if err := s.Results.Set(ctx, userID, out); err != nil {
			s.log().Warn("Failed to cache style recommendation", zap.String("userId", userID), zap.Error(err))
		}
	}
	return out, nil
}

// previewURL generates and hosts one preview image. Without an image store
// the image is returned inline as a data URI.
func (s *StyleRecommender) previewURL(ctx context.Context, description string) (string, error) {
	mimeType, data, err := s.Generator.GenerateImage(ctx, description)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		s.log().Warn("Image model returned no image", zap.String("description", description))
		return "", nil
	}
	if s.Images == nil {
		return DataURI(mimeType, data), nil
	}
	url, err := s.Images.StoreImage(ctx, mimeType, data)
	if err != nil {
		return "", fmt.Errorf("failed to store style image: %w", err)
	}
	return url, nil
}

// Last returns the user's most recent recommendation run.
func (s *StyleRecommender) Last(ctx context.Context, userID string) (*models.StyleRecommendationOutput, error) {
	if s.Results == nil {
		return nil, ErrNoRecommendation
	}
	return s.Results.Get(ctx, userID)
}
