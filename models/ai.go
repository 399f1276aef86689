package models

import "time"

// StyleRecommendationInput is the customer's request for style ideas.
// PhotoDataURI, when set, must look like "data:<mimetype>;base64,<data>".
type StyleRecommendationInput struct {
	Preferences  string `json:"preferences,omitempty"`
	PhotoDataURI string `json:"photoDataUri,omitempty"`
}

// StyleRecommendation is one suggested look with a generated image and a specialist.
type StyleRecommendation struct {
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	SpecialistID string `json:"specialistId"`
}

// StyleRecommendationOutput always carries exactly three recommendations.
type StyleRecommendationOutput struct {
	Recommendations []StyleRecommendation `json:"recommendations"`
	GeneratedAt     time.Time             `json:"generatedAt"`
}
