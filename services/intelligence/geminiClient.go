package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"glowapp/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	imagegen "google.golang.org/genai"
)

const (
	defaultTextModel  = "gemini-2.0-flash"
	defaultImageModel = "gemini-2.0-flash-preview-image-generation"
)

var recommendationPrompt = template.Must(template.New("recommendations").Parse(
	`You are an expert stylist at GlowApp, an elite salon.

Based on the customer's photo and/or preferences, recommend {{.Count}} distinct hairstyles or beauty treatments offered at the salon.

Customer preferences: {{if .Preferences}}{{.Preferences}}{{else}}none given{{end}}
{{if .HasPhoto}}The customer's photo is attached.{{else}}No photo provided.{{end}}

Answer with exactly {{.Count}} recommendations, one detailed description each.`))

// imageResponseModalities are required by the image preview models, which
// reject text-only output.
var imageResponseModalities = []string{"TEXT", "IMAGE"}

// imageModels is the subset of the genai Models service used for previews.
type imageModels interface {
	GenerateContent(ctx context.Context, model string, contents []*imagegen.Content, config *imagegen.GenerateContentConfig) (*imagegen.GenerateContentResponse, error)
}

// GeminiClient generates style recommendations with Gemini.
type GeminiClient struct {
	client     *genai.Client
	images     imageModels
	textModel  string
	imageModel string
}

func NewGeminiClient(ctx context.Context, apiKey, textModel, imageModel string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ai: gemini api key is required")
	}
	if strings.TrimSpace(textModel) == "" {
		textModel = defaultTextModel
	}
	if strings.TrimSpace(imageModel) == "" {
		imageModel = defaultImageModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create gemini client: %w", err)
	}
	images, err := imagegen.NewClient(ctx, &imagegen.ClientConfig{
		APIKey:  apiKey,
		Backend: imagegen.BackendGeminiAPI,
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ai: failed to create gemini image client: %w", err)
	}
	return &GeminiClient{client: client, images: images.Models, textModel: textModel, imageModel: imageModel}, nil
}

// Close releases the underlying client.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// GenerateDescriptions asks for exactly RecommendationCount looks as JSON.
func (g *GeminiClient) GenerateDescriptions(ctx context.Context, input models.StyleRecommendationInput) ([]string, error) {
	model := g.client.GenerativeModel(g.textModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"recommendations": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: fmt.Sprintf("exactly %d style recommendations", RecommendationCount),
			},
		},
		Required: []string{"recommendations"},
	}

	var prompt bytes.Buffer
	if err := recommendationPrompt.Execute(&prompt, map[string]any{
		"Count":       RecommendationCount,
		"Preferences": strings.TrimSpace(input.Preferences),
		"HasPhoto":    input.PhotoDataURI != "",
	}); err != nil {
		return nil, fmt.Errorf("ai: failed to render prompt: %w", err)
	}
	parts := []genai.Part{genai.Text(prompt.String())}
	if input.PhotoDataURI != "" {
		mimeType, data, err := ParseDataURI(input.PhotoDataURI)
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.Blob{MIMEType: mimeType, Data: data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("ai: gemini generate error: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	var out struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecommendations, err)
	}
	return out.Recommendations, nil
}

// GenerateImage renders a photorealistic preview of one look.
func (g *GeminiClient) GenerateImage(ctx context.Context, description string) (string, []byte, error) {
	contents, config := imageRequest(description)
	resp, err := g.images.GenerateContent(ctx, g.imageModel, contents, config)
	if err != nil {
		return "", nil, fmt.Errorf("ai: gemini image error: %w", err)
	}
	mimeType, data := inlineImage(resp)
	return mimeType, data, nil
}

func imageRequest(description string) ([]*imagegen.Content, *imagegen.GenerateContentConfig) {
	prompt := "A high-fashion, photorealistic image of the following hairstyle or beauty treatment: " + description
	return imagegen.Text(prompt), &imagegen.GenerateContentConfig{
		ResponseModalities: imageResponseModalities,
	}
}

// inlineImage returns the first inline image of the first candidate.
func inlineImage(resp *imagegen.GenerateContentResponse) (string, []byte) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.MIMEType, part.InlineData.Data
		}
	}
	return "", nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("ai: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("ai: gemini returned empty content")
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// ParseDataURI splits "data:<mimetype>;base64,<data>" into its MIME type and bytes.
func ParseDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidPhoto
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidPhoto
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mimeType == "" {
		return "", nil, ErrInvalidPhoto
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", nil, ErrInvalidPhoto
	}
	return mimeType, data, nil
}

// DataURI encodes data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
