package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	imagegen "google.golang.org/genai"
)

type fakeImageModels struct {
	model  string
	config *imagegen.GenerateContentConfig
	resp   *imagegen.GenerateContentResponse
	err    error
}

func (f *fakeImageModels) GenerateContent(_ context.Context, model string, _ []*imagegen.Content, config *imagegen.GenerateContentConfig) (*imagegen.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	return f.resp, f.err
}

func TestGenerateImageRequestsImageOutput(t *testing.T) {
	fake := &fakeImageModels{resp: &imagegen.GenerateContentResponse{
		Candidates: []*imagegen.Candidate{{
			Content: &imagegen.Content{Parts: []*imagegen.Part{
				{Text: "Here is the look."},
				{InlineData: &imagegen.Blob{MIMEType: "image/png", Data: []byte{0x89, 'P'}}},
			}},
		}},
	}}
	g := &GeminiClient{images: fake, imageModel: defaultImageModel}

	mimeType, data, err := g.GenerateImage(context.Background(), "soft layered bob")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, []byte{0x89, 'P'}, data)

	assert.Equal(t, defaultImageModel, fake.model)
	require.NotNil(t, fake.config)
	assert.ElementsMatch(t, []string{"TEXT", "IMAGE"}, fake.config.ResponseModalities)
}

func TestImageRequestPrompt(t *testing.T) {
	contents, config := imageRequest("copper balayage")
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 1)
	assert.Contains(t, contents[0].Parts[0].Text, "copper balayage")
	assert.Contains(t, config.ResponseModalities, "IMAGE")
}

func TestGenerateImageWithoutInlineData(t *testing.T) {
	fake := &fakeImageModels{resp: &imagegen.GenerateContentResponse{
		Candidates: []*imagegen.Candidate{{Content: &imagegen.Content{Parts: []*imagegen.Part{{Text: "no image"}}}}},
	}}
	g := &GeminiClient{images: fake, imageModel: defaultImageModel}

	mimeType, data, err := g.GenerateImage(context.Background(), "braids")
	require.NoError(t, err)
	assert.Empty(t, mimeType)
	assert.Nil(t, data)

	fake.err = errors.New("quota exceeded")
	_, _, err = g.GenerateImage(context.Background(), "braids")
	assert.ErrorContains(t, err, "quota exceeded")
}
