package briefer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/models"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// VertexGenerator generates briefs with Gemini on Vertex AI. Output that fails
// validation is sent back to the model once, in the same chat, with the
// validation error.
type VertexGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewVertexGenerator creates a generator for the given project and region.
func NewVertexGenerator(ctx context.Context, projectID, region, model string, logger *zap.Logger) (*VertexGenerator, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexGenerator: projectID and region cannot be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	m := client.GenerativeModel(model)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt + "\n\n" + SchemaPrompt)},
	}
	m.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
	}

	return &VertexGenerator{client: client, model: m, logger: logger}, nil
}

// Generate extracts a brief from rawText.
func (g *VertexGenerator) Generate(ctx context.Context, rawText string) (*models.Brief, error) {
	chat := g.model.StartChat()

	text, err := g.send(ctx, chat, ExtractionPrompt+rawText)
	if err != nil {
		return nil, err
	}
	brief, err := ParseBrief(text)
	var outErr *OutputError
	if !errors.As(err, &outErr) {
		return brief, err
	}

	g.logger.Debug("brief failed validation, retrying with repair prompt", zap.Error(err))
	text, err = g.send(ctx, chat, RepairPrompt(outErr.Err))
	if err != nil {
		return nil, err
	}
	return ParseBrief(text)
}

func (g *VertexGenerator) send(ctx context.Context, chat *genai.ChatSession, prompt string) (string, error) {
	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp), nil
}

// Close releases the underlying client.
func (g *VertexGenerator) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
