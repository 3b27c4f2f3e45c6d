package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"persona-doc-intel/internal/models"
	"persona-doc-intel/internal/textutil"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"github.com/rs/zerolog"
)

// generator is the part of the Ollama client the refiner needs
type generator interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

// OllamaRefiner rewrites ranked sections into short, persona-focused text
type OllamaRefiner struct {
	Client     generator
	Model      string
	MaxRetries int
	Timeout    time.Duration
	MaxLength  int
	log        zerolog.Logger
}

// NewOllamaRefiner creates a refiner talking to the Ollama host from the environment
func NewOllamaRefiner(model string, timeout time.Duration, log zerolog.Logger) *OllamaRefiner {
	client := api.NewClient(envconfig.Host(), http.DefaultClient)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaRefiner{
		Client:     client,
		Model:      model,
		MaxRetries: 2,
		Timeout:    timeout,
		MaxLength:  500,
		log:        log.With().Str("component", "llm").Str("model", model).Logger(),
	}
}

// GeneratePrompt builds the refinement prompt for one section
func (o *OllamaRefiner) GeneratePrompt(pc *models.PersonaContext, job string, s models.RankedSection) string {
	var promptBuilder strings.Builder

	// System instruction
	promptBuilder.WriteString("You extract the passages of a document that matter to a specific reader. ")
	promptBuilder.WriteString("Rewrite the section below as a concise, factual summary for that reader. ")
	promptBuilder.WriteString("Use only information from the section. Do not add introductions or commentary.\n\n")

	// Reader profile
	promptBuilder.WriteString(fmt.Sprintf("Reader role: %s (domain: %s)\n", pc.Role, pc.Domain))
	promptBuilder.WriteString(fmt.Sprintf("Task: %s\n", job))
	promptBuilder.WriteString(fmt.Sprintf("Intent: %s\n", pc.JobIntent))
	if len(pc.PriorityTopics) > 0 {
		promptBuilder.WriteString("Priority topics: " + strings.Join(pc.PriorityTopics, ", ") + "\n")
	}
	promptBuilder.WriteString("\n")

	// Section
	promptBuilder.WriteString(fmt.Sprintf("Section [%s, Page: %d] %s:\n", s.Document, s.PageNumber, s.Title))
	promptBuilder.WriteString(s.Content)
	promptBuilder.WriteString("\n\n")

	promptBuilder.WriteString(fmt.Sprintf("Summary (at most %d characters): ", o.MaxLength))

	return promptBuilder.String()
}

// GenerateResponse generates a response from the LLM
func (o *OllamaRefiner) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	req := api.GenerateRequest{
		Model:  o.Model,
		Prompt: prompt,
		Options: map[string]interface{}{
			"temperature": 0.1,
			"num_predict": 256,
		},
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	var responseBuilder strings.Builder
	err := o.Client.Generate(ctxWithTimeout, &req, func(resp api.GenerateResponse) error {
		_, err := responseBuilder.WriteString(resp.Response)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return responseBuilder.String(), nil
}

// Refine asks the model for refined text, retrying transient failures
func (o *OllamaRefiner) Refine(ctx context.Context, pc *models.PersonaContext, job string, s models.RankedSection) (string, error) {
	prompt := o.GeneratePrompt(pc, job, s)

	var text string
	var err error
	for retries := 0; retries <= o.MaxRetries; retries++ {
		if retries > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(retries) * time.Second):
			}
		}

		text, err = o.GenerateResponse(ctx, prompt)
		if err == nil {
			text = textutil.Clean(text)
			if text == "" {
				err = errors.New("empty response")
				continue
			}
			return textutil.Truncate(text, o.MaxLength), nil
		}
		o.log.Debug().Err(err).Int("attempt", retries+1).Msg("refinement attempt failed")
	}

	return "", fmt.Errorf("failed to refine section after %d retries: %w", o.MaxRetries, err)
}
