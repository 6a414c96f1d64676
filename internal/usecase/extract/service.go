// Package extract turns a raw user query into the structured attribute
// set via one call to the text-generation provider.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aromatch/scentia/internal/domain"
	"github.com/aromatch/scentia/internal/domain/query"
	"github.com/aromatch/scentia/internal/metrics"
)

// Extraction is the outcome of a successful extraction: the normalized
// query text (reused downstream for ranking) and its attribute set.
type Extraction struct {
	Normalized string
	Attributes query.Attributes
}

// Service extracts structured attributes from free-text queries.
type Service struct {
	generator Generator
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates an extraction service. timeout bounds the single
// generation call; there is no retry, a malformed or failed reply is a
// hard failure for the request.
func New(generator Generator, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{generator: generator, timeout: timeout, logger: logger}
}

// Extract normalizes the query, prompts the generation provider once,
// and parses the structured object embedded in its reply. Every
// recognized field is present in the result; fields the model did not
// return confidently carry the absent sentinel.
func (s *Service) Extract(ctx context.Context, raw string) (Extraction, error) {
	normalized := query.Normalize(raw)
	prompt := buildPrompt(normalized)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		metrics.ExtractionOutcomesTotal.WithLabelValues("provider_error").Inc()
		return Extraction{}, fmt.Errorf("generate extraction reply: %w", err)
	}

	attrs, err := parseReply(reply)
	if err != nil {
		metrics.ExtractionOutcomesTotal.WithLabelValues("malformed").Inc()
		s.logger.Warn("malformed extraction reply",
			zap.String("normalized_query", normalized),
			zap.Int("reply_len", len(reply)),
			zap.Error(err),
		)
		return Extraction{}, err
	}

	attrs.Sanitize()
	metrics.ExtractionOutcomesTotal.WithLabelValues("ok").Inc()

	return Extraction{Normalized: normalized, Attributes: attrs}, nil
}

// parseReply locates the first '{' and the last '}' in the reply and
// parses the span between them. JSON null values are tolerated and mean
// "not extracted".
func parseReply(reply string) (query.Attributes, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end == -1 || end < start {
		return query.Attributes{}, fmt.Errorf(
			"no JSON object in reply: %w", domain.ErrExtractionFailed,
		)
	}

	var dto attributesDTO
	if err := json.Unmarshal([]byte(reply[start:end+1]), &dto); err != nil {
		return query.Attributes{}, fmt.Errorf(
			"parse reply object: %v: %w", err, domain.ErrExtractionFailed,
		)
	}

	return query.Attributes{
		Category:    dto.Category,
		Gender:      dto.Gender,
		Longevity:   dto.Longevity,
		Sillage:     dto.Sillage,
		Seasons:     dto.SuitableSeason,
		Times:       dto.SuitableTime,
		MainAccords: dto.MainAccords,
	}, nil
}

// attributesDTO mirrors the model's reply shape. List fields accept a
// bare string as a one-element list; models do that often enough.
type attributesDTO struct {
	Category       string     `json:"category"`
	Gender         *string    `json:"gender"`
	Longevity      *string    `json:"longevity"`
	Sillage        *string    `json:"sillage"`
	SuitableSeason stringList `json:"suitable_season"`
	SuitableTime   stringList `json:"suitable_time"`
	MainAccords    stringList `json:"main_accords"`
}

type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*l = values
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = []string{single}
	return nil
}
