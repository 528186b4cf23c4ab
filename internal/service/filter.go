package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/usecase"
)

const (
	errNoJSONBody       = "No JSON body provided"
	errMissingFields    = "Title and preferences are required"
	errProcessingPrefix = "Error processing video filter request: "
)

// FilterRequest is the body sent by the browser extension
type FilterRequest struct {
	Title       string `json:"title" validate:"required"`
	Preferences string `json:"preferences" validate:"required"`
}

// FilterResponse is the filter envelope. Decision is always set.
type FilterResponse struct {
	Decision string `json:"decision"`
	Error    string `json:"error,omitempty"`
}

// FilterService adapts raw filter requests to the classifier
type FilterService struct {
	classifier *usecase.ClassifierUsecase
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewFilterService creates a new filter service
func NewFilterService(classifier *usecase.ClassifierUsecase) *FilterService {
	return &FilterService{
		classifier: classifier,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     log.With().Str("component", "filter").Logger(),
	}
}

// HandleRaw decodes a JSON body and classifies it. It returns the HTTP
// status and envelope to send; the envelope always carries a decision.
func (s *FilterService) HandleRaw(ctx context.Context, body []byte) (status int, resp FilterResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("Filter handler panicked")
			status, resp = failure(http.StatusInternalServerError, fmt.Sprintf("%s%v", errProcessingPrefix, r))
		}
	}()

	// null and {} count as no body, like a missing one
	var fields map[string]json.RawMessage
	if len(body) == 0 || json.Unmarshal(body, &fields) != nil || len(fields) == 0 {
		return failure(http.StatusBadRequest, errNoJSONBody)
	}

	var req FilterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return failure(http.StatusBadRequest, errNoJSONBody)
	}

	return s.Handle(ctx, req)
}

// Handle classifies a decoded request
func (s *FilterService) Handle(ctx context.Context, req FilterRequest) (int, FilterResponse) {
	if err := s.validate.Struct(req); err != nil {
		return failure(http.StatusBadRequest, errMissingFields)
	}

	query := domain.NewPreferenceQuery(req.Preferences, req.Title)
	outcome, err := s.classifier.Classify(ctx, query)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return failure(http.StatusBadRequest, vErr.Message)
		}
		s.logger.Error().Err(err).Msg("Error processing video filter request")
		return failure(http.StatusInternalServerError, errProcessingPrefix+err.Error())
	}

	if outcome.WasFallback {
		s.logger.Debug().Str("title", query.SubjectTitle).Msg("Fallback decision")
	}

	return http.StatusOK, FilterResponse{Decision: outcome.Decision.String()}
}

func failure(status int, msg string) (int, FilterResponse) {
	return status, FilterResponse{Decision: domain.DecisionKeep.String(), Error: msg}
}
