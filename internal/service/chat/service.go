package chat

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/service/facility"
	"github.com/jwalitptl/healthcare-api/internal/service/patient"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
	"github.com/jwalitptl/healthcare-api/pkg/llm"
)

const (
	defaultPatientThreshold = 50

	apologyReply = "Sorry, I encountered an error processing your request. Please try again."
)

var (
	patientCountPattern = regexp.MustCompile(`(?i)facilit(?:y|ies).*more than.*\d+.*patient`)
	numericToken        = regexp.MustCompile(`^\d+$`)
)

// intent answers a query it recognises. ok is false when the query is not
// meant for it.
type intent func(ctx context.Context, query string) (resp model.ChatResponse, ok bool)

type Config struct {
	// CacheTTL bounds how long generated replies are reused. Zero disables
	// the cache.
	CacheTTL time.Duration
}

// Service routes free-text questions to the lifecycle services or, when no
// intent claims them, to the text generator.
type Service struct {
	facilities facility.FacilityService
	patients   patient.PatientService
	generator  llm.Generator
	replies    *cache.Cache
	logger     zerolog.Logger
	intents    []intent
}

func NewService(
	facilities facility.FacilityService,
	patients patient.PatientService,
	generator llm.Generator,
	cfg Config,
	logger zerolog.Logger,
) *Service {
	s := &Service{
		facilities: facilities,
		patients:   patients,
		generator:  generator,
		logger:     logger.With().Str("service", "chat").Logger(),
	}
	if cfg.CacheTTL > 0 {
		s.replies = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	s.intents = []intent{s.facilityPatients, s.facilitiesAbove}
	return s
}

// Process always produces a reply. Failures are turned into apology text.
func (s *Service) Process(ctx context.Context, req model.ChatRequest) model.ChatResponse {
	for _, handle := range s.intents {
		if resp, ok := handle(ctx, req.Query); ok {
			return resp
		}
	}
	return s.generate(ctx, req.Query)
}

func (s *Service) facilityPatients(ctx context.Context, query string) (model.ChatResponse, bool) {
	lower := strings.ToLower(query)
	if !strings.Contains(lower, "patients from facility") && !strings.Contains(lower, "patients in facility") {
		return model.ChatResponse{}, false
	}
	id, ok := facilityID(lower)
	if !ok {
		// The query is claimed even without an id; later intents never see it.
		return s.generate(ctx, query), true
	}

	page, err := s.patients.ListByFacility(ctx, id, model.Unpaged())
	if err != nil {
		return s.failed(err), true
	}
	return model.ChatResponse{
		Response: fmt.Sprintf("Here are the patients from facility %d", id),
		Data:     page.Items,
	}, true
}

func (s *Service) facilitiesAbove(ctx context.Context, query string) (model.ChatResponse, bool) {
	if !patientCountPattern.MatchString(query) {
		return model.ChatResponse{}, false
	}
	n := firstNumber(query)

	facilities, err := s.facilities.ListWithPatientCountAbove(ctx, n)
	if err != nil {
		return s.failed(err), true
	}
	if len(facilities) == 0 {
		return model.ChatResponse{Response: fmt.Sprintf("No facilities found with more than %d patients.", n)}, true
	}
	return model.ChatResponse{
		Response: fmt.Sprintf("Facilities with more than %d patients:", n),
		Data:     facilities,
	}, true
}

func (s *Service) generate(ctx context.Context, query string) model.ChatResponse {
	key := strings.ToLower(strings.TrimSpace(query))
	if s.replies != nil {
		if text, ok := s.replies.Get(key); ok {
			return model.ChatResponse{Response: text.(string)}
		}
	}

	text, err := s.generator.Generate(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("text generation failed")
		return model.ChatResponse{Response: apologyReply}
	}
	if s.replies != nil {
		s.replies.SetDefault(key, text)
	}
	return model.ChatResponse{Response: text}
}

func (s *Service) failed(err error) model.ChatResponse {
	msg := err.Error()
	if appErr, ok := apperrors.As(err); ok {
		msg = appErr.Message
	}
	return model.ChatResponse{Response: "Sorry, I encountered an error processing your request: " + msg}
}

// facilityID parses the token that follows the word "facility".
func facilityID(lower string) (int64, bool) {
	fields := strings.Fields(lower)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] != "facility" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimRight(fields[i+1], ".,;:!?"), 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	}
	return 0, false
}

// firstNumber returns the first purely numeric token, or the default threshold.
func firstNumber(query string) int64 {
	for _, field := range strings.Fields(query) {
		if !numericToken.MatchString(field) {
			continue
		}
		if n, err := strconv.ParseInt(field, 10, 64); err == nil {
			return n
		}
		break
	}
	return defaultPatientThreshold
}
