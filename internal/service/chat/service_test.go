package chat

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/service/mocks"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
)

type generator struct{ mock.Mock }

func (m *generator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestService(ttl time.Duration) (*Service, *mocks.FacilityService, *mocks.PatientService, *generator) {
	f, p, g := new(mocks.FacilityService), new(mocks.PatientService), new(generator)
	return NewService(f, p, g, Config{CacheTTL: ttl}, zerolog.Nop()), f, p, g
}

func ask(s *Service, q string) model.ChatResponse {
	return s.Process(context.Background(), model.ChatRequest{Query: q})
}

func TestPatientsInFacility(t *testing.T) {
	svc, _, patients, gen := newTestService(0)
	views := []model.PatientView{{ID: 1}, {ID: 2}, {ID: 3}}
	patients.On("ListByFacility", mock.Anything, int64(7), model.Unpaged()).
		Return(model.NewPage(views, model.Unpaged(), 3), nil)

	for _, q := range []string{"patients in facility 7", "List patients from Facility 7?"} {
		resp := ask(svc, q)

		assert.Equal(t, "Here are the patients from facility 7", resp.Response)
		assert.Equal(t, views, resp.Data)
	}
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestPatientsInFacility_Errors(t *testing.T) {
	svc, _, patients, _ := newTestService(0)
	patients.On("ListByFacility", mock.Anything, int64(99), model.Unpaged()).
		Return(model.Page[model.PatientView]{}, apperrors.FacilityNotFound(99))

	resp := ask(svc, "patients in facility 99")

	assert.Equal(t,
		"Sorry, I encountered an error processing your request: The medical facility with ID 99 doesn't exist in our system. Please verify the facility ID or contact your administrator for assistance.",
		resp.Response)
	assert.Nil(t, resp.Data)
}

func TestPatientsInFacility_NoIDGoesToGenerator(t *testing.T) {
	svc, _, patients, gen := newTestService(0)
	gen.On("Generate", mock.Anything, "patients in facility north").Return("I am not sure.", nil)

	resp := ask(svc, "patients in facility north")

	assert.Equal(t, "I am not sure.", resp.Response)
	patients.AssertNotCalled(t, "ListByFacility", mock.Anything, mock.Anything, mock.Anything)
}

func TestPatientsInFacility_NoIDSkipsCountIntent(t *testing.T) {
	svc, facilities, _, gen := newTestService(0)
	q := "patients in facility north: facilities with more than 5 patients"
	gen.On("Generate", mock.Anything, q).Return("Please give a facility id.", nil)

	resp := ask(svc, q)

	assert.Equal(t, "Please give a facility id.", resp.Response)
	facilities.AssertNotCalled(t, "ListWithPatientCountAbove", mock.Anything, mock.Anything)
}

func TestFacilitiesAbove(t *testing.T) {
	tests := []struct {
		query string
		n     int64
	}{
		{"Which facilities have more than 10 patients?", 10},
		{"facility with more than 3 patients", 3},
		{"facilities with more than twenty (20?) patients", 50},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			svc, facilities, _, _ := newTestService(0)
			views := []model.FacilityView{{ID: 1, PatientCount: tt.n + 1}}
			facilities.On("ListWithPatientCountAbove", mock.Anything, tt.n).Return(views, nil)

			resp := ask(svc, tt.query)

			assert.Equal(t, "Facilities with more than "+strconv.FormatInt(tt.n, 10)+" patients:", resp.Response)
			assert.Equal(t, views, resp.Data)
		})
	}
}

func TestFacilitiesAbove_None(t *testing.T) {
	svc, facilities, _, _ := newTestService(0)
	facilities.On("ListWithPatientCountAbove", mock.Anything, int64(500)).Return([]model.FacilityView{}, nil)

	resp := ask(svc, "facilities with more than 500 patients")

	assert.Equal(t, "No facilities found with more than 500 patients.", resp.Response)
	assert.Nil(t, resp.Data)
}

func TestFallback(t *testing.T) {
	t.Run("generated reply", func(t *testing.T) {
		svc, _, _, gen := newTestService(0)
		gen.On("Generate", mock.Anything, "What is triage?").Return("Triage sorts patients by urgency.", nil)

		resp := ask(svc, "What is triage?")

		assert.Equal(t, "Triage sorts patients by urgency.", resp.Response)
	})

	t.Run("generator failure", func(t *testing.T) {
		svc, _, _, gen := newTestService(0)
		gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

		resp := ask(svc, "What is triage?")

		assert.Equal(t, apologyReply, resp.Response)
	})
}

func TestFallback_CachesReplies(t *testing.T) {
	svc, _, _, gen := newTestService(time.Minute)
	gen.On("Generate", mock.Anything, "What is triage?").Return("Sorting by urgency.", nil).Once()

	first := ask(svc, "What is triage?")
	second := ask(svc, "  what is TRIAGE?")

	require.Equal(t, "Sorting by urgency.", first.Response)
	assert.Equal(t, first, second)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestFallback_FailuresAreNotCached(t *testing.T) {
	svc, _, _, gen := newTestService(time.Minute)
	gen.On("Generate", mock.Anything, "hi").Return("", errors.New("down")).Once()
	gen.On("Generate", mock.Anything, "hi").Return("hello", nil).Once()

	assert.Equal(t, apologyReply, ask(svc, "hi").Response)
	assert.Equal(t, "hello", ask(svc, "hi").Response)
}

func TestFacilityID(t *testing.T) {
	id, ok := facilityID("patients in facility 12.")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	_, ok = facilityID("patients in facility")
	assert.False(t, ok)
}
