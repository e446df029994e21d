package patient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/service/mocks"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
)

func setup() (*gin.Engine, *mocks.PatientService) {
	gin.SetMode(gin.TestMode)
	svc := new(mocks.PatientService)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListPatients_Filters(t *testing.T) {
	r, svc := setup()
	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	page := model.Pagination{Page: 1, PageSize: 20}
	svc.On("List", mock.Anything, page, model.PatientFilters{Search: "doe", Gender: "F", DateOfBirth: &dob}).
		Return(model.NewPage([]model.PatientView{}, page, 0), nil)

	w := do(r, http.MethodGet, "/api/v1/patients?search=doe&dob=1990-04-12&gender=F", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	w = do(r, http.MethodGet, "/api/v1/patients?dob=12/04/1990", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "The dob field is invalid")
}

func TestCreatePatient(t *testing.T) {
	r, svc := setup()
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in model.PatientInput) bool {
		return in.FirstName == "Jane" && in.DateOfBirth.Format(model.DateLayout) == "1990-04-12"
	})).Return(model.PatientView{ID: 9, FirstName: "Jane", DateOfBirth: model.Date{Time: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)}}, nil)

	w := do(r, http.MethodPost, "/api/v1/patients",
		`{"facility_id":1,"first_name":"Jane","last_name":"Doe","date_of_birth":"1990-04-12","gender":"F"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"date_of_birth":"1990-04-12"`)

	w = do(r, http.MethodPost, "/api/v1/patients", `{"date_of_birth":"April 12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePatient_Duplicate(t *testing.T) {
	r, svc := setup()
	msg := "Another patient record exists with the same email address 'a@b.c'. Please verify the patient details or contact support if you need to merge records."
	svc.On("Create", mock.Anything, mock.Anything).Return(model.PatientView{}, apperrors.Duplicate(msg, "Patient"))

	w := do(r, http.MethodPost, "/api/v1/patients", `{"first_name":"Jane"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msg)
}

func TestGetUpdateDeletePatient(t *testing.T) {
	r, svc := setup()
	svc.On("GetByID", mock.Anything, int64(3)).Return(model.PatientView{}, apperrors.PatientNotFound(3))
	svc.On("Update", mock.Anything, int64(4), mock.Anything).Return(model.PatientView{ID: 4}, nil)
	svc.On("Delete", mock.Anything, int64(4)).Return(nil)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/patients/3", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/patients/0", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/v1/patients/4", `{"first_name":"J"}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/v1/patients/4", "").Code)
}
