package assessment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amara-ai/credit-engine/internal/domain"
)

func newTestRouter(t *testing.T) (*chi.Mux, testEnv) {
	t.Helper()

	env := newTestEnv(t)
	handlers := NewHandlers(env.service, env.repo, zerolog.Nop())

	router := chi.NewRouter()
	router.Route("/api/assessments", handlers.RegisterRoutes)
	return router, env
}

func TestHandleAssess(t *testing.T) {
	router, env := newTestRouter(t)

	borrower := domain.Borrower{FullName: "Ibu Siti", ClaimedMonthlyIncome: ptr(3000000.0)}
	require.NoError(t, env.borrowerRepo.Create(&borrower))

	body, _ := json.Marshal(map[string]string{"borrower_id": borrower.ID})
	req := httptest.NewRequest(http.MethodPost, "/api/assessments/assess", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var assessment domain.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))
	assert.Equal(t, borrower.ID, assessment.BorrowerID)
	assert.NotEmpty(t, assessment.ID)
	assert.NotEmpty(t, assessment.RiskCategory)
}

func TestHandleAssess_MissingBorrower(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"borrower_id": "missing"})
	req := httptest.NewRequest(http.MethodPost, "/api/assessments/assess", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAssess_BadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments/assess", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBatchAssess(t *testing.T) {
	router, env := newTestRouter(t)

	borrower := domain.Borrower{FullName: "Ibu Siti", ClaimedMonthlyIncome: ptr(3000000.0)}
	require.NoError(t, env.borrowerRepo.Create(&borrower))

	body, _ := json.Marshal(map[string]interface{}{
		"borrower_ids": []string{borrower.ID, "missing"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/assessments/batch-assess", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Assessments, 1)
	assert.Len(t, result.Errors, 1)
}

func TestHandleGetLatest_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/missing/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetHistory_EmptyList(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/b1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleRiskDistribution(t *testing.T) {
	router, env := newTestRouter(t)

	borrower := domain.Borrower{FullName: "Ibu Siti", ClaimedMonthlyIncome: ptr(3000000.0)}
	require.NoError(t, env.borrowerRepo.Create(&borrower))

	body, _ := json.Marshal(map[string]string{"borrower_id": borrower.ID})
	assessReq := httptest.NewRequest(http.MethodPost, "/api/assessments/assess", bytes.NewReader(body))
	assessRec := httptest.NewRecorder()
	router.ServeHTTP(assessRec, assessReq)
	require.Equal(t, http.StatusOK, assessRec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/statistics/risk-distribution", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Distribution map[string]int `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	total := 0
	for _, count := range response.Distribution {
		total += count
	}
	assert.Equal(t, 1, total)
}
