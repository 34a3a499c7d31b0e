package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/johnquangdev/interview-coach/errors"
	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/cache"
	"github.com/johnquangdev/interview-coach/internal/usecase/interview"
	"github.com/johnquangdev/interview-coach/pkg/validator"
)

type fakeCompleter struct {
	sc         entities.SessionContext
	utterances []entities.Utterance
	duration   time.Duration
	result     *interview.Result
	err        error
}

func (f *fakeCompleter) Complete(_ context.Context, sc entities.SessionContext, utterances []entities.Utterance, duration time.Duration) (*interview.Result, error) {
	f.sc = sc
	f.utterances = utterances
	f.duration = duration
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &interview.Result{InterviewID: sc.InterviewID}, nil
}

type stubRepo struct {
	record *entities.SessionRecord
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.SessionRecord, error) {
	if s.record != nil && s.record.ID == id {
		return s.record, nil
	}
	return nil, nil
}

func (s *stubRepo) FindLatestByEmail(context.Context, string, *uuid.UUID) (*entities.SessionRecord, error) {
	return nil, nil
}

func (s *stubRepo) UpdateCompletion(context.Context, uuid.UUID, entities.CompletionFields) error {
	return nil
}

func (s *stubRepo) Create(_ context.Context, r *entities.SessionRecord) (*entities.SessionRecord, error) {
	return r, nil
}

type stubResumes struct {
	exists bool
}

func (s stubResumes) PublicURL(path string) string {
	return "https://cdn.example.com/resumes/" + path
}

func (s stubResumes) Exists(context.Context, string) (bool, error) {
	return s.exists, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func newInterviewHandler(svc Completer, repo *stubRepo, resumes ResumeLocator) (*Interview, *interview.ContextStore) {
	contexts := interview.NewContextStore(cache.NewMemoryStore(), time.Minute)
	return NewInterviewHandler(svc, repo, contexts, resumes, nil), contexts
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string, h echo.HandlerFunc, route string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.Add(method, route, h)
	e.ServeHTTP(rec, req)
	return rec
}

func TestInterview_Complete(t *testing.T) {
	e := newTestEcho()
	svc := &fakeCompleter{}
	h, contexts := newInterviewHandler(svc, &stubRepo{}, nil)
	require.NoError(t, contexts.Stage(context.Background(), entities.SessionContext{
		InterviewID:    "iv-1",
		CandidateEmail: "ada@example.com",
		ResumeText:     "Go developer",
	}))

	body := `{
		"interview_id": "iv-1",
		"duration_seconds": 61.5,
		"utterances": [
			{"role": "assistant", "text": "Hello"},
			{"role": "user", "text": "Hi there", "words": [{"word": "Hi", "start": 0.1, "end": 0.3}, {"word": "there", "start": 0.4, "end": 0.7}]}
		]
	}`
	rec := doJSON(t, e, http.MethodPost, "/v1/interviews/complete", body, h.Complete, "/v1/interviews/complete")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ada@example.com", svc.sc.CandidateEmail)
	assert.Equal(t, "Go developer", svc.sc.ResumeText)
	require.Len(t, svc.utterances, 2)
	assert.Equal(t, entities.RoleRespondent, svc.utterances[1].Role)
	assert.Len(t, svc.utterances[1].Words, 2)
	assert.Equal(t, 61500*time.Millisecond, svc.duration)
}

func TestInterview_CompleteRejectsUnknownRole(t *testing.T) {
	e := newTestEcho()
	h, _ := newInterviewHandler(&fakeCompleter{}, &stubRepo{}, nil)

	body := `{"candidate_email": "ada@example.com", "utterances": [{"role": "bot", "text": "beep"}]}`
	rec := doJSON(t, e, http.MethodPost, "/v1/interviews/complete", body, h.Complete, "/v1/interviews/complete")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterview_CompleteMissingIdentity(t *testing.T) {
	e := newTestEcho()
	svc := &fakeCompleter{err: apperrors.ErrInvalidIdentity("")}
	h, _ := newInterviewHandler(svc, &stubRepo{}, nil)

	body := `{"utterances": [{"role": "user", "text": "hi"}]}`
	rec := doJSON(t, e, http.MethodPost, "/v1/interviews/complete", body, h.Complete, "/v1/interviews/complete")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, apperrors.ErrorCode_INTERVIEW_INVALID_IDENTITY, resp["code"])
}

func TestInterview_CompleteReportsPersistFailure(t *testing.T) {
	e := newTestEcho()
	svc := &fakeCompleter{result: &interview.Result{
		Tone:           entities.Sentinel("Tone analysis failed"),
		Feedback:       entities.Structured(map[string]any{"communication": "clear"}),
		PersistFailure: &interview.PersistFailure{Status: 409, Body: "conflict"},
	}}
	h, _ := newInterviewHandler(svc, &stubRepo{}, nil)

	body := `{"candidate_email": "ada@example.com", "utterances": [{"role": "user", "text": "hi"}]}`
	rec := doJSON(t, e, http.MethodPost, "/v1/interviews/complete", body, h.Complete, "/v1/interviews/complete")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Tone           string            `json:"tone"`
			Feedback       map[string]string `json:"feedback"`
			PersistFailure struct {
				Status int    `json:"status"`
				Body   string `json:"body"`
			} `json:"persist_failure"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Tone analysis failed", resp.Data.Tone)
	assert.Equal(t, "clear", resp.Data.Feedback["communication"])
	assert.Equal(t, 409, resp.Data.PersistFailure.Status)
}

func TestInterview_GetInterview(t *testing.T) {
	record := entities.NewSessionRecord(uuid.New(), "ada@example.com")
	record.Conducted = true

	e := newTestEcho()
	h, _ := newInterviewHandler(&fakeCompleter{}, &stubRepo{record: record}, nil)
	e.GET("/v1/interviews/:id", h.GetInterview)

	req := httptest.NewRequest(http.MethodGet, "/v1/interviews/"+record.ID.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)

	req = httptest.NewRequest(http.MethodGet, "/v1/interviews/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/interviews/nope", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterview_StageContext(t *testing.T) {
	e := newTestEcho()
	h, contexts := newInterviewHandler(&fakeCompleter{}, &stubRepo{}, stubResumes{exists: true})

	body := `{"candidate_email": "Ada@Example.com", "candidate_name": "Ada", "resume_path": "ada/cv.pdf"}`
	rec := doJSON(t, e, http.MethodPut, "/v1/interviews/iv-9/context", body, h.StageContext, "/v1/interviews/:id/context")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "https://cdn.example.com/resumes/ada/cv.pdf")

	staged, ok, err := contexts.Load(context.Background(), "iv-9")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", staged.CandidateEmail)
	assert.Equal(t, "ada/cv.pdf", staged.ResumePath)
}

func TestInterview_StageContextMissingResume(t *testing.T) {
	e := newTestEcho()
	h, _ := newInterviewHandler(&fakeCompleter{}, &stubRepo{}, stubResumes{exists: false})

	body := `{"candidate_email": "ada@example.com", "resume_path": "ada/missing.pdf"}`
	rec := doJSON(t, e, http.MethodPut, "/v1/interviews/iv-9/context", body, h.StageContext, "/v1/interviews/:id/context")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
