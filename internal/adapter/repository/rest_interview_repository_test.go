package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	domainrepo "github.com/johnquangdev/interview-coach/internal/domain/repositories"
	"github.com/johnquangdev/interview-coach/pkg/config"
)

type restCall struct {
	method string
	query  url.Values
	prefer string
	body   []byte
}

// fakePostgREST answers every request with the reply registered for its method
type fakePostgREST struct {
	mu      sync.Mutex
	calls   []restCall
	replies map[string]string
	status  int
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, restCall{method: r.Method, query: r.URL.Query(), prefer: r.Header.Get("Prefer"), body: body})
	reply, ok := f.replies[r.Method]
	status := f.status
	f.mu.Unlock()

	if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
		http.Error(w, `{"message":"missing api key"}`, http.StatusUnauthorized)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	if !ok {
		reply = "[]"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, reply)
}

func (f *fakePostgREST) byMethod(method string) []restCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []restCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func newRestRepo(t *testing.T, fake *fakePostgREST) *RestInterviewRepository {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewRestInterviewRepository(&config.RestStoreConfig{URL: srv.URL + "/", APIKey: "anon", Timeout: time.Second})
}

func rowJSON(t *testing.T, r *entities.SessionRecord) string {
	t.Helper()
	b, err := json.Marshal([]*entities.SessionRecord{r})
	require.NoError(t, err)
	return string(b)
}

func strPtr(s string) *string { return &s }

func TestRestRepository_FindByID(t *testing.T) {
	fake := &fakePostgREST{}
	repo := newRestRepo(t, fake)
	id := uuid.New()

	rec, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, rec)

	gets := fake.byMethod(http.MethodGet)
	require.Len(t, gets, 1)
	assert.Equal(t, "eq."+id.String(), gets[0].query.Get("id"))
	assert.Equal(t, "*", gets[0].query.Get("select"))
	assert.Equal(t, "1", gets[0].query.Get("limit"))
}

func TestRestRepository_FindLatestByEmail(t *testing.T) {
	existing := entities.NewSessionRecord(uuid.New(), "ada@example.com")
	existing.Skills = strPtr("python,sql")
	fake := &fakePostgREST{replies: map[string]string{http.MethodGet: rowJSON(t, existing)}}
	repo := newRestRepo(t, fake)
	exclude := uuid.New()

	rec, err := repo.FindLatestByEmail(context.Background(), "  Ada@Example.com ", &exclude)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, existing.ID, rec.ID)
	require.NotNil(t, rec.Skills)
	assert.Equal(t, "python,sql", *rec.Skills)

	q := fake.byMethod(http.MethodGet)[0].query
	assert.Equal(t, "eq.ada@example.com", q.Get("email"))
	assert.Equal(t, "neq."+exclude.String(), q.Get("id"))
	assert.Equal(t, "created_at.desc", q.Get("order"))
	assert.Equal(t, "1", q.Get("limit"))

	_, err = repo.FindLatestByEmail(context.Background(), "ada@example.com", nil)
	require.NoError(t, err)
	assert.Empty(t, fake.byMethod(http.MethodGet)[1].query.Get("id"))
}

func TestRestRepository_UpdateCompletionBody(t *testing.T) {
	id := uuid.New()
	fake := &fakePostgREST{replies: map[string]string{http.MethodPatch: `[{"id":"` + id.String() + `"}]`}}
	repo := newRestRepo(t, fake)

	err := repo.UpdateCompletion(context.Background(), id, entities.CompletionFields{
		Transcript: "user: hi",
		Feedback:   entities.Structured(map[string]any{"communication": "clear"}),
		Tone:       entities.Sentinel("Tone analysis failed"),
		Duration:   180,
	})
	require.NoError(t, err)

	patches := fake.byMethod(http.MethodPatch)
	require.Len(t, patches, 1)
	assert.Equal(t, "eq."+id.String(), patches[0].query.Get("id"))
	assert.Contains(t, patches[0].prefer, "return=representation")

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(patches[0].body, &body))
	for _, key := range []string{"id", "resume_url", "skills", "email", "language"} {
		assert.NotContains(t, body, key)
	}
	for _, key := range []string{"transcript", "feedback", "tone", "duration", "conducted", "updated_at"} {
		assert.Contains(t, body, key)
	}
	assert.JSONEq(t, `{"communication":"clear"}`, string(body["feedback"]))
	assert.JSONEq(t, `"Tone analysis failed"`, string(body["tone"]))
	assert.JSONEq(t, `true`, string(body["conducted"]))
}

func TestRestRepository_UpdateCompletionMissingRow(t *testing.T) {
	repo := newRestRepo(t, &fakePostgREST{})

	err := repo.UpdateCompletion(context.Background(), uuid.New(), entities.CompletionFields{Transcript: "x"})

	var storeErr *domainrepo.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, http.StatusNotFound, storeErr.Status)
	assert.True(t, errors.Is(err, entities.ErrInterviewNotFound))
}

func TestRestRepository_CreateInserts(t *testing.T) {
	record := entities.NewSessionRecord(uuid.New(), "ada@example.com")
	record.Transcript = "user: hello"
	fake := &fakePostgREST{replies: map[string]string{http.MethodPost: rowJSON(t, record)}}
	repo := newRestRepo(t, fake)

	stored, err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, record.ID, stored.ID)

	posts := fake.byMethod(http.MethodPost)
	require.Len(t, posts, 1)
	assert.Equal(t, "email", posts[0].query.Get("on_conflict"))
	assert.Contains(t, posts[0].prefer, "resolution=ignore-duplicates")
	assert.Empty(t, fake.byMethod(http.MethodPatch))
}

func TestRestRepository_CreateConflictMergesIntoExisting(t *testing.T) {
	existing := entities.NewSessionRecord(uuid.New(), "ada@example.com")
	existing.Skills = strPtr("python,sql")
	existing.ResumeURL = strPtr("https://cdn.example.com/resumes/ada.pdf")
	existing.Language = "en"

	fake := &fakePostgREST{replies: map[string]string{
		http.MethodPost:  "[]",
		http.MethodGet:   rowJSON(t, existing),
		http.MethodPatch: `[{"id":"` + existing.ID.String() + `"}]`,
	}}
	repo := newRestRepo(t, fake)

	record := entities.NewSessionRecord(uuid.New(), "ada@example.com")
	record.Transcript = "user: second attempt"
	record.Duration = 240
	record.Skills = strPtr("go,rust")
	record.ResumeURL = strPtr("https://cdn.example.com/resumes/other.pdf")

	stored, err := repo.Create(context.Background(), record)
	require.NoError(t, err)

	assert.Equal(t, existing.ID, stored.ID)
	assert.Equal(t, "user: second attempt", stored.Transcript)
	assert.Equal(t, 240, stored.Duration)
	assert.True(t, stored.Conducted)
	assert.Equal(t, "en", stored.Language)
	require.NotNil(t, stored.Skills)
	assert.Equal(t, "python,sql", *stored.Skills)
	require.NotNil(t, stored.ResumeURL)
	assert.Equal(t, "https://cdn.example.com/resumes/ada.pdf", *stored.ResumeURL)

	patches := fake.byMethod(http.MethodPatch)
	require.Len(t, patches, 1)
	assert.Equal(t, "eq."+existing.ID.String(), patches[0].query.Get("id"))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(patches[0].body, &body))
	assert.NotContains(t, body, "skills")
	assert.NotContains(t, body, "resume_url")
	assert.NotContains(t, body, "id")
}

func TestRestRepository_NonSuccessIsStoreError(t *testing.T) {
	fake := &fakePostgREST{
		status:  http.StatusConflict,
		replies: map[string]string{http.MethodPost: `{"message":"duplicate key value"}`},
	}
	repo := newRestRepo(t, fake)

	_, err := repo.Create(context.Background(), entities.NewSessionRecord(uuid.New(), "ada@example.com"))

	var storeErr *domainrepo.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, http.StatusConflict, storeErr.Status)
	assert.Equal(t, `{"message":"duplicate key value"}`, storeErr.Body)
}
