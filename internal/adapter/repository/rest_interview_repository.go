package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	domainrepo "github.com/johnquangdev/interview-coach/internal/domain/repositories"
	"github.com/johnquangdev/interview-coach/pkg/config"
)

// RestInterviewRepository talks to a hosted PostgREST endpoint exposing the interviews table
type RestInterviewRepository struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
}

// NewRestInterviewRepository creates a repository against cfg.URL/rest/v1/<table>
func NewRestInterviewRepository(cfg *config.RestStoreConfig) *RestInterviewRepository {
	table := cfg.Table
	if table == "" {
		table = entities.SessionRecord{}.TableName()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RestInterviewRepository{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		table:   table,
		client:  &http.Client{Timeout: timeout},
	}
}

var _ domainrepo.InterviewRepository = (*RestInterviewRepository)(nil)

func (r *RestInterviewRepository) endpoint(query url.Values) string {
	u := r.baseURL + "/rest/v1/" + r.table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// FindByID retrieves a record by its primary id
func (r *RestInterviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.SessionRecord, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set(entities.ColumnID, "eq."+id.String())
	q.Set("limit", "1")
	return r.selectOne(ctx, q)
}

// FindLatestByEmail retrieves the most recent record for an identity
func (r *RestInterviewRepository) FindLatestByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (*entities.SessionRecord, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set(entities.ColumnEmail, "eq."+entities.NormalizeIdentity(email))
	if excludeID != nil {
		q.Set(entities.ColumnID, "neq."+excludeID.String())
	}
	q.Set("order", entities.ColumnCreatedAt+".desc")
	q.Set("limit", "1")
	return r.selectOne(ctx, q)
}

// UpdateCompletion issues a PATCH addressed by id. The body never carries the id.
func (r *RestInterviewRepository) UpdateCompletion(ctx context.Context, id uuid.UUID, fields entities.CompletionFields) error {
	updates, err := fields.Updates()
	if err != nil {
		return err
	}
	q := url.Values{}
	q.Set(entities.ColumnID, "eq."+id.String())

	var rows []entities.SessionRecord
	if err := r.do(ctx, http.MethodPatch, q, updates, "return=representation", &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return &domainrepo.StoreError{Status: http.StatusNotFound, Body: "no interview with id " + id.String(), Err: entities.ErrInterviewNotFound}
	}
	return nil
}

// Create inserts with on_conflict=email. Duplicates are ignored by the store and the
// completion is then merged into the existing row so resume_url and skills survive.
func (r *RestInterviewRepository) Create(ctx context.Context, record *entities.SessionRecord) (*entities.SessionRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("record cannot be nil")
	}

	q := url.Values{}
	q.Set("on_conflict", entities.ColumnEmail)

	var rows []entities.SessionRecord
	if err := r.do(ctx, http.MethodPost, q, record, "return=representation,resolution=ignore-duplicates", &rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}

	existing, err := r.FindLatestByEmail(ctx, record.Email, nil)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &domainrepo.StoreError{Status: http.StatusConflict, Body: "insert ignored but no row found for " + record.Email}
	}

	fields := entities.CompletionOf(record)
	if err := r.UpdateCompletion(ctx, existing.ID, fields); err != nil {
		return nil, err
	}
	if err := fields.Apply(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *RestInterviewRepository) selectOne(ctx context.Context, q url.Values) (*entities.SessionRecord, error) {
	var rows []entities.SessionRecord
	if err := r.do(ctx, http.MethodGet, q, nil, "", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *RestInterviewRepository) do(ctx context.Context, method string, q url.Values, body interface{}, prefer string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.endpoint(q), reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &domainrepo.StoreError{Status: 0, Body: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domainrepo.StoreError{Status: resp.StatusCode, Body: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domainrepo.StoreError{Status: resp.StatusCode, Body: string(payload)}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &domainrepo.StoreError{Status: resp.StatusCode, Body: string(payload), Err: err}
	}
	return nil
}
