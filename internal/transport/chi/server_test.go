package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stringdex/internal/domain"
	"github.com/kailas-cloud/stringdex/internal/domain/analysis"
	"github.com/kailas-cloud/stringdex/internal/domain/query"
	domrec "github.com/kailas-cloud/stringdex/internal/domain/record"
	healthuc "github.com/kailas-cloud/stringdex/internal/usecase/health"
	recorduc "github.com/kailas-cloud/stringdex/internal/usecase/record"
)

// memRepo is an in-memory recorduc.Repository.
type memRepo struct {
	recs map[string]domrec.Record // by content hash
	err  error                    // forces a storage failure when set
}

func newMemRepo() *memRepo {
	return &memRepo{recs: make(map[string]domrec.Record)}
}

func (m *memRepo) Insert(_ context.Context, rec domrec.Record) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.recs[rec.Hash()]; ok {
		return domain.ErrAlreadyExists
	}
	m.recs[rec.Hash()] = rec
	return nil
}

func (m *memRepo) GetByValue(_ context.Context, value string) (domrec.Record, error) {
	if m.err != nil {
		return domrec.Record{}, m.err
	}
	rec, ok := m.recs[analysis.Hash(value)]
	if !ok {
		return domrec.Record{}, domain.ErrNotFound
	}
	return rec, nil
}

func (m *memRepo) List(_ context.Context, f query.FilterSet) ([]domrec.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domrec.Record
	for _, rec := range m.recs {
		if f.Matches(rec.Value(), rec.Properties()) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hash() < out[j].Hash() })
	return out, nil
}

func (m *memRepo) DeleteByValue(_ context.Context, value string) error {
	if m.err != nil {
		return m.err
	}
	hash := analysis.Hash(value)
	if _, ok := m.recs[hash]; !ok {
		return domain.ErrNotFound
	}
	delete(m.recs, hash)
	return nil
}

func (m *memRepo) DeleteAll(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := len(m.recs)
	m.recs = make(map[string]domrec.Record)
	return n, nil
}

type stubPinger struct{ err error }

func (p *stubPinger) Ping(_ context.Context) error { return p.err }

func newTestServer(t *testing.T) (*chi.Mux, *memRepo) {
	t.Helper()
	return newTestServerWithPinger(t, &stubPinger{})
}

func newTestServerWithPinger(t *testing.T, pinger healthuc.DBPinger) (*chi.Mux, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	srv := NewServer(recorduc.New(repo), healthuc.New(pinger), zap.NewNop())
	r := chi.NewRouter()
	srv.Register(r)
	return r, repo
}

func doRequest(t *testing.T, r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return m
}

// --- POST /strings ---

func TestCreateString_Created(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "Race Car!"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, analysis.Hash("Race Car!"), body["id"])
	assert.Equal(t, "Race Car!", body["value"])
	assert.NotEmpty(t, body["created_at"])

	props, ok := body["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(9), props["length"])
	assert.Equal(t, true, props["is_palindrome"])
	assert.Equal(t, float64(2), props["word_count"])
	assert.Equal(t, analysis.Hash("Race Car!"), props["content_hash"])

	freq, ok := props["character_frequency_map"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), freq["a"])
	assert.Equal(t, float64(1), freq["!"])
}

func TestCreateString_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", `{not json`, http.StatusBadRequest},
		{"missing value", `{}`, http.StatusBadRequest},
		{"null value", `{"value": null}`, http.StatusBadRequest},
		{"non-string value", `{"value": 42}`, http.StatusUnprocessableEntity},
		{"empty value", `{"value": ""}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestServer(t)
			rr := doRequest(t, r, http.MethodPost, "/strings", tt.body)
			assert.Equal(t, tt.code, rr.Code)
			assert.Contains(t, decodeBody(t, rr), "error")
		})
	}
}

func TestCreateString_DuplicateConflicts(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "twice"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(t, r, http.MethodPost, "/strings", `{"value": "twice"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "String already exists in the system", decodeBody(t, rr)["error"])
}

// --- GET /strings ---

func TestListStrings_FiltersApply(t *testing.T) {
	r, _ := newTestServer(t)

	for _, v := range []string{"racecar", "hello", "noon"} {
		rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doRequest(t, r, http.MethodGet, "/strings?is_palindrome=true", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, float64(2), body["count"])
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)

	filters, ok := body["filters_applied"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, filters["is_palindrome"])
	assert.Nil(t, filters["min_length"])
}

func TestListStrings_EmptyStoreWithHugeMinLength(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodGet, "/strings?min_length=10000000", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, float64(0), body["count"])
}

func TestListStrings_MalformedNumericParamIsClientError(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "visible"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	// A broken filter must fail, never fall back to unfiltered results.
	rr = doRequest(t, r, http.MethodGet, "/strings?word_count=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "word_count")
}

func TestListStrings_InvalidBoolAndCharacterParams(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodGet, "/strings?is_palindrome=maybe", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = doRequest(t, r, http.MethodGet, "/strings?contains_character=ab", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestListStrings_WordCountBounds(t *testing.T) {
	r, _ := newTestServer(t)

	for _, v := range []string{"one", "one two", "one two three"} {
		rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doRequest(t, r, http.MethodGet, "/strings?min_word_count=2&max_word_count=3", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(2), decodeBody(t, rr)["count"])
}

// --- GET/DELETE /strings/{value} ---

func TestGetString_FoundAndMissing(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "hello world"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(t, r, http.MethodGet, "/strings/hello%20world", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "hello world", body["value"])
	assert.Equal(t, analysis.Hash("hello world"), body["id"])

	rr = doRequest(t, r, http.MethodGet, "/strings/absent", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "String does not exist in the system", decodeBody(t, rr)["error"])
}

func TestDeleteString(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "ephemeral"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(t, r, http.MethodDelete, "/strings/ephemeral", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// Re-fetch after delete misses.
	rr = doRequest(t, r, http.MethodGet, "/strings/ephemeral", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Second delete misses too.
	rr = doRequest(t, r, http.MethodDelete, "/strings/ephemeral", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteAllStrings(t *testing.T) {
	r, _ := newTestServer(t)

	for _, v := range []string{"a", "b", "c"} {
		rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doRequest(t, r, http.MethodDelete, "/strings", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "3", rr.Header().Get("X-Deleted-Count"))

	rr = doRequest(t, r, http.MethodGet, "/strings", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), decodeBody(t, rr)["count"])
}

// --- GET /strings/filter-by-natural-language ---

func TestNaturalLanguage_MissingQuery(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodGet, "/strings/filter-by-natural-language", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No query provided", decodeBody(t, rr)["error"])
}

func TestNaturalLanguage_InterpretsAndFilters(t *testing.T) {
	r, _ := newTestServer(t)

	for _, v := range []string{"racecar", "race car", "plain"} {
		rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doRequest(t, r, http.MethodGet,
		"/strings/filter-by-natural-language?query=all+single+word+palindromic+strings", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, float64(1), body["count"])

	iq, ok := body["interpreted_query"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "all single word palindromic strings", iq["original"])

	parsed, ok := iq["parsed_filters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, parsed["is_palindrome"])
	assert.Equal(t, float64(1), parsed["word_count"])
	assert.Nil(t, parsed["min_length"])
	assert.Nil(t, parsed["contains_character"])
}

func TestNaturalLanguage_RouteDoesNotShadowValueLookup(t *testing.T) {
	r, _ := newTestServer(t)

	// The literal value "filter-by-natural-language" is unreachable by
	// design; any other value still resolves through the wildcard.
	rr := doRequest(t, r, http.MethodPost, "/strings", `{"value": "filter"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doRequest(t, r, http.MethodGet, "/strings/filter", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

// --- failures and health ---

func TestStorageFailureIs500WithDetail(t *testing.T) {
	r, repo := newTestServer(t)
	repo.err = assert.AnError

	rr := doRequest(t, r, http.MethodGet, "/strings", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["error"], "storage failure")
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t)

	rr := doRequest(t, r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "ok", body["status"])

	down, _ := newTestServerWithPinger(t, &stubPinger{err: assert.AnError})
	rr = doRequest(t, down, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
