package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkpolish/inkpolish/internal/analysis"
	"github.com/inkpolish/inkpolish/internal/config"
	"github.com/inkpolish/inkpolish/internal/database"
	"github.com/inkpolish/inkpolish/internal/models"
	"github.com/inkpolish/inkpolish/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey      = "ink_test_key"
	validTitle   = "A valid title"
	validContent = "<p>This is very important and really great, to be honest with you all.</p>"
)

type stubAnalyzer struct {
	grammarErr error
}

func (s *stubAnalyzer) CorrectGrammar(_ context.Context, text string) (string, error) {
	if s.grammarErr != nil {
		return "", s.grammarErr
	}
	if text == "   " {
		return "", analysis.ErrEmptyText
	}
	return "This is very important and really great.", nil
}

func (s *stubAnalyzer) AnalyzeReadability(context.Context, string) ([]models.ReadabilityItem, error) {
	return []models.ReadabilityItem{{Sentence: "This is very important", Level: models.LevelHard, Reason: "vague"}}, nil
}

func (s *stubAnalyzer) AnalyzeToneVoice(context.Context, string) (models.ToneVoice, error) {
	return models.ToneVoice{OverallTone: "informal"}, nil
}

func (s *stubAnalyzer) FindCliches(context.Context, string) ([]models.Cliche, error) {
	return []models.Cliche{{Original: "really great", Suggestion: "remarkable"}}, nil
}

type testServer struct {
	handler  http.Handler
	store    *database.SQLiteStore
	analyzer *stubAnalyzer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.CreateAPIKey(context.Background(), &models.APIKey{
		ID:                "k1",
		KeyHash:           sha256Hex(testKey),
		Name:              "test",
		RequestsPerMinute: 1000,
		CreatedAt:         time.Now().UTC(),
	}))

	cfg := config.DefaultConfig()
	analyzer := &stubAnalyzer{}
	sessions := session.NewManager(analyzer, time.Minute)

	return &testServer{
		handler:  NewRouter(cfg, analyzer, sessions, store),
		store:    store,
		analyzer: analyzer,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "healthy", decodeBody[map[string]interface{}](t, rec)["status"])
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"unknown key", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAIEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/ai/correct-grammar", map[string]string{"text": "this are bad"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "This is very important and really great.", decodeBody[map[string]string](t, rec)["corrected_text"])

	rec = ts.do(t, http.MethodPost, "/ai/find-cliches", map[string]string{"text": "really great"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Cliche{{Original: "really great", Suggestion: "remarkable"}}, decodeBody[[]models.Cliche](t, rec))

	rec = ts.do(t, http.MethodPost, "/ai/analyze-tone-voice", map[string]string{"text": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "informal", decodeBody[models.ToneVoice](t, rec).OverallTone)

	rec = ts.do(t, http.MethodPost, "/ai/analyze-readability", map[string]string{"text": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.ReadabilityItem](t, rec), 1)

	t.Run("text is required", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/ai/correct-grammar", map[string]string{"text": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = ts.do(t, http.MethodPost, "/ai/correct-grammar", map[string]string{"text": "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		ts.analyzer.grammarErr = errors.New("provider down")
		defer func() { ts.analyzer.grammarErr = nil }()

		rec := ts.do(t, http.MethodPost, "/ai/correct-grammar", map[string]string{"text": "hello"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestDocumentEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/documents/stats", map[string]string{"content": "<p>Hello world</p><p>Again</p>"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Stats{Characters: 16, Words: 2, Paragraphs: 2, ReadingTimeMinutes: 1}, decodeBody[models.Stats](t, rec))

	rec = ts.do(t, http.MethodPost, "/documents/validate", map[string]string{"title": "Hi", "content": validContent})
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeBody[models.Validation](t, rec)
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{"title too short"}, v.Errors)

	rec = ts.do(t, http.MethodPost, "/documents/stats", map[string]string{"content": "# Title\n\nBody text", "format": "markdown"})
	require.Equal(t, http.StatusOK, rec.Code)
	md := decodeBody[models.Stats](t, rec)
	assert.Equal(t, 1, md.Paragraphs, "a markdown heading is not a paragraph")
	assert.Equal(t, 3, md.Words)

	rec = ts.do(t, http.MethodPost, "/documents/stats", map[string]string{"content": "x", "format": "docx"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/sessions", map[string]string{"title": "Hi", "content": validContent})
	require.Equal(t, http.StatusCreated, rec.Code)
	snap := decodeBody[models.SessionSnapshot](t, rec)
	assert.Equal(t, models.StateWriting, snap.State)
	assert.False(t, snap.Validation.IsValid)
	id := snap.ID

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []interface{}{"title too short"}, decodeBody[map[string]interface{}](t, rec)["errors"])

	rec = ts.do(t, http.MethodPut, "/sessions/"+id+"/draft", map[string]string{"title": validTitle, "content": validContent})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeBody[models.SessionSnapshot](t, rec)
	assert.Equal(t, models.StateCorrected, snap.State)
	require.NotNil(t, snap.Comparison)
	require.Len(t, snap.Suggestions, 2)

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/suggestions/complex-0/apply", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "readability item without a fix")

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/suggestions/cliche-0/apply", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[models.ApplyResult](t, rec)
	assert.True(t, result.Applied)
	assert.Equal(t, "<p>This is very important and remarkable.</p>", result.Content)

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/suggestions/cliche-0/apply", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/suggestions/cliche-7/apply", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/cliches/reanalyze", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[models.SessionSnapshot](t, rec).AppliedIDs)

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/save", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	article := decodeBody[models.Article](t, rec)
	assert.Equal(t, id, article.ID)
	assert.Equal(t, models.ArticleCorrected, article.Status)
	assert.Equal(t, validContent, article.OriginalContent)
	assert.Equal(t, "<p>This is very important and remarkable.</p>", article.CorrectedContent)

	rec = ts.do(t, http.MethodGet, "/articles/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/articles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Articles []models.Article `json:"articles"`
	}](t, rec)
	assert.Len(t, list.Articles, 1)

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StateWriting, decodeBody[models.SessionSnapshot](t, rec).State)

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/reset", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/articles/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/articles/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitUpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.analyzer.grammarErr = errors.New("provider down")

	rec := ts.do(t, http.MethodPost, "/sessions", map[string]string{"title": validTitle, "content": validContent})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody[models.SessionSnapshot](t, rec).ID

	rec = ts.do(t, http.MethodPost, "/sessions/"+id+"/submit", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = ts.do(t, http.MethodGet, "/sessions/"+id, nil)
	snap := decodeBody[models.SessionSnapshot](t, rec)
	assert.Equal(t, models.StateWriting, snap.State)
	assert.Contains(t, snap.LastError, "provider down")
}

func TestSaveDraftSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/sessions", map[string]string{"title": "Notes", "content": "*short*", "format": "markdown"})
	require.Equal(t, http.StatusCreated, rec.Code)
	snap := decodeBody[models.SessionSnapshot](t, rec)
	assert.Equal(t, "<p><em>short</em></p>", snap.Content)

	rec = ts.do(t, http.MethodPost, "/sessions/"+snap.ID+"/save", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	article := decodeBody[models.Article](t, rec)
	assert.Equal(t, models.ArticleDraft, article.Status)
	assert.Equal(t, snap.Content, article.OriginalContent)
	assert.Empty(t, article.CorrectedContent)
	assert.Equal(t, sha256Hex(snap.Content), article.DocumentHash)
}

func TestAPIKeyAdmin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/admin/keys", map[string]interface{}{"name": "writer", "requests_per_minute": 5})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[map[string]interface{}](t, rec)
	rawKey := created["key"].(string)
	assert.Contains(t, rawKey, "ink_")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "a freshly created key authenticates")

	rec = ts.do(t, http.MethodPost, "/admin/keys", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/keys", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "key_hash")

	id := created["id"].(string)
	rec = ts.do(t, http.MethodDelete, "/admin/keys/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/admin/keys/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitPerKey(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.store.CreateAPIKey(context.Background(), &models.APIKey{
		ID:                "slow",
		KeyHash:           sha256Hex("ink_slow"),
		Name:              "slow",
		RequestsPerMinute: 2,
		CreatedAt:         time.Now().UTC(),
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", nil)
		req.Header.Set("Authorization", "Bearer ink_slow")
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAuditLogRecorded(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/articles", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		logs, err := ts.store.GetAuditLogs(context.Background(), 10, 0)
		return err == nil && len(logs) > 0
	}, time.Second, 10*time.Millisecond)

	logs, err := ts.store.GetAuditLogs(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "k1", logs[0].APIKeyID)
	assert.Equal(t, "/api/v1/articles", logs[0].Endpoint)
}
