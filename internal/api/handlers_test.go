package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/justyntemme/shelfmate/internal/api"
	"github.com/justyntemme/shelfmate/internal/assistant"
	"github.com/justyntemme/shelfmate/internal/catalog"
	"github.com/justyntemme/shelfmate/internal/library"
	"github.com/justyntemme/shelfmate/internal/models"
	"github.com/justyntemme/shelfmate/internal/store"
)

// stubProvider scripts the assistant backend for handler tests.
type stubProvider struct {
	results []catalog.SearchResult
	covers  []string
	reply   string
	err     error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) SearchCatalog(ctx context.Context, query string) ([]catalog.SearchResult, error) {
	return s.results, s.err
}

func (s *stubProvider) SearchCovers(ctx context.Context, title string) ([]string, error) {
	return s.covers, s.err
}

func (s *stubProvider) Ask(ctx context.Context, message, libraryContext string) (string, error) {
	return s.reply, s.err
}

func setupTestRouter(t *testing.T, provider assistant.Provider) (*gin.Engine, *library.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	lib := library.NewManager(st, zap.NewNop())
	if provider == nil {
		provider = &stubProvider{}
	}
	ai := assistant.NewService(provider, time.Second, zap.NewNop())
	handler := api.NewHandler(lib, ai, st, zap.NewNop())

	r := gin.New()
	r.GET("/health", handler.HealthCheck)
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/books", handler.ListBooks)
		apiGroup.POST("/books", handler.AddBook)
		apiGroup.GET("/books/:id", handler.GetBook)
		apiGroup.PUT("/books/:id", handler.UpdateBook)
		apiGroup.POST("/books/import", handler.ImportBooks)
		apiGroup.GET("/stats", handler.GetStats)
		apiGroup.POST("/search", handler.SearchCatalog)
		apiGroup.POST("/search/add", handler.AddFromSearch)
		apiGroup.GET("/covers", handler.SearchCovers)
		apiGroup.POST("/chat", handler.Chat)
		apiGroup.GET("/profile", handler.GetProfile)
		apiGroup.PUT("/profile", handler.UpdateProfile)
	}
	return r, lib
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupTestRouter(t, nil)
	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddBookAndList(t *testing.T) {
	r, _ := setupTestRouter(t, nil)

	w := doJSON(r, http.MethodPost, "/api/books", catalog.ManualInput{
		Title:     "Dune",
		Authors:   []string{"Frank Herbert"},
		PageCount: 412,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.ID, "manual_"))

	w = doJSON(r, http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Books []models.Book `json:"books"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Equal(t, 1, listResp.Count)
	assert.Equal(t, "Dune", listResp.Books[0].Title)
}

func TestAddBookValidationFailureLeavesLibraryUnchanged(t *testing.T) {
	r, lib := setupTestRouter(t, nil)

	w := doJSON(r, http.MethodPost, "/api/books", catalog.ManualInput{
		Title:   "",
		Authors: []string{"Frank Herbert"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, lib.All())

	w = doJSON(r, http.MethodPost, "/api/books", catalog.ManualInput{
		Title:     "Dune",
		Authors:   []string{"Frank Herbert"},
		PageCount: 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, lib.All())
}

func TestListBooksFilterQuery(t *testing.T) {
	r, lib := setupTestRouter(t, nil)
	require.NoError(t, lib.AddOne(models.Book{ID: "1", Title: "Dune", Authors: []string{"Frank Herbert"}, ReadingStatus: models.StatusRead}))
	require.NoError(t, lib.AddOne(models.Book{ID: "2", Title: "Hyperion", Authors: []string{"Dan Simmons"}, ReadingStatus: models.StatusReading}))

	w := doJSON(r, http.MethodGet, "/api/books?author=simmons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Books []models.Book `json:"books"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Books, 1)
	assert.Equal(t, "Hyperion", resp.Books[0].Title)
}

func TestUpdateBook(t *testing.T) {
	r, lib := setupTestRouter(t, nil)
	require.NoError(t, lib.AddOne(models.Book{ID: "b1", Title: "Dune", Authors: []string{"Frank Herbert"}, PageCount: 412, ReadingStatus: models.StatusUnread}))

	w := doJSON(r, http.MethodPut, "/api/books/b1", models.Book{
		Title:         "Dune",
		Authors:       []string{"Frank Herbert"},
		PageCount:     412,
		ReadingStatus: models.StatusRead,
		CurrentPage:   10, // invariant forces this to 412
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, 412, updated.CurrentPage)

	w = doJSON(r, http.MethodPut, "/api/books/ghost", models.Book{Title: "Nope", Authors: []string{"Nobody"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBookValidationLeavesBookUnchanged(t *testing.T) {
	r, lib := setupTestRouter(t, nil)
	require.NoError(t, lib.AddOne(models.Book{ID: "b1", Title: "Dune", Authors: []string{"Frank Herbert"}, PageCount: 412, ReadingStatus: models.StatusUnread}))

	// An update without authors is rejected like a manual add would be.
	w := doJSON(r, http.MethodPut, "/api/books/b1", models.Book{
		Title:     "Dune",
		PageCount: 412,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := lib.Get("b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Frank Herbert"}, stored.Authors)
	assert.Equal(t, models.StatusUnread, stored.ReadingStatus)
}

func TestUpdateBookNormalizesStatus(t *testing.T) {
	r, lib := setupTestRouter(t, nil)
	require.NoError(t, lib.AddOne(models.Book{ID: "b1", Title: "Dune", Authors: []string{"Frank Herbert"}, PageCount: 412, ReadingStatus: models.StatusReading, CurrentPage: 100}))

	// An out-of-enum status string never lands in the library; it falls
	// back to planning-to-read and the progress clamp follows.
	w := doJSON(r, http.MethodPut, "/api/books/b1", models.Book{
		Title:         "Dune",
		Authors:       []string{"Frank Herbert"},
		PageCount:     412,
		ReadingStatus: "definitely not a status",
		CurrentPage:   100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := lib.Get("b1")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Authors)
	assert.Equal(t, models.StatusPlanningToRead, stored.ReadingStatus)
	assert.Equal(t, 0, stored.CurrentPage)
}

func uploadFile(r *gin.Engine, path, filename string, contents []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", filename)
	fw.Write(contents)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImportBooksCommit(t *testing.T) {
	r, lib := setupTestRouter(t, nil)

	csvData := []byte("title,author,pages,status\n" +
		"Dune,Frank Herbert,412,Okuyorum\n" +
		"Hyperion,Dan Simmons,482,Okundu\n")

	w := uploadFile(r, "/api/books/import", "shelf.csv", csvData)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Added   int `json:"added"`
		Skipped int `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Added)
	assert.Equal(t, 0, resp.Skipped)
	assert.Len(t, lib.All(), 2)
}

func TestImportBooksPreviewDoesNotCommit(t *testing.T) {
	r, lib := setupTestRouter(t, nil)
	require.NoError(t, lib.AddOne(models.Book{ID: "b1", Title: "Dune", Authors: []string{"Frank Herbert"}}))

	csvData := []byte("title,author\nDune,Frank Herbert\n")
	w := uploadFile(r, "/api/books/import?preview=true", "shelf.csv", csvData)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Candidates []models.Book `json:"candidates"`
		Warnings   []string      `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Candidates, 1)
	assert.Equal(t, []string{"Dune"}, resp.Warnings)
	// Preview never mutates the library.
	assert.Len(t, lib.All(), 1)
}

func TestImportBooksBadFile(t *testing.T) {
	r, lib := setupTestRouter(t, nil)

	w := uploadFile(r, "/api/books/import", "shelf.txt", []byte("not an import"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, lib.All())
}

func TestGetStats(t *testing.T) {
	r, lib := setupTestRouter(t, nil)
	lib.AddMany([]models.Book{
		{ID: "1", Title: "A", ReadingStatus: models.StatusRead, PageCount: 100, CurrentPage: 100},
		{ID: "2", Title: "B", ReadingStatus: models.StatusReading, PageCount: 200, CurrentPage: 50},
		{ID: "3", Title: "C", ReadingStatus: models.StatusPlanningToRead, PageCount: 300},
	})

	w := doJSON(r, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalBooks)
	assert.Equal(t, 1, stats.BooksRead)
	assert.Equal(t, 50, stats.OverallPercentage)
}

func TestSearchCatalogHandler(t *testing.T) {
	r, _ := setupTestRouter(t, &stubProvider{
		results: []catalog.SearchResult{{ID: "gb-1", Title: "Dune", PageCount: 412}},
	})

	w := doJSON(r, http.MethodPost, "/api/search", gin.H{"query": "dune"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Candidates []models.Book `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "gb-1", resp.Candidates[0].ID)
	assert.Equal(t, models.StatusPlanningToRead, resp.Candidates[0].ReadingStatus)
}

func TestSearchCatalogUpstreamFailure(t *testing.T) {
	r, lib := setupTestRouter(t, &stubProvider{err: errors.New("boom")})

	w := doJSON(r, http.MethodPost, "/api/search", gin.H{"query": "dune"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, lib.All())
}

func TestAddFromSearch(t *testing.T) {
	r, lib := setupTestRouter(t, nil)

	candidate := catalog.SearchResult{ID: "gb-1", Title: "Dune", Authors: []string{"Frank Herbert"}, PageCount: 412}

	w := doJSON(r, http.MethodPost, "/api/search/add", candidate)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, lib.All(), 1)

	// Same id again: conflict, library unchanged.
	w = doJSON(r, http.MethodPost, "/api/search/add", candidate)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, lib.All(), 1)

	// Unknown page count is a hard failure on this path.
	w = doJSON(r, http.MethodPost, "/api/search/add", catalog.SearchResult{ID: "gb-2", Title: "Hyperion"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler(t *testing.T) {
	r, _ := setupTestRouter(t, &stubProvider{reply: "Read Hyperion next."})

	w := doJSON(r, http.MethodPost, "/api/chat", gin.H{"message": "what next?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID string `json:"sessionId"`
		Reply     string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "Read Hyperion next.", resp.Reply)

	w = doJSON(r, http.MethodPost, "/api/chat", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	r, _ := setupTestRouter(t, nil)

	w := doJSON(r, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"displayName":""}`, w.Body.String())

	w = doJSON(r, http.MethodPut, "/api/profile", gin.H{"displayName": "Alice"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"displayName":"Alice"}`, w.Body.String())
}
