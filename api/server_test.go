package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aqlanhadi/ledgr/categorizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementText = `Chase Bank Statement
DATE DESCRIPTION AMOUNT
01/15/2024 Salary Deposit 3000.00
01/16/2024 Coffee Shop -4.50
`

type upload struct {
	name    string
	content string
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile("file", f.name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func post(t *testing.T, s *Server, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNew(t *testing.T) {
	server := New(DefaultConfig())

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
}

func TestNew_FillsMissingDependencies(t *testing.T) {
	server := New(Config{Port: ":9000"})

	assert.NotNil(t, server.config.Pipeline)
	assert.NotNil(t, server.config.Classifier)
	assert.Equal(t, int64(32<<20), server.config.MaxMemory)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestExtractEndpoint_MethodNotAllowed(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/extract", nil)
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestExtractEndpoint_NoFile(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestExtractEndpoint_NoFilePart(t *testing.T) {
	w := post(t, New(DefaultConfig()), map[string]string{"transaction_only": "true"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type extractResponse struct {
	Transactions []struct {
		Date        string `json:"Date"`
		Description string `json:"Description"`
		Amount      string `json:"Amount"`
		Category    string `json:"Category"`
	} `json:"transactions"`
	Failures []struct {
		Index    int    `json:"index"`
		Document string `json:"document"`
	} `json:"failures"`
	Issues struct {
		RemovedRows int `json:"removed_rows"`
	} `json:"issues"`
}

func TestExtractEndpoint_MultipleFiles(t *testing.T) {
	server := New(DefaultConfig())

	w := post(t, server, nil,
		upload{"jan.txt", statementText},
		upload{"broken.pdf", "not a valid pdf"},
		upload{"feb.csv", "Date,Description,Amount\n2024-02-01,Uber ride,-12.40\n"},
	)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var res extractResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	require.Len(t, res.Transactions, 3)
	assert.Equal(t, "2024-01-15", res.Transactions[0].Date)
	assert.Equal(t, "Salary Deposit", res.Transactions[0].Description)
	assert.Equal(t, categorizer.Income, res.Transactions[0].Category)
	assert.Equal(t, categorizer.Transportation, res.Transactions[2].Category)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Index)
	assert.Equal(t, "broken.pdf", res.Failures[0].Document)
}

func TestExtractEndpoint_TransactionOnly(t *testing.T) {
	w := post(t, New(DefaultConfig()), map[string]string{"transaction_only": "true"}, upload{"jan.txt", statementText})

	require.Equal(t, http.StatusOK, w.Code)
	var txs []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&txs))
	assert.Len(t, txs, 2)
}

func TestExtractEndpoint_MissingColumns(t *testing.T) {
	w := post(t, New(DefaultConfig()), nil, upload{"bad.csv", "Date,Memo\n2024-01-01,x\n"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "bad.csv")
}

func TestExtractEndpoint_TextOnly(t *testing.T) {
	w := post(t, New(DefaultConfig()), map[string]string{"text_only": "true"},
		upload{"jan.txt", statementText},
		upload{"test.pdf", "not a valid pdf"},
	)

	require.Equal(t, http.StatusOK, w.Code)
	var out []textOutput
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	require.Len(t, out, 2)
	assert.Equal(t, statementText, out[0].Text)
	assert.Equal(t, "test.pdf", out[1].Filename)
	assert.NotEmpty(t, out[1].Error)
}

func TestParseExtractOptions_FormValues(t *testing.T) {
	server := New(DefaultConfig())

	body, contentType := multipartBody(t, map[string]string{"summary_only": "true"})
	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)
	req.ParseMultipartForm(32 << 20)

	opts := server.parseExtractOptions(req)

	if !opts.SummaryOnly {
		t.Error("Expected SummaryOnly to be true")
	}
	if opts.TransactionOnly {
		t.Error("Expected TransactionOnly to be false")
	}
}

func TestParseExtractOptions_QueryParams(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/extract?transaction_only=true&text_only=true", nil)

	opts := server.parseExtractOptions(req)

	if !opts.TransactionOnly {
		t.Error("Expected TransactionOnly to be true")
	}
	if !opts.TextOnly {
		t.Error("Expected TextOnly to be true")
	}
}

func TestCategorizeEndpoint(t *testing.T) {
	server := New(DefaultConfig())
	body := `{
		"transactions": [
			{"Date": "2024-01-15", "Description": "Salary Deposit", "Amount": "3000", "Category": ""},
			{"Date": "2024-01-16", "Description": "PETCO 12", "Amount": "-20", "Category": ""},
			{"Date": "2024-01-17", "Description": "Mystery", "Amount": "-50", "Category": ""}
		],
		"categories": [{"name": "Pets", "keywords": ["petco"]}],
		"assign": [{"indices": [2], "category": "Travel"}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/categorize", strings.NewReader(body))
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res categorizeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	require.Len(t, res.Transactions, 3)
	assert.Equal(t, categorizer.Income, res.Transactions[0].Category)
	assert.Equal(t, "Pets", res.Transactions[1].Category)
	assert.Equal(t, categorizer.Travel, res.Transactions[2].Category)
	assert.Equal(t, 3, res.Progress.Categorized)

	// request categories do not leak into the shared classifier
	assert.False(t, server.config.Classifier.Has("Pets"))
}

func TestCategorizeEndpoint_Errors(t *testing.T) {
	server := New(DefaultConfig())

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{`, "Invalid JSON"},
		{"unknown category", `{"transactions": [{"Date": "2024-01-01", "Description": "x", "Amount": "1"}], "assign": [{"indices": [0], "category": "Food"}]}`, "did you mean"},
		{"bad index", `{"transactions": [], "assign": [{"indices": [3], "category": "Travel"}]}`, "index out of range"},
		{"other with keywords", `{"categories": [{"name": "Other", "keywords": ["x"]}]}`, "invalid category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/categorize", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			server.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var cats []categorizer.Category
	require.NoError(t, json.NewDecoder(w.Body).Decode(&cats))
	require.Len(t, cats, 11)
	assert.Equal(t, categorizer.Income, cats[0].Name)
	assert.Equal(t, categorizer.Other, cats[10].Name)
}

func TestSuggestEndpoint(t *testing.T) {
	server := New(DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/suggest?description=coffee", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res suggestResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, categorizer.FoodDining, res.Category)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, categorizer.FoodDining, res.Suggestions[0].Category)

	req = httptest.NewRequest(http.MethodGet, "/suggest", nil)
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server := New(DefaultConfig())
	post(t, server, nil, upload{"jan.txt", statementText}, upload{"broken.pdf", "nope"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `ledgr_documents_total{kind="pdf-text"} 1`)
	assert.Contains(t, body, `ledgr_documents_total{kind="pdf"} 1`)
	assert.Contains(t, body, "ledgr_document_failures_total 1")
	assert.Contains(t, body, "ledgr_transactions_total 2")
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		input    []string
		expected string
	}{
		{[]string{"", "", "third"}, "third"},
		{[]string{"first", "second"}, "first"},
		{[]string{"", ""}, ""},
		{[]string{}, ""},
		{[]string{"only"}, "only"},
	}

	for _, tt := range tests {
		result := coalesce(tt.input...)
		if result != tt.expected {
			t.Errorf("coalesce(%v) = '%s', expected '%s'", tt.input, result, tt.expected)
		}
	}
}

func TestHandler(t *testing.T) {
	server := New(DefaultConfig())
	handler := server.Handler()

	if handler == nil {
		t.Fatal("Expected handler to be returned")
	}

	if handler != server.mux {
		t.Error("Expected handler to be the server's mux")
	}
}
