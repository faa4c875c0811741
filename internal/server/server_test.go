package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"mise-server/internal/app"
	"mise-server/internal/config"
	"mise-server/internal/database"
	"mise-server/internal/llm"
	"mise-server/internal/mealplan"
	"mise-server/internal/recipe"
	"mise-server/internal/souschef"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

type mockTextGen struct {
	reply string
	err   error
}

func (m *mockTextGen) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{Content: m.reply}, nil
}

func newTestServer(t *testing.T, gen llm.TextGenerator) *Server {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	application := app.New(
		recipe.NewRepository(db.SQL),
		mealplan.NewRepository(db.SQL),
		souschef.New(gen, nil),
		nil,
	)
	return New(&config.Config{
		AuthSecret:     testSecret,
		AllowedOrigins: []string{"*"},
	}, application)
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthIsPublic(t *testing.T) {
	s := newTestServer(t, &mockTextGen{})

	rec := doRequest(t, s, "GET", "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestServer_APIRequiresToken(t *testing.T) {
	s := newTestServer(t, &mockTextGen{})

	rec := doRequest(t, s, "GET", "/api/recipes", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", rec.Code)
	}

	badToken := signToken(t, "user-1") + "tampered"
	rec = doRequest(t, s, "GET", "/api/recipes", badToken, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a tampered token, got %d", rec.Code)
	}
}

func TestServer_RecipeFlow(t *testing.T) {
	s := newTestServer(t, &mockTextGen{})
	token := signToken(t, "user-1")

	rec := doRequest(t, s, "POST", "/api/recipes", token,
		`{"name": "Poke", "ingredients": {"Protein": ["0.5 lbs tuna or salmon"]}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, "GET", "/api/recipes", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"Poke"`) {
		t.Errorf("Expected the saved recipe in the listing, got %s", rec.Body.String())
	}

	// Another owner sees an empty catalog.
	otherToken := signToken(t, "someone-else")
	rec = doRequest(t, s, "GET", "/api/recipes", otherToken, "")
	if strings.Contains(rec.Body.String(), "Poke") {
		t.Errorf("Expected owner scoping, got %s", rec.Body.String())
	}
}

func TestServer_GenerationErrorStatuses(t *testing.T) {
	token := signToken(t, "user-1")

	// Missing roulette fields: 400 with the missing field names.
	s := newTestServer(t, &mockTextGen{reply: "{}"})
	rec := doRequest(t, s, "POST", "/api/sous-chef/roulette", token, `{"main_ingredient": "fish"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a validation failure, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing") {
		t.Errorf("Expected the missing fields in the body, got %s", rec.Body.String())
	}

	// Unparseable model reply: 422 with the raw reply attached.
	s = newTestServer(t, &mockTextGen{reply: "I cannot help with that."})
	rec = doRequest(t, s, "POST", "/api/sous-chef/custom", token, `{"prompt": "poke"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for a parse failure, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "I cannot help with that.") {
		t.Errorf("Expected the raw reply in the body, got %s", rec.Body.String())
	}

	// LLM boundary failure: 502.
	s = newTestServer(t, &mockTextGen{err: context.DeadlineExceeded})
	rec = doRequest(t, s, "POST", "/api/sous-chef/custom", token, `{"prompt": "poke"}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 for a transport failure, got %d", rec.Code)
	}
}

func TestServer_AssignReturnsShoppingList(t *testing.T) {
	s := newTestServer(t, &mockTextGen{})
	token := signToken(t, "user-1")

	rec := doRequest(t, s, "POST", "/api/recipes", token,
		`{"name": "Poke", "ingredients": {"Protein": ["0.5 lbs tuna or salmon"]}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	body := rec.Body.String()
	idStart := strings.Index(body, `"id":"`) + len(`"id":"`)
	id := body[idStart : idStart+strings.Index(body[idStart:], `"`)]

	rec = doRequest(t, s, "PUT", "/api/plan/2026-08-24/Mon", token, `{"recipe_id": "`+id+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "0.5 lbs tuna or salmon (Poke)") {
		t.Errorf("Expected the recomputed list in the response, got %s", rec.Body.String())
	}

	rec = doRequest(t, s, "PUT", "/api/plan/2026-08-24/Funday", token, `{"recipe_id": "`+id+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown day, got %d", rec.Code)
	}
}

func TestServer_AssignDatabaseFailureIs500(t *testing.T) {
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	application := app.New(
		recipe.NewRepository(db.SQL),
		mealplan.NewRepository(db.SQL),
		souschef.New(&mockTextGen{}, nil),
		nil,
	)
	s := New(&config.Config{AuthSecret: testSecret, AllowedOrigins: []string{"*"}}, application)
	token := signToken(t, "user-1")

	// A dead database is a server fault, not a caller mistake.
	db.Close()
	rec := doRequest(t, s, "PUT", "/api/plan/2026-08-24/Mon", token, `{"recipe_id": "recipe-1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for a settings-load failure, got %d", rec.Code)
	}
}
