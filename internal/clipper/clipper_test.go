package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPageText_StripsNoise(t *testing.T) {
	page := `<html><head><title>Poke</title>
<script>trackEverything();</script>
<style>body { color: red; }</style>
</head><body>
<nav>Home | Recipes | About</nav>
<div class="ads">Buy knives now!</div>
<h1>Poke Bowl</h1>
<p>Cube 0.5 lbs tuna and marinate in shoyu.</p>
<footer>Copyright</footer>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer server.Close()

	text, err := New().PageText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}

	if !strings.Contains(text, "Cube 0.5 lbs tuna") {
		t.Errorf("Expected recipe text to survive, got: %s", text)
	}
	for _, noise := range []string{"trackEverything", "color: red", "Buy knives", "Home | Recipes", "Copyright"} {
		if strings.Contains(text, noise) {
			t.Errorf("Expected %q to be stripped, got: %s", noise, text)
		}
	}
}

func TestPageText_CapsLength(t *testing.T) {
	huge := strings.Repeat("pantry staples and more ", 2000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>" + huge + "</body></html>"))
	}))
	defer server.Close()

	text, err := New().PageText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}
	if len(text) > maxPageText {
		t.Errorf("Expected text capped at %d bytes, got %d", maxPageText, len(text))
	}
}

func TestPageText_CapFallsOnRuneBoundary(t *testing.T) {
	// Three-byte runes guarantee the byte cap lands mid-rune.
	huge := strings.Repeat("€", maxPageText/2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>" + huge + "</body></html>"))
	}))
	defer server.Close()

	text, err := New().PageText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}
	if len(text) > maxPageText {
		t.Errorf("Expected text capped at %d bytes, got %d", maxPageText, len(text))
	}
	if !utf8.ValidString(text) {
		t.Error("Expected the truncated text to remain valid UTF-8")
	}
}

func TestPageText_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New().PageText(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected an error for a 404 page")
	}
}
