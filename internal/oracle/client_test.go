package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.WriteHeader(status)
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

const goodPuzzleJSON = `{
  "scenario": "The vault door seals and gas hisses from the vents.",
  "options": [
    {"id": "A", "text": "Smash the vent grille", "survival": true},
    {"id": "B", "text": "Hold your breath and wait", "survival": false},
    {"id": "C", "text": "Pick the inner lock", "survival": false}
  ]
}`

func TestClient_GeneratePuzzle(t *testing.T) {
	srv := chatServer(t, goodPuzzleJSON, http.StatusOK)
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "test-model")
	puzzle, err := c.GeneratePuzzle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "The vault door seals and gas hisses from the vents.", puzzle.Scenario)
	require.Len(t, puzzle.Options, 3)
	assert.Equal(t, "A", puzzle.Options[0].ID)
	assert.True(t, puzzle.Options[0].Survival)
	assert.False(t, puzzle.Options[1].Survival)
}

func TestClient_GeneratePuzzleStripsCodeFences(t *testing.T) {
	srv := chatServer(t, "```json\n"+goodPuzzleJSON+"\n```", http.StatusOK)
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "test-model")
	puzzle, err := c.GeneratePuzzle(context.Background())
	require.NoError(t, err)
	assert.Len(t, puzzle.Options, 3)
}

func TestClient_GeneratePuzzleRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "sorry, I cannot do that"},
		{"two options", `{"scenario": "s", "options": [{"id":"A","text":"x","survival":true},{"id":"B","text":"y","survival":false}]}`},
		{"wrong ids", `{"scenario": "s", "options": [{"id":"X","text":"x","survival":true},{"id":"B","text":"y","survival":false},{"id":"C","text":"z","survival":false}]}`},
		{"all survive", `{"scenario": "s", "options": [{"id":"A","text":"x","survival":true},{"id":"B","text":"y","survival":true},{"id":"C","text":"z","survival":true}]}`},
		{"empty scenario", `{"scenario": " ", "options": [{"id":"A","text":"x","survival":true},{"id":"B","text":"y","survival":false},{"id":"C","text":"z","survival":false}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := chatServer(t, tc.content, http.StatusOK)
			defer srv.Close()

			c := NewClient("test-key", srv.URL, "test-model")
			_, err := c.GeneratePuzzle(context.Background())
			assert.ErrorIs(t, err, ErrGeneration)
		})
	}
}

func TestClient_APIErrorIsGenerationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "test-model")
	_, err := c.GeneratePuzzle(context.Background())
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestClient_NoKeyIsGenerationError(t *testing.T) {
	c := NewClient("", "http://unused", "test-model")
	assert.False(t, c.IsAvailable())
	_, err := c.GeneratePuzzle(context.Background())
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestClient_GenerateNarrationsEnforcesVerdicts(t *testing.T) {
	// The model claims everyone survived; the puzzle's own flags must
	// override it for option B.
	content := `[
	  {"option_id": "A", "survived": true, "narration": "They leap to safety."},
	  {"option_id": "B", "survived": true, "narration": "They crawl out grinning."}
	]`
	srv := chatServer(t, content, http.StatusOK)
	defer srv.Close()

	puzzle := &models.PuzzleChallenge{
		Scenario: "s",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "x", Survival: true},
			{ID: "B", Text: "y", Survival: false},
			{ID: "C", Text: "z", Survival: false},
		},
	}
	groups := map[string][]string{
		"A": {"Alice"},
		"B": {"Bob", "Carol"},
	}

	c := NewClient("test-key", srv.URL, "test-model")
	narrations, err := c.GenerateNarrations(context.Background(), puzzle, groups)
	require.NoError(t, err)
	require.Len(t, narrations, 2)

	assert.Equal(t, "A", narrations[0].OptionID)
	assert.True(t, narrations[0].Survived)
	assert.Equal(t, []string{"Alice"}, narrations[0].Players)

	assert.Equal(t, "B", narrations[1].OptionID)
	assert.False(t, narrations[1].Survived, "model must not overturn a fixed verdict")
	assert.Equal(t, []string{"Bob", "Carol"}, narrations[1].Players)
}

func TestClient_GenerateNarrationsRejectsMismatchedGroups(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing group", `[{"option_id": "A", "survived": true, "narration": "..."}]`},
		{"unchosen option", `[{"option_id": "A", "survived": true, "narration": "a"}, {"option_id": "C", "survived": false, "narration": "c"}]`},
		{"duplicate option", `[{"option_id": "A", "survived": true, "narration": "a"}, {"option_id": "A", "survived": true, "narration": "again"}]`},
	}
	puzzle := &models.PuzzleChallenge{
		Scenario: "s",
		Options: []models.PuzzleOption{
			{ID: "A", Text: "x", Survival: true},
			{ID: "B", Text: "y", Survival: false},
			{ID: "C", Text: "z", Survival: false},
		},
	}
	groups := map[string][]string{"A": {"Alice"}, "B": {"Bob"}}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := chatServer(t, tc.content, http.StatusOK)
			defer srv.Close()

			c := NewClient("test-key", srv.URL, "test-model")
			_, err := c.GenerateNarrations(context.Background(), puzzle, groups)
			assert.ErrorIs(t, err, ErrGeneration)
		})
	}
}
