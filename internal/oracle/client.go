package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

// ErrGeneration marks any failure of the remote oracle, including
// responses that do not parse into the expected shape. Callers recover
// with the static fallback; this error never reaches players.
var ErrGeneration = errors.New("oracle generation failed")

// Client talks to an OpenAI-compatible chat-completions endpoint and
// parses its output strictly. Anything that deviates from the expected
// JSON is a generation error, not a crash.
type Client struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	model      string
}

func NewClient(apiKey, apiURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		apiURL:     apiURL,
		model:      model,
	}
}

func (c *Client) IsAvailable() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type aiPuzzle struct {
	Scenario string     `json:"scenario"`
	Options  []aiOption `json:"options"`
}

type aiOption struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Survival bool   `json:"survival"`
}

type aiNarration struct {
	OptionID  string `json:"option_id"`
	Survived  bool   `json:"survived"`
	Narration string `json:"narration"`
}

const puzzlePrompt = `You are the Oracle, the dramatic narrator of a survival party game. Invent a short perilous scenario with exactly three escape options. Respond with ONLY valid JSON (no markdown, no code fences, no explanations) in this format:

{
  "scenario": "One or two sentences describing the danger",
  "options": [
    {"id": "A", "text": "First choice", "survival": true},
    {"id": "B", "text": "Second choice", "survival": false},
    {"id": "C", "text": "Third choice", "survival": false}
  ]
}

Rules:
- Exactly three options with ids A, B and C
- At least one option must have "survival": true and at least one "survival": false
- Keep each option text under 15 words
- Return ONLY the JSON object, nothing else`

const narrationPrompt = `You are the Oracle, the dramatic narrator of a survival party game. Given the scenario and the groups of players who chose each option, narrate each group's fate in one or two theatrical sentences. The survival verdict of each option is already decided and given to you; do not change it. Respond with ONLY valid JSON (no markdown, no code fences) as an array:

[
  {"option_id": "A", "survived": true, "narration": "..."}
]

Include exactly one element per chosen option, nothing else.`

// GeneratePuzzle asks the model for a three-option survival scenario.
func (c *Client) GeneratePuzzle(ctx context.Context) (*models.PuzzleChallenge, error) {
	content, err := c.chat(ctx, puzzlePrompt, "Invent a new scenario.")
	if err != nil {
		return nil, err
	}

	var parsed aiPuzzle
	if err := json.Unmarshal([]byte(cleanJSONContent(content)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid puzzle JSON: %v", ErrGeneration, err)
	}
	return validatePuzzle(parsed)
}

// GenerateNarrations asks the model to narrate each choice group's
// fate. The survival verdicts come from the puzzle itself; the model
// only dresses them up, and a response contradicting them is rejected.
func (c *Client) GenerateNarrations(ctx context.Context, puzzle *models.PuzzleChallenge, groups map[string][]string) ([]models.Narration, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scenario: %s\n", puzzle.Scenario)
	for _, o := range puzzle.Options {
		fmt.Fprintf(&sb, "Option %s (%s): survival=%t\n", o.ID, o.Text, o.Survival)
	}
	for _, id := range sortedKeys(groups) {
		fmt.Fprintf(&sb, "Players who chose %s: %s\n", id, strings.Join(groups[id], ", "))
	}

	content, err := c.chat(ctx, narrationPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	var parsed []aiNarration
	if err := json.Unmarshal([]byte(cleanJSONContent(content)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid narration JSON: %v", ErrGeneration, err)
	}
	return validateNarrations(parsed, puzzle, groups)
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	if !c.IsAvailable() {
		return "", fmt.Errorf("%w: no API key configured", ErrGeneration)
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API returned status %d", ErrGeneration, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrGeneration, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return chatResp.Choices[0].Message.Content, nil
}

func validatePuzzle(parsed aiPuzzle) (*models.PuzzleChallenge, error) {
	if strings.TrimSpace(parsed.Scenario) == "" {
		return nil, fmt.Errorf("%w: empty scenario", ErrGeneration)
	}
	if len(parsed.Options) != 3 {
		return nil, fmt.Errorf("%w: expected 3 options, got %d", ErrGeneration, len(parsed.Options))
	}

	wantIDs := []string{"A", "B", "C"}
	puzzle := &models.PuzzleChallenge{Scenario: strings.TrimSpace(parsed.Scenario)}
	anySurvive, anyDoom := false, false
	for i, o := range parsed.Options {
		if strings.ToUpper(strings.TrimSpace(o.ID)) != wantIDs[i] {
			return nil, fmt.Errorf("%w: option %d has id %q, want %q", ErrGeneration, i, o.ID, wantIDs[i])
		}
		if strings.TrimSpace(o.Text) == "" {
			return nil, fmt.Errorf("%w: option %s has empty text", ErrGeneration, wantIDs[i])
		}
		if o.Survival {
			anySurvive = true
		} else {
			anyDoom = true
		}
		puzzle.Options = append(puzzle.Options, models.PuzzleOption{
			ID:       wantIDs[i],
			Text:     strings.TrimSpace(o.Text),
			Survival: o.Survival,
		})
	}
	if !anySurvive || !anyDoom {
		return nil, fmt.Errorf("%w: options must mix survival outcomes", ErrGeneration)
	}
	return puzzle, nil
}

func validateNarrations(parsed []aiNarration, puzzle *models.PuzzleChallenge, groups map[string][]string) ([]models.Narration, error) {
	if len(parsed) != len(groups) {
		return nil, fmt.Errorf("%w: expected %d narrations, got %d", ErrGeneration, len(groups), len(parsed))
	}

	byOption := make(map[string]aiNarration, len(parsed))
	for _, n := range parsed {
		id := strings.ToUpper(strings.TrimSpace(n.OptionID))
		if _, chosen := groups[id]; !chosen {
			return nil, fmt.Errorf("%w: narration for unchosen option %q", ErrGeneration, n.OptionID)
		}
		if _, dup := byOption[id]; dup {
			return nil, fmt.Errorf("%w: duplicate narration for option %q", ErrGeneration, id)
		}
		if strings.TrimSpace(n.Narration) == "" {
			return nil, fmt.Errorf("%w: empty narration for option %q", ErrGeneration, id)
		}
		byOption[id] = n
	}

	// Verdicts are re-derived from the puzzle; the model cannot
	// overturn a fixed outcome.
	verdicts := make(map[string]bool, len(puzzle.Options))
	for _, o := range puzzle.Options {
		verdicts[o.ID] = o.Survival
	}

	out := make([]models.Narration, 0, len(groups))
	for _, id := range sortedKeys(groups) {
		n := byOption[id]
		out = append(out, models.Narration{
			OptionID: id,
			Players:  groups[id],
			Survived: verdicts[id],
			Text:     strings.TrimSpace(n.Narration),
		})
	}
	return out, nil
}

func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	}
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	if strings.HasSuffix(content, "```") {
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
