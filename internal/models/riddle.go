package models

// Riddle is one question/answer pair from the bank. The canonical
// answer is matched case-insensitively and never sent to clients.
type Riddle struct {
	Question string `json:"question"`
	Answer   string `json:"-"`
}
