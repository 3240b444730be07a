package riddles

import (
	"math/rand"

	"github.com/Kingvinu7/Riddly-sub000/internal/models"
)

// Bank is the static riddle source. Answers are matched
// case-insensitively by the session, so they are stored in their
// canonical single-word form.
type Bank struct{}

func NewBank() *Bank {
	return &Bank{}
}

var bank = []models.Riddle{
	{Question: "I speak without a mouth and hear without ears. I have no body, but I come alive with wind. What am I?", Answer: "ECHO"},
	{Question: "The more of this there is, the less you see. What is it?", Answer: "DARKNESS"},
	{Question: "I have cities, but no houses. I have mountains, but no trees. I have water, but no fish. What am I?", Answer: "MAP"},
	{Question: "What has keys but can't open locks?", Answer: "PIANO"},
	{Question: "What gets wetter the more it dries?", Answer: "TOWEL"},
	{Question: "I'm tall when I'm young, and I'm short when I'm old. What am I?", Answer: "CANDLE"},
	{Question: "What has a head and a tail but no body?", Answer: "COIN"},
	{Question: "What has to be broken before you can use it?", Answer: "EGG"},
	{Question: "What goes up but never comes down?", Answer: "AGE"},
	{Question: "What has one eye but cannot see?", Answer: "NEEDLE"},
	{Question: "What can you catch but not throw?", Answer: "COLD"},
	{Question: "What has hands but cannot clap?", Answer: "CLOCK"},
	{Question: "What building has the most stories?", Answer: "LIBRARY"},
	{Question: "What runs all around a backyard, yet never moves?", Answer: "FENCE"},
	{Question: "What can travel around the world while staying in a corner?", Answer: "STAMP"},
	{Question: "What has a neck but no head?", Answer: "BOTTLE"},
	{Question: "What invention lets you look right through a wall?", Answer: "WINDOW"},
	{Question: "What begins with T, ends with T, and has T in it?", Answer: "TEAPOT"},
	{Question: "What kind of band never plays music?", Answer: "RUBBER"},
	{Question: "I follow you all the time and copy your every move, but you can't touch me or catch me. What am I?", Answer: "SHADOW"},
}

var introLines = []string{
	"The Oracle stirs... a new riddle rises from the mist.",
	"Silence, mortals. The Oracle has chosen its next test.",
	"The candles flicker. Listen closely to what the Oracle asks.",
	"Another round begins. The Oracle's voice echoes through the chamber.",
	"The Oracle's eyes open. Sharpen your wits.",
}

func (b *Bank) Draw() models.Riddle {
	return bank[rand.Intn(len(bank))]
}

func (b *Bank) IntroLine() string {
	return introLines[rand.Intn(len(introLines))]
}
