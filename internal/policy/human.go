package policy

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/magefree/monopoly-server-go/internal/game/board"
)

// Asker poses a yes/no question to a person.
type Asker interface {
	Ask(prompt string) bool
}

// Human phrases decisions as prompts for an Asker.
type Human struct {
	Asker Asker
}

// Decide builds the prompt for d and returns the person's answer.
func (h Human) Decide(d Decision) bool {
	return h.Asker.Ask(Prompt(d))
}

// Prompt renders the question text for a decision.
func Prompt(d Decision) string {
	switch d.Question {
	case QuestionBuyProperty:
		name := "this property"
		if d.Space != nil {
			name = d.Space.Name
		}
		return fmt.Sprintf("%s, buy %s for $%d? Balance $%d.", d.Player.Name, name, d.Amount, d.Player.Balance)
	case QuestionPayBail:
		return fmt.Sprintf("%s, pay $%d bail to leave jail?", d.Player.Name, d.Amount)
	case QuestionUseJailCard:
		return fmt.Sprintf("%s, use your Get Out of Jail Free card?", d.Player.Name)
	case QuestionAcceptTrade:
		if d.Trade == nil {
			return fmt.Sprintf("%s, accept the trade?", d.Player.Name)
		}
		return fmt.Sprintf("%s, %s offers %s and $%d for %s and $%d. Accept?",
			d.Player.Name, d.Trade.Proposer.Name,
			spaceNames(d.Trade.Offered), d.Trade.OfferedCash,
			spaceNames(d.Trade.Wanted), d.Trade.WantedCash)
	default:
		return fmt.Sprintf("%s, %s?", d.Player.Name, d.Question)
	}
}

func spaceNames(spaces []*board.Space) string {
	if len(spaces) == 0 {
		return "nothing"
	}
	names := make([]string, len(spaces))
	for i, space := range spaces {
		names[i] = space.Name
	}
	return strings.Join(names, ", ")
}

// Terminal asks questions on a line-oriented stream such as stdin/stdout.
type Terminal struct {
	mu     sync.Mutex
	reader *bufio.Reader
	writer io.Writer
}

// NewTerminal wraps r and w.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{reader: bufio.NewReader(r), writer: w}
}

// Ask prints prompt and reads answers until it gets y/yes or n/no. End of
// input counts as no.
func (t *Terminal) Ask(prompt string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		fmt.Fprintf(t.writer, "%s (y/n) ", prompt)
		line, err := t.reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			return false
		}
	}
}
