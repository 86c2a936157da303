// Package render formats generated questions for the terminal.
package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/mareeczka/test-generator-mvp/internal/questiongen"
)

// Options controls what is shown.
type Options struct {
	// ShowAnswers marks correct options and prints answers.
	ShowAnswers bool
}

// Questions renders a titled list of question cards.
func Questions(testSet string, qs []questiongen.Question, opts Options) string {
	blocks := []string{
		titleStyle.Render(fmt.Sprintf("%s · %d questions", testSet, len(qs))),
	}
	for _, q := range qs {
		blocks = append(blocks, Question(q, opts))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// Question renders one question as a bordered card.
func Question(q questiongen.Question, opts Options) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("#%d ", q.QuestionNumber)))
	b.WriteString(typeStyle.Render(string(q.QuestionType)))
	b.WriteString("\n")
	b.WriteString(bodyStyle.Render(q.QuestionText))
	b.WriteString("\n")

	switch q.QuestionType {
	case questiongen.TypeMCQ:
		correct := make(map[int]bool, len(q.Answers))
		for _, a := range q.Answers {
			correct[a] = true
		}
		for i, o := range q.Options {
			line := fmt.Sprintf("  %c) %s", 'a'+rune(i), o)
			if opts.ShowAnswers && correct[i] {
				b.WriteString(correctStyle.Render(line + " ✓"))
			} else {
				b.WriteString(bodyStyle.Render(line))
			}
			b.WriteString("\n")
		}

	case questiongen.TypeInput:
		if opts.ShowAnswers {
			b.WriteString(correctStyle.Render("  answer: " + q.Answer))
		} else {
			b.WriteString(dimStyle.Render("  answer: ________"))
		}
		b.WriteString("\n")

	case questiongen.TypeMatch:
		for i, term := range q.QuestionOptions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, term)
		}
		for j, o := range q.Options {
			fmt.Fprintf(&b, "  %c) %s\n", 'a'+rune(j), o)
		}
		if opts.ShowAnswers {
			pairs := make([]string, 0, len(q.Pairs))
			for _, p := range q.Pairs {
				pairs = append(pairs, fmt.Sprintf("%d-%c", p[0]+1, 'a'+rune(p[1])))
			}
			b.WriteString(correctStyle.Render("  pairs: " + strings.Join(pairs, ", ")))
			b.WriteString("\n")
		}

	case questiongen.TypeSequence:
		for i, o := range q.Options {
			fmt.Fprintf(&b, "  %c) %s\n", 'a'+rune(i), o)
		}
		if opts.ShowAnswers {
			order := make([]string, 0, len(q.Answers))
			for _, a := range q.Answers {
				order = append(order, string('a'+rune(a)))
			}
			b.WriteString(correctStyle.Render("  order: " + strings.Join(order, " → ")))
			b.WriteString("\n")
		}
	}

	return cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// Facts renders extracted fact lines as a bulleted list.
func Facts(facts string) string {
	lines := strings.Split(strings.TrimSpace(facts), "\n")
	blocks := []string{titleStyle.Render(fmt.Sprintf("%d facts", len(lines)))}
	for _, l := range lines {
		blocks = append(blocks, factStyle.Render("• "+strings.TrimSpace(l)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// Batches renders a one-line status per batch.
func Batches(reports []questiongen.BatchReport) string {
	lines := make([]string, 0, len(reports))
	for _, r := range reports {
		types := make([]string, len(r.Types))
		for i, t := range r.Types {
			types[i] = string(t)
		}
		line := fmt.Sprintf("batch %d (#%d, %s): %s after %d attempt(s)",
			r.Index+1, r.Start, strings.Join(types, "/"), r.State, r.Attempts)
		if r.State == questiongen.BatchExhausted {
			lines = append(lines, errorStyle.Render(line)+dimStyle.Render(" "+r.Reason))
			continue
		}
		lines = append(lines, headerStyle.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
