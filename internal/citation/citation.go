// Package citation assigns context tokens at assembly time and verifies
// that generated answers only cite context that was actually supplied.
package citation

import (
	"fmt"
	"regexp"
)

// Token is an in-text marker of the form [S#####] referencing one supplied
// context unit. The index is sequential and scoped to a single question's
// assembled context, not globally unique.
type Token string

var tokenRe = regexp.MustCompile(`\[S\d{5}\]`)

// TokenAt formats the token for the i-th context unit (1-based).
func TokenAt(i int) Token {
	return Token(fmt.Sprintf("[S%05d]", i))
}

// Assembler hands out sequential tokens while one question's context is
// being put together, and remembers everything it issued.
type Assembler struct {
	next     int
	supplied []Token
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Next issues the next token in sequence.
func (a *Assembler) Next() Token {
	a.next++
	t := TokenAt(a.next)
	a.supplied = append(a.supplied, t)
	return t
}

// Supplied returns every issued token in issue order.
func (a *Assembler) Supplied() []Token {
	return a.supplied
}

// Result reports what Validate found. Hallucinated tokens are a
// correctness defect to surface; unused tokens are informational.
type Result struct {
	Found        []Token
	Hallucinated []Token
	Unused       []Token
}

// Valid reports whether every cited token was actually supplied.
func (r Result) Valid() bool {
	return len(r.Hallucinated) == 0
}

// Validate scans answer text for citation tokens and partitions them
// against the supplied set. It never mutates the answer; hallucinated
// citations are a reportable finding, not a hard failure, because silently
// discarding LLM output loses diagnostic value.
func Validate(answer string, supplied []Token) Result {
	suppliedSet := make(map[Token]bool, len(supplied))
	for _, t := range supplied {
		suppliedSet[t] = true
	}

	// unique tokens in first-appearance order
	seen := make(map[Token]bool)
	var found []Token
	for _, m := range tokenRe.FindAllString(answer, -1) {
		t := Token(m)
		if !seen[t] {
			seen[t] = true
			found = append(found, t)
		}
	}

	var hallucinated []Token
	for _, t := range found {
		if !suppliedSet[t] {
			hallucinated = append(hallucinated, t)
		}
	}

	var unused []Token
	for _, t := range supplied {
		if !seen[t] {
			unused = append(unused, t)
		}
	}

	return Result{Found: found, Hallucinated: hallucinated, Unused: unused}
}
