package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/core/ports"
)

const (
	minQuestionLen = 3
	maxQuestionLen = 500

	// Fallback tokens shorter than this match too much noise ("the", "law").
	minFallbackTokenLen = 4

	// Vocabulary values shorter than this appear inside ordinary words
	// ("IT" is in "with") and cannot serve as predicates.
	minPredicateLen = 3
)

type QueryDocumentsUseCase struct {
	repo ports.DocumentRepository
}

func NewQueryDocumentsUseCase(repo ports.DocumentRepository) *QueryDocumentsUseCase {
	return &QueryDocumentsUseCase{repo: repo}
}

// Query matches a natural-language question against the structured metadata
// of completed documents. Matching is vocabulary driven and runs in two
// phases: the distinct field values across the whole corpus form the
// vocabulary, every value found in the question becomes a predicate, and a
// document matches when any predicate value is contained in (or contains)
// any of its non-empty fields. So a question naming "UAE" matches documents
// whose governing law reads "UAE Federal Law No. 5". Predicates combine
// with OR. When no predicate is detected, a token fallback scans filenames
// and field values so a misspelled or oblique question still returns
// something useful. Zero matches is a valid answer, never an error.
func (uc *QueryDocumentsUseCase) Query(ctx context.Context, question string) (*domain.QueryResult, error) {
	q := strings.TrimSpace(question)
	if n := utf8.RuneCountInString(q); n < minQuestionLen || n > maxQuestionLen {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate question",
			fmt.Errorf("question length %d outside [%d, %d]", n, minQuestionLen, maxQuestionLen))
	}

	docs, err := uc.repo.ListByStatus(ctx, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("list completed documents: %w", err)
	}

	lowerQ := strings.ToLower(q)

	fallback := false
	matches := matchStructuredFields(docs, lowerQ)
	if len(matches) == 0 {
		matches = matchFallback(docs, lowerQ)
		fallback = len(matches) > 0
	}

	return &domain.QueryResult{
		Question: q,
		Matches:  matches,
		Total:    len(matches),
		Fallback: fallback,
	}, nil
}

func matchStructuredFields(docs []domain.Document, lowerQ string) []domain.QueryMatch {
	predicates := detectPredicates(docs, lowerQ)
	if len(predicates) == 0 {
		return nil
	}

	var matches []domain.QueryMatch
	for i := range docs {
		doc := &docs[i]
		fields := doc.Metadata.FieldMap()

		matched := map[string]string{}
		for name, value := range fields {
			lowerValue := strings.ToLower(value)
			for _, pred := range predicates {
				if containsEither(lowerValue, pred) {
					matched[name] = value
					break
				}
			}
		}
		if len(matched) > 0 {
			matches = append(matches, domain.QueryMatch{
				DocumentID: doc.ID,
				Document:   doc.Filename,
				Fields:     matched,
			})
		}
	}
	return matches
}

// detectPredicates projects the corpus vocabulary onto the question: every
// distinct non-empty field value appearing in the question, lowercased,
// becomes a predicate. The vocabulary belongs to the corpus, not to any one
// document, so a value stored on one record can select others.
func detectPredicates(docs []domain.Document, lowerQ string) []string {
	seen := map[string]bool{}
	var predicates []string
	for i := range docs {
		for _, value := range docs[i].Metadata.FieldMap() {
			v := strings.ToLower(value)
			if utf8.RuneCountInString(v) < minPredicateLen || seen[v] {
				continue
			}
			seen[v] = true
			if strings.Contains(lowerQ, v) {
				predicates = append(predicates, v)
			}
		}
	}
	return predicates
}

// matchFallback tokenizes the question and looks for any token inside the
// filename or a field value.
func matchFallback(docs []domain.Document, lowerQ string) []domain.QueryMatch {
	tokens := fallbackTokens(lowerQ)
	if len(tokens) == 0 {
		return nil
	}

	var matches []domain.QueryMatch
	for i := range docs {
		doc := &docs[i]
		fields := doc.Metadata.FieldMap()

		haystacks := make([]string, 0, len(fields)+1)
		haystacks = append(haystacks, strings.ToLower(doc.Filename))
		for _, value := range fields {
			haystacks = append(haystacks, strings.ToLower(value))
		}

		if anyTokenInAny(tokens, haystacks) {
			matches = append(matches, domain.QueryMatch{
				DocumentID: doc.ID,
				Document:   doc.Filename,
				Fields:     fields,
			})
		}
	}
	return matches
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func fallbackTokens(lowerQ string) []string {
	raw := strings.FieldsFunc(lowerQ, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	tokens := raw[:0]
	for _, tok := range raw {
		if utf8.RuneCountInString(tok) >= minFallbackTokenLen {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func anyTokenInAny(tokens, haystacks []string) bool {
	for _, tok := range tokens {
		for _, h := range haystacks {
			if strings.Contains(h, tok) {
				return true
			}
		}
	}
	return false
}
