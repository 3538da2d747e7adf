// Package parser extracts structured intent from policy questions. The
// parser is deterministic: the RAG engine uses it to enrich retrieval
// queries, so the same question must always parse the same way.
package parser

import (
	"sort"
	"strings"
)

// Intent is the structured interpretation of a user question.
type Intent struct {
	MainTopic    string   `json:"main_topic"`
	QuestionType string   `json:"question_type"`
	KeyEntities  []string `json:"key_entities"`
}

// Question type classifications.
const (
	QuestionDuration   = "duration"
	QuestionAmount     = "amount"
	QuestionDefinition = "definition"
	QuestionCoverage   = "coverage"
	QuestionProcedure  = "procedure"
	QuestionGeneral    = "general"
)

// topicKeywords maps domain topics to the phrases that signal them, in
// priority order. The first topic with a hit wins.
var topicKeywords = []struct {
	topic   string
	phrases []string
}{
	{"maternity", []string{"maternity", "pregnancy", "childbirth", "newborn"}},
	{"exclusions", []string{"exclusion", "excluded", "not covered", "not liable"}},
	{"claims", []string{"claim", "reimbursement", "settlement"}},
	{"premium", []string{"premium", "payment", "instalment", "installment"}},
	{"hospitalization", []string{"hospitalization", "hospitalisation", "hospital", "inpatient", "in-patient"}},
	{"coverage", []string{"coverage", "covered", "cover", "benefit", "sum insured"}},
	{"renewal", []string{"renewal", "renew", "grace period"}},
	{"cancellation", []string{"cancellation", "cancel", "termination", "terminate"}},
	{"deductible", []string{"deductible", "co-pay", "copay", "co-payment"}},
}

// entityPhrases are multi-word insurance terms extracted verbatim when they
// appear in a question. Longer phrases are checked first so "initial waiting
// period" does not also surface "waiting period".
var entityPhrases = []string{
	"initial waiting period",
	"pre-existing condition",
	"pre-existing disease",
	"waiting period",
	"grace period",
	"sum insured",
	"policy period",
	"policy limit",
	"room rent",
	"day care",
	"maternity coverage",
	"medical expenses",
	"cashless treatment",
	"no claim bonus",
	"free look period",
	"co-payment",
}

// stopwords are tokens never reported as entities on their own.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"do": {}, "does": {}, "did": {}, "can": {}, "could": {}, "will": {},
	"would": {}, "should": {}, "shall": {}, "may": {}, "might": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "whom": {},
	"how": {}, "why": {}, "long": {}, "much": {}, "many": {}, "there": {},
	"i": {}, "my": {}, "me": {}, "we": {}, "our": {}, "you": {}, "your": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "from": {},
	"by": {}, "with": {}, "about": {}, "under": {}, "after": {}, "before": {},
	"and": {}, "or": {}, "not": {}, "no": {}, "any": {}, "all": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"if": {}, "as": {}, "per": {}, "so": {}, "than": {}, "then": {},
}

// ParseIntent classifies a question and extracts its key entities. It never
// fails: unrecognized questions come back with type "general" and an empty
// topic.
func ParseIntent(question string) Intent {
	normalized := normalize(question)

	intent := Intent{
		QuestionType: classifyQuestion(normalized),
		KeyEntities:  extractEntities(normalized),
	}

	for _, tk := range topicKeywords {
		for _, phrase := range tk.phrases {
			if strings.Contains(normalized, phrase) {
				intent.MainTopic = tk.topic
				break
			}
		}
		if intent.MainTopic != "" {
			break
		}
	}

	return intent
}

// normalize lowercases the question and strips punctuation that would break
// phrase matching, keeping hyphens inside words.
func normalize(question string) string {
	var b strings.Builder
	b.Grow(len(question))
	for _, r := range strings.ToLower(question) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func classifyQuestion(normalized string) string {
	switch {
	case strings.Contains(normalized, "how long") ||
		strings.Contains(normalized, "how many days") ||
		strings.Contains(normalized, "how many months") ||
		strings.Contains(normalized, "duration"):
		return QuestionDuration
	case strings.Contains(normalized, "how much") ||
		strings.Contains(normalized, "what amount") ||
		strings.Contains(normalized, "maximum amount") ||
		strings.Contains(normalized, "limit"):
		return QuestionAmount
	case strings.HasPrefix(normalized, "what is the meaning") ||
		strings.HasPrefix(normalized, "what does") ||
		strings.Contains(normalized, "definition of") ||
		strings.Contains(normalized, "defined as"):
		return QuestionDefinition
	case strings.Contains(normalized, "is covered") ||
		strings.Contains(normalized, "are covered") ||
		strings.Contains(normalized, "does the policy cover") ||
		strings.Contains(normalized, "covered under"):
		return QuestionCoverage
	case strings.HasPrefix(normalized, "how do") ||
		strings.HasPrefix(normalized, "how can") ||
		strings.Contains(normalized, "procedure") ||
		strings.Contains(normalized, "process for"):
		return QuestionProcedure
	default:
		return QuestionGeneral
	}
}

func extractEntities(normalized string) []string {
	var entities []string
	seen := make(map[string]struct{})
	covered := normalized

	for _, phrase := range entityPhrases {
		if strings.Contains(covered, phrase) {
			if _, ok := seen[phrase]; !ok {
				entities = append(entities, phrase)
				seen[phrase] = struct{}{}
			}
			// Blank out the match so a shorter contained phrase is not
			// extracted again.
			covered = strings.ReplaceAll(covered, phrase, " ")
		}
	}

	// Remaining salient tokens: non-stopwords of 4+ characters.
	for _, token := range strings.Fields(covered) {
		if len(token) < 4 {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		entities = append(entities, token)
		seen[token] = struct{}{}
	}

	sort.Strings(entities)
	return entities
}
