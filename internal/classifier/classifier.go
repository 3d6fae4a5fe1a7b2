package classifier

import "strings"

// Classifier decides whether an incoming text blob is plausibly about the
// product domain and whether it should be skipped outright. All three
// predicates are case-insensitive substring checks over fixed term lists.
type Classifier struct {
	domainKeywords []string
	skipTerms      []string
	sourceBots     []string
}

// NewClassifier returns a classifier with the built-in term lists.
func NewClassifier() *Classifier {
	return &Classifier{
		domainKeywords: []string{
			"pokemon",
			"pokémon",
			"tcg",
			"charizard",
			"pikachu",
			"eevee",
			"mewtwo",
			"elite trainer",
			"etb",
			"booster",
			"premium collection",
			"scarlet",
			"violet",
			"paldea",
			"obsidian flames",
			"paradox rift",
			"crown zenith",
			"151",
		},
		skipTerms: []string{
			"queue",
			"waiting room",
			"virtual line",
			"sold out",
			"out of stock",
		},
		sourceBots: []string{
			"restock",
			"stockdrop",
			"droptime",
			"zephyr monitor",
			"stock alert",
		},
	}
}

// IsDomainProduct reports whether the text mentions any domain keyword.
func (c *Classifier) IsDomainProduct(text string) bool {
	return containsAny(text, c.domainKeywords)
}

// ShouldSkip reports whether the text is an announcement with nothing to
// price (queue-only alerts, sellouts).
func (c *Classifier) ShouldSkip(text string) bool {
	return containsAny(text, c.skipTerms)
}

// IsKnownSourceBot reports whether the author name belongs to a recognized
// automated announcement source. Used by the presentation layer to pick the
// parsing strategy for the message.
func (c *Classifier) IsKnownSourceBot(authorName string) bool {
	return containsAny(authorName, c.sourceBots)
}

func containsAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
