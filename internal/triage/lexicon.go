// Package triage implements the automated classify, retrieve, draft and
// decide pipeline that runs once per new ticket.
package triage

import "github.com/spec-kit/helpdesk-triage/internal/domain"

// LexiconEntry binds a category to its keyword list. Entry order is
// significant: score ties resolve to the first category declared.
type LexiconEntry struct {
	Category domain.TicketCategory
	Keywords []string
}

// Lexicon is the immutable category/keyword table driving all scoring.
// Build it once at startup and share it by reference.
type Lexicon struct {
	entries []LexiconEntry
	byCat   map[domain.TicketCategory][]string
}

// NewLexicon constructs a lexicon from ordered entries.
func NewLexicon(entries []LexiconEntry) *Lexicon {
	byCat := make(map[domain.TicketCategory][]string, len(entries))
	for _, entry := range entries {
		byCat[entry.Category] = entry.Keywords
	}
	return &Lexicon{entries: entries, byCat: byCat}
}

// Entries returns the ordered category entries.
func (l *Lexicon) Entries() []LexiconEntry {
	return l.entries
}

// Keywords returns the keyword list for a category, nil when absent.
func (l *Lexicon) Keywords(category domain.TicketCategory) []string {
	return l.byCat[category]
}

// DefaultLexicon returns the built-in keyword table.
func DefaultLexicon() *Lexicon {
	return NewLexicon([]LexiconEntry{
		{
			Category: domain.CategoryBilling,
			Keywords: []string{
				"payment", "charge", "refund", "invoice", "bill", "credit", "debit",
				"subscription", "plan", "upgrade", "downgrade", "cancel", "money",
				"cost", "price", "fee", "transaction", "receipt", "statement",
				"billing", "account", "card", "paypal", "bank", "dispute", "balance",
			},
		},
		{
			Category: domain.CategoryTech,
			Keywords: []string{
				"error", "bug", "500", "404", "crash", "broken", "not working",
				"login", "password", "server", "database", "api", "timeout",
				"slow", "performance", "mobile", "browser", "app", "website",
				"code", "technical", "system", "integration", "sync", "access",
				"account", "reset", "forgot", "locked", "security", "authentication",
				"connection", "internet", "wifi", "network", "loading", "freeze",
			},
		},
		{
			Category: domain.CategoryShipping,
			Keywords: []string{
				"delivery", "shipping", "package", "tracking", "shipment",
				"courier", "postal", "address", "location", "delayed", "lost",
				"damaged", "warehouse", "dispatch", "transit", "arrived",
				"destination", "expedite", "overnight", "express", "track",
				"order", "ship", "deliver", "receive", "missing", "status",
			},
		},
	})
}
