package services

import (
	"regexp"
	"strings"
)

// IntentUnknown is returned when no trigger pattern matches the input
const IntentUnknown = "unknown"

// Pattern is a single trigger for an intent. Fuzzy patterns tolerate one
// typo (a single edit) when matched against individual words of the input.
type Pattern struct {
	Text     string
	Priority int
	Fuzzy    bool
}

// Intent is a named category of user request with its trigger patterns and
// the canned reply/action the widget responds with. Defined at build time,
// never mutated.
type Intent struct {
	Name     string
	Patterns []Pattern
	Reply    string
	Action   string // widget action key: show-timeline, start-return, show-products, ...
}

// MatchResult is the outcome of resolving a message
type MatchResult struct {
	Intent string            `json:"intent"`
	Score  int               `json:"score"`
	Reply  string            `json:"reply"`
	Action string            `json:"action,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// IntentService resolves free-text messages and slash commands to intents
type IntentService struct {
	intents []Intent
}

var orderNumberPattern = regexp.MustCompile(`\bGG-\d{4,}\b`)
var priceCeilingPattern = regexp.MustCompile(`under \$?\s?(\d[\d,]*)`)

// defaultIntents is the widget's intent table. Order matters: when two
// intents score equally, the one declared first wins.
func defaultIntents() []Intent {
	return []Intent{
		{
			Name: "track-order",
			Patterns: []Pattern{
				{Text: "track order", Priority: 3},
				{Text: "track my order", Priority: 3},
				{Text: "where is my order", Priority: 3},
				{Text: "order status", Priority: 3},
				{Text: "tracking", Priority: 2, Fuzzy: true},
				{Text: "shipped yet", Priority: 2},
			},
			Reply:  "Let's find your order. Share your order number (GG-#####) or the email and postal code on the order.",
			Action: "show-order-lookup",
		},
		{
			Name: "returns",
			Patterns: []Pattern{
				{Text: "return", Priority: 3, Fuzzy: true},
				{Text: "refund", Priority: 3, Fuzzy: true},
				{Text: "send back", Priority: 3},
				{Text: "send it back", Priority: 3},
				{Text: "exchange", Priority: 2},
				{Text: "resize", Priority: 2, Fuzzy: true},
				{Text: "rma", Priority: 2},
				{Text: "wrong size", Priority: 2},
			},
			Reply:  "Most pieces can be returned within 30 days of shipping, and resizes within 60 days. Custom or engraved pieces are final sale. Want me to check an order?",
			Action: "start-return",
		},
		{
			Name: "financing",
			Patterns: []Pattern{
				{Text: "financing", Priority: 3, Fuzzy: true},
				{Text: "payment plan", Priority: 3},
				{Text: "installment", Priority: 2, Fuzzy: true},
				{Text: "affirm", Priority: 2},
				{Text: "klarna", Priority: 2},
				{Text: "pay over time", Priority: 2},
			},
			Reply:  "We offer 0% APR financing on orders over $500 through our checkout partners. You'll see the monthly breakdown on every product page.",
			Action: "show-financing",
		},
		{
			Name: "stylist",
			Patterns: []Pattern{
				{Text: "stylist", Priority: 3, Fuzzy: true},
				{Text: "consultation", Priority: 3, Fuzzy: true},
				{Text: "appointment", Priority: 2},
				{Text: "talk to someone", Priority: 2},
				{Text: "speak to a person", Priority: 2},
				{Text: "virtual visit", Priority: 2},
			},
			Reply:  "Our stylists would love to help. Leave your email and what you'd like to cover, and we'll set up a virtual consultation.",
			Action: "open-stylist-ticket",
		},
		{
			Name: "capsule",
			Patterns: []Pattern{
				{Text: "capsule", Priority: 3, Fuzzy: true},
				{Text: "hold a piece", Priority: 3},
				{Text: "place a hold", Priority: 3},
				{Text: "reserve", Priority: 2, Fuzzy: true},
			},
			Reply:  "Capsule pieces can be held for 7 days while you decide. Tell me the piece and I'll set up the hold.",
			Action: "create-capsule-hold",
		},
		{
			Name: "shortlist",
			Patterns: []Pattern{
				{Text: "shortlist", Priority: 3, Fuzzy: true},
				{Text: "save for later", Priority: 3},
				{Text: "wishlist", Priority: 2, Fuzzy: true},
				{Text: "save these", Priority: 2},
			},
			Reply:  "I'll keep a shortlist for you. It stays available for 30 days on this device.",
			Action: "save-shortlist",
		},
		{
			Name: "shipping",
			Patterns: []Pattern{
				{Text: "shipping", Priority: 3, Fuzzy: true},
				{Text: "delivery time", Priority: 3},
				{Text: "how long to arrive", Priority: 2},
				{Text: "when will it arrive", Priority: 2},
			},
			Reply:  "Ready-to-ship pieces leave our studio within 2 business days. Made-to-order pieces take 2-3 weeks. Shipping is free and insured.",
			Action: "show-shipping-info",
		},
		{
			Name: "care",
			Patterns: []Pattern{
				{Text: "care", Priority: 2},
				{Text: "clean", Priority: 2, Fuzzy: true},
				{Text: "warranty", Priority: 3, Fuzzy: true},
				{Text: "tarnish", Priority: 2},
			},
			Reply:  "Lab-grown diamonds clean up with warm water, mild soap, and a soft brush. Every piece carries a lifetime manufacturing warranty.",
			Action: "show-care-guide",
		},
		{
			Name: "product-search",
			Patterns: []Pattern{
				{Text: "show me", Priority: 2},
				{Text: "looking for", Priority: 2},
				{Text: "browse", Priority: 2, Fuzzy: true},
				{Text: "ring", Priority: 1},
				{Text: "rings", Priority: 1},
				{Text: "necklace", Priority: 1, Fuzzy: true},
				{Text: "necklaces", Priority: 1},
				{Text: "bracelet", Priority: 1, Fuzzy: true},
				{Text: "bracelets", Priority: 1},
				{Text: "earrings", Priority: 1, Fuzzy: true},
				{Text: "studs", Priority: 1},
				{Text: "tennis", Priority: 1},
				{Text: "under $", Priority: 2},
				{Text: "ready to ship", Priority: 2},
			},
			Reply:  "Here's what I found in the collection.",
			Action: "show-products",
		},
	}
}

var intentServiceInstance *IntentService

// NewIntentService creates an intent service backed by the built-in table
func NewIntentService() *IntentService {
	return &IntentService{intents: defaultIntents()}
}

// InitIntentService initializes the shared intent service instance
func InitIntentService() *IntentService {
	intentServiceInstance = NewIntentService()
	return intentServiceInstance
}

// GetIntentService returns the shared intent service, initializing it on
// first use
func GetIntentService() *IntentService {
	if intentServiceInstance == nil {
		intentServiceInstance = NewIntentService()
	}
	return intentServiceInstance
}

// NewIntentServiceWithTable creates an intent service with a custom table
// (primarily for testing)
func NewIntentServiceWithTable(intents []Intent) *IntentService {
	return &IntentService{intents: intents}
}

// Resolve handles one inbound message: slash commands are parsed first,
// anything else (including unrecognized commands) goes through free-text
// matching. Resolve cannot fail; the worst outcome is the unknown intent.
func (s *IntentService) Resolve(text string) MatchResult {
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		if result, ok := s.parseCommand(text); ok {
			return result
		}
	}
	return s.Match(text)
}

// Match scans the text against every intent's pattern list. Each matched
// pattern contributes its priority to that intent's score; the highest
// cumulative score wins. Ties go to the intent declared first. Empty input
// and unmatched input both resolve to the unknown intent.
func (s *IntentService) Match(text string) MatchResult {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return unknownResult(nil)
	}

	words := strings.Fields(normalized)

	best := MatchResult{Intent: IntentUnknown}
	for _, intent := range s.intents {
		score := 0
		for _, pattern := range intent.Patterns {
			if strings.Contains(normalized, pattern.Text) {
				score += pattern.Priority
				continue
			}
			if pattern.Fuzzy && matchesFuzzy(words, pattern.Text) {
				score += pattern.Priority
			}
		}
		// Strictly-greater keeps the first-declared intent on ties
		if score > best.Score {
			best = MatchResult{
				Intent: intent.Name,
				Score:  score,
				Reply:  intent.Reply,
				Action: intent.Action,
			}
		}
	}

	params := extractParams(normalized)
	if best.Intent == IntentUnknown {
		return unknownResult(params)
	}
	best.Params = params
	return best
}

// parseCommand splits a slash command into keyword and arguments and maps
// known keywords to intents. Unknown keywords report !ok so the caller can
// fall through to free-text matching.
func (s *IntentService) parseCommand(text string) (MatchResult, bool) {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return MatchResult{}, false
	}

	keyword := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	args := fields[1:]

	switch keyword {
	case "track":
		params := map[string]string{}
		if len(args) > 0 {
			params["orderNumber"] = strings.ToUpper(args[0])
		}
		return s.commandResult("track-order", params), true
	case "returns", "return":
		params := map[string]string{}
		if len(args) > 0 {
			params["orderNumber"] = strings.ToUpper(args[0])
		}
		if len(args) > 1 {
			params["reason"] = strings.Join(args[1:], " ")
		}
		return s.commandResult("returns", params), true
	case "find":
		rest := strings.ToLower(strings.Join(args, " "))
		params := extractParams(rest)
		if len(args) > 0 {
			params["category"] = strings.ToLower(args[0])
		}
		return s.commandResult("product-search", params), true
	case "stylist":
		return s.commandResult("stylist", nil), true
	case "help":
		return MatchResult{
			Intent: "help",
			Score:  1,
			Reply:  "Try /track GG-#####, /returns GG-##### <reason>, /find <category> [under $N], or /stylist. Or just tell me what you need.",
			Action: "show-help",
		}, true
	}

	return MatchResult{}, false
}

// commandResult builds a MatchResult for an explicitly commanded intent
func (s *IntentService) commandResult(name string, params map[string]string) MatchResult {
	for _, intent := range s.intents {
		if intent.Name == name {
			return MatchResult{
				Intent: intent.Name,
				Score:  1,
				Reply:  intent.Reply,
				Action: intent.Action,
				Params: params,
			}
		}
	}
	return unknownResult(params)
}

func unknownResult(params map[string]string) MatchResult {
	return MatchResult{
		Intent: IntentUnknown,
		Reply:  "I'm not sure I follow. I can help with order tracking, returns, financing, styling appointments, and finding pieces. What can I do for you?",
		Action: "show-help",
		Params: params,
	}
}

// extractParams pulls structured values out of free text: an order number,
// a price ceiling, and category words for the filter translator.
func extractParams(normalized string) map[string]string {
	params := map[string]string{}

	if match := orderNumberPattern.FindString(strings.ToUpper(normalized)); match != "" {
		params["orderNumber"] = match
	}
	if match := priceCeilingPattern.FindStringSubmatch(normalized); match != nil {
		params["priceLt"] = strings.ReplaceAll(match[1], ",", "")
	}
	for _, word := range strings.Fields(normalized) {
		if CanonicalCategory(word) != "" {
			params["category"] = word
			break
		}
	}
	if strings.Contains(normalized, "ready to ship") {
		params["readyToShip"] = "true"
	}

	if len(params) == 0 {
		return nil
	}
	return params
}

// matchesFuzzy reports whether any word of the input is within one edit of
// the pattern. Only single-word patterns get typo tolerance.
func matchesFuzzy(words []string, pattern string) bool {
	if strings.Contains(pattern, " ") {
		return false
	}
	for _, word := range words {
		if withinOneEdit(word, pattern) {
			return true
		}
	}
	return false
}

// withinOneEdit reports whether a and b differ by at most one insertion,
// deletion, or substitution
func withinOneEdit(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := len(a), len(b)
	if la-lb > 1 || lb-la > 1 {
		return false
	}
	// Ensure a is the shorter string
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}
	i, j, edits := 0, 0, 0
	for i < la && j < lb {
		if a[i] == b[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if la == lb {
			i++ // substitution
		}
		j++ // insertion into the shorter string
	}
	return edits+(lb-j) <= 1
}
