package services

// maxSuggestions caps how many alternative filters an empty result produces
const maxSuggestions = 3

// Suggestion is one explicit alternative filter offered when a query finds
// nothing. The original query is never silently rebroadened; every
// suggestion is presented to the customer as its own choice.
type Suggestion struct {
	Label  string        `json:"label"`
	Filter ProductFilter `json:"filter"`
}

// SuggestionService proposes alternative filters for empty results
type SuggestionService struct{}

// NewSuggestionService creates a suggestion service
func NewSuggestionService() *SuggestionService {
	return &SuggestionService{}
}

// SuggestAlternatives produces up to three alternatives for a filter that
// returned zero products. Priority order: raise the price ceiling, offer
// sibling categories, add ready-to-ship. Each alternative differs from the
// original in at least one field.
func (s *SuggestionService) SuggestAlternatives(original ProductFilter) []Suggestion {
	suggestions := make([]Suggestion, 0, maxSuggestions)

	if original.PriceMaxCents > 0 {
		raised := original
		raised.PriceMaxCents = raisedCeiling(original.PriceMaxCents)
		suggestions = append(suggestions, Suggestion{
			Label:  "Raise the budget",
			Filter: raised,
		})
	}

	if original.Category != "" {
		for _, sibling := range SiblingsOf(original.Category) {
			if len(suggestions) >= maxSuggestions {
				break
			}
			alternative := original
			alternative.Category = sibling
			suggestions = append(suggestions, Suggestion{
				Label:  "Try " + sibling + " pieces instead",
				Filter: alternative,
			})
		}
	}

	if len(suggestions) < maxSuggestions && original.ReadyToShip == nil {
		ready := true
		withReady := original
		withReady.ReadyToShip = &ready
		suggestions = append(suggestions, Suggestion{
			Label:  "Ready-to-ship pieces only",
			Filter: withReady,
		})
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// raisedCeiling bumps a price ceiling by half again, rounded to a clean
// hundred-dollar figure
func raisedCeiling(ceiling int64) int64 {
	raised := ceiling + ceiling/2
	const hundredDollars = 100 * 100
	if remainder := raised % hundredDollars; remainder != 0 {
		raised += hundredDollars - remainder
	}
	return raised
}
