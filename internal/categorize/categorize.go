// Package categorize assigns a spending category to a transaction from
// keyword rules over its description. Inflows are always Income; the
// first matching rule wins; anything unmatched is General. Applied after
// parsing on request, never inside the engine.
package categorize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/statement-cli/internal/model"
)

type rule struct {
	pattern  *regexp.Regexp
	category string
}

// Rule order is precedence: a strict landlord beats a loose gas station.
var rules = []rule{
	{regexp.MustCompile(`rent|landlord|mortgage|lease|property`), "Housing"},
	{regexp.MustCompile(`electric|water|utility|internet|wifi|comcast|verizon|att|sewer|gas bill`), "Utilities"},
	{regexp.MustCompile(`grocery|supermarket|whole foods|aldi|kroger|costco|walmart`), "Groceries"},
	{regexp.MustCompile(`uber|lyft|taxi|metro|subway|bus|train|mta|bart|shell|exxon|bp|chevron|gas`), "Transport"},
	{regexp.MustCompile(`geico|progressive|state farm|insurance|premium`), "Insurance"},
	{regexp.MustCompile(`hospital|doctor|clinic|pharmacy|cvs|walgreens|rite aid|drug`), "Healthcare"},
	{regexp.MustCompile(`netflix|spotify|hulu|disney|prime video|youtube|subscription`), "Subscriptions"},
	{regexp.MustCompile(`restaurant|cafe|coffee|starbucks|mcdonald|kfc|taco bell|dunkin`), "Dining"},
	{regexp.MustCompile(`amazon|etsy|mercado|ebay|aliexpress|shopping`), "Shopping"},
	{regexp.MustCompile(`loan|credit card payment|emi|mortgage payment|student loan|auto loan|debt`), "Debt"},
	{regexp.MustCompile(`gym|fitness|sports|hobby|game|travel|hotel|airbnb|airline`), "Entertainment"},
}

var essentials = map[string]struct{}{
	"Housing":    {},
	"Utilities":  {},
	"Groceries":  {},
	"Insurance":  {},
	"Healthcare": {},
	"Transport":  {},
	"Debt":       {},
}

// Categorize labels one transaction.
func Categorize(description string, amount decimal.Decimal) string {
	if amount.Sign() > 0 {
		return "Income"
	}
	desc := strings.ToLower(description)
	for _, r := range rules {
		if r.pattern.MatchString(desc) {
			return r.category
		}
	}
	return "General"
}

// IsEssential reports whether a category is non-discretionary spend.
func IsEssential(category string) bool {
	_, ok := essentials[category]
	return ok
}

// Apply fills in the category of every transaction that does not already
// have one. Mutates the slice in place.
func Apply(txs []model.Transaction) {
	for i := range txs {
		if strings.TrimSpace(txs[i].Category) == "" {
			txs[i].Category = Categorize(txs[i].Description, txs[i].Amount)
		}
	}
}
