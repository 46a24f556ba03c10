package parser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/steveyegge/partsbin/internal/types"
)

// Pre-compiled patterns. Quantity patterns are tried in order and the first
// one that matches wins.
var (
	quantityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*(?:pieces|pcs|pc|qty:?|quantity:?)`),
		regexp.MustCompile(`(?i)qty:?\s*(\d+)`),
		regexp.MustCompile(`(?i)quantity:?\s*(\d+)`),
	}

	// vendor tokens like "digikey.com:296-6501-1-ND" or "tme.eu/CD4017BE"
	sourceRegex = regexp.MustCompile(`([a-zA-Z0-9._-]+\.[a-z]{2,})[:/]([^,\s]+)`)

	// name is everything before the first comma or the first standalone number
	nameRegex = regexp.MustCompile(`^([^,]+?)(?:,|\s+\d+|\s+\d+\.\d+\s*[a-zA-Z]+)`)

	commandPrefixRegex = regexp.MustCompile(`(?i)^(?:add(?:\s+to\s+inventory)?\s*:?\s+)`)
)

type categoryRule struct {
	name     string
	keywords []*regexp.Regexp
}

// categoryRules are checked in order; the first keyword hit decides.
var categoryRules = buildCategoryRules([]struct {
	name     string
	keywords []string
}{
	{"Resistor", []string{"resistor", "ohm"}},
	{"Capacitor", []string{"capacitor", "farad", "µF", "nF", "pF"}},
	{"Inductor", []string{"inductor", "coil", "choke", "henry", "µH", "mH"}},
	{"Diode", []string{"diode", "rectifier", "LED"}},
	{"Transistor", []string{"transistor", "MOSFET", "BJT", "FET"}},
	{"IC", []string{"IC", "integrated circuit", "microcontroller", "MCU", "EEPROM", "memory"}},
	{"Connector", []string{"connector", "jack", "plug", "socket", "header", "terminal"}},
	{"Switch", []string{"switch", "button", "toggle"}},
	{"Battery", []string{"battery", "18650"}},
	{"Module", []string{"module", "board", "shield"}},
})

func buildCategoryRules(table []struct {
	name     string
	keywords []string
}) []categoryRule {
	rules := make([]categoryRule, 0, len(table))
	for _, entry := range table {
		rule := categoryRule{name: entry.name}
		for _, kw := range entry.keywords {
			rule.keywords = append(rule.keywords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		rules = append(rules, rule)
	}
	return rules
}

// RegexParser extracts fields with fixed patterns. It never fails on
// non-empty input.
type RegexParser struct{}

// NewRegexParser creates a regex parser
func NewRegexParser() *RegexParser {
	return &RegexParser{}
}

// Parse implements Parser
func (p *RegexParser) Parse(ctx context.Context, text string) (*types.Component, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty input")
	}
	return ParseText(text), nil
}

// ParseText applies the regex rules to text
func ParseText(text string) *types.Component {
	input := strings.TrimSpace(text)
	input = commandPrefixRegex.ReplaceAllString(input, "")

	component := &types.Component{
		Category: types.DefaultCategory,
		Quantity: DefaultQuantity,
	}

	for _, pattern := range quantityPatterns {
		match := pattern.FindStringSubmatch(input)
		if match == nil {
			continue
		}
		if qty, err := strconv.Atoi(match[1]); err == nil {
			component.Quantity = qty
		}
		input = strings.TrimSpace(pattern.ReplaceAllString(input, ""))
		break
	}

	if source := sourceRegex.FindString(input); source != "" {
		component.Source = source
		input = strings.TrimSpace(strings.Replace(input, source, "", 1))
	}

	component.Category = detectCategory(input)

	if match := nameRegex.FindStringSubmatch(input); match != nil {
		component.Name = strings.TrimSpace(match[1])
	} else {
		words := strings.Fields(input)
		if len(words) > 3 {
			component.Name = strings.Join(words[:3], " ")
		} else {
			component.Name = strings.TrimSpace(input)
		}
	}

	specs := strings.Replace(input, component.Name, "", 1)
	component.Specifications = strings.Trim(specs, ", \t")

	return component
}

func detectCategory(text string) string {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if kw.MatchString(text) {
				return rule.name
			}
		}
	}
	return types.DefaultCategory
}
