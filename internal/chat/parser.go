// Package chat implements the command-line chat interface: free-text
// parsing, command dispatch and the interactive session loop.
package chat

import (
	"regexp"
	"sort"
	"strings"
)

// Kind tagged command variant produced by the parser.
type Kind int

const (
	KindUnknown Kind = iota
	KindHelp
	KindTrade
	KindBalance
	KindMarket
	KindHistory
	KindStrategy
	KindPrice
	KindAlerts
	KindPortfolio
	KindTokens
	KindSettings
	KindStart
	KindStop
	KindStatus
	KindExit
)

// Command parsed user input.
type Command struct {
	Kind Kind
	// Params captured groups: trade -> [FROM, TO, AMOUNT],
	// market/price -> [PAIR], strategy -> [name], alerts -> [action, rest].
	Params []string
	// Raw remaining text after a prefix match, or the full input for
	// unknown commands.
	Raw string
}

var (
	tradeRe    = regexp.MustCompile(`^trade\s+(\w+)\s+to\s+(\w+)\s+([\d.]+)`)
	marketRe   = regexp.MustCompile(`^market\s+(\w+_\w+)`)
	strategyRe = regexp.MustCompile(`^strategy\s+(\w+)`)
	priceRe    = regexp.MustCompile(`^price\s+(\w+_\w+)`)
	alertsRe   = regexp.MustCompile(`^alerts\s+(add|remove|list)\s*(.*)`)
)

// prefix-matched command names, checked longest first so that e.g.
// "status" never matches "stop".
var commandNames = func() []struct {
	name string
	kind Kind
} {
	names := []struct {
		name string
		kind Kind
	}{
		{"help", KindHelp},
		{"trade", KindTrade},
		{"balance", KindBalance},
		{"market", KindMarket},
		{"history", KindHistory},
		{"strategy", KindStrategy},
		{"price", KindPrice},
		{"alerts", KindAlerts},
		{"portfolio", KindPortfolio},
		{"tokens", KindTokens},
		{"settings", KindSettings},
		{"start", KindStart},
		{"stop", KindStop},
		{"status", KindStatus},
		{"exit", KindExit},
	}
	sort.SliceStable(names, func(i, j int) bool {
		return len(names[i].name) > len(names[j].name)
	})
	return names
}()

// Parse matches a line of free text against the command grammar.
// Matching is case-insensitive; token symbols are upper-cased.
func Parse(text string) Command {
	raw := strings.TrimSpace(text)
	lower := strings.ToLower(raw)

	if m := tradeRe.FindStringSubmatch(lower); m != nil {
		return Command{
			Kind:   KindTrade,
			Params: []string{strings.ToUpper(m[1]), strings.ToUpper(m[2]), m[3]},
		}
	}
	if m := marketRe.FindStringSubmatch(lower); m != nil {
		return Command{Kind: KindMarket, Params: []string{strings.ToUpper(m[1])}}
	}
	if m := strategyRe.FindStringSubmatch(lower); m != nil {
		return Command{Kind: KindStrategy, Params: []string{m[1]}}
	}
	if m := priceRe.FindStringSubmatch(lower); m != nil {
		return Command{Kind: KindPrice, Params: []string{strings.ToUpper(m[1])}}
	}
	if m := alertsRe.FindStringSubmatch(lower); m != nil {
		// pair names and alert ids are canonically uppercase
		return Command{Kind: KindAlerts, Params: []string{m[1], strings.ToUpper(strings.TrimSpace(m[2]))}}
	}

	for _, c := range commandNames {
		if strings.HasPrefix(lower, c.name) {
			rest := strings.TrimSpace(raw[len(c.name):])
			return Command{Kind: c.kind, Raw: rest}
		}
	}

	return Command{Kind: KindUnknown, Raw: raw}
}
