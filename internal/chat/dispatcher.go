package chat

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/config"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"github.com/vadiminshakov/recallbot/internal/ledger"
	"github.com/vadiminshakov/recallbot/internal/market"
	"github.com/vadiminshakov/recallbot/internal/services/executor"
	"github.com/vadiminshakov/recallbot/internal/services/scheduler"
	"github.com/vadiminshakov/recallbot/internal/services/strategy"
	"github.com/vadiminshakov/recallbot/internal/session"
	"github.com/vadiminshakov/recallbot/internal/settings"
	"github.com/vadiminshakov/recallbot/internal/tokens"
	"go.uber.org/zap"
)

// Dispatcher routes parsed commands to handlers. Every error raised by a
// handler is rendered as a user-visible message here; nothing propagates
// to the session loop.
type Dispatcher struct {
	registry *tokens.Registry
	ledger   *ledger.Ledger
	board    *market.Board
	executor *executor.Executor
	sessions *session.Store
	sched    *scheduler.Scheduler
	settings *settings.Settings
	cfg      config.StrategyParams
	rnd      *rand.Rand
	logger   *zap.Logger

	// background work spawned by commands outlives the command itself
	baseCtx   context.Context
	startedAt time.Time
}

// NewDispatcher wires the command surface.
func NewDispatcher(baseCtx context.Context, registry *tokens.Registry, bals *ledger.Ledger, board *market.Board,
	exec *executor.Executor, sessions *session.Store, sched *scheduler.Scheduler,
	params *settings.Settings, cfg config.StrategyParams, rnd *rand.Rand, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry:  registry,
		ledger:    bals,
		board:     board,
		executor:  exec,
		sessions:  sessions,
		sched:     sched,
		settings:  params,
		cfg:       cfg,
		rnd:       rnd,
		logger:    logger,
		baseCtx:   baseCtx,
		startedAt: time.Now(),
	}
}

// Dispatch parses and executes one line of user input, returning the reply
// and whether the session should end.
func (d *Dispatcher) Dispatch(userID, text string) (reply string, exit bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command handler panicked", zap.Any("panic", r), zap.String("input", text))
			reply = errStyle.Render(fmt.Sprintf("processing error: %v", r))
			exit = false
		}
	}()

	cmd := Parse(text)
	switch cmd.Kind {
	case KindHelp:
		return d.help(), false
	case KindTrade:
		return d.trade(userID, cmd.Params), false
	case KindBalance:
		return d.balance(), false
	case KindMarket:
		return d.market(cmd.Params), false
	case KindHistory:
		return d.history(), false
	case KindStrategy:
		return d.strategy(userID, cmd.Params), false
	case KindPrice:
		return d.price(cmd.Params), false
	case KindAlerts:
		return d.alerts(userID, cmd.Params), false
	case KindPortfolio:
		return d.portfolio(), false
	case KindTokens:
		return d.tokens(), false
	case KindSettings:
		return d.settingsCmd(cmd.Raw), false
	case KindStart:
		return d.start(), false
	case KindStop:
		return d.stop(), false
	case KindStatus:
		return d.status(), false
	case KindExit:
		return d.exit(), true
	default:
		return fmt.Sprintf("I didn't understand %q. Type 'help' for available commands", cmd.Raw), false
	}
}

func (d *Dispatcher) help() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Available Commands") + "\n")
	b.WriteString("  help                             show this help message\n")
	b.WriteString("  trade <from> to <to> <amount>    execute a trade, e.g. trade USDC to WETH 100\n")
	b.WriteString("  balance                          show account balance\n")
	b.WriteString("  market [pair]                    show market data, e.g. market USDC_WETH\n")
	b.WriteString("  history                          show recent trade history\n")
	b.WriteString("  strategy <name>                  set trading strategy (" + strings.Join(strategy.Names(), ", ") + ")\n")
	b.WriteString("  price <pair>                     current price for a token pair\n")
	b.WriteString("  alerts add|remove|list           manage price alerts\n")
	b.WriteString("  portfolio                        show portfolio summary\n")
	b.WriteString("  tokens                           list supported tokens\n")
	b.WriteString("  settings [name value]            show or change bot settings\n")
	b.WriteString("  start / stop / status            control auto-trading\n")
	b.WriteString("  exit                             end the session\n")
	b.WriteString(subtleStyle.Render("examples: \"trade USDC to WETH 200\", \"alerts add WETH_BTC 0.055\", \"strategy trend\""))
	return b.String()
}

func (d *Dispatcher) trade(userID string, params []string) string {
	if len(params) != 3 {
		return errStyle.Render("format error, use: trade <from_token> to <to_token> <amount>")
	}

	amount, err := decimal.NewFromString(params[2])
	if err != nil {
		return errStyle.Render("invalid amount, must be a number")
	}

	record, err := d.executor.Execute(d.baseCtx, params[0], params[1], amount,
		fmt.Sprintf("user %s initiated trade", userID))
	if err != nil {
		return d.renderTradeError(err)
	}

	return fmt.Sprintf("%s\nID: %s\n%s -> %s %s (received %s @ %s)\nTime: %s",
		okStyle.Render("Trade executed"),
		record.ID,
		record.From, record.To, record.Amount.String(),
		record.Received.String(), record.Price.String(),
		record.Timestamp.Format("2006-01-02 15:04:05"))
}

func (d *Dispatcher) renderTradeError(err error) string {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrUnknownToken):
		return errStyle.Render(fmt.Sprintf("%s. Supported tokens: %s",
			err.Error(), strings.Join(d.registry.Symbols(), ", ")))
	case errors.Is(err, domain.ErrSameToken):
		return errStyle.Render(err.Error())
	case errors.Is(err, domain.ErrAmountOutOfRange):
		minAmount, maxAmount := d.settings.TradeLimits()
		return errStyle.Render(fmt.Sprintf("amount out of range: minimum %s, maximum %s",
			minAmount.String(), maxAmount.String()))
	case errors.Is(err, domain.ErrInsufficientBalance):
		return errStyle.Render(err.Error())
	case errors.As(err, &apiErr):
		return errStyle.Render(fmt.Sprintf("trade failed: %s", apiErr.Error()))
	default:
		return errStyle.Render(fmt.Sprintf("trade failed: %s", err.Error()))
	}
}

func (d *Dispatcher) balance() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Account Balance") + "\n")
	balances := d.ledger.Snapshot()
	for _, symbol := range d.registry.Symbols() {
		amount, ok := balances[symbol]
		if !ok || amount.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "  %-6s %s\n", symbol, amount.StringFixed(4))
	}
	b.WriteString(subtleStyle.Render("last updated: " + time.Now().Format("2006-01-02 15:04")))
	return b.String()
}

func (d *Dispatcher) market(params []string) string {
	if len(params) == 1 {
		pair, err := domain.ParsePair(params[0])
		if err != nil {
			return errStyle.Render(err.Error())
		}
		stats, ok := d.board.Stats(pair)
		if !ok {
			return errStyle.Render(fmt.Sprintf("no data for %s, available pairs: %s",
				pair.String(), strings.Join(d.pairNames(), ", ")))
		}
		return fmt.Sprintf("%s\n  price:      %s\n  24h change: %s%%\n  24h high:   %s\n  24h low:    %s\n  volume:     %s",
			titleStyle.Render(pair.String()+" Market Data"),
			stats.Price.String(),
			stats.Change24h.Mul(decimal.NewFromInt(100)).StringFixed(2),
			stats.High24h.String(),
			stats.Low24h.String(),
			stats.Volume.String())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Market Overview") + "\n")
	for _, pair := range d.board.Pairs() {
		stats, _ := d.board.Stats(pair)
		fmt.Fprintf(&b, "  %-10s %-12s %s%%\n", pair.String(), stats.Price.String(),
			stats.Change24h.Mul(decimal.NewFromInt(100)).StringFixed(2))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) history() string {
	records := d.executor.History(5)
	if len(records) == 0 {
		return "no trade history yet"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent Trade History") + "\n")
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		fmt.Fprintf(&b, "  %s  %s->%s %s @ %s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.From, r.To,
			r.Amount.StringFixed(2), r.Price.String())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) strategy(userID string, params []string) string {
	if len(params) == 0 {
		current := d.sched.StrategyName()
		if current == "" {
			current = "none"
		}
		return fmt.Sprintf("current strategy: %s\navailable strategies: %s",
			current, strings.Join(strategy.Names(), ", "))
	}

	name := strings.ToLower(params[0])
	description, ok := strategy.Describe(name)
	if !ok {
		return errStyle.Render(fmt.Sprintf("invalid strategy, available: %s", strings.Join(strategy.Names(), ", ")))
	}

	ev, err := strategy.New(name, d.cfg, d.settings, d.registry.Symbols(), d.rnd)
	if err != nil {
		return errStyle.Render(err.Error())
	}
	d.sched.SetStrategy(ev)
	d.sessions.SetStrategy(userID, name)
	return okStyle.Render("strategy set: " + description)
}

func (d *Dispatcher) price(params []string) string {
	if len(params) == 0 {
		return errStyle.Render("please specify a token pair, e.g. price USDC_WETH")
	}
	pair, err := domain.ParsePair(params[0])
	if err != nil {
		return errStyle.Render(err.Error())
	}
	stats, ok := d.board.Stats(pair)
	if !ok {
		return errStyle.Render(fmt.Sprintf("no price data for %s, available pairs: %s",
			pair.String(), strings.Join(d.pairNames(), ", ")))
	}
	return fmt.Sprintf("current price for %s: %s", pair.String(), stats.Price.String())
}

func (d *Dispatcher) alerts(userID string, params []string) string {
	const usage = "use: alerts add <pair> <price>, alerts remove <id>, alerts list"
	if len(params) != 2 {
		return errStyle.Render("specify an action, " + usage)
	}
	action, rest := params[0], params[1]

	switch action {
	case "add":
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			return errStyle.Render("invalid alert command, " + usage)
		}
		pair, err := domain.ParsePair(fields[0])
		if err != nil {
			return errStyle.Render(err.Error())
		}
		target, err := decimal.NewFromString(fields[1])
		if err != nil {
			return errStyle.Render("invalid price, must be a number")
		}
		alert := d.sessions.AddAlert(userID, pair, target)
		return okStyle.Render(fmt.Sprintf("alert added: %s @ %s (ID: %s)",
			pair.String(), target.String(), alert.ID))

	case "remove":
		fields := strings.Fields(rest)
		if len(fields) < 1 {
			return errStyle.Render("invalid alert command, " + usage)
		}
		if !d.sessions.RemoveAlert(userID, fields[0]) {
			return errStyle.Render("alert not found: " + fields[0])
		}
		return okStyle.Render("alert removed: " + fields[0])

	case "list":
		alerts := d.sessions.Alerts(userID)
		if len(alerts) == 0 {
			return "no active alerts"
		}
		var b strings.Builder
		b.WriteString(titleStyle.Render("Your Price Alerts") + "\n")
		for _, alert := range alerts {
			status := "ACTIVE"
			if alert.Triggered {
				status = "TRIGGERED"
			}
			fmt.Fprintf(&b, "  %s: %s @ %s (%s)\n", alert.ID, alert.Pair.String(), alert.TargetPrice.String(), status)
		}
		return strings.TrimRight(b.String(), "\n")

	default:
		return errStyle.Render("invalid alert command, " + usage)
	}
}

func (d *Dispatcher) portfolio() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Portfolio Summary") + "\n")

	total := decimal.Zero
	balances := d.ledger.Snapshot()
	for _, symbol := range d.registry.Symbols() {
		amount, ok := balances[symbol]
		if !ok || amount.IsZero() {
			continue
		}
		value := amount
		if symbol != "USDC" {
			rate := d.board.Rate(domain.Pair{From: symbol, To: "USDC"})
			value = amount.Mul(rate)
		}
		total = total.Add(value)
		fmt.Fprintf(&b, "  %-6s %s (~ $%s)\n", symbol, amount.StringFixed(4), value.StringFixed(2))
	}

	fmt.Fprintf(&b, "total value: $%s\n", total.StringFixed(2))
	b.WriteString(subtleStyle.Render("last updated: " + time.Now().Format("2006-01-02 15:04")))
	return b.String()
}

func (d *Dispatcher) tokens() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Supported Tokens") + "\n")
	for _, symbol := range d.registry.Symbols() {
		token, err := d.registry.Resolve(symbol)
		if err != nil {
			continue
		}
		address := token.Address
		if len(address) > 10 {
			address = address[:6] + "..." + address[len(address)-4:]
		}
		fmt.Fprintf(&b, "  %-6s %s\n", symbol, subtleStyle.Render(address))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (d *Dispatcher) settingsCmd(rest string) string {
	if rest == "" {
		var b strings.Builder
		b.WriteString(titleStyle.Render("Current Settings") + "\n")
		for _, entry := range d.settings.List() {
			fmt.Fprintf(&b, "  %-22s %s\n", entry.Name, entry.Value)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return errStyle.Render("invalid format, use: settings <name> <value>")
	}
	value, err := d.settings.Set(strings.ToLower(fields[0]), fields[1])
	if err != nil {
		return errStyle.Render(err.Error())
	}
	return okStyle.Render(fmt.Sprintf("setting updated: %s = %s", strings.ToLower(fields[0]), value))
}

func (d *Dispatcher) start() string {
	err := d.sched.Start(d.baseCtx)
	switch {
	case err == nil:
		description, _ := strategy.Describe(d.sched.StrategyName())
		return okStyle.Render(fmt.Sprintf("auto-trading started with %s strategy", description))
	case errors.Is(err, scheduler.ErrNoStrategy):
		return errStyle.Render("no strategy set, use 'strategy <name>' first")
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		return "auto-trading is already running"
	default:
		return errStyle.Render(err.Error())
	}
}

func (d *Dispatcher) stop() string {
	if err := d.sched.Stop(); err != nil {
		if errors.Is(err, scheduler.ErrNotRunning) {
			return "auto-trading is not running"
		}
		return errStyle.Render(err.Error())
	}
	return okStyle.Render("auto-trading stopped")
}

func (d *Dispatcher) status() string {
	state := "INACTIVE"
	if d.sched.Running() {
		state = "ACTIVE"
	}
	strategyName := d.sched.StrategyName()
	if strategyName == "" {
		strategyName = "none"
	}
	lastTrade := "never"
	if record, ok := d.executor.LastTrade(); ok {
		lastTrade = record.Timestamp.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%s\n  auto-trading:    %s\n  strategy:        %s\n  trades executed: %d\n  last trade:      %s\n  uptime:          %s",
		titleStyle.Render("System Status"),
		state, strategyName, d.executor.TradeCount(), lastTrade,
		time.Since(d.startedAt).Truncate(time.Second))
}

func (d *Dispatcher) exit() string {
	if d.sched.Running() {
		if err := d.sched.Stop(); err != nil && !errors.Is(err, scheduler.ErrNotRunning) {
			d.logger.Warn("failed to stop auto-trading on exit", zap.Error(err))
		}
	}
	return "thank you for using the trading bot, goodbye!"
}

func (d *Dispatcher) pairNames() []string {
	pairs := d.board.Pairs()
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, pair.String())
	}
	return out
}
