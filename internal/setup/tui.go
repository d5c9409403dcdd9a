package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/recallbot/config"
	"github.com/vadiminshakov/recallbot/internal/domain"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes
// config.gen.yaml on confirmation.
func RunTUI() error {
	var (
		environment      string
		pair             string
		tradeAmountStr   string
		minAmountStr     string
		maxAmountStr     string
		tradeIntervalStr string
		pollIntervalStr  string
		confirm          bool
	)

	// defaults
	pair = "USDC_WETH"
	tradeAmountStr = "100"
	minAmountStr = "10"
	maxAmountStr = "10000"
	tradeIntervalStr = "5m"
	pollIntervalStr = "5s"

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RECALLBOT CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's get your trading bot set up.\n"))

	// environment
	fmt.Println(stepStyle.Render("STEP 1: ENVIRONMENT"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose the trading environment").
				Options(
					huh.NewOption("Sandbox (recommended)", "sandbox"),
					huh.NewOption("Production", "production"),
				).
				Value(&environment),
		),
	).Run()
	if err != nil {
		return err
	}

	// pair
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RECALLBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: CANONICAL PAIR"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Strategy Trading Pair").
				Description("Must contain underscore (e.g. USDC_WETH)").
				Value(&pair).
				Validate(func(s string) error {
					_, err := domain.ParsePair(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// amounts
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RECALLBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: TRADE SIZING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Default Trade Amount").
				Description("Base amount per trade in the from-token (e.g. 100)").
				Value(&tradeAmountStr).
				Validate(validateAmount),
			huh.NewInput().
				Title("Minimum Trade Amount").
				Value(&minAmountStr).
				Validate(validateAmount),
			huh.NewInput().
				Title("Maximum Trade Amount").
				Value(&maxAmountStr).
				Validate(validateAmount),
		),
	).Run()
	if err != nil {
		return err
	}

	// timing
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RECALLBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Auto-Trade Interval").
				Description("Duration string (e.g. 1m, 5m, 1h)").
				Value(&tradeIntervalStr).
				Validate(validateDuration),
			huh.NewInput().
				Title("Poll Interval").
				Description("How often the scheduler wakes up (e.g. 5s)").
				Value(&pollIntervalStr).
				Validate(validateDuration),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("RECALLBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Environment: %s\nPair: %s\nDefault Amount: %s\nLimits: %s - %s\nTrade Interval: %s\nPoll Interval: %s\n",
		environment, pair, tradeAmountStr, minAmountStr, maxAmountStr, tradeIntervalStr, pollIntervalStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	sandbox := environment == "sandbox"
	cfgTmp := config.ConfigTmp{
		Sandbox:               &sandbox,
		CanonicalPair:         pair,
		DefaultTradeAmountStr: tradeAmountStr,
		MinTradeAmountStr:     minAmountStr,
		MaxTradeAmountStr:     maxAmountStr,
		TradeIntervalStr:      tradeIntervalStr,
		PollIntervalStr:       pollIntervalStr,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\nConfiguration saved to %s\nStart the bot with --config %s", filename, filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateDuration(s string) error {
	_, err := time.ParseDuration(s)
	return err
}
