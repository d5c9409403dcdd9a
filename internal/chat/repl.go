package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vadiminshakov/recallbot/internal/session"
	"github.com/vadiminshakov/recallbot/internal/settings"
	"go.uber.org/zap"
)

const defaultUserID = "console"

// REPL reads commands line by line and prints dispatcher replies. Price
// alerts are checked between commands so a single-threaded console session
// still sees notifications.
type REPL struct {
	dispatcher *Dispatcher
	sessions   *session.Store
	market     session.MarketView
	settings   *settings.Settings
	in         io.Reader
	out        io.Writer
	logger     *zap.Logger

	lastAlertCheck time.Time
}

func NewREPL(dispatcher *Dispatcher, sessions *session.Store, market session.MarketView,
	params *settings.Settings, in io.Reader, out io.Writer, logger *zap.Logger) *REPL {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &REPL{
		dispatcher:     dispatcher,
		sessions:       sessions,
		market:         market,
		settings:       params,
		in:             in,
		out:            out,
		logger:         logger,
		lastAlertCheck: time.Now(),
	}
}

// Run blocks until the user exits, the input stream ends or ctx is canceled.
// Lines are read on a separate goroutine so cancellation is observed even
// while the prompt is waiting on stdin.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, bannerStyle.Render("Recall Trading Bot"))
	fmt.Fprintln(r.out, subtleStyle.Render("type 'help' for available commands, 'exit' to quit"))
	fmt.Fprintln(r.out)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(r.out, "> ")

		var raw string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return ctx.Err()
		case err := <-scanErr:
			if err != nil {
				return err
			}
			fmt.Fprintln(r.out)
			return nil
		case raw = <-lines:
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			r.checkAlerts()
			continue
		}

		reply, exit := r.dispatcher.Dispatch(defaultUserID, line)
		fmt.Fprintln(r.out, reply)
		fmt.Fprintln(r.out)
		if exit {
			return nil
		}

		r.checkAlerts()
	}
}

func (r *REPL) checkAlerts() {
	if time.Since(r.lastAlertCheck) < r.settings.AlertCheckInterval() {
		return
	}
	r.lastAlertCheck = time.Now()
	if msg := r.sessions.CheckAlerts(r.market); msg != "" {
		fmt.Fprintln(r.out, okStyle.Render(msg))
		fmt.Fprintln(r.out)
	}
}
