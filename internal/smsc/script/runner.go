package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aradsms/smsc/internal/smsc/domain"
)

var (
	registerNumberLine = regexp.MustCompile(`^(number\d+) (\S+)$`)
	registerGroupLine  = regexp.MustCompile(`^(group\d+) (.*)$`)
	subscribeLine      = regexp.MustCompile(`^subscribe (\S+)$`)
	unsubscribeLine    = regexp.MustCompile(`^unsubscribe (\S+)$`)
	messageLine        = regexp.MustCompile(`^message (\S+) (.*) "(.*)"$`)
	sleepLine          = regexp.MustCompile(`^sleep (\d+)$`)
	digits             = regexp.MustCompile(`\d`)
)

// AccountRegistrar registers endpoints and groups.
type AccountRegistrar interface {
	RegisterNumber(ctx context.Context, name, number string) (domain.Account, error)
	RegisterGroup(ctx context.Context, name string, patterns []string) (domain.Group, error)
}

// Subscriber toggles endpoint reachability.
type Subscriber interface {
	Subscribe(ctx context.Context, name string) error
	Unsubscribe(ctx context.Context, name string)
}

// MessageRouter sends messages.
type MessageRouter interface {
	Route(ctx context.Context, sourceName string, dest domain.Destination, message string) (int, error)
}

// Stats counts what a run did with its lines.
type Stats struct {
	Executed int // operations that completed
	Failed   int // operations rejected by the switching center
	Skipped  int // unknown or malformed lines
}

// Runner executes command scripts line by line. A failing line is logged and
// the run continues with the next one.
type Runner struct {
	accounts      AccountRegistrar
	subscriptions Subscriber
	router        MessageRouter
	logger        *slog.Logger
	sleep         func(ctx context.Context, d time.Duration) error
	maxLine       int
}

// DefaultMaxLineLength bounds a single script line. Longer lines are skipped.
const DefaultMaxLineLength = 1 << 20

// NewRunner creates a script Runner.
func NewRunner(accounts AccountRegistrar, subscriptions Subscriber, router MessageRouter, logger *slog.Logger) *Runner {
	return &Runner{
		accounts:      accounts,
		subscriptions: subscriptions,
		router:        router,
		logger:        logger.With("component", "script"),
		sleep:         sleepContext,
		maxLine:       DefaultMaxLineLength,
	}
}

// Run executes every non-empty line of r. It stops early only when ctx is
// cancelled or r fails.
func (s *Runner) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		raw, tooLong, err := readLine(br, s.maxLine)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read script: %w", err)
		}
		if tooLong {
			s.logger.ErrorContext(ctx, "Line too long, skipped", "line_number", lineNo, "max_length", s.maxLine)
			stats.Skipped++
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		s.execute(ctx, line, &stats)
	}
	return stats, ctx.Err()
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed and reported as tooLong instead of being buffered.
func readLine(br *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func (s *Runner) execute(ctx context.Context, line string, stats *Stats) {
	operation := line
	if i := strings.IndexByte(line, ' '); i >= 0 {
		operation = line[:i]
	}
	operation = digits.ReplaceAllString(operation, "")
	s.logger.DebugContext(ctx, "Executing operation", "operation", operation, "line", line)

	var err error
	switch operation {
	case "number":
		err = s.registerNumber(ctx, line)
	case "group":
		err = s.registerGroup(ctx, line)
	case "subscribe":
		err = s.subscribe(ctx, line)
	case "unsubscribe":
		err = s.unsubscribe(ctx, line)
	case "message":
		err = s.sendMessage(ctx, line)
	case "sleep":
		err = s.doSleep(ctx, line)
	default:
		s.logger.ErrorContext(ctx, "Unknown operation", "operation", operation, "line", line)
		stats.Skipped++
		return
	}

	switch {
	case err == nil:
		stats.Executed++
	case errors.Is(err, errNoMatch):
		s.logger.InfoContext(ctx, "No match found for operation", "operation", operation, "line", line)
		stats.Skipped++
	default:
		s.logger.ErrorContext(ctx, "Operation failed", "operation", operation, "line", line, "error", err)
		stats.Failed++
	}
}

var errNoMatch = errors.New("line does not match operation syntax")

func (s *Runner) registerNumber(ctx context.Context, line string) error {
	m := registerNumberLine.FindStringSubmatch(line)
	if m == nil {
		return errNoMatch
	}
	_, err := s.accounts.RegisterNumber(ctx, m[1], m[2])
	return err
}

func (s *Runner) registerGroup(ctx context.Context, line string) error {
	m := registerGroupLine.FindStringSubmatch(line)
	if m == nil {
		return errNoMatch
	}
	_, err := s.accounts.RegisterGroup(ctx, m[1], domain.SplitPatterns(m[2]))
	return err
}

func (s *Runner) subscribe(ctx context.Context, line string) error {
	m := subscribeLine.FindStringSubmatch(line)
	if m == nil {
		return errNoMatch
	}
	return s.subscriptions.Subscribe(ctx, m[1])
}

func (s *Runner) unsubscribe(ctx context.Context, line string) error {
	m := unsubscribeLine.FindStringSubmatch(line)
	if m == nil {
		return errNoMatch
	}
	s.subscriptions.Unsubscribe(ctx, m[1])
	return nil
}

func (s *Runner) sendMessage(ctx context.Context, line string) error {
	m := messageLine.FindStringSubmatch(line)
	if m == nil {
		return errNoMatch
	}
	dest := domain.ParseDestination(domain.SplitPatterns(m[2]))
	_, err := s.router.Route(ctx, m[1], dest, m[3])
	return err
}

func (s *Runner) doSleep(ctx context.Context, line string) error {
	m := sleepLine.FindStringSubmatch(line)
	if m == nil {
		return errNoMatch
	}
	seconds, err := strconv.Atoi(m[1])
	if err != nil {
		return errNoMatch
	}
	s.logger.InfoContext(ctx, "Sleeping", "seconds", seconds)
	return s.sleep(ctx, time.Duration(seconds)*time.Second)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
