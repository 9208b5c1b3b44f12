// Package validate runs the pre-submission checks for a bot: it builds, has a
// usable name, survives an empty discard pile, plays legal hands against
// RandomBot in reasonable time and, as a warning only, beats it.
package validate

import (
	"context"
	"fmt"
	"strings"
	"time"

	engine "github.com/jason-s-yu/ginrummy/engine"
	"github.com/jason-s-yu/ginrummy/internal/bot"
	"github.com/jason-s-yu/ginrummy/internal/game"
	"github.com/sirupsen/logrus"
)

// Check is the outcome of one validation step.
type Check struct {
	Name    string
	Passed  bool
	Warning bool
	Message string
}

func (c Check) String() string {
	switch {
	case c.Warning:
		return "⚠  " + c.Message
	case c.Passed:
		return "✓ " + c.Message
	}
	return "✗ " + c.Message
}

func pass(name, format string, args ...any) Check {
	return Check{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

func warn(name, format string, args ...any) Check {
	return Check{Name: name, Passed: true, Warning: true, Message: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) Check {
	return Check{Name: name, Message: fmt.Sprintf(format, args...)}
}

// Report collects every check run for one bot.
type Report struct {
	Bot    string
	Checks []Check
}

// Passed reports whether every non-warning check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Warning && !c.Passed {
			return false
		}
	}
	return true
}

func (r *Report) add(c Check) bool {
	r.Checks = append(r.Checks, c)
	return c.Passed
}

// Options tune the validation run. Zero fields take the defaults below.
type Options struct {
	Seed            uint64
	DecisionTimeout time.Duration
	SampleGames     int           // crash check, default 5
	PerfGames       int           // timing check, default 10
	WinRateGames    int           // comparison with RandomBot, default 20
	SlowAfter       time.Duration // perf warning, default 10s
	FailAfter       time.Duration // perf failure, default 30s
	Logger          logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.SampleGames <= 0 {
		o.SampleGames = 5
	}
	if o.PerfGames <= 0 {
		o.PerfGames = 10
	}
	if o.WinRateGames <= 0 {
		o.WinRateGames = 20
	}
	if o.SlowAfter <= 0 {
		o.SlowAfter = 10 * time.Second
	}
	if o.FailAfter <= 0 {
		o.FailAfter = 30 * time.Second
	}
	if o.DecisionTimeout == 0 {
		o.DecisionTimeout = game.DefaultDecisionTimeout
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// genericNames are accepted with a warning.
var genericNames = map[string]bool{"bot": true, "player": true, "studentbot": true, "mybot": true}

// Validate runs the checks in order, stopping at the first critical failure.
func Validate(ctx context.Context, name string, f bot.Factory, opts Options) Report {
	opts = opts.withDefaults()
	log := opts.Logger.WithField("bot", name)
	r := Report{Bot: name}
	defer func() {
		log.WithField("passed", r.Passed()).Info("validation finished")
	}()

	p, err := build(f, opts.Seed)
	if !r.add(result("build", err, "bot builds", "bot could not be built: %v")) {
		return r
	}
	r.add(checkName(p))
	if !r.add(checkEmptyDiscard(ctx, p, opts)) {
		return r
	}
	if !r.add(checkSampleHands(ctx, f, opts, log)) {
		return r
	}
	if !r.add(checkPerformance(ctx, f, opts, log)) {
		return r
	}
	r.add(checkBeatsRandom(ctx, f, opts, log))
	return r
}

func result(name string, err error, ok, format string) Check {
	if err != nil {
		return fail(name, format, err)
	}
	return pass(name, "%s", ok)
}

func build(f bot.Factory, seed uint64) (p game.Player, err error) {
	if f == nil {
		return nil, fmt.Errorf("nil factory")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if p = f(seed); p == nil {
		return nil, fmt.Errorf("factory returned nil")
	}
	return p, nil
}

func checkName(p game.Player) Check {
	name := strings.TrimSpace(p.Name())
	switch {
	case name == "":
		return fail("name", "bot name is empty")
	case genericNames[strings.ToLower(name)]:
		return warn("name", "bot has generic name %q, consider a unique one", name)
	}
	return pass("name", "bot has name %q", name)
}

// emptyDiscardView is a first-turn view with nothing to take from the pile.
func emptyDiscardView() engine.PlayerView {
	return engine.PlayerView{
		Seat:             0,
		Hand:             engine.MustParseCards("AH 3C 5D 7S 9H JC KD 2S 4H 6C"),
		DiscardTop:       engine.EmptyCard,
		DrawnFromDiscard: engine.EmptyCard,
		DeckSize:         31,
		OpponentHandSize: 10,
		Phase:            engine.PhaseAwaitingDraw,
		IsMyTurn:         true,
		Dealer:           1,
		Rules:            engine.DefaultHouseRules(),
	}
}

func checkEmptyDiscard(ctx context.Context, p game.Player, opts Options) Check {
	const name = "empty_discard"
	v := emptyDiscardView()
	src, err := game.Decide(ctx, opts.DecisionTimeout, func(ctx context.Context) (engine.DrawSource, error) {
		return p.DrawDecision(ctx, v.Clone())
	})
	switch {
	case err != nil:
		return fail(name, "draw decision with an empty discard pile failed: %v", err)
	case src != engine.DrawFromDeck:
		return fail(name, "draw decision with an empty discard pile returned %s", src)
	}
	return pass(name, "bot handles an empty discard pile")
}

// playVsRandom plays n hands with the bot in seat 0 against RandomBot,
// alternating the dealer. It returns the results and the time taken.
func playVsRandom(ctx context.Context, f bot.Factory, n int, opts Options, log logrus.FieldLogger) ([]engine.GameResult, time.Duration, error) {
	out := make([]engine.GameResult, 0, n)
	start := time.Now()
	for i := 0; i < n; i++ {
		seed := opts.Seed + uint64(i)
		p, err := build(f, seed)
		if err != nil {
			return out, time.Since(start), err
		}
		res, err := game.PlayHand(ctx, [engine.NumPlayers]game.Player{p, bot.NewRandom(^seed)}, seed, uint8(i%2), game.Options{
			DecisionTimeout: opts.DecisionTimeout,
			Logger:          log,
		})
		if err != nil {
			return out, time.Since(start), err
		}
		out = append(out, res)
	}
	return out, time.Since(start), nil
}

func checkSampleHands(ctx context.Context, f bot.Factory, opts Options, log logrus.FieldLogger) Check {
	const name = "sample_hands"
	results, _, err := playVsRandom(ctx, f, opts.SampleGames, opts, log)
	if err != nil {
		return fail(name, "could not play sample hands: %v", err)
	}
	for i, res := range results {
		if res.Reason == engine.ReasonForfeit && res.Offender == 0 {
			return fail(name, "bot faulted in game %d/%d: %v", i+1, opts.SampleGames, res.Fault)
		}
	}
	return pass(name, "bot completed %d games with only legal moves", opts.SampleGames)
}

func checkPerformance(ctx context.Context, f bot.Factory, opts Options, log logrus.FieldLogger) Check {
	const name = "performance"
	n := opts.PerfGames
	_, elapsed, err := playVsRandom(ctx, f, n, opts, log)
	if err != nil {
		return fail(name, "performance run failed: %v", err)
	}
	avg := elapsed / time.Duration(n)
	msg := fmt.Sprintf("%d games took %s (avg %s/game)", n, elapsed.Round(time.Millisecond), avg.Round(time.Microsecond))
	switch {
	case elapsed > opts.FailAfter:
		return fail(name, "%s, too slow (>%s)", msg, opts.FailAfter)
	case elapsed > opts.SlowAfter:
		return warn(name, "%s, acceptable but slow", msg)
	}
	return pass(name, "%s, good performance", msg)
}

func checkBeatsRandom(ctx context.Context, f bot.Factory, opts Options, log logrus.FieldLogger) Check {
	const name = "vs_random"
	n := opts.WinRateGames
	results, _, err := playVsRandom(ctx, f, n, opts, log)
	if err != nil {
		return warn(name, "could not measure win rate: %v", err)
	}
	wins := 0
	for _, res := range results {
		if res.Winner == 0 {
			wins++
		}
	}
	rate := float64(wins) / float64(n)
	if rate < 0.4 {
		return warn(name, "bot won %d/%d (%.1f%%) vs RandomBot, needs improvement", wins, n, rate*100)
	}
	return pass(name, "bot won %d/%d (%.1f%%) vs RandomBot", wins, n, rate*100)
}

// FormatReport renders r the way the CLI prints it.
func FormatReport(r Report) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("GIN RUMMY BOT VALIDATOR\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "\nValidating: %s\n\n", r.Bot)
	for _, c := range r.Checks {
		b.WriteString(c.String() + "\n")
	}
	b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
	if r.Passed() {
		b.WriteString("✓ VALIDATION PASSED\n")
	} else {
		b.WriteString("✗ VALIDATION FAILED\n")
	}
	b.WriteString(strings.Repeat("=", 60))
	return b.String()
}
