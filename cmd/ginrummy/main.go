// Command ginrummy runs bot tournaments, single verbose hands and bot
// validation.
//
//	ginrummy [tournament] [-games N] [-seed S] [-workers W] [-bots a,b,c]
//	ginrummy play [-p0 basic] [-p1 intermediate] [-seed S] [-dealer 0|1]
//	ginrummy validate [-seed S] <bot>
//
// Settings default from the environment and an optional .env file; flags win.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"time"

	engine "github.com/jason-s-yu/ginrummy/engine"
	"github.com/jason-s-yu/ginrummy/internal/bot"
	"github.com/jason-s-yu/ginrummy/internal/config"
	"github.com/jason-s-yu/ginrummy/internal/game"
	"github.com/jason-s-yu/ginrummy/internal/tournament"
	"github.com/jason-s-yu/ginrummy/internal/validate"
	"github.com/sirupsen/logrus"
)

// errValidationFailed exits non-zero without another message.
var errValidationFailed = errors.New("validation failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errValidationFailed) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "ginrummy:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cmd := "tournament"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	reg := bot.Default()
	switch cmd {
	case "tournament":
		return runTournament(ctx, reg, cfg, args, stdout, stderr)
	case "play":
		return runPlay(ctx, reg, cfg, args, stdout, stderr)
	case "validate":
		return runValidate(ctx, reg, cfg, args, stdout, stderr)
	}
	return fmt.Errorf("unknown command %q (want tournament, play or validate)", cmd)
}

// commonFlags registers the flags every subcommand shares onto fs, with
// defaults from cfg.
func commonFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "base seed, 0 picks one at random")
	fs.DurationVar(&cfg.DecisionTimeout, "timeout", cfg.DecisionTimeout, "per-decision time limit, negative disables")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "logrus level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
}

func setup(cfg *config.Config, stderr io.Writer) (*logrus.Logger, error) {
	seed, err := cfg.ResolveSeed()
	if err != nil {
		return nil, err
	}
	cfg.Seed = seed
	return cfg.NewLogger(stderr)
}

func runTournament(ctx context.Context, reg *bot.Registry, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tournament", flag.ContinueOnError)
	fs.SetOutput(stderr)
	commonFlags(fs, &cfg)
	fs.IntVar(&cfg.GamesPerMatch, "games", cfg.GamesPerMatch, "hands per pairing")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "hands played in parallel")
	bots := fs.String("bots", strings.Join(cfg.Bots, ","), "comma separated bot names, empty for all")
	fs.BoolVar(&cfg.NoHeadToHead, "no-h2h", cfg.NoHeadToHead, "skip head-to-head records")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "no progress output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	log, err := setup(&cfg, stderr)
	if err != nil {
		return err
	}

	names := config.SplitList(*bots)
	if len(names) == 0 {
		names = reg.Names()
	}
	entrants := make([]tournament.Entrant, 0, len(names))
	for _, name := range names {
		display, f, err := reg.Resolve(name)
		if err != nil {
			return err
		}
		entrants = append(entrants, tournament.Entrant{Name: display, New: f})
	}

	total := int64(len(tournament.Pairings(len(entrants)))) * int64(max(cfg.GamesPerMatch, 1))
	var played atomic.Int64
	tc := tournament.Config{
		GamesPerMatch:   cfg.GamesPerMatch,
		Seed:            cfg.Seed,
		Workers:         cfg.Workers,
		DecisionTimeout: cfg.DecisionTimeout,
		Logger:          log,
	}
	if !cfg.Quiet {
		fmt.Fprintf(stdout, "Round robin: %d bots, %d hands per pairing, seed %d\n", len(entrants), cfg.GamesPerMatch, cfg.Seed)
		step := max(total/10, 1)
		tc.OnHand = func(tournament.HandResult) {
			if n := played.Add(1); n%step == 0 || n == total {
				fmt.Fprintf(stderr, "  %d/%d hands\n", n, total)
			}
		}
	}

	res, err := tournament.RunRoundRobin(ctx, entrants, tc)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, tournament.FormatRankings(res.Rankings))
	if !cfg.NoHeadToHead {
		fmt.Fprintln(stdout, tournament.FormatHeadToHead(res.Rankings))
	}
	fmt.Fprintln(stdout, tournament.FormatElo(res.Elo))
	if s := tournament.FormatErrors(res.Matches); s != "" {
		fmt.Fprintln(stdout, s)
	}
	return nil
}

func runPlay(ctx context.Context, reg *bot.Registry, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(stderr)
	commonFlags(fs, &cfg)
	p0 := fs.String("p0", bot.BasicName, "bot in seat 0")
	p1 := fs.String("p1", bot.IntermediateName, "bot in seat 1")
	dealer := fs.Uint("dealer", 0, "dealing seat")
	if err := fs.Parse(args); err != nil {
		return err
	}
	log, err := setup(&cfg, stderr)
	if err != nil {
		return err
	}

	var players [engine.NumPlayers]game.Player
	for seat, name := range []string{*p0, *p1} {
		if players[seat], err = reg.New(name, cfg.Seed+uint64(seat)+1); err != nil {
			return err
		}
	}
	t := &transcript{w: stdout, players: players}
	h, err := game.NewHand(players, cfg.Seed, uint8(*dealer), game.Options{
		DecisionTimeout: cfg.DecisionTimeout,
		Logger:          log,
		OnMove:          t.move,
	})
	if err != nil {
		return err
	}
	t.start(h)
	res, err := h.Play(ctx)
	if err != nil {
		return err
	}
	t.end(h, res)
	return nil
}

// transcript prints a hand as it is played.
type transcript struct {
	w       io.Writer
	players [engine.NumPlayers]game.Player
}

func (t *transcript) start(h *game.Hand) {
	st := h.State()
	line := strings.Repeat("=", 50)
	fmt.Fprintln(t.w, line)
	fmt.Fprintf(t.w, "  %s vs %s\n", t.players[0].Name(), t.players[1].Name())
	fmt.Fprintf(t.w, "  Dealer: %s  Seed: %d\n", t.players[st.Dealer].Name(), h.Seed)
	fmt.Fprintln(t.w, line)
	fmt.Fprintf(t.w, "  Discard pile: %s\n\n", st.DiscardTop())
}

func (t *transcript) move(e game.MoveEvent) {
	switch e.Decision {
	case game.DecisionDraw:
		fmt.Fprintf(t.w, "Turn %d: %s\n  Drew from %s: %s\n", e.Turn+1, e.Player, e.Source, e.Card)
	case game.DecisionDiscard:
		fmt.Fprintf(t.w, "  Discarded: %s  (deadwood now: %d)\n", e.Card, e.Deadwood)
	case game.DecisionKnock:
		switch {
		case !e.Knock:
			fmt.Fprintln(t.w, "  Keeps playing")
		case e.Deadwood == 0:
			fmt.Fprintln(t.w, "  ** GIN! **")
		default:
			fmt.Fprintf(t.w, "  ** KNOCK! (deadwood: %d) **\n", e.Deadwood)
		}
	}
}

func (t *transcript) end(h *game.Hand, res engine.GameResult) {
	line := strings.Repeat("=", 50)
	fmt.Fprintf(t.w, "\n%s\n  Result: %s\n", line, res.Reason)
	if res.IsDraw() {
		fmt.Fprintln(t.w, "  No winner (draw)")
		fmt.Fprintln(t.w, line)
		return
	}
	fmt.Fprintf(t.w, "  Winner: %s\n  Score:  %d points\n", t.players[res.Winner].Name(), res.Points)
	if res.Reason == engine.ReasonForfeit {
		fmt.Fprintf(t.w, "  Fault:  %v\n", res.Fault)
	}
	for _, l := range res.Layoffs {
		fmt.Fprintf(t.w, "  Laid off: %s\n", l.Card)
	}
	st := h.State()
	for seat, p := range t.players {
		hand := st.HandOf(uint8(seat))
		melds, unmelded := engine.BestMelds(hand)
		fmt.Fprintf(t.w, "\n  %s's hand (deadwood: %d):\n", p.Name(), engine.DeadwoodValue(unmelded))
		for _, m := range melds {
			fmt.Fprintf(t.w, "    Meld: %s\n", m)
		}
		if len(unmelded) > 0 {
			fmt.Fprintf(t.w, "    Unmelded: %s\n", joinCards(unmelded))
		}
	}
	fmt.Fprintln(t.w, line)
}

func joinCards(cards []engine.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func runValidate(ctx context.Context, reg *bot.Registry, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	commonFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("validate: want exactly one bot name, got %d", fs.NArg())
	}
	log, err := setup(&cfg, stderr)
	if err != nil {
		return err
	}
	name := fs.Arg(0)
	f, err := reg.Lookup(name)
	if err != nil {
		return err
	}

	started := time.Now()
	r := validate.Validate(ctx, name, f, validate.Options{
		Seed:            cfg.Seed,
		DecisionTimeout: cfg.DecisionTimeout,
		Logger:          log,
	})
	fmt.Fprintln(stdout, validate.FormatReport(r))
	log.WithField("elapsed", time.Since(started).Round(time.Millisecond).String()).Debug("validate done")
	if !r.Passed() {
		return errValidationFailed
	}
	return nil
}
