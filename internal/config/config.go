// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvGamesPerMatch   = "GAMES_PER_MATCH"
	EnvSeed            = "SEED"
	EnvWorkers         = "WORKERS"
	EnvDecisionTimeout = "DECISION_TIMEOUT"
	EnvBots            = "BOTS"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
	EnvNoHeadToHead    = "NO_H2H"
	EnvQuiet           = "QUIET"
)

// Config holds every setting the CLI needs.
type Config struct {
	GamesPerMatch   int
	Seed            uint64 // 0 picks a random seed, see ResolveSeed
	Workers         int
	DecisionTimeout time.Duration
	Bots            []string // empty means every registered bot
	LogLevel        string
	LogFormat       string // "text" or "json"
	NoHeadToHead    bool
	Quiet           bool
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		GamesPerMatch:   100,
		Workers:         runtime.GOMAXPROCS(0),
		DecisionTimeout: 2 * time.Second,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads the given .env files (".env" when none are named) into the
// environment and then parses it. A missing file is not an error; variables
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv parses settings through getenv, falling back to Default for unset
// variables.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	var err error
	if c.GamesPerMatch, err = atoiDef(getenv(EnvGamesPerMatch), c.GamesPerMatch); err != nil {
		return c, fmt.Errorf("%s: %w", EnvGamesPerMatch, err)
	}
	if c.GamesPerMatch <= 0 {
		return c, fmt.Errorf("%s: must be positive, got %d", EnvGamesPerMatch, c.GamesPerMatch)
	}
	if s := strings.TrimSpace(getenv(EnvSeed)); s != "" {
		if c.Seed, err = strconv.ParseUint(s, 0, 64); err != nil {
			return c, fmt.Errorf("%s: %w", EnvSeed, err)
		}
	}
	if c.Workers, err = atoiDef(getenv(EnvWorkers), c.Workers); err != nil {
		return c, fmt.Errorf("%s: %w", EnvWorkers, err)
	}
	if s := strings.TrimSpace(getenv(EnvDecisionTimeout)); s != "" {
		if c.DecisionTimeout, err = time.ParseDuration(s); err != nil {
			return c, fmt.Errorf("%s: %w", EnvDecisionTimeout, err)
		}
	}
	c.Bots = SplitList(getenv(EnvBots))
	c.LogLevel = getenvDef(getenv, EnvLogLevel, c.LogLevel)
	c.LogFormat = strings.ToLower(getenvDef(getenv, EnvLogFormat, c.LogFormat))
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return c, fmt.Errorf("%s: want text or json, got %q", EnvLogFormat, c.LogFormat)
	}
	c.NoHeadToHead = asBool(getenv(EnvNoHeadToHead))
	c.Quiet = asBool(getenv(EnvQuiet))
	return c, nil
}

// ResolveSeed returns c.Seed, or a fresh random seed when it is 0.
func (c Config) ResolveSeed() (uint64, error) {
	return resolveSeed(c.Seed, rand.Reader)
}

func resolveSeed(seed uint64, r io.Reader) (uint64, error) {
	for seed == 0 {
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("random seed: %w", err)
		}
		seed = binary.LittleEndian.Uint64(b[:])
	}
	return seed, nil
}

// NewLogger builds a logrus logger writing to w at the configured level and
// format.
func (c Config) NewLogger(w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

// SplitList splits a comma separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDef(getenv func(string) string, k, def string) string {
	if v := strings.TrimSpace(getenv(k)); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
