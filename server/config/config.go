// Package config loads runtime settings from the environment and difficulty
// profile overrides from the user's XDG config directory.
package config

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/saint2706/Games-sub001/server/strategy"
)

var profilesFile = "games-ai/profiles.json"

type InvalidConfig struct {
	Path string
	err  error
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error in %s: %v", e.Path, e.err)
}

func (e *InvalidConfig) Unwrap() error { return e.err }

type profilesDoc struct {
	Profiles []json.RawMessage `json:"profiles"`
}

// LoadProfiles returns the builtin registry with any overrides from
// PROFILES_FILE or, failing that, $XDG_CONFIG_HOME/games-ai/profiles.json.
// A missing file is not an error.
func LoadProfiles() (*strategy.Registry, string, error) {
	reg := strategy.NewRegistry()
	path := os.Getenv("PROFILES_FILE")
	if path == "" {
		p, err := xdg.SearchConfigFile(profilesFile)
		if err != nil {
			return reg, "", nil
		}
		path = p
	}
	if err := ReadProfiles(path, reg); err != nil {
		return nil, path, err
	}
	return reg, path, nil
}

// ReadProfiles merges the profiles in path into reg. An entry naming an
// existing profile only overrides the fields it sets.
func ReadProfiles(path string, reg *strategy.Registry) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc profilesDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return &InvalidConfig{Path: path, err: err}
	}
	for i, raw := range doc.Profiles {
		var head struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return &InvalidConfig{Path: path, err: fmt.Errorf("profile %d: %w", i, err)}
		}
		p, err := reg.Get(head.Name)
		if err != nil {
			p = strategy.Profile{}
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return &InvalidConfig{Path: path, err: fmt.Errorf("profile %q: %w", head.Name, err)}
		}
		if err := reg.Merge(p); err != nil {
			return &InvalidConfig{Path: path, err: err}
		}
	}
	return nil
}

// SaveProfiles writes every profile in reg to the XDG config location and
// returns the path written.
func SaveProfiles(reg *strategy.Registry) (string, error) {
	path, err := xdg.ConfigFile(profilesFile)
	if err != nil {
		return "", err
	}
	return path, WriteProfiles(path, reg)
}

func WriteProfiles(path string, reg *strategy.Registry) error {
	all := reg.All()
	doc := struct {
		Profiles []strategy.Profile `json:"profiles"`
	}{all}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o664)
}

//
// ===== env =====
//

func MustEnv(keys ...string) {
	for _, k := range keys {
		if os.Getenv(k) == "" {
			log.Fatalf("Missing required env var %s. Put it in .env (dev) or set it on the host (prod).", k)
		}
	}
}

func Getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func AtoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func AsBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// Settings is everything main reads from the environment.
type Settings struct {
	Port        string
	DatabaseURL string
	AutoMigrate bool

	DuelGame   string // nim | tictactoe | connect4 | holdem
	DuelGames  int
	ProfileA   string
	ProfileB   string
	DeckSeed   uint64
	EloStart   float64
	EloK       float64
	SB, BB     int
	StartStack int
	MCWorkers  int
}

func Load() Settings {
	return Settings{
		Port:        Getenv("PORT", "8080"),
		DatabaseURL: Getenv("DATABASE_URL", ""),
		AutoMigrate: AsBool(os.Getenv("AUTO_MIGRATE")),
		DuelGame:    strings.ToLower(Getenv("DUEL_GAME", "nim")),
		DuelGames:   AtoiDef(os.Getenv("DUEL_GAMES"), 10),
		ProfileA:    Getenv("PROFILE_A", "expert"),
		ProfileB:    Getenv("PROFILE_B", "medium"),
		DeckSeed:    deckSeedFromEnvOrCrypto(),
		EloStart:    float64(AtoiDef(os.Getenv("ELO_START"), 1500)),
		EloK:        float64(AtoiDef(os.Getenv("ELO_K"), 24)),
		SB:          AtoiDef(os.Getenv("SB"), 50),
		BB:          AtoiDef(os.Getenv("BB"), 100),
		StartStack:  AtoiDef(os.Getenv("START_STACK"), 10000),
		MCWorkers:   AtoiDef(os.Getenv("MC_WORKERS"), 1),
	}
}

func secureBaseSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint64(b[:]) ^ uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())
	}
	return uint64(time.Now().UnixNano()) ^ 0xA5A5A5A5A5A5A5A5
}

func deckSeedFromEnvOrCrypto() uint64 {
	if s := os.Getenv("DECK_SEED"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return uint64(v)
		}
	}
	return secureBaseSeed()
}
