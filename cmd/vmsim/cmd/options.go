package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/frametable"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/mem/vm/swap"
	"github.com/spf13/pflag"
)

var errBadOption = errors.New("bad option")

// options holds the settings of an MMU built by the command line.
type options struct {
	NumFrames    int
	TLB          bool
	TLBIndexBits uint64
	TLBLines     int
	Policy       string
	Swap         string
	Seed         int64
}

func defaultOptions() options {
	cfg := vm.DefaultConfig()

	return options{
		NumFrames:    cfg.NumFrames,
		TLB:          true,
		TLBIndexBits: cfg.TLBIndexBits,
		TLBLines:     cfg.TLBLinesPerSet,
		Policy:       "lru",
		Swap:         "mem",
		Seed:         1,
	}
}

type lookupFunc func(key string) (string, bool)

// envLookup returns a lookup that prefers the process environment over the
// entries of the env file. A missing env file is not an error.
func envLookup(envFile string) (lookupFunc, error) {
	fileEnv := map[string]string{}

	if envFile != "" {
		var err error

		fileEnv, err = godotenv.Read(envFile)
		if errors.Is(err, os.ErrNotExist) {
			fileEnv = map[string]string{}
		} else if err != nil {
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := fileEnv[key]

		return v, ok
	}, nil
}

func optionsFromEnv(lookup lookupFunc) (options, error) {
	o := defaultOptions()

	parsers := []struct {
		key   string
		parse func(string) error
	}{
		{"VMSIM_NUM_FRAMES", intParser(&o.NumFrames)},
		{"VMSIM_TLB", boolParser(&o.TLB)},
		{"VMSIM_TLB_INDEX_BITS", uintParser(&o.TLBIndexBits)},
		{"VMSIM_TLB_LINES", intParser(&o.TLBLines)},
		{"VMSIM_POLICY", stringParser(&o.Policy)},
		{"VMSIM_SWAP", stringParser(&o.Swap)},
		{"VMSIM_SEED", int64Parser(&o.Seed)},
	}

	for _, p := range parsers {
		value, ok := lookup(p.key)
		if !ok {
			continue
		}

		err := p.parse(strings.TrimSpace(value))
		if err != nil {
			return o, fmt.Errorf("%w: %s: %v", errBadOption, p.key, err)
		}
	}

	return o, nil
}

func intParser(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		*dst = v

		return err
	}
}

func int64Parser(dst *int64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseInt(s, 0, 64)
		*dst = v

		return err
	}
}

func uintParser(dst *uint64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseUint(s, 0, 64)
		*dst = v

		return err
	}
}

func boolParser(dst *bool) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseBool(s)
		*dst = v

		return err
	}
}

func stringParser(dst *string) func(string) error {
	return func(s string) error {
		*dst = strings.ToLower(s)
		return nil
	}
}

// addFlags registers the flags that override the environment.
func addFlags(flags *pflag.FlagSet) {
	d := defaultOptions()

	flags.Int("frames", d.NumFrames, "The number of physical frames.")
	flags.Bool("tlb", d.TLB, "Translate through a TLB.")
	flags.Uint64("tlb-index-bits", d.TLBIndexBits,
		"The number of TLB sets, as a power of 2.")
	flags.Int("tlb-lines", d.TLBLines, "The number of lines in a TLB set.")
	flags.String("policy", d.Policy,
		"The eviction policy, lru or maxtime.")
	flags.String("swap", d.Swap,
		"The swap store: mem, file:<dir>, or sqlite:<file>.")
	flags.Int64("seed", d.Seed, "The seed of the TLB replacement.")
}

// applyFlags overrides the options with the flags set on the command line.
func (o options) applyFlags(flags *pflag.FlagSet) options {
	if flags.Changed("frames") {
		o.NumFrames, _ = flags.GetInt("frames")
	}

	if flags.Changed("tlb") {
		o.TLB, _ = flags.GetBool("tlb")
	}

	if flags.Changed("tlb-index-bits") {
		o.TLBIndexBits, _ = flags.GetUint64("tlb-index-bits")
	}

	if flags.Changed("tlb-lines") {
		o.TLBLines, _ = flags.GetInt("tlb-lines")
	}

	if flags.Changed("policy") {
		policy, _ := flags.GetString("policy")
		o.Policy = strings.ToLower(policy)
	}

	if flags.Changed("swap") {
		o.Swap, _ = flags.GetString("swap")
	}

	if flags.Changed("seed") {
		o.Seed, _ = flags.GetInt64("seed")
	}

	return o
}

// config derives the address layout. The TLB tag takes the page number bits
// that the set index leaves.
func (o options) config() (vm.Config, error) {
	cfg := vm.DefaultConfig()
	cfg.NumFrames = o.NumFrames
	cfg.TLBLinesPerSet = o.TLBLines

	total := cfg.TLBIndexBits + cfg.TLBTagBits
	if o.TLBIndexBits > total {
		return cfg, fmt.Errorf("%w: TLB index bits %d exceed the %d-bit "+
			"virtual page number", errBadOption, o.TLBIndexBits, total)
	}

	cfg.TLBIndexBits = o.TLBIndexBits
	cfg.TLBTagBits = total - o.TLBIndexBits

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (o options) victimFinder() (frametable.VictimFinder, error) {
	switch o.Policy {
	case "lru":
		return frametable.NewLRUVictimFinder(), nil
	case "maxtime":
		return frametable.NewMaxTimeVictimFinder(), nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", errBadOption, o.Policy)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// swapStore opens the configured swap store. The closer releases it.
func (o options) swapStore(cfg vm.Config) (swap.Store, io.Closer, error) {
	kind, arg, _ := strings.Cut(o.Swap, ":")

	switch kind {
	case "mem":
		return swap.NewMemStore(cfg.WordsPerPage()), nopCloser{}, nil
	case "file":
		if arg == "" {
			return nil, nil, fmt.Errorf("%w: file swap needs a directory",
				errBadOption)
		}

		s, err := swap.NewFileStore(arg, cfg.WordsPerPage())
		if err != nil {
			return nil, nil, err
		}

		return s, nopCloser{}, nil
	case "sqlite":
		if arg == "" {
			return nil, nil, fmt.Errorf("%w: sqlite swap needs a file",
				errBadOption)
		}

		s, err := swap.OpenSQLiteStore(arg, cfg.WordsPerPage())
		if err != nil {
			return nil, nil, err
		}

		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown swap store %q",
			errBadOption, o.Swap)
	}
}

// buildMMU creates an MMU from the options.
func (o options) buildMMU(name string) (*mmu.Comp, io.Closer, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}

	victimFinder, err := o.victimFinder()
	if err != nil {
		return nil, nil, err
	}

	store, closer, err := o.swapStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	c := mmu.MakeBuilder().
		WithConfig(cfg).
		WithTLB(o.TLB).
		WithRandSeed(o.Seed).
		WithVictimFinder(victimFinder).
		WithSwapStore(store).
		Build(name)

	return c, closer, nil
}

// loadOptions reads the options from the env file, the environment and the
// flags, in increasing precedence.
func loadOptions(flags *pflag.FlagSet) (options, error) {
	envFile, _ := flags.GetString("env")

	lookup, err := envLookup(envFile)
	if err != nil {
		return options{}, err
	}

	o, err := optionsFromEnv(lookup)
	if err != nil {
		return o, err
	}

	return o.applyFlags(flags), nil
}
