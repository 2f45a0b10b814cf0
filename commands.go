package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/bcdannyboy/stocsim/config"
	"github.com/bcdannyboy/stocsim/models"
	"github.com/bcdannyboy/stocsim/output"
	"github.com/bcdannyboy/stocsim/probability"
	"github.com/bcdannyboy/stocsim/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"golang.org/x/exp/rand"
)

// legacyFlags maps the option names of the legacy scripts to long flags.
var legacyFlags = map[string]string{
	"T":                  "maturity",
	"dt":                 "timestep",
	"N":                  "paths",
	"nbPaths":            "paths",
	"gv":                 "vol",
	"gd":                 "drift",
	"gi":                 "init",
	"pj":                 "intensity",
	"intensityJumpEvent": "intensity",
	"pu":                 "unit-jump",
	"unitJumpSize":       "unit-jump",
	"ps":                 "jump-mean",
	"intensityJumpSize":  "jump-mean",
	"of":                 "out",
	"outFile":            "out",
}

// legacyBoolFlags took an explicit value in the legacy scripts (--pu True).
var legacyBoolFlags = map[string]bool{
	"--pu":           true,
	"--unitJumpSize": true,
	"--unit-jump":    true,
}

// legacyArgs joins a bool flag with a following boolean word, so that
// "--pu True" parses as "--pu=True" instead of leaving a positional argument.
func legacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if legacyBoolFlags[arg] && i+1 < len(args) {
			if _, err := strconv.ParseBool(args[i+1]); err == nil {
				out = append(out, arg+"="+args[i+1])
				i++
				continue
			}
		}
		out = append(out, arg)
	}
	return out
}

// execute runs the command tree on args.
func execute(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(legacyArgs(args))
	return root.ExecuteContext(ctx)
}

type simFlags struct {
	horizon   float64
	step      float64
	out       string
	format    string
	precision int
	seed      uint64
	storeDir  string

	// gbm
	paths            int
	vol              float64
	drift            float64
	init             float64
	sourceCompatible bool
	workers          int
	sequential       bool
	progress         bool

	// poisson
	intensity float64
	unitJump  bool
	jumpMean  float64
}

func newRootCmd(cfg *config.Config, log zerolog.Logger) *cobra.Command {
	f := &simFlags{}

	root := &cobra.Command{
		Use:           "stocsim",
		Short:         "Monte Carlo sample paths of geometric Brownian motion and Poisson jump processes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if long, ok := legacyFlags[name]; ok {
			name = long
		}
		return pflag.NormalizedName(name)
	})

	pf := root.PersistentFlags()
	pf.Float64Var(&f.horizon, "maturity", 1, "End time T of the simulation. The unit is up to the caller: "+
		"with T=1 and timestep=1/365 in years a step is one day, and every coefficient is per the same unit")
	pf.Float64Var(&f.step, "timestep", 1.0/365, "Timestep dt used for time discretization")
	pf.StringVarP(&f.out, "out", "o", "", "Write results to this file instead of stdout")
	pf.StringVar(&f.format, "format", string(output.FormatCSV), "Output format: csv, json or msgpack")
	pf.IntVar(&f.precision, "precision", -1, "Round output values to this many decimals, -1 keeps full precision")
	pf.Uint64Var(&f.seed, "seed", cfg.Seed, "Random seed, 0 picks one from the clock")
	pf.StringVar(&f.storeDir, "store", cfg.StoreDir, "Archive generated paths in this object store directory")

	root.AddCommand(
		newGBMCmd(cfg, log, f),
		newPoissonCmd(cfg, log, f),
		newInspectCmd(f),
		newPruneCmd(log, f),
	)
	return root
}

func newGBMCmd(cfg *config.Config, log zerolog.Logger, f *simFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gbm",
		Short: "Simulate geometric Brownian motion paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := models.SimulationParameters{
				Horizon:      f.horizon,
				Step:         f.step,
				PathCount:    f.paths,
				InitialValue: f.init,
				Volatility:   f.vol,
				Drift:        f.drift,
			}
			if f.sourceCompatible {
				p.Increment = models.SourceCompatibleIncrement
			}
			seed := resolveSeed(f.seed)
			log := log.With().Str("process", string(models.KindGBM)).Uint64("seed", seed).Logger()

			gen := models.NewGBM(cfg.Limits)
			var (
				paths models.PathSet
				err   error
			)
			if f.sequential {
				paths, err = gen.Generate(p, rand.NewSource(seed))
			} else {
				onPath, finish := newProgress(cmd.ErrOrStderr(), p.PathCount, f.progress)
				paths, err = gen.GenerateParallel(cmd.Context(), p, seed, f.workers, onPath)
				finish(err == nil)
			}
			if err != nil {
				return fmt.Errorf("failed to generate GBM paths: %w", err)
			}

			summary := probability.SummarizeTerminal(paths)
			event := log.Info().
				Int("paths", summary.Paths).
				Int("steps", paths.Steps()).
				Str("increment", p.Increment.String()).
				Float64("terminal_mean", summary.Mean).
				Float64("terminal_std", summary.StdDev).
				Float64("expected_terminal", probability.ExpectedTerminal(p)).
				Float64("realized_vol", probability.MeanRealizedVolatility(paths, p.Step))
			if v, err := probability.ValueAtRisk(probability.TerminalReturns(paths), 0.95); err == nil {
				event = event.Float64("var_95", v)
			}
			event.Msg("Generated GBM paths")

			if f.storeDir != "" {
				if err := archive(f.storeDir, fmt.Sprintf("gbm-%d", seed), paths, log); err != nil {
					return err
				}
			}
			return writeResult(cmd, f, models.NewGBMResult(p, seed, paths))
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.paths, "paths", 10, "Number of paths to simulate")
	fl.Float64Var(&f.vol, "vol", 0.2, "Volatility coefficient")
	fl.Float64Var(&f.drift, "drift", 0.05, "Drift coefficient")
	fl.Float64Var(&f.init, "init", 100.0, "Initial value of the process")
	fl.BoolVar(&f.sourceCompatible, "source-compatible", false, "Draw increments as N(0, vol) and scale by vol*sqrt(dt) again, like the legacy scripts")
	fl.IntVar(&f.workers, "workers", cfg.Workers, "Goroutines simulating paths in parallel")
	fl.BoolVar(&f.sequential, "sequential", false, "Draw every path from one shared random stream, path by path")
	fl.BoolVar(&f.progress, "progress", false, "Show a progress bar on stderr")
	return cmd
}

func newPoissonCmd(cfg *config.Config, log zerolog.Logger, f *simFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poisson",
		Short: "Simulate jump times and sizes of a Poisson process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := models.SimulationParameters{
				Horizon:      f.horizon,
				Step:         f.step,
				PathCount:    1,
				Intensity:    f.intensity,
				UnitJumpSize: f.unitJump,
				JumpSizeMean: f.jumpMean,
			}
			seed := resolveSeed(f.seed)
			log := log.With().Str("process", string(models.KindPoisson)).Uint64("seed", seed).Logger()

			gen := models.NewPoissonJump(cfg.Limits, log)
			gen.WarnThreshold = cfg.JumpWarnThreshold
			series, err := gen.Generate(p, rand.NewSource(seed))
			if err != nil {
				return fmt.Errorf("failed to generate Poisson jumps: %w", err)
			}

			log.Info().
				Int("events", series.Len()).
				Int("total_jump", series.Total()).
				Float64("empirical_intensity", probability.EmpiricalIntensity(series, p.Horizon)).
				Msg("Generated Poisson jumps")

			if f.storeDir != "" {
				counting := models.PathSet{probability.CountingPath(series, p.Horizon, p.Step)}
				if err := archive(f.storeDir, fmt.Sprintf("poisson-%d", seed), counting, log); err != nil {
					return err
				}
			}
			return writeResult(cmd, f, models.NewPoissonResult(p, seed, series))
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.intensity, "intensity", 10.0, "Poisson intensity of jump events")
	fl.BoolVar(&f.unitJump, "unit-jump", false, "Use unit jump sizes instead of Poisson distributed ones (also --unit-jump=false or --pu True)")
	fl.Float64Var(&f.jumpMean, "jump-mean", 3.0, "Average jump size")
	return cmd
}

func openStore(f *simFlags) (*store.Store, error) {
	if f.storeDir == "" {
		return nil, fmt.Errorf("no store directory, set --store or STOCSIM_STORE_DIR")
	}
	s := store.New(f.storeDir)
	if !s.Exists() {
		return nil, fmt.Errorf("%w: no store at %s", store.ErrNotFound, f.storeDir)
	}
	return s, nil
}

func newInspectCmd(f *simFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [ref-or-hash]...",
		Short: "Print archived paths from the object store, or list refs and objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				return listStore(out, s)
			}
			for _, arg := range args {
				hashes, err := s.ReadRef(arg)
				if err != nil {
					hash, rerr := s.Resolve(arg)
					if rerr != nil {
						return fmt.Errorf("%s is neither a ref nor an object: %w", arg, rerr)
					}
					hashes = []string{hash}
				}
				for _, hash := range hashes {
					if err := printObject(out, s, hash); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func listStore(out io.Writer, s *store.Store) error {
	refs, err := s.Refs()
	if err != nil {
		return err
	}
	for _, name := range refs {
		hashes, err := s.ReadRef(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ref %s\t%d objects\n", name, len(hashes))
	}

	hashes, err := s.List()
	if err != nil {
		return fmt.Errorf("failed to list objects: %w", err)
	}
	for _, hash := range hashes {
		if err := printObject(out, s, hash); err != nil {
			return err
		}
	}
	return nil
}

func printObject(out io.Writer, s *store.Store, hash string) error {
	path, err := s.GetPath(hash)
	if err != nil {
		return err
	}
	if len(path) == 0 {
		fmt.Fprintf(out, "%s\t0 points\n", hash)
		return nil
	}
	fmt.Fprintf(out, "%s\t%d points\tfirst=%g\tlast=%g\n", hash, len(path), path[0], path[len(path)-1])
	return nil
}

func newPruneCmd(log zerolog.Logger, f *simFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete archived objects that no ref points to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStore(f)
			if err != nil {
				return err
			}
			deleted, err := s.Prune()
			for _, hash := range deleted {
				fmt.Fprintln(cmd.OutOrStdout(), hash)
			}
			if err != nil {
				return fmt.Errorf("failed to prune store: %w", err)
			}
			log.Info().Str("store", f.storeDir).Int("deleted", len(deleted)).Msg("Pruned store")
			return nil
		},
	}
}

func resolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano())
}

// newProgress returns a per-path hook and a finish func that must be called
// once generation ends. Both are no-ops when disabled.
func newProgress(w io.Writer, total int, enabled bool) (func(int), func(ok bool)) {
	if !enabled {
		return nil, func(bool) {}
	}

	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(60))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("paths "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)
	return func(int) { bar.Increment() }, func(ok bool) {
		if !ok {
			bar.Abort(false)
		}
		p.Wait()
	}
}

func archive(dir, ref string, paths models.PathSet, log zerolog.Logger) error {
	s := store.New(dir)
	if err := s.Init(); err != nil {
		return err
	}

	hashes := make([]string, 0, len(paths))
	for i, path := range paths {
		hash, err := s.PutPath(path)
		if err != nil {
			return fmt.Errorf("failed to archive path %d: %w", i, err)
		}
		hashes = append(hashes, hash)
	}
	if err := s.WriteRef(ref, hashes); err != nil {
		return err
	}

	log.Info().Str("store", dir).Str("ref", ref).Int("objects", len(hashes)).Msg("Archived paths")
	return nil
}

func writeResult(cmd *cobra.Command, f *simFlags, result models.SimulationResult) error {
	format, err := output.ParseFormat(f.format)
	if err != nil {
		return err
	}
	w := output.NewWriter(format, f.precision)

	if f.out == "" {
		return w.Write(cmd.OutOrStdout(), result)
	}

	file, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := w.Write(file, result); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
