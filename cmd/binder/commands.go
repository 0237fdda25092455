package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xraph/binder"
	"github.com/xraph/binder/internal/config"
	binderrors "github.com/xraph/binder/internal/errors"
	"github.com/xraph/binder/internal/profile"
	"github.com/xraph/binder/internal/spec"
)

// Exit codes.
const (
	exitFailure       = 1
	exitConfiguration = 2
)

type options struct {
	configPath string
	bindings   string
	profiles   string
	envFiles   []string
	noColor    bool
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "binder",
		Short: "Validate and inspect binding specs",
		Long: `binder loads a binding spec file, registers every binding against
declaration-only constructors and reports how each type and interface
resolves under the active profiles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			configureColors(opts.noColor)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default: nearest .binder.yaml)")
	flags.StringVarP(&opts.bindings, "bindings", "b", "", "binding spec file, overrides the config")
	flags.StringVarP(&opts.profiles, "profiles", "p", "", "comma-separated active profiles, overrides the config")
	flags.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "env files loaded before the config")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newCheckCommand(opts),
		newInspectCommand(opts),
		newVersionCommand(),
	)
	return root
}

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Resolve every binding and report failures",
		Long: `Resolve every binding and every interface in the bindings file. Cycles,
ambiguous primaries, missing bindings and implementations excluded by the
active profiles are reported; the command fails if any resolution fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer c.Close()

			rep := check(cmd.Context(), c)
			rep.write(cmd.OutOrStdout())
			return rep.err()
		},
	}
}

func newInspectCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show bindings and interface selections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer c.Close()

			return c.WriteSnapshot(cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write the snapshot as JSON")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "binder "+version)
			fmt.Fprintln(out, "Commit: "+commit)
			fmt.Fprintln(out, "Built: "+buildDate)
		},
	}
}

func loadConfig(opts *options) (*binder.Config, error) {
	path := opts.configPath
	if path == "" {
		// no config file is fine when --bindings is given
		if found, err := config.Find("."); err == nil {
			path = found
		}
	}

	cfg, err := config.Load(path, opts.envFiles...)
	if err != nil {
		return nil, err
	}
	if opts.bindings != "" {
		cfg.Bindings = opts.bindings
	}
	if opts.profiles != "" {
		cfg.Profiles = profile.Parse(opts.profiles).Names()
	}
	if cfg.Bindings == "" {
		return nil, binderrors.ErrConfigError("bindings", "no binding spec file configured", nil)
	}
	return cfg, nil
}

// open builds a Container whose constructors are the dependsOn
// declarations of the bindings file. Type names need no Go types.
func open(ctx context.Context, opts *options) (*binder.Container, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	specs, err := spec.LoadAll(ctx, spec.NewFileSource(cfg.Bindings))
	if err != nil {
		return nil, err
	}
	catalog := spec.OpenCatalog()
	declared, err := spec.DeclaredInstantiator(catalog, specs)
	if err != nil {
		return nil, binderrors.ErrConfigError(cfg.Bindings, "invalid dependency", err)
	}
	return binder.NewContainer(cfg, catalog, binder.WithInstantiator(declared))
}

type result struct {
	subject string
	detail  string
	err     error
}

type report struct {
	profiles []string
	results  []result
}

func check(ctx context.Context, c *binder.Container) *report {
	rep := &report{profiles: c.Profiles().Names()}

	// session and request scoped bindings need an active scope
	ctx = binder.WithRequest(binder.WithSession(ctx, "check"), "check")

	for _, b := range c.Bindings() {
		var err error
		if b.Name != "" {
			_, err = c.ResolveNamedContext(ctx, b.Key.Type, b.Name)
		} else {
			_, err = c.ResolveContext(ctx, b.Key.Type)
		}
		rep.results = append(rep.results, result{
			subject: b.Key.String(),
			detail:  b.Scope,
			err:     err,
		})
	}

	for _, iface := range c.Interfaces() {
		res := result{subject: iface.String()}
		if sel, err := c.Explain(iface); err != nil {
			res.err = err
		} else {
			res.detail = "-> " + sel.Chosen.Implementation.String() + " (" + sel.Reason + ")"
			_, res.err = c.ResolveContext(ctx, iface)
		}
		rep.results = append(rep.results, res)
	}
	return rep
}

func (r *report) write(w io.Writer) {
	profiles := "none"
	if len(r.profiles) > 0 {
		profiles = fmt.Sprint(r.profiles)
	}
	fmt.Fprintf(w, "%s %s\n", bold("Active profiles:"), cyan(profiles))

	for _, res := range r.results {
		if res.err == nil {
			fmt.Fprintf(w, "  %s %s %s\n", green("✓"), res.subject, gray(res.detail))
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", red("✗"), res.subject, yellow(binder.ErrorCode(res.err)))
		fmt.Fprintf(w, "      %s\n", res.err)
	}

	failed := r.failed()
	if failed == 0 {
		fmt.Fprintf(w, "%s %d checks passed\n", boldGood("OK"), len(r.results))
		return
	}
	fmt.Fprintf(w, "%s %d of %d checks failed\n", boldRed("FAIL"), failed, len(r.results))
}

func (r *report) failed() int {
	n := 0
	for _, res := range r.results {
		if res.err != nil {
			n++
		}
	}
	return n
}

// err returns the first failure, wrapped so the exit code reflects whether
// it is a configuration problem.
func (r *report) err() error {
	for _, res := range r.results {
		if res.err != nil {
			return &checkError{failed: r.failed(), total: len(r.results), first: res.err}
		}
	}
	return nil
}

type checkError struct {
	failed, total int
	first         error
}

func (e *checkError) Error() string {
	return fmt.Sprintf("%d of %d checks failed: %v", e.failed, e.total, e.first)
}

func (e *checkError) Unwrap() error { return e.first }

func exitCode(err error) int {
	if binder.IsConfigurationError(err) {
		return exitConfiguration
	}
	return exitFailure
}
