package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maxvaer/dirbust/internal/config"
	"github.com/maxvaer/dirbust/pkg/version"
)

var (
	opts       = config.Defaults()
	configFile string
)

var rootCmd = &cobra.Command{
	Use:     "dirbust",
	Short:   "Concurrent web content discovery",
	Version: version.Version,
	Long: `dirbust probes a web server for every path in a wordlist, optionally
across several file extensions, and reports which paths exist based on
the HTTP status codes the server returns.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := applyConfigFile(cmd.Flags(), configFile); err != nil {
				return err
			}
		}
		setupLogging()
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Don't print the banner and other noise")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.BoolVar(&opts.NoError, "no-error", false, "Don't display errors")
	f.BoolVarP(&opts.NoProgress, "no-progress", "z", false, "Don't display progress")
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file to write results to (defaults to stdout)")
	f.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, csv")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose output (retries, throttling)")
	f.StringVar(&configFile, "config", "", "YAML file with flag values (explicit flags win)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func setupLogging() {
	if opts.NoColor {
		color.NoColor = true
	}
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    opts.NoColor,
	})
	switch {
	case opts.Verbose:
		log.SetLevel(log.DebugLevel)
	case opts.Quiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// applyConfigFile sets every flag named in the YAML file that was not given
// on the command line.
func applyConfigFile(flags *pflag.FlagSet, path string) error {
	values, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	for _, v := range values {
		f := flags.Lookup(v.Flag)
		if f == nil {
			return fmt.Errorf("config %s: unknown flag %q", path, v.Flag)
		}
		if f.Changed {
			continue
		}
		for _, val := range v.Values {
			if err := flags.Set(v.Flag, val); err != nil {
				return fmt.Errorf("config %s: %s: %w", path, v.Flag, err)
			}
		}
	}
	return nil
}

// intSliceValue implements pflag.Value for comma-separated int slices.
// Repeated flags accumulate.
type intSliceValue struct {
	target *[]int
	what   string
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.what, p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

type flagGroup struct {
	title string
	flags []string
}

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}
	return "   " + left + right
}

// groupedHelp prints flags in titled groups instead of cobra's flat list.
func groupedHelp(groups []flagGroup) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		if cmd.Example != "" {
			fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		}
		for _, g := range groups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	}
}
