// Command luxemog rewrites luxem documents with declarative pattern rules.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Rendaw/luxemog/internal/cli"
)

func main() {
	// Missing .env files are fine
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := cli.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "luxemog [flags] TRANSFORMS SOURCE...",
		Short: "Rewrite luxem documents with declarative pattern rules",
		Long: `luxemog scans each SOURCE document for subtrees matching the from
patterns in the TRANSFORMS file and replaces them with trees built from the
corresponding to templates. SOURCE is a filename, a glob such as
'**/*.luxem', or '-' for stdin.`,
		Example: `  luxemog rules.luxem input.luxem
  luxemog --reverse --out result.luxem rules.luxem input.luxem
  luxemog --diff rules.luxem 'configs/**/*.luxem'`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.TransformsPath = args[0]
			cfg.Sources = args[1:]
			cfg.ApplyEnv()
			return cli.NewRunner(cfg).Run()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.OutPath, "out", "o", "", "Write the result to FILE rather than stdout. If '-', use stdout.")
	flags.BoolVarP(&cfg.Reverse, "reverse", "r", false, "Reverse 'to' and 'from' patterns.")
	flags.BoolVarP(&cfg.Minimize, "minimize", "m", false, "Don't insert whitespace to prettify output.")
	flags.BoolVarP(&cfg.UseSpaces, "use-spaces", "s", false, "Use spaces instead of tabs to prettify output.")
	flags.IntVarP(&cfg.IndentCount, "indent-count", "i", 1, "Use COUNT spaces or tabs to indent pretty output.")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Write diagnostic messages to stderr.")
	flags.BoolVarP(&cfg.ShowDiff, "diff", "D", false, "Print a unified diff instead of writing results.")
	flags.StringVar(&cfg.HistoryDSN, "history", "", "Record runs to this SQLite path or libsql URL (default $LUXEMOG_DB).")
	flags.BoolVar(&cfg.Debug, "debug", false, "Enable history store query logging.")

	return cmd
}
