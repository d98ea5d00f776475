package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session and run several commands",
		Long: `Start an interactive session where you can run several commands in a row.
The session keeps running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\nAyuuto interactive session")
			fmt.Fprintln(out, "Type 'help' for available commands, 'exit' or 'quit' to leave")

			commands := make(map[string]*cobra.Command)
			for _, sub := range cmd.Parent().Commands() {
				switch sub.Name() {
				case "interactive", "completion", "help":
				default:
					commands[sub.Name()] = sub
				}
			}

			for {
				fmt.Fprint(out, "ayuuto> ")

				line, err := app.In.ReadString('\n')
				if err != nil && line == "" {
					if errors.Is(err, io.EOF) {
						fmt.Fprintln(out)
						return nil
					}
					return fmt.Errorf("error reading input: %w", err)
				}

				parts, err := parseCommandLine(strings.TrimSpace(line))
				if err != nil {
					fmt.Fprintf(out, "❌ Error parsing command: %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}

				name, cmdArgs := parts[0], parts[1:]
				switch name {
				case "exit", "quit":
					fmt.Fprintln(out, "Nabad gelyo!")
					return nil
				case "help":
					printInteractiveHelp(out, commands)
					continue
				}

				target, ok := commands[name]
				if !ok {
					fmt.Fprintf(out, "❌ Unknown command: %s (type 'help' for available commands)\n\n", name)
					continue
				}

				if err := runInteractive(target, cmdArgs); err != nil {
					HandleError(app, out, err)
					fmt.Fprintln(out)
				}
			}
		},
	}
}

// runInteractive runs a command's RunE directly so PersistentPreRunE does
// not rebuild the app for every line
func runInteractive(target *cobra.Command, args []string) error {
	target.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		if sv, ok := flag.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
			return
		}
		flag.Value.Set(flag.DefValue)
	})

	if err := target.ParseFlags(args); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}
	if err := target.ValidateRequiredFlags(); err != nil {
		return err
	}

	args = target.Flags().Args()
	if target.Args != nil {
		if err := target.Args(target, args); err != nil {
			return err
		}
	}

	if target.RunE != nil {
		return target.RunE(target, args)
	}
	if target.Run != nil {
		target.Run(target, args)
	}
	return nil
}

func printInteractiveHelp(out io.Writer, commands map[string]*cobra.Command) {
	fmt.Fprintln(out, "\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(out, "  %-42s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Fprintf(out, "\n  %-42s %s\n", "help", "Show this help message")
	fmt.Fprintf(out, "  %-42s %s\n\n", "exit, quit", "Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting single
// and double quotes
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune
	started := false

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
			started = true
		case unicode.IsSpace(r):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}
