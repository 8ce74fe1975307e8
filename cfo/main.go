package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/cryptofolio/cmd"
	"github.com/google/subcommands"
)

func main() {
	// exits when invoked by the shell for completion.
	cmd.Completion(flag.CommandLine).Complete("cfo")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()

	// unknown subcommands are looked up as cfo-<name> extensions.
	if name := flag.Arg(0); name != "" && !cmd.Known(name) && name != "help" && name != "flags" && name != "commands" {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}
