// Package subcmd wraps flag.FlagSet with a consistent usage banner for the
// process's subcommands.
package subcmd

import (
	"flag"
	"fmt"
	"os"
)

type Subcommand struct {
	*flag.FlagSet
}

func New(name, doc string) *Subcommand {
	sc := &Subcommand{
		FlagSet: flag.NewFlagSet(name, flag.ContinueOnError),
	}
	sc.FlagSet.Usage = func() {
		fmt.Fprint(os.Stderr, "\n"+doc+"\n\n")
		fmt.Fprintf(os.Stderr, "  musicrank %s [flags]\n\n", name)
		fmt.Fprint(os.Stderr, "flags:\n")
		sc.FlagSet.PrintDefaults()
	}
	return sc
}
