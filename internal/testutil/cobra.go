package testutil

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Execute runs the command tree rooted at c with args and returns what it wrote to stdout.
// Stdin is read from in, or is empty when in is nil. Every flag of the tree is reset to its
// default afterwards so consecutive executions do not leak values into each other.
func Execute(t *testing.T, c *cobra.Command, in io.Reader, args ...string) (string, error) {
	t.Helper()
	defer resetFlags(c)

	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	if in == nil {
		in = strings.NewReader("")
	}
	c.SetIn(in)
	c.SetArgs(args)

	err := c.Execute()
	return strings.TrimSpace(out.String()), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
