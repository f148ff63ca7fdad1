package cli

import (
	"bytes"
	"context"
	"net"
	"os"
	"testing"

	"github.com/spf13/pflag"

	"github.com/custodia-labs/perplexity-mcp/internal/adapters/driving/mcp"
	"github.com/custodia-labs/perplexity-mcp/internal/logger"
)

// transportCalls records which transport entry point ran.
type transportCalls struct {
	stdio int
	sse   int
	addr  string
}

// setupTestCommand isolates rootCmd from the environment and the real transports.
// It returns the captured log output and the transport call record.
func setupTestCommand(t *testing.T) (*bytes.Buffer, *transportCalls) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"PERPLEXITY_API_KEY", "PERPLEXITY_MODEL", "PERPLEXITY_BASE_URL", "PERPLEXITY_TIMEOUT", "PORT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	resetFlags(rootCmd.PersistentFlags())
	resetFlags(serveCmd.Flags())

	logs := new(bytes.Buffer)
	logger.SetOutput(logs)

	calls := &transportCalls{}
	origStdio, origSSE, origTerminal := runStdio, runSSE, stdinIsTerminal
	runStdio = func(context.Context, *mcp.Server) error {
		calls.stdio++
		return nil
	}
	runSSE = func(_ context.Context, _ *mcp.Server, addr string, onReady func(net.Addr)) error {
		calls.sse++
		calls.addr = addr
		onReady(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 3001})
		return nil
	}
	stdinIsTerminal = func() bool { return false }

	t.Cleanup(func() {
		runStdio, runSSE, stdinIsTerminal = origStdio, origSSE, origTerminal
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		cfg = Config{}
	})

	return logs, calls
}

func resetFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if args == nil {
		// A nil slice makes cobra fall back to os.Args.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
