// CLAUDE:SUMMARY Interactive session capture — opens a visible browser for login, snapshots cookies + localStorage to storage_state.json.
// Command sessioncap captures an authenticated browser session for later
// monitoring runs. It opens a visible browser on the login page, waits
// for the operator to finish logging in, then writes the session state
// (cookies plus localStorage) in the storage_state.json layout.
//
// Usage:
//
//	sessioncap -url https://example.com/login -out storage_state.json
//	sessioncap -url https://example.com/login -b64   # base64 to stdout
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/pagevigil/monitor"
)

func main() {
	loginURL := flag.String("url", "", "login page URL to open")
	outPath := flag.String("out", "storage_state.json", "output file for the captured session")
	b64 := flag.Bool("b64", false, "print the session as base64 to stdout instead of writing a file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if *loginURL == "" {
		fmt.Fprintln(os.Stderr, "usage: sessioncap -url <login-url> [-out <file>] [-b64]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *loginURL, *outPath, *b64); err != nil {
		logger.Error("sessioncap: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, loginURL, outPath string, b64 bool) error {
	waitForEnter := func() error {
		fmt.Fprintln(os.Stderr, "Log in in the browser window, then press Enter here to capture the session.")
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		return err
	}

	state, err := monitor.CaptureSession(ctx, loginURL, waitForEnter, logger)
	if err != nil {
		return err
	}

	if b64 {
		encoded, err := state.EncodeBase64()
		if err != nil {
			return err
		}
		fmt.Println(encoded)
		return nil
	}

	data, err := state.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	logger.Info("sessioncap: written", "path", outPath, "cookies", len(state.Cookies))
	return nil
}
