// devmatch is the terminal client: browse candidates, answer requests and
// chat with connections against a devmatch server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"devmatch/config"
	"devmatch/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configName, logFile string

	flagSet := pflag.NewFlagSet("devmatch", pflag.ContinueOnError)
	flagSet.StringVar(&configName, "config", "config", "config file name under ./config (without .yaml)")
	flagSet.String("api-url", "", "server base URL (default from client.apiUrl)")
	flagSet.String("email", "", "login email; prompts when empty")
	flagSet.String("password", "", "login password; prompts when empty")
	flagSet.String("log-level", "", "log level (debug, info, warn, error)")
	flagSet.StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	v, err := config.LoadConfig(configName)
	if err != nil {
		return err
	}
	for key, flag := range map[string]string{
		"client.apiUrl":    "api-url",
		"client.email":     "email",
		"client.password":  "password",
		"loggerMode.level": "log-level",
	} {
		if f := flagSet.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		return err
	}

	log, closeLog, err := clientLogger(cfg, logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.shutdown()

	m := newModel(ctx, a, cfg.Client.Email, cfg.Client.Password)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// clientLogger keeps log lines off the terminal the UI draws on.
func clientLogger(cfg *config.Config, path string) (logger.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return logger.Logger{}, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}
	log, err := logger.NewLoggerTo(w, cfg)
	if err != nil {
		closeFn()
		return logger.Logger{}, nil, err
	}
	return *log, closeFn, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `devmatch: terminal client for the devmatch server.

Usage:
  devmatch [flags]

Keys:
  1 feed   2 requests   3 connections   ctrl+l logout   ctrl+c quit
  feed:        i interested, x ignore
  requests:    j/k move, a accept, r reject, R refresh
  connections: j/k move, enter chat
  chat:        enter send, ctrl+r retry failed, esc back

Flags:
`)
	flagSet.PrintDefaults()
}
