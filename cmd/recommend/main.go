// Package main provides an interactive console for the recommender.
//
// It reads a title, prints the closest similar anime, and then cycles through
// alternatives on request:
//
//	recommend --catalog anime.csv
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/animerec/animerec-server/internal/catalog"
	"github.com/animerec/animerec-server/internal/config"
	"github.com/animerec/animerec-server/internal/di/providers"
	"github.com/animerec/animerec-server/internal/logger"
	"github.com/animerec/animerec-server/internal/service"
)

const help = `Type a title to search. Commands start with a colon:
  :another       show another recommendation for the current title
  :another <t>   show a recommendation for another title
  :reset         start over
  :help          show this message
  :quit          exit`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	source, err := providers.NewCatalogSource(cfg.Catalog, log)
	if err != nil {
		log.Fatal("Invalid catalog configuration", "error", err)
	}

	rec, err := providers.NewRecommender(context.Background(), cfg, source, log)
	if err != nil {
		log.Fatal("Failed to load catalog", "source", source.Describe(), "error", err)
	}

	if err := run(os.Stdin, os.Stdout, rec); err != nil {
		log.Fatal("Console error", "error", err)
	}
}

// run drives one console session until quit or end of input.
func run(in io.Reader, out io.Writer, rec *service.Recommender) error {
	sess := service.NewSession(nil)
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, help)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		var (
			outcome service.Outcome
			err     error
		)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ":") {
			outcome, err = sess.Submit(rec, line)
		} else {
			cmd, arg, _ := strings.Cut(line[1:], " ")
			switch strings.ToLower(cmd) {
			case "quit", "exit", "q":
				return nil
			case "help":
				fmt.Fprintln(out, help)
				continue
			case "reset":
				sess.Reset()
				fmt.Fprintln(out, "Session cleared.")
				continue
			case "another", "a":
				outcome, err = sess.Another(rec, arg)
			default:
				fmt.Fprintf(out, "Unknown command %q. Type :help for commands.\n", line)
				continue
			}
		}

		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		printOutcome(out, rec, outcome)
	}
}

func printOutcome(out io.Writer, rec *service.Recommender, o service.Outcome) {
	switch o.Status {
	case service.StatusRecommended:
		fmt.Fprintf(out, "Because you liked %s, try: %s\n", titleOf(rec, o.Source), titleOf(rec, o.Item))
	case service.StatusNotFound:
		fmt.Fprintln(out, "No anime with that title.")
	case service.StatusNoRecommendation:
		fmt.Fprintf(out, "No recommendation for %s.\n", titleOf(rec, o.Source))
	case service.StatusNoMoreRecommendations:
		fmt.Fprintf(out, "No more recommendations for %s.\n", titleOf(rec, o.Source))
	}
}

func titleOf(rec *service.Recommender, id catalog.ID) string {
	item, err := rec.Item(id)
	if err != nil {
		return string(id)
	}
	return item.Title
}
