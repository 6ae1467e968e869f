// Command weather-cli prints the current weather for one location:
//
//	weather-cli <city> <state> <country>
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/i474232898/weather-lookup/internal/app"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/weather"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: weather-cli <city> <state> <country>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg := cfg.NewLogger()

	q := weather.LocationQuery{City: os.Args[1], State: os.Args[2], Country: os.Args[3]}
	snap, err := app.NewService(cfg, lg).Lookup(context.Background(), q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s (%s)\n", err, weather.Diagnostic(err))
		os.Exit(1)
	}
	printSnapshot(os.Stdout, q, snap)
}

func printSnapshot(w io.Writer, q weather.LocationQuery, s weather.WeatherSnapshot) {
	fmt.Fprintf(w, "Weather for %s\n", q)
	fmt.Fprintf(w, "  Condition:   %s\n", s.Condition)
	fmt.Fprintf(w, "  Description: %s\n", s.Description)
	fmt.Fprintf(w, "  Icon:        %s\n", s.IconCode)
	fmt.Fprintf(w, "  Temperature: %.2f °C\n", s.Temperature)
}
