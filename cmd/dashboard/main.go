// Command dashboard is a terminal front end for the weather dashboard. It
// drives the same fetch-then-annotate cycle the web UI runs: type a city name
// to search it, or one of the commands below.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/lacandula/weather-dashboard/internal/config"
	"github.com/lacandula/weather-dashboard/internal/dashboard"
	"github.com/lacandula/weather-dashboard/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	weatherClient := weather.NewClient(httpClient, cfg.WeatherAPIURL)

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:" + cfg.Port
	}
	api := dashboard.NewAPIClient(httpClient, backendURL)

	o := dashboard.New(weatherClient, api, cfg.DefaultCity)

	ctx := context.Background()
	if err := o.Start(ctx); err != nil {
		log.Printf("initial load failed: %v", err)
	}
	render(o.State().View())

	fmt.Println(`commands: <city> | note <text> | delnote <id> | history | clear | quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return
		case "note":
			if err := o.AddNote(ctx, rest); err != nil {
				fmt.Println("note not added:", err)
				continue
			}
		case "delnote":
			id, err := strconv.ParseUint(rest, 10, 32)
			if err != nil {
				fmt.Println("usage: delnote <id>")
				continue
			}
			if err := o.RemoveNote(ctx, uint(id)); err != nil {
				fmt.Println("delete failed:", err)
				continue
			}
		case "history":
			o.RefreshHistory(ctx)
		case "clear":
			o.ClearHistory(ctx)
		default:
			if err := o.ChangeCity(ctx, line); err != nil {
				// The view already carries the error banner.
				log.Printf("cycle failed: %v", err)
			}
		}

		render(o.State().View())
	}
}

func render(v dashboard.View) {
	fmt.Println(strings.Repeat("=", 40))
	if v.WeatherError != "" {
		fmt.Printf("%s: %s\n", v.City.Raw, v.WeatherError)
	} else if v.Weather != nil {
		fmt.Printf("%s  %s  %s  wind %s  [%s]\n",
			v.City.Raw, v.Weather.Temperature, v.Weather.Description, v.Weather.Wind, v.Background)
	}

	for i, day := range v.Forecast {
		fmt.Printf("  day %d: %s  %s\n", i+1, day.Temperature, day.Wind)
	}

	if len(v.Notes) > 0 {
		fmt.Println("notes:")
		for _, n := range v.Notes {
			fmt.Printf("  [%d] %s\n", n.ID, n.Note)
		}
	}
	if len(v.Photos) > 0 {
		fmt.Printf("photos: %d\n", len(v.Photos))
	}
	if len(v.History) > 0 {
		fmt.Println("recent searches:")
		for _, h := range v.History {
			fmt.Printf("  [%d] %s (%s)\n", h.ID, h.City, h.Description)
		}
	}
}
