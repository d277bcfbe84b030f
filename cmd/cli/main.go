package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type service struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type history struct {
	Service string `json:"service"`
	History []struct {
		Date   string  `json:"date"`
		Uptime float64 `json:"uptime"`
		Status bool    `json:"status"`
	} `json:"history"`
	OverallUptime float64 `json:"overallUptime"`
}

var client = &http.Client{Timeout: 10 * time.Second}

// Without arguments cli lists services with their current status; with a
// service id it prints that service's down days and overall uptime.
func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:3000"
	}
	api = strings.TrimRight(api, "/")

	var err error
	if len(os.Args) > 1 {
		err = showHistory(api, os.Args[1])
	} else {
		err = listServices(api)
	}
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
}

func listServices(api string) error {
	var svcs []service
	if err := getJSON(api+"/api/services", &svcs); err != nil {
		return err
	}
	var st map[string]*bool
	if err := getJSON(api+"/api/status", &st); err != nil {
		return err
	}
	for _, s := range svcs {
		state := "unknown"
		if up := st[s.ID]; up != nil {
			state = "down"
			if *up {
				state = "up"
			}
		}
		fmt.Printf("%-20s %-30s %s\n", s.ID, s.Name, state)
	}
	return nil
}

func showHistory(api, id string) error {
	var h history
	if err := getJSON(api+"/api/history/"+id, &h); err != nil {
		return err
	}
	fmt.Printf("%s: %.2f%% over %d days\n", h.Service, h.OverallUptime, len(h.History))
	for _, d := range h.History {
		if !d.Status {
			fmt.Printf("  %s  %6.2f%%\n", d.Date, d.Uptime)
		}
	}
	return nil
}

func getJSON(url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
