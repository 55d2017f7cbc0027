package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/metrics"
)

func main() {
	dir := flag.String("dir", getenv("RUN_DIR", "."), "directory holding <run>.csv")
	run := flag.String("name", getenv("RUN_NAME", "ppg"), "run name")
	flag.Parse()

	rows, err := metrics.ReadRecord(filepath.Join(*dir, *run+".csv"))
	if err != nil {
		log.Fatal(err)
	}

	out := filepath.Join(*dir, *run+".html")
	f, err := os.Create(out)
	if err != nil {
		log.Fatal(err)
	}
	if err := metrics.Plot(f, *run, rows); err != nil {
		f.Close()
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d episodes to %s", len(rows), out)
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
