package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/exp/rand"

	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/docking"
	"github.com/XXXXXXX-AI-for-Space-XXXXXXX/auto-iss/internal/env"
)

const defaultPort = "5555"

func main() {
	flag.Parse()

	port := getenv("PORT", defaultPort)
	seed := getenvInt64("SEED", time.Now().UnixNano())

	sim := docking.NewEnv(rand.New(rand.NewSource(uint64(seed))))

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           env.NewHandler(sim),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("docking simulator listening on :%s (seed=%d)", port, seed)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
