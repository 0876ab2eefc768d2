package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Non-secret config keys echoed at startup. Signing keys stay out of logs.
var printedConfigKeys = []string{
	"STELLAR_NETWORK", "PRICE_FEED_URL", "CONTRACT_API_URL", "PROJECTS_FILE",
	"EVM_RPC_URL", "EVM_CHAIN_ID", "POLYGON_RPC_URL", "POLYGON_CHAIN_ID",
	"EVM_RECIPIENT_ADDRESS", "DEMO_MODE", "WORKER_IDS", "WATCHED_CAMPAIGN_IDS",
	"MIN_BALANCE_ALERT",
}

func main() {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("No .env file found, reading config from environment")
	}

	fmt.Println("=========Config============")
	for _, key := range printedConfigKeys {
		fmt.Println(key + ": " + os.Getenv(key))
	}
	fmt.Println("=========End============")

	runtime.GOMAXPROCS(runtime.NumCPU())
	s := NewServer(workerIDsFromEnv())

	s.Run()
	for range s.workers {
		<-s.finish
	}
	fmt.Println("Server stopped gracefully!")
}

func workerIDsFromEnv() []int {
	raw := os.Getenv("WORKER_IDS")
	if raw == "" {
		return []int{1, 2, 3, 4}
	}
	ids := []int{}
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			panic("Invalid WORKER_IDS entry: " + part)
		}
		ids = append(ids, id)
	}
	return ids
}
