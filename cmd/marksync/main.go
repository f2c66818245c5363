package main

import (
	"log"

	"github.com/MrSnakeDoc/marksync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Fatalf("❌ marksync failed: %v", err)
	}
}
