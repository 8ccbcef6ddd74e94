package main

import (
	"context"
	"log"

	"configbot/store"
	"configbot/store/storecmd"
)

func main() {
	if err := storecmd.Run(context.Background(), store.Schema); err != nil {
		log.Fatalf("SCHEMA_STORE: %s", err)
	}
}
