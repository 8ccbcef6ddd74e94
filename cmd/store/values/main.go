package main

import (
	"context"
	"log"

	"configbot/store"
	"configbot/store/storecmd"
)

func main() {
	if err := storecmd.Run(context.Background(), store.Values); err != nil {
		log.Fatalf("VALUES_STORE: %s", err)
	}
}
