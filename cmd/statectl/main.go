package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/database"
	"github.com/thom899g/neuro-adaptive-trading-ecosystem-with-self-healing/internal/state"
)

// statectl is a small ops tool for inspecting and seeding the trading state
// without going through the HTTP service.
//
//	statectl load           print the current state document
//	statectl save < f.json  merge the JSON on stdin into the current state
func main() {
	if len(os.Args) < 2 {
		usage()
	}

	credPath := os.Getenv("STORE_CREDENTIAL_PATH")
	ctx := context.Background()
	gw := state.New(ctx, credPath, 10*time.Second)
	defer func() { _ = database.CloseShared(ctx) }()
	if !gw.Initialized() {
		log.Fatal("could not initialize the state gateway; check credentials")
	}

	switch os.Args[1] {
	case "load":
		st := gw.LoadState(ctx)
		if st == nil {
			log.Fatal("no trading state found")
		}
		out, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			log.Fatalf("encode state: %v", err)
		}
		fmt.Println(string(out))
	case "save":
		var st map[string]any
		if err := json.NewDecoder(os.Stdin).Decode(&st); err != nil {
			log.Fatalf("decode stdin: %v", err)
		}
		if !gw.SaveState(ctx, st) {
			log.Fatal("state save failed")
		}
		fmt.Printf("saved %d fields\n", len(st))
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: statectl load | statectl save < state.json")
	os.Exit(2)
}
