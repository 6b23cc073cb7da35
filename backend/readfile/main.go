// readfile decrypts and prints stored session blobs.
//
//	DT_MASTER_KEY=... readfile -data-dir data sessions/<id>/game.json ...
//	DT_MASTER_KEY=... readfile -data-dir data -session <id>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/c2FmZQ/storage"

	"github.com/ttbt-io/diamondtracker/backend"
	"github.com/ttbt-io/diamondtracker/scoreboard"
)

var (
	dataDir   = flag.String("data-dir", "data", "Directory for session data")
	sessionID = flag.String("session", "", "Print every blob of this session")
)

// target picks the type a blob decodes into from its file name.
func target(name string) any {
	switch strings.TrimSuffix(filepath.Base(name), ".json") {
	case "meta":
		return new(backend.SessionMeta)
	case scoreboard.KeyGame:
		return new(scoreboard.GameState)
	case scoreboard.KeyLog:
		return new(scoreboard.PlayLog)
	case scoreboard.KeyTimer:
		return new(scoreboard.Timer)
	case scoreboard.KeyPitch:
		return new(scoreboard.PitchCounter)
	}
	return new(any)
}

func main() {
	flag.Parse()
	masterKey, err := backend.OpenMasterKey(*dataDir, os.Getenv(backend.MasterKeyEnv))
	if err != nil {
		log.Fatalf("Critical Security Error: %v", err)
	}
	store := storage.New(*dataDir, masterKey)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	files := flag.Args()
	if *sessionID != "" {
		dir := filepath.Join("sessions", *sessionID)
		files = append(files, filepath.Join(dir, "meta.json"))
		for _, key := range scoreboard.AllKeys {
			files = append(files, filepath.Join(dir, key+".json"))
		}
	}

	for _, arg := range files {
		arg = strings.TrimPrefix(strings.TrimPrefix(arg, *dataDir), "/")
		obj := target(arg)
		if err := store.ReadDataFile(arg, obj); err != nil {
			log.Printf("%s: %v", arg, err)
			continue
		}
		fmt.Printf("=========== %s ===========\n", arg)
		if err := enc.Encode(obj); err != nil {
			log.Printf("JSON: %s: %v", arg, err)
		}
	}
}
