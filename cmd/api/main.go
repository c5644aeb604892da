package main

import (
	"flag"
	"log"
	"strings"

	"github.com/macanepa/client-side-voting-encryption/api"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	storagePath := flag.String("storage", "ballot_data", "ballot storage directory")
	candidates := flag.String("candidates", "alice,bob,carol", "comma-separated candidate names")
	keyBits := flag.Int("keybits", 0, "Paillier key size in bits (0 = default)")
	flag.Parse()

	server, err := api.NewServer(api.Config{
		StoragePath: *storagePath,
		Candidates:  strings.Split(*candidates, ","),
		KeyBits:     *keyBits,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Start(*addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
