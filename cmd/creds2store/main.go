// creds2store imports venue credentials from a dotenv file into the
// encrypted secret store the daemon hydrates its environment from.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/betbot/govenue/pkg/secretstore"
)

func main() {
	var (
		inPath    = flag.String("in", ".env", "input dotenv file path")
		dbPath    = flag.String("db", getenv("GOVENUE_SECRET_DB", "data/secrets.badger"), "secret store path")
		secretKey = flag.String("key", getenv("GOVENUE_SECRET_KEY", ""), "encryption key (32 bytes hex/base64)")
		only      = flag.String("only", "", "comma-separated variable names to import; empty imports all")
	)
	flag.Parse()

	keyBytes, err := secretstore.ParseKey(*secretKey)
	if err != nil {
		fatal(err)
	}
	if keyBytes == nil {
		fatal(fmt.Errorf("encryption key is required: set GOVENUE_SECRET_KEY or pass -key"))
	}

	kv, err := godotenv.Read(*inPath)
	if err != nil {
		fatal(fmt.Errorf("read %s: %w", *inPath, err))
	}
	if keep := parseOnly(*only); keep != nil {
		for k := range kv {
			if !keep[k] {
				delete(kv, k)
			}
		}
	}
	if len(kv) == 0 {
		fatal(fmt.Errorf("nothing to import from %s", *inPath))
	}

	store, err := secretstore.Open(secretstore.OpenOptions{
		Path:          *dbPath,
		EncryptionKey: keyBytes,
	})
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	names := make([]string, 0, len(kv))
	for k := range kv {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := store.SetString(name, kv[name]); err != nil {
			fatal(fmt.Errorf("store %s: %w", name, err))
		}
		fmt.Fprintf(os.Stderr, "stored %s\n", name)
	}
	fmt.Fprintf(os.Stderr, "imported %d secrets into %s\n", len(names), *dbPath)
}

func parseOnly(raw string) map[string]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	keep := map[string]bool{}
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			keep[name] = true
		}
	}
	return keep
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
