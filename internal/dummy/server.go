package dummy

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/http"
	"time"
)

// RankingPath is the route prefix the stress tool appends domains to.
const RankingPath = "/domain/ranking"

type ServerConfig struct {
	Port int
	// Token, when set, must match the Authorization header exactly.
	Token string
}

// Handler serves a mock reputation API with a few latency and failure
// profiles, each mounted under its own prefix.
func Handler(token string) http.Handler {
	mux := http.NewServeMux()

	// 1. Fast (10-50ms)
	mux.HandleFunc("GET "+RankingPath+"/{domain}", func(w http.ResponseWriter, r *http.Request) {
		if !sleep(r, time.Duration(rand.Intn(40)+10)*time.Millisecond) {
			return
		}
		writeRanking(w, r.PathValue("domain"))
	})

	// 2. Slow (1s-2s), good for deadline and grace testing
	mux.HandleFunc("GET /slow"+RankingPath+"/{domain}", func(w http.ResponseWriter, r *http.Request) {
		if !sleep(r, time.Duration(rand.Intn(1000)+1000)*time.Millisecond) {
			return
		}
		writeRanking(w, r.PathValue("domain"))
	})

	// 3. Random failures
	mux.HandleFunc("GET /error"+RankingPath+"/{domain}", func(w http.ResponseWriter, r *http.Request) {
		rnd := rand.Float32()
		if rnd < 0.2 {
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
			return
		} else if rnd < 0.4 {
			http.Error(w, "429 Too Many Requests", http.StatusTooManyRequests)
			return
		}
		writeRanking(w, r.PathValue("domain"))
	})

	// 4. Success status with a body the client cannot use
	mux.HandleFunc("GET /broken"+RankingPath+"/{domain}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("not json"))
	})

	if token == "" {
		return mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != token {
			http.Error(w, "401 Unauthorized", http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// Start runs the mock API in the background and returns the server so the
// caller can shut it down.
func Start(cfg ServerConfig) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("👻 Mock reputation API running on http://localhost%s%s\n", addr, RankingPath)
	fmt.Println("   Prefixes: (none), /slow, /error, /broken")

	server := &http.Server{
		Addr:    addr,
		Handler: Handler(cfg.Token),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed: %v\n", err)
		}
	}()
	return server
}

// Reputation is the deterministic score served for a domain.
func Reputation(domain string) int {
	h := fnv.New32a()
	h.Write([]byte(domain))
	return int(h.Sum32() % 101)
}

func writeRanking(w http.ResponseWriter, domain string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"domain":     domain,
		"reputation": Reputation(domain),
	})
}

// sleep waits d or until the client goes away; false means abandon.
func sleep(r *http.Request, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-r.Context().Done():
		return false
	}
}
