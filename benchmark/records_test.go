package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cyberarian/rekama-sys/pkg/connector"
	"github.com/cyberarian/rekama-sys/pkg/durability"
	"github.com/cyberarian/rekama-sys/pkg/governance"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/seal"
	"github.com/cyberarian/rekama-sys/pkg/server"
	"github.com/cyberarian/rekama-sys/pkg/server/endpoints"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

func openStore(b *testing.B, backend durability.Backend) *store.Store {
	b.Helper()
	st, err := store.Open(context.Background(), backend)
	if err != nil {
		b.Fatal(err)
	}
	return st
}

func officer(b *testing.B, st *store.Store) *identity.Identity {
	b.Helper()
	u, err := st.User(store.SeedOfficerID)
	if err != nil {
		b.Fatal(err)
	}
	return identity.FromProfile(u)
}

func BenchmarkCreateRecord(b *testing.B) {
	sealedKey := make([]byte, seal.KeySize)
	cipher, err := seal.New(sealedKey)
	if err != nil {
		b.Fatal(err)
	}

	backends := map[string]func() durability.Backend{
		"memory": func() durability.Backend { return durability.NewMemory() },
		"file":   func() durability.Backend { return durability.NewFile(b.TempDir() + "/rekama.snapshot") },
		"sealed file": func() durability.Backend {
			return durability.NewSealed(durability.NewFile(b.TempDir()+"/rekama.snapshot"), cipher)
		},
	}

	for name, backend := range backends {
		b.Run(name, func(b *testing.B) {
			st := openStore(b, backend())
			svc := governance.New(st)
			caller := officer(b, st)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_, err := svc.CreateRecord(ctx, caller, model.DocumentRecord{
					Title:          fmt.Sprintf("Bench_%06d.pdf", i),
					Type:           model.DocumentPDF,
					Classification: model.ClassificationInternal,
					Status:         model.StatusActive,
				})
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkListRecordsHandler(b *testing.B) {
	st := openStore(b, durability.NewMemory())
	sessions := identity.NewSessions(st)
	s := server.NewServer(server.Options{
		Service:    governance.New(st),
		Connectors: connector.NewEngine(st),
		Sessions:   sessions,
		Tokens:     identity.NewTokenIssuer([]byte("bench-secret"), time.Hour),
		AccessLog:  io.Discard,
	}, "127.0.0.1", "0")
	endpoints.RegisterAll(s)
	handler := s.Handler()

	login := httptest.NewRequest("POST", "/api/session", strings.NewReader(`{"userId": "usr_officer"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, login)
	if rec.Code != http.StatusCreated {
		b.Fatalf("login failed: %d %s", rec.Code, rec.Body)
	}
	var session endpoints.SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		b.Fatal(err)
	}
	token := session.Token

	b.Run("GET /api/records", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r := httptest.NewRequest("GET", "/api/records", nil)
			r.Header.Add("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != http.StatusOK {
				b.Fatalf("unexpected status %d", w.Code)
			}
		}
	})

	b.Run("GET /api/records?source=", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r := httptest.NewRequest("GET", "/api/records?source=Shared+Team+Drive", nil)
			r.Header.Add("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != http.StatusOK {
				b.Fatalf("unexpected status %d", w.Code)
			}
		}
	})
}
