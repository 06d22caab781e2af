package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/gojungse/internal/config"
	"github.com/TimurManjosov/gojungse/internal/store"
)

const table = "현대어,중세어,적용방식\n가,나,그대로\n"

func TestFile_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.csv")
	if err := os.WriteFile(path, []byte(table), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := File{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got != table {
		t.Errorf("Fetch = %q", got)
	}
}

func TestFile_Missing(t *testing.T) {
	_, err := File{Path: filepath.Join(t.TempDir(), "nope.csv")}.Fetch(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestStored_Fetch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_ = st.PutRuleTable(ctx, "default", table)

	got, err := Stored{Store: st, Name: "default"}.Fetch(ctx)
	if err != nil || got != table {
		t.Errorf("Fetch = %q, %v", got, err)
	}

	_, err = Stored{Store: st, Name: "other"}.Fetch(ctx)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHTTP_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(table))
	}))
	defer srv.Close()

	got, err := NewHTTP(srv.URL, 10*time.Second, zerolog.Nop()).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got != table {
		t.Errorf("Fetch = %q", got)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("hits = %d, want 3", n)
	}
}

func TestHTTP_ClientErrorIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, 10*time.Second, zerolog.Nop()).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("hits = %d, want 1", n)
	}
}

func TestHTTP_GivesUpAfterMaxTries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewHTTP(srv.URL, 10*time.Second, zerolog.Nop())
	src.MaxTries = 2

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("hits = %d, want 2", n)
	}
}

func TestNew(t *testing.T) {
	st := store.NewMemoryStore()

	tests := []struct {
		name    string
		cfg     config.Config
		st      store.Store
		want    string
		wantErr error
	}{
		{name: "file", cfg: config.Config{RulesSource: config.SourceFile, RulesPath: "r.csv"}, want: "file:r.csv"},
		{name: "http", cfg: config.Config{RulesSource: config.SourceHTTP, RulesURL: "http://x/r.csv"}, want: "http://x/r.csv"},
		{name: "postgres", cfg: config.Config{RulesSource: config.SourcePostgres, RulesTableName: "default"}, st: st, want: "store:default"},
		{name: "none", cfg: config.Config{RulesSource: config.SourceNone}, wantErr: ErrNoSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(&tt.cfg, tt.st, zerolog.Nop())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New error: %v", err)
			}
			if src.String() != tt.want {
				t.Errorf("String() = %q, want %q", src.String(), tt.want)
			}
		})
	}

	if _, err := New(&config.Config{RulesSource: config.SourcePostgres}, nil, zerolog.Nop()); err == nil {
		t.Error("postgres without store should fail")
	}
	if _, err := New(&config.Config{RulesSource: "ftp"}, nil, zerolog.Nop()); err == nil {
		t.Error("unknown source should fail")
	}
}
