package store

import (
	"strings"
	"testing"
	"time"
)

func TestIntFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{value: "", want: 1},
		{value: "4", want: 4},
		{value: " 2 ", want: 2},
		{value: "bad", want: 1},
		{value: "0", want: 1},
		{value: "-2", want: 1},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv(maxOpenConnsEnvKey, tc.value)
			if got := intFromEnv(maxOpenConnsEnvKey, maxOpenConns); got != tc.want {
				t.Fatalf("intFromEnv(%q) = %d, want %d", tc.value, got, tc.want)
			}
		})
	}
}

func TestDurationFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{value: "", want: connMaxLifetime},
		{value: "45s", want: 45 * time.Second},
		{value: "30", want: 30 * time.Second},
		{value: "0", want: connMaxLifetime},
		{value: "-1m", want: connMaxLifetime},
		{value: "soon", want: connMaxLifetime},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv(connMaxLifetimeEnvKey, tc.value)
			if got := durationFromEnv(connMaxLifetimeEnvKey, connMaxLifetime); got != tc.want {
				t.Fatalf("durationFromEnv(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	if _, err := sqliteDSN(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	dsn, err := sqliteDSN("/var/lib/devbot/" + SQLiteFileName)
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	if !strings.HasPrefix(dsn, "file:") || !strings.HasSuffix(dsn, SQLiteFileName) {
		t.Fatalf("unexpected dsn %q", dsn)
	}
}
