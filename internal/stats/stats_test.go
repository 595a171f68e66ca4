package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"boampwatch/internal/notice/domain"
	"boampwatch/platform/logger"
)

type statsConfig struct{ path string }

func (c statsConfig) GetStatsFilePath() string { return c.path }

func runStats(date string, marche, modif, notif int) domain.RunStats {
	stats := domain.NewRunStats(date)
	stats.ByNature[domain.NatureAward] = marche
	stats.ByNature[domain.NatureAmendment] = modif
	stats.ByNature[domain.NatureResult] = notif
	return stats
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stats file: %v", err)
	}
	var f struct {
		Statistiques []Entry `json:"statistiques"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("parse stats file: %v", err)
	}
	return f.Statistiques
}

func TestRecordRunAppendsAndSortsByDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	store := New(statsConfig{path: path}, logger.New("test"))

	if err := store.RecordRun(runStats("2026-08-30", 5, 1, 2)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordRun(runStats("2026-08-28", 3, 0, 0)); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Date != "2026-08-28" || entries[1].Date != "2026-08-30" {
		t.Fatalf("expected date-sorted entries, got %+v", entries)
	}
	if entries[1].Marche != 5 || entries[1].Modification != 1 || entries[1].Notification != 2 {
		t.Fatalf("unexpected counters %+v", entries[1])
	}
}

func TestRecordRunReplacesSameDateEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	store := New(statsConfig{path: path}, logger.New("test"))

	if err := store.RecordRun(runStats("2026-08-30", 5, 0, 0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordRun(runStats("2026-08-30", 7, 1, 0)); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("expected replay to replace, got %d entries", len(entries))
	}
	if entries[0].Marche != 7 || entries[0].Modification != 1 {
		t.Fatalf("expected replaced counters, got %+v", entries[0])
	}
}

func TestRecordRunNoopWithoutConfiguredPath(t *testing.T) {
	store := New(statsConfig{}, logger.New("test"))
	if store.Enabled() {
		t.Fatal("expected store to be disabled without a path")
	}
	if err := store.RecordRun(runStats("2026-08-30", 1, 0, 0)); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
