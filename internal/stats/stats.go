// Package stats maintains the cumulative per-day notice counters file that
// feeds the reporting graphs. One entry per batch date; re-running a date
// replaces its entry rather than double counting.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"boampwatch/internal/notice/domain"
	"boampwatch/platform/config"
	"boampwatch/platform/logger"
)

// Entry is one day's counters. The field names match the historical file
// format consumed by the graphing tooling.
type Entry struct {
	Date         string `json:"date"`
	Marche       int    `json:"Marche"`
	Modification int    `json:"Modification"`
	Notification int    `json:"Notification"`
}

type file struct {
	Statistiques []Entry `json:"statistiques"`
}

// Store reads and rewrites the stats file. Not safe for concurrent writers;
// the run driver owns it for the duration of a run.
type Store struct {
	path string
	log  *logger.Logger
}

func New(cfg config.StatsConfig, log *logger.Logger) *Store {
	return &Store{path: cfg.GetStatsFilePath(), log: log}
}

// Enabled reports whether a stats file is configured.
func (s *Store) Enabled() bool { return s.path != "" }

// RecordRun folds one run's counters into the file, replacing any existing
// entry for the same date.
func (s *Store) RecordRun(run domain.RunStats) error {
	if !s.Enabled() {
		return nil
	}

	entries, err := s.load()
	if err != nil {
		return err
	}

	entry := Entry{
		Date:         run.Date,
		Marche:       run.ByNature[domain.NatureAward],
		Modification: run.ByNature[domain.NatureAmendment],
		Notification: run.ByNature[domain.NatureResult],
	}

	replaced := false
	for i := range entries {
		if entries[i].Date == entry.Date {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	if err := s.save(entries); err != nil {
		return err
	}
	s.log.Info("stats recorded", "date", entry.Date, "entries", len(entries))
	return nil
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read stats file %s: %w", s.path, err)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stats file %s: %w", s.path, err)
	}
	return f.Statistiques, nil
}

func (s *Store) save(entries []Entry) error {
	data, err := json.MarshalIndent(file{Statistiques: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create stats dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write stats file %s: %w", s.path, err)
	}
	return nil
}
