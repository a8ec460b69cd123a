/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package playpose

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

const (
	// StorageKey is the key the settings blob lives under.
	StorageKey = "playpose_v7"

	SaveDelay = 300 * time.Millisecond

	DefaultLengthPreset = 2
	DefaultVolume       = 70

	writeTimeout = 5 * time.Second
)

// Settings mirrors the browser's form controls. Length and volume are kept
// as the raw control strings so stored blobs stay compatible.
type Settings struct {
	Length    string `json:"length"`
	Volume    string `json:"volume"`
	ShowTimer bool   `json:"showTimer"`
}

func DefaultSettings() Settings {
	return Settings{
		Length:    strconv.Itoa(DefaultLengthPreset),
		Volume:    strconv.Itoa(DefaultVolume),
		ShowTimer: false,
	}
}

// LengthPreset parses Length, falling back to the default preset.
func (s Settings) LengthPreset() int {
	n, err := strconv.Atoi(s.Length)
	if err != nil || n < 1 || n > 3 {
		return DefaultLengthPreset
	}
	return n
}

// VolumeLevel parses Volume and clamps it to [0,100].
func (s Settings) VolumeLevel() int {
	n, err := strconv.Atoi(s.Volume)
	if err != nil {
		return DefaultVolume
	}
	return clampVolume(n)
}

// KV is the durable key-value storage the settings are written to.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LoadSettings reads the stored blob. Missing, unreadable or malformed
// values yield the defaults.
func LoadSettings(ctx context.Context, kv KV) Settings {
	return OrDefault(func() (Settings, error) {
		if kv == nil {
			return Settings{}, errors.New("playpose: no storage")
		}

		data, err := kv.Get(ctx, StorageKey)
		if err != nil {
			return Settings{}, err
		}

		s := DefaultSettings()
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, err
		}

		return s, nil
	}, DefaultSettings())
}

// Store owns one player's settings and writes them back, debounced.
type Store struct {
	kv       KV
	current  Settings
	debounce *Debouncer[Settings]

	// Logf receives best-effort write failures. May be nil.
	Logf func(format string, args ...any)
}

func NewStore(kv KV, sched Scheduler, initial Settings) *Store {
	s := &Store{
		kv:      kv,
		current: initial,
	}
	s.debounce = NewDebouncer(sched, SaveDelay, s.write)

	return s
}

func (s *Store) Settings() Settings {
	return s.current
}

// Update mutates the current settings and schedules a save.
func (s *Store) Update(fn func(*Settings)) {
	fn(&s.current)
	s.Save()
}

// Save schedules a write of the current settings. Calls within SaveDelay of
// each other collapse into a single write.
func (s *Store) Save() {
	s.debounce.Call(s.current)
}

// SaveImmediate writes the current settings now.
func (s *Store) SaveImmediate() {
	s.debounce.Stop()
	s.write(s.current)
}

// Close flushes a pending write.
func (s *Store) Close() {
	s.debounce.Flush()
}

func (s *Store) write(v Settings) {
	err := Try(func() error {
		if s.kv == nil {
			return errors.New("playpose: no storage")
		}

		data, err := json.Marshal(v)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		return s.kv.Set(ctx, StorageKey, data)
	})
	if err != nil && s.Logf != nil {
		s.Logf("settings write failed: %v", err)
	}
}
