package playpose

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type mockKV struct {
	data   map[string][]byte
	writes int
	setErr error
	getErr error
	panics bool
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte)}
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (m *mockKV) Set(ctx context.Context, key string, value []byte) error {
	if m.panics {
		panic("storage gone")
	}
	if m.setErr != nil {
		return m.setErr
	}
	m.writes++
	m.data[key] = value
	return nil
}

func TestStore_SaveDebounced(t *testing.T) {
	sched := newManualScheduler()
	kv := newMockKV()
	store := NewStore(kv, sched, DefaultSettings())
	defer store.debounce.Stop()

	for i := 1; i <= 5; i++ {
		store.Update(func(s *Settings) {
			s.Volume = string(rune('0' + i))
		})
		sched.Advance(50 * time.Millisecond)
	}

	if kv.writes != 0 {
		t.Fatalf("expected no writes inside the window, got %d", kv.writes)
	}

	sched.Advance(SaveDelay)

	if kv.writes != 1 {
		t.Fatalf("expected exactly 1 write, got %d", kv.writes)
	}

	var saved map[string]any
	if err := json.Unmarshal(kv.data[StorageKey], &saved); err != nil {
		t.Fatalf("unmarshal saved blob: %v", err)
	}
	if saved["volume"] != "5" {
		t.Errorf("expected volume \"5\", got %v", saved["volume"])
	}
	if saved["length"] != "2" {
		t.Errorf("expected length \"2\", got %v", saved["length"])
	}
	if saved["showTimer"] != false {
		t.Errorf("expected showTimer false, got %v", saved["showTimer"])
	}
}

func TestStore_SaveImmediateOverwrites(t *testing.T) {
	sched := newManualScheduler()
	kv := newMockKV()
	kv.data[StorageKey] = []byte(`{"length":"1","volume":"10","showTimer":true}`)

	store := NewStore(kv, sched, Settings{Length: "3", Volume: "90", ShowTimer: false})
	store.SaveImmediate()

	if got := string(kv.data[StorageKey]); got != `{"length":"3","volume":"90","showTimer":false}` {
		t.Errorf("unexpected blob %s", got)
	}
}

func TestStore_WriteFailuresSwallowed(t *testing.T) {
	tests := []struct {
		name string
		kv   KV
	}{
		{name: "error", kv: &mockKV{data: map[string][]byte{}, setErr: errors.New("quota exceeded")}},
		{name: "panic", kv: &mockKV{data: map[string][]byte{}, panics: true}},
		{name: "no storage", kv: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logged int
			store := NewStore(tt.kv, newManualScheduler(), DefaultSettings())
			store.Logf = func(string, ...any) { logged++ }

			store.SaveImmediate()

			if logged != 1 {
				t.Errorf("expected failure to be logged once, got %d", logged)
			}
		})
	}
}

func TestStore_CloseFlushesPending(t *testing.T) {
	sched := newManualScheduler()
	kv := newMockKV()
	store := NewStore(kv, sched, DefaultSettings())

	store.Update(func(s *Settings) { s.ShowTimer = true })
	store.Close()

	if kv.writes != 1 {
		t.Fatalf("expected flush to write once, got %d", kv.writes)
	}

	sched.Advance(time.Second)
	if kv.writes != 1 {
		t.Errorf("expected no second write, got %d", kv.writes)
	}
}

func TestLoadSettings(t *testing.T) {
	tests := []struct {
		name string
		blob string
		err  error
		want Settings
	}{
		{
			name: "stored",
			blob: `{"length":"3","volume":"40","showTimer":true}`,
			want: Settings{Length: "3", Volume: "40", ShowTimer: true},
		},
		{
			name: "partial keeps defaults",
			blob: `{"volume":"15"}`,
			want: Settings{Length: "2", Volume: "15", ShowTimer: false},
		},
		{
			name: "malformed",
			blob: `{"length":`,
			want: DefaultSettings(),
		},
		{
			name: "missing",
			want: DefaultSettings(),
		},
		{
			name: "read error",
			blob: `{"length":"3"}`,
			err:  errors.New("disk on fire"),
			want: DefaultSettings(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMockKV()
			kv.getErr = tt.err
			if tt.blob != "" {
				kv.data[StorageKey] = []byte(tt.blob)
			}

			got := LoadSettings(context.Background(), kv)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}

	if got := LoadSettings(context.Background(), nil); got != DefaultSettings() {
		t.Errorf("expected defaults without storage, got %+v", got)
	}
}

func TestSettings_Parsing(t *testing.T) {
	tests := []struct {
		in         Settings
		wantPreset int
		wantVolume int
	}{
		{Settings{Length: "1", Volume: "0"}, 1, 0},
		{Settings{Length: "3", Volume: "100"}, 3, 100},
		{Settings{Length: "7", Volume: "150"}, DefaultLengthPreset, 100},
		{Settings{Length: "", Volume: "-5"}, DefaultLengthPreset, 0},
		{Settings{Length: "x", Volume: "loud"}, DefaultLengthPreset, DefaultVolume},
	}

	for _, tt := range tests {
		if got := tt.in.LengthPreset(); got != tt.wantPreset {
			t.Errorf("%+v: expected preset %d, got %d", tt.in, tt.wantPreset, got)
		}
		if got := tt.in.VolumeLevel(); got != tt.wantVolume {
			t.Errorf("%+v: expected volume %d, got %d", tt.in, tt.wantVolume, got)
		}
	}
}
