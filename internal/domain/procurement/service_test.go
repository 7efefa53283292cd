package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/medstock/medstock/internal/domain/catalog"
	"github.com/medstock/medstock/internal/domain/shared"
)

type mockCriticalRepo struct {
	watched map[string]*CriticalItem
}

func (m *mockCriticalRepo) Add(_ context.Context, itemID string) error {
	if _, ok := m.watched[itemID]; !ok {
		m.watched[itemID] = &CriticalItem{ItemID: itemID}
	}
	return nil
}

func (m *mockCriticalRepo) Remove(_ context.Context, itemID string) error {
	if _, ok := m.watched[itemID]; !ok {
		return shared.NotFoundf("item %s is not on the watch list", itemID)
	}
	delete(m.watched, itemID)
	return nil
}

func (m *mockCriticalRepo) List(_ context.Context) ([]*CriticalItem, error) {
	var out []*CriticalItem
	for _, item := range m.watched {
		cp := *item
		out = append(out, &cp)
	}
	return out, nil
}

type mockSuggestionRepo struct {
	open    []*Suggestion
	history []*HistoryEntry
	nextID  int64
}

func (m *mockSuggestionRepo) Insert(_ context.Context, s *Suggestion) (int64, error) {
	m.nextID++
	cp := *s
	cp.ID = m.nextID
	m.open = append(m.open, &cp)
	return cp.ID, nil
}

func (m *mockSuggestionRepo) List(_ context.Context) ([]*Suggestion, error) {
	return m.open, nil
}

func (m *mockSuggestionRepo) CopyAllToHistory(_ context.Context, archivedAt time.Time) (int, error) {
	for _, s := range m.open {
		m.history = append(m.history, &HistoryEntry{
			ID: int64(len(m.history) + 1), ItemName: s.ItemName, Quantity: s.Quantity, ArchivedAt: archivedAt,
		})
	}
	return len(m.open), nil
}

func (m *mockSuggestionRepo) DeleteAll(_ context.Context) error {
	m.open = nil
	return nil
}

func (m *mockSuggestionRepo) History(_ context.Context) ([]*HistoryEntry, error) {
	return m.history, nil
}

type stubItemRepo struct {
	catalog.ItemRepository
	existing map[string]bool
}

func (s *stubItemRepo) Exists(_ context.Context, id string) (bool, error) {
	return s.existing[id], nil
}

type noopTxRunner struct{}

func (noopTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var testNow = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockCriticalRepo, *mockSuggestionRepo) {
	critical := &mockCriticalRepo{watched: map[string]*CriticalItem{}}
	suggestions := &mockSuggestionRepo{}
	items := &stubItemRepo{existing: map[string]bool{"A": true, "B": true}}
	svc := NewService(critical, suggestions, items, noopTxRunner{})
	svc.now = func() time.Time { return testNow }
	return svc, critical, suggestions
}

func TestAddCritical(t *testing.T) {
	svc, critical, _ := newTestService()

	if err := svc.AddCritical(context.Background(), "A"); err != nil {
		t.Fatalf("AddCritical: %v", err)
	}
	if _, ok := critical.watched["A"]; !ok {
		t.Error("item not on watch list")
	}

	if err := svc.AddCritical(context.Background(), "nope"); !shared.IsKind(err, shared.KindNotFound) {
		t.Errorf("unknown item err = %v, want not found", err)
	}
	if err := svc.AddCritical(context.Background(), "  "); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("blank id err = %v, want validation", err)
	}
}

func TestRemoveCritical(t *testing.T) {
	svc, critical, _ := newTestService()
	critical.watched["A"] = &CriticalItem{ItemID: "A"}

	if err := svc.RemoveCritical(context.Background(), "A"); err != nil {
		t.Fatalf("RemoveCritical: %v", err)
	}
	if err := svc.RemoveCritical(context.Background(), "A"); !shared.IsKind(err, shared.KindNotFound) {
		t.Errorf("second remove err = %v, want not found", err)
	}
}

func TestAlerts(t *testing.T) {
	svc, critical, _ := newTestService()
	expired := testNow.AddDate(0, -1, 0)
	fresh := testNow.AddDate(1, 0, 0)
	critical.watched["low"] = &CriticalItem{ItemID: "low", Quantity: 5, ExpirationDate: &fresh}
	critical.watched["expired"] = &CriticalItem{ItemID: "expired", Quantity: 100, ExpirationDate: &expired}
	critical.watched["fine"] = &CriticalItem{ItemID: "fine", Quantity: 100, ExpirationDate: &fresh}
	critical.watched["edge"] = &CriticalItem{ItemID: "edge", Quantity: 20, ExpirationDate: &fresh}

	items, err := svc.Alerts(context.Background())
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	byID := map[string]*CriticalItem{}
	for _, item := range items {
		byID[item.ItemID] = item
	}

	if !byID["low"].LowStock || byID["low"].Expired {
		t.Errorf("low: %+v", byID["low"])
	}
	if byID["expired"].LowStock || !byID["expired"].Expired {
		t.Errorf("expired: %+v", byID["expired"])
	}
	if byID["fine"].LowStock || byID["fine"].Expired {
		t.Errorf("fine: %+v", byID["fine"])
	}
	// Exactly the threshold is not yet low.
	if byID["edge"].LowStock {
		t.Errorf("edge: %+v", byID["edge"])
	}
}

func TestCreateSuggestion(t *testing.T) {
	svc, _, suggestions := newTestService()

	sg, err := svc.CreateSuggestion(context.Background(), "  Sonda Foley 16fr ", 30)
	if err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	if sg.ID == 0 || sg.ItemName != "Sonda Foley 16fr" || !sg.CreatedAt.Equal(testNow) {
		t.Errorf("suggestion = %+v", sg)
	}
	if len(suggestions.open) != 1 {
		t.Errorf("open suggestions = %d, want 1", len(suggestions.open))
	}

	if _, err := svc.CreateSuggestion(context.Background(), "", 1); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("empty name err = %v, want validation", err)
	}
	if _, err := svc.CreateSuggestion(context.Background(), "x", 0); !shared.IsKind(err, shared.KindValidation) {
		t.Errorf("zero quantity err = %v, want validation", err)
	}
}

func TestArchiveSuggestions(t *testing.T) {
	svc, _, suggestions := newTestService()
	for _, name := range []string{"uno", "dos", "tres"} {
		if _, err := svc.CreateSuggestion(context.Background(), name, 1); err != nil {
			t.Fatalf("CreateSuggestion: %v", err)
		}
	}

	archived, err := svc.ArchiveSuggestions(context.Background())
	if err != nil {
		t.Fatalf("ArchiveSuggestions: %v", err)
	}
	if archived != 3 {
		t.Errorf("archived = %d, want 3", archived)
	}
	if len(suggestions.open) != 0 {
		t.Errorf("open suggestions = %d, want 0", len(suggestions.open))
	}
	if len(suggestions.history) != 3 {
		t.Errorf("history = %d, want 3", len(suggestions.history))
	}
	for _, h := range suggestions.history {
		if !h.ArchivedAt.Equal(testNow) {
			t.Errorf("archivedAt = %v, want %v", h.ArchivedAt, testNow)
		}
	}
}
