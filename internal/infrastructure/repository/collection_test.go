package repository

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"perfi.com/internal/domain/entity"
	"perfi.com/internal/infrastructure/logger"
)

// mockRemote implements port.RemoteAPI by decoding canned JSON bodies
type mockRemote struct {
	mu     sync.Mutex
	bodies map[string]string
	err    error
	paths  []string
}

func (m *mockRemote) Get(ctx context.Context, path string, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
	if m.err != nil {
		return m.err
	}
	body, ok := m.bodies[path]
	if !ok {
		return entity.ErrRemoteRequest
	}
	return json.Unmarshal([]byte(body), out)
}

func (m *mockRemote) Post(ctx context.Context, path string, in, out any) error { return nil }
func (m *mockRemote) Put(ctx context.Context, path string, in, out any) error  { return nil }
func (m *mockRemote) Delete(ctx context.Context, path string) error            { return nil }

func newEntities(t *testing.T, body string) (*EntityStore, *mockRemote) {
	t.Helper()
	remote := &mockRemote{bodies: map[string]string{EntitiesPath: body}}
	return NewEntityStore(remote, logger.NewNopLogger()), remote
}

func names(items []entity.Entity) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.Name
	}
	return out
}

func TestCollection_FetchReplacesInServerOrder(t *testing.T) {
	store, remote := newEntities(t, `[{"id":3,"name":"C"},{"id":1,"name":"A"},{"id":2,"name":"B"}]`)
	ctx := context.Background()

	if store.Populated() {
		t.Fatal("new store should be empty")
	}
	store.Add(entity.Entity{ID: entity.NewID(99), Name: "local"})

	if err := store.Fetch(ctx); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if got := names(store.All()); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Errorf("All() = %v, want [C A B]", got)
	}
	if !store.Populated() {
		t.Error("store should be populated after fetch")
	}
	if len(remote.paths) != 1 || remote.paths[0] != "/entities" {
		t.Errorf("paths = %v", remote.paths)
	}
}

func TestCollection_FetchFailureKeepsItems(t *testing.T) {
	store, remote := newEntities(t, `[{"id":1,"name":"A"}]`)
	ctx := context.Background()

	if err := store.Fetch(ctx); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	remote.err = errors.New("connection refused")
	err := store.Fetch(ctx)
	if err == nil {
		t.Fatal("Fetch() expected error")
	}
	if !errors.Is(err, remote.err) {
		t.Errorf("Fetch() error = %v, want wrapped %v", err, remote.err)
	}
	if got := names(store.All()); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("All() after failed fetch = %v, want [A]", got)
	}
}

func TestCollection_FetchEmptyBody(t *testing.T) {
	store, _ := newEntities(t, `null`)
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if store.All() == nil || store.Len() != 0 {
		t.Errorf("All() = %v, want empty non-nil slice", store.All())
	}
	if !store.Populated() {
		t.Error("store should be populated after an empty fetch")
	}
}

func TestCollection_UpdateAttributeScenario(t *testing.T) {
	store, _ := newEntities(t, `[{"id":1,"name":"A","note":"n1"},{"id":2,"name":"B","note":"n2"}]`)
	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	found, err := store.UpdateAttribute(entity.NewID(1), "name", "Renamed")
	if err != nil || !found {
		t.Fatalf("UpdateAttribute() = %v, %v", found, err)
	}

	want := []entity.Entity{
		{ID: "1", Name: "Renamed", Note: "n1"},
		{ID: "2", Name: "B", Note: "n2"},
	}
	if got := store.All(); !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %+v, want %+v", got, want)
	}
}

func TestCollection_UpdateAttribute(t *testing.T) {
	price := decimal.RequireFromString("2.5")
	seed := func() *AssetBalanceStore {
		s := NewAssetBalanceStore(&mockRemote{}, entity.NewID(7), logger.NewNopLogger())
		s.Add(entity.AssetBalance{ID: "1", Symbol: "ETH", Amount: decimal.NewFromInt(1), Price: &price})
		s.Add(entity.AssetBalance{ID: "2", Symbol: "BTC", Amount: decimal.NewFromInt(2)})
		return s
	}

	tests := []struct {
		name      string
		id        entity.ID
		property  string
		value     any
		wantFound bool
		wantErr   error
		check     func(*testing.T, entity.AssetBalance)
	}{
		{
			name: "string field", id: "1", property: "symbol", value: "WETH", wantFound: true,
			check: func(t *testing.T, b entity.AssetBalance) {
				if b.Symbol != "WETH" {
					t.Errorf("Symbol = %q", b.Symbol)
				}
			},
		},
		{
			name: "decimal from number", id: "1", property: "amount", value: 1.25, wantFound: true,
			check: func(t *testing.T, b entity.AssetBalance) {
				if b.Amount.String() != "1.25" {
					t.Errorf("Amount = %s", b.Amount)
				}
			},
		},
		{
			name: "optional decimal cleared", id: "1", property: "price", value: nil, wantFound: true,
			check: func(t *testing.T, b entity.AssetBalance) {
				if b.Price != nil {
					t.Errorf("Price = %v, want nil", b.Price)
				}
			},
		},
		{
			name: "numeric id matches", id: entity.NewID(1), property: "label", value: "cold", wantFound: true,
			check: func(t *testing.T, b entity.AssetBalance) {
				if b.Label != "cold" {
					t.Errorf("Label = %q", b.Label)
				}
			},
		},
		{name: "missing id", id: "42", property: "symbol", value: "X", wantFound: false},
		{name: "unknown property", id: "1", property: "colour", value: "red", wantErr: entity.ErrUnknownAttribute},
		{name: "go field name is not a key", id: "1", property: "Symbol", value: "X", wantErr: entity.ErrUnknownAttribute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seed()
			before := store.All()

			found, err := store.UpdateAttribute(tt.id, tt.property, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UpdateAttribute() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("UpdateAttribute() error = %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("UpdateAttribute() found = %v, want %v", found, tt.wantFound)
			}

			after := store.All()
			if !reflect.DeepEqual(after[1], before[1]) {
				t.Errorf("other item changed: %+v -> %+v", before[1], after[1])
			}
			if tt.check != nil {
				tt.check(t, after[0])
			} else if !reflect.DeepEqual(after, before) {
				t.Errorf("store changed: %+v -> %+v", before, after)
			}
		})
	}
}

func TestCollection_UpdateAttributeInvalidValue(t *testing.T) {
	store := NewAddressStore(&mockRemote{}, logger.NewNopLogger())
	store.Add(entity.Address{ID: "1", Label: "main", Ord: 3})

	_, err := store.UpdateAttribute("1", "ord", "first")
	if err == nil {
		t.Fatal("UpdateAttribute() expected error for a string ord")
	}
	got, _ := store.GetByID("1")
	if got.Ord != 3 {
		t.Errorf("Ord = %d, want 3", got.Ord)
	}

	if _, err := store.UpdateAttribute("1", "entity_id", "12"); err != nil {
		t.Fatalf("UpdateAttribute(entity_id) error = %v", err)
	}
	got, _ = store.GetByID("1")
	if !got.EntityID.Equal(entity.NewID(12)) {
		t.Errorf("EntityID = %q, want 12", got.EntityID)
	}
}

func TestCollection_Update(t *testing.T) {
	store := NewAddressStore(&mockRemote{}, logger.NewNopLogger())
	store.Add(entity.Address{ID: "1", Label: "a"})
	store.Add(entity.Address{ID: "2", Label: "b"})

	if !store.Update(entity.Address{ID: entity.NewID(2), Label: "B"}) {
		t.Fatal("Update() of existing item returned false")
	}
	if store.Update(entity.Address{ID: "3", Label: "c"}) {
		t.Error("Update() of a missing item returned true")
	}

	want := []entity.Address{{ID: "1", Label: "a"}, {ID: "2", Label: "B"}}
	if got := store.All(); !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %+v, want %+v", got, want)
	}
}

func TestCollection_Delete(t *testing.T) {
	store := NewAddressStore(&mockRemote{}, logger.NewNopLogger())
	store.Add(entity.Address{ID: "5", Label: "five"})
	store.Add(entity.Address{ID: "6", Label: "six"})
	store.Add(entity.Address{ID: "abc", Label: "opaque"})

	if store.Delete("7") {
		t.Error("Delete() of a missing id returned true")
	}
	// Numeric and string forms of one ID are the same ID.
	if !store.Delete(entity.NewID(5)) {
		t.Fatal("Delete(5) returned false")
	}
	if _, ok := store.GetByID("5"); ok {
		t.Error(`GetByID("5") still finds the deleted item`)
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
	if _, ok := store.GetByID("6"); !ok {
		t.Error("unrelated item was removed")
	}
}

func TestCollection_DeleteRemovesOnlyFirstMatch(t *testing.T) {
	store := NewEntityStore(&mockRemote{}, logger.NewNopLogger())
	store.Add(entity.Entity{ID: "1", Name: "first"})
	store.Add(entity.Entity{ID: "1", Name: "duplicate"})

	store.Delete("1")
	if got := names(store.All()); !reflect.DeepEqual(got, []string{"duplicate"}) {
		t.Errorf("All() = %v, want [duplicate]", got)
	}
}

func TestCollection_OperationSequence(t *testing.T) {
	type op func(s *EntityStore)
	add := func(id int, name string) op {
		return func(s *EntityStore) { s.Add(entity.Entity{ID: entity.NewID(id), Name: name}) }
	}
	update := func(id int, name string) op {
		return func(s *EntityStore) { s.Update(entity.Entity{ID: entity.NewID(id), Name: name}) }
	}
	del := func(id int) op {
		return func(s *EntityStore) { s.Delete(entity.NewID(id)) }
	}

	tests := []struct {
		name string
		ops  []op
		want []string
	}{
		{name: "adds keep order", ops: []op{add(1, "a"), add(2, "b"), add(3, "c")}, want: []string{"a", "b", "c"}},
		{name: "update in place", ops: []op{add(1, "a"), add(2, "b"), update(1, "A")}, want: []string{"A", "b"}},
		{name: "update missing is ignored", ops: []op{add(1, "a"), update(9, "z")}, want: []string{"a"}},
		{name: "delete then re-add goes last", ops: []op{add(1, "a"), add(2, "b"), del(1), add(1, "a2")}, want: []string{"b", "a2"}},
		{name: "delete twice", ops: []op{add(1, "a"), del(1), del(1)}, want: []string{}},
		{name: "update after delete", ops: []op{add(1, "a"), del(1), update(1, "A")}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewEntityStore(&mockRemote{}, logger.NewNopLogger())
			for _, o := range tt.ops {
				o(store)
			}
			if got := names(store.All()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("All() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollection_AllReturnsCopy(t *testing.T) {
	store := NewEntityStore(&mockRemote{}, logger.NewNopLogger())
	store.Add(entity.Entity{ID: "1", Name: "a"})

	items := store.All()
	items[0].Name = "mutated"

	got, _ := store.GetByID("1")
	if got.Name != "a" {
		t.Errorf("cached item changed through All(): %q", got.Name)
	}
}

func TestCollection_Watch(t *testing.T) {
	store, _ := newEntities(t, `[{"id":1,"name":"A"}]`)

	var seen [][]string
	cancel := store.Watch(func(items []entity.Entity) {
		seen = append(seen, names(items))
	})

	if err := store.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	store.Add(entity.Entity{ID: "2", Name: "B"})
	_, _ = store.UpdateAttribute("2", "name", "BB")
	store.Update(entity.Entity{ID: "9"}) // miss: no notification
	store.Delete("1")

	cancel()
	store.Add(entity.Entity{ID: "3", Name: "C"})

	want := [][]string{{"A"}, {"A", "B"}, {"A", "BB"}, {"BB"}}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("notifications = %v, want %v", seen, want)
	}
}

func TestCollection_ConcurrentUse(t *testing.T) {
	store, _ := newEntities(t, `[{"id":1,"name":"A"}]`)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Fetch(ctx)
			store.Add(entity.Entity{ID: entity.NewID(100 + i), Name: "x"})
			_ = store.All()
		}(i)
	}
	wg.Wait()

	if _, ok := store.GetByID("1"); !ok {
		t.Error("fetched item missing after concurrent use")
	}
}
