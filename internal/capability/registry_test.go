package capability

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rahul/vela/internal/governance"
)

type stubCapability struct {
	name  string
	level governance.Level
	out   string
}

func (s *stubCapability) Name() string                    { return s.name }
func (s *stubCapability) Description() string             { return "stub" }
func (s *stubCapability) Parameters() map[string]any      { return map[string]any{"type": "object"} }
func (s *stubCapability) Authorization() governance.Level { return s.level }
func (s *stubCapability) Execute(ctx context.Context, input string) (string, error) {
	return s.out, nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	cap := &stubCapability{name: "open_app", level: governance.LevelOpen, out: "opened"}
	if err := reg.Register(cap); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Lookup("open_app")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != cap {
		t.Error("Lookup returned a different capability than was registered")
	}
	if got.Authorization() != governance.LevelOpen {
		t.Errorf("Authorization level not preserved: %v", got.Authorization())
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	reg := NewRegistry()
	original := &stubCapability{name: "notify", out: "original"}
	if err := reg.Register(original); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := reg.Register(&stubCapability{name: "notify", out: "shadow"})
	if !errors.Is(err, ErrDuplicateCapability) {
		t.Fatalf("Expected ErrDuplicateCapability, got %v", err)
	}

	// The first registration must survive untouched.
	got, err := reg.Lookup("notify")
	if err != nil {
		t.Fatal(err)
	}
	out, _ := got.Execute(context.Background(), "{}")
	if out != "original" {
		t.Errorf("Original registration was shadowed: %q", out)
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Lookup("ghost"); !errors.Is(err, ErrUnknownCapability) {
		t.Errorf("Expected ErrUnknownCapability, got %v", err)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"web_search", "delete_item", "open_app"} {
		if err := reg.Register(&stubCapability{name: name}); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"delete_item", "open_app", "web_search"}
	if got := reg.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestChatIDContext(t *testing.T) {
	ctx := WithChatID(context.Background(), "42")
	id, ok := ChatID(ctx)
	if !ok || id != "42" {
		t.Errorf("ChatID() = %q, %v", id, ok)
	}
	if _, ok := ChatID(context.Background()); ok {
		t.Error("ChatID on a bare context should report absence")
	}
}
