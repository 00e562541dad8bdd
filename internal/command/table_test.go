package command

import (
	"context"
	"strings"
	"testing"
)

func noopHandler(ctx context.Context, req *Request) error { return nil }

func TestNewTable_LookupByNameAndAlias(t *testing.T) {
	table, err := NewTable(
		&Registration{Name: "birthday", Aliases: []string{"bday"}, Handler: noopHandler},
		&Registration{Name: "ping", Handler: noopHandler},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byName, ok := table.Lookup("birthday")
	if !ok {
		t.Fatal("expected lookup by name to succeed")
	}
	byAlias, ok := table.Lookup("bday")
	if !ok {
		t.Fatal("expected lookup by alias to succeed")
	}
	if byName != byAlias {
		t.Error("alias resolved to a different registration")
	}
}

func TestNewTable_LookupCaseInsensitive(t *testing.T) {
	table, err := NewTable(&Registration{Name: "ping", Handler: noopHandler})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := table.Lookup("PING"); !ok {
		t.Error("expected case-insensitive lookup to succeed")
	}
}

func TestNewTable_DuplicateName(t *testing.T) {
	_, err := NewTable(
		&Registration{Name: "ping", Handler: noopHandler},
		&Registration{Name: "Ping", Handler: noopHandler},
	)
	if err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestNewTable_AliasCollidesWithName(t *testing.T) {
	_, err := NewTable(
		&Registration{Name: "ping", Handler: noopHandler},
		&Registration{Name: "status", Aliases: []string{"ping"}, Handler: noopHandler},
	)
	if err == nil {
		t.Fatal("expected error for alias colliding with existing name")
	}
	if !strings.Contains(err.Error(), "ping") {
		t.Errorf("error %q should name the colliding key", err)
	}
}

func TestTable_ListSorted(t *testing.T) {
	table, err := NewTable(
		&Registration{Name: "ping", Handler: noopHandler},
		&Registration{Name: "birthday", Handler: noopHandler},
		&Registration{Name: "help", Handler: noopHandler},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	regs := table.List()
	want := []string{"birthday", "help", "ping"}
	if len(regs) != len(want) {
		t.Fatalf("got %d registrations, want %d", len(regs), len(want))
	}
	for i, name := range want {
		if regs[i].Name != name {
			t.Errorf("position %d: got %q, want %q", i, regs[i].Name, name)
		}
	}
}
