package module

import (
	"testing"

	phttp "eogfeat/internal/platform/net/http"
	kit "eogfeat/internal/platform/testkit"
)

type lister interface{ List() []string }

type listImpl struct{ items []string }

func (l listImpl) List() []string { return l.items }

type fakeModule struct {
	name  string
	ports any
}

func (m fakeModule) Name() string             { return m.name }
func (m fakeModule) Ports() any               { return m.ports }
func (m fakeModule) MountRoutes(phttp.Router) {}

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Count  int
		Lister lister
		hidden lister
	}
	want := listImpl{items: []string{"S01"}}
	cases := []struct {
		name  string
		ports any
		ok    bool
	}{
		{"nil", nil, false},
		{"direct", lister(want), true},
		{"struct field", bundle{Count: 1, Lister: want}, true},
		{"pointer to struct", &bundle{Lister: want}, true},
		{"unexported only", bundle{hidden: want}, false},
		{"primitive", 7, false},
	}
	for _, c := range cases {
		got, ok := PortsOf[lister](fakeModule{name: c.name, ports: c.ports})
		if ok != c.ok {
			t.Fatalf("%s: ok = %v, want %v", c.name, ok, c.ok)
		}
		if ok && got.List()[0] != "S01" {
			t.Fatalf("%s: wrong port %v", c.name, got.List())
		}
	}
}

func TestMustPortsOf(t *testing.T) {
	kit.MustPanic(t, func() { _ = MustPortsOf[lister](fakeModule{name: "features"}) })
	kit.MustNotPanic(t, func() { _ = MustPortsOf[lister](fakeModule{ports: listImpl{}}) })
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := PortsAs[lister]("features"); ok {
		t.Fatalf("empty registry should miss")
	}
	Register("features", listImpl{items: []string{"a"}})
	got, ok := PortsAs[lister]("features")
	if !ok || got.List()[0] != "a" {
		t.Fatalf("PortsAs = %v, %v", got, ok)
	}
	if _, ok := PortsAs[int]("features"); ok {
		t.Fatalf("wrong type should miss")
	}
	Register("features", listImpl{items: []string{"b"}})
	if got, _ := PortsAs[lister]("features"); got.List()[0] != "b" {
		t.Fatalf("re-register should replace")
	}
}
