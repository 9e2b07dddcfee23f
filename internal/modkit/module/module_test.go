package module

import (
	"strings"
	"sync"
	"testing"

	phttp "potluck/internal/platform/net/http"
)

type Pager interface{ Page() int }

type pager struct{ n int }

func (p pager) Page() int { return p.n }

type stub struct {
	name  string
	ports any
}

func (s stub) MountRoutes(phttp.Router) {}
func (s stub) Ports() any             { return s.ports }
func (s stub) Name() string           { return s.name }

type Ports struct {
	Keys  []string
	Pager Pager
}

func TestPortsOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		ports any
		want  int
		ok    bool
	}{
		{"nil", nil, 0, false},
		{"direct", Pager(pager{1}), 1, true},
		{"struct field", Ports{Pager: pager{2}}, 2, true},
		{"pointer to struct", &Ports{Pager: pager{3}}, 3, true},
		{"nil pointer", (*Ports)(nil), 0, false},
		{"unexported field", struct{ p Pager }{pager{4}}, 0, false},
		{"scalar", 7, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := PortsOf[Pager](stub{name: "ranking", ports: tc.ports})
			if ok != tc.ok || (ok && got.Page() != tc.want) {
				t.Fatalf("got=%v ok=%v", got, ok)
			}
		})
	}
}

func TestMustPortsOf_PanicNamesModule(t *testing.T) {
	t.Parallel()

	defer func() {
		msg, _ := recover().(string)
		if !strings.Contains(msg, "ranking") || !strings.Contains(msg, "Pager") {
			t.Fatalf("panic = %q", msg)
		}
	}()
	MustPortsOf[Pager](stub{name: "ranking"})
}

// the registry is process wide so this test is not parallel
func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("scores", Ports{Keys: []string{"a"}})
	if p, ok := Lookup[Ports]("scores"); !ok || p.Keys[0] != "a" {
		t.Fatalf("lookup = %+v %v", p, ok)
	}
	if _, ok := Lookup[int]("scores"); ok {
		t.Fatalf("type mismatch resolved")
	}
	if _, ok := Lookup[Ports]("missing"); ok {
		t.Fatalf("missing name resolved")
	}

	Register("scores", Ports{Keys: []string{"b"}})
	if MustLookup[Ports]("scores").Keys[0] != "b" {
		t.Fatalf("register did not replace")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("MustLookup did not panic")
			}
		}()
		MustLookup[Ports]("ranking")
	}()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				Register("scores", Ports{})
				return
			}
			_, _ = Lookup[Ports]("scores")
		}()
	}
	wg.Wait()
}
