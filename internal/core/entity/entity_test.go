package entity

import "testing"

// probe records lifecycle calls.
type probe struct {
	BaseComponent
	inits    int
	updates  int
	lates    int
	destroys int
	log      *[]string
	name     string
}

func (p *probe) Init() {
	p.inits++
	p.record("init")
}

func (p *probe) Update(delta float64) {
	p.updates++
	p.record("update")
}

func (p *probe) LateUpdate(delta float64) {
	p.lates++
	p.record("late")
}

func (p *probe) Destroy() {
	p.destroys++
	p.record("destroy")
}

func (p *probe) record(ev string) {
	if p.log != nil {
		*p.log = append(*p.log, p.name+":"+ev)
	}
}

// bare has no optional hooks at all.
type bare struct {
	BaseComponent
	updates int
}

func (b *bare) Update(delta float64) { b.updates++ }

func TestAddComponentBindsOwnerAndInits(t *testing.T) {
	e := New("hero")
	p := &probe{}
	got := e.AddComponent("probe", p)
	if got != Component(p) {
		t.Fatal("AddComponent should return the component")
	}
	if p.Owner() != e {
		t.Fatal("owner not bound")
	}
	if p.inits != 1 {
		t.Fatalf("init called %d times", p.inits)
	}
}

func TestGeneratedID(t *testing.T) {
	a, b := New(""), New("")
	if a.ID() == "" || a.ID() == b.ID() {
		t.Fatalf("expected unique generated ids, got %q and %q", a.ID(), b.ID())
	}
}

func TestUpdateOrderAndEnabledGate(t *testing.T) {
	e := New("hero")
	var events []string
	a := &probe{name: "a", log: &events}
	b := &probe{name: "b", log: &events}
	c := &probe{name: "c", log: &events}
	e.AddComponent("a", a)
	e.AddComponent("b", b)
	e.AddComponent("c", c)
	b.SetEnabled(false)
	events = events[:0]

	e.Update(0.016)
	e.LateUpdate(0.016)

	want := []string{"a:update", "c:update", "a:late", "c:late"}
	if len(events) != len(want) {
		t.Fatalf("got %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("got %v, want %v", events, want)
		}
	}
}

func TestLateUpdateSkipsComponentsWithoutHook(t *testing.T) {
	e := New("hero")
	b := &bare{}
	e.AddComponent("bare", b)
	e.Update(0.1)
	e.LateUpdate(0.1)
	if b.updates != 1 {
		t.Fatalf("bare component updates = %d", b.updates)
	}
}

func TestRemoveComponentDestroys(t *testing.T) {
	e := New("hero")
	p := &probe{}
	e.AddComponent("probe", p)
	e.RemoveComponent("probe")
	if p.destroys != 1 {
		t.Fatalf("destroy called %d times", p.destroys)
	}
	if e.HasComponent("probe") {
		t.Fatal("component still present after removal")
	}
	e.RemoveComponent("probe") // absent: no-op
	if p.destroys != 1 {
		t.Fatal("destroy ran again for an absent component")
	}
}

func TestOverwriteSkipsPriorDestroy(t *testing.T) {
	e := New("hero")
	old := &probe{}
	e.AddComponent("slot", old)
	repl := &probe{}
	e.AddComponent("slot", repl)
	if old.destroys != 0 {
		t.Fatal("overwrite must not destroy the prior component")
	}
	got, _ := e.GetComponent("slot")
	if got != Component(repl) {
		t.Fatal("overwrite did not replace the component")
	}
	if n := len(e.ComponentNames()); n != 1 {
		t.Fatalf("expected 1 component name after overwrite, got %d", n)
	}
}

func TestDestroyReachesDisabledComponents(t *testing.T) {
	e := New("hero")
	p := &probe{}
	e.AddComponent("probe", p)
	p.SetEnabled(false)
	e.Destroy()
	if p.destroys != 1 {
		t.Fatal("destroy skipped a disabled component")
	}
	if !e.HasComponent("probe") {
		t.Fatal("Destroy must not clear the component mapping")
	}
}

func TestTags(t *testing.T) {
	e := New("hero")
	e.AddTag("player")
	e.AddTag("melee")
	if !e.HasTag("player") || !e.HasTag("melee") {
		t.Fatal("missing tag")
	}
	e.RemoveTag("melee")
	if e.HasTag("melee") {
		t.Fatal("tag survived removal")
	}
	if len(e.Tags()) != 1 {
		t.Fatalf("tags = %v", e.Tags())
	}
}
