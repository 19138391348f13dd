package registry

import (
	"testing"

	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
)

type fakePolicy struct{}

func (fakePolicy) ID() string    { return "fake" }
func (fakePolicy) Title() string { return "Fake policy" }
func (fakePolicy) Controller(int64) flappy.Controller {
	return flappy.ControllerFunc(func(flappy.Observation) (float64, error) { return 0, nil })
}

func TestRegisterAndCreate(t *testing.T) {
	Register("fake", func() Policy { return fakePolicy{} })

	if !Exists("fake") {
		t.Fatal("Exists(fake) = false after Register")
	}

	found := false
	for _, info := range List() {
		if info.ID == "fake" {
			found = true
			if info.Title != "Fake policy" {
				t.Errorf("Title = %q", info.Title)
			}
		}
	}
	if !found {
		t.Error("List() does not include fake")
	}

	p, err := Create("fake")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if p.ID() != "fake" {
		t.Errorf("ID() = %q", p.ID())
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("fake", func() Policy { return fakePolicy{} })
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("does-not-exist"); err == nil {
		t.Fatal("Create() should fail for an unknown id")
	}
}
