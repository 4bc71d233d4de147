package health

import (
	"sync"
	"testing"
)

func TestOverallWorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Status
	}{
		{"empty monitor", nil, Unknown},
		{"all healthy", map[string]Status{"capture": Healthy, "present": Healthy}, Healthy},
		{"degraded beats healthy", map[string]Status{"capture": Healthy, "resources": Degraded}, Degraded},
		{"unhealthy beats degraded", map[string]Status{"capture": Degraded, "present": Unhealthy}, Unhealthy},
		{"unknown beats unhealthy", map[string]Status{"capture": Unhealthy, "resources": Unknown}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor()
			for name, s := range tt.statuses {
				m.Update(name, s, "")
			}
			if got := m.Overall(); got != tt.want {
				t.Fatalf("Overall() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{Healthy, Degraded, Unhealthy, Unknown} {
		if !s.IsValid() {
			t.Errorf("IsValid(%q) = false", s)
		}
	}
	for _, s := range []Status{Status("ok"), Status(""), Status("HEALTHY")} {
		if s.IsValid() {
			t.Errorf("IsValid(%q) = true", s)
		}
	}
}

func TestUpdateCoercesUnrecognizedStatus(t *testing.T) {
	m := NewMonitor()
	m.Update("capture", Status("flaky"), "made-up status")

	c, ok := m.Get("capture")
	if !ok {
		t.Fatal("capture check missing after Update")
	}
	if c.Status != Unhealthy {
		t.Fatalf("Status = %q, want %q for an unrecognized value", c.Status, Unhealthy)
	}
	if c.Message != "made-up status" {
		t.Fatalf("Message = %q, want original message preserved", c.Message)
	}
}

func TestGetMissingComponent(t *testing.T) {
	if _, ok := NewMonitor().Get("compose"); ok {
		t.Fatal("Get on empty monitor returned ok")
	}
}

func TestUpdateOverwritesPreviousCheck(t *testing.T) {
	m := NewMonitor()
	m.Update("present", Degraded, "blit over budget")
	m.Update("present", Healthy, "")

	c, _ := m.Get("present")
	if c.Status != Healthy || c.Message != "" {
		t.Fatalf("check = %+v, want latest update to win", c)
	}
	if all := m.All(); len(all) != 1 {
		t.Fatalf("All() = %d checks, want 1 after overwrite", len(all))
	}
}

func TestAllSnapshotsEveryComponent(t *testing.T) {
	m := NewMonitor()
	m.Update("capture", Healthy, "")
	m.Update("present", Healthy, "")
	m.Update("resources", Degraded, "cpu 62.0%")

	all := m.All()
	if len(all) != 3 {
		t.Fatalf("All() = %d checks, want 3", len(all))
	}
	for _, c := range all {
		if c.UpdatedAt.IsZero() {
			t.Errorf("check %q has zero UpdatedAt", c.Name)
		}
	}
}

func TestSummaryEmptyMonitor(t *testing.T) {
	s := NewMonitor().Summary()
	if s["status"] != string(Unknown) {
		t.Fatalf("status = %v, want %q", s["status"], Unknown)
	}
	if components := s["components"].(map[string]string); len(components) != 0 {
		t.Fatalf("components = %v, want none", components)
	}
}

// Summary must report the overall status and the component map from one
// snapshot, never a mix of two: with a single component flapping between
// two statuses under concurrent writers, overall and the component entry
// always agree.
func TestSummaryConsistentUnderConcurrentUpdates(t *testing.T) {
	m := NewMonitor()
	m.Update("capture", Healthy, "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				m.Update("capture", Unhealthy, "no acquire activity")
			} else {
				m.Update("capture", Healthy, "")
			}
		}(i)
		go func() {
			defer wg.Done()
			s := m.Summary()
			overall := s["status"].(string)
			components := s["components"].(map[string]string)
			if overall != components["capture"] {
				t.Errorf("torn summary: overall=%q capture=%q", overall, components["capture"])
			}
		}()
	}
	wg.Wait()
}
