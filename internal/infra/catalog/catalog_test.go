package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/beautyboost/beautyboost/internal/domain"
)

func TestLookupExistingService(t *testing.T) {
	c := Default()
	tests := []struct {
		id         string
		wantName   string
		wantPoints int64
	}{
		{"svc_haircut", "Hair Cut & Style", 150},
		{"svc_facial", "Premium Facial", 250},
		{"svc_mani_pedi", "Manicure & Pedicure", 180},
		{"svc_color", "Hair Color & Highlights", 350},
		{"svc_massage", "Massage Therapy", 200},
		{"svc_eyebrow", "Eyebrow Shaping", 80},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := c.LookupService(tt.id)
			if err != nil {
				t.Fatalf("LookupService(%q) error: %v", tt.id, err)
			}
			if s.Name != tt.wantName || s.Points != tt.wantPoints {
				t.Errorf("LookupService(%q) = %q/%d, want %q/%d", tt.id, s.Name, s.Points, tt.wantName, tt.wantPoints)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	c := Default()
	if _, err := c.LookupService("svc_tattoo"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("LookupService(unknown) error = %v, want ErrNotFound", err)
	}
	if _, err := c.LookupReward("rwd_yacht"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("LookupReward(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestLookupReward(t *testing.T) {
	r, err := Default().LookupReward("rwd_vip_day")
	if err != nil {
		t.Fatalf("LookupReward() error: %v", err)
	}
	if r.Points != 1000 || r.Tier != domain.TierPlatinum || r.Category != "Premium" {
		t.Errorf("LookupReward(rwd_vip_day) = %+v", r)
	}
}

func TestCatalogNotEmpty(t *testing.T) {
	c := Default()
	if len(c.Services()) != 6 {
		t.Errorf("len(Services()) = %d, want 6", len(c.Services()))
	}
	if len(c.Rewards()) != 6 {
		t.Errorf("len(Rewards()) = %d, want 6", len(c.Rewards()))
	}
}

func TestAllServicesComplete(t *testing.T) {
	for _, s := range Default().Services() {
		if s.Stylist == "" {
			t.Errorf("service %q has no stylist", s.ID)
		}
		if s.Duration == "" {
			t.Errorf("service %q has no duration", s.ID)
		}
		if s.Price <= 0 {
			t.Errorf("service %q has price %v", s.ID, s.Price)
		}
	}
}

func TestServicesReturnsCopy(t *testing.T) {
	c := Default()
	s := c.Services()
	s[0].Points = 1
	if got, _ := c.LookupService(s[0].ID); got.Points == 1 {
		t.Error("Services() exposed internal slice")
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		c, err := Load("")
		if err != nil || len(c.Services()) != 6 {
			t.Fatalf("Load(\"\") = %v, %v", c, err)
		}
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		doc := "services:\n  - id: svc_blowout\n    name: Blowout\n    points: 60\n    price: 40\nrewards: []\n"
		os.WriteFile(path, []byte(doc), 0o644)

		c, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if s, err := c.LookupService("svc_blowout"); err != nil || s.Points != 60 {
			t.Errorf("LookupService(svc_blowout) = %+v, %v", s, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("Load(missing) should fail")
		}
	})
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"zero points", "services:\n  - {id: a, name: A, points: 0}\n", domain.ErrInvalidInput},
		{"service points too large", "services:\n  - {id: a, name: A, points: 9223372036854775807}\n", domain.ErrInvalidInput},
		{"reward points too large", "rewards:\n  - {id: r, name: R, points: 1000001}\n", domain.ErrInvalidInput},
		{"missing id", "rewards:\n  - {name: A, points: 10}\n", domain.ErrInvalidInput},
		{"bad tier", "rewards:\n  - {id: r, name: R, points: 10, tier: Diamond}\n", domain.ErrInvalidInput},
		{"duplicate", "services:\n  - {id: a, name: A, points: 5}\n  - {id: a, name: B, points: 5}\n", domain.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse([]byte("services: [")); err == nil {
		t.Error("Parse(malformed) should fail")
	}
}
