package sources

import (
	"context"
	"testing"

	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

func testApp() *domain.Application {
	return domain.NewApplication(
		domain.CompanyInfo{
			CompanyType:    "LTD",
			LegalName:      "Acme Trading Ltd",
			TradeName:      "Acme",
			MersisNumber:   "0123456789012345",
			TaxNumber:      "1234567890",
			BKMNumber:      "BKM-4471",
			MonthlyRevenue: 150000,
			WebsiteURL:     "https://acme.example",
			City:           "Istanbul",
			District:       "Kadikoy",
			Address:        "Bagdat Cad. 1",
		},
		domain.AuthorizedPerson{
			NationalID:  "12345678901",
			FirstName:   "Ayse",
			LastName:    "Yilmaz",
			Email:       "ayse@acme.example",
			MobilePhone: "+905551112233",
		},
		nil,
	)
}

func TestRegistry_CoversWeightTable(t *testing.T) {
	registry := Registry(nil, zap.NewNop().Sugar())

	if len(registry) != len(domain.SourceWeights) {
		t.Fatalf("registry has %d sources, want %d", len(registry), len(domain.SourceWeights))
	}

	weights := make(map[string]float64, len(registry))
	for name, src := range registry {
		if src.Name() != name {
			t.Errorf("registry key %s does not match source name %s", name, src.Name())
		}
		weights[name] = src.Weight()
	}
	if err := domain.ValidateWeights(weights); err != nil {
		t.Errorf("registry weights invalid: %v", err)
	}
}

func TestMersisSource(t *testing.T) {
	src := NewMersisSource(zap.NewNop().Sugar())
	ctx := context.Background()

	t.Run("valid 16-digit number", func(t *testing.T) {
		finding, err := src.Check(ctx, testApp())
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if finding.Status != domain.FindingVerified || finding.RawScore != 15 {
			t.Errorf("finding = %+v, want verified 15", finding)
		}
	})

	t.Run("malformed number", func(t *testing.T) {
		app := testApp()
		app.Company.MersisNumber = "12345"
		finding, err := src.Check(ctx, app)
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if finding.Status != domain.FindingWarning || finding.RawScore != 0 {
			t.Errorf("finding = %+v, want warning 0", finding)
		}
	})
}

func TestTaxOfficeSource(t *testing.T) {
	src := NewTaxOfficeSource(zap.NewNop().Sugar())
	ctx := context.Background()

	app := testApp()
	app.Company.TaxNumber = "123"
	finding, err := src.Check(ctx, app)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if finding.Status != domain.FindingWarning || finding.RawScore != 0 {
		t.Errorf("finding = %+v, want warning 0 for malformed VKN", finding)
	}
}

func TestWebsiteSource(t *testing.T) {
	src := NewWebsiteSource(zap.NewNop().Sugar())
	ctx := context.Background()

	t.Run("https gets full score", func(t *testing.T) {
		finding, _ := src.Check(ctx, testApp())
		if finding.RawScore != 10 {
			t.Errorf("RawScore = %v, want 10", finding.RawScore)
		}
	})

	t.Run("plain http halves the score", func(t *testing.T) {
		app := testApp()
		app.Company.WebsiteURL = "http://acme.example"
		finding, _ := src.Check(ctx, app)
		if finding.Status != domain.FindingWarning || finding.RawScore != 5 {
			t.Errorf("finding = %+v, want warning 5", finding)
		}
	})
}

func TestWebReputationSource_PartialWithoutWebsite(t *testing.T) {
	src := NewWebReputationSource(zap.NewNop().Sugar())

	app := testApp()
	app.Company.WebsiteURL = ""
	finding, _ := src.Check(context.Background(), app)

	if finding.Status != domain.FindingWarning {
		t.Errorf("Status = %v, want warning", finding.Status)
	}
	if finding.RawScore != 10 {
		t.Errorf("RawScore = %v, want 10 (partial credit of weight 15)", finding.RawScore)
	}
}

func TestFraudCheckSource(t *testing.T) {
	src := NewFraudCheckSource([]string{"Acme Trading Ltd", "9999999999"}, zap.NewNop().Sugar())
	ctx := context.Background()

	t.Run("blacklisted company", func(t *testing.T) {
		finding, _ := src.Check(ctx, testApp())
		if !finding.Blacklisted {
			t.Error("Blacklisted = false, want true")
		}
		if finding.RawScore != 0 {
			t.Errorf("RawScore = %v, want 0", finding.RawScore)
		}
	})

	t.Run("clean company", func(t *testing.T) {
		app := testApp()
		app.Company.LegalName = "Clean Commerce AS"
		finding, _ := src.Check(ctx, app)
		if finding.Blacklisted {
			t.Error("Blacklisted = true, want false")
		}
		if finding.Status != domain.FindingVerified || finding.RawScore != 20 {
			t.Errorf("finding = %+v, want verified 20", finding)
		}
	})
}

func TestFinancialHealthSource(t *testing.T) {
	src := NewFinancialHealthSource(zap.NewNop().Sugar())
	ctx := context.Background()

	tests := []struct {
		name    string
		revenue float64
		want    float64
	}{
		{"strong", 150000, 5},
		{"good", 60000, 4},
		{"moderate", 30000, 3},
		{"weak", 5000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp()
			app.Company.MonthlyRevenue = tt.revenue
			finding, err := src.Check(ctx, app)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if finding.RawScore != tt.want {
				t.Errorf("RawScore = %v, want %v", finding.RawScore, tt.want)
			}
		})
	}
}
