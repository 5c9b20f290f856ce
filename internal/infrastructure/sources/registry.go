package sources

import (
	"github.com/payrisk/merchant-risk/internal/domain"
	"go.uber.org/zap"
)

// Registry builds the full set of verification sources keyed by name, each
// carrying its configured weight. The blacklist seeds the fraud source.
func Registry(blacklist []string, logger *zap.SugaredLogger) map[string]domain.VerificationSource {
	all := []domain.VerificationSource{
		NewMersisSource(logger),
		NewTaxOfficeSource(logger),
		NewTradeRegistrySource(logger),
		NewBKMSource(logger),
		NewWebReputationSource(logger),
		NewWebsiteSource(logger),
		NewFraudCheckSource(blacklist, logger),
		NewFinancialHealthSource(logger),
	}

	registry := make(map[string]domain.VerificationSource, len(all))
	for _, src := range all {
		registry[src.Name()] = src
	}
	return registry
}
