/**
 * @description
 * The registry of external data sources consumed by the ingestion pipeline.
 * Each source binds a name, its raw destination table, and a fetch function.
 * Fetchers are an injected dependency with the contract "returns a sequence of
 * flat records or fails"; the stand-ins below produce representative rows until
 * the provider API clients are wired in.
 */

package sources

import (
	"context"
	"time"

	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/app"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/domain"
)

// Source names, in the fixed order RunAll collects them.
const (
	SourceLoanProducts  = "loan_products"
	SourceExchangeRates = "exchange_rates"
	SourceBaseRates     = "base_rates"
)

// Defaults returns the configured sources in declared collection order.
// TODO: replace the stand-in fetchers with the open-banking provider clients
// once API credentials are provisioned.
func Defaults() []app.Source {
	return []app.Source{
		{Name: SourceLoanProducts, Table: "raw_loan_products", Fetch: fetchLoanProducts},
		{Name: SourceExchangeRates, Table: "raw_exchange_rates", Fetch: fetchExchangeRates},
		{Name: SourceBaseRates, Table: "raw_base_rates", Fetch: fetchBaseRates},
	}
}

func fetchLoanProducts(ctx context.Context) ([]domain.RawRecord, error) {
	now := time.Now().UTC()
	return []domain.RawRecord{
		{"bank": "KB", "name": "직장인 신용대출", "rate_min": 4.5, "rate_max": 7.2, "limit_amount": int64(100_000_000), "fetched_at": now},
		{"bank": "신한", "name": "쏠편한 신용대출", "rate_min": 4.8, "rate_max": 7.8, "limit_amount": int64(150_000_000), "fetched_at": now},
	}, nil
}

func fetchExchangeRates(ctx context.Context) ([]domain.RawRecord, error) {
	now := time.Now().UTC()
	return []domain.RawRecord{
		{"currency": "USD", "rate": 1335.20, "fetched_at": now},
		{"currency": "EUR", "rate": 1448.75, "fetched_at": now},
		{"currency": "JPY", "rate": 9.12, "fetched_at": now},
	}, nil
}

func fetchBaseRates(ctx context.Context) ([]domain.RawRecord, error) {
	now := time.Now().UTC()
	return []domain.RawRecord{
		{"rate_type": "base", "rate": 3.50, "fetched_at": now},
		{"rate_type": "cofix", "rate": 3.62, "fetched_at": now},
	}, nil
}
