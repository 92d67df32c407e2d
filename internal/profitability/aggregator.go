package profitability

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/money"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
)

type Aggregator struct {
	instruments InstrumentResolver
	converter   *Converter
}

func NewAggregator(instruments InstrumentResolver, converter *Converter) *Aggregator {
	return &Aggregator{instruments: instruments, converter: converter}
}

// Aggregate folds operations into positions keyed by security name.
// Deposits are summed separately and never create a position.
func (a *Aggregator) Aggregate(ctx context.Context, operations []model.Operation) (*model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Aggregator.Aggregate"

	slog.Debug("Aggregate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("operations", len(operations)))

	portfolio := model.NewPortfolio()
	skipped := 0

	for _, operation := range operations {
		delta := Classify(operation)

		if delta.Kind == model.OperationDeposit {
			portfolio.TotalDeposits = portfolio.TotalDeposits.Add(delta.Deposit)
			continue
		}

		if !delta.AffectsPosition() {
			skipped++
			continue
		}

		if err := a.merge(ctx, portfolio, operation, delta); err != nil {
			return nil, err
		}
	}

	slog.Debug(
		"Aggregate finished",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int("positions", len(portfolio.Positions)),
		slog.Int("skipped", skipped),
	)

	return portfolio, nil
}

func (a *Aggregator) merge(ctx context.Context, portfolio *model.Portfolio, operation model.Operation, delta Delta) error {
	instrument, err := a.instruments.Instrument(ctx, operation.SecurityID)
	if err != nil {
		return fmt.Errorf("resolve instrument %s: %w", operation.SecurityID, err)
	}

	name := instrument.Name
	if name == "" {
		name = operation.SecurityID
	}

	currency := money.NormalizeCurrency(operation.Currency)

	costBasis, err := a.converter.Convert(ctx, currency, delta.CostBasis)
	if err != nil {
		return err
	}

	fees, err := a.converter.Convert(ctx, currency, delta.Fees)
	if err != nil {
		return err
	}

	position := portfolio.Upsert(name, func() *model.Position {
		return &model.Position{
			SecurityID: operation.SecurityID,
			Name:       name,
			Ticker:     instrument.Ticker,
			Currency:   currency,
		}
	})

	position.Balance = position.Balance.Add(delta.Balance)
	position.CostBasis = position.CostBasis.Add(costBasis)
	position.Fees = position.Fees.Add(fees)

	return nil
}
