package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/reportGenerator"
)

const dateLayout = "02.01.2006"

func ReportSummary(report model.Report) string {
	var sb strings.Builder
	totals := report.Totals

	sb.WriteString(fmt.Sprintf("📊 Счёт: %s\n\n", report.BrokerAccountID))
	sb.WriteString(fmt.Sprintf("💰 Пополнения: %s\n", reportGenerator.FormatMoney(totals.TotalDeposits)))
	sb.WriteString(fmt.Sprintf("🛒 Куплено на сумму: %s\n", reportGenerator.FormatMoney(totals.TotalCostBasis)))
	sb.WriteString(fmt.Sprintf("🧾 Удержано комиссий: %s\n", reportGenerator.FormatMoney(totals.TotalFees)))
	sb.WriteString(fmt.Sprintf("📈 Текущая стоимость: %s\n\n", reportGenerator.FormatMoney(totals.TotalCurrentValue)))
	sb.WriteString(fmt.Sprintf("Прибыль: %s\n", reportGenerator.FormatProfit(model.ProfitOf(totals.Profit))))

	if len(report.Portfolio.Positions) > 0 {
		sb.WriteString("\n📋 Бумаги:\n")
	}
	for _, position := range report.Portfolio.Positions {
		sb.WriteString(fmt.Sprintf("▸ %s (%s): %s\n", position.Name, position.Ticker, reportGenerator.FormatProfit(model.ProfitOf(position.Profit))))
	}

	return sb.String()
}

func BrokerAccounts(accounts []model.BrokerAccount) string {
	if len(accounts) == 0 {
		return "Счетов не найдено"
	}

	var sb strings.Builder
	sb.WriteString("🗂 Ваши счета:\n\n")
	for _, account := range accounts {
		sb.WriteString(fmt.Sprintf("%s - %s", account.ID, account.Name))
		if !account.OpenedDate.IsZero() {
			sb.WriteString(fmt.Sprintf(" (открыт %s)", account.OpenedDate.Format(dateLayout)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Subscriptions lists the accounts a user listens to. Tokens are never part of the text.
func Subscriptions(subs []model.Subscription) string {
	if len(subs) == 0 {
		return "У вас нет подписок"
	}

	var sb strings.Builder
	sb.WriteString("🔔 Ваши подписки:\n\n")
	for _, sub := range subs {
		sb.WriteString(sub.BrokerAccountID)
		if sub.StartedAt != nil {
			sb.WriteString(fmt.Sprintf(" с %s", sub.StartedAt.Format(dateLayout)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func StockPackages(pkgs []model.StockPackage) string {
	if len(pkgs) == 0 {
		return "У вас нет добавленных акций"
	}

	var sb strings.Builder
	sb.WriteString("💼 Ваши акции:\n\n")
	for _, pkg := range pkgs {
		sb.WriteString(fmt.Sprintf("%s: %s шт. на сумму %s\n", pkg.Ticker, pkg.Amount.String(), reportGenerator.FormatMoney(pkg.Cost)))
	}

	return sb.String()
}
