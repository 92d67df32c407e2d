package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/reportGenerator"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet = "Sheet1"
	headerColor  = "#cfe2f3"
	totalColor   = "#d9ead3"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

func (g *XLSXGenerator) Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if report.Portfolio == nil {
		return nil, "", errors.New("empty portfolio")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	sheetName := SheetName(report.BrokerAccountID)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		slog.Error("got error while renaming sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillSheet(f, sheetName, reportGenerator.BuildRows(report)); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

// SheetName keeps within the 31 characters excel allows.
func SheetName(brokerAccountID string) string {
	name := "account " + brokerAccountID
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, sheetName string, rows []reportGenerator.Row) error {
	for i, title := range reportGenerator.Header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = f.SetCellStr(sheetName, cell, title)
	}

	lastCol, err := excelize.ColumnNumberToName(len(reportGenerator.Header))
	if err != nil {
		return err
	}

	headerStyle, err := newFilledStyle(f, headerColor)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range rows {
		rowNum := i + 2
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), row.Name)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), row.Ticker)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), row.Currency)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", rowNum), reportGenerator.FormatAmount(row.Balance)+" "+row.BalanceUnit)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", rowNum), reportGenerator.FormatAmount(row.BoughtAtSum))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", rowNum), reportGenerator.FormatMoney(row.Fees))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("G%d", rowNum), reportGenerator.FormatProfit(row.AbsoluteProfit))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("H%d", rowNum), reportGenerator.FormatProfit(row.RelativeProfit))
	}

	totalRow := len(rows) + 1
	totalStyle, err := newFilledStyle(f, totalColor)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), totalStyle); err != nil {
		return fmt.Errorf("apply total style: %w", err)
	}

	return f.SetColWidth(sheetName, "A", lastCol, 20)
}

func newFilledStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}
