package csvGenerator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/KotFed0t/tinkoff_report_bot/internal/model"
	"github.com/KotFed0t/tinkoff_report_bot/internal/reportGenerator"
	"github.com/KotFed0t/tinkoff_report_bot/utils"
)

const separator = ","

// CSVGenerator writes the report as comma separated lines. Values are not quoted,
// security names are expected to have no commas.
type CSVGenerator struct{}

func New() *CSVGenerator {
	return &CSVGenerator{}
}

func (g *CSVGenerator) Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CSVGenerator.Generate"

	if report.Portfolio == nil {
		return nil, "", errors.New("empty portfolio")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	buf := bytes.Buffer{}
	writeLine(&buf, reportGenerator.Header)
	for _, row := range reportGenerator.BuildRows(report) {
		writeLine(&buf, row.Cells())
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("bytes", buf.Len()))

	return buf.Bytes(), ".csv", nil
}

func writeLine(buf *bytes.Buffer, cells []string) {
	buf.WriteString(strings.Join(cells, separator))
	buf.WriteString("\n")
}
