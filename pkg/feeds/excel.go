package feeds

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/xuri/excelize/v2"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalize"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Column layout of the tabular dump. The first row is a header.
const (
	excelColName = iota
	excelColAddress
	excelColPhone
	excelColHobbies
	excelColEmail
	excelColGender
	excelColInterestedIn
	excelColBirthDate
	excelColumnCount
)

// ExcelFeed reads the tabular dump from the first sheet of an xlsx file.
type ExcelFeed struct {
	path   string
	logger ectologger.Logger
}

func NewExcelFeed(path string, logger ectologger.Logger) *ExcelFeed {
	return &ExcelFeed{
		path:   path,
		logger: logger,
	}
}

func (f *ExcelFeed) Source() models.Source {
	return models.SourceExcel
}

func (f *ExcelFeed) Read(ctx context.Context) ([]models.RawPersonRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "feeds.ExcelFeed.Read")
	defer span.End()

	file, err := excelize.OpenFile(f.path)
	if err != nil {
		f.logger.WithContext(ctx).WithError(err).WithField("path", f.path).Error("Failed to open excel file")
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "failed to open excel file: %v", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			f.logger.WithContext(ctx).WithError(closeErr).Warn("Failed to close excel file")
		}
	}()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		f.logger.WithContext(ctx).WithError(err).WithField("sheet", sheets[0]).Error("Failed to read excel rows")
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "failed to read excel rows: %v", err)
	}

	var records []models.RawPersonRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		records = append(records, recordFromRow(row))
	}

	f.logger.WithContext(ctx).WithField("records", len(records)).Info("Read excel feed")
	return records, nil
}

func recordFromRow(row []string) models.RawPersonRecord {
	cell := func(idx int) string {
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	return models.RawPersonRecord{
		Source:       models.SourceExcel,
		Name:         cell(excelColName),
		Address:      cell(excelColAddress),
		Phone:        cell(excelColPhone),
		Hobbies:      normalize.SplitHobbyList(cell(excelColHobbies)),
		Email:        cell(excelColEmail),
		Gender:       cell(excelColGender),
		InterestedIn: cell(excelColInterestedIn),
		BirthDate:    cell(excelColBirthDate),
	}
}
