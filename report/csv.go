package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// utf8BOM makes spreadsheet tools read the file as UTF-8.
const utf8BOM = "\uFEFF"

var csvHeader = []string{
	"Сотрудник",
	"Email",
	"Отдел",
	"Дата начала",
	"Дата окончания",
	"Тип",
	"Рабочих дней",
	"Статус",
	"Комментарий",
	"Комментарий руководителя",
}

// WriteCSV writes the BOM, a header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Employee,
			r.Email,
			r.Department,
			r.StartDate,
			r.EndDate,
			r.Type,
			strconv.Itoa(r.WorkDays),
			string(r.Status),
			r.Comment,
			r.ManagerComment,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
