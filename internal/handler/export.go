package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ozytarget/invozy-backend/internal/domain"
	"github.com/ozytarget/invozy-backend/internal/repository"
	"github.com/ozytarget/invozy-backend/internal/server/authctx"
)

var exportHeader = []string{"Number", "Type", "Status", "Client", "Title", "Issued", "Due", "Amount", "Tax Rate"}

func (h DocumentHandler) export(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	filter := repository.ListFilter{}
	if t := r.URL.Query().Get("type"); t != "" {
		dt := domain.DocType(t)
		if dt != domain.DocTypeEstimate && dt != domain.DocTypeInvoice {
			writeError(w, http.StatusBadRequest, "invalid type")
			return
		}
		filter.Type = &dt
	}
	docs, err := h.Service.List(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := "documents-" + time.Now().Format("2006-01-02")
	switch format {
	case "csv":
		exportCSV(w, name, docs)
	case "xlsx":
		exportXLSX(w, name, docs)
	default:
		writeError(w, http.StatusBadRequest, "unsupported format")
	}
}

func exportCSV(w http.ResponseWriter, name string, docs []*domain.Document) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(exportHeader)
	for _, d := range docs {
		_ = cw.Write(exportRow(d))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func exportXLSX(w http.ResponseWriter, name string, docs []*domain.Document) {
	f := excelize.NewFile()
	sheet := "Documents"
	index, err := f.NewSheet(sheet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i, d := range docs {
		for col, val := range exportRow(d) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, val)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.xlsx"`)
	if err := f.Write(w); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func exportRow(d *domain.Document) []string {
	due := ""
	if d.DueAt != nil {
		due = d.DueAt.Format("2006-01-02")
	}
	return []string{
		d.Number,
		string(d.Type),
		string(d.Status),
		d.Client.Name,
		d.Title,
		d.IssuedAt.Format("2006-01-02"),
		due,
		fmt.Sprintf("%.2f", float64(d.Amount)/100),
		strconv.FormatFloat(d.TaxRate, 'f', -1, 64),
	}
}
