package pdfexport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	approvalapimodels "marketplace-backend/models/api/approval"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const fontFile = "Arial.ttf"

var historyColumns = []struct {
	title string
	width float64
}{
	{"Дата", 32},
	{"Из статуса", 28},
	{"В статус", 28},
	{"Комментарий", 62},
	{"Роль", 40},
}

// GenerateHistory журнал согласования сущности в pdf.
// Без шрифта с кириллицей в fontDir используется встроенный шрифт
func GenerateHistory(fontDir string, entity approvalapimodels.EntityView, list []approvalapimodels.HistoryView) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("GenerateHistory panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", fontDir)
	tr := func(s string) string { return s }
	family := "Arial"
	if _, statErr := os.Stat(filepath.Join(fontDir, fontFile)); statErr == nil {
		pdf.AddUTF8Font(family, "", fontFile)
	} else {
		family = "Helvetica"
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()
	pdf.SetFont(family, "", 14)
	if pdf.Error() != nil {
		return nil, pdf.Error()
	}

	_, lineHt := pdf.GetFontSize()
	lineHt += 2
	pdf.CellFormat(0, lineHt, tr(fmt.Sprintf("%v %v", entity.Kind.ToHuman(), entity.ID)), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	_, lineHt = pdf.GetFontSize()
	lineHt += 2
	pdf.CellFormat(0, lineHt, tr(fmt.Sprintf("Текущий статус: %v", entity.StatusName)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, lineHt, tr(fmt.Sprintf("Подано: %v", entity.SubmittedAt.Format("02.01.2006 15:04"))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 9)
	_, lineHt = pdf.GetFontSize()
	lineHt += 3
	for _, col := range historyColumns {
		pdf.CellFormat(col.width, lineHt, tr(col.title), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	for _, item := range list {
		values := []string{
			item.CreatedAt.Format("02.01.2006 15:04"),
			item.FromStatusName,
			item.ToStatusName,
			item.GetNote(),
			item.PrincipalRole.ToHuman(),
		}
		for idx, col := range historyColumns {
			pdf.CellFormat(col.width, lineHt, tr(truncate(pdf, values[idx], col.width-2, tr)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	err = pdf.Output(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(pdf *fpdf.Fpdf, value string, width float64, tr func(string) string) string {
	runes := []rune(value)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes))) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
