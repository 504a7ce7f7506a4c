package xlsexport

import (
	"bytes"

	"marketplace-backend/models"
	approvalapimodels "marketplace-backend/models/api/approval"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type Provider interface {
	ExportHistory(kind models.EntityKind, entityID string, list []approvalapimodels.HistoryView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var historyHeaders = []string{"Дата", "Из статуса", "В статус", "Комментарий", "Пользователь", "Роль"}

func (i impl) ExportHistory(kind models.EntityKind, entityID string, list []approvalapimodels.HistoryView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeTitle(f, sheet, row, len(historyHeaders), kind.ToHuman()+" "+entityID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	row, err = writeHeader(f, sheet, row, historyHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(list) != 0 {
		_, err = writeHistoryData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	f.SetSheetName(sheet, "История согласования")
	return f.WriteToBuffer()
}

func writeHistoryData(f *excelize.File, sheet string, list []approvalapimodels.HistoryView, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(historyHeaders), row+len(list)); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		values := []interface{}{
			item.CreatedAt.Format("02.01.2006 15:04:05"),
			item.FromStatusName,
			item.ToStatusName,
			item.GetNote(),
			item.PrincipalID,
			item.PrincipalRole.ToHuman(),
		}
		for idx, value := range values {
			if err := writeColumn(f, sheet, idx+1, row, value); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}
