// Package excel reads and writes the spreadsheet exchange format of organizations,
// sites and pour records.
package excel

import (
	"strconv"

	"github.com/abelzeko/beton-control/internal/entities"
)

// Column maps a header text to a record field
type Column struct {
	Header  string
	Field   entities.Field
	Integer bool
	Aliases []string // other accepted header texts on import
}

// DateHeader is the pour date header written by exports; templates use DateTemplateHeader.
const (
	DateHeader         = "Дата"
	DateTemplateHeader = "Дата (ДД-ММ-ГГГГ)"
)

var organizationColumns = []Column{
	{Header: "Название организации", Field: entities.FieldName},
	{Header: "Контактное лицо", Field: entities.FieldContact},
	{Header: "Телефон", Field: entities.FieldPhone},
}

var siteColumns = []Column{
	{Header: "Название объекта", Field: entities.FieldName},
	{Header: "Адрес", Field: entities.FieldAddress},
}

var pourColumns = []Column{
	{Header: DateHeader, Field: entities.FieldPourDate, Aliases: []string{DateTemplateHeader}},
	{Header: "Конструктив", Field: entities.FieldElement},
	{Header: "Класс бетона", Field: entities.FieldConcreteClass},
	{Header: "Морозостойкость", Field: entities.FieldFrostResistance},
	{Header: "Водопроницаемость", Field: entities.FieldWaterResistance},
	{Header: "Поставщик", Field: entities.FieldSupplier},
	{Header: "Паспорт", Field: entities.FieldConcretePassport},
	{Header: "Объем бетона", Field: entities.FieldVolumeConcrete},
	{Header: "Кубики", Field: entities.FieldCubesCount, Integer: true},
	{Header: "Конусы", Field: entities.FieldConesCount, Integer: true},
	{Header: "Осадка", Field: entities.FieldSlump},
	{Header: "Температура", Field: entities.FieldTemperature},
	{Header: "Замеры темп.", Field: entities.FieldTempMeasurements, Integer: true},
	{Header: "Исполнитель", Field: entities.FieldExecutor},
	{Header: "№ Акта", Field: entities.FieldActNumber},
	{Header: "№ Заявки", Field: entities.FieldRequestNumber},
	{Header: "Счет", Field: entities.FieldInvoice},
}

// Columns returns the column layout of kind in record field order
func Columns(kind entities.Kind) []Column {
	switch kind {
	case entities.KindOrganization:
		return organizationColumns
	case entities.KindSite:
		return siteColumns
	case entities.KindPour:
		return pourColumns
	}
	return nil
}

func (c Column) matches(header string) bool {
	if header == c.Header {
		return true
	}
	for _, a := range c.Aliases {
		if header == a {
			return true
		}
	}
	return false
}

// pourCell returns the value written to the cell of field
func pourCell(p entities.PourRecord, field entities.Field) interface{} {
	switch field {
	case entities.FieldPourDate:
		return p.PourDate
	case entities.FieldElement:
		return p.Element
	case entities.FieldConcreteClass:
		return p.ConcreteClass
	case entities.FieldFrostResistance:
		return p.FrostResistance
	case entities.FieldWaterResistance:
		return p.WaterResistance
	case entities.FieldSupplier:
		return p.Supplier
	case entities.FieldConcretePassport:
		return p.ConcretePassport
	case entities.FieldVolumeConcrete:
		return p.VolumeConcrete
	case entities.FieldCubesCount:
		return p.CubesCount
	case entities.FieldConesCount:
		return p.ConesCount
	case entities.FieldSlump:
		return p.Slump
	case entities.FieldTemperature:
		return p.Temperature
	case entities.FieldTempMeasurements:
		return p.TempMeasurements
	case entities.FieldExecutor:
		return p.Executor
	case entities.FieldActNumber:
		return p.ActNumber
	case entities.FieldRequestNumber:
		return p.RequestNumber
	case entities.FieldInvoice:
		return p.Invoice
	}
	return ""
}

// cellText renders a cell value the way import reads it back
func cellText(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
