// Package intake implements the guided question sequence that collects one pour record
// from a messaging client.
package intake

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abelzeko/beton-control/internal/entities"
)

// State is a position in the linear question chain
type State int

// The zero State is Terminal: no conversation is in progress.
const (
	StateTerminal State = iota
	StateSelectOrganization
	StateSelectSite
	StateSelectConcreteClass
	StateSelectFrostRating
	StateSelectWaterRating
	StateEnterElement
	StateSelectSupplier
	StateEnterPassport
	StateEnterCubeCount
	StateEnterConeCount
	StateEnterSlump
	StateEnterVolume
	StateEnterTemperature
	StateEnterTempMeasurements
	StateSelectExecutor
	StateEnterActName
	StateEnterPourDate
	StateFinalize
)

var stateNames = map[State]string{
	StateTerminal:              "Terminal",
	StateSelectOrganization:    "SelectOrganization",
	StateSelectSite:            "SelectSite",
	StateSelectConcreteClass:   "SelectConcreteClass",
	StateSelectFrostRating:     "SelectFrostRating",
	StateSelectWaterRating:     "SelectWaterRating",
	StateEnterElement:          "EnterElement",
	StateSelectSupplier:        "SelectSupplier",
	StateEnterPassport:         "EnterPassport",
	StateEnterCubeCount:        "EnterCubeCount",
	StateEnterConeCount:        "EnterConeCount",
	StateEnterSlump:            "EnterSlump",
	StateEnterVolume:           "EnterVolume",
	StateEnterTemperature:      "EnterTemperature",
	StateEnterTempMeasurements: "EnterTempMeasurements",
	StateSelectExecutor:        "SelectExecutor",
	StateEnterActName:          "EnterActName",
	StateEnterPourDate:         "EnterPourDate",
	StateFinalize:              "Finalize",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// InputKind classifies an inbound client message
type InputKind int

const (
	InputText InputKind = iota
	InputChoice
	InputStart
	InputCancel
)

// Input is one inbound client message
type Input struct {
	Kind  InputKind
	Tag  string // choice tag, e.g. ORG
	Key  int64  // option index, or the record id for organization and site choices
	Text string
}

// StartInput enters the flow from the beginning
func StartInput() Input { return Input{Kind: InputStart} }

// CancelInput aborts the flow
func CancelInput() Input { return Input{Kind: InputCancel} }

// TextInput is free-form text typed by the user
func TextInput(text string) Input { return Input{Kind: InputText, Text: text} }

// ChoiceInput selects an option of a prompt tagged tag by its key
func ChoiceInput(tag string, key int64) Input {
	return Input{Kind: InputChoice, Tag: tag, Key: key}
}

// CallbackData encodes a choice as button payload. Options that carry a
// record id are keyed by it so that a button on an outdated keyboard still
// names the record it showed.
func CallbackData(tag string, index int, opt Option) string {
	key := int64(index)
	if opt.ID != 0 {
		key = opt.ID
	}
	return tag + ":" + strconv.FormatInt(key, 10)
}

// ParseCallbackData decodes a button payload produced by CallbackData
func ParseCallbackData(data string) (Input, bool) {
	tag, idx, ok := strings.Cut(data, ":")
	if !ok || tag == "" {
		return Input{}, false
	}
	n, err := strconv.ParseInt(idx, 10, 64)
	if err != nil || n < 0 {
		return Input{}, false
	}
	return ChoiceInput(tag, n), true
}

// Option is one presented choice
type Option struct {
	Label string
	Value string
	ID    int64 // organization or site id for identity choices
}

// Answers accumulates the collected fields
type Answers struct {
	OrganizationID int64
	Pour           entities.PourRecord
}

// Session is the state of one conversation
type Session struct {
	State   State
	Answers Answers
	Offered []Option // options presented in the current selection state
}

// Active reports whether the conversation is collecting answers
func (s Session) Active() bool {
	return s.State != StateTerminal && s.State != StateFinalize
}

type inputClass int

const (
	classChoice inputClass = iota
	classText
	classInteger
	classDecimal
	classDate
)

type optionSource int

const (
	sourceNone optionSource = iota
	sourceOrganizations
	sourceSites
	sourceDistinct
	sourceToday
)

// value is a validated answer
type value struct {
	text   string
	id     int64
	number int
	amount float64
}

type question struct {
	prompt   string
	class    inputClass
	tag      string
	columns  int
	source   optionSource
	field    entities.Field
	fallback []string
	correct  string // message shown when the input is rejected
	set      func(a *Answers, v value)
}

// Fallback choice sets keep the flow answerable against an empty database.
var (
	DefaultConcreteClasses = []string{"B15", "B20", "B25", "B30"}
	DefaultFrostRatings    = []string{"F100", "F150", "F200"}
	DefaultWaterRatings    = []string{"W4", "W6", "W8", "W10"}
	DefaultSuppliers       = []string{"Неизвестно"}
	DefaultExecutors       = []string{"Исполнитель"}
)

const todayLabel = "Сегодня"

var questions = map[State]question{
	StateSelectOrganization: {
		prompt: "Какая организация?", class: classChoice, tag: "ORG", columns: 2, source: sourceOrganizations,
		correct: "Выберите организацию кнопкой",
		set:     func(a *Answers, v value) { a.OrganizationID = v.id },
	},
	StateSelectSite: {
		prompt: "Какой объект?", class: classChoice, tag: "OBJ", columns: 2, source: sourceSites,
		correct: "Выберите объект кнопкой",
		set:     func(a *Answers, v value) { a.Pour.SiteID = v.id },
	},
	StateSelectConcreteClass: {
		prompt: "Класс бетона?", class: classChoice, tag: "CLASS", columns: 3, source: sourceDistinct,
		field: entities.FieldConcreteClass, fallback: DefaultConcreteClasses,
		correct: "Выберите класс бетона кнопкой",
		set:     func(a *Answers, v value) { a.Pour.ConcreteClass = v.text },
	},
	StateSelectFrostRating: {
		prompt: "Морозостойкость?", class: classChoice, tag: "FROST", columns: 3, source: sourceDistinct,
		field: entities.FieldFrostResistance, fallback: DefaultFrostRatings,
		correct: "Выберите морозостойкость кнопкой",
		set:     func(a *Answers, v value) { a.Pour.FrostResistance = v.text },
	},
	StateSelectWaterRating: {
		prompt: "Водопроницаемость?", class: classChoice, tag: "WATER", columns: 3, source: sourceDistinct,
		field: entities.FieldWaterResistance, fallback: DefaultWaterRatings,
		correct: "Выберите водопроницаемость кнопкой",
		set:     func(a *Answers, v value) { a.Pour.WaterResistance = v.text },
	},
	StateEnterElement: {
		prompt: "Конструктив? (введите текст)", class: classText,
		correct: "Введите название конструктива текстом",
		set:     func(a *Answers, v value) { a.Pour.Element = v.text },
	},
	StateSelectSupplier: {
		prompt: "Поставщик?", class: classChoice, tag: "SUPPLIER", columns: 2, source: sourceDistinct,
		field: entities.FieldSupplier, fallback: DefaultSuppliers,
		correct: "Выберите поставщика кнопкой",
		set:     func(a *Answers, v value) { a.Pour.Supplier = v.text },
	},
	StateEnterPassport: {
		prompt: "Паспорт? (введите текст)", class: classText,
		correct: "Введите номер паспорта текстом",
		set:     func(a *Answers, v value) { a.Pour.ConcretePassport = v.text },
	},
	StateEnterCubeCount: {
		prompt: "Количество кубиков? (число)", class: classInteger,
		correct: "Введите целое число для кубиков",
		set:     func(a *Answers, v value) { a.Pour.CubesCount = v.number },
	},
	StateEnterConeCount: {
		prompt: "Количество конусов? (число)", class: classInteger,
		correct: "Введите целое число для конусов",
		set:     func(a *Answers, v value) { a.Pour.ConesCount = v.number },
	},
	StateEnterSlump: {
		prompt: "Осадка конуса? (введите текст, например 10)", class: classText,
		correct: "Введите осадку текстом",
		set:     func(a *Answers, v value) { a.Pour.Slump = v.text },
	},
	StateEnterVolume: {
		prompt: "Объем бетонной смеси? (число, можно с точкой)", class: classDecimal,
		correct: "Введите неотрицательное число для объема",
		set:     func(a *Answers, v value) { a.Pour.VolumeConcrete = v.amount },
	},
	StateEnterTemperature: {
		prompt: "Температура? (введите текст, например 12)", class: classText,
		correct: "Введите температуру текстом",
		set:     func(a *Answers, v value) { a.Pour.Temperature = v.text },
	},
	StateEnterTempMeasurements: {
		prompt: "Сколько замеров температуры? (целое число)", class: classInteger,
		correct: "Введите целое число для замеров",
		set:     func(a *Answers, v value) { a.Pour.TempMeasurements = v.number },
	},
	StateSelectExecutor: {
		prompt: "Исполнитель?", class: classChoice, tag: "EXECUTOR", columns: 2, source: sourceDistinct,
		field: entities.FieldExecutor, fallback: DefaultExecutors,
		correct: "Выберите исполнителя кнопкой",
		set:     func(a *Answers, v value) { a.Pour.Executor = v.text },
	},
	StateEnterActName: {
		prompt: "Как назвать акт? (введите текст)", class: classText,
		correct: "Введите название акта текстом",
		set:     func(a *Answers, v value) { a.Pour.ActNumber = v.text },
	},
	StateEnterPourDate: {
		prompt: "Какая дата? (введите ДД-ММ-ГГГГ или нажмите «Сегодня»)", class: classDate,
		tag: "DATE", columns: 1, source: sourceToday,
		correct: "Формат даты: ДД-ММ-ГГГГ",
		set:     func(a *Answers, v value) { a.Pour.PourDate = v.text },
	},
}
