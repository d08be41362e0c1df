package intake

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/abelzeko/beton-control/internal/entities"
)

// EffectKind tells the engine what to do after a transition
type EffectKind int

const (
	// EffectPrompt asks the question of the new state
	EffectPrompt EffectKind = iota
	// EffectReprompt repeats the question of the unchanged state with a correction
	EffectReprompt
	// EffectPersist creates Effect.Record and ends the conversation
	EffectPersist
	// EffectCancelled ends the conversation without persisting anything
	EffectCancelled
	// EffectIdle answers input that arrives outside a conversation
	EffectIdle
)

// Effect is the side effect requested by a transition
type Effect struct {
	Kind    EffectKind
	Message string
	Record  entities.PourRecord
}

// Step is the transition function of the flow. It never touches the store:
// options for the next prompt are attached by the engine after a Prompt effect.
func Step(s Session, in Input, today time.Time) (Session, Effect) {
	switch in.Kind {
	case InputStart:
		return Session{State: StateSelectOrganization}, Effect{Kind: EffectPrompt}
	case InputCancel:
		return Session{}, Effect{Kind: EffectCancelled}
	}

	if !s.Active() {
		return s, Effect{Kind: EffectIdle}
	}

	q := questions[s.State]
	v, ok := q.read(s, in, today)
	if !ok {
		return s, Effect{Kind: EffectReprompt, Message: q.correct}
	}

	next := Session{State: s.State + 1, Answers: s.Answers}
	q.set(&next.Answers, v)

	if next.State == StateFinalize {
		return next, Effect{Kind: EffectPersist, Record: next.Answers.Pour}
	}
	return next, Effect{Kind: EffectPrompt}
}

// read validates in against the input class of the question
func (q question) read(s Session, in Input, today time.Time) (value, bool) {
	if q.class == classChoice || (q.class == classDate && in.Kind == InputChoice) {
		return q.readChoice(s, in, today)
	}
	if in.Kind != InputText {
		return value{}, false
	}

	text := strings.TrimSpace(in.Text)
	switch q.class {
	case classText:
		if text == "" {
			return value{}, false
		}
		return value{text: text}, true

	case classInteger:
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			return value{}, false
		}
		return value{number: n}, true

	case classDecimal:
		f, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
		if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return value{}, false
		}
		return value{amount: f}, true

	case classDate:
		if _, err := time.Parse(entities.DateLayout, text); err != nil || len(text) != len(entities.DateLayout) {
			return value{}, false
		}
		return value{text: text}, true
	}
	return value{}, false
}

func (q question) readChoice(s Session, in Input, today time.Time) (value, bool) {
	if in.Kind != InputChoice || in.Tag != q.tag {
		return value{}, false
	}
	opt, ok := q.offered(s.Offered, in.Key)
	if !ok {
		return value{}, false
	}
	if q.source == sourceToday {
		return value{text: today.Format(entities.DateLayout)}, true
	}
	return value{text: opt.Value, id: opt.ID}, true
}

// offered finds the chosen option: by record id for organizations and sites,
// by position otherwise
func (q question) offered(options []Option, key int64) (Option, bool) {
	if q.source == sourceOrganizations || q.source == sourceSites {
		for _, opt := range options {
			if opt.ID == key {
				return opt, true
			}
		}
		return Option{}, false
	}
	if key < 0 || key >= int64(len(options)) {
		return Option{}, false
	}
	return options[key], true
}
