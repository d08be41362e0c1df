package intake

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/abelzeko/beton-control/internal/entities"
	"go.uber.org/zap"
)

// RecordStore is the part of the record store used by the flow
type RecordStore interface {
	ListOrganizations(ctx context.Context, filter entities.Filter) ([]entities.Organization, error)
	ListSites(ctx context.Context, orgID int64, filter entities.Filter) ([]entities.ConstructionSite, error)
	DistinctValues(ctx context.Context, kind entities.Kind, field entities.Field) ([]string, error)
	CreatePour(ctx context.Context, pour entities.PourRecord) (int64, error)
}

// Reply is what the client should show after an input
type Reply struct {
	Text    string
	Tag     string   // choice tag of Options
	Options []Option // buttons to present, if any
	Columns int      // buttons per keyboard row
	Done    bool     // the conversation has ended
}

// Flow runs the question sequence for many concurrent conversations
type Flow struct {
	store    RecordStore
	sessions *Sessions
	logger   *zap.Logger
	now      func() time.Time
}

// NewFlow creates a flow over store
func NewFlow(store RecordStore, logger *zap.Logger) *Flow {
	return &Flow{
		store:    store,
		sessions: NewSessions(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for the "today" date choice
func (f *Flow) WithClock(now func() time.Time) *Flow {
	f.now = now
	return f
}

// Sessions exposes the session map of the flow
func (f *Flow) Sessions() *Sessions {
	return f.sessions
}

// Handle applies one input of a conversation and returns the reply for the client
func (f *Flow) Handle(ctx context.Context, conversationID int64, in Input) Reply {
	unlock := f.sessions.lock(conversationID)
	defer unlock()

	current := f.sessions.Get(conversationID)
	next, effect := Step(current, in, f.now())

	log := f.logger.With(zap.Int64("conversation", conversationID), zap.Stringer("state", current.State))

	switch effect.Kind {
	case EffectPrompt:
		reply, session, ok := f.prompt(ctx, next)
		if !ok {
			f.sessions.Delete(conversationID)
			log.Info("Conversation aborted", zap.String("reason", reply.Text))
			return reply
		}
		f.sessions.Put(conversationID, session)
		log.Debug("Advanced", zap.Stringer("next", session.State))
		return reply

	case EffectReprompt:
		log.Debug("Input rejected", zap.String("message", effect.Message))
		reply := render(current)
		reply.Text = effect.Message + "\n\n" + reply.Text
		return reply

	case EffectPersist:
		f.sessions.Delete(conversationID)
		id, err := f.store.CreatePour(ctx, effect.Record)
		if err != nil {
			log.Error("Failed to save pour record", zap.Error(err))
			return Reply{Text: fmt.Sprintf("Ошибка сохранения: %v", err), Done: true}
		}
		log.Info("Pour record saved", zap.Int64("id", id), zap.Int64("site_id", effect.Record.SiteID))
		return Reply{Text: summary(id, effect.Record), Done: true}

	case EffectCancelled:
		f.sessions.Delete(conversationID)
		log.Info("Conversation cancelled")
		return Reply{Text: "Отменено", Done: true}

	default:
		return Reply{Text: "Чтобы добавить контроль, отправьте /start", Done: true}
	}
}

// prompt loads the options of the session's state and renders its question.
// It reports false when the question cannot be answered (no organizations or sites).
func (f *Flow) prompt(ctx context.Context, s Session) (Reply, Session, bool) {
	q := questions[s.State]

	switch q.source {
	case sourceOrganizations:
		orgs, err := f.store.ListOrganizations(ctx, nil)
		if err != nil {
			f.logger.Error("Failed to list organizations", zap.Error(err))
			return Reply{Text: "Не удалось прочитать организации из базы", Done: true}, s, false
		}
		if len(orgs) == 0 {
			return Reply{Text: "Нет организаций в базе.", Done: true}, s, false
		}
		s.Offered = make([]Option, 0, len(orgs))
		for _, o := range orgs {
			s.Offered = append(s.Offered, Option{Label: o.Name, Value: strconv.FormatInt(o.ID, 10), ID: o.ID})
		}

	case sourceSites:
		sites, err := f.store.ListSites(ctx, s.Answers.OrganizationID, nil)
		if err != nil {
			f.logger.Error("Failed to list sites", zap.Error(err))
			return Reply{Text: "Не удалось прочитать объекты из базы", Done: true}, s, false
		}
		if len(sites) == 0 {
			return Reply{Text: "У организации нет объектов.", Done: true}, s, false
		}
		s.Offered = make([]Option, 0, len(sites))
		for _, site := range sites {
			s.Offered = append(s.Offered, Option{Label: site.Name, Value: strconv.FormatInt(site.ID, 10), ID: site.ID})
		}

	case sourceDistinct:
		values, err := f.store.DistinctValues(ctx, entities.KindPour, q.field)
		if err != nil {
			f.logger.Warn("Falling back to default options", zap.String("field", string(q.field)), zap.Error(err))
			values = nil
		}
		if len(values) == 0 {
			values = q.fallback
		}
		s.Offered = make([]Option, 0, len(values))
		for _, v := range values {
			s.Offered = append(s.Offered, Option{Label: v, Value: v})
		}

	case sourceToday:
		s.Offered = []Option{{Label: todayLabel, Value: "today"}}

	default:
		s.Offered = nil
	}

	return render(s), s, true
}

// render builds the reply asking the question of s with its offered options
func render(s Session) Reply {
	q := questions[s.State]
	return Reply{
		Text:    q.prompt,
		Tag:     q.tag,
		Options: s.Offered,
		Columns: q.columns,
	}
}

func summary(id int64, p entities.PourRecord) string {
	return fmt.Sprintf("Контроль №%d сохранён: %s, %s, %s %s %s, %.2f м³",
		id, p.PourDate, p.Element, p.ConcreteClass, p.FrostResistance, p.WaterResistance, p.VolumeConcrete)
}
