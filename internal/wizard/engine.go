package wizard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/conversation"
	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/geo"
	"github.com/heartmarshall/cityguide-bot/internal/service/ad"
	"github.com/heartmarshall/cityguide-bot/internal/service/category"
	"github.com/heartmarshall/cityguide-bot/internal/service/city"
)

type cityService interface {
	Add(ctx context.Context, rawName string, photo city.PhotoInput) (*domain.City, datasync.Outcome, error)
	Rename(ctx context.Context, key, rawName string) (datasync.Outcome, error)
	SetPhoto(ctx context.Context, key string, photo city.PhotoInput) (datasync.Outcome, error)
	Delete(ctx context.Context, key string) (datasync.Outcome, error)
	Get(ctx context.Context, key string) (*domain.City, error)
}

type placeService interface {
	Add(ctx context.Context, cityKey string, draft domain.Place) (*domain.Place, datasync.Outcome, error)
	Update(ctx context.Context, cityKey, placeID string, edit func(*domain.Place) error) (*domain.Place, datasync.Outcome, error)
	Delete(ctx context.Context, cityKey, placeID string) (datasync.Outcome, error)
	Get(ctx context.Context, cityKey, placeID string) (*domain.Place, error)
}

type categoryService interface {
	Add(ctx context.Context, input category.Input) (*domain.Category, datasync.Outcome, error)
	Update(ctx context.Context, id int, input category.Input) (*domain.Category, category.FanOutResult, error)
	Delete(ctx context.Context, id int) (category.FanOutResult, error)
	Get(ctx context.Context, id int) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type adService interface {
	Add(ctx context.Context, input ad.Input) (*domain.Ad, datasync.Outcome, error)
	Delete(ctx context.Context, id string) (datasync.Outcome, error)
	List(ctx context.Context) ([]domain.Ad, error)
}

type locator interface {
	Locate(ctx context.Context, rawURL string) (geo.Point, bool)
}

// Deps are the collaborators of the engine. Media is optional.
type Deps struct {
	Cities     cityService
	Places     placeService
	Categories categoryService
	Ads        adService
	Geo        locator
	Media      *Media
}

// transition is what a step asks the engine to do after valid input.
// A zero transition keeps the flow on the current step.
type transition struct {
	next   string
	finish bool
	notice string
}

type step struct {
	prompt func(ctx context.Context, st conversation.State) Reply
	handle func(ctx context.Context, st *conversation.State, ev Event) (transition, error)
}

type flow struct {
	first string
	// begin loads what the flow needs from the starting command. It may
	// move st.Step and returns an optional notice shown before the first prompt.
	begin    func(ctx context.Context, st *conversation.State, cmd command.Command) (string, error)
	steps    map[string]step
	complete func(ctx context.Context, st conversation.State) (string, error)
}

// Engine runs the admin flows. It owns the conversation store; all methods
// for one chat must be called sequentially, which the Dispatcher ensures.
type Engine struct {
	states     *conversation.Store
	cities     cityService
	places     placeService
	categories categoryService
	ads        adService
	geo        locator
	media      *Media
	log        *slog.Logger
	now        func() time.Time
	flows      map[string]flow
}

// NewEngine creates an engine over states.
func NewEngine(log *slog.Logger, states *conversation.Store, deps Deps) *Engine {
	e := &Engine{
		states:     states,
		cities:     deps.Cities,
		places:     deps.Places,
		categories: deps.Categories,
		ads:        deps.Ads,
		geo:        deps.Geo,
		media:      deps.Media,
		log:        log.With("service", "wizard"),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	e.flows = map[string]flow{
		FlowAddCity:        e.addCityFlow(),
		FlowRenameCity:     e.renameCityFlow(),
		FlowCityPhoto:      e.cityPhotoFlow(),
		FlowDeleteCity:     e.deleteCityFlow(),
		FlowAddPlace:       e.addPlaceFlow(),
		FlowEditPlace:      e.editPlaceFlow(),
		FlowDeletePlace:    e.deletePlaceFlow(),
		FlowAddCategory:    e.addCategoryFlow(),
		FlowEditCategory:   e.editCategoryFlow(),
		FlowDeleteCategory: e.deleteCategoryFlow(),
		FlowAddAd:          e.addAdFlow(),
		FlowDeleteAd:       e.deleteAdFlow(),
	}
	return e
}

// Active reports whether the chat is inside a flow.
func (e *Engine) Active(chatID int64) bool {
	_, ok := e.states.Get(chatID)
	return ok
}

// Start begins flow for the chat, replacing any flow in progress.
func (e *Engine) Start(ctx context.Context, chatID int64, name string, cmd command.Command) []Reply {
	f, ok := e.flows[name]
	if !ok {
		e.log.WarnContext(ctx, "unknown flow", slog.String("flow", name))
		return []Reply{{Text: msgUnknownAction}}
	}

	st := e.states.Begin(chatID, name, f.first)
	var notice string
	if f.begin != nil {
		var err error
		notice, err = f.begin(ctx, &st, cmd)
		if err != nil {
			e.states.DeleteIf(chatID, st.Gen)
			e.log.InfoContext(ctx, "flow not started",
				slog.String("flow", name),
				slog.Int64("chat_id", chatID),
				slog.String("error", err.Error()),
			)
			return []Reply{{Text: failureText(err)}}
		}
	}
	if !e.states.SetIf(st) {
		return nil
	}

	e.log.InfoContext(ctx, "flow started", slog.String("flow", name), slog.Int64("chat_id", chatID))
	return []Reply{e.prompt(ctx, f, st, notice)}
}

// Handle applies ev to the chat's active flow. It reports false when the
// chat has no flow so the caller can treat the input as idle navigation.
func (e *Engine) Handle(ctx context.Context, ev Event) ([]Reply, bool) {
	st, ok := e.states.Get(ev.ChatID)
	if !ok {
		return nil, false
	}
	if IsCancel(ev) {
		r, _ := e.Cancel(ctx, ev.ChatID)
		return []Reply{r}, true
	}

	f, ok := e.flows[st.Flow]
	s, stepOK := f.steps[st.Step]
	if !ok || !stepOK {
		e.states.DeleteIf(st.ChatID, st.Gen)
		e.log.ErrorContext(ctx, "conversation in unknown step",
			slog.String("flow", st.Flow),
			slog.String("step", st.Step),
		)
		return []Reply{{Text: msgUnknownAction}}, true
	}

	tr, err := s.handle(ctx, &st, ev)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return []Reply{e.prompt(ctx, f, st, validationText(err))}, true
		}
		return []Reply{e.abort(ctx, st, err)}, true
	}

	if tr.finish {
		return e.finish(ctx, f, st), true
	}
	if tr.next != "" {
		st.Step = tr.next
	}
	if !e.states.SetIf(st) {
		e.log.InfoContext(ctx, "stale transition dropped",
			slog.String("flow", st.Flow),
			slog.Int64("chat_id", st.ChatID),
		)
		return nil, true
	}
	return []Reply{e.prompt(ctx, f, st, tr.notice)}, true
}

// Cancel drops the chat's flow and its draft. Nothing is persisted. It
// reports whether a flow was active.
func (e *Engine) Cancel(ctx context.Context, chatID int64) (Reply, bool) {
	st, ok := e.states.Get(chatID)
	if !e.states.Delete(chatID) {
		return Reply{Text: msgNothingToCancel}, false
	}
	if ok {
		e.log.InfoContext(ctx, "flow cancelled",
			slog.String("flow", st.Flow),
			slog.String("step", st.Step),
			slog.Int64("chat_id", chatID),
		)
	}
	return Reply{Text: msgCancelled}, true
}

func (e *Engine) finish(ctx context.Context, f flow, st conversation.State) []Reply {
	text, err := f.complete(ctx, st)
	if !e.states.DeleteIf(st.ChatID, st.Gen) {
		// cancelled or replaced while saving
		e.log.InfoContext(ctx, "stale completion discarded",
			slog.String("flow", st.Flow),
			slog.Int64("chat_id", st.ChatID),
			slog.Bool("failed", err != nil),
		)
		return nil
	}
	if err != nil {
		e.log.WarnContext(ctx, "flow failed",
			slog.String("flow", st.Flow),
			slog.Int64("chat_id", st.ChatID),
			slog.String("error", err.Error()),
		)
		return []Reply{{Text: failureText(err)}}
	}
	e.log.InfoContext(ctx, "flow completed", slog.String("flow", st.Flow), slog.Int64("chat_id", st.ChatID))
	return []Reply{{Text: text}}
}

// abort ends the flow after a lookup failed mid-way.
func (e *Engine) abort(ctx context.Context, st conversation.State, err error) Reply {
	e.states.DeleteIf(st.ChatID, st.Gen)
	e.log.WarnContext(ctx, "flow aborted",
		slog.String("flow", st.Flow),
		slog.String("step", st.Step),
		slog.Int64("chat_id", st.ChatID),
		slog.String("error", err.Error()),
	)
	return Reply{Text: failureText(err)}
}

func (e *Engine) prompt(ctx context.Context, f flow, st conversation.State, notice string) Reply {
	r := f.steps[st.Step].prompt(ctx, st)
	if notice != "" {
		r.Text = notice + "\n\n" + r.Text
	}
	r.Buttons = append(r.Buttons, []Button{CommandButton(labelCancel, command.New(command.Cancel, "", ""))})
	return r
}

// savedText appends the local-save note to a confirmation.
func savedText(text string, out datasync.Outcome) string {
	if out.Degraded {
		return text + "\n" + msgSavedLocally
	}
	return text
}
