// Package bot routes chat inputs: browsing for everybody, the admin menu
// for allowlisted users and the wizard for inputs inside a flow.
package bot

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/wizard"
)

type engine interface {
	Start(ctx context.Context, chatID int64, flow string, cmd command.Command) []wizard.Reply
	Handle(ctx context.Context, ev wizard.Event) ([]wizard.Reply, bool)
	Cancel(ctx context.Context, chatID int64) (wizard.Reply, bool)
	Active(chatID int64) bool
}

type cityReader interface {
	Get(ctx context.Context, key string) (*domain.City, error)
	List(ctx context.Context) ([]*domain.City, error)
}

type placeReader interface {
	Get(ctx context.Context, cityKey, placeID string) (*domain.Place, error)
	ListByCategory(ctx context.Context, cityKey string, categoryID int) ([]domain.Place, error)
	CategoryIDs(ctx context.Context, cityKey string) ([]int, error)
}

type categoryReader interface {
	Get(ctx context.Context, id int) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Custom(ctx context.Context) ([]domain.Category, error)
}

type adReader interface {
	List(ctx context.Context) ([]domain.Ad, error)
	Next(ctx context.Context) (*domain.Ad, error)
}

// Deps are the read side the router browses.
type Deps struct {
	Cities     cityReader
	Places     placeReader
	Categories categoryReader
	Ads        adReader
	// IsAdmin reports whether a user may edit the directory.
	IsAdmin func(userID int64) bool
}

// Router is the wizard.Handler of the bot.
type Router struct {
	engine     engine
	cities     cityReader
	places     placeReader
	categories categoryReader
	ads        adReader
	isAdmin    func(int64) bool
	log        *slog.Logger
}

var _ wizard.Handler = (*Router)(nil)

// NewRouter creates a router.
func NewRouter(log *slog.Logger, e engine, deps Deps) *Router {
	isAdmin := deps.IsAdmin
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}
	return &Router{
		engine:     e,
		cities:     deps.Cities,
		places:     deps.Places,
		categories: deps.Categories,
		ads:        deps.Ads,
		isAdmin:    isAdmin,
		log:        log.With("handler", "router"),
	}
}

// navigation actions leave an active flow instead of feeding it
var navigation = map[command.Action]bool{
	command.Start:      true,
	command.Cities:     true,
	command.City:       true,
	command.Category:   true,
	command.Place:      true,
	command.Admin:      true,
	command.Categories: true,
	command.Ads:        true,
}

// Handle implements wizard.Handler.
func (r *Router) Handle(ctx context.Context, ev wizard.Event) []wizard.Reply {
	if r.engine.Active(ev.ChatID) && !r.leavesFlow(ev) {
		if replies, ok := r.engine.Handle(ctx, ev); ok {
			return replies
		}
	}

	if ev.Command != nil {
		return r.route(ctx, ev, *ev.Command)
	}
	if ev.Photo != nil {
		return []wizard.Reply{{Text: msgHelp}}
	}

	switch slash(ev.Text) {
	case "/start":
		return r.leave(ctx, ev, r.start(ev))
	case "/cities":
		return r.leave(ctx, ev, r.citiesView(ctx))
	case "/admin":
		return r.leave(ctx, ev, r.adminView(ev))
	default:
		return []wizard.Reply{{Text: msgHelp}}
	}
}

// Cancel implements wizard.Handler.
func (r *Router) Cancel(ctx context.Context, ev wizard.Event) []wizard.Reply {
	reply, _ := r.engine.Cancel(ctx, ev.ChatID)
	return []wizard.Reply{reply}
}

func (r *Router) leavesFlow(ev wizard.Event) bool {
	if ev.Command != nil {
		if navigation[ev.Command.Action] {
			return true
		}
		_, starts := wizard.FlowFor(ev.Command.Action)
		return starts
	}
	switch slash(ev.Text) {
	case "/start", "/cities", "/admin":
		return true
	}
	return false
}

// leave drops an active flow before showing a view.
func (r *Router) leave(ctx context.Context, ev wizard.Event, view []wizard.Reply) []wizard.Reply {
	if _, active := r.engine.Cancel(ctx, ev.ChatID); active {
		r.log.InfoContext(ctx, "flow left by navigation", slog.Int64("chat_id", ev.ChatID))
	}
	return view
}

func (r *Router) route(ctx context.Context, ev wizard.Event, cmd command.Command) []wizard.Reply {
	if flow, ok := wizard.FlowFor(cmd.Action); ok {
		if !r.isAdmin(ev.UserID) {
			return []wizard.Reply{{Text: msgForbidden}}
		}
		return r.engine.Start(ctx, ev.ChatID, flow, cmd)
	}

	var view []wizard.Reply
	switch cmd.Action {
	case command.Start:
		view = r.start(ev)
	case command.Cities:
		view = r.citiesView(ctx)
	case command.City:
		view = r.cityView(ctx, ev, cmd.CityKey)
	case command.Category:
		view = r.categoryView(ctx, cmd)
	case command.Place:
		view = r.placeView(ctx, ev, cmd.CityKey, cmd.PlaceID)
	case command.Admin:
		view = r.adminView(ev)
	case command.Categories:
		view = r.categoriesView(ctx, ev)
	case command.Ads:
		view = r.adsView(ctx, ev)
	default:
		// step buttons pressed after their flow ended
		return []wizard.Reply{{Text: msgExpired}}
	}
	return r.leave(ctx, ev, view)
}
