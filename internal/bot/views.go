package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/wizard"
)

const (
	msgWelcome   = "Welcome! Pick a city to see the best places in it."
	msgHelp      = "Use /start to browse cities. Admins can open /admin."
	msgForbidden = "Only admins can do that."
	msgExpired   = "This button has expired. Use /start to begin again."
	msgNoCities  = "No cities yet."
	msgNotFound  = "Not found. It may have been deleted."
	msgFailed    = "Something went wrong, please try again later."
)

func slash(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	if i := strings.IndexByte(t, '@'); i > 0 {
		t = t[:i]
	}
	return t
}

func button(label string, action command.Action, cityKey, placeID string, params ...string) wizard.Button {
	return wizard.CommandButton(label, command.New(action, cityKey, placeID, params...))
}

// rows lays buttons out n per row.
func rows(buttons []wizard.Button, n int) [][]wizard.Button {
	var out [][]wizard.Button
	for len(buttons) > 0 {
		k := min(n, len(buttons))
		out = append(out, buttons[:k])
		buttons = buttons[k:]
	}
	return out
}

func (r *Router) failure(ctx context.Context, what string, err error) []wizard.Reply {
	if errors.Is(err, domain.ErrNotFound) {
		return []wizard.Reply{{Text: msgNotFound}}
	}
	r.log.ErrorContext(ctx, what+" failed", slog.String("error", err.Error()))
	return []wizard.Reply{{Text: msgFailed}}
}

// ---------------------------------------------------------------------------
// Browsing
// ---------------------------------------------------------------------------

func (r *Router) start(ev wizard.Event) []wizard.Reply {
	reply := wizard.Reply{
		Text:    msgWelcome,
		Buttons: [][]wizard.Button{{button("🏙 Cities", command.Cities, "", "")}},
	}
	if r.isAdmin(ev.UserID) {
		reply.Buttons = append(reply.Buttons, []wizard.Button{button("⚙ Admin", command.Admin, "", "")})
	}
	return []wizard.Reply{reply}
}

func (r *Router) citiesView(ctx context.Context) []wizard.Reply {
	cities, err := r.cities.List(ctx)
	if err != nil {
		return r.failure(ctx, "list cities", err)
	}
	if len(cities) == 0 {
		return []wizard.Reply{{Text: msgNoCities}}
	}
	buttons := make([]wizard.Button, 0, len(cities))
	for _, c := range cities {
		buttons = append(buttons, button(c.Name, command.City, c.Key, ""))
	}
	return []wizard.Reply{{Text: "Choose a city:", Buttons: rows(buttons, 2)}}
}

func (r *Router) cityView(ctx context.Context, ev wizard.Event, key string) []wizard.Reply {
	c, err := r.cities.Get(ctx, key)
	if err != nil {
		return r.failure(ctx, "get city", err)
	}
	ids, err := r.places.CategoryIDs(ctx, key)
	if err != nil {
		return r.failure(ctx, "list city categories", err)
	}

	reply := wizard.Reply{Text: fmt.Sprintf("%s\n%d place(s)", c.Name, len(c.Places))}
	if c.Photo != nil {
		reply.Photo = c.Photo.URL
		if reply.Photo == "" {
			reply.Photo = c.Photo.SourceRef
		}
	}

	var buttons []wizard.Button
	for _, id := range ids {
		label := domain.FallbackCategoryName
		if cat, err := r.categories.Get(ctx, id); err == nil {
			label = cat.Label()
		} else if p := firstInCategory(c, id); p != nil && p.CategoryName != "" {
			label = strings.TrimSpace(p.CategoryEmoji + " " + p.CategoryName)
		}
		buttons = append(buttons, button(label, command.Category, key, "", strconv.Itoa(id)))
	}
	reply.Buttons = rows(buttons, 2)
	if len(ids) == 0 {
		reply.Text += "\nNo places yet."
	}

	if r.isAdmin(ev.UserID) {
		reply.Buttons = append(reply.Buttons,
			[]wizard.Button{
				button("➕ Add place", command.AddPlace, key, ""),
				button("✏ Rename", command.RenameCity, key, ""),
			},
			[]wizard.Button{
				button("🖼 Photo", command.CityPhoto, key, ""),
				button("🗑 Delete city", command.DeleteCity, key, ""),
			},
		)
	}
	reply.Buttons = append(reply.Buttons, []wizard.Button{button("« Cities", command.Cities, "", "")})
	return []wizard.Reply{reply}
}

func firstInCategory(c *domain.City, id int) *domain.Place {
	for i := range c.Places {
		if c.Places[i].CategoryID == id {
			return &c.Places[i]
		}
	}
	return nil
}

func (r *Router) categoryView(ctx context.Context, cmd command.Command) []wizard.Reply {
	id, err := strconv.Atoi(cmd.Param(0))
	if err != nil {
		return []wizard.Reply{{Text: msgExpired}}
	}
	places, err := r.places.ListByCategory(ctx, cmd.CityKey, id)
	if err != nil {
		return r.failure(ctx, "list places", err)
	}

	title := "Places"
	if len(places) > 0 {
		title = strings.TrimSpace(places[0].CategoryEmoji + " " + places[0].CategoryName)
	}
	buttons := make([]wizard.Button, 0, len(places))
	for _, p := range places {
		buttons = append(buttons, button(p.Name, command.Place, cmd.CityKey, p.ID))
	}
	reply := wizard.Reply{Text: title + ":", Buttons: rows(buttons, 1)}
	if len(places) == 0 {
		reply.Text = "No places in this category yet."
	}
	reply.Buttons = append(reply.Buttons, []wizard.Button{button("« Back", command.City, cmd.CityKey, "")})
	return []wizard.Reply{reply}
}

func (r *Router) placeView(ctx context.Context, ev wizard.Event, cityKey, placeID string) []wizard.Reply {
	p, err := r.places.Get(ctx, cityKey, placeID)
	if err != nil {
		return r.failure(ctx, "get place", err)
	}

	card := wizard.Reply{Text: placeCard(p), Buttons: placeLinks(p)}
	if len(p.Photos) > 0 {
		card.Photo = p.Photos[0].URL
		if card.Photo == "" {
			card.Photo = p.Photos[0].TelegramFileID
		}
	}
	if r.isAdmin(ev.UserID) {
		card.Buttons = append(card.Buttons, []wizard.Button{
			button("✏ Edit", command.EditPlace, cityKey, p.ID),
			button("🗑 Delete", command.DeletePlace, cityKey, p.ID),
		})
	}
	card.Buttons = append(card.Buttons, []wizard.Button{
		button("« Back", command.Category, cityKey, "", strconv.Itoa(p.CategoryID)),
	})

	replies := []wizard.Reply{card}
	if a, err := r.ads.Next(ctx); err == nil {
		replies = append(replies, adReply(a))
	} else if !errors.Is(err, domain.ErrNotFound) {
		r.log.WarnContext(ctx, "next ad", slog.String("error", err.Error()))
	}
	return replies
}

func adReply(a *domain.Ad) wizard.Reply {
	reply := wizard.Reply{Text: "📣 " + a.Text}
	if a.URL != "" {
		reply.Buttons = [][]wizard.Button{{wizard.URLButton("Open", a.URL)}}
	}
	return reply
}

// ---------------------------------------------------------------------------
// Admin
// ---------------------------------------------------------------------------

func (r *Router) adminView(ev wizard.Event) []wizard.Reply {
	if !r.isAdmin(ev.UserID) {
		return []wizard.Reply{{Text: msgForbidden}}
	}
	return []wizard.Reply{{
		Text: "Admin menu. Open a city to manage its places.",
		Buttons: [][]wizard.Button{
			{button("➕ Add city", command.AddCity, "", ""), button("🏙 Cities", command.Cities, "", "")},
			{button("🗂 Categories", command.Categories, "", ""), button("📣 Ads", command.Ads, "", "")},
		},
	}}
}

func (r *Router) categoriesView(ctx context.Context, ev wizard.Event) []wizard.Reply {
	if !r.isAdmin(ev.UserID) {
		return []wizard.Reply{{Text: msgForbidden}}
	}
	all, err := r.categories.List(ctx)
	if err != nil {
		return r.failure(ctx, "list categories", err)
	}

	var b strings.Builder
	b.WriteString("Categories:\n")
	reply := wizard.Reply{}
	for _, c := range all {
		b.WriteString("\n" + c.Label())
		if !c.IsCustom {
			b.WriteString(" (built-in)")
			continue
		}
		id := strconv.Itoa(c.ID)
		reply.Buttons = append(reply.Buttons, []wizard.Button{
			button("✏ "+c.Name, command.EditCategory, "", "", id),
			button("🗑 "+c.Name, command.DeleteCategory, "", "", id),
		})
	}
	reply.Text = b.String()
	reply.Buttons = append(reply.Buttons,
		[]wizard.Button{button("➕ Add category", command.AddCategory, "", "")},
		[]wizard.Button{button("« Admin", command.Admin, "", "")},
	)
	return []wizard.Reply{reply}
}

func (r *Router) adsView(ctx context.Context, ev wizard.Event) []wizard.Reply {
	if !r.isAdmin(ev.UserID) {
		return []wizard.Reply{{Text: msgForbidden}}
	}
	all, err := r.ads.List(ctx)
	if err != nil {
		return r.failure(ctx, "list ads", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ads: %d", len(all))
	reply := wizard.Reply{}
	for i, a := range all {
		fmt.Fprintf(&b, "\n\n%d. %s\n👁 %d", i+1, truncate(a.Text, 80), a.Views)
		reply.Buttons = append(reply.Buttons, []wizard.Button{
			button(fmt.Sprintf("🗑 Delete #%d", i+1), command.DeleteAd, "", "", a.ID),
		})
	}
	reply.Text = b.String()
	reply.Buttons = append(reply.Buttons,
		[]wizard.Button{button("➕ Add ad", command.AddAd, "", "")},
		[]wizard.Button{button("« Admin", command.Admin, "", "")},
	)
	return []wizard.Reply{reply}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
