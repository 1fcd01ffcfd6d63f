package wizard

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/conversation"
	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/datasync/storetest"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/geo"
	"github.com/heartmarshall/cityguide-bot/internal/service/ad"
	"github.com/heartmarshall/cityguide-bot/internal/service/category"
	"github.com/heartmarshall/cityguide-bot/internal/service/city"
	"github.com/heartmarshall/cityguide-bot/internal/service/place"
)

const chat = int64(42)

type fakeLocator struct {
	point geo.Point
	ok    bool
}

func (l *fakeLocator) Locate(context.Context, string) (geo.Point, bool) { return l.point, l.ok }

type fakeMedia struct {
	mu       sync.Mutex
	fetchErr error
	uploaded []string
}

func (m *fakeMedia) Fetch(_ context.Context, fileID string) ([]byte, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return []byte("\xff\xd8\xff\xe0" + fileID), nil
}

func (m *fakeMedia) Upload(_ context.Context, name string, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = append(m.uploaded, name)
	return "https://media.example/" + name, nil
}

type fixture struct {
	primary  *storetest.Memory
	fallback *storetest.Memory
	coord    *datasync.Coordinator
	states   *conversation.Store
	engine   *Engine
	geo      *fakeLocator
	media    *fakeMedia

	cities     *city.Service
	places     *place.Service
	categories *category.Service
	ads        *ad.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	f := &fixture{
		primary:  storetest.New("authoritative"),
		fallback: storetest.New("fallback"),
		states:   conversation.NewStore(0, log),
		geo:      &fakeLocator{},
		media:    &fakeMedia{},
	}
	f.coord = datasync.New(f.primary, f.fallback, datasync.Options{Policy: datasync.DefaultPolicy}, log)
	t.Cleanup(f.coord.Wait)

	f.cities = city.NewService(log, f.coord)
	f.places = place.NewService(log, f.coord, f.coord)
	f.categories = category.NewService(log, f.coord, f.coord)
	f.ads = ad.NewService(log, f.coord)

	ctx := context.Background()
	_, err := f.categories.EnsureBuiltins(ctx)
	require.NoError(t, err)
	_, _, err = f.cities.Add(ctx, "Valencia", city.PhotoInput{})
	require.NoError(t, err)

	f.engine = NewEngine(log, f.states, Deps{
		Cities:     f.cities,
		Places:     f.places,
		Categories: f.categories,
		Ads:        f.ads,
		Geo:        f.geo,
		Media:      NewMedia(log, f.media, f.media, 0),
	})
	return f
}

func (f *fixture) writes() int {
	f.coord.Wait()
	return f.primary.Writes() + f.fallback.Writes()
}

func (f *fixture) start(t *testing.T, flow string, cmd command.Command) Reply {
	t.Helper()
	replies := f.engine.Start(context.Background(), chat, flow, cmd)
	require.Len(t, replies, 1)
	return replies[0]
}

func (f *fixture) send(t *testing.T, ev Event) Reply {
	t.Helper()
	ev.ChatID = chat
	replies, ok := f.engine.Handle(context.Background(), ev)
	require.True(t, ok, "no active flow")
	require.Len(t, replies, 1)
	return replies[0]
}

func (f *fixture) step(t *testing.T) string {
	t.Helper()
	st, ok := f.states.Get(chat)
	require.True(t, ok, "no active flow")
	return st.Step
}

func (f *fixture) seedPlace(t *testing.T, name string, categoryID int) *domain.Place {
	t.Helper()
	p, _, err := f.places.Add(context.Background(), "valencia", domain.Place{Name: name, CategoryID: categoryID})
	require.NoError(t, err)
	return p
}

func text(s string) Event { return Event{Text: s} }

func press(action command.Action, params ...string) Event {
	cmd := command.New(action, "", "", params...)
	return Event{Command: &cmd}
}

func photo(fileID string) Event { return Event{Photo: &Photo{FileID: fileID}} }

func hasButton(r Reply, action command.Action) bool {
	for _, row := range r.Buttons {
		for _, b := range row {
			if b.Command != nil && b.Command.Action == action {
				return true
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Add place
// ---------------------------------------------------------------------------

func TestAddPlace_FullFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.geo.point, f.geo.ok = geo.Point{Latitude: 39.4699, Longitude: -0.3763, PlaceID: "ChIJabc"}, true

	r := f.start(t, FlowAddPlace, command.New(command.AddPlace, "valencia", ""))
	assert.True(t, hasButton(r, command.ChooseCategory))
	assert.True(t, hasButton(r, command.Cancel))

	f.send(t, press(command.ChooseCategory, "2"))
	assert.Equal(t, stepName, f.step(t))

	f.send(t, text("  Mercado   Central "))
	f.send(t, text("Plaza de la Ciudad de Brujas"))
	f.send(t, text("-"))
	f.send(t, text("10 EUR"))
	f.send(t, text("/skip"))
	f.send(t, text("mercadocentral.es/"))
	f.send(t, text("+34 600 123 456"))

	r = f.send(t, text("https://maps.google.com/?q=39.4699,-0.3763"))
	assert.Equal(t, stepSocial, f.step(t))
	assert.Contains(t, r.Text, "39.469900")

	r = f.send(t, text("instagram.com/mercado//"))
	assert.Contains(t, r.Text, "Instagram")
	assert.Equal(t, stepSocial, f.step(t))
	f.send(t, text("/done"))
	assert.Equal(t, stepPhotos, f.step(t))

	f.send(t, photo("AgAD1"))
	assert.Equal(t, stepPhotos, f.step(t))
	r = f.send(t, press(command.Done))
	assert.Contains(t, r.Text, `"Mercado Central" added`)
	assert.False(t, f.engine.Active(chat))

	stored, err := f.primary.GetCity(context.Background(), "valencia")
	require.NoError(t, err)
	require.Len(t, stored.Places, 1)
	p := stored.Places[0]
	assert.Equal(t, "Mercado Central", p.Name)
	assert.Equal(t, "Cafes", p.CategoryName)
	assert.Equal(t, "", p.WorkingHours)
	assert.Equal(t, "", p.Description)
	assert.Equal(t, "https://mercadocentral.es", p.Website)
	assert.Equal(t, "+34 600 123 456", p.Phone)
	require.True(t, p.HasCoordinates())
	assert.InDelta(t, 39.4699, *p.Latitude, 1e-9)
	assert.Equal(t, "ChIJabc", p.GooglePlaceID)
	assert.Equal(t, "https://instagram.com/mercado", p.SocialLinks["Instagram"])
	require.Len(t, p.Photos, 1)
	assert.Equal(t, "AgAD1", p.Photos[0].TelegramFileID)
	assert.True(t, strings.HasPrefix(p.Photos[0].URL, "https://media.example/"))
}

func TestAddPlace_StartedFromCategorySkipsQuestion(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	r := f.start(t, FlowAddPlace, command.New(command.AddPlace, "valencia", "", "3"))
	assert.Equal(t, stepName, f.step(t))
	assert.Contains(t, r.Text, "Bars")
}

func TestAddPlace_MapFailureManualCoordinates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddPlace, command.New(command.AddPlace, "valencia", "", "1"))
	for _, in := range []string{"Casa Montaña", "-", "-", "-", "-", "-", "-"} {
		f.send(t, text(in))
	}
	r := f.send(t, text("https://maps.app.goo.gl/xyz"))
	assert.Equal(t, stepMapFailed, f.step(t))
	assert.True(t, hasButton(r, command.ManualCoords))

	f.send(t, press(command.ManualCoords))
	assert.Equal(t, stepLatitudeManual, f.step(t))

	r = f.send(t, text("95"))
	assert.Contains(t, r.Text, "⚠")
	assert.Equal(t, stepLatitudeManual, f.step(t))

	f.send(t, text("39,4699"))
	f.send(t, text("-0.3763"))
	assert.Equal(t, stepSocial, f.step(t))
	f.send(t, press(command.Done))
	f.send(t, press(command.Done))

	got, err := f.places.List(context.Background(), "valencia")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].HasCoordinates())
	assert.InDelta(t, 39.4699, *got[0].Latitude, 1e-9)
	assert.InDelta(t, -0.3763, *got[0].Longitude, 1e-9)
	assert.Equal(t, "https://maps.app.goo.gl/xyz", got[0].MapURL)
}

func TestAddPlace_MapFailureTypedPairAndSkip(t *testing.T) {
	t.Parallel()

	t.Run("typed pair", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.start(t, FlowAddPlace, command.New(command.AddPlace, "valencia", "", "1"))
		for _, in := range []string{"Casa", "-", "-", "-", "-", "-", "-", "https://maps.app.goo.gl/xyz"} {
			f.send(t, text(in))
		}
		f.send(t, text("39.47, -0.37"))
		assert.Equal(t, stepSocial, f.step(t))
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.start(t, FlowAddPlace, command.New(command.AddPlace, "valencia", "", "1"))
		for _, in := range []string{"Casa", "-", "-", "-", "-", "-", "-", "https://maps.app.goo.gl/xyz"} {
			f.send(t, text(in))
		}
		f.send(t, press(command.Skip))
		assert.Equal(t, stepSocial, f.step(t))
		st, _ := f.states.Get(chat)
		assert.False(t, st.Draft.Place.HasCoordinates())
	})
}

func TestAddPlace_ValidationErrorKeepsStepAndDraft(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddPlace, command.New(command.AddPlace, "valencia", "", "1"))
	before, _ := f.states.Get(chat)

	tests := []struct {
		name string
		ev   Event
	}{
		{"blank", text("   ")},
		{"skip on required", text("-")},
		{"too long", text(strings.Repeat("a", place.MaxNameLength+1))},
		{"photo instead of text", photo("AgAD")},
		{"button instead of text", press(command.Done)},
	}
	for _, tt := range tests {
		r := f.send(t, tt.ev)
		assert.Contains(t, r.Text, "⚠", tt.name)
		after, _ := f.states.Get(chat)
		assert.Equal(t, before, after, tt.name)
	}
}

func TestAddPlace_PhotoUploadFailureKeepsFileID(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.media.fetchErr = errors.New("telegram timeout")

	f.start(t, FlowAddPlace, command.New(command.AddPlace, "valencia", "", "1"))
	for _, in := range []string{"Casa", "-", "-", "-", "-", "-", "-", "-", "/done"} {
		f.send(t, text(in))
	}
	f.send(t, photo("AgAD9"))
	f.send(t, text("/done"))

	got, err := f.places.List(context.Background(), "valencia")
	require.NoError(t, err)
	require.Len(t, got[0].Photos, 1)
	assert.Equal(t, "", got[0].Photos[0].URL)
	assert.Equal(t, "AgAD9", got[0].Photos[0].TelegramFileID)
}

func TestAddPlace_SocialLinkLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddPlace, command.New(command.AddPlace, "valencia", "", "1"))
	for _, in := range []string{"Casa", "-", "-", "-", "-", "-", "-", "-"} {
		f.send(t, text(in))
	}
	for i := range place.MaxSocialLinks {
		f.send(t, text("https://example" + strconv.Itoa(i) + ".com"))
	}
	r := f.send(t, text("https://one-more.com"))
	assert.Contains(t, r.Text, "⚠")
	st, _ := f.states.Get(chat)
	assert.Len(t, st.Draft.Place.SocialLinks, place.MaxSocialLinks)
}

func TestAddPlace_UnknownCity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	r := f.start(t, FlowAddPlace, command.New(command.AddPlace, "atlantis", ""))
	assert.Contains(t, r.Text, "Not found")
	assert.False(t, f.engine.Active(chat))
}

// ---------------------------------------------------------------------------
// Cancellation
// ---------------------------------------------------------------------------

func TestCancel_AtEveryStepWritesNothing(t *testing.T) {
	t.Parallel()

	flows := []struct {
		flow   string
		cmd    func(f *fixture, t *testing.T) command.Command
		inputs []Event
	}{
		{
			flow:   FlowAddCity,
			cmd:    func(*fixture, *testing.T) command.Command { return command.New(command.AddCity, "", "") },
			inputs: []Event{text("Tbilisi")},
		},
		{
			flow:   FlowDeleteCity,
			cmd:    func(*fixture, *testing.T) command.Command { return command.New(command.DeleteCity, "valencia", "") },
			inputs: nil,
		},
		{
			flow: FlowAddPlace,
			cmd:  func(*fixture, *testing.T) command.Command { return command.New(command.AddPlace, "valencia", "") },
			inputs: []Event{
				press(command.ChooseCategory, "1"), text("Casa"), text("Calle 1"), text("9-18"),
				text("10"), text("Nice"), text("casa.es"), text("+34 600 000 000"),
				text("https://maps.app.goo.gl/x"), press(command.ManualCoords), text("39.4"), text("-0.3"),
				text("instagram.com/casa"), press(command.Done), photo("AgAD"),
			},
		},
		{
			flow: FlowEditPlace,
			cmd: func(f *fixture, t *testing.T) command.Command {
				p := f.seedPlace(t, "Casa", 1)
				return command.New(command.EditPlace, "valencia", p.ID)
			},
			inputs: []Event{press(command.EditField, "phone")},
		},
		{
			flow:   FlowAddCategory,
			cmd:    func(*fixture, *testing.T) command.Command { return command.New(command.AddCategory, "", "") },
			inputs: []Event{text("Vegan")},
		},
		{
			flow:   FlowAddAd,
			cmd:    func(*fixture, *testing.T) command.Command { return command.New(command.AddAd, "", "") },
			inputs: []Event{text("Spring sale")},
		},
	}

	for _, fl := range flows {
		for n := 0; n <= len(fl.inputs); n++ {
			t.Run(fl.flow+"/"+strconv.Itoa(n), func(t *testing.T) {
				t.Parallel()
				f := newFixture(t)
				cmd := fl.cmd(f, t)
				f.start(t, fl.flow, cmd)
				for _, ev := range fl.inputs[:n] {
					f.send(t, ev)
				}
				require.True(t, f.engine.Active(chat))
				before := f.writes()

				r := f.send(t, text("/cancel"))
				assert.Equal(t, msgCancelled, r.Text)
				assert.False(t, f.engine.Active(chat))
				assert.Equal(t, before, f.writes())
			})
		}
	}
}

func TestCancel_ButtonAndNoFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddCity, command.New(command.AddCity, "", ""))
	r := f.send(t, press(command.Cancel))
	assert.Equal(t, msgCancelled, r.Text)

	r, active := f.engine.Cancel(context.Background(), chat)
	assert.False(t, active)
	assert.Equal(t, msgNothingToCancel, r.Text)
}

func TestHandle_NoFlowIsNotHandled(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	replies, ok := f.engine.Handle(context.Background(), Event{ChatID: chat, Text: "hello"})
	assert.False(t, ok)
	assert.Nil(t, replies)
}

// ---------------------------------------------------------------------------
// Completion
// ---------------------------------------------------------------------------

type hookedCities struct {
	*city.Service
	beforeAdd func()
}

func (h *hookedCities) Add(ctx context.Context, rawName string, p city.PhotoInput) (*domain.City, datasync.Outcome, error) {
	h.beforeAdd()
	return h.Service.Add(ctx, rawName, p)
}

func TestFinish_StaleCompletionIsDiscarded(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	hooked := &hookedCities{Service: f.cities}
	f.engine.cities = hooked
	hooked.beforeAdd = func() {
		// the user cancels and starts another flow while the save is in flight
		f.states.Delete(chat)
		f.states.Begin(chat, FlowAddAd, stepAdText)
	}

	f.start(t, FlowAddCity, command.New(command.AddCity, "", ""))
	f.send(t, text("Tbilisi"))
	replies, ok := f.engine.Handle(context.Background(), Event{ChatID: chat, Text: "-"})
	assert.True(t, ok)
	assert.Empty(t, replies)

	st, active := f.states.Get(chat)
	require.True(t, active)
	assert.Equal(t, FlowAddAd, st.Flow)
}

func TestFinish_FailureClearsState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddCity, command.New(command.AddCity, "", ""))
	f.send(t, text("Tbilisi"))
	f.primary.SetDown(true)
	f.fallback.SetDown(true)

	r := f.send(t, press(command.Skip))
	assert.Contains(t, r.Text, "Storage is unavailable")
	assert.False(t, f.engine.Active(chat))
}

func TestFinish_DegradedSaveSaysLocal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddCity, command.New(command.AddCity, "", ""))
	f.send(t, text("Tbilisi"))
	f.primary.SetDown(true)

	r := f.send(t, photo("AgADcover"))
	assert.Contains(t, r.Text, msgSavedLocally)

	got, err := f.fallback.GetCity(context.Background(), "tbilisi")
	require.NoError(t, err)
	require.NotNil(t, got.Photo)
	assert.Equal(t, "AgADcover", got.Photo.SourceRef)
}

func TestAddCity_Duplicate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddCity, command.New(command.AddCity, "", ""))
	f.send(t, text("VALENCIA"))
	r := f.send(t, text("-"))
	assert.Contains(t, r.Text, "already taken")
	assert.False(t, f.engine.Active(chat))
}

func TestStart_ReplacesActiveFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddCity, command.New(command.AddCity, "", ""))
	f.start(t, FlowAddAd, command.New(command.AddAd, "", ""))

	st, ok := f.states.Get(chat)
	require.True(t, ok)
	assert.Equal(t, FlowAddAd, st.Flow)
	assert.Equal(t, stepAdText, st.Step)
}

// ---------------------------------------------------------------------------
// Cities
// ---------------------------------------------------------------------------

func TestRenameCity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	r := f.start(t, FlowRenameCity, command.New(command.RenameCity, "valencia", ""))
	assert.Contains(t, r.Text, "Valencia")
	f.send(t, text("València Centre"))

	got, err := f.cities.Get(context.Background(), "valencia")
	require.NoError(t, err)
	assert.Equal(t, "València Centre", got.Name)
}

func TestCityPhoto_SkipRemoves(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.cities.SetPhoto(ctx, "valencia", city.PhotoInput{SourceRef: "AgADold"})
	require.NoError(t, err)

	f.start(t, FlowCityPhoto, command.New(command.CityPhoto, "valencia", ""))
	r := f.send(t, text("-"))
	assert.Contains(t, r.Text, "removed")

	got, err := f.cities.Get(ctx, "valencia")
	require.NoError(t, err)
	assert.Nil(t, got.Photo)
}

func TestDeleteCity_RequiresConfirmation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	r := f.start(t, FlowDeleteCity, command.New(command.DeleteCity, "valencia", ""))
	assert.True(t, hasButton(r, command.Confirm))

	r = f.send(t, text("no"))
	assert.Contains(t, r.Text, "⚠")
	f.send(t, press(command.Confirm))

	_, err := f.cities.Get(context.Background(), "valencia")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Edit / delete place
// ---------------------------------------------------------------------------

func TestEditPlace_Fields(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedPlace(t, "Casa", 1)

	f.start(t, FlowEditPlace, command.New(command.EditPlace, "valencia", p.ID))
	f.send(t, press(command.EditField, "phone"))
	assert.Equal(t, stepValue, f.step(t))
	f.send(t, text("+995 555 12 34 56"))

	got, err := f.places.Get(ctx, "valencia", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "+995 555 12 34 56", got.Phone)
	assert.Equal(t, "Casa", got.Name)

	f.start(t, FlowEditPlace, command.New(command.EditPlace, "valencia", p.ID))
	f.send(t, press(command.EditField, "cat"))
	assert.Equal(t, stepChooseCategory, f.step(t))
	f.send(t, text("bars"))

	got, err = f.places.Get(ctx, "valencia", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CategoryID)
	assert.Equal(t, "Bars", got.CategoryName)
	assert.Equal(t, p.CreatedAt, got.CreatedAt)
}

func TestEditPlace_MapLinkRefreshesCoordinates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	p := f.seedPlace(t, "Casa", 1)
	f.geo.point, f.geo.ok = geo.Point{Latitude: 41.7, Longitude: 44.8}, true

	f.start(t, FlowEditPlace, command.New(command.EditPlace, "valencia", p.ID))
	f.send(t, press(command.EditField, "map"))
	f.send(t, text("https://maps.google.com/@41.7,44.8,15z"))

	got, err := f.places.Get(context.Background(), "valencia", p.ID)
	require.NoError(t, err)
	require.True(t, got.HasCoordinates())
	assert.InDelta(t, 44.8, *got.Longitude, 1e-9)
}

func TestEditPlace_NameCannotBeCleared(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	p := f.seedPlace(t, "Casa", 1)

	f.start(t, FlowEditPlace, command.New(command.EditPlace, "valencia", p.ID))
	f.send(t, press(command.EditField, "name"))
	r := f.send(t, text("-"))
	assert.Contains(t, r.Text, "⚠")
	assert.Equal(t, stepValue, f.step(t))
}

func TestEditPlace_KeepsCategoryRenamedMidEdit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	cat, _, err := f.categories.Add(ctx, category.Input{Name: "Vegan", Emoji: "🥦"})
	require.NoError(t, err)
	p := f.seedPlace(t, "Casa", cat.ID)

	f.start(t, FlowEditPlace, command.New(command.EditPlace, "valencia", p.ID))
	f.send(t, press(command.EditField, "phone"))

	_, res, err := f.categories.Update(ctx, cat.ID, category.Input{Name: "Plant based", Emoji: "🌱"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)

	f.send(t, text("+995 555 12 34 56"))

	got, err := f.places.Get(ctx, "valencia", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "+995 555 12 34 56", got.Phone)
	assert.Equal(t, "Plant based", got.CategoryName)
	assert.Equal(t, "🌱", got.CategoryEmoji)
}

func TestEditPlace_KeepsFieldsEditedInAnotherChat(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedPlace(t, "Casa", 1)

	f.start(t, FlowEditPlace, command.New(command.EditPlace, "valencia", p.ID))
	f.send(t, press(command.EditField, "name"))

	_, _, err := f.places.Update(ctx, "valencia", p.ID, func(p *domain.Place) error {
		p.Address = "Carrer de la Pau 1"
		return nil
	})
	require.NoError(t, err)

	f.send(t, text("Casa Nova"))

	got, err := f.places.Get(ctx, "valencia", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casa Nova", got.Name)
	assert.Equal(t, "Carrer de la Pau 1", got.Address)
}

func TestDeletePlace(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	p := f.seedPlace(t, "Casa", 1)

	f.start(t, FlowDeletePlace, command.New(command.DeletePlace, "valencia", p.ID))
	r := f.send(t, text("yes"))
	assert.Contains(t, r.Text, "deleted")

	_, err := f.places.Get(context.Background(), "valencia", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Categories and ads
// ---------------------------------------------------------------------------

func TestAddCategory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	f.start(t, FlowAddCategory, command.New(command.AddCategory, "", ""))
	f.send(t, text("  Vegan  "))
	r := f.send(t, text("🥦"))
	assert.Contains(t, r.Text, "🥦 Vegan")

	custom, err := f.categories.Custom(context.Background())
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, "Vegan", custom[0].Name)
}

func TestEditCategory_FansOutAndKeepsSkippedFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	vegan, _, err := f.categories.Add(ctx, category.Input{Name: "Vegan", Emoji: "🥦"})
	require.NoError(t, err)
	p := f.seedPlace(t, "Green Bowl", vegan.ID)

	f.start(t, FlowEditCategory, command.New(command.EditCategory, "", "", strconv.Itoa(vegan.ID)))
	f.send(t, text("Plant based"))
	r := f.send(t, text("-"))
	assert.Contains(t, r.Text, "1 place(s) refreshed")

	got, err := f.places.Get(ctx, "valencia", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plant based", got.CategoryName)
	assert.Equal(t, "🥦", got.CategoryEmoji)
}

func TestEditCategory_BuiltinRefused(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	r := f.start(t, FlowEditCategory, command.New(command.EditCategory, "", "", "2"))
	assert.Contains(t, r.Text, "Built-in")
	assert.False(t, f.engine.Active(chat))
}

func TestDeleteCategory_MovesPlacesToOther(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	vegan, _, err := f.categories.Add(ctx, category.Input{Name: "Vegan"})
	require.NoError(t, err)
	p := f.seedPlace(t, "Green Bowl", vegan.ID)

	f.start(t, FlowDeleteCategory, command.New(command.DeleteCategory, "", "", strconv.Itoa(vegan.ID)))
	r := f.send(t, press(command.Confirm))
	assert.Contains(t, r.Text, "1 place(s) moved")

	got, err := f.places.Get(ctx, "valencia", p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FallbackCategoryName, got.CategoryName)
	_, err = f.categories.Get(ctx, vegan.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddAndDeleteAd(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	f.start(t, FlowAddAd, command.New(command.AddAd, "", ""))
	f.send(t, text("Spring sale\nat the market"))
	r := f.send(t, text("market.es/sale/"))
	assert.Contains(t, r.Text, "Ad added")

	ads, err := f.ads.List(ctx)
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, "https://market.es/sale", ads[0].URL)

	r = f.start(t, FlowDeleteAd, command.New(command.DeleteAd, "", "", ads[0].ID))
	assert.Contains(t, r.Text, "Spring sale")
	f.send(t, press(command.Confirm))

	ads, err = f.ads.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ads)
}
