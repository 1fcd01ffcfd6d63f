package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/conversation"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/geo"
	"github.com/heartmarshall/cityguide-bot/internal/service/place"
)

// textField describes one free-text place field.
type textField struct {
	field    string
	label    string
	maxLen   int
	required bool
	get      func(*domain.Place) *string
}

var (
	fieldName = textField{"name", "name", place.MaxNameLength, true,
		func(p *domain.Place) *string { return &p.Name }}
	fieldAddress = textField{"address", "address", place.MaxAddressLength, false,
		func(p *domain.Place) *string { return &p.Address }}
	fieldHours = textField{"working_hours", "working hours", place.MaxWorkingHoursLength, false,
		func(p *domain.Place) *string { return &p.WorkingHours }}
	fieldPrice = textField{"average_price", "average price", place.MaxPriceLength, false,
		func(p *domain.Place) *string { return &p.AveragePrice }}
	fieldDescription = textField{"description", "description", place.MaxDescriptionLength, false,
		func(p *domain.Place) *string { return &p.Description }}
)

// Field codes used by the edit flow's buttons.
const (
	editName        = "name"
	editAddress     = "addr"
	editHours       = "hours"
	editPrice       = "price"
	editDescription = "desc"
	editWebsite     = "web"
	editPhone       = "phone"
	editMap         = "map"
	editCategory    = "cat"
)

var editFields = []struct {
	code  string
	label string
}{
	{editName, "Name"},
	{editAddress, "Address"},
	{editHours, "Hours"},
	{editPrice, "Price"},
	{editDescription, "Description"},
	{editWebsite, "Website"},
	{editPhone, "Phone"},
	{editMap, "Map link"},
	{editCategory, "Category"},
}

var editTextFields = map[string]textField{
	editName:        fieldName,
	editAddress:     fieldAddress,
	editHours:       fieldHours,
	editPrice:       fieldPrice,
	editDescription: fieldDescription,
}

func (e *Engine) addPlaceFlow() flow {
	return flow{
		first: stepChooseCategory,
		begin: e.beginAddPlace,
		steps: map[string]step{
			stepChooseCategory: {prompt: e.promptChooseCategory, handle: e.handleChooseCategory},
			stepName: {
				prompt: e.promptStatic("Enter the place name:"),
				handle: e.handleText(fieldName, stepAddress),
			},
			stepAddress: {
				prompt: e.promptStatic("Enter the address, or skip:", skipRow()),
				handle: e.handleText(fieldAddress, stepWorkingHours),
			},
			stepWorkingHours: {
				prompt: e.promptStatic("Enter the working hours, or skip:", skipRow()),
				handle: e.handleText(fieldHours, stepPrice),
			},
			stepPrice: {
				prompt: e.promptStatic("Enter the average price, or skip:", skipRow()),
				handle: e.handleText(fieldPrice, stepDescription),
			},
			stepDescription: {
				prompt: e.promptStatic("Enter a description, or skip:", skipRow()),
				handle: e.handleText(fieldDescription, stepWebsite),
			},
			stepWebsite: {
				prompt: e.promptStatic("Enter the website, or skip:", skipRow()),
				handle: e.handleWebsite(stepPhone),
			},
			stepPhone: {
				prompt: e.promptStatic("Enter the phone number, or skip:", skipRow()),
				handle: e.handlePhone(stepMap),
			},
			stepMap: {
				prompt: e.promptStatic("Send a map link (Google or Yandex Maps), or skip:", skipRow()),
				handle: e.handleMap,
			},
			stepMapFailed: {
				prompt: e.promptStatic("Could not read coordinates from the link. Enter them manually or skip.",
					[]Button{CommandButton(labelManual, command.New(command.ManualCoords, "", ""))}, skipRow()),
				handle: e.handleMapFailed,
			},
			stepLatitudeManual: {
				prompt: e.promptStatic("Enter the latitude, e.g. 39.4699:", skipRow()),
				handle: e.handleLatitude,
			},
			stepLongitudeManual: {
				prompt: e.promptStatic("Enter the longitude, e.g. -0.3763:"),
				handle: e.handleLongitude,
			},
			stepSocial: {
				prompt: e.promptSocial,
				handle: e.handleSocial,
			},
			stepPhotos: {
				prompt: e.promptPhotos,
				handle: e.handlePhotos,
			},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			p, out, err := e.places.Add(ctx, st.CityKey, st.Draft.Place)
			if err != nil {
				return "", err
			}
			return savedText(fmt.Sprintf("Place %q added.", p.Name), out), nil
		},
	}
}

func (e *Engine) editPlaceFlow() flow {
	return flow{
		first: stepChooseField,
		begin: e.beginPlace,
		steps: map[string]step{
			stepChooseField:    {prompt: e.promptChooseField, handle: e.handleChooseField},
			stepChooseCategory: {prompt: e.promptChooseCategory, handle: e.handleChooseCategory},
			stepValue:          {prompt: e.promptValue, handle: e.handleValue},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			p, out, err := e.places.Update(ctx, st.CityKey, st.PlaceID, editedField(st))
			if err != nil {
				return "", err
			}
			return savedText(fmt.Sprintf("Place %q updated.", p.Name), out), nil
		},
	}
}

// editedField copies the one field the chat changed from its draft onto the
// stored place.
func editedField(st conversation.State) func(*domain.Place) error {
	draft := st.Draft.Place
	return func(p *domain.Place) error {
		if f, ok := editTextFields[st.Field]; ok {
			*f.get(p) = *f.get(&draft)
			return nil
		}
		switch st.Field {
		case editWebsite:
			p.Website = draft.Website
		case editPhone:
			p.Phone = draft.Phone
		case editMap:
			p.MapURL, p.GooglePlaceID = draft.MapURL, draft.GooglePlaceID
			p.Latitude, p.Longitude = draft.Latitude, draft.Longitude
		case editCategory:
			p.CategoryID = draft.CategoryID
		default:
			return domain.NewValidationError("field", "choose a field")
		}
		return nil
	}
}

func (e *Engine) deletePlaceFlow() flow {
	return flow{
		first: stepConfirmDelete,
		begin: e.beginPlace,
		steps: map[string]step{
			stepConfirmDelete: {
				prompt: func(ctx context.Context, st conversation.State) Reply {
					return Reply{
						Text:    fmt.Sprintf("Delete %q?", st.Draft.Place.Name),
						Buttons: [][]Button{confirmRow()},
					}
				},
				handle: func(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
					if err := confirmed(ev); err != nil {
						return transition{}, err
					}
					return transition{finish: true}, nil
				},
			},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			out, err := e.places.Delete(ctx, st.CityKey, st.PlaceID)
			if err != nil {
				return "", err
			}
			return savedText(fmt.Sprintf("Place %q deleted.", st.Draft.Place.Name), out), nil
		},
	}
}

// beginAddPlace checks the city and skips the category question when the
// flow was started from a category.
func (e *Engine) beginAddPlace(ctx context.Context, st *conversation.State, cmd command.Command) (string, error) {
	notice, err := e.beginCity(ctx, st, cmd)
	if err != nil {
		return "", err
	}
	st.Draft.Name = ""
	st.Draft.Place.SocialLinks = domain.SocialLinks{}
	st.Draft.Place.Photos = []domain.Photo{}

	if id, err := strconv.Atoi(cmd.Param(0)); err == nil && id > 0 {
		cat, err := e.categories.Get(ctx, id)
		if err != nil {
			return "", err
		}
		st.Draft.Place.SetCategory(*cat)
		st.Step = stepName
		notice += "\nCategory: " + cat.Label()
	}
	return notice, nil
}

func (e *Engine) beginPlace(ctx context.Context, st *conversation.State, cmd command.Command) (string, error) {
	p, err := e.places.Get(ctx, cmd.CityKey, cmd.PlaceID)
	if err != nil {
		return "", err
	}
	st.CityKey = cmd.CityKey
	st.PlaceID = p.ID
	st.Draft.Place = *p
	return "Place: " + p.Name, nil
}

// ---------------------------------------------------------------------------
// Category
// ---------------------------------------------------------------------------

func (e *Engine) promptChooseCategory(ctx context.Context, st conversation.State) Reply {
	r := Reply{Text: "Choose a category:"}
	cats, err := e.categories.List(ctx)
	if err != nil {
		e.log.WarnContext(ctx, "list categories for prompt", slog.String("error", err.Error()))
		r.Text = "Categories are unavailable right now. Type a category name:"
		return r
	}
	var row []Button
	for _, c := range cats {
		row = append(row, CommandButton(c.Label(), command.New(command.ChooseCategory, "", "", strconv.Itoa(c.ID))))
		if len(row) == 2 {
			r.Buttons = append(r.Buttons, row)
			row = nil
		}
	}
	if len(row) > 0 {
		r.Buttons = append(r.Buttons, row)
	}
	return r
}

// handleChooseCategory accepts a category button or a typed category name.
func (e *Engine) handleChooseCategory(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	var cat *domain.Category
	switch {
	case ev.action() == command.ChooseCategory:
		id, err := strconv.Atoi(ev.Command.Param(0))
		if err != nil {
			return transition{}, domain.NewValidationError("category_id", "choose a category")
		}
		if cat, err = e.categories.Get(ctx, id); err != nil {
			return transition{}, err
		}
	case ev.Command == nil && ev.Photo == nil && ev.text() != "":
		cats, err := e.categories.List(ctx)
		if err != nil {
			return transition{}, err
		}
		for i := range cats {
			if domain.SameName(cats[i].Name, ev.text()) {
				cat = &cats[i]
				break
			}
		}
		if cat == nil {
			return transition{}, domain.NewValidationError("category_id", "unknown category")
		}
	default:
		return transition{}, domain.NewValidationError("category_id", "choose a category")
	}

	st.Draft.Place.SetCategory(*cat)
	if st.Flow == FlowEditPlace {
		return transition{finish: true}, nil
	}
	return transition{next: stepName, notice: "Category: " + cat.Label()}, nil
}

// ---------------------------------------------------------------------------
// Text, website, phone
// ---------------------------------------------------------------------------

// handleText stores a text field. Optional fields accept skip and are left
// empty. An empty next finishes the flow.
func (e *Engine) handleText(f textField, next string) func(context.Context, *conversation.State, Event) (transition, error) {
	return func(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
		if ev.isSkip() {
			if f.required {
				return transition{}, domain.NewValidationError(f.field, "required")
			}
			*f.get(&st.Draft.Place) = ""
			return advance(next), nil
		}
		raw, err := textRequired(ev)
		if err != nil {
			return transition{}, err
		}
		value, err := place.ValidateText(f.field, raw, f.maxLen, f.required)
		if err != nil {
			return transition{}, err
		}
		*f.get(&st.Draft.Place) = value
		return advance(next), nil
	}
}

func (e *Engine) handleWebsite(next string) func(context.Context, *conversation.State, Event) (transition, error) {
	return func(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
		if ev.isSkip() {
			st.Draft.Place.Website = ""
			return advance(next), nil
		}
		raw, err := textRequired(ev)
		if err != nil {
			return transition{}, err
		}
		u, err := place.ValidateURL("website", raw)
		if err != nil {
			return transition{}, err
		}
		st.Draft.Place.Website = u
		return advance(next), nil
	}
}

func (e *Engine) handlePhone(next string) func(context.Context, *conversation.State, Event) (transition, error) {
	return func(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
		if ev.isSkip() {
			st.Draft.Place.Phone = ""
			return advance(next), nil
		}
		raw, err := textRequired(ev)
		if err != nil {
			return transition{}, err
		}
		phone, err := domain.ValidatePhone(raw)
		if err != nil {
			return transition{}, err
		}
		st.Draft.Place.Phone = phone
		return advance(next), nil
	}
}

func advance(next string) transition {
	if next == "" {
		return transition{finish: true}
	}
	return transition{next: next}
}

// ---------------------------------------------------------------------------
// Map and coordinates
// ---------------------------------------------------------------------------

func (e *Engine) handleMap(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	p := &st.Draft.Place
	if ev.isSkip() {
		p.MapURL, p.Latitude, p.Longitude, p.GooglePlaceID = "", nil, nil, ""
		return transition{next: stepSocial}, nil
	}
	found, err := e.setMapURL(ctx, p, ev)
	if err != nil {
		return transition{}, err
	}
	if !found {
		return transition{next: stepMapFailed}, nil
	}
	return transition{next: stepSocial, notice: coordinatesNotice(p)}, nil
}

// setMapURL validates the link and fills the coordinates it resolves to.
// Coordinates of a previous link are dropped.
func (e *Engine) setMapURL(ctx context.Context, p *domain.Place, ev Event) (bool, error) {
	raw, err := textRequired(ev)
	if err != nil {
		return false, err
	}
	u, err := place.ValidateURL("map_url", raw)
	if err != nil {
		return false, err
	}
	if u == "" {
		return false, domain.NewValidationError("map_url", "required")
	}
	p.MapURL = u
	p.Latitude, p.Longitude, p.GooglePlaceID = nil, nil, ""

	pt, ok := e.geo.Locate(ctx, u)
	if !ok {
		return false, nil
	}
	lat, lng := pt.Latitude, pt.Longitude
	p.Latitude, p.Longitude = &lat, &lng
	p.GooglePlaceID = pt.PlaceID
	return true, nil
}

func (e *Engine) handleMapFailed(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	switch {
	case ev.action() == command.ManualCoords:
		return transition{next: stepLatitudeManual}, nil
	case ev.isSkip():
		return transition{next: stepSocial}, nil
	}
	// a typed "lat, lng" pair is accepted directly
	if raw, err := textRequired(ev); err == nil {
		if lat, lng, ok := parseCoordinatePair(raw); ok {
			st.Draft.Place.Latitude, st.Draft.Place.Longitude = &lat, &lng
			return transition{next: stepSocial, notice: coordinatesNotice(&st.Draft.Place)}, nil
		}
	}
	return transition{}, domain.NewValidationError("input", "choose manual entry or skip")
}

// parseCoordinatePair reads "lat, lng" or "lat lng".
func parseCoordinatePair(raw string) (float64, float64, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		parts = strings.Fields(raw)
	}
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := geo.ParseLatitude(parts[0])
	if err != nil {
		return 0, 0, false
	}
	lng, err := geo.ParseLongitude(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func (e *Engine) handleLatitude(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	if ev.isSkip() {
		st.Draft.Place.Latitude, st.Draft.Place.Longitude = nil, nil
		return transition{next: stepSocial}, nil
	}
	raw, err := textRequired(ev)
	if err != nil {
		return transition{}, err
	}
	lat, err := geo.ParseLatitude(raw)
	if err != nil {
		return transition{}, domain.NewValidationError("latitude", "a number between -90 and 90")
	}
	st.Draft.Place.Latitude = &lat
	st.Draft.Place.Longitude = nil
	return transition{next: stepLongitudeManual}, nil
}

func (e *Engine) handleLongitude(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	raw, err := textRequired(ev)
	if err != nil {
		return transition{}, err
	}
	lng, err := geo.ParseLongitude(raw)
	if err != nil {
		return transition{}, domain.NewValidationError("longitude", "a number between -180 and 180")
	}
	st.Draft.Place.Longitude = &lng
	return transition{next: stepSocial, notice: coordinatesNotice(&st.Draft.Place)}, nil
}

func coordinatesNotice(p *domain.Place) string {
	if !p.HasCoordinates() {
		return ""
	}
	return fmt.Sprintf("📍 %.6f, %.6f", *p.Latitude, *p.Longitude)
}

// ---------------------------------------------------------------------------
// Social links and photos
// ---------------------------------------------------------------------------

func (e *Engine) promptSocial(ctx context.Context, st conversation.State) Reply {
	text := "Send social links one per message. Press Done when finished."
	if n := len(st.Draft.Place.SocialLinks); n > 0 {
		text = fmt.Sprintf("%d link(s) added. Send another or press Done.", n)
	}
	return Reply{Text: text, Buttons: [][]Button{doneRow()}}
}

func (e *Engine) handleSocial(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	if ev.isDone() || ev.isSkip() {
		return transition{next: stepPhotos}, nil
	}
	raw, err := textRequired(ev)
	if err != nil {
		return transition{}, err
	}
	links := st.Draft.Place.SocialLinks
	if len(links) >= place.MaxSocialLinks {
		return transition{}, domain.NewValidationError("social_links", fmt.Sprintf("max %d links, press Done", place.MaxSocialLinks))
	}
	var added []string
	for _, part := range strings.Fields(raw) {
		u, err := place.ValidateURL("social_links", part)
		if err != nil {
			return transition{}, err
		}
		if u == "" || containsURL(links, u) {
			continue
		}
		if links == nil {
			links = domain.SocialLinks{}
		}
		added = append(added, links.Add(u))
	}
	if len(links) > place.MaxSocialLinks {
		return transition{}, domain.NewValidationError("social_links", fmt.Sprintf("max %d links", place.MaxSocialLinks))
	}
	st.Draft.Place.SocialLinks = links
	if len(added) == 0 {
		return transition{notice: "Already added."}, nil
	}
	return transition{notice: "Added: " + strings.Join(added, ", ")}, nil
}

func containsURL(links domain.SocialLinks, u string) bool {
	for _, v := range links {
		if v == u {
			return true
		}
	}
	return false
}

func (e *Engine) promptPhotos(ctx context.Context, st conversation.State) Reply {
	text := "Send photos of the place. Press Done when finished."
	if n := len(st.Draft.Place.Photos); n > 0 {
		text = fmt.Sprintf("%d photo(s) added. Send another or press Done.", n)
	}
	return Reply{Text: text, Buttons: [][]Button{doneRow()}}
}

func (e *Engine) handlePhotos(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	if ev.isDone() || ev.isSkip() {
		return transition{finish: true}, nil
	}
	if ev.Photo == nil {
		return transition{}, domain.NewValidationError("photo", "send a photo or press Done")
	}
	if len(st.Draft.Place.Photos) >= place.MaxPhotos {
		return transition{}, domain.NewValidationError("photos", fmt.Sprintf("max %d photos, press Done", place.MaxPhotos))
	}
	url, name := e.media.Ingest(ctx, ev.Photo.FileID)
	st.Draft.Place.Photos = append(st.Draft.Place.Photos, domain.Photo{
		URL:            url,
		FileName:       name,
		UploadedAt:     e.now(),
		TelegramFileID: ev.Photo.FileID,
	})
	return transition{}, nil
}

// ---------------------------------------------------------------------------
// Edit
// ---------------------------------------------------------------------------

func (e *Engine) promptChooseField(ctx context.Context, st conversation.State) Reply {
	r := Reply{Text: "What do you want to change?"}
	var row []Button
	for _, f := range editFields {
		row = append(row, CommandButton(f.label, command.New(command.EditField, "", "", f.code)))
		if len(row) == 3 {
			r.Buttons = append(r.Buttons, row)
			row = nil
		}
	}
	if len(row) > 0 {
		r.Buttons = append(r.Buttons, row)
	}
	return r
}

func (e *Engine) handleChooseField(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	if ev.action() != command.EditField {
		return transition{}, domain.NewValidationError("field", "choose a field")
	}
	code := ev.Command.Param(0)
	switch code {
	case editCategory:
		st.Field = code
		return transition{next: stepChooseCategory}, nil
	case editName, editAddress, editHours, editPrice, editDescription, editWebsite, editPhone, editMap:
		st.Field = code
		return transition{next: stepValue}, nil
	}
	return transition{}, domain.NewValidationError("field", "choose a field")
}

func (e *Engine) promptValue(ctx context.Context, st conversation.State) Reply {
	p := st.Draft.Place
	var label, current string
	if f, ok := editTextFields[st.Field]; ok {
		label, current = f.label, *f.get(&p)
	} else {
		switch st.Field {
		case editWebsite:
			label, current = "website", p.Website
		case editPhone:
			label, current = "phone", p.Phone
		case editMap:
			label, current = "map link", p.MapURL
		}
	}
	if current == "" {
		current = "not set"
	}
	r := Reply{Text: fmt.Sprintf("Current %s: %s\nEnter the new value:", label, current)}
	if st.Field != editName {
		r.Text = fmt.Sprintf("Current %s: %s\nEnter the new value, or skip to clear it:", label, current)
		r.Buttons = [][]Button{skipRow()}
	}
	return r
}

func (e *Engine) handleValue(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	if f, ok := editTextFields[st.Field]; ok {
		return e.handleText(f, "")(ctx, st, ev)
	}
	switch st.Field {
	case editWebsite:
		return e.handleWebsite("")(ctx, st, ev)
	case editPhone:
		return e.handlePhone("")(ctx, st, ev)
	case editMap:
		p := &st.Draft.Place
		if ev.isSkip() {
			p.MapURL, p.Latitude, p.Longitude, p.GooglePlaceID = "", nil, nil, ""
			return transition{finish: true}, nil
		}
		if _, err := e.setMapURL(ctx, p, ev); err != nil {
			return transition{}, err
		}
		return transition{finish: true}, nil
	}
	return transition{}, domain.NewValidationError("field", "choose a field")
}
