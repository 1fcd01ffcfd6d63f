package wizard

import (
	"context"
	"fmt"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/conversation"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/service/city"
)

func (e *Engine) addCityFlow() flow {
	return flow{
		first: stepCityName,
		steps: map[string]step{
			stepCityName: {
				prompt: e.promptStatic("Enter the city name:"),
				handle: e.handleCityName(stepCityPhoto),
			},
			stepCityPhoto: {
				prompt: e.promptCityPhoto,
				handle: e.handleCityPhoto,
			},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			c, out, err := e.cities.Add(ctx, st.Draft.Name, photoInput(st.Draft.Photo))
			if err != nil {
				return "", err
			}
			return savedText(fmt.Sprintf("City %q added.", c.Name), out), nil
		},
	}
}

func (e *Engine) renameCityFlow() flow {
	return flow{
		first: stepCityName,
		begin: e.beginCity,
		steps: map[string]step{
			stepCityName: {
				prompt: e.promptStatic("Enter the new city name:"),
				handle: e.handleCityName(""),
			},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			out, err := e.cities.Rename(ctx, st.CityKey, st.Draft.Name)
			if err != nil {
				return "", err
			}
			return savedText(fmt.Sprintf("City renamed to %q.", st.Draft.Name), out), nil
		},
	}
}

func (e *Engine) cityPhotoFlow() flow {
	return flow{
		first: stepCityPhoto,
		begin: e.beginCity,
		steps: map[string]step{
			stepCityPhoto: {
				prompt: e.promptCityPhoto,
				handle: e.handleCityPhoto,
			},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			out, err := e.cities.SetPhoto(ctx, st.CityKey, photoInput(st.Draft.Photo))
			if err != nil {
				return "", err
			}
			if st.Draft.Photo == nil {
				return savedText("City photo removed.", out), nil
			}
			return savedText("City photo updated.", out), nil
		},
	}
}

func (e *Engine) deleteCityFlow() flow {
	return flow{
		first: stepConfirm,
		begin: e.beginCity,
		steps: map[string]step{
			stepConfirm: {
				prompt: func(ctx context.Context, st conversation.State) Reply {
					return Reply{
						Text:    fmt.Sprintf("Delete %q together with all its places?", st.Draft.Name),
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
			out, err := e.cities.Delete(ctx, st.CityKey)
			if err != nil {
				return "", err
			}
			return savedText(fmt.Sprintf("City %q deleted.", st.Draft.Name), out), nil
		},
	}
}

// beginCity loads the city named by the command.
func (e *Engine) beginCity(ctx context.Context, st *conversation.State, cmd command.Command) (string, error) {
	c, err := e.cities.Get(ctx, cmd.CityKey)
	if err != nil {
		return "", err
	}
	st.CityKey = c.Key
	st.Draft.Name = c.Name
	return "City: " + c.Name, nil
}

// handleCityName validates the name and moves to next, or finishes when
// next is empty.
func (e *Engine) handleCityName(next string) func(context.Context, *conversation.State, Event) (transition, error) {
	return func(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
		raw, err := textRequired(ev)
		if err != nil {
			return transition{}, err
		}
		name, err := city.ValidateName(raw)
		if err != nil {
			return transition{}, err
		}
		st.Draft.Name = name
		if next == "" {
			return transition{finish: true}, nil
		}
		return transition{next: next}, nil
	}
}

func (e *Engine) promptCityPhoto(ctx context.Context, st conversation.State) Reply {
	text := "Send a cover photo for the city, or skip."
	if st.Flow == FlowCityPhoto {
		text = "Send a new cover photo, or skip to remove the current one."
	}
	return Reply{Text: text, Buttons: [][]Button{skipRow()}}
}

func (e *Engine) handleCityPhoto(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	switch {
	case ev.isSkip():
		st.Draft.Photo = nil
	case ev.Photo != nil:
		url, name := e.media.Ingest(ctx, ev.Photo.FileID)
		st.Draft.Photo = &domain.CityPhoto{URL: url, FileName: name, SourceRef: ev.Photo.FileID}
	default:
		return transition{}, domain.NewValidationError("photo", "send a photo or skip")
	}
	return transition{finish: true}, nil
}

func photoInput(p *domain.CityPhoto) city.PhotoInput {
	if p == nil {
		return city.PhotoInput{}
	}
	return city.PhotoInput{URL: p.URL, FileName: p.FileName, SourceRef: p.SourceRef}
}

func (e *Engine) promptStatic(text string, rows ...[]Button) func(context.Context, conversation.State) Reply {
	return func(context.Context, conversation.State) Reply {
		return Reply{Text: text, Buttons: append([][]Button(nil), rows...)}
	}
}
