package wizard

import (
	"context"
	"fmt"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/conversation"
	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/service/ad"
	"github.com/heartmarshall/cityguide-bot/internal/service/category"
)

func (e *Engine) addAdFlow() flow {
	return flow{
		first: stepAdText,
		steps: map[string]step{
			stepAdText: {
				prompt: e.promptStatic("Enter the ad text:"),
				handle: func(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
					raw, err := textRequired(ev)
					if err != nil {
						return transition{}, err
					}
					text, err := ad.ValidateText(raw)
					if err != nil {
						return transition{}, err
					}
					st.Draft.Text = text
					return transition{next: stepAdURL}, nil
				},
			},
			stepAdURL: {
				prompt: e.promptStatic("Enter the ad link, or skip:", skipRow()),
				handle: func(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
					if ev.isSkip() {
						st.Draft.URL = ""
						return transition{finish: true}, nil
					}
					raw, err := textRequired(ev)
					if err != nil {
						return transition{}, err
					}
					input := ad.Input{Text: st.Draft.Text, URL: raw}
					if err := input.Validate(); err != nil {
						return transition{}, err
					}
					st.Draft.URL = domain.NormalizeURL(raw)
					return transition{finish: true}, nil
				},
			},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			_, out, err := e.ads.Add(ctx, ad.Input{Text: st.Draft.Text, URL: st.Draft.URL})
			if err != nil {
				return "", err
			}
			return savedText("Ad added.", out), nil
		},
	}
}

func (e *Engine) deleteAdFlow() flow {
	return flow{
		first: stepConfirm,
		begin: func(ctx context.Context, st *conversation.State, cmd command.Command) (string, error) {
			ads, err := e.ads.List(ctx)
			if err != nil {
				return "", err
			}
			for _, a := range ads {
				if a.ID == cmd.Param(0) {
					st.AdID = a.ID
					st.Draft.Text = a.Text
					return "", nil
				}
			}
			return "", fmt.Errorf("ad %q: %w", cmd.Param(0), domain.ErrNotFound)
		},
		steps: map[string]step{
			stepConfirm: {
				prompt: func(ctx context.Context, st conversation.State) Reply {
					return Reply{
						Text:    "Delete this ad?\n\n" + st.Draft.Text,
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
			out, err := e.ads.Delete(ctx, st.AdID)
			if err != nil {
				return "", err
			}
			return savedText("Ad deleted.", out), nil
		},
	}
}

func datasyncOutcome(res category.FanOutResult) datasync.Outcome {
	return datasync.Outcome{Degraded: res.Degraded}
}
