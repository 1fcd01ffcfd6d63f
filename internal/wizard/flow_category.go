package wizard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/conversation"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/service/category"
)

func (e *Engine) addCategoryFlow() flow {
	return flow{
		first: stepCategoryName,
		steps: map[string]step{
			stepCategoryName: {
				prompt: e.promptStatic("Enter the category name:"),
				handle: e.handleCategoryName,
			},
			stepCategoryEmoji: {
				prompt: e.promptStatic("Send an emoji for the category, or skip:", skipRow()),
				handle: e.handleCategoryEmoji,
			},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			c, out, err := e.categories.Add(ctx, category.Input{Name: st.Draft.Name, Emoji: st.Draft.Emoji})
			if err != nil {
				return "", err
			}
			return savedText(fmt.Sprintf("Category %s added.", c.Label()), out), nil
		},
	}
}

func (e *Engine) editCategoryFlow() flow {
	return flow{
		first: stepCategoryName,
		begin: e.beginCustomCategory,
		steps: map[string]step{
			stepCategoryName: {
				prompt: e.promptStatic("Enter the new name, or skip to keep it:", skipRow()),
				handle: e.handleCategoryName,
			},
			stepCategoryEmoji: {
				prompt: e.promptStatic("Send the new emoji, or skip to keep it:", skipRow()),
				handle: e.handleCategoryEmoji,
			},
		},
		complete: func(ctx context.Context, st conversation.State) (string, error) {
			c, res, err := e.categories.Update(ctx, st.CategoryID, category.Input{Name: st.Draft.Name, Emoji: st.Draft.Emoji})
			if err != nil {
				return "", err
			}
			text := fmt.Sprintf("Category %s updated, %d place(s) refreshed.", c.Label(), res.Updated)
			if res.Failed > 0 {
				text += fmt.Sprintf(" %d place(s) could not be refreshed.", res.Failed)
			}
			return savedText(text, datasyncOutcome(res)), nil
		},
	}
}

func (e *Engine) deleteCategoryFlow() flow {
	return flow{
		first: stepConfirmDelete,
		begin: e.beginCustomCategory,
		steps: map[string]step{
			stepConfirmDelete: {
				prompt: func(ctx context.Context, st conversation.State) Reply {
					return Reply{
						Text: fmt.Sprintf("Delete %s? Its places move to %q.",
							st.Draft.Name, domain.FallbackCategoryName),
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
			res, err := e.categories.Delete(ctx, st.CategoryID)
			if err != nil {
				return "", err
			}
			text := fmt.Sprintf("Category %s deleted, %d place(s) moved to %q.",
				st.Draft.Name, res.Updated, domain.FallbackCategoryName)
			return savedText(text, datasyncOutcome(res)), nil
		},
	}
}

// beginCustomCategory loads the category in the command's first parameter.
// Built-in categories are refused before any input is asked for.
func (e *Engine) beginCustomCategory(ctx context.Context, st *conversation.State, cmd command.Command) (string, error) {
	id, err := strconv.Atoi(cmd.Param(0))
	if err != nil {
		return "", fmt.Errorf("category id %q: %w", cmd.Param(0), domain.ErrNotFound)
	}
	c, err := e.categories.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !c.IsCustom {
		return "", fmt.Errorf("builtin category %d: %w", id, domain.ErrForbidden)
	}
	st.CategoryID = c.ID
	st.Draft.Name = c.Name
	st.Draft.Emoji = c.Emoji
	return "Category: " + c.Label(), nil
}

func (e *Engine) handleCategoryName(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	if ev.isSkip() && st.Flow == FlowEditCategory {
		return transition{next: stepCategoryEmoji}, nil
	}
	raw, err := textRequired(ev)
	if err != nil {
		return transition{}, err
	}
	if err := category.ValidateName(raw); err != nil {
		return transition{}, err
	}
	st.Draft.Name = domain.NormalizeText(raw)
	return transition{next: stepCategoryEmoji}, nil
}

func (e *Engine) handleCategoryEmoji(ctx context.Context, st *conversation.State, ev Event) (transition, error) {
	if ev.isSkip() {
		if st.Flow != FlowEditCategory {
			st.Draft.Emoji = ""
		}
		return transition{finish: true}, nil
	}
	raw, err := textRequired(ev)
	if err != nil {
		return transition{}, err
	}
	if err := category.ValidateEmoji(raw); err != nil {
		return transition{}, err
	}
	st.Draft.Emoji = domain.NormalizeText(raw)
	return transition{finish: true}, nil
}
