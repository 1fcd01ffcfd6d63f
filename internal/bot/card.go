package bot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
	"github.com/heartmarshall/cityguide-bot/internal/wizard"
)

// placeCard renders the text of a place.
func placeCard(p *domain.Place) string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.CategoryName != "" {
		b.WriteString("\n" + strings.TrimSpace(p.CategoryEmoji+" "+p.CategoryName))
	}
	if p.Description != "" {
		b.WriteString("\n\n" + p.Description)
	}

	line := func(icon, v string) {
		if v != "" {
			b.WriteString("\n" + icon + " " + v)
		}
	}
	b.WriteString("\n")
	line("📍", p.Address)
	line("🕒", p.WorkingHours)
	line("💰", p.AveragePrice)
	line("📞", p.Phone)
	if p.HasCoordinates() && p.MapURL == "" {
		line("🧭", fmt.Sprintf("%.6f, %.6f", *p.Latitude, *p.Longitude))
	}
	return strings.TrimRight(b.String(), "\n")
}

// placeLinks builds URL buttons for the website, map and social links.
func placeLinks(p *domain.Place) [][]wizard.Button {
	var buttons []wizard.Button
	if p.Website != "" {
		buttons = append(buttons, wizard.URLButton("🌐 Website", p.Website))
	}
	switch {
	case p.MapURL != "":
		buttons = append(buttons, wizard.URLButton("🗺 Map", p.MapURL))
	case p.HasCoordinates():
		buttons = append(buttons, wizard.URLButton("🗺 Map",
			fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f", *p.Latitude, *p.Longitude)))
	}

	names := make([]string, 0, len(p.SocialLinks))
	for name := range p.SocialLinks {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		buttons = append(buttons, wizard.URLButton(name, p.SocialLinks[name]))
	}
	return rows(buttons, 2)
}
