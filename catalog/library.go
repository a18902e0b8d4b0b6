package catalog

import (
	_ "embed"
	"fmt"

	"earthborne-tracker/models"

	"gopkg.in/yaml.v3"
)

//go:embed data/cards.yaml
var cardsYAML []byte

//go:embed data/storylines.yaml
var storylinesYAML []byte

type cardDef struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Set    string   `yaml:"set"`
	Aspect *string  `yaml:"aspect"`
	Cost   *int     `yaml:"cost"`
	Tags   []string `yaml:"tags"`
	Expert bool     `yaml:"expert"`
}

type dayDef struct {
	Day         int     `yaml:"day"`
	Weather     string  `yaml:"weather"`
	Location    *string `yaml:"location"`
	PathTerrain *string `yaml:"path_terrain"`
}

type storylineDef struct {
	Name       string   `yaml:"name"`
	MinRangers int      `yaml:"min_rangers"`
	MaxRangers int      `yaml:"max_rangers"`
	Days       []dayDef `yaml:"days"`
}

// LibraryCards parses the embedded card library. IDs are left empty; the
// seeder assigns them.
func LibraryCards() ([]models.Card, error) {
	var doc struct {
		Cards []cardDef `yaml:"cards"`
	}
	if err := yaml.Unmarshal(cardsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse card library: %w", err)
	}

	seen := make(map[string]bool, len(doc.Cards))
	cards := make([]models.Card, 0, len(doc.Cards))
	for _, d := range doc.Cards {
		if seen[d.Name] {
			return nil, fmt.Errorf("card library: duplicate card %q", d.Name)
		}
		seen[d.Name] = true

		ct := models.CardType(d.Type)
		switch ct {
		case models.CardTypePersonality, models.CardTypeBackground, models.CardTypeSpecialty, models.CardTypeRole:
		default:
			return nil, fmt.Errorf("card library: %q has unknown type %q", d.Name, d.Type)
		}
		tags := d.Tags
		if tags == nil {
			tags = []string{}
		}
		cards = append(cards, models.Card{
			Name:      d.Name,
			CardType:  ct,
			SourceSet: d.Set,
			Aspect:    d.Aspect,
			Cost:      d.Cost,
			Tags:      tags,
			IsExpert:  d.Expert,
		})
	}
	return cards, nil
}

// LibraryStorylines parses the embedded storylines with their day presets.
func LibraryStorylines() ([]models.Storyline, error) {
	var doc struct {
		Storylines []storylineDef `yaml:"storylines"`
	}
	if err := yaml.Unmarshal(storylinesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse storylines: %w", err)
	}

	out := make([]models.Storyline, 0, len(doc.Storylines))
	for _, d := range doc.Storylines {
		if len(d.Days) == 0 {
			return nil, fmt.Errorf("storyline %q has no days", d.Name)
		}
		s := models.Storyline{Name: d.Name, MinRangers: d.MinRangers, MaxRangers: d.MaxRangers}
		for _, day := range d.Days {
			s.DayPresets = append(s.DayPresets, models.StorylineDayPreset{
				DayNumber:          day.Day,
				Weather:            day.Weather,
				DefaultLocation:    day.Location,
				DefaultPathTerrain: day.PathTerrain,
			})
		}
		out = append(out, s)
	}
	return out, nil
}
