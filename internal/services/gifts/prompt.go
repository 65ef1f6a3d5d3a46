package gifts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// Section is a rendered prompt section, identified by its header text
type Section string

const (
	SectionBasicInfo     Section = "Basic Information"
	SectionFavorites     Section = "Favorites"
	SectionInterests     Section = "Interests & Hobbies"
	SectionConversations Section = "Recent Conversations"
	SectionMemories      Section = "Special Memories"
	SectionNotes         Section = "Important Notes"
	SectionDates         Section = "Past Dates & Activities"
	SectionGiftHistory   Section = "Previous Gifts (to avoid repetition)"
	SectionGiftIdeas     Section = "Current Gift Ideas (to avoid duplicates)"
)

// AllSections lists every section in render order
var AllSections = []Section{
	SectionBasicInfo,
	SectionFavorites,
	SectionInterests,
	SectionConversations,
	SectionMemories,
	SectionNotes,
	SectionDates,
	SectionGiftHistory,
	SectionGiftIdeas,
}

const sectionMarker = "## "

const dateLayout = "2006-01-02"

// SystemPrompt is the fixed instruction sent with every user prompt
const SystemPrompt = `You are a thoughtful gift advisor helping someone choose gifts for their partner.

Use only the profile information provided by the user. Follow these rules:
1. Generate between 3 and 5 gift suggestions.
2. Every suggestion must cite concrete details from the profile in its reason (an interest, a conversation, a memory, a note or a past date).
3. Assign confidence_score from 85 to 100 according to the evidence:
   - 95-100: the partner directly mentioned wanting this or something nearly identical
   - 90-94: clearly supported by a stated interest or favorite
   - 85-89: a reasonable inference from several details
4. Spread the suggestions across price tiers (affordable under $50, mid-range $50-150, premium above $150).
5. Mix gift types: experiences, physical objects and subscriptions.
6. Never suggest anything listed under Previous Gifts or Current Gift Ideas, or a close variant of it.
7. price is a short free-form string such as "$45" or "$50-100".
8. occasion names when the gift fits best, for example "Birthday", "Anniversary" or "Just Because".
9. product_link is a URL string when you are confident one exists, otherwise null.

Respond with JSON only, no prose before or after it, in exactly this shape:
{"suggestions":[{"title":"...","reason":"...","price":"...","occasion":"...","confidence_score":90,"product_link":null}]}`

type promptOptions struct {
	sections map[Section]bool
}

// PromptOption configures BuildPrompt
type PromptOption func(*promptOptions)

// WithSections limits rendering to the given sections. Basic Information is
// always rendered when it has content.
func WithSections(sections ...Section) PromptOption {
	return func(o *promptOptions) {
		o.sections = map[Section]bool{SectionBasicInfo: true}
		for _, s := range sections {
			o.sections[s] = true
		}
	}
}

// BuildPrompt renders agg as the user prompt. Output depends only on agg
// and opts; sections with nothing to say are left out entirely.
func BuildPrompt(agg *models.ProfileAggregate, opts ...PromptOption) string {
	o := promptOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	name := oneLine(agg.Profile.Name)
	if name == "" {
		name = "my partner"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Suggest gifts for %s based on this profile.\n", name)

	for _, section := range AllSections {
		if o.sections != nil && !o.sections[section] {
			continue
		}
		lines := sectionLines(agg, section)
		if len(lines) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(sectionMarker)
		b.WriteString(string(section))
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nReturn 3-5 suggestions as JSON.\n")
	return b.String()
}

// SectionsIn returns the sections rendered in prompt, in render order
func SectionsIn(prompt string) []Section {
	known := make(map[Section]bool, len(AllSections))
	for _, s := range AllSections {
		known[s] = true
	}
	found := make([]Section, 0, len(AllSections))
	for _, line := range strings.Split(prompt, "\n") {
		if !strings.HasPrefix(line, sectionMarker) {
			continue
		}
		s := Section(strings.TrimSpace(strings.TrimPrefix(line, sectionMarker)))
		if known[s] {
			found = append(found, s)
		}
	}
	return found
}

// NonEmptySections returns the sections agg has content for, in render order
func NonEmptySections(agg *models.ProfileAggregate) []Section {
	out := make([]Section, 0, len(AllSections))
	for _, s := range AllSections {
		if len(sectionLines(agg, s)) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func sectionLines(agg *models.ProfileAggregate, section Section) []string {
	var lines []string
	add := func(line string) {
		if line = oneLine(line); line != "" {
			lines = append(lines, line)
		}
	}

	switch section {
	case SectionBasicInfo:
		p := agg.Profile
		if v := oneLine(p.Name); v != "" {
			add("Name: " + v)
		}
		if p.Age != nil {
			add("Age: " + strconv.Itoa(*p.Age))
		}
		addField(add, "Relationship status", p.RelationshipStatus)
		addField(add, "How we met", p.HowWeMet)
		if p.RelationshipStart != nil {
			add("Together since: " + p.RelationshipStart.Format(dateLayout))
		}
	case SectionFavorites:
		p := agg.Profile
		addField(add, "Color", p.FavoriteColor)
		addField(add, "Flower", p.FavoriteFlower)
		addField(add, "Food", p.FavoriteFood)
		addField(add, "Drink", p.FavoriteDrink)
		addField(add, "Music", p.FavoriteMusic)
		addField(add, "Movie", p.FavoriteMovie)
	case SectionInterests:
		for _, i := range agg.Interests {
			line := oneLine(i.Name)
			if c := oneLine(i.Category); c != "" {
				line += " (" + c + ")"
			}
			if nonEmpty(i.Notes) {
				line += ": " + oneLine(*i.Notes)
			}
			add(line)
		}
	case SectionConversations:
		for _, c := range agg.Conversations {
			add(fmt.Sprintf("[%s] %s: %s", formatDate(c.Date), oneLine(c.Topic), oneLine(c.Summary)))
		}
	case SectionMemories:
		for _, m := range agg.Memories {
			add(fmt.Sprintf("[%s] %s: %s", formatDate(m.Date), oneLine(m.Title), oneLine(m.Description)))
		}
	case SectionNotes:
		for _, n := range agg.Notes {
			line := oneLine(n.Title)
			if nonEmpty(n.Category) {
				line += " (" + oneLine(*n.Category) + ")"
			}
			add(line + ": " + oneLine(n.Content))
		}
	case SectionDates:
		for _, d := range agg.Dates {
			line := fmt.Sprintf("[%s] %s", formatDate(d.Date), oneLine(d.Activity))
			if loc := oneLine(d.Location); loc != "" {
				line += " at " + loc
			}
			add(line)
		}
	case SectionGiftHistory:
		for _, g := range agg.GiftHistory {
			line := oneLine(g.Title)
			if occ := oneLine(g.Occasion); occ != "" {
				line += " for " + occ
			}
			if nonEmpty(g.Price) {
				line += " (" + oneLine(*g.Price) + ")"
			}
			if nonEmpty(g.Reaction) {
				line += ", reaction: " + oneLine(*g.Reaction)
			}
			add(line)
		}
	case SectionGiftIdeas:
		for _, g := range agg.GiftIdeas {
			line := oneLine(g.Title)
			if pr := oneLine(g.Priority); pr != "" {
				line += " (" + pr + " priority"
				if nonEmpty(g.Occasion) {
					line += ", for " + oneLine(*g.Occasion)
				}
				line += ")"
			} else if nonEmpty(g.Occasion) {
				line += " (for " + oneLine(*g.Occasion) + ")"
			}
			add(line)
		}
	}
	return lines
}

func addField(add func(string), label string, value *string) {
	if nonEmpty(value) {
		add(label + ": " + oneLine(*value))
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	return t.Format(dateLayout)
}

// oneLine collapses whitespace so stored text can never forge a section marker
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
