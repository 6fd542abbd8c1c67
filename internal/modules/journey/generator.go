package journey

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	"github.com/yungbote/journey-backend/internal/domain/journey"
)

// NormalizeInterests parses raw interest names into categories, dropping
// duplicates and returning them in canonical order. Unknown names are a
// validation error.
func NormalizeInterests(raw []string) ([]journey.Category, error) {
	const op = "journey.NormalizeInterests"
	seen := make(map[journey.Category]bool, len(raw))
	out := make([]journey.Category, 0, len(raw))
	for _, name := range raw {
		c, err := journey.ParseCategory(name)
		if err != nil {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank() < out[j].Rank() })
	return out, nil
}

// DayCategories is the category set one day's trees cover: the normalized
// interests, or every category when there are none.
func DayCategories(interests []string) ([]journey.Category, error) {
	categories, err := NormalizeInterests(interests)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return journey.AllCategories, nil
	}
	return categories, nil
}

// CategoryNames is the string form of categories, for storage on the user row.
func CategoryNames(categories []journey.Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, string(c))
	}
	return out
}

// TaskID is stable for a (day, category, slot) triple.
func TaskID(day int, category journey.Category, slot journey.Slot) string {
	return fmt.Sprintf("d%02d-%s-%s", day, category, slot)
}

// GenerateSkillTrees builds one tree per interest for day, in canonical
// category order, each with three incomplete tasks. No interests means every
// category. The result depends only on its inputs.
func GenerateSkillTrees(userID uuid.UUID, day int, interests []string, tpl *Templates) ([]*journey.SkillTree, error) {
	const op = "journey.GenerateSkillTrees"
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user id", nil)
	}
	if !journey.ValidDay(day) {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("day %d outside 1..%d", day, journey.JourneyLength), nil)
	}
	if tpl == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "no templates loaded", nil)
	}
	categories, err := DayCategories(interests)
	if err != nil {
		return nil, err
	}

	trees := make([]*journey.SkillTree, 0, len(categories))
	for _, category := range categories {
		variant, ok := tpl.Variant(category, day)
		if !ok {
			return nil, domainagg.NewError(domainagg.CodeInternal, op, "no template for "+string(category), nil)
		}
		tasks := make([]journey.Task, journey.TasksPerTree)
		for i, slot := range journey.Slots {
			tasks[i] = journey.Task{
				ID:    TaskID(day, category, slot),
				Slot:  slot,
				Title: variant.Tasks[i],
			}
		}
		trees = append(trees, &journey.SkillTree{
			UserID:      userID,
			Day:         day,
			Category:    category,
			Title:       variant.Title,
			Description: variant.Description,
			Tasks:       tasks,
		})
	}
	return trees, nil
}

// TreeRefs returns the skill tree keys for trees, in order.
// ParseTreeRefs is the inverse of TreeRefs.
func ParseTreeRefs(refs []string) ([]journey.SkillTreeKey, error) {
	out := make([]journey.SkillTreeKey, 0, len(refs))
	for _, ref := range refs {
		k, err := journey.ParseSkillTreeKey(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func TreeRefs(trees []*journey.SkillTree) []string {
	out := make([]string, 0, len(trees))
	for _, t := range trees {
		if t == nil {
			continue
		}
		out = append(out, t.Key().String())
	}
	return out
}
