package aggregates

import (
	"testing"

	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
)

func TestRequireFound(t *testing.T) {
	if err := RequireFound(&types.UserProgress{}, "op", "missing"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	var absent *types.SkillTree
	err := RequireFound(absent, "skill_tree.toggle_task", "skill tree not found")
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); !domainagg.IsCode(MapError("op", err), domainagg.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}
