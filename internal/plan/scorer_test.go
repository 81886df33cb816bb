package plan

import (
	"testing"

	"tripweaver/internal/model"
)

func act(name, category string, duration, price float64) model.Activity {
	return model.Activity{Name: name, Category: category, DurationHours: duration, Price: price}
}

func TestScoreInterestMatchDominates(t *testing.T) {
	a := act("louvre", "museum", 2, 10)
	with := Score(a, model.Preferences{Interests: []string{"museum"}, ScheduleType: model.ScheduleBalanced}, nil)
	without := Score(a, model.Preferences{ScheduleType: model.ScheduleBalanced}, nil)
	if with-without != 40 {
		t.Fatalf("interest bonus: got %f, want 40", with-without)
	}
}

func TestScoreComplementBonus(t *testing.T) {
	a := act("arc", "landmark", 1, 0)
	with := Score(a, model.Preferences{Interests: []string{"museum"}}, nil)
	without := Score(a, model.Preferences{}, nil)
	if with-without != 10 {
		t.Fatalf("complement bonus: got %f, want 10", with-without)
	}
}

func TestScoreCostPrioritized(t *testing.T) {
	prefs := model.Preferences{PrioritizeCost: true}
	free := Score(act("a", "other", 1, 0), prefs, nil)
	cheap := Score(act("a", "other", 1, 10), prefs, nil)
	pricey := Score(act("a", "other", 1, 50), prefs, nil)
	if free-cheap != 10 {
		t.Fatalf("free vs cheap: got %f, want 10", free-cheap)
	}
	if cheap-pricey != 5+50*0.8 {
		t.Fatalf("cheap vs pricey: got %f, want %f", cheap-pricey, 5+50*0.8)
	}
}

func TestScoreCostDefault(t *testing.T) {
	prefs := model.Preferences{}
	free := Score(act("a", "other", 1, 0), prefs, nil)
	paid := Score(act("a", "other", 1, 20), prefs, nil)
	if free-paid != 5+20*0.15 {
		t.Fatalf("free vs paid: got %f, want %f", free-paid, 5+20*0.15)
	}
}

func TestScoreNegativePriceIsDiscount(t *testing.T) {
	prefs := model.Preferences{}
	rebate := Score(act("a", "other", 1, -10), prefs, nil)
	free := Score(act("a", "other", 1, 0), prefs, nil)
	// -(-10)*0.15 = +1.5 versus the flat +5 free bonus.
	if rebate >= free {
		t.Fatalf("rebate %f should score below free %f here", rebate, free)
	}
	if free-rebate != 5-1.5 {
		t.Fatalf("delta: got %f, want 3.5", free-rebate)
	}
}

func TestScoreScheduleFit(t *testing.T) {
	short := act("a", "other", 1.5, 0)
	long := act("a", "other", 4.5, 0)

	relaxed := model.Preferences{ScheduleType: model.ScheduleRelaxed}
	if d := Score(short, relaxed, nil) - Score(long, relaxed, nil); d <= 0 {
		t.Fatalf("relaxed should favor short activities, delta %f", d)
	}

	packed := model.Preferences{ScheduleType: model.SchedulePacked}
	sp := Score(act("a", "other", 2.5, 0), packed, nil)
	lp := Score(act("a", "other", 1, 0), packed, nil)
	// The +10 packed bonus outweighs the short-duration flexibility tiers.
	if sp <= lp {
		t.Fatalf("packed should favor long activities: %f vs %f", sp, lp)
	}
}

func TestScoreVarietyPenalty(t *testing.T) {
	a := act("a", "museum", 1, 0)
	prefs := model.Preferences{}
	same := func(n int) []model.Activity {
		out := make([]model.Activity, n)
		for i := range out {
			out[i] = act("prior", "museum", 1, 0)
		}
		return out
	}
	base := Score(a, prefs, same(1)) // neutral tier
	if d := Score(a, prefs, nil) - base; d != 10 {
		t.Fatalf("fresh category bonus: got %f, want 10", d)
	}
	if d := base - Score(a, prefs, same(2)); d != 10 {
		t.Fatalf("second repeat penalty: got %f, want 10", d)
	}
	if d := base - Score(a, prefs, same(3)); d != 20 {
		t.Fatalf("third repeat penalty: got %f, want 20", d)
	}
}

func TestScoreAllOrderedAndStable(t *testing.T) {
	prefs := model.Preferences{Interests: []string{"museum"}}
	acts := []model.Activity{
		act("tie1", "other", 1, 0),
		act("best", "museum", 1, 0),
		act("tie2", "other", 1, 0),
	}
	ranked := ScoreAll(acts, prefs, nil)
	if ranked[0].Activity.Name != "best" {
		t.Fatalf("top: got %s", ranked[0].Activity.Name)
	}
	if ranked[1].Activity.Name != "tie1" || ranked[2].Activity.Name != "tie2" {
		t.Fatalf("ties must keep input order: %s, %s", ranked[1].Activity.Name, ranked[2].Activity.Name)
	}
}

func TestSuggestInterestBalance(t *testing.T) {
	acts := []model.Activity{
		act("f1", "food", 1, 0),
		act("f2", "food", 1, 0),
		act("t1", "tour", 1, 0),
		act("t2", "tour", 1, 0),
		act("t3", "tour", 1, 0),
		act("t4", "tour", 1, 0),
		act("t5", "tour", 1, 0),
	}
	got := SuggestInterestBalance(acts, []string{"museum", "food"})
	if got["museum"] != "No museum activities available in this destination" {
		t.Fatalf("museum: %q", got["museum"])
	}
	if got["food"] != "Limited food options (2 activities)" {
		t.Fatalf("food: %q", got["food"])
	}
	if got["Consider tour"] != "5 tour activities available" {
		t.Fatalf("tour: %q", got["Consider tour"])
	}
}
