package nn

import (
	"math"
	"testing"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

func jumpBrain(polarity model.Polarity) model.Brain {
	return model.Brain{Webs: []model.NeuroneWeb{{
		Action: model.ActionJump,
		Neurones: []model.Neurone{{
			X: 100, Y: 0, Width: 20, Height: 20,
			Condition: model.ConditionCollide,
			Polarity:  polarity,
		}},
	}}}
}

func TestActivationsAssertAndVeto(t *testing.T) {
	obstacles := []model.Rect{{X: 110, Y: 0, W: 40, H: 80}}

	got := Activations(jumpBrain(model.PolarityAssert), obstacles)
	if got != model.NewActionSet(model.ActionJump) {
		t.Fatalf("expected {Jump}, got %s", got)
	}

	got = Activations(jumpBrain(model.PolarityVeto), obstacles)
	if got.Len() != 0 {
		t.Fatalf("expected empty set, got %s", got)
	}
}

func TestNeuroneActivationConditions(t *testing.T) {
	sensor := model.Neurone{X: 0, Y: 0, Width: 10, Height: 10, Condition: model.ConditionClear, Polarity: model.PolarityAssert}
	far := []model.Rect{{X: 500, Y: 0, W: 10, H: 10}}
	near := []model.Rect{{X: 500, Y: 0, W: 10, H: 10}, {X: 5, Y: 5, W: 10, H: 10}}

	if p, ok := NeuroneActivation(sensor, far); !ok || p != model.PolarityAssert {
		t.Fatalf("expected clear neurone to fire with no overlap, got %q %v", p, ok)
	}
	if _, ok := NeuroneActivation(sensor, near); ok {
		t.Fatal("expected clear neurone to stay silent on overlap")
	}
	if _, ok := NeuroneActivation(sensor, nil); !ok {
		t.Fatal("expected clear neurone to fire on an empty field")
	}

	collide := sensor
	collide.Condition = model.ConditionCollide
	if _, ok := NeuroneActivation(collide, far); ok {
		t.Fatal("expected collide neurone to stay silent without overlap")
	}
	if _, ok := NeuroneActivation(collide, near); !ok {
		t.Fatal("expected collide neurone to fire on overlap")
	}
}

func TestWebVetoOverridesEarlierAndLaterAsserts(t *testing.T) {
	assert := model.Neurone{Width: 10, Height: 10, Condition: model.ConditionClear, Polarity: model.PolarityAssert}
	veto := assert
	veto.Polarity = model.PolarityVeto

	web := model.NeuroneWeb{Action: model.ActionBend, Neurones: []model.Neurone{assert, veto, assert}}
	if WebActivated(web, nil) {
		t.Fatal("expected veto to deactivate web")
	}
	web.Neurones = []model.Neurone{assert, assert}
	if !WebActivated(web, nil) {
		t.Fatal("expected asserts to activate web")
	}
	web.Neurones = nil
	if WebActivated(web, nil) {
		t.Fatal("expected empty web to stay inactive")
	}
}

func TestDuplicateActionsCollapse(t *testing.T) {
	brain := jumpBrain(model.PolarityAssert)
	brain.Webs = append(brain.Webs, brain.Webs[0])
	got := Activations(brain, []model.Rect{{X: 110, Y: 0, W: 40, H: 80}})
	if got.Len() != 1 || !got.Has(model.ActionJump) {
		t.Fatalf("expected a single Jump, got %s", got)
	}
	fired := ActivatedWebs(brain, []model.Rect{{X: 110, Y: 0, W: 40, H: 80}})
	if len(fired) != 2 || !fired[0] || !fired[1] {
		t.Fatalf("unexpected per-web activations: %v", fired)
	}
}

func TestEnergy(t *testing.T) {
	cfg := config.Default()
	rx, ry := RestingCenter(cfg)
	n := model.Neurone{X: rx + 30 - 10, Y: ry + 40 - 10, Width: 20, Height: 20}
	// center is (rx+30, ry+40): distance 50.
	want := 50*cfg.NeuroneCostMult + cfg.NeuroneCostFlat
	if got := NeuroneEnergy(cfg, n); math.Abs(got-want) > 1e-9 {
		t.Fatalf("neurone energy: got %f want %f", got, want)
	}

	web := model.NeuroneWeb{Neurones: []model.Neurone{n, n}}
	wantWeb := 2*want*cfg.WebCostMult + cfg.WebCostFlat
	if got := WebEnergy(cfg, web); math.Abs(got-wantWeb) > 1e-9 {
		t.Fatalf("web energy: got %f want %f", got, wantWeb)
	}

	brain := model.Brain{Webs: []model.NeuroneWeb{web, web}}
	if got := BrainEnergy(cfg, brain); math.Abs(got-2*wantWeb) > 1e-9 {
		t.Fatalf("brain energy: got %f want %f", got, 2*wantWeb)
	}
	if got := BrainEnergy(cfg, model.Brain{}); got != 0 {
		t.Fatalf("empty brain energy should be 0, got %f", got)
	}
}
