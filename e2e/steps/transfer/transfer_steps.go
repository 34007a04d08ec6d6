package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	ActAs(name string)
	ActorID(name string) string
	POST(path string, body any) error
	GET(path string) error
	Field(path string) (any, error)
	Status() int
	Save(key, value string)
	Saved(key string) (string, error)
}

// RegisterSteps registers transfer lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &transferSteps{tc: tc}

	ctx.Step(`^"([^"]*)" sells a bird to "([^"]*)" for "([^"]*)"$`, steps.createSale)
	ctx.Step(`^I submit the "([^"]*)" step$`, steps.submitStep)
	ctx.Step(`^I approve the platform review$`, steps.approveReview)
	ctx.Step(`^I cancel the transfer$`, steps.cancel)
	ctx.Step(`^I raise a dispute "([^"]*)"$`, steps.raiseDispute)
	ctx.Step(`^I resolve the dispute as upheld$`, steps.resolveUpheld)
	ctx.Step(`^I view the transfer$`, steps.viewTransfer)
	ctx.Step(`^the transfer status should be "([^"]*)"$`, steps.statusShouldBe)
	ctx.Step(`^the audit trail should record "([^"]*)"$`, steps.auditShouldRecord)
}

type transferSteps struct {
	tc TestContext
}

func (s *transferSteps) path(suffix string) (string, error) {
	tid, err := s.tc.Saved("transfer_id")
	if err != nil {
		return "", err
	}
	return "/transfers/" + tid + suffix, nil
}

func (s *transferSteps) createSale(_ context.Context, seller, buyer, amount string) error {
	s.tc.ActAs(seller)
	err := s.tc.POST("/transfers", map[string]any{
		"to_party_id": s.tc.ActorID(buyer),
		"amount":      amount,
		"currency":    "INR",
		"type":        "SALE",
		"notes":       "e2e sale",
	})
	if err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return fmt.Errorf("create transfer: status %d", s.tc.Status())
	}
	tid, err := s.tc.Field("id")
	if err != nil {
		return err
	}
	s.tc.Save("transfer_id", fmt.Sprint(tid))
	return nil
}

func stepBody(kind string) (map[string]any, error) {
	captured := time.Now().UTC().Format(time.RFC3339)
	switch kind {
	case "SELLER_INIT":
		return map[string]any{
			"step":   kind,
			"before": map[string]any{"reference": "photos/before.jpg", "metadata": map[string]any{"capturedAt": captured}},
			"after":  map[string]any{"reference": "photos/after.jpg", "metadata": map[string]any{"capturedAt": captured}},
		}, nil
	case "GPS_CONFIRM":
		return map[string]any{"step": kind, "lat": 12.9716, "lng": 77.5946}, nil
	case "IDENTITY":
		return map[string]any{"step": kind, "doc_type": "PAN", "doc_ref": "docs/pan.jpg", "doc_number": "ABCDE1234F"}, nil
	case "SIGNATURE":
		return map[string]any{"step": kind, "signature_ref": "signatures/buyer.png"}, nil
	}
	return nil, fmt.Errorf("no sample payload for step %s", kind)
}

func (s *transferSteps) submitStep(_ context.Context, kind string) error {
	body, err := stepBody(kind)
	if err != nil {
		return err
	}
	p, err := s.path("/steps")
	if err != nil {
		return err
	}
	return s.tc.POST(p, body)
}

func (s *transferSteps) approveReview(context.Context) error {
	p, err := s.path("/steps")
	if err != nil {
		return err
	}
	return s.tc.POST(p, map[string]any{"step": "PLATFORM_REVIEW", "approved": true, "notes": "documents checked"})
}

func (s *transferSteps) cancel(context.Context) error {
	p, err := s.path("/cancel")
	if err != nil {
		return err
	}
	return s.tc.POST(p, map[string]any{"reason": "buyer withdrew"})
}

func (s *transferSteps) raiseDispute(_ context.Context, reason string) error {
	p, err := s.path("/disputes")
	if err != nil {
		return err
	}
	if err := s.tc.POST(p, map[string]any{"reason": reason}); err != nil {
		return err
	}
	if s.tc.Status() == 201 {
		did, err := s.tc.Field("id")
		if err != nil {
			return err
		}
		s.tc.Save("dispute_id", fmt.Sprint(did))
	}
	return nil
}

func (s *transferSteps) resolveUpheld(context.Context) error {
	did, err := s.tc.Saved("dispute_id")
	if err != nil {
		return err
	}
	return s.tc.POST("/disputes/"+did+"/resolve", map[string]any{"upheld": true, "notes": "refund issued"})
}

func (s *transferSteps) viewTransfer(context.Context) error {
	p, err := s.path("")
	if err != nil {
		return err
	}
	return s.tc.GET(p)
}

func (s *transferSteps) statusShouldBe(ctx context.Context, want string) error {
	if err := s.viewTransfer(ctx); err != nil {
		return err
	}
	got, err := s.tc.Field("status")
	if err != nil {
		return err
	}
	if fmt.Sprint(got) != want {
		return fmt.Errorf("expected transfer status %s, got %v", want, got)
	}
	return nil
}

func (s *transferSteps) auditShouldRecord(_ context.Context, action string) error {
	p, err := s.path("/audit")
	if err != nil {
		return err
	}
	if err := s.tc.GET(p); err != nil {
		return err
	}
	raw, err := s.tc.Field("entries")
	if err != nil {
		return err
	}
	entries, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("entries is not a list")
	}
	for _, e := range entries {
		if m, ok := e.(map[string]any); ok && m["action"] == action {
			return nil
		}
	}
	return fmt.Errorf("no %s entry among %d audit entries", action, len(entries))
}
