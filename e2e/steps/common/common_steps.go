package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	LastStatus() int
	LastBody() string
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers generic response assertions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the call should succeed$`, steps.callShouldSucceed)
	ctx.Step(`^the call should fail with result code (\d+)$`, steps.callShouldFailWith)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.responseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be null$`, steps.responseFieldShouldBeNull)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expected int) error {
	if got := s.tc.LastStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) callShouldSucceed(ctx context.Context) error {
	if err := s.responseStatusShouldBe(ctx, 200); err != nil {
		return err
	}
	return s.responseFieldShouldBe(ctx, "ok", "true")
}

func (s *commonSteps) callShouldFailWith(ctx context.Context, code int) error {
	got, err := s.tc.GetResponseField("err")
	if err != nil {
		return err
	}
	// JSON numbers decode as float64.
	if n, ok := got.(float64); !ok || int(n) != code {
		return fmt.Errorf("expected result code %d, got %v: %s", code, got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBe(ctx context.Context, field, expected string) error {
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(got) != expected {
		return fmt.Errorf("expected %s to be %q, got %v", field, expected, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBeNull(ctx context.Context, field string) error {
	got, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got != nil {
		return fmt.Errorf("expected %s to be null, got %v", field, got)
	}
	return nil
}
