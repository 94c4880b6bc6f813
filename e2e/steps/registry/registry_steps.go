package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path string, body any, token string) error
	GET(path string) error
	GetResponseField(field string) (any, error)
	Identity(alias string) string
	BindIdentity(alias, id string)
	TokenFor(alias string) (string, error)
	Remember(key string, value any)
	Recall(key string) (any, bool)
}

// RegisterSteps registers registry step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	ctx.Step(`^"([^"]*)" is the registry admin$`, steps.isTheRegistryAdmin)
	ctx.Step(`^"([^"]*)" requests verification as "([^"]*)" with business id "([^"]*)"$`, steps.requestVerification)
	ctx.Step(`^"([^"]*)" approves "([^"]*)"$`, steps.approve)
	ctx.Step(`^"([^"]*)" revokes "([^"]*)"$`, steps.revoke)
	ctx.Step(`^"([^"]*)" hands the admin role to "([^"]*)"$`, steps.setAdmin)
	ctx.Step(`^an unauthenticated caller approves "([^"]*)"$`, steps.approveWithoutToken)
	ctx.Step(`^I look up the verification record of "([^"]*)"$`, steps.lookUpRecord)
	ctx.Step(`^I check whether "([^"]*)" is verified$`, steps.checkStatus)
	ctx.Step(`^the registry admin should be "([^"]*)"$`, steps.adminShouldBe)
	ctx.Step(`^I remember the verification date of "([^"]*)"$`, steps.rememberVerificationDate)
	ctx.Step(`^the verification date of "([^"]*)" should be unchanged$`, steps.verificationDateUnchanged)
	ctx.Step(`^the verification date of "([^"]*)" should equal its last update$`, steps.verificationDateIsLastUpdate)
}

type registrySteps struct {
	tc TestContext
}

func renterPath(id, suffix string) string {
	return "/registry/verifications/" + url.PathEscape(id) + suffix
}

func (s *registrySteps) isTheRegistryAdmin(ctx context.Context, alias string) error {
	admin := os.Getenv("REGISTRY_ADMIN")
	if admin == "" {
		return fmt.Errorf("REGISTRY_ADMIN must match the server's admin")
	}
	s.tc.BindIdentity(alias, admin)
	return nil
}

func (s *registrySteps) as(alias string, method, path string, body any) error {
	token, err := s.tc.TokenFor(alias)
	if err != nil {
		return err
	}
	return s.tc.Do(method, path, body, token)
}

func (s *registrySteps) requestVerification(ctx context.Context, alias, name, id string) error {
	return s.as(alias, http.MethodPost, "/registry/verifications", map[string]string{
		"business_name": name,
		"business_id":   id,
	})
}

func (s *registrySteps) approve(ctx context.Context, caller, renter string) error {
	return s.as(caller, http.MethodPost, renterPath(s.tc.Identity(renter), "/approve"), nil)
}

func (s *registrySteps) revoke(ctx context.Context, caller, renter string) error {
	return s.as(caller, http.MethodPost, renterPath(s.tc.Identity(renter), "/revoke"), nil)
}

func (s *registrySteps) setAdmin(ctx context.Context, caller, newAdmin string) error {
	return s.as(caller, http.MethodPut, "/registry/admin", map[string]string{
		"new_admin": s.tc.Identity(newAdmin),
	})
}

func (s *registrySteps) approveWithoutToken(ctx context.Context, renter string) error {
	return s.tc.Do(http.MethodPost, renterPath(s.tc.Identity(renter), "/approve"), nil, "")
}

func (s *registrySteps) lookUpRecord(ctx context.Context, renter string) error {
	return s.tc.GET(renterPath(s.tc.Identity(renter), ""))
}

func (s *registrySteps) checkStatus(ctx context.Context, renter string) error {
	return s.tc.GET(renterPath(s.tc.Identity(renter), "/status"))
}

func (s *registrySteps) adminShouldBe(ctx context.Context, alias string) error {
	if err := s.tc.GET("/registry/admin"); err != nil {
		return err
	}
	got, err := s.tc.GetResponseField("admin")
	if err != nil {
		return err
	}
	if got != s.tc.Identity(alias) {
		return fmt.Errorf("expected admin %s, got %v", s.tc.Identity(alias), got)
	}
	return nil
}

func (s *registrySteps) recordField(renter, field string) (any, error) {
	if err := s.lookUpRecord(context.Background(), renter); err != nil {
		return nil, err
	}
	return s.tc.GetResponseField("record." + field)
}

func (s *registrySteps) rememberVerificationDate(ctx context.Context, renter string) error {
	date, err := s.recordField(renter, "verification_date")
	if err != nil {
		return err
	}
	s.tc.Remember("verification_date:"+renter, date)
	return nil
}

func (s *registrySteps) verificationDateUnchanged(ctx context.Context, renter string) error {
	before, ok := s.tc.Recall("verification_date:" + renter)
	if !ok {
		return fmt.Errorf("no verification date remembered for %s", renter)
	}
	now, err := s.recordField(renter, "verification_date")
	if err != nil {
		return err
	}
	if now != before {
		return fmt.Errorf("verification date changed from %v to %v", before, now)
	}
	return nil
}

func (s *registrySteps) verificationDateIsLastUpdate(ctx context.Context, renter string) error {
	date, err := s.recordField(renter, "verification_date")
	if err != nil {
		return err
	}
	updated, err := s.tc.GetResponseField("record.last_updated")
	if err != nil {
		return err
	}
	if date != updated {
		return fmt.Errorf("verification_date %v != last_updated %v", date, updated)
	}
	return nil
}
