package catalog

import (
	"fmt"

	"github.com/devconsole/modelbridge/core/errs"
	"github.com/devconsole/modelbridge/core/vendors"
)

// RequiresInferenceProfile reports whether name belongs to the fixed set of
// models that cannot be addressed by a plain model id and must go through a
// cross-region routing profile instead.
func (c *Catalog) RequiresInferenceProfile(name string) bool {
	_, ok := c.profileRequired[name]
	return ok
}

// InferenceProfileARN computes the cross-region routing identifier for a
// profile-required model. The alias is computed rather than looked up because
// it is parameterized by the caller's own account and region:
//
//	arn:aws:bedrock:{region}:{accountID}:inference-profile/{rr}.{vendorModelID}
//
// where {rr} is the two-letter region-class prefix of region (eu-central-1 →
// "eu"). Calling this for a model that does not require a profile fails with
// ErrValidation.
func (c *Catalog) InferenceProfileARN(name, region, accountID string) (string, error) {
	if !c.RequiresInferenceProfile(name) {
		return "", errs.Validationf("model %q does not require an inference profile", name)
	}
	if len(region) < 2 {
		return "", errs.Validationf("region %q is too short for a profile prefix", region)
	}
	if accountID == "" {
		return "", errs.Validationf("account id is required to build an inference profile")
	}

	vendorModelID, err := c.VendorModelID(name, vendors.AWS)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("arn:aws:bedrock:%s:%s:inference-profile/%s.%s",
		region, accountID, region[:2], vendorModelID), nil
}
