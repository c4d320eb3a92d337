package shared

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

var (
	ErrMissingAccountId = errors.New("account id not found in event")
	ErrMissingRegion    = errors.New("region not found in event")
	ErrInvalidAccountId = errors.New("invalid account id")
)

// UnwrapEvent returns the detail of an eventbridge envelope, or the payload unchanged
// when it was delivered directly (step functions, manual invoke).
func UnwrapEvent(payload json.RawMessage) (json.RawMessage, error) {
	// probe first, the raw account payload has an object where the envelope has a string
	var probe struct {
		DetailType string `json:"detail-type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if probe.DetailType == "" {
		return payload, nil
	}
	var envelope events.CloudWatchEvent
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal eventbridge envelope: %w", err)
	}
	if len(envelope.Detail) == 0 {
		return nil, fmt.Errorf("eventbridge event [%s] has no detail", envelope.DetailType)
	}
	return envelope.Detail, nil
}

// ParseAccountEvent extracts the target account of an account-wide procedure.
func ParseAccountEvent(payload json.RawMessage) (TargetAccount, error) {
	detail, err := UnwrapEvent(payload)
	if err != nil {
		return TargetAccount{}, err
	}
	var event AccountEvent
	if err := json.Unmarshal(detail, &event); err != nil {
		return TargetAccount{}, fmt.Errorf("failed to unmarshal account event: %w", err)
	}
	return validateTarget(TargetAccount{AccountId: event.Account.AccountId}, false)
}

// ParseRegionalEvent extracts account and region of a regional procedure.
func ParseRegionalEvent(payload json.RawMessage) (TargetAccount, error) {
	detail, err := UnwrapEvent(payload)
	if err != nil {
		return TargetAccount{}, err
	}
	var event RegionalEvent
	if err := json.Unmarshal(detail, &event); err != nil {
		return TargetAccount{}, fmt.Errorf("failed to unmarshal regional event: %w", err)
	}
	return validateTarget(TargetAccount{AccountId: event.AccountId, Region: event.Region}, true)
}

// ParseGroupEvent decodes the payload of the sso assignment procedure.  Callers
// decide between the CreateGroup and new account paths using EventName.
func ParseGroupEvent(payload json.RawMessage) (GroupEvent, error) {
	detail, err := UnwrapEvent(payload)
	if err != nil {
		return GroupEvent{}, err
	}
	var event GroupEvent
	if err := json.Unmarshal(detail, &event); err != nil {
		return GroupEvent{}, fmt.Errorf("failed to unmarshal group event: %w", err)
	}
	return event, nil
}

func validateTarget(target TargetAccount, requireRegion bool) (TargetAccount, error) {
	if target.AccountId == "" {
		return TargetAccount{}, ErrMissingAccountId
	}
	if !IsValidAccountId(target.AccountId) {
		return TargetAccount{}, fmt.Errorf("%w [%s]", ErrInvalidAccountId, target.AccountId)
	}
	if !requireRegion {
		return target, nil
	}
	if target.Region == "" {
		return TargetAccount{}, ErrMissingRegion
	}
	if !IsValidRegion(target.Region) {
		return TargetAccount{}, fmt.Errorf("invalid region [%s]", target.Region)
	}
	return target, nil
}
