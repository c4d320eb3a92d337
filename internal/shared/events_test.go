package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAccountEvent(t *testing.T) {
	assertion := assert.New(t)

	target, err := ParseAccountEvent(json.RawMessage(`{"account":{"accountId":"123456789012"}}`))
	assertion.NoError(err)
	assertion.Equal("123456789012", target.AccountId)
	assertion.Empty(target.Region)

	_, err = ParseAccountEvent(json.RawMessage(`{"account":{}}`))
	assertion.ErrorIs(err, ErrMissingAccountId)

	_, err = ParseAccountEvent(json.RawMessage(`{}`))
	assertion.ErrorIs(err, ErrMissingAccountId)

	_, err = ParseAccountEvent(json.RawMessage(`{"account":{"accountId":"12345"}}`))
	assertion.Error(err)

	_, err = ParseAccountEvent(json.RawMessage(`[`))
	assertion.Error(err)
}

func TestParseAccountEventFromEnvelope(t *testing.T) {
	assertion := assert.New(t)
	payload := json.RawMessage(`{
		"version": "0",
		"id": "c7a0a6b4-1234-5678-9abc-def012345678",
		"detail-type": "AccountCreated",
		"source": "account.vending",
		"account": "999999999999",
		"region": "us-east-1",
		"detail": {"account": {"accountId": "123456789012"}}
	}`)
	target, err := ParseAccountEvent(payload)
	assertion.NoError(err)
	assertion.Equal("123456789012", target.AccountId)

	_, err = UnwrapEvent(json.RawMessage(`{"detail-type":"AccountCreated","account":"999999999999"}`))
	assertion.Error(err)
}

func TestParseRegionalEvent(t *testing.T) {
	assertion := assert.New(t)

	target, err := ParseRegionalEvent(json.RawMessage(`{"account_id":"123456789012","region":"eu-west-1"}`))
	assertion.NoError(err)
	assertion.Equal(TargetAccount{AccountId: "123456789012", Region: "eu-west-1"}, target)

	_, err = ParseRegionalEvent(json.RawMessage(`{"region":"eu-west-1"}`))
	assertion.ErrorIs(err, ErrMissingAccountId)

	_, err = ParseRegionalEvent(json.RawMessage(`{"account_id":"123456789012"}`))
	assertion.ErrorIs(err, ErrMissingRegion)

	_, err = ParseRegionalEvent(json.RawMessage(`{"account_id":"123456789012","region":"Mars"}`))
	assertion.Error(err)
}

func TestParseGroupEvent(t *testing.T) {
	assertion := assert.New(t)
	payload := json.RawMessage(`{
		"detail-type": "AWS API Call via CloudTrail",
		"account": "999999999999",
		"detail": {
			"eventName": "CreateGroup",
			"responseElements": {"group": {"groupId": "g-1234", "groupName": "AWS-A-AccountA-DeveloperAccess"}}
		}
	}`)
	event, err := ParseGroupEvent(payload)
	assertion.NoError(err)
	assertion.Equal(CreateGroupEventName, event.EventName)
	assertion.Equal("g-1234", event.ResponseElements.Group.GroupId)
	assertion.Equal("AWS-A-AccountA-DeveloperAccess", event.ResponseElements.Group.GroupName)

	event, err = ParseGroupEvent(json.RawMessage(`{"account":{"accountId":"123456789012"}}`))
	assertion.NoError(err)
	assertion.Empty(event.EventName)
	assertion.Equal("123456789012", event.Account.AccountId)
}
