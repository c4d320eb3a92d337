package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/outofoffice3/account-bootstrap/internal/awsclientmgr"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
	"github.com/outofoffice3/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/multierr"
)

const ec2Namespace = "http://ec2.amazonaws.com/doc/2016-11-15/"

// apiCall is one request seen by the transport.  Operation is the json target or
// query action, or method and last path segment for rest apis.
type apiCall struct {
	Host      string
	Operation string
}

type stubResponse struct {
	status int
	body   string
}

// recordingTransport answers every sdk request in-process and records it in order.
type recordingTransport struct {
	mu      sync.Mutex
	calls   []apiCall
	respond func(call apiCall) stubResponse
}

func (r *recordingTransport) Do(req *http.Request) (*http.Response, error) {
	call := apiCall{Host: req.URL.Host, Operation: operationName(req)}
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()

	response := stubResponse{}
	if r.respond != nil {
		response = r.respond(call)
	}
	if response.status == 0 {
		response.status = http.StatusOK
	}
	if response.body == "" {
		response.body = defaultBody(req, call)
	}
	return &http.Response{
		StatusCode:    response.status,
		Status:        fmt.Sprintf("%d %s", response.status, http.StatusText(response.status)),
		Header:        http.Header{},
		Body:          io.NopCloser(strings.NewReader(response.body)),
		ContentLength: int64(len(response.body)),
		Request:       req,
	}, nil
}

// operations returns the recorded operations, limited to hosts containing filter.
func (r *recordingTransport) operations(filter string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	operations := []string{}
	for _, call := range r.calls {
		if strings.Contains(call.Host, filter) {
			operations = append(operations, call.Operation)
		}
	}
	return operations
}

func operationName(req *http.Request) string {
	if target := req.Header.Get("X-Amz-Target"); target != "" {
		return target[strings.LastIndex(target, ".")+1:]
	}
	if req.Body != nil && strings.Contains(req.Header.Get("Content-Type"), "x-www-form-urlencoded") {
		body, _ := io.ReadAll(req.Body)
		if values, err := url.ParseQuery(string(body)); err == nil && values.Get("Action") != "" {
			return values.Get("Action")
		}
	}
	path := strings.TrimSuffix(req.URL.Path, "/")
	return req.Method + " " + path[strings.LastIndex(path, "/")+1:]
}

func defaultBody(req *http.Request, call apiCall) string {
	switch {
	case strings.Contains(req.Header.Get("Content-Type"), "json"):
		return "{}"
	case strings.HasPrefix(call.Host, "ec2."):
		return fmt.Sprintf(`<%sResponse xmlns="%s"><requestId>req-1</requestId></%sResponse>`, call.Operation, ec2Namespace, call.Operation)
	}
	return ""
}

func ec2Error(status int, code string) stubResponse {
	return stubResponse{
		status: status,
		body:   fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><Response><Errors><Error><Code>%s</Code><Message>%s</Message></Error></Errors><RequestID>req-1</RequestID></Response>`, code, code),
	}
}

func defaultVpc(vpcId string) stubResponse {
	return stubResponse{
		status: http.StatusOK,
		body:   fmt.Sprintf(`<DescribeVpcsResponse xmlns="%s"><requestId>req-1</requestId><vpcSet><item><vpcId>%s</vpcId><isDefault>true</isDefault><dhcpOptionsId>default</dhcpOptionsId></item></vpcSet></DescribeVpcsResponse>`, ec2Namespace, vpcId),
	}
}

func newRecordedSession(transport *recordingTransport) *awsclientmgr.Session {
	return awsclientmgr.NewSession("111122223333", aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", "token"),
		HTTPClient:  transport,
		Retryer:     func() aws.Retryer { return aws.NopRetryer{} },
	})
}

func newConfiguredHandler(cfg shared.Config, clientMgr awsclientmgr.AWSClientMgr) *Handler {
	return New(HandlerInput{
		Config:    cfg,
		ClientMgr: clientMgr,
		Logger:    logger.NewConsoleLogger(logger.LogLevelDebug),
	})
}

func testConfig(procedure shared.Procedure) shared.Config {
	return shared.Config{
		Procedure:         procedure,
		ExecutionRoleName: shared.DefaultExecutionRoleName,
		Partition:         shared.DefaultPartition,
		MaxWorkers:        shared.DefaultMaxWorkers,
		Route53LogRegion:  shared.DefaultRoute53LogRegion,
	}
}

func metric(h *Handler, name metricmgr.Metric) int32 {
	value, _ := h.MetricMgr().GetMetric(name)
	return value
}

var ecsSettingCalls = []string{
	"PutAccountSettingDefault", "PutAccountSettingDefault", "PutAccountSettingDefault",
	"PutAccountSettingDefault", "PutAccountSettingDefault", "PutAccountSettingDefault",
	"PutAccountSettingDefault",
}

func regionalSetupOrder(withAnalyzer bool) []string {
	order := []string{"DescribeVpcs"}
	order = append(order, ecsSettingCalls...)
	order = append(order, "EnableEbsEncryptionByDefault", "UpdateServiceSetting")
	if withAnalyzer {
		order = append(order, "PUT analyzer")
	}
	return order
}

func TestAccountSetupOrder(t *testing.T) {
	assertion := assert.New(t)
	transport := &recordingTransport{}
	clientMgr := &mockClientMgr{}
	clientMgr.On("AssumeRole", mock.Anything, "111122223333", shared.SessionAccountSetup).
		Return(newRecordedSession(transport), nil).Once()

	h := newConfiguredHandler(testConfig(shared.ProcedureAccountSetup), clientMgr)
	err := h.Dispatch(context.Background(), json.RawMessage(accountEvent))
	assertion.NoError(err)
	assertion.Equal([]string{"UpdateAccountPasswordPolicy", "PUT publicAccessBlock", "PutResourcePolicy"}, transport.operations(""))
	assertion.Equal(int32(3), metric(h, metricmgr.TotalSettingsApplied))
	clientMgr.AssertExpectations(t)
}

func TestRegionalSetupOrder(t *testing.T) {
	for _, withAnalyzer := range []bool{false, true} {
		t.Run(fmt.Sprintf("analyzer=%v", withAnalyzer), func(t *testing.T) {
			assertion := assert.New(t)
			transport := &recordingTransport{}
			clientMgr := &mockClientMgr{}
			clientMgr.On("AssumeRole", mock.Anything, "111122223333", shared.SessionAccountSetup).
				Return(newRecordedSession(transport), nil).Once()

			cfg := testConfig(shared.ProcedureRegionalSetup)
			cfg.EnableAccessAnalyzer = withAnalyzer
			h := newConfiguredHandler(cfg, clientMgr)
			err := h.Dispatch(context.Background(), json.RawMessage(`{"account_id":"111122223333","region":"eu-west-1"}`))
			assertion.NoError(err)
			assertion.Equal(regionalSetupOrder(withAnalyzer), transport.operations(""))
			assertion.Len(transport.operations("eu-west-1"), len(transport.operations("")))
		})
	}
}

func TestRegionalSetupPermissionErrorMidSequenceFails(t *testing.T) {
	assertion := assert.New(t)
	transport := &recordingTransport{
		respond: func(call apiCall) stubResponse {
			if call.Operation == "EnableEbsEncryptionByDefault" {
				return ec2Error(http.StatusForbidden, errormgr.CodeUnauthorized)
			}
			return stubResponse{}
		},
	}
	clientMgr := &mockClientMgr{}
	clientMgr.On("AssumeRole", mock.Anything, "111122223333", shared.SessionAccountSetup).
		Return(newRecordedSession(transport), nil).Once()

	h := newConfiguredHandler(testConfig(shared.ProcedureRegionalSetup), clientMgr)
	err := h.Dispatch(context.Background(), json.RawMessage(`{"account_id":"111122223333","region":"eu-west-1"}`))
	assertion.Error(err)
	assertion.Equal(errormgr.CodeUnauthorized, errormgr.ErrorCode(err))

	operations := transport.operations("")
	assertion.Equal("EnableEbsEncryptionByDefault", operations[len(operations)-1])
	assertion.NotContains(operations, "UpdateServiceSetting")
	assertion.Equal(int32(0), metric(h, metricmgr.TotalRegionsSkipped))
}

func TestRegionalSetupSkipsOptInRegion(t *testing.T) {
	assertion := assert.New(t)
	transport := &recordingTransport{
		respond: func(call apiCall) stubResponse {
			if call.Operation == "DescribeVpcs" {
				return ec2Error(http.StatusUnauthorized, errormgr.CodeOptInRequired)
			}
			return stubResponse{}
		},
	}
	clientMgr := &mockClientMgr{}
	clientMgr.On("AssumeRole", mock.Anything, "111122223333", shared.SessionAccountSetup).
		Return(newRecordedSession(transport), nil).Once()

	h := newConfiguredHandler(testConfig(shared.ProcedureRegionalSetup), clientMgr)
	err := h.Dispatch(context.Background(), json.RawMessage(`{"account_id":"111122223333","region":"me-south-1"}`))
	assertion.NoError(err)
	assertion.Equal([]string{"DescribeVpcs"}, transport.operations(""))
	assertion.Equal(int32(1), metric(h, metricmgr.TotalRegionsSkipped))
}

func TestDeleteDefaultVpcAcrossRegions(t *testing.T) {
	assertion := assert.New(t)
	transport := &recordingTransport{
		respond: func(call apiCall) stubResponse {
			if call.Operation == "DescribeVpcs" && strings.Contains(call.Host, "us-east-1") {
				return defaultVpc("vpc-0a1b2c3d")
			}
			return stubResponse{}
		},
	}
	clientMgr := &mockClientMgr{}
	clientMgr.On("EnabledRegions", mock.Anything).Return([]string{"eu-west-1", "us-east-1"}, nil).Once()
	clientMgr.On("AssumeRole", mock.Anything, "111122223333", shared.SessionDeleteDefaultVpc).
		Return(newRecordedSession(transport), nil).Once()

	h := newConfiguredHandler(testConfig(shared.ProcedureDeleteDefaultVpc), clientMgr)
	err := h.Dispatch(context.Background(), json.RawMessage(accountEvent))
	assertion.NoError(err)

	assertion.Equal([]string{"DescribeVpcs"}, transport.operations("eu-west-1"))
	assertion.Equal([]string{
		"DescribeVpcs",
		"DescribeInternetGateways",
		"DescribeRouteTables",
		"DescribeSecurityGroups",
		"DescribeSubnets",
		"DescribeNetworkAcls",
		"DeleteVpc",
	}, transport.operations("us-east-1"))
	assertion.Equal(int32(2), metric(h, metricmgr.TotalRegions))
	assertion.Equal(int32(1), metric(h, metricmgr.TotalVpcsDeleted))
	clientMgr.AssertExpectations(t)
}

func TestDeleteDefaultVpcIsolatesRegionFailures(t *testing.T) {
	assertion := assert.New(t)
	transport := &recordingTransport{
		respond: func(call apiCall) stubResponse {
			switch {
			case call.Operation == "DescribeVpcs" && strings.Contains(call.Host, "me-south-1"):
				return ec2Error(http.StatusUnauthorized, errormgr.CodeOptInRequired)
			case call.Operation == "DescribeVpcs":
				return defaultVpc("vpc-0a1b2c3d")
			case call.Operation == "DeleteVpc" && strings.Contains(call.Host, "ap-southeast-2"):
				return ec2Error(http.StatusBadRequest, errormgr.CodeDependencyViolation)
			}
			return stubResponse{}
		},
	}
	clientMgr := &mockClientMgr{}
	clientMgr.On("EnabledRegions", mock.Anything).Return([]string{"ap-southeast-2", "me-south-1", "us-east-1"}, nil).Once()
	clientMgr.On("AssumeRole", mock.Anything, "111122223333", shared.SessionDeleteDefaultVpc).
		Return(newRecordedSession(transport), nil).Once()

	h := newConfiguredHandler(testConfig(shared.ProcedureDeleteDefaultVpc), clientMgr)
	err := h.Dispatch(context.Background(), json.RawMessage(accountEvent))
	assertion.Error(err)

	failures := multierr.Errors(err)
	assertion.Len(failures, 1)
	var regionErr errormgr.Error
	assertion.True(errors.As(failures[0], &regionErr))
	assertion.Equal("ap-southeast-2", regionErr.Region)
	assertion.Equal(errormgr.CodeDependencyViolation, errormgr.ErrorCode(err))

	assertion.Contains(transport.operations("us-east-1"), "DeleteVpc")
	assertion.Equal(int32(3), metric(h, metricmgr.TotalRegions))
	assertion.Equal(int32(1), metric(h, metricmgr.TotalRegionsSkipped))
	assertion.Equal(int32(1), metric(h, metricmgr.TotalRegionsFailed))
	assertion.Equal(int32(1), metric(h, metricmgr.TotalVpcsDeleted))
}
