package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/common/logger"
	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

var testRegions = []string{"eu-central-1", "eu-west-1", "us-east-1", "us-east-2", "us-west-2"}

func newTestDriver(metricMgr metricmgr.MetricMgr, maxWorkers int) Driver {
	return NewDriver(DriverInput{
		Name:       "test",
		Service:    "EC2",
		MaxWorkers: maxWorkers,
		Logger:     logger.NewConsoleLogger(logger.LogLevelDebug),
		MetricMgr:  metricMgr,
	})
}

func TestRunVisitsEveryRegion(t *testing.T) {
	assertion := assert.New(t)
	metricMgr := metricmgr.Init()
	var (
		mu      sync.Mutex
		visited []string
	)
	err := newTestDriver(metricMgr, 2).Run(context.Background(), "111122223333", testRegions, func(ctx context.Context, region string) error {
		mu.Lock()
		defer mu.Unlock()
		visited = append(visited, region)
		return nil
	})
	assertion.NoError(err)
	assertion.ElementsMatch(testRegions, visited)
	total, _ := metricMgr.GetMetric(metricmgr.TotalRegions)
	assertion.Equal(int32(len(testRegions)), total)
}

func TestRunIsolatesFailures(t *testing.T) {
	assertion := assert.New(t)
	metricMgr := metricmgr.Init()
	var completed int32
	boom := errors.New("boom")

	err := newTestDriver(metricMgr, 10).Run(context.Background(), "111122223333", testRegions, func(ctx context.Context, region string) error {
		if region == "us-east-1" {
			return boom
		}
		atomic.AddInt32(&completed, 1)
		return nil
	})

	assertion.Error(err)
	assertion.ErrorIs(err, boom)
	assertion.Equal(int32(len(testRegions)-1), atomic.LoadInt32(&completed))

	errs := multierr.Errors(err)
	assertion.Len(errs, 1)
	var regionErr errormgr.Error
	assertion.True(errors.As(errs[0], &regionErr))
	assertion.Equal("us-east-1", regionErr.Region)
	assertion.Equal("111122223333", regionErr.AccountId)

	failed, _ := metricMgr.GetMetric(metricmgr.TotalRegionsFailed)
	assertion.Equal(int32(1), failed)
}

func TestRunReportsEveryFailedRegion(t *testing.T) {
	assertion := assert.New(t)
	err := newTestDriver(metricmgr.Init(), 3).Run(context.Background(), "111122223333", testRegions, func(ctx context.Context, region string) error {
		if region == "eu-west-1" || region == "us-west-2" {
			return errors.New("failed in " + region)
		}
		return nil
	})
	errs := multierr.Errors(err)
	assertion.Len(errs, 2)
	regions := []string{}
	for _, e := range errs {
		var regionErr errormgr.Error
		if errors.As(e, &regionErr) {
			regions = append(regions, regionErr.Region)
		}
	}
	assertion.ElementsMatch([]string{"eu-west-1", "us-west-2"}, regions)
}

func TestRunSkipsOptInRegions(t *testing.T) {
	assertion := assert.New(t)
	metricMgr := metricmgr.Init()
	err := newTestDriver(metricMgr, 10).Run(context.Background(), "111122223333", testRegions, func(ctx context.Context, region string) error {
		if region == "eu-central-1" {
			return &smithy.GenericAPIError{Code: errormgr.CodeOptInRequired, Message: "region not enabled"}
		}
		return nil
	})
	assertion.NoError(err)
	skipped, _ := metricMgr.GetMetric(metricmgr.TotalRegionsSkipped)
	assertion.Equal(int32(1), skipped)
}

func TestRunBoundsConcurrency(t *testing.T) {
	assertion := assert.New(t)
	var (
		running int32
		peak    int32
	)
	regions := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		regions = append(regions, testRegions[i%len(testRegions)]+"-"+string(rune('a'+i)))
	}
	err := newTestDriver(metricmgr.Init(), 3).Run(context.Background(), "111122223333", regions, func(ctx context.Context, region string) error {
		current := atomic.AddInt32(&running, 1)
		defer atomic.AddInt32(&running, -1)
		for {
			old := atomic.LoadInt32(&peak)
			if current <= old || atomic.CompareAndSwapInt32(&peak, old, current) {
				break
			}
		}
		return nil
	})
	assertion.NoError(err)
	assertion.LessOrEqual(atomic.LoadInt32(&peak), int32(3))
}

func TestRunRecoversPanics(t *testing.T) {
	assertion := assert.New(t)
	err := newTestDriver(metricmgr.Init(), 2).Run(context.Background(), "111122223333", []string{"us-east-1", "us-west-2"}, func(ctx context.Context, region string) error {
		if region == "us-west-2" {
			panic("unexpected nil client")
		}
		return nil
	})
	assertion.Error(err)
	assertion.Contains(err.Error(), "us-west-2")
}

func TestRunNoRegions(t *testing.T) {
	assertion := assert.New(t)
	called := false
	err := newTestDriver(metricmgr.Init(), 2).Run(context.Background(), "111122223333", nil, func(ctx context.Context, region string) error {
		called = true
		return nil
	})
	assertion.NoError(err)
	assertion.False(called)
}
