package worker

import (
	"context"
	"fmt"

	"github.com/alitto/pond"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/account-bootstrap/internal/gotracker"
	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
	"github.com/outofoffice3/common/logger"
)

// RegionTask configures one region.  It must only touch state owned by that region.
type RegionTask func(ctx context.Context, region string) error

type Driver interface {
	// run task once per region with bounded concurrency and wait for all of them
	Run(ctx context.Context, accountId string, regions []string, task RegionTask) error
}

type _Driver struct {
	name       string
	service    string
	maxWorkers int
	logger     logger.Logger
	metricMgr  metricmgr.MetricMgr
}

type DriverInput struct {
	Name       string // operation name used in errors and logs
	Service    string
	MaxWorkers int
	Logger     logger.Logger
	MetricMgr  metricmgr.MetricMgr
}

func NewDriver(input DriverInput) Driver {
	maxWorkers := input.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = shared.DefaultMaxWorkers
	}
	log := input.Logger
	if log == nil {
		log = logger.NewConsoleLogger(logger.LogLevelInfo)
	}
	metricMgr := input.MetricMgr
	if metricMgr == nil {
		metricMgr = metricmgr.Init()
	}
	return &_Driver{
		name:       input.Name,
		service:    input.Service,
		maxWorkers: maxWorkers,
		logger:     log,
		metricMgr:  metricMgr,
	}
}

// Run waits for every region.  A failure in one region never stops the others;
// failures that are not region skips are returned together once all regions are done.
func (d *_Driver) Run(ctx context.Context, accountId string, regions []string, task RegionTask) error {
	if len(regions) == 0 {
		d.logger.Infof("%s : no regions to process for account [%s]", d.name, accountId)
		return nil
	}
	errMgr := errormgr.NewErrorMgr()
	tracker := gotracker.NewTracker()
	pool := pond.New(d.maxWorkers, len(regions))

	d.logger.Infof("%s : processing [%d] regions for account [%s] with [%d] workers", d.name, len(regions), accountId, d.maxWorkers)
	for _, region := range regions {
		pool.Submit(func() {
			tracker.Start(d.name, region)
			defer tracker.Done(d.name, region)
			d.metricMgr.IncrementMetric(metricmgr.TotalRegions, 1)

			err := d.runTask(ctx, region, task)
			switch {
			case err == nil:
				d.logger.Debugf("%s : region [%s] done", d.name, region)
			case errormgr.IsRegionSkippable(err):
				d.metricMgr.IncrementMetric(metricmgr.TotalRegionsSkipped, 1)
				d.logger.Infof("%s : skipping region [%s], %v", d.name, region, err)
			default:
				d.metricMgr.IncrementMetric(metricmgr.TotalRegionsFailed, 1)
				d.logger.Errorf("%s : region [%s] failed, %v", d.name, region, err)
				errMgr.StoreError(errormgr.Error{
					AccountId: accountId,
					Region:    region,
					Service:   d.service,
					Operation: d.name,
					Err:       err,
				})
			}
		})
	}
	pool.StopAndWait()
	d.logger.Debugf("%s : [%d] region tasks finished", d.name, tracker.Started())

	if !tracker.AllDone() {
		d.logger.Errorf("%s : region tasks still running [%v]", d.name, tracker.Active())
	}
	return errMgr.Err()
}

// runTask turns a panic in one region into that region's error.
func (d *_Driver) runTask(ctx context.Context, region string, task RegionTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in region [%s]: %v", region, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return task(ctx, region)
}
