package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/outofoffice3/account-bootstrap/handle"
	"github.com/outofoffice3/account-bootstrap/internal/awsclientmgr"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
	"github.com/outofoffice3/common/logger"
)

var (
	bootstrapConfig shared.Config
	clientMgr       awsclientmgr.AWSClientMgr
	sos             logger.Logger
)

func handler(ctx context.Context, event json.RawMessage) error {
	// metrics are per invocation, the client mgr is shared across warm starts
	h := handle.New(handle.HandlerInput{
		Config:    bootstrapConfig,
		ClientMgr: clientMgr,
		Logger:    sos,
	})
	return h.Dispatch(ctx, event)
}

func main() {
	lambda.Start(handler)
}

func init() {
	cfg, err := shared.LoadConfig(os.Getenv)
	level := logger.LogLevelInfo
	if cfg.LogLevel == shared.LogLevelDebug {
		level = logger.LogLevelDebug
	}
	sos = logger.NewConsoleLogger(level)
	sos.Infof("main init started")
	if err != nil {
		sos.Errorf("failed to read environment, %v", err)
		panic("failed to read environment")
	}

	sdkConfig, err := config.LoadDefaultConfig(context.Background(),
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(3))
	if err != nil {
		sos.Errorf("failed to load SDK config, %v", err)
		panic("failed to load sdk config")
	}
	sos.Infof("SDK config loaded for region [%s]", sdkConfig.Region)

	// optional config document in s3
	sos.Debugf("config bucket name : [%s]", cfg.ConfigBucketName)
	sos.Debugf("config object key : [%s]", cfg.ConfigFileKey)
	if cfg.HasOverlay() {
		s3Client := s3.NewFromConfig(sdkConfig)
		getObjectOutput, err := s3Client.GetObject(context.Background(), &s3.GetObjectInput{
			Bucket: aws.String(cfg.ConfigBucketName),
			Key:    aws.String(cfg.ConfigFileKey),
		})
		if err != nil {
			sos.Errorf("failed to get object from s3, %v", err)
			panic("failed to get object from s3")
		}
		defer getObjectOutput.Body.Close()
		objectContent, err := io.ReadAll(getObjectOutput.Body)
		if err != nil {
			sos.Errorf("failed to read object content, %v", err)
			panic("failed to read object content")
		}
		cfg, err = cfg.MergeDocument(objectContent)
		if err != nil {
			sos.Errorf("failed to merge config document, %v", err)
			panic("failed to merge config document")
		}
		sos.Infof("config file retrieved")
	}

	if err := cfg.Validate(); err != nil {
		sos.Errorf("invalid config, %v", err)
		panic("invalid config: " + err.Error())
	}
	sos.Infof("config parsed [%+v]", cfg)

	clientMgr, err = awsclientmgr.Init(awsclientmgr.AWSClientMgrInitConfig{
		Cfg:               sdkConfig,
		ExecutionRoleName: cfg.ExecutionRoleName,
		Partition:         cfg.Partition,
	})
	if err != nil {
		sos.Errorf("failed to init aws client mgr, %v", err)
		panic("failed to init aws client mgr")
	}
	bootstrapConfig = cfg
}
