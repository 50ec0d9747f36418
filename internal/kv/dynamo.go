package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local"
	DynamoModeAWS   DynamoMode = "aws"
)

// DynamoConfig holds DynamoDB blob-store configuration
type DynamoConfig struct {
	Mode     DynamoMode
	Endpoint string // for local mode
	Region   string
	Table    string
}

const (
	dynamoKeyAttr  = "k"
	dynamoBlobAttr = "v"
)

// Dynamo stores blobs as single items in one DynamoDB table keyed by blob
// name. Intended for the local DynamoDB container; AWS mode exists for
// parity with the usual credential chain.
type Dynamo struct {
	client *dynamodb.Client
	table  string
	logger zerolog.Logger
}

// NewDynamo creates a DynamoDB-backed blob store
func NewDynamo(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*Dynamo, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs when
		// static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	d := &Dynamo{client: client, table: cfg.Table, logger: logger}

	if cfg.Mode == DynamoModeLocal {
		if err := d.createTableIfNotExists(ctx); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("table", cfg.Table).
		Msg("dynamodb blob store ready")
	return d, nil
}

// Get returns the blob stored under key, or (nil, nil) when absent
func (d *Dynamo) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]dbtypes.AttributeValue{
			dynamoKeyAttr: &dbtypes.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo get %s: %w", key, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	blob, ok := out.Item[dynamoBlobAttr].(*dbtypes.AttributeValueMemberB)
	if !ok {
		return nil, nil
	}
	return blob.Value, nil
}

// Put stores value under key, replacing any previous blob
func (d *Dynamo) Put(ctx context.Context, key string, value []byte) error {
	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item: map[string]dbtypes.AttributeValue{
			dynamoKeyAttr:  &dbtypes.AttributeValueMemberS{Value: key},
			dynamoBlobAttr: &dbtypes.AttributeValueMemberB{Value: value},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamo put %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key. Deleting an absent key is a no-op.
func (d *Dynamo) Delete(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key: map[string]dbtypes.AttributeValue{
			dynamoKeyAttr: &dbtypes.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamo delete %s: %w", key, err)
	}
	return nil
}

func (d *Dynamo) createTableIfNotExists(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.table),
	})
	if err == nil {
		return nil
	}
	var notFound *dbtypes.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("%w: describe table %s: %v", ErrUnavailable, d.table, err)
	}

	d.logger.Info().Str("table", d.table).Msg("creating dynamodb table")
	_, err = d.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(d.table),
		AttributeDefinitions: []dbtypes.AttributeDefinition{
			{AttributeName: aws.String(dynamoKeyAttr), AttributeType: dbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []dbtypes.KeySchemaElement{
			{AttributeName: aws.String(dynamoKeyAttr), KeyType: dbtypes.KeyTypeHash},
		},
		BillingMode: dbtypes.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", d.table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(d.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.table),
	}, 30*time.Second); err != nil {
		return fmt.Errorf("wait for table %s: %w", d.table, err)
	}
	return nil
}
