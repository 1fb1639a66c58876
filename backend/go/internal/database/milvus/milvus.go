package milvus

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/config"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient holds the Milvus connection and its schema configuration.
type MilvusClient struct {
	Client client.Client
	Config *config.MilvusConfig
}

// GetClient connects to Milvus once and returns the shared client.
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("connect to Milvus: %w", err)
			return
		}
		log.Printf("connected to Milvus at %s", cfg.Address)
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// EnsureCollection creates collName from the configured schema if it is missing,
// builds its vector index and loads it into memory.
func (c *MilvusClient) EnsureCollection(ctx context.Context, collName string) error {
	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("check collection '%s': %w", collName, err)
	}
	if !exists {
		schema := entity.NewSchema().
			WithName(collName).
			WithDescription(c.Config.Schema.Description)

		for _, fieldCfg := range c.Config.Schema.Fields {
			field := entity.NewField().WithName(fieldCfg.Name)
			if fieldCfg.IsPrimaryKey {
				field = field.WithIsPrimaryKey(true)
			}

			switch fieldCfg.DataType {
			case "Int64":
				field = field.WithDataType(entity.FieldTypeInt64)
			case "VarChar":
				field = field.WithDataType(entity.FieldTypeVarChar).WithMaxLength(int64(fieldCfg.MaxLength))
			case "FloatVector":
				field = field.WithDataType(entity.FieldTypeFloatVector).WithDim(int64(fieldCfg.Dim))
			default:
				return fmt.Errorf("unsupported data type: %s", fieldCfg.DataType)
			}
			schema = schema.WithField(field)
		}

		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create collection '%s': %w", collName, err)
		}
		idx, err := c.buildIndexFromConfig()
		if err != nil {
			return err
		}
		if err := c.Client.CreateIndex(ctx, collName, c.Config.Schema.Index.FieldName, idx, false); err != nil {
			return fmt.Errorf("create index on '%s': %w", c.Config.Schema.Index.FieldName, err)
		}
		log.Printf("created Milvus collection %s", collName)
	}

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("load collection '%s': %w", collName, err)
	}
	return nil
}

func (c *MilvusClient) buildIndexFromConfig() (entity.Index, error) {
	indexCfg := c.Config.Schema.Index
	metricType := entity.MetricType(indexCfg.MetricType)

	intParam := func(name string, def int) int {
		if v, ok := indexCfg.Params[name].(int); ok {
			return v
		}
		return def
	}

	switch indexCfg.IndexType {
	case "IVF_FLAT":
		return entity.NewIndexIvfFlat(metricType, intParam("nlist", 128))
	case "HNSW":
		return entity.NewIndexHNSW(metricType, intParam("M", 8), intParam("efConstruction", 96))
	case "AUTOINDEX", "":
		return entity.NewIndexAUTOINDEX(metricType)
	default:
		return nil, fmt.Errorf("unsupported index type: %s", indexCfg.IndexType)
	}
}
