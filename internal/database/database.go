package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
)

// Connections bundles the mongo client and the application database handle.
type Connections struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Module registers the database connections with Fx.
var Module = fx.Provide(New)

// New configures a mongo client; the connection is verified on start.
func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*Connections, error) {
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetRegistry(NewRegistry()).
		SetConnectTimeout(cfg.Mongo.ConnectTimeout)
	if cfg.Mongo.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.Mongo.MaxPoolSize)
	}

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	conns := &Connections{Client: client, DB: client.Database(cfg.Mongo.Database)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := Ping(ctx, client); err != nil {
				return fmt.Errorf("ping mongo: %w", err)
			}
			logger.Info("database connected", zap.String("database", cfg.Mongo.Database))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return conns, nil
}

// Ping checks primary reachability with a bounded timeout.
func Ping(ctx context.Context, client *mongo.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Ping(pingCtx, readpref.Primary())
}
