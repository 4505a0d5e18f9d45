package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coralbay/estate/internal/config"
	"coralbay/estate/internal/models"
)

// IConfigService defines the interface for accessing dynamic configuration.
// Values live in Mongo, are cached in memory, and cache invalidation rides
// on a Redis Pub/Sub channel shared by all instances.
type IConfigService interface {
	Get(ctx context.Context, key string) (interface{}, error)
	GetInt(ctx context.Context, key string, defaultValue int) int
	GetString(ctx context.Context, key string, defaultValue string) string
	GetBool(ctx context.Context, key string, defaultValue bool) bool
	GetDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration
	Load(ctx context.Context) error
	SubscribeToChanges(ctx context.Context) error
	SetConfigValue(ctx context.Context, key string, value interface{}) error
	GetAPIEndpointConfig(ctx context.Context, endpoint string) (*models.APIEndpointConfig, error)
}

const (
	configCollection    = "settings"
	apiConfigCollection = "api_endpoints_config"
	configUpdateChannel = "settings_updates"
)

// configService implements IConfigService.
type configService struct {
	db       *mongo.Database
	cfg      *config.Config // initial defaults loaded from .env
	rdb      *redis.Client
	cache    map[string]interface{}
	apiCache map[string]*models.APIEndpointConfig
	mutex    sync.RWMutex
}

// NewConfigService creates a new ConfigService, loads the current settings
// and starts the Pub/Sub listener.
func NewConfigService(db *mongo.Database, initialCfg *config.Config, rdb *redis.Client) IConfigService {
	s := &configService{
		db:       db,
		cfg:      initialCfg,
		rdb:      rdb,
		cache:    make(map[string]interface{}),
		apiCache: make(map[string]*models.APIEndpointConfig),
	}
	if err := s.Load(context.Background()); err != nil {
		log.Printf("WARNING: Failed to load initial settings from DB: %v. Using defaults from .env", err)
	}
	go func() {
		if err := s.SubscribeToChanges(context.Background()); err != nil {
			log.Printf("CRITICAL: Settings Pub/Sub listener stopped: %v", err)
		}
	}()
	return s
}

// ConfigEntry represents a document in the settings collection.
type ConfigEntry struct {
	Key   string      `bson:"key"`
	Value interface{} `bson:"value"`
}

// Load fetches all settings and endpoint configs from DB into the cache.
func (s *configService) Load(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	collection := s.db.Collection(configCollection)
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to query settings collection: %w", err)
	}
	defer cursor.Close(ctx)

	newCache := make(map[string]interface{})
	for cursor.Next(ctx) {
		var entry ConfigEntry
		if err := cursor.Decode(&entry); err == nil {
			newCache[entry.Key] = entry.Value
		} else {
			log.Printf("Warning: Failed to decode settings entry during load: %v", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("error iterating settings cursor: %w", err)
	}
	s.cache = newCache

	apiCursor, err := s.db.Collection(apiConfigCollection).Find(ctx, bson.M{})
	if err != nil {
		// Endpoint overrides are optional; keep the settings that did load.
		log.Printf("Error querying API endpoint configs: %v", err)
		return nil
	}
	defer apiCursor.Close(ctx)

	newAPICache := make(map[string]*models.APIEndpointConfig)
	for apiCursor.Next(ctx) {
		var entry models.APIEndpointConfig
		if err := apiCursor.Decode(&entry); err == nil {
			newAPICache[entry.Endpoint] = &entry
		} else {
			log.Printf("Warning: Failed to decode API config entry during load: %v", err)
		}
	}
	if err := apiCursor.Err(); err != nil {
		log.Printf("Error iterating API config cursor: %v", err)
	}
	s.apiCache = newAPICache

	log.Printf("Loaded %d settings and %d API endpoint configs into cache from DB.", len(s.cache), len(s.apiCache))
	return nil
}

// Get retrieves a setting from the cache. There is no DB round trip on a
// miss; the cache is refreshed on Pub/Sub notifications.
func (s *configService) Get(ctx context.Context, key string) (interface{}, error) {
	s.mutex.RLock()
	val, exists := s.cache[key]
	s.mutex.RUnlock()

	if exists {
		return val, nil
	}
	return nil, fmt.Errorf("settings key '%s' not found", key)
}

func (s *configService) GetString(ctx context.Context, key string, defaultValue string) string {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if strVal, ok := val.(string); ok {
		return strVal
	}
	log.Printf("Warning: Settings key '%s' is not a string, using default.", key)
	return defaultValue
}

func (s *configService) GetInt(ctx context.Context, key string, defaultValue int) int {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	// MongoDB might store numbers as float64 or int32/64
	switch v := val.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		log.Printf("Warning: Settings key '%s' is not an integer type (%T), using default.", key, val)
		return defaultValue
	}
}

func (s *configService) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if boolVal, ok := val.(bool); ok {
		return boolVal
	}
	log.Printf("Warning: Settings key '%s' is not a boolean, using default.", key)
	return defaultValue
}

// GetDuration retrieves a setting as time.Duration, stored as seconds.
func (s *configService) GetDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return time.Duration(v) * time.Second
	case int32:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v) * time.Second
	default:
		log.Printf("Warning: Settings key '%s' is not a numeric type for duration (%T), using default.", key, val)
		return defaultValue
	}
}

// SubscribeToChanges listens for update messages on Redis Pub/Sub and
// reloads the cache on every notification.
func (s *configService) SubscribeToChanges(ctx context.Context) error {
	if s.rdb == nil {
		log.Println("Redis client not configured, cannot subscribe to settings changes.")
		return nil
	}

	pubsub := s.rdb.Subscribe(ctx, configUpdateChannel)
	defer pubsub.Close()

	// Wait for confirmation that subscription is created before anything is published.
	_, err := pubsub.Receive(ctx)
	if err != nil {
		return fmt.Errorf("failed to receive confirmation from Redis Pub/Sub subscription: %w", err)
	}

	ch := pubsub.Channel()
	log.Println("Subscribed to Redis channel for settings updates:", configUpdateChannel)

	for msg := range ch {
		log.Printf("Received settings update notification on channel %s: %s", msg.Channel, msg.Payload)
		if err := s.Load(context.Background()); err != nil {
			log.Printf("ERROR reloading settings from DB after notification: %v", err)
		}
	}

	log.Println("Settings Pub/Sub listener stopped.")
	return nil
}

// SetConfigValue upserts a setting in the DB and publishes an update.
func (s *configService) SetConfigValue(ctx context.Context, key string, value interface{}) error {
	collection := s.db.Collection(configCollection)
	filter := bson.M{"key": key}
	update := bson.M{
		"$set": bson.M{
			"key":   key,
			"value": value,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert settings key '%s' in DB: %w", key, err)
	}

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, configUpdateChannel, key).Err(); err != nil {
			log.Printf("Warning: Failed to publish settings update notification for key '%s': %v", key, err)
		}
	}

	log.Printf("Updated settings key '%s' and published notification.", key)
	return nil
}

// GetAPIEndpointConfig retrieves the rate limit overrides for an endpoint.
// Returns nil when no override exists, meaning defaults apply.
func (s *configService) GetAPIEndpointConfig(ctx context.Context, endpoint string) (*models.APIEndpointConfig, error) {
	s.mutex.RLock()
	endpointConfig, exists := s.apiCache[endpoint]
	s.mutex.RUnlock()

	if exists {
		return endpointConfig, nil
	}
	return nil, nil
}
