package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Configuration
	Port            int
	StaticDir       string
	CORSAllowOrigin string

	// ML Model Configuration
	ModelDir  string
	StatsFile string

	// Chatbot Configuration
	HuggingFaceAPIKey  string
	ChatModel          string
	ChatAPIBase        string
	ChatTimeoutSeconds int

	// ClickHouse Configuration (optional analytics sink)
	ClickHouseEnabled bool
	ClickHouseAddr    string
	ClickHouseDB      string
	ClickHouseUser    string
	ClickHousePass    string

	// MQTT Configuration (optional event publishing)
	MQTTEnabled          bool
	MQTTBroker           string
	MQTTClientID         string
	MQTTUsername         string
	MQTTPassword         string
	MQTTTopicPredictions string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		// HTTP Configuration
		Port:            getEnvInt("PORT", 8000),
		StaticDir:       getEnv("STATIC_DIR", ""),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),

		// ML Model Configuration
		ModelDir:  getEnv("MODEL_DIR", "./model"),
		StatsFile: getEnv("STATS_FILE", "./data/usage_stats.json"),

		// Chatbot Configuration
		HuggingFaceAPIKey:  getEnv("HUGGINGFACE_API_KEY", ""),
		ChatModel:          getEnv("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		ChatAPIBase:        getEnv("HF_API_BASE", "https://api-inference.huggingface.co"),
		ChatTimeoutSeconds: getEnvInt("CHAT_TIMEOUT_SECONDS", 30),

		// ClickHouse Configuration
		ClickHouseEnabled: getEnvBool("CLICKHOUSE_ENABLED", false),
		ClickHouseAddr:    getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:      getEnv("CLICKHOUSE_DB", "drivegreen"),
		ClickHouseUser:    getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePass:    getEnv("CLICKHOUSE_PASS", ""),

		// MQTT Configuration
		MQTTEnabled:          getEnvBool("MQTT_ENABLED", false),
		MQTTBroker:           getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID:         getEnv("MQTT_CLIENT_ID", "drivegreen-backend"),
		MQTTUsername:         getEnv("MQTT_USERNAME", ""),
		MQTTPassword:         getEnv("MQTT_PASSWORD", ""),
		MQTTTopicPredictions: getEnv("MQTT_TOPIC_PREDICTIONS", "drivegreen/predictions"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}
