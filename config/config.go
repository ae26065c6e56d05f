package config

import "os"

type Config struct {
	MongoURI     string
	RedisAddr    string
	HTTPPort     string
	CountriesURL string
}

func Load() *Config {
	return &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:    getEnv("REDIS_URI", "localhost:6379"),
		HTTPPort:     getEnv("PORT", "8080"),
		CountriesURL: getEnv("COUNTRIES_API_URL", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
