package config

import (
	"os"
	"strconv"
)

// Config 应用配置
type Config struct {
	Port         string
	DBPath       string
	JWTSecret    string
	AuthUsername string
	AuthPassword string
	MapMatchURL  string
	Workers      int // population fan-out bound

	// 默认离散化分辨率
	DefaultTimeResolution    int64   // tau, seconds
	DefaultSpatialResolution float64 // delta, degrees
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/cotraj/cotraj.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	authUsername := os.Getenv("AUTH_USERNAME")
	if authUsername == "" {
		authUsername = "admin"
	}

	authPassword := os.Getenv("AUTH_PASSWORD")
	if authPassword == "" {
		authPassword = "admin"
	}

	mapMatchURL := os.Getenv("MAPMATCH_URL")
	if mapMatchURL == "" {
		mapMatchURL = "http://localhost:5000"
	}

	workers := 8
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	timeRes := int64(60)
	if v := os.Getenv("TIME_RESOLUTION"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			timeRes = n
		}
	}

	spatialRes := 0.001 // ~111m cells at the equator
	if v := os.Getenv("SPATIAL_RESOLUTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			spatialRes = f
		}
	}

	return &Config{
		Port:                     port,
		DBPath:                   dbPath,
		JWTSecret:                jwtSecret,
		AuthUsername:             authUsername,
		AuthPassword:             authPassword,
		MapMatchURL:              mapMatchURL,
		Workers:                  workers,
		DefaultTimeResolution:    timeRes,
		DefaultSpatialResolution: spatialRes,
	}
}
