package api

import "time"

type ServerConfig struct {
	Auth    AuthConfig
	S3      S3Config
	DB      DBConfig
	Bidding BiddingConfig
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	PublicBaseURL   string
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

type BiddingConfig struct {
	MaxAttempts int
}
