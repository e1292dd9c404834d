package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	QR        QRConfig        `mapstructure:"qr"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Owner     OwnerConfig     `mapstructure:"owner"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Mode         string        `mapstructure:"mode"` // gin mode: debug, release, test
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	Timezone     string        `mapstructure:"timezone"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Location returns the gym's time zone, falling back to UTC.
func (s ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // mongo or memory
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

// RedisConfig is optional. An empty Addr keeps the cache in process.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// QRConfig signs the gym check-in QR codes. Secret falls back to the JWT secret.
type QRConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Size   int           `mapstructure:"size"` // PNG edge in pixels
}

type JobsConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SessionTick  string `mapstructure:"session_tick"`
	ExpireSpec   string `mapstructure:"expire_spec"`
	CheckoutSpec string `mapstructure:"checkout_spec"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type RateLimitConfig struct {
	LoginRPS   float64 `mapstructure:"login_rps"`
	LoginBurst int     `mapstructure:"login_burst"`
	ScanRPS    float64 `mapstructure:"scan_rps"`
	ScanBurst  int     `mapstructure:"scan_burst"`
}

// OwnerConfig seeds the gym owner account on first start. Empty Email skips it.
type OwnerConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	FullName string `mapstructure:"full_name"`
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory is loaded into the environment first.
func LoadConfig(path string) (config Config, err error) {
	// Missing .env is normal in containers.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// Every key needs a default so AutomaticEnv picks it up in Unmarshal.
	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// Durations are parsed from strings like "60m" straight into time.Duration.
	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if len(config.Server.CORSOrigins) == 1 && strings.Contains(config.Server.CORSOrigins[0], ",") {
		config.Server.CORSOrigins = strings.Split(config.Server.CORSOrigins[0], ",")
	}
	if config.QR.Secret == "" {
		config.QR.Secret = config.JWT.Secret
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "gym_app")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "ap-southeast-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("qr.secret", "")
	v.SetDefault("qr.ttl", "5m")
	v.SetDefault("qr.size", 256)
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.session_tick", "@every 1m")
	v.SetDefault("jobs.expire_spec", "@hourly")
	v.SetDefault("jobs.checkout_spec", "59 23 * * *")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("ratelimit.login_rps", 1)
	v.SetDefault("ratelimit.login_burst", 5)
	v.SetDefault("ratelimit.scan_rps", 0.5)
	v.SetDefault("ratelimit.scan_burst", 3)
	v.SetDefault("owner.email", "")
	v.SetDefault("owner.password", "")
	v.SetDefault("owner.full_name", "Chủ phòng gym")
}
