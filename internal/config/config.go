package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/podhaven/podhaven/internal/args"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server       ServerConfig
	Auth         AuthConfig
	InitialAdmin InitialAdminConfig
	Database     DatabaseConfig
	AudioStore   AudioStoreConfig
	CommentStore CommentStoreConfig
	Kv           KvConfig
}

type ServerConfig struct {
	Port           int
	Host           string
	ExternalUrl    string
	AllowedOrigins []string
}

type AuthConfig struct {
	JwtSecret string
}

type InitialAdminConfig struct {
	Email    string
	FullName string
}

type DatabaseMode string

const (
	DatabaseModeInMemory DatabaseMode = "memory"
	DatabaseModePostgres DatabaseMode = "postgres"
)

type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SslMode  string
}

type DatabaseConfig struct {
	Mode     DatabaseMode
	Postgres PostgresConfig
}

type AudioStoreMode string

const (
	AudioStoreModeInMemory  AudioStoreMode = "memory"
	AudioStoreModeDirectory AudioStoreMode = "directory"
	AudioStoreModeS3        AudioStoreMode = "s3"
)

type AudioStoreDirectoryConfig struct {
	Path string
}

type AudioStoreS3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type AudioStoreConfig struct {
	Mode      AudioStoreMode
	Directory AudioStoreDirectoryConfig
	S3        AudioStoreS3Config
}

type CommentStoreMode string

const (
	CommentStoreModeInMemory CommentStoreMode = "memory"
	CommentStoreModeDynamoDb CommentStoreMode = "dynamodb"
)

type CommentStoreDynamoConfig struct {
	Region    string
	Table     string
	AccessKey string
	SecretKey string
}

type CommentStoreConfig struct {
	Mode   CommentStoreMode
	Dynamo CommentStoreDynamoConfig
}

type KvMode string

const (
	KvModeInMemory KvMode = "memory"
	KvModeRedis    KvMode = "redis"
)

type RedisConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database int
}

type KvConfig struct {
	Mode  KvMode
	Redis RedisConfig
}

var C Config

var k = koanf.New(".")

func Init() {
	if args.ConfigFilePath() != "" {
		_, err := os.Stat(args.ConfigFilePath())
		if err != nil {
			panic(fmt.Errorf("failed to stat config file: %w", err))
		}

		err = k.Load(file.Provider(args.ConfigFilePath()), yaml.Parser())
		if err != nil {
			panic(fmt.Errorf("failed to load config file: %w", err))
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "PODHAVEN_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "PODHAVEN_")), "_", ".")

			if strings.Contains(v, " ") {
				return k, strings.Split(v, " ")
			}

			return k, v
		},
	}), nil)
	if err != nil {
		panic(fmt.Errorf("failed to load env provider: %w", err))
	}

	err = k.Unmarshal("", &C)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}

	setDefaultsOrPanic()
}

func setDefaultsOrPanic() {
	setServerDefaultsOrPanic()
	setAuthDefaultsOrPanic()
	setDatabaseDefaultsOrPanic()
	setAudioStoreDefaultsOrPanic()
	setCommentStoreDefaultsOrPanic()
	setKvDefaultsOrPanic()
}

func setServerDefaultsOrPanic() {
	if C.Server.Host == "" {
		if args.IsProduction() {
			panic("Server.Host must be set in production.")
		}

		C.Server.Host = "localhost"
	}

	if C.Server.Port == 0 {
		C.Server.Port = 8080
	}

	if C.Server.ExternalUrl == "" {
		if args.IsProduction() {
			panic("Server.ExternalUrl must be set in production.")
		}

		C.Server.ExternalUrl = fmt.Sprintf("http://%s:%d", C.Server.Host, C.Server.Port)
	}
}

func setAuthDefaultsOrPanic() {
	if C.Auth.JwtSecret == "" {
		if args.IsProduction() {
			panic("Auth.JwtSecret must be set in production.")
		}

		C.Auth.JwtSecret = "podhaven-dev-secret"
	}
}

func setDatabaseDefaultsOrPanic() {
	if C.Database.Mode == "" {
		if args.IsProduction() {
			panic("Database.Mode must be set in production.")
		}

		C.Database.Mode = DatabaseModeInMemory
	}

	switch C.Database.Mode {
	case DatabaseModeInMemory:
		return

	case DatabaseModePostgres:
		setPostgresDefaultsOrPanic()

	default:
		panic(fmt.Errorf("unsupported database mode: %s", C.Database.Mode))
	}
}

func setPostgresDefaultsOrPanic() {
	if C.Database.Postgres.Host == "" {
		if args.IsProduction() {
			panic("Database.Postgres.Host must be set in production.")
		}

		C.Database.Postgres.Host = "localhost"
	}

	if C.Database.Postgres.Port == 0 {
		C.Database.Postgres.Port = 5432
	}

	if C.Database.Postgres.Database == "" {
		panic("Database.Postgres.Database must be set.")
	}

	if C.Database.Postgres.Username == "" {
		panic("Database.Postgres.Username must be set.")
	}

	if C.Database.Postgres.SslMode == "" {
		C.Database.Postgres.SslMode = "disable"
	}
}

func setAudioStoreDefaultsOrPanic() {
	if C.AudioStore.Mode == "" {
		if args.IsProduction() {
			panic("AudioStore.Mode must be set in production.")
		}

		C.AudioStore.Mode = AudioStoreModeInMemory
	}

	switch C.AudioStore.Mode {
	case AudioStoreModeInMemory:
		return

	case AudioStoreModeDirectory:
		if C.AudioStore.Directory.Path == "" {
			panic("AudioStore.Directory.Path must be set.")
		}

	case AudioStoreModeS3:
		if C.AudioStore.S3.Region == "" {
			panic("AudioStore.S3.Region must be set.")
		}

		if C.AudioStore.S3.Bucket == "" {
			panic("AudioStore.S3.Bucket must be set.")
		}

	default:
		panic(fmt.Errorf("unsupported audio store mode: %s", C.AudioStore.Mode))
	}
}

func setCommentStoreDefaultsOrPanic() {
	if C.CommentStore.Mode == "" {
		if args.IsProduction() {
			panic("CommentStore.Mode must be set in production.")
		}

		C.CommentStore.Mode = CommentStoreModeInMemory
	}

	switch C.CommentStore.Mode {
	case CommentStoreModeInMemory:
		return

	case CommentStoreModeDynamoDb:
		if C.CommentStore.Dynamo.Region == "" {
			panic("CommentStore.Dynamo.Region must be set.")
		}

		if C.CommentStore.Dynamo.Table == "" {
			panic("CommentStore.Dynamo.Table must be set.")
		}

	default:
		panic(fmt.Errorf("unsupported comment store mode: %s", C.CommentStore.Mode))
	}
}

func setKvDefaultsOrPanic() {
	if C.Kv.Mode == "" {
		if args.IsProduction() {
			panic("Kv.Mode must be set in production.")
		}

		C.Kv.Mode = KvModeInMemory
	}

	switch C.Kv.Mode {
	case KvModeInMemory:
		return

	case KvModeRedis:
		setKvRedisDefaultsOrPanic()

	default:
		panic(fmt.Errorf("unsupported kv mode: %s", C.Kv.Mode))
	}
}

func setKvRedisDefaultsOrPanic() {
	if C.Kv.Redis.Host == "" {
		if args.IsProduction() {
			panic("Kv.Redis.Host must be set in production.")
		}

		C.Kv.Redis.Host = "localhost"
	}

	if C.Kv.Redis.Port == 0 {
		C.Kv.Redis.Port = 6379
	}
}
