package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters, loaded from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Upstream ecosystem services. Every fetch stage of the sync pipeline
	// talks to one of these.
	ReposBaseURL    string `envconfig:"REPOS_BASE_URL" default:"https://repos.ecosyste.ms"`
	PackagesBaseURL string `envconfig:"PACKAGES_BASE_URL" default:"https://packages.ecosyste.ms"`
	CommitsBaseURL  string `envconfig:"COMMITS_BASE_URL" default:"https://commits.ecosyste.ms"`
	IssuesBaseURL   string `envconfig:"ISSUES_BASE_URL" default:"https://issues.ecosyste.ms"`
	TimelineBaseURL string `envconfig:"TIMELINE_BASE_URL" default:"https://timeline.ecosyste.ms"`
	ArchivesBaseURL string `envconfig:"ARCHIVES_BASE_URL" default:"https://archives.ecosyste.ms"`
	OpenAlexBaseURL string `envconfig:"OPENALEX_BASE_URL" default:"https://api.openalex.org"`
	JossBaseURL     string `envconfig:"JOSS_BASE_URL" default:"https://joss.theoj.org"`

	UserAgent string `envconfig:"USER_AGENT" default:"greendex.dev"`

	SyncWorkers   int           `envconfig:"SYNC_WORKERS" default:"5"`
	SyncQueueSize int           `envconfig:"SYNC_QUEUE_SIZE" default:"1000"`
	SyncBatchSize int           `envconfig:"SYNC_BATCH_SIZE" default:"500"`
	SyncMaxAge    time.Duration `envconfig:"SYNC_MAX_AGE" default:"24h"`

	KeywordCacheTTL time.Duration `envconfig:"KEYWORD_CACHE_TTL" default:"24h"`
	ProfileCacheTTL time.Duration `envconfig:"PROFILE_CACHE_TTL" default:"6h"`

	CronResync              string `envconfig:"CRON_RESYNC" default:"0 * * * *"`
	CronDependencies        string `envconfig:"CRON_DEPENDENCIES" default:"30 2 * * *"`
	CronContributorKeywords string `envconfig:"CRON_CONTRIBUTOR_KEYWORDS" default:"0 3 * * *"`
	CronExport              string `envconfig:"CRON_EXPORT" default:"0 4 * * *"`

	// Directory export to an S3-compatible bucket; disabled when no bucket
	// is configured.
	ExportS3Bucket    string `envconfig:"EXPORT_S3_BUCKET"`
	ExportS3Endpoint  string `envconfig:"EXPORT_S3_ENDPOINT"`
	ExportS3Region    string `envconfig:"EXPORT_S3_REGION" default:"eu-central-1"`
	ExportS3AccessKey string `envconfig:"EXPORT_S3_ACCESS_KEY"`
	ExportS3SecretKey string `envconfig:"EXPORT_S3_SECRET_KEY"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
