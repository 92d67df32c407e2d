package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL"`
	Postgres          Postgres
	Telegram          Telegram
	Redis             Redis
	API               API
	Cache             Cache
	Jobs              Jobs
	Report            Report
	GoogleDrive       GoogleDrive
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"30m"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"data/migrations"`
}

type Telegram struct {
	Token            string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout       time.Duration `env:"TELEGRAM_UPD_TIMEOUT"`
	FileLimitInBytes int           `env:"TELEGRAM_FILE_LIMIT_IN_BYTES" envDefault:"52428800"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug      bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout    time.Duration `env:"API_TIMEOUT"`
	MoexApi    MoexApi
	TinkoffApi TinkoffApi
}

type MoexApi struct {
	Url string `env:"MOEX_API_URL"`
}

type TinkoffApi struct {
	Url     string `env:"TINKOFF_API_URL" envDefault:"https://invest-public-api.tinkoff.ru/rest"`
	// FIGI whose last price is used as the USD/RUB rate
	UsdFigi string `env:"TINKOFF_USD_FIGI" envDefault:"BBG0013HGFT4"`
}

type Cache struct {
	StocksExpiration     time.Duration `env:"CACHE_STOCKS_EXPIRATION"`
	InstrumentExpiration time.Duration `env:"CACHE_INSTRUMENT_EXPIRATION" envDefault:"168h"`
}

type Jobs struct {
	FillMoexCacheInterval  time.Duration `env:"FILL_MOEX_CACHE_JOB_INTERVAL"`
	ReportCrontab          string        `env:"REPORT_JOB_CRONTAB" envDefault:"0 0 10 * * *"`
	DeleteOldFilesInterval time.Duration `env:"DELETE_OLD_FILES_JOB_INTERVAL" envDefault:"24h"`
}

type Report struct {
	// csv, xlsx or message
	Format     string        `env:"REPORT_FORMAT" envDefault:"csv"`
	// deposits or cost_basis
	ProfitBase string        `env:"REPORT_PROFIT_BASE" envDefault:"deposits"`
	Timeout    time.Duration `env:"REPORT_TIMEOUT" envDefault:"2m"`
	TempDir    string        `env:"REPORT_TEMP_DIR" envDefault:""`
}

type GoogleDrive struct {
	// empty value disables uploading of reports that exceed the telegram file limit
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"72h"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
