package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/isowatch-cl/iso-news-harvester/internal/domain"
	"github.com/isowatch-cl/iso-news-harvester/pkg/sources"
)

const (
	newsAPIKeyEnv   = "NEWSAPI_KEY"
	snapshotPathEnv = "HARVESTER_SNAPSHOT_PATH"
	logLevelEnv     = "HARVESTER_LOG_LEVEL"
)

// Config holds every setting the harvester consumes. The pipeline treats all
// of it as opaque injected input; nothing here is compiled-in state.
type Config struct {
	Output     OutputConfig            `mapstructure:"output"`
	HTTP       HTTPConfig              `mapstructure:"http"`
	Harvest    HarvestConfig           `mapstructure:"harvest"`
	Listing    sources.ListingConfig   `mapstructure:"listing"`
	Sitemaps   []sources.SitemapConfig `mapstructure:"sitemaps"`
	NewsAPI    sources.NewsAPIConfig   `mapstructure:"newsapi"`
	Seeds      []domain.Candidate      `mapstructure:"seeds"`
	Relevance  RelevanceConfig         `mapstructure:"relevance"`
	History    HistoryConfig           `mapstructure:"history"`
	Publishers PublishersConfig        `mapstructure:"publishers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// OutputConfig locates the snapshot artifact.
type OutputConfig struct {
	// SnapshotPath is the canonical output file, overwritten each run.
	SnapshotPath string `mapstructure:"snapshot_path"`
	DataSource   string `mapstructure:"data_source"`
}

// HTTPConfig tunes page fetching.
type HTTPConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	InsecureTLS bool          `mapstructure:"insecure_tls"`
}

// HarvestConfig tunes the extraction driver.
type HarvestConfig struct {
	// RequestDelay is the constant politeness pause between page fetches.
	RequestDelay time.Duration `mapstructure:"request_delay"`
	Workers      int           `mapstructure:"workers"`
}

// RelevanceConfig drives the optional candidate filter applied after merge.
type RelevanceConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Keywords []string `mapstructure:"keywords"`
}

// HistoryConfig locates the run ledger; an empty path disables it.
type HistoryConfig struct {
	LedgerPath string `mapstructure:"ledger_path"`
}

// PublishersConfig locates the publisher registry file; empty disables
// post-run event publishing.
type PublishersConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads YAML configuration (explicit path, or ./harvester.yaml when
// empty) over the built-in defaults and applies environment overrides. A
// missing default config file is fine; a missing explicit one is not.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("harvester")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	} else if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv(newsAPIKeyEnv)); key != "" {
		c.NewsAPI.APIKey = key
	}
	if p := strings.TrimSpace(os.Getenv(snapshotPathEnv)); p != "" {
		c.Output.SnapshotPath = p
	}
	if lvl := strings.TrimSpace(os.Getenv(logLevelEnv)); lvl != "" {
		c.Logging.Level = lvl
	}
}

// Default returns the built-in configuration: the INN listing, the ISO search
// vocabulary and the seed articles that guarantee baseline coverage.
func Default() Config {
	return Config{
		Output: OutputConfig{
			SnapshotPath: "data/iso_news.json",
			DataSource:   "ISO News Harvester",
		},
		HTTP: HTTPConfig{
			Timeout:     15 * time.Second,
			InsecureTLS: true,
		},
		Harvest: HarvestConfig{
			RequestDelay: time.Second,
			Workers:      4,
		},
		Listing: sources.ListingConfig{
			URL:          "https://www.inn.cl/noticias",
			BaseURL:      "https://www.inn.cl",
			SourceName:   "Instituto Nacional de Normalización (INN)",
			LinkKeywords: []string{"iso", "norma", "certificación", "estándar", "calidad"},
			MaxItems:     15,
		},
		NewsAPI: sources.NewsAPIConfig{
			SearchTerms: []string{
				"ISO 9001", "ISO 14001", "ISO 45001", "ISO 27001",
				"normas ISO", "certificación ISO", "ISO Chile",
			},
			RegionQualifier: "Chile",
			RegionalDomains: chileanDomains(),
			RegionalKeywords: []string{
				"chile", "chileno", "chilena",
			},
			Language:   "es",
			DaysBack:   30,
			PageSize:   20,
			MaxHits:    100,
			QueryDelay: 2 * time.Second,
			Fallback:   fallbackCandidates(),
		},
		Seeds: seedCandidates(),
		Relevance: RelevanceConfig{
			Enabled: true,
			Keywords: []string{
				"iso", "norma", "certificación", "acreditación",
				"estándar", "calidad", "gestión", "inn",
			},
		},
		History: HistoryConfig{
			LedgerPath: "data/harvester.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// chileanDomains is the allow-list used for regional classification and the
// per-origin metadata counts.
func chileanDomains() []string {
	return []string{
		"emol.com", "latercera.com", "lun.com", "df.cl",
		"cooperativa.cl", "biobiochile.cl", "adnradio.cl",
		"cnnchile.com", "t13.cl", "meganoticias.cl",
		"mch.cl", "empresaoceano.cl", "ispch.gob.cl",
		"inn.cl", "sernac.cl", "gob.cl",
	}
}

// ChileanDomains exposes the regional allow-list for snapshot metadata.
func (c Config) ChileanDomains() []string {
	if len(c.NewsAPI.RegionalDomains) > 0 {
		return c.NewsAPI.RegionalDomains
	}
	return chileanDomains()
}

// seedCandidates are the statically known articles merged last so live
// sources win on overlapping URLs.
func seedCandidates() []domain.Candidate {
	return []domain.Candidate{
		{
			Title:  "Normas Aprobadas Julio 2025",
			URL:    "https://www.inn.cl/normas-aprobadas-julio-2025",
			Date:   "30/07/2025",
			Source: "Instituto Nacional de Normalización (INN)",
		},
		{
			Title:  "CMP certifica su Modelo GRP con tres normas internacionales ISO",
			URL:    "https://www.mch.cl/negocios-industria/cmp-certifica-su-modelo-grp-con-tres-normas-internacionales-iso/",
			Date:   "30/07/2025",
			Source: "Minería Chilena",
		},
		{
			Title:  "San Antonio Terminal Internacional renueva certificaciones ISO 9001 e ISO 14001",
			URL:    "https://www.empresaoceano.cl/san-antonio-terminal-internacional-renueva-certificaciones-iso-9001-e",
			Date:   "25/07/2025",
			Source: "Empresa Océano",
		},
		{
			Title:  "ISP recibe al INN para verificar capacidades técnicas del Laboratorio de Metrología",
			URL:    "https://www.ispch.gob.cl/noticia/isp-recibe-al-instituto-nacional-de-normalizacion-inn-para-verificar-capacidades-tecnicas-del-laboratorio-de-metrologia/",
			Date:   "25/07/2025",
			Source: "Instituto de Salud Pública",
		},
	}
}

// fallbackCandidates feed the pipeline when the search API is unreachable.
// The serializer marks runs that used them in data_source.
func fallbackCandidates() []domain.Candidate {
	return []domain.Candidate{
		{
			Title:  "Tendencias en Certificaciones ISO para 2025",
			URL:    "https://www.iso.org/news/ref2825.html",
			Date:   "",
			Source: "ISO Internacional",
		},
		{
			Title:  "ISO 9001: Clave para la Competitividad Empresarial",
			URL:    "https://www.example.com/iso-9001-competitividad",
			Date:   "",
			Source: "Gestión Empresarial",
		},
		{
			Title:  "Nuevas Normativas ISO en Ciberseguridad",
			URL:    "https://www.example.com/iso-27001-ciberseguridad",
			Date:   "",
			Source: "Tecnología Segura",
		},
	}
}
