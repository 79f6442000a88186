package models

type Config struct {
	Debug bool `yaml:"debug" envconfig:"LOQUS_DEBUG"`
	Api   struct {
		Port string `yaml:"port" envconfig:"LOQUS_API_INTERNAL_PORT" default:"5000"`
		// development / test escape hatch : keep all documents
		// in process instead of elasticsearch
		UseMemoryStore bool `yaml:"useMemoryStore" envconfig:"LOQUS_API_MEM_STORE"`
	} `yaml:"api"`
	Elasticsearch struct {
		Url      string `yaml:"url" envconfig:"LOQUS_ES_URL" default:"http://localhost:9200"`
		Username string `yaml:"username" envconfig:"LOQUS_ES_USERNAME"`
		Password string `yaml:"password" envconfig:"LOQUS_ES_PASSWORD"`
	} `yaml:"elasticsearch"`
	Load struct {
		GenomeBuild   string  `yaml:"genomeBuild" envconfig:"LOQUS_GENOME_BUILD" default:"GRCh37"`
		ChrPrefix     string  `yaml:"chrPrefix" envconfig:"LOQUS_CHR_PREFIX"`
		GqThreshold   int     `yaml:"gqThreshold" envconfig:"LOQUS_LOAD_GQ_THRESHOLD" default:"20"`
		HardThreshold float64 `yaml:"hardThreshold" envconfig:"LOQUS_LOAD_HARD_THRESHOLD" default:"0.95"`
		SoftThreshold float64 `yaml:"softThreshold" envconfig:"LOQUS_LOAD_SOFT_THRESHOLD" default:"0.95"`
		SvWindow      int     `yaml:"svWindow" envconfig:"LOQUS_LOAD_SV_WINDOW" default:"2000"`
		VcfWorkers    int     `yaml:"vcfWorkers" envconfig:"LOQUS_LOAD_VCF_WORKERS" default:"4"`
	} `yaml:"load"`
	Sanitation struct {
		IntervalMinutes   int `yaml:"intervalMinutes" envconfig:"LOQUS_SANITATION_INTERVAL_MINUTES" default:"15"`
		RequestTtlMinutes int `yaml:"requestTtlMinutes" envconfig:"LOQUS_SANITATION_REQUEST_TTL_MINUTES" default:"60"`
	} `yaml:"sanitation"`
}
