package main

import (
	"loqus/api/contexts"
	"loqus/api/models"
	"loqus/api/mvc"
	"loqus/api/repositories"
	"loqus/api/repositories/elasticsearch"
	"loqus/api/repositories/memory"
	"loqus/api/services"
	"loqus/api/services/sanitation"
	"loqus/api/utils"

	"fmt"
	"io/ioutil"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"gopkg.in/yaml.v2"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	// Optional yaml overlay, pointed at by LOQUS_CONFIG_PATH;
	// values in the file win over the environment
	if configPath := os.Getenv("LOQUS_CONFIG_PATH"); configPath != "" {
		configBytes, readErr := ioutil.ReadFile(configPath)
		if readErr != nil {
			fmt.Printf("Failed to read config file %s : %v\n", configPath, readErr)
			os.Exit(2)
		}
		if yamlErr := yaml.Unmarshal(configBytes, &cfg); yamlErr != nil {
			fmt.Printf("Failed to parse config file %s : %v\n", configPath, yamlErr)
			os.Exit(2)
		}
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n"+
		"\tIn-Memory Store : %t \n\n"+

		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n\n"+

		"\tGenome Build : %s\n"+
		"\tGQ Threshold : %d\n"+
		"\tHard Profile Threshold : %.2f\n"+
		"\tSoft Profile Threshold : %.2f\n"+
		"\tSV Cluster Window : %d\n"+
		"\tVCF Workers : %d\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Api.UseMemoryStore,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.Load.GenomeBuild,
		cfg.Load.GqThreshold,
		cfg.Load.HardThreshold,
		cfg.Load.SoftThreshold,
		cfg.Load.SvWindow,
		cfg.Load.VcfWorkers,
		cfg.Api.Port)
	// --

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- variant store (elasticsearch, or in-memory for
	//    development and testing)
	var store repositories.Store
	if cfg.Api.UseMemoryStore {
		store = memory.NewStore()
	} else {
		es := utils.CreateEsConnection(&cfg)
		store = elasticsearch.NewStore(es, &cfg)
	}

	// Service Singletons
	iz := services.NewIngestionService(store, &cfg)
	sanitation.NewSanitationService(iz, &cfg)

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))

	// -- Override handlers with "custom Loqus" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.LoqusContext{
				Context:          c,
				Config:           &cfg,
				Store:            store,
				IngestionService: iz,
			}
			return h(cc)
		}
	})

	// Begin MVC Routes
	// -- Root
	e.GET("/", mvc.Root)

	// -- Cases
	e.GET("/cases", mvc.CasesGet)
	e.GET("/cases/ingestion/requests", mvc.CaseIngestionRequestsGet)
	e.GET("/cases/:caseId", mvc.CaseGet)
	e.POST("/cases/:caseId", mvc.CaseCreate)
	e.DELETE("/cases/:caseId", mvc.CaseDelete)

	// -- Variants
	e.GET("/variants/:variantId", mvc.VariantGet)
	e.GET("/svs/", mvc.StructuralVariantGet)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
