package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/facecards/api/handler"
	"github.com/use-agent/facecards/api/middleware"
	"github.com/use-agent/facecards/config"
	"github.com/use-agent/facecards/deck"
)

// Deps are the services behind the HTTP API.
type Deps struct {
	Scraper    handler.ProfileScraper
	Summarizer handler.Summarizer
	People     handler.PeopleStore
	Photos     interface {
		handler.PhotoStore
		deck.MediaSource
	}
	Importer handler.RowImporter
	Health   handler.HealthInfo
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled)
//	Scrape:  RateLimit (page scrapes only)
//
// Health is outside auth so probes always work. Summarize follows every
// scrape in the client and must always answer 200, so it is not limited.
func NewRouter(deps Deps, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.MaxMultipartMemory = 16 << 20

	r.GET("/health", handler.Health(deps.Health, startTime))

	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}

	// Scraping reaches out to third-party sites.
	scrape := protected.Group("/scrape")
	scrape.Use(middleware.RateLimit(cfg.RateLimit))
	scrape.POST("/url", handler.Scrape(deps.Scraper))
	protected.POST("/scrape/summarize", handler.Summarize(deps.Summarizer))

	// People
	protected.GET("/people", handler.ListPeople(deps.People))
	protected.POST("/people", handler.CreatePerson(deps.People))
	protected.POST("/people/photo", handler.UploadPhoto(deps.Photos))
	protected.GET("/people/:id", handler.GetPerson(deps.People))
	protected.PUT("/people/:id", handler.UpdatePerson(deps.People, deps.Photos))
	protected.DELETE("/people/:id", handler.DeletePerson(deps.People, deps.Photos))
	protected.POST("/check-duplicate", handler.CheckDuplicate(deps.People))
	protected.GET("/media/:filename", handler.ServeMedia(deps.Photos))

	// CSV import
	protected.POST("/import/csv", handler.ImportPreview())
	protected.POST("/import/csv/confirm", handler.ImportConfirm(deps.Importer))

	// Deck export
	protected.POST("/deck/export", handler.ExportDeck(deps.People, deps.Photos))

	return r
}
