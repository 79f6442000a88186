package contexts

import (
	"loqus/api/models"
	"loqus/api/repositories"
	"loqus/api/services"

	"github.com/labstack/echo"
)

type (
	// "Helper" Context to pass into routes that need
	//  the variant store and other variables
	LoqusContext struct {
		echo.Context
		Config           *models.Config
		Store            repositories.Store
		IngestionService *services.IngestionService
	}
)
