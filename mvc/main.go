package mvc

import (
	"fmt"
	"net/http"
	"time"

	"loqus/api/contexts"
	"loqus/api/models"
	"loqus/api/repositories"

	"github.com/labstack/echo"
)

const ApiName = "loqus"
const ApiVersion = "2.5.0"

func RetrieveCommonElements(c echo.Context) (repositories.Store, *models.Config) {
	lc := c.(*contexts.LoqusContext)
	return lc.Store, lc.Config
}

func Root(c echo.Context) error {
	fmt.Printf("[%s] - Root hit!\n", time.Now())

	return c.JSON(http.StatusOK, map[string]string{
		"name":    ApiName,
		"version": ApiVersion,
		"message": fmt.Sprintf("Welcome to %s v%s", ApiName, ApiVersion),
	})
}
