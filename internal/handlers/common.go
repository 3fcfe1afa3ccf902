package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/pkg/response"
)

// pathID parses a numeric path parameter. On failure it writes the 400
// response itself and returns ok=false.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
