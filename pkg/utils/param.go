package utils

import (
	"strconv"

	"mini_shop/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// ParseIDParam 解析路径中的数字 ID
func ParseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Newf(apperr.ErrInvalidParam, "invalid %s: %q", name, raw)
	}
	return uint(id), nil
}
